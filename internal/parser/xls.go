package parser

import (
	"archive/zip"
	"fmt"
	"os"
	"strings"

	"github.com/KaramelBytes/visitpivot/internal/analysis"
)

type xlsReader struct{}

func (xlsReader) CanRead(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".xls")
}

// Read rejects legacy .xls files. Spreadsheet tools often save .xlsx content
// under an .xls name; that case gets ErrDisguisedXLSX so the user can rename.
func (xlsReader) Read(path string, _ Options) (analysis.Table, error) {
	zr, err := zip.OpenReader(path)
	if err == nil {
		zr.Close()
		return nil, ErrDisguisedXLSX
	}
	if _, statErr := os.Stat(path); statErr != nil {
		return nil, fmt.Errorf("open xls: %w", statErr)
	}
	return nil, fmt.Errorf("legacy .xls (BIFF) workbooks: %w", ErrUnsupported)
}
