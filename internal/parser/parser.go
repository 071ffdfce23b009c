package parser

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/KaramelBytes/visitpivot/internal/analysis"
)

// Options controls how a visit export is read.
type Options struct {
	// SheetName selects the XLSX sheet. Empty means DefaultSheet, falling back
	// to the first sheet when the workbook has no such sheet.
	SheetName string
	// Delimiter for CSV. If 0, sniffs ';' vs ',' ('\t' for .tsv).
	Delimiter rune
}

// DefaultSheet is the sheet name used by the visit export.
const DefaultSheet = "Report"

// Reader reads one file format into a header-less table.
type Reader interface {
	CanRead(filename string) bool
	Read(path string, opt Options) (analysis.Table, error)
}

var registry []Reader

// Register adds a reader implementation to the registry.
func Register(r Reader) {
	registry = append(registry, r)
}

// ReadFile selects a reader based on filename and returns the raw table.
func ReadFile(path string, opt Options) (analysis.Table, error) {
	for _, r := range registry {
		if r.CanRead(path) {
			t, err := r.Read(path, opt)
			if err != nil {
				return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
			}
			return t, nil
		}
	}
	return nil, fmt.Errorf("%s: %w", filepath.Base(path), ErrUnsupported)
}

// ParseDelimiter maps a flag/config value to a CSV delimiter rune.
func ParseDelimiter(s string) (rune, error) {
	switch s {
	case "":
		return 0, nil
	case ",":
		return ',', nil
	case "\t", "tab":
		return '\t', nil
	case ";":
		return ';', nil
	default:
		return 0, fmt.Errorf("unsupported delimiter: %s (use ','|';'|'tab')", s)
	}
}

func init() {
	// Register default readers
	Register(csvReader{})
	Register(xlsxReader{})
	Register(xlsReader{})
}

// ErrUnsupported indicates a format is not supported.
var ErrUnsupported = errors.New("unsupported file format")

// ErrDisguisedXLSX marks an .xlsx workbook saved with an .xls extension.
var ErrDisguisedXLSX = errors.New("file has .xls extension but is an .xlsx workbook; rename it to .xlsx or export it again")
