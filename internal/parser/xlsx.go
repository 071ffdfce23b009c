package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/visitpivot/internal/analysis"
)

type xlsxReader struct{}

func (xlsxReader) CanRead(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".xlsx")
}

// Read loads the selected sheet with raw cell values. Numeric cells become
// float64 so date cells arrive as Excel serials; everything else stays a
// string. In workbooks using the 1904 date system, numeric date-column cells
// are converted to time.Time here since a bare serial cannot carry the epoch.
func (xlsxReader) Read(path string, opt Options) (analysis.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheet, err := resolveSheet(f.GetSheetList(), opt.SheetName)
	if err != nil {
		return nil, err
	}
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	date1904, err := uses1904(f)
	if err != nil {
		return nil, err
	}
	t := make(analysis.Table, len(rows))
	for i, row := range rows {
		cells := make([]any, len(row))
		for j, v := range row {
			cells[j] = typedCell(v)
			if date1904 && j == analysis.DateColumn {
				if serial, ok := cells[j].(float64); ok {
					if tm, err := excelize.ExcelDateToTime(serial, true); err == nil {
						cells[j] = tm
					}
				}
			}
		}
		t[i] = cells
	}
	return t, nil
}

func uses1904(f *excelize.File) (bool, error) {
	props, err := f.GetWorkbookProps()
	if err != nil {
		return false, fmt.Errorf("read workbook properties: %w", err)
	}
	return props.Date1904 != nil && *props.Date1904, nil
}

// resolveSheet finds the requested sheet case-insensitively. Without a request
// it prefers DefaultSheet and falls back to the first sheet.
func resolveSheet(sheets []string, requested string) (string, error) {
	want := requested
	if want == "" {
		want = DefaultSheet
	}
	for _, s := range sheets {
		if strings.EqualFold(strings.TrimSpace(s), want) {
			return s, nil
		}
	}
	if requested == "" && len(sheets) > 0 {
		return sheets[0], nil
	}
	return "", fmt.Errorf("sheet '%s' not found.\nAvailable sheets: %s", want, strings.Join(sheets, ", "))
}

func typedCell(v string) any {
	if v == "" {
		return nil
	}
	if !isDecimal(v) {
		return v
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f
	}
	return v
}

// isDecimal accepts plain decimal numbers as Excel stores them: optional sign,
// digits with at most one point, optional exponent. NaN, Inf and hex forms
// that ParseFloat would take stay text.
func isDecimal(s string) bool {
	i := 0
	if i < len(s) && (s[i] == '-' || s[i] == '+') {
		i++
	}
	digits, dot := 0, false
	for ; i < len(s); i++ {
		if c := s[i]; c >= '0' && c <= '9' {
			digits++
		} else if c == '.' && !dot {
			dot = true
		} else {
			break
		}
	}
	if digits == 0 {
		return false
	}
	if i == len(s) {
		return true
	}
	if s[i] != 'e' && s[i] != 'E' {
		return false
	}
	i++
	if i < len(s) && (s[i] == '-' || s[i] == '+') {
		i++
	}
	if i == len(s) {
		return false
	}
	for ; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
