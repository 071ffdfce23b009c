package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/visitpivot/internal/analysis"
	"github.com/KaramelBytes/visitpivot/internal/utils"
)

// Sheet names in exported workbooks.
const (
	PivotSheet  = "Pivot"
	VolumeSheet = "Volume"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// pivotRecords lays out the pivot as string rows, header first.
func pivotRecords(p analysis.PivotTable, layout string) [][]string {
	out := [][]string{header(p, layout)}
	for i, r := range p.Rows {
		row := []string{r.Specialty, r.Category.String()}
		for _, n := range p.Cells[i] {
			row = append(row, strconv.Itoa(n))
		}
		out = append(out, append(row, strconv.Itoa(p.RowTotal(i))))
	}
	return out
}

// WriteCSV writes the pivot table as CSV.
func WriteCSV(path string, res *analysis.Result, opt RenderOptions) error {
	var buf bytes.Buffer
	if opt.BOM {
		buf.Write(utf8BOM)
	}
	w := csv.NewWriter(&buf)
	if opt.Comma != 0 {
		w.Comma = opt.Comma
	}
	if err := w.WriteAll(pivotRecords(res.Pivot, opt.dateFormat())); err != nil {
		return fmt.Errorf("encode csv: %w", err)
	}
	return utils.SafeWriteFile(path, buf.Bytes())
}

// WriteXLSX writes a workbook with the pivot on one sheet and the per-day
// totals on another. Counts are stored as numbers.
func WriteXLSX(path string, res *analysis.Result, opt RenderOptions) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", PivotSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}

	layout := opt.dateFormat()
	p := res.Pivot
	h := header(p, layout)
	if err := setRow(f, PivotSheet, 1, toAny(h)); err != nil {
		return err
	}
	for i, r := range p.Rows {
		row := []any{r.Specialty, r.Category.String()}
		for _, n := range p.Cells[i] {
			row = append(row, n)
		}
		row = append(row, p.RowTotal(i))
		if err := setRow(f, PivotSheet, i+2, row); err != nil {
			return err
		}
	}
	if err := styleHeader(f, PivotSheet, len(h), bold); err != nil {
		return err
	}

	if _, err := f.NewSheet(VolumeSheet); err != nil {
		return fmt.Errorf("add sheet: %w", err)
	}
	if err := setRow(f, VolumeSheet, 1, []any{"Date", "Patients"}); err != nil {
		return err
	}
	if res.Volume != nil {
		for i, d := range res.Volume.Days {
			if err := setRow(f, VolumeSheet, i+2, []any{d.Date.Format(layout), d.Total}); err != nil {
				return err
			}
		}
	}
	if err := styleHeader(f, VolumeSheet, 2, bold); err != nil {
		return err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return fmt.Errorf("encode xlsx: %w", err)
	}
	return utils.SafeWriteFile(path, buf.Bytes())
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}

func styleHeader(f *excelize.File, sheet string, cols, style int) error {
	last, err := excelize.CoordinatesToCellName(cols, 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A1", last, style)
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

// WriteYAML encodes the full result as YAML.
func WriteYAML(w io.Writer, res *analysis.Result) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(res); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}

// WriteJSON encodes the full result as indented JSON.
func WriteJSON(w io.Writer, res *analysis.Result) error {
	b, err := utils.PrettyJSON(res)
	if err != nil {
		return err
	}
	if _, err := w.Write(append(b, '\n')); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}

// Formats accepted by WriteFile.
const (
	FormatMarkdown = "markdown"
	FormatCSV      = "csv"
	FormatXLSX     = "xlsx"
	FormatYAML     = "yaml"
	FormatJSON     = "json"
)

// Ext returns the file extension for a format.
func Ext(format string) string {
	if format == FormatMarkdown {
		return ".md"
	}
	return "." + format
}

// WriteFile writes res to path in the given format.
func WriteFile(path, format string, res *analysis.Result, opt RenderOptions) error {
	switch format {
	case FormatCSV:
		return WriteCSV(path, res, opt)
	case FormatXLSX:
		return WriteXLSX(path, res, opt)
	case FormatMarkdown:
		return utils.SafeWriteFile(path, []byte(Markdown(res, opt)))
	case FormatYAML, FormatJSON:
		var buf bytes.Buffer
		encode := WriteJSON
		if format == FormatYAML {
			encode = WriteYAML
		}
		if err := encode(&buf, res); err != nil {
			return err
		}
		return utils.SafeWriteFile(path, buf.Bytes())
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}
