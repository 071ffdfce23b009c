// Package report renders pipeline results for people and exports them for
// spreadsheets and other tools.
package report

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/KaramelBytes/visitpivot/internal/analysis"
)

// DefaultDateFormat is the day-first display format used by the visit export.
const DefaultDateFormat = "02/01/2006"

// DefaultXLSXName is the file name used when no output path is given.
const DefaultXLSXName = "atendimentos_formatados.xlsx"

// RenderOptions controls how results are displayed.
type RenderOptions struct {
	// Name is the source file name shown in the summary header.
	Name string
	// DateFormat is a Go time layout for pivot columns. Empty means DefaultDateFormat.
	DateFormat string
	// BOM prefixes CSV output with a UTF-8 byte order mark so Excel detects the encoding.
	BOM bool
	// Comma is the CSV field delimiter. 0 means ','.
	Comma rune
}

func (o RenderOptions) dateFormat() string {
	if o.DateFormat == "" {
		return DefaultDateFormat
	}
	return o.DateFormat
}

// header returns the pivot header row: specialty, category, one column per
// date and a row total.
func header(p analysis.PivotTable, layout string) []string {
	h := make([]string, 0, len(p.Dates)+3)
	h = append(h, "Specialty", "Payer group")
	for _, d := range p.Dates {
		h = append(h, d.Format(layout))
	}
	return append(h, "Total")
}

// Markdown renders a compact report: the pivot with totals, the daily volume
// extremes and a note on dropped rows.
func Markdown(res *analysis.Result, opt RenderOptions) string {
	var b strings.Builder
	layout := opt.dateFormat()

	b.WriteString("[VISIT SUMMARY]\n")
	if opt.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", opt.Name))
	}
	if res.Processed < res.Rows {
		b.WriteString(fmt.Sprintf("Rows: %d (processed %d)\n", res.Rows, res.Processed))
	} else {
		b.WriteString(fmt.Sprintf("Rows: %d\n", res.Rows))
	}
	b.WriteString(fmt.Sprintf("Visits counted: %d\n\n", res.Stats.Kept))

	b.WriteString("[PIVOT]\n")
	p := res.Pivot
	if p.Empty() {
		b.WriteString("No visits left after filtering.\n")
	} else {
		h := header(p, layout)
		writeRow(&b, h)
		sep := make([]string, len(h))
		for i := range sep {
			sep[i] = "---"
			if i >= 2 {
				sep[i] = "---:"
			}
		}
		writeRow(&b, sep)
		for i, r := range p.Rows {
			cells := []string{safeCell(r.Specialty), r.Category.String()}
			for _, n := range p.Cells[i] {
				cells = append(cells, strconv.Itoa(n))
			}
			cells = append(cells, strconv.Itoa(p.RowTotal(i)))
			writeRow(&b, cells)
		}
		totals := []string{"**Total**", ""}
		for j := range p.Dates {
			totals = append(totals, strconv.Itoa(p.ColumnTotal(j)))
		}
		totals = append(totals, strconv.Itoa(p.Total()))
		writeRow(&b, totals)
	}

	if res.Volume != nil {
		b.WriteString("\n[DAILY VOLUME]\n")
		b.WriteString(fmt.Sprintf("- Busiest day: %s with %d patients\n", res.Volume.Max.Date.Format(layout), res.Volume.Max.Total))
		b.WriteString(fmt.Sprintf("- Quietest day: %s with %d patients\n", res.Volume.Min.Date.Format(layout), res.Volume.Min.Total))
	}

	if s := res.Stats; s.Dropped() > 0 {
		b.WriteString("\n[NOTES]\n")
		b.WriteString(fmt.Sprintf("- %d rows dropped", s.Dropped()))
		var parts []string
		if s.EmptySpecialty > 0 {
			parts = append(parts, fmt.Sprintf("empty specialty %d", s.EmptySpecialty))
		}
		if s.EmptyPayer > 0 {
			parts = append(parts, fmt.Sprintf("empty payer %d", s.EmptyPayer))
		}
		if s.InvalidDate > 0 {
			parts = append(parts, fmt.Sprintf("invalid date %d", s.InvalidDate))
		}
		b.WriteString(" (" + strings.Join(parts, ", ") + ")\n")
	}
	return b.String()
}

func writeRow(b *strings.Builder, cells []string) {
	b.WriteString("| ")
	b.WriteString(strings.Join(cells, " | "))
	b.WriteString(" |\n")
}

// safeCell keeps a value from breaking the table layout.
func safeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
