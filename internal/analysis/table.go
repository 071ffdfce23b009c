package analysis

// Table is a header-less grid of raw cell values as handed over by a reader.
// Cells may be string, float64, int, time.Time, nil or anything else.
type Table [][]any

// Fixed positions in the upstream visit export (0-based).
const (
	PayerColumn     = 6
	DateColumn      = 8
	SpecialtyColumn = 9
)

// requiredColumns is the minimum row width that carries all three fields.
const requiredColumns = SpecialtyColumn + 1

// RawRecord holds the three meaningful cells of one row, untouched.
type RawRecord struct {
	Specialty any
	Payer     any
	Date      any
}

// Width returns the length of the widest row.
func (t Table) Width() int {
	w := 0
	for _, row := range t {
		if len(row) > w {
			w = len(row)
		}
	}
	return w
}

// Project picks the specialty, payer and date cells out of every row. It is the
// only place that knows the column positions. A non-empty table whose widest
// row is narrower than the date/payer/specialty span fails with a
// *StructuralError; shorter individual rows read as nil cells.
func Project(t Table) ([]RawRecord, error) {
	if len(t) == 0 {
		return nil, nil
	}
	if w := t.Width(); w < requiredColumns {
		return nil, &StructuralError{Columns: w, Required: requiredColumns}
	}
	out := make([]RawRecord, len(t))
	for i, row := range t {
		out[i] = RawRecord{
			Specialty: cell(row, SpecialtyColumn),
			Payer:     cell(row, PayerColumn),
			Date:      cell(row, DateColumn),
		}
	}
	return out, nil
}

func cell(row []any, idx int) any {
	if idx < len(row) {
		return row[idx]
	}
	return nil
}

// StringTable wraps plain string rows, as produced by CSV readers.
func StringTable(rows [][]string) Table {
	t := make(Table, len(rows))
	for i, row := range rows {
		r := make([]any, len(row))
		for j, v := range row {
			r[j] = v
		}
		t[i] = r
	}
	return t
}
