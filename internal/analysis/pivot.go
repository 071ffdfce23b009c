package analysis

import "sort"

// PivotRow identifies one pivot row.
type PivotRow struct {
	Specialty string        `json:"specialty" yaml:"specialty"`
	Category  PayerCategory `json:"category" yaml:"category"`
}

// PivotTable is a dense matrix of visit counts: rows are (specialty, category)
// pairs, columns are dates. Cells[i][j] belongs to Rows[i] and Dates[j].
type PivotTable struct {
	Rows  []PivotRow `json:"rows" yaml:"rows"`
	Dates []Date     `json:"dates" yaml:"dates"`
	Cells [][]int    `json:"cells" yaml:"cells"`
}

// BuildPivot reshapes grouped counts into a zero-filled PivotTable. Rows are
// ordered by specialty then category, columns by date.
func BuildPivot(counts []GroupedCount) PivotTable {
	if len(counts) == 0 {
		return PivotTable{}
	}
	rowIdx := map[PivotRow]int{}
	dateIdx := map[Date]int{}
	var rows []PivotRow
	var dates []Date
	for _, c := range counts {
		pr := PivotRow{Specialty: c.Specialty, Category: c.Category}
		if _, ok := rowIdx[pr]; !ok {
			rowIdx[pr] = 0
			rows = append(rows, pr)
		}
		if _, ok := dateIdx[c.VisitDate]; !ok {
			dateIdx[c.VisitDate] = 0
			dates = append(dates, c.VisitDate)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Specialty != rows[j].Specialty {
			return rows[i].Specialty < rows[j].Specialty
		}
		return rows[i].Category < rows[j].Category
	})
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	for i, r := range rows {
		rowIdx[r] = i
	}
	for j, d := range dates {
		dateIdx[d] = j
	}

	cells := make([][]int, len(rows))
	for i := range cells {
		cells[i] = make([]int, len(dates))
	}
	for _, c := range counts {
		i := rowIdx[PivotRow{Specialty: c.Specialty, Category: c.Category}]
		cells[i][dateIdx[c.VisitDate]] += c.Count
	}
	return PivotTable{Rows: rows, Dates: dates, Cells: cells}
}

// Empty reports whether the table has no rows.
func (p PivotTable) Empty() bool { return len(p.Rows) == 0 }

// Value returns the count for row and date, 0 when either is absent.
func (p PivotTable) Value(row PivotRow, d Date) int {
	for i, r := range p.Rows {
		if r != row {
			continue
		}
		for j, dd := range p.Dates {
			if dd == d {
				return p.Cells[i][j]
			}
		}
	}
	return 0
}

// RowTotal sums row i across all dates.
func (p PivotTable) RowTotal(i int) int {
	n := 0
	for _, v := range p.Cells[i] {
		n += v
	}
	return n
}

// ColumnTotal sums column j across all rows.
func (p PivotTable) ColumnTotal(j int) int {
	n := 0
	for i := range p.Cells {
		n += p.Cells[i][j]
	}
	return n
}

// Total sums every cell.
func (p PivotTable) Total() int {
	n := 0
	for i := range p.Cells {
		n += p.RowTotal(i)
	}
	return n
}
