package analysis

import "sort"

// GroupedCount is the number of visits for one specialty, payer category and day.
type GroupedCount struct {
	Specialty string        `json:"specialty" yaml:"specialty"`
	Category  PayerCategory `json:"category" yaml:"category"`
	VisitDate Date          `json:"visit_date" yaml:"visit_date"`
	Count     int           `json:"count" yaml:"count"`
}

type groupKey struct {
	specialty string
	category  PayerCategory
	date      Date
}

// Aggregate counts records per (specialty, category, date). Every record lands
// in exactly one group. Output is sorted by specialty, category, then date.
func Aggregate(records []Record) []GroupedCount {
	groups := map[groupKey]int{}
	for _, r := range records {
		groups[groupKey{r.Specialty, r.Category, r.VisitDate}]++
	}
	out := make([]GroupedCount, 0, len(groups))
	for k, n := range groups {
		out = append(out, GroupedCount{Specialty: k.specialty, Category: k.category, VisitDate: k.date, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Specialty != b.Specialty {
			return a.Specialty < b.Specialty
		}
		if a.Category != b.Category {
			return a.Category < b.Category
		}
		return a.VisitDate.Before(b.VisitDate)
	})
	return out
}

// TotalCount sums Count over counts.
func TotalCount(counts []GroupedCount) int {
	n := 0
	for _, c := range counts {
		n += c.Count
	}
	return n
}
