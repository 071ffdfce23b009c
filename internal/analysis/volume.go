package analysis

import "sort"

// DailyVolume is the total number of visits on one day.
type DailyVolume struct {
	Date  Date `json:"date" yaml:"date"`
	Total int  `json:"total" yaml:"total"`
}

// VolumeSummary reports the busiest and quietest days. Days lists every
// day's total in date order.
type VolumeSummary struct {
	Max  DailyVolume   `json:"max" yaml:"max"`
	Min  DailyVolume   `json:"min" yaml:"min"`
	Days []DailyVolume `json:"days" yaml:"days"`
}

// AnalyzeVolume totals records per day and picks the extremes. When several
// days share the max (or min) total, the earliest one wins. It returns false
// for empty input.
func AnalyzeVolume(records []Record) (VolumeSummary, bool) {
	if len(records) == 0 {
		return VolumeSummary{}, false
	}
	totals := map[Date]int{}
	for _, r := range records {
		totals[r.VisitDate]++
	}
	days := make([]DailyVolume, 0, len(totals))
	for d, n := range totals {
		days = append(days, DailyVolume{Date: d, Total: n})
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date.Before(days[j].Date) })

	// days is date-ordered, so strict comparisons keep the earliest tie.
	maxDay, minDay := days[0], days[0]
	for _, dv := range days[1:] {
		if dv.Total > maxDay.Total {
			maxDay = dv
		}
		if dv.Total < minDay.Total {
			minDay = dv
		}
	}
	return VolumeSummary{Max: maxDay, Min: minDay, Days: days}, true
}
