package analysis

import (
	"math"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// Date is a calendar date without time-of-day or location.
// The zero value marks an absent or unparseable date.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the calendar date of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// IsZero reports whether d is the invalid date.
func (d Date) IsZero() bool { return d == Date{} }

// Time returns midnight UTC of d.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// Before reports whether d is strictly earlier than o.
func (d Date) Before(o Date) bool {
	if d.Year != o.Year {
		return d.Year < o.Year
	}
	if d.Month != o.Month {
		return d.Month < o.Month
	}
	return d.Day < o.Day
}

// Format formats d with a time layout, e.g. "02/01/2006".
func (d Date) Format(layout string) string {
	if d.IsZero() {
		return ""
	}
	return d.Time().Format(layout)
}

func (d Date) String() string { return d.Format("2006-01-02") }

// MarshalText renders d as an ISO date in YAML/JSON output.
func (d Date) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// Day-first layouts are tried before year-first ones. There is no month-first
// fallback: "03/15/2024" is invalid rather than March 15.
var dayFirstLayouts = []string{
	"02/01/2006", "2/1/2006", "02-01-2006", "2-1-2006", "02.01.2006",
	"02/01/06", "2/1/06",
}

var yearFirstLayouts = []string{
	"2006-01-02", "2006/01/02", "2006-01-02 15:04:05", "2006-01-02 15:04",
	"2006-01-02T15:04:05", time.RFC3339,
}

var timeSuffixes = []string{"", " 15:04", " 15:04:05"}

// maxExcelSerial is 9999-12-31 in the 1900 date system.
const maxExcelSerial = 2958465

// CoerceDate converts a cell value into a calendar date.
// Strings are parsed day-first; numbers are Excel serial dates; time.Time
// values keep their calendar date. Anything else reports false.
func CoerceDate(v any) (Date, bool) {
	switch x := v.(type) {
	case time.Time:
		if x.IsZero() {
			return Date{}, false
		}
		return DateOf(x), true
	case *time.Time:
		if x == nil || x.IsZero() {
			return Date{}, false
		}
		return DateOf(*x), true
	case float64:
		return fromSerial(x)
	case float32:
		return fromSerial(float64(x))
	case int:
		return fromSerial(float64(x))
	case int64:
		return fromSerial(float64(x))
	case string:
		return parseDate(x)
	default:
		return Date{}, false
	}
}

func fromSerial(f float64) (Date, bool) {
	if math.IsNaN(f) || f < 1 || f > maxExcelSerial {
		return Date{}, false
	}
	t, err := excelize.ExcelDateToTime(f, false)
	if err != nil {
		return Date{}, false
	}
	return DateOf(t), true
}

func parseDate(s string) (Date, bool) {
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return Date{}, false
	}
	for _, l := range dayFirstLayouts {
		for _, suffix := range timeSuffixes {
			if t, err := time.Parse(l+suffix, s); err == nil {
				return DateOf(t), true
			}
		}
	}
	for _, l := range yearFirstLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return DateOf(t), true
		}
	}
	return Date{}, false
}
