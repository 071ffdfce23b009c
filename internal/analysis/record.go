package analysis

// Record is one visit after normalization, classification and date coercion.
type Record struct {
	Specialty string        `json:"specialty" yaml:"specialty"`
	Payer     string        `json:"payer" yaml:"payer"`
	Category  PayerCategory `json:"category" yaml:"category"`
	VisitDate Date          `json:"visit_date" yaml:"visit_date"`
}

// Complete reports whether r may enter aggregation.
func (r Record) Complete() bool {
	return r.Specialty != "" && r.Payer != "" && !r.VisitDate.IsZero()
}

// DropStats counts rows kept and rows excluded per first failing reason.
type DropStats struct {
	Kept           int `json:"kept" yaml:"kept"`
	EmptySpecialty int `json:"empty_specialty" yaml:"empty_specialty"`
	EmptyPayer     int `json:"empty_payer" yaml:"empty_payer"`
	InvalidDate    int `json:"invalid_date" yaml:"invalid_date"`
}

// Dropped is the number of rows excluded for any reason.
func (s DropStats) Dropped() int { return s.EmptySpecialty + s.EmptyPayer + s.InvalidDate }

// NewRecord normalizes and classifies one raw record. The result may be
// incomplete; see Complete.
func NewRecord(raw RawRecord) Record {
	payer := Normalize(raw.Payer)
	d, _ := CoerceDate(raw.Date)
	return Record{
		Specialty: Normalize(raw.Specialty),
		Payer:     payer,
		Category:  Classify(payer),
		VisitDate: d,
	}
}

// Prepare turns raw records into complete, classified records. Emptiness is
// checked after normalization, so whitespace-only or non-text cells are
// dropped too.
func Prepare(raws []RawRecord) ([]Record, DropStats) {
	var stats DropStats
	out := make([]Record, 0, len(raws))
	for _, raw := range raws {
		r := NewRecord(raw)
		if r.Complete() {
			stats.Kept++
			out = append(out, r)
			continue
		}
		switch {
		case r.Specialty == "":
			stats.EmptySpecialty++
		case r.Payer == "":
			stats.EmptyPayer++
		default:
			stats.InvalidDate++
		}
	}
	return out, stats
}
