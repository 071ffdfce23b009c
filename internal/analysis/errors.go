package analysis

import (
	"errors"
	"fmt"
)

// ErrStructural matches any StructuralError via errors.Is.
var ErrStructural = errors.New("structural error")

// StructuralError reports a table that cannot carry the expected columns.
type StructuralError struct {
	Columns  int // widest row seen
	Required int
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("input table has %d columns, need at least %d (specialty=%d, payer=%d, date=%d)",
		e.Columns, e.Required, SpecialtyColumn, PayerColumn, DateColumn)
}

func (e *StructuralError) Is(target error) bool { return target == ErrStructural }
