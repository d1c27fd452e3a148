// Package validate holds the grade-record validation rules: per-record
// field checks, average derivation and row-by-row validation of bulk
// imports. Everything here is pure; callers decide what to do with a
// failed Result.
package validate

import (
	"fmt"
	"strings"
)

const (
	// NotaMin and NotaMax bound every partial score (closed range).
	NotaMin = 0.0
	NotaMax = 5.0

	// PromedioTolerancia is the absolute difference allowed between a
	// bulk-imported promedio and the recomputed two-partial mean.
	PromedioTolerancia = 0.05

	minNombreLen = 2
)

type Kind string

const (
	KindStructural       Kind = "structural"
	KindMissingField     Kind = "missing_field"
	KindTypeMismatch     Kind = "type_mismatch"
	KindOutOfRange       Kind = "out_of_range"
	KindDuplicateID      Kind = "duplicate_id"
	KindPromedioMismatch Kind = "promedio_mismatch"
	KindMalformedDate    Kind = "malformed_date"
)

// Detail is one validation failure. Row is 1-indexed for bulk imports
// and zero for single-record or global failures.
type Detail struct {
	Row     int    `json:"row,omitempty"`
	Field   string `json:"field,omitempty"`
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
}

type Result struct {
	Valid   bool     `json:"isValid"`
	Details []Detail `json:"details,omitempty"`
}

// Messages renders the accumulated errors as ordered human-readable
// strings, row prefixes included.
func (r Result) Messages() []string {
	if len(r.Details) == 0 {
		return nil
	}
	msgs := make([]string, len(r.Details))
	for i, d := range r.Details {
		if d.Row > 0 {
			msgs[i] = fmt.Sprintf("Fila %d: %s", d.Row, d.Message)
		} else {
			msgs[i] = d.Message
		}
	}
	return msgs
}

func (r *Result) add(d Detail) {
	r.Details = append(r.Details, d)
	r.Valid = false
}

// ValidateStudent checks a name and two or three partial scores. All
// failures are accumulated; it never panics and touches no state.
func ValidateStudent(nombre string, parciales ...float64) Result {
	res := Result{Valid: true}

	if len(strings.TrimSpace(nombre)) < minNombreLen {
		res.add(Detail{
			Field:   "nombre",
			Kind:    KindOutOfRange,
			Message: fmt.Sprintf("el nombre debe tener al menos %d caracteres", minNombreLen),
		})
	}

	for i, nota := range parciales {
		if nota < NotaMin || nota > NotaMax {
			field := fmt.Sprintf("parcial%d", i+1)
			res.add(Detail{
				Field:   field,
				Kind:    KindOutOfRange,
				Message: fmt.Sprintf("la nota %s debe estar entre %.1f y %.1f", field, NotaMin, NotaMax),
			})
		}
	}

	return res
}

// JoinMessages flattens a failed Result into a single error string.
func JoinMessages(r Result, sep string) string {
	return strings.Join(r.Messages(), sep)
}

// Error carries a failed Result across an error return so callers can
// inspect the structured details instead of parsing message text.
type Error struct {
	Result Result
}

func (e *Error) Error() string {
	return JoinMessages(e.Result, "; ")
}

// AsError returns nil for a valid Result, otherwise an *Error wrapping
// it.
func AsError(r Result) error {
	if r.Valid {
		return nil
	}
	return &Error{Result: r}
}
