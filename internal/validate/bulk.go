package validate

import (
	"fmt"
	"math"
	"strings"
	"time"

	"gestion-notas/pkg/errors"
)

// ValidateImport checks an arbitrary parsed JSON value against the bulk
// import contract. Every problem across every row is accumulated; a
// non-array root is the only short circuit. Row numbers in the details
// are 1-indexed.
func ValidateImport(v interface{}) Result {
	res := Result{Valid: true}

	rows, ok := v.([]interface{})
	if !ok {
		res.add(Detail{
			Kind:    KindStructural,
			Message: "el contenido debe ser un arreglo JSON de estudiantes",
		})
		return res
	}

	seen := make(map[string]bool, len(rows))
	for i, raw := range rows {
		validateRow(&res, raw, i+1, seen)
	}

	return res
}

// ValidateImportStrict is the throwing variant: it runs the same checks
// and converts any failure into a single error joining all messages.
func ValidateImportStrict(v interface{}) error {
	res := ValidateImport(v)
	if res.Valid {
		return nil
	}
	return fmt.Errorf("%w: %s", errors.ErrInvalidImport, JoinMessages(res, "; "))
}

func validateRow(res *Result, raw interface{}, row int, seen map[string]bool) {
	obj, ok := raw.(map[string]interface{})
	if !ok {
		res.add(Detail{Row: row, Kind: KindStructural, Message: "no es un objeto válido"})
		return
	}

	// Fields flagged here are skipped when the per-record validator runs
	// below, so one bad field yields one error.
	flagged := make(map[string]bool)

	id, hasID := asString(obj["id"])
	if !hasID || strings.TrimSpace(id) == "" {
		res.add(Detail{Row: row, Field: "id", Kind: KindMissingField, Message: "falta el campo 'id' o está vacío"})
	} else if seen[id] {
		res.add(Detail{Row: row, Field: "id", Kind: KindDuplicateID, Message: fmt.Sprintf("id duplicado '%s'", id)})
	} else {
		seen[id] = true
	}

	nombre, hasNombre := asString(obj["nombre"])
	if !hasNombre || strings.TrimSpace(nombre) == "" {
		res.add(Detail{Row: row, Field: "nombre", Kind: KindMissingField, Message: "falta el campo 'nombre' o está vacío"})
		flagged["nombre"] = true
	}

	// Non-numeric partials are reported once as type errors and coerced
	// to 0 afterwards so the range check does not fire on top of them.
	p1, ok1 := asNumber(obj["parcial1"])
	if !ok1 {
		res.add(Detail{Row: row, Field: "parcial1", Kind: KindTypeMismatch, Message: "'parcial1' debe ser numérico"})
		flagged["parcial1"] = true
		p1 = 0
	}
	p2, ok2 := asNumber(obj["parcial2"])
	if !ok2 {
		res.add(Detail{Row: row, Field: "parcial2", Kind: KindTypeMismatch, Message: "'parcial2' debe ser numérico"})
		flagged["parcial2"] = true
		p2 = 0
	}

	// parcial3 is optional (JSON null counts as absent) but when present
	// it goes through the same type check and re-validation as the
	// mandatory partials, so a third score of 99 or "x" cannot slip
	// into the store.
	parciales := []float64{p1, p2}
	if raw3, present := obj["parcial3"]; present && raw3 != nil {
		p3, ok3 := asNumber(raw3)
		if !ok3 {
			res.add(Detail{Row: row, Field: "parcial3", Kind: KindTypeMismatch, Message: "'parcial3' debe ser numérico"})
			flagged["parcial3"] = true
			p3 = 0
		}
		parciales = append(parciales, p3)
	}

	promedio, okProm := asNumber(obj["promedio"])
	if !okProm {
		res.add(Detail{Row: row, Field: "promedio", Kind: KindTypeMismatch, Message: "'promedio' debe ser numérico"})
	} else if ok1 && ok2 {
		esperado := Promedio(p1, p2)
		if math.Abs(promedio-esperado) > PromedioTolerancia {
			res.add(Detail{
				Row:   row,
				Field: "promedio",
				Kind:  KindPromedioMismatch,
				Message: fmt.Sprintf("promedio %.2f no coincide con el esperado %.2f (tolerancia %.2f)",
					promedio, esperado, PromedioTolerancia),
			})
		}
	}

	for _, field := range []string{"createdAt", "updatedAt"} {
		if val, present := obj[field]; present {
			if s, isStr := asString(val); !isStr || !validISODate(s) {
				res.add(Detail{Row: row, Field: field, Kind: KindMalformedDate, Message: fmt.Sprintf("'%s' no es una fecha ISO válida", field)})
			}
		}
	}

	for _, d := range ValidateStudent(nombre, parciales...).Details {
		if flagged[d.Field] {
			continue
		}
		d.Row = row
		res.add(d)
	}
}

func asString(v interface{}) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func asNumber(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}

// RFC 3339 is the one timestamp shape the JSON decoder accepts into
// time.Time, so it is also the one the validator admits.
func validISODate(s string) bool {
	_, err := time.Parse(time.RFC3339, s)
	return err == nil
}
