package model

import "time"

// Student is a single grade record. Promedio is always derived from the
// partial scores; handlers never persist a caller-supplied average.
type Student struct {
	ID        string    `json:"id" db:"id"`
	Nombre    string    `json:"nombre" db:"nombre"`
	Parcial1  float64   `json:"parcial1" db:"parcial1"`
	Parcial2  float64   `json:"parcial2" db:"parcial2"`
	Parcial3  *float64  `json:"parcial3,omitempty" db:"parcial3"`
	Promedio  float64   `json:"promedio" db:"promedio"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}
