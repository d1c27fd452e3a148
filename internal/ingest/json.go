package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gestion-notas/internal/model"
	"gestion-notas/internal/validate"
)

type JSONParser struct{}

func NewJSONParser() *JSONParser {
	return &JSONParser{}
}

func (p *JSONParser) Parse(ctx context.Context, data []byte) ([]model.Student, error) {
	var parsed interface{}
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode JSON: %w", err)
	}

	if err := validate.ValidateImportStrict(parsed); err != nil {
		return nil, err
	}

	var students []model.Student
	if err := json.Unmarshal(data, &students); err != nil {
		return nil, err
	}

	now := time.Now()
	for i := range students {
		st := &students[i]
		st.Promedio = validate.PromedioDe(st.Parcial1, st.Parcial2, st.Parcial3)
		if st.CreatedAt.IsZero() {
			st.CreatedAt = now
		}
		if st.UpdatedAt.IsZero() {
			st.UpdatedAt = now
		}
	}

	return students, nil
}
