// Package service applies the grade-record business rules on top of a
// store: field validation, average derivation, id assignment and
// timestamps.
package service

import (
	"context"
	"encoding/json"
	"time"

	"gestion-notas/internal/logger"
	"gestion-notas/internal/model"
	"gestion-notas/internal/store"
	"gestion-notas/internal/validate"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type Service struct {
	store store.Store
	log   zerolog.Logger
}

func New(st store.Store) *Service {
	return &Service{
		store: st,
		log:   logger.Get(),
	}
}

func (s *Service) List(ctx context.Context) ([]model.Student, error) {
	return s.store.List(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (*model.Student, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, req model.StudentRequest) (*model.Student, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	id := req.ID
	if id == "" {
		id = uuid.NewString()
	}

	now := time.Now()
	st := &model.Student{
		ID:        id,
		Nombre:    req.Nombre,
		Parcial1:  req.Parcial1,
		Parcial2:  req.Parcial2,
		Parcial3:  req.Parcial3,
		Promedio:  validate.PromedioDe(req.Parcial1, req.Parcial2, req.Parcial3),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.store.Create(ctx, st); err != nil {
		return nil, err
	}

	s.log.Info().Str("id", st.ID).Float64("promedio", st.Promedio).Msg("Student created")
	return st, nil
}

func (s *Service) Update(ctx context.Context, id string, req model.StudentRequest) (*model.Student, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	existing, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	st := &model.Student{
		ID:        id,
		Nombre:    req.Nombre,
		Parcial1:  req.Parcial1,
		Parcial2:  req.Parcial2,
		Parcial3:  req.Parcial3,
		Promedio:  validate.PromedioDe(req.Parcial1, req.Parcial2, req.Parcial3),
		CreatedAt: existing.CreatedAt,
		UpdatedAt: time.Now(),
	}

	if err := s.store.Update(ctx, st); err != nil {
		return nil, err
	}

	s.log.Info().Str("id", st.ID).Float64("promedio", st.Promedio).Msg("Student updated")
	return st, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info().Str("id", id).Msg("Student deleted")
	return nil
}

// ImportInline validates a raw JSON array and loads it in one call. The
// stored promedio is always the recomputed one, never the imported
// value.
func (s *Service) ImportInline(ctx context.Context, data []byte) ([]model.Student, error) {
	var parsed interface{}
	if err := json.Unmarshal(data, &parsed); err != nil {
		// Undecodable bodies get the same structural error shape as a
		// non-array root.
		res := validate.ValidateImport(nil)
		return nil, validate.AsError(res)
	}

	if res := validate.ValidateImport(parsed); !res.Valid {
		return nil, validate.AsError(res)
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

	if err := s.store.BulkInsert(ctx, students); err != nil {
		return nil, err
	}

	s.log.Info().Int("count", len(students)).Msg("Bulk import loaded")
	return students, nil
}

// Export renders the whole store as an indented JSON array, the shape
// the bulk importer accepts back.
func (s *Service) Export(ctx context.Context) ([]byte, error) {
	students, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	if students == nil {
		students = []model.Student{}
	}
	return json.MarshalIndent(students, "", "  ")
}

func validateRequest(req model.StudentRequest) error {
	parciales := []float64{req.Parcial1, req.Parcial2}
	if req.Parcial3 != nil {
		parciales = append(parciales, *req.Parcial3)
	}
	return validate.AsError(validate.ValidateStudent(req.Nombre, parciales...))
}
