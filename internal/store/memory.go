package store

import (
	"context"
	"encoding/json"
	"os"
	"sync"
	"time"

	"gestion-notas/internal/model"
	"gestion-notas/pkg/errors"
)

// MemoryStore keeps students in an insertion-ordered slice guarded by a
// mutex. When snapshotPath is non-empty the slice is loaded from that
// JSON file at startup and rewritten after every mutation, standing in
// for a real database during local runs.
type MemoryStore struct {
	mu           sync.RWMutex
	students     []model.Student
	imports      map[int64]*model.Import
	nextImportID int64
	snapshotPath string
}

func NewMemoryStore(snapshotPath string) (*MemoryStore, error) {
	s := &MemoryStore{
		imports:      make(map[int64]*model.Import),
		nextImportID: 1,
		snapshotPath: snapshotPath,
	}

	if snapshotPath != "" {
		data, err := os.ReadFile(snapshotPath)
		switch {
		case err == nil:
			if err := json.Unmarshal(data, &s.students); err != nil {
				return nil, err
			}
		case os.IsNotExist(err):
			// First run, nothing to load.
		default:
			return nil, err
		}
	}

	return s, nil
}

func (s *MemoryStore) List(ctx context.Context) ([]model.Student, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Student, len(s.students))
	copy(out, s.students)
	return out, nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*model.Student, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.students {
		if s.students[i].ID == id {
			st := s.students[i]
			return &st, nil
		}
	}
	return nil, errors.ErrEstudianteNotFound
}

func (s *MemoryStore) Create(ctx context.Context, st *model.Student) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.students {
		if s.students[i].ID == st.ID {
			return errors.ErrDuplicateID
		}
	}
	s.students = append(s.students, *st)
	return s.snapshot()
}

func (s *MemoryStore) Update(ctx context.Context, st *model.Student) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.students {
		if s.students[i].ID == st.ID {
			s.students[i] = *st
			return s.snapshot()
		}
	}
	return errors.ErrEstudianteNotFound
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.students {
		if s.students[i].ID == id {
			s.students = append(s.students[:i], s.students[i+1:]...)
			return s.snapshot()
		}
	}
	return errors.ErrEstudianteNotFound
}

func (s *MemoryStore) BulkInsert(ctx context.Context, students []model.Student) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing := make(map[string]bool, len(s.students))
	for i := range s.students {
		existing[s.students[i].ID] = true
	}
	for i := range students {
		if existing[students[i].ID] {
			return errors.ErrDuplicateID
		}
	}

	s.students = append(s.students, students...)
	return s.snapshot()
}

func (s *MemoryStore) CreateImport(ctx context.Context, imp *model.Import) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	imp.ID = s.nextImportID
	s.nextImportID++
	now := time.Now()
	imp.CreatedAt = now
	imp.UpdatedAt = now

	cp := *imp
	s.imports[imp.ID] = &cp
	return nil
}

func (s *MemoryStore) GetImport(ctx context.Context, id int64) (*model.Import, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	imp, ok := s.imports[id]
	if !ok {
		return nil, errors.ErrImportNotFound
	}
	cp := *imp
	return &cp, nil
}

func (s *MemoryStore) UpdateImportStatus(ctx context.Context, id int64, status model.ImportStatus, totalRows int, errorMessage *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	imp, ok := s.imports[id]
	if !ok {
		return errors.ErrImportNotFound
	}
	imp.Status = status
	imp.TotalRows = totalRows
	imp.ErrorMessage = errorMessage
	imp.UpdatedAt = time.Now()
	return nil
}

// snapshot must be called with the write lock held.
func (s *MemoryStore) snapshot() error {
	if s.snapshotPath == "" {
		return nil
	}
	data, err := json.MarshalIndent(s.students, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.snapshotPath, data, 0o644)
}
