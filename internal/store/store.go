// Package store abstracts student persistence. The backends mirror the
// product's data-source switch: a volatile/JSON-snapshot store for local
// use, a MySQL table, and the hosted table API.
package store

import (
	"context"

	"gestion-notas/internal/model"
)

type Store interface {
	List(ctx context.Context) ([]model.Student, error)
	Get(ctx context.Context, id string) (*model.Student, error)
	Create(ctx context.Context, s *model.Student) error
	Update(ctx context.Context, s *model.Student) error
	Delete(ctx context.Context, id string) error
	BulkInsert(ctx context.Context, students []model.Student) error

	CreateImport(ctx context.Context, imp *model.Import) error
	GetImport(ctx context.Context, id int64) (*model.Import, error)
	UpdateImportStatus(ctx context.Context, id int64, status model.ImportStatus, totalRows int, errorMessage *string) error
}
