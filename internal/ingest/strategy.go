// Package ingest turns uploaded import files into student records. Each
// file format gets its own ParsingStrategy; all of them funnel through
// the bulk validator before any record reaches a store.
package ingest

import (
	"context"
	"path"
	"strings"

	"gestion-notas/internal/model"
	"gestion-notas/pkg/errors"
)

type ParsingStrategy interface {
	Parse(ctx context.Context, data []byte) ([]model.Student, error)
}

// ForPath picks a strategy from the file extension.
func ForPath(p string) (ParsingStrategy, error) {
	switch strings.ToLower(path.Ext(p)) {
	case ".json":
		return NewJSONParser(), nil
	case ".xlsx":
		return NewExcelParser(), nil
	default:
		return nil, errors.ErrInvalidFileFormat
	}
}
