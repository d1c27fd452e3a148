package service

import (
	"context"
	"encoding/json"
	"testing"

	"gestion-notas/internal/model"
	"gestion-notas/internal/store"
	"gestion-notas/internal/validate"
	"gestion-notas/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T) *Service {
	t.Helper()
	st, err := store.NewMemoryStore("")
	require.NoError(t, err)
	return New(st)
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	st, err := svc.Create(ctx, model.StudentRequest{Nombre: "Ana", Parcial1: 4, Parcial2: 2})
	require.NoError(t, err)

	assert.NotEmpty(t, st.ID) // server-assigned
	assert.InDelta(t, 3.0, st.Promedio, 1e-9)
	assert.False(t, st.CreatedAt.IsZero())
}

func TestService_Create_CallerAssignedID(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	st, err := svc.Create(ctx, model.StudentRequest{ID: "e1", Nombre: "Ana", Parcial1: 4, Parcial2: 2})
	require.NoError(t, err)
	assert.Equal(t, "e1", st.ID)

	_, err = svc.Create(ctx, model.StudentRequest{ID: "e1", Nombre: "Otro", Parcial1: 1, Parcial2: 1})
	assert.ErrorIs(t, err, errors.ErrDuplicateID)
}

func TestService_Create_Invalid(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	_, err := svc.Create(ctx, model.StudentRequest{Nombre: "A", Parcial1: 9, Parcial2: 2})
	require.Error(t, err)

	var vErr *validate.Error
	require.ErrorAs(t, err, &vErr)
	assert.Len(t, vErr.Result.Details, 2)
}

func TestService_Create_WeightedAverageWithThirdPartial(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	p3 := 4.25
	st, err := svc.Create(ctx, model.StudentRequest{Nombre: "Luis", Parcial1: 3, Parcial2: 4, Parcial3: &p3})
	require.NoError(t, err)
	assert.InDelta(t, 3.8, st.Promedio, 1e-9)
}

func TestService_Update_RecomputesPromedio(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	st, err := svc.Create(ctx, model.StudentRequest{ID: "e1", Nombre: "Ana", Parcial1: 4, Parcial2: 2})
	require.NoError(t, err)
	created := st.CreatedAt

	upd, err := svc.Update(ctx, "e1", model.StudentRequest{Nombre: "Ana", Parcial1: 5, Parcial2: 5})
	require.NoError(t, err)
	assert.InDelta(t, 5.0, upd.Promedio, 1e-9)
	assert.Equal(t, created, upd.CreatedAt)

	_, err = svc.Update(ctx, "nope", model.StudentRequest{Nombre: "Ana", Parcial1: 1, Parcial2: 1})
	assert.ErrorIs(t, err, errors.ErrEstudianteNotFound)
}

func TestService_ImportInline(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	raw := `[
		{"id": "e1", "nombre": "Ana", "parcial1": 4, "parcial2": 2, "promedio": 3},
		{"id": "e2", "nombre": "Luis", "parcial1": 5, "parcial2": 5, "promedio": 5}
	]`

	students, err := svc.ImportInline(ctx, []byte(raw))
	require.NoError(t, err)
	assert.Len(t, students, 2)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestService_ImportInline_Invalid(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	raw := `[{"id": "e1", "nombre": "Ana", "parcial1": 4, "parcial2": 2, "promedio": 3.2}]`

	_, err := svc.ImportInline(ctx, []byte(raw))
	require.Error(t, err)

	var vErr *validate.Error
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, validate.KindPromedioMismatch, vErr.Result.Details[0].Kind)

	// Nothing persisted
	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestService_ImportInline_RejectsBadThirdPartial(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		raw      string
		wantKind validate.Kind
	}{
		{
			name:     "out of range",
			raw:      `[{"id": "e1", "nombre": "Ana", "parcial1": 4, "parcial2": 2, "parcial3": 99, "promedio": 3}]`,
			wantKind: validate.KindOutOfRange,
		},
		{
			name:     "not numeric",
			raw:      `[{"id": "e1", "nombre": "Ana", "parcial1": 4, "parcial2": 2, "parcial3": "x", "promedio": 3}]`,
			wantKind: validate.KindTypeMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newService(t)

			_, err := svc.ImportInline(ctx, []byte(tt.raw))
			require.Error(t, err)

			// The failure must keep the validation shape, not surface as
			// a decode error.
			var vErr *validate.Error
			require.ErrorAs(t, err, &vErr)
			require.Len(t, vErr.Result.Details, 1)
			assert.Equal(t, tt.wantKind, vErr.Result.Details[0].Kind)
			assert.Equal(t, "parcial3", vErr.Result.Details[0].Field)

			list, err := svc.List(ctx)
			require.NoError(t, err)
			assert.Empty(t, list)
		})
	}
}

func TestService_ImportInline_NotJSON(t *testing.T) {
	svc := newService(t)

	_, err := svc.ImportInline(context.Background(), []byte("not json at all"))
	require.Error(t, err)

	var vErr *validate.Error
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, validate.KindStructural, vErr.Result.Details[0].Kind)
}

func TestService_Export(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	data, err := svc.Export(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, "[]", string(data))

	_, err = svc.Create(ctx, model.StudentRequest{ID: "e1", Nombre: "Ana", Parcial1: 4, Parcial2: 2})
	require.NoError(t, err)

	data, err = svc.Export(ctx)
	require.NoError(t, err)

	var students []model.Student
	require.NoError(t, json.Unmarshal(data, &students))
	require.Len(t, students, 1)
	assert.Equal(t, "e1", students[0].ID)
}
