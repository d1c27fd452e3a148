package store

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"gestion-notas/internal/config"
	"gestion-notas/internal/model"
	"gestion-notas/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTableAPI is a minimal hosted-table backend: token auth plus a
// students table keyed by id.
type fakeTableAPI struct {
	students   map[string]model.Student
	authCalls  int
	tableCalls int
	failures   int // rows requests answered with 503 before recovering
}

func (f *fakeTableAPI) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/auth/token", func(w http.ResponseWriter, r *http.Request) {
		f.authCalls++
		json.NewEncoder(w).Encode(model.AuthTokenResponse{Token: "tok", ExpiresIn: 3600})
	})

	mux.HandleFunc("/tables/estudiantes/rows", func(w http.ResponseWriter, r *http.Request) {
		f.tableCalls++
		if f.failures > 0 {
			f.failures--
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		switch r.Method {
		case http.MethodGet:
			out := make([]model.Student, 0, len(f.students))
			for _, st := range f.students {
				out = append(out, st)
			}
			json.NewEncoder(w).Encode(out)
		case http.MethodPost:
			var st model.Student
			json.NewDecoder(r.Body).Decode(&st)
			if _, exists := f.students[st.ID]; exists {
				w.WriteHeader(http.StatusConflict)
				return
			}
			f.students[st.ID] = st
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(st)
		}
	})

	mux.HandleFunc("/tables/estudiantes/rows/", func(w http.ResponseWriter, r *http.Request) {
		f.tableCalls++
		id := strings.TrimPrefix(r.URL.Path, "/tables/estudiantes/rows/")
		st, exists := f.students[id]
		if !exists {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		switch r.Method {
		case http.MethodGet:
			json.NewEncoder(w).Encode(st)
		case http.MethodDelete:
			delete(f.students, id)
			w.WriteHeader(http.StatusNoContent)
		}
	})

	return mux
}

func newRESTStore(t *testing.T) (*RESTStore, *fakeTableAPI) {
	t.Helper()

	api := &fakeTableAPI{students: make(map[string]model.Student)}
	srv := httptest.NewServer(api.handler())
	t.Cleanup(srv.Close)

	cfg := &config.Config{}
	cfg.RemoteTable.BaseURL = srv.URL
	cfg.RemoteTable.AuthEndpoint = "/auth/token"
	cfg.RemoteTable.EstudiantesTable = "estudiantes"
	cfg.RemoteTable.ImportsTable = "imports"
	cfg.RemoteTable.Timeout = 5 * time.Second
	cfg.RemoteTable.CacheTTL = time.Minute
	cfg.RemoteTable.RetryAttempts = 3
	cfg.RemoteTable.RetryDelay = time.Millisecond

	return NewRESTStore(cfg), api
}

func TestRESTStore_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	s, api := newRESTStore(t)

	st := &model.Student{ID: "e1", Nombre: "Ana", Parcial1: 4, Parcial2: 2, Promedio: 3}
	require.NoError(t, s.Create(ctx, st))

	got, err := s.Get(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, "Ana", got.Nombre)

	// Token fetched once and reused
	assert.Equal(t, 1, api.authCalls)

	assert.ErrorIs(t, s.Create(ctx, st), errors.ErrDuplicateID)
}

func TestRESTStore_NotFound(t *testing.T) {
	ctx := context.Background()
	s, _ := newRESTStore(t)

	_, err := s.Get(ctx, "nope")
	assert.ErrorIs(t, err, errors.ErrEstudianteNotFound)

	err = s.Delete(ctx, "nope")
	assert.ErrorIs(t, err, errors.ErrEstudianteNotFound)
}

func TestRESTStore_RetriesRetryableFailures(t *testing.T) {
	ctx := context.Background()
	s, api := newRESTStore(t)
	api.failures = 2 // first two rows requests answer 503

	st := &model.Student{ID: "e1", Nombre: "Ana", Parcial1: 4, Parcial2: 2, Promedio: 3}
	require.NoError(t, s.Create(ctx, st))
	assert.Equal(t, 3, api.tableCalls)
}

func TestRESTStore_GivesUpAfterConfiguredAttempts(t *testing.T) {
	ctx := context.Background()
	s, api := newRESTStore(t)
	api.failures = 10

	err := s.Create(ctx, &model.Student{ID: "e1", Nombre: "Ana"})
	require.Error(t, err)

	var rErr errors.RetryableError
	assert.ErrorAs(t, err, &rErr)
	assert.Equal(t, 3, api.tableCalls)
}

func TestRESTStore_ListUsesCache(t *testing.T) {
	ctx := context.Background()
	s, api := newRESTStore(t)

	require.NoError(t, s.Create(ctx, &model.Student{ID: "e1", Nombre: "Ana"}))
	callsAfterCreate := api.tableCalls

	_, err := s.List(ctx)
	require.NoError(t, err)
	_, err = s.List(ctx)
	require.NoError(t, err)

	// Second List served from cache
	assert.Equal(t, callsAfterCreate+1, api.tableCalls)

	// A write flushes the cache
	require.NoError(t, s.Create(ctx, &model.Student{ID: "e2", Nombre: "Luis"}))
	_, err = s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, callsAfterCreate+3, api.tableCalls)
}
