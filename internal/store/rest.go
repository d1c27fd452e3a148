package store

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"gestion-notas/internal/config"
	"gestion-notas/internal/logger"
	"gestion-notas/internal/model"
	"gestion-notas/pkg/errors"

	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"
)

const (
	cacheKeyList = "estudiantes:list"
	cacheKeyGet  = "estudiantes:id:"
)

// RESTStore talks to the hosted table API the browser client used
// directly. Reads go through a short-TTL cache so a chatty UI does not
// hammer the hosted service; any write flushes it.
type RESTStore struct {
	cfg        *config.Config
	httpClient *http.Client
	auth       *authManager
	cache      *gocache.Cache
	log        zerolog.Logger
}

func NewRESTStore(cfg *config.Config) *RESTStore {
	ttl := cfg.RemoteTable.CacheTTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}

	return &RESTStore{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.RemoteTable.Timeout,
		},
		auth:  newAuthManager(cfg),
		cache: gocache.New(ttl, 2*ttl),
		log:   logger.Get(),
	}
}

func (s *RESTStore) List(ctx context.Context) ([]model.Student, error) {
	if cached, ok := s.cache.Get(cacheKeyList); ok {
		return cached.([]model.Student), nil
	}

	var students []model.Student
	if err := s.do(ctx, http.MethodGet, s.tableURL(s.cfg.RemoteTable.EstudiantesTable, ""), nil, &students); err != nil {
		return nil, err
	}

	s.cache.SetDefault(cacheKeyList, students)
	return students, nil
}

func (s *RESTStore) Get(ctx context.Context, id string) (*model.Student, error) {
	if cached, ok := s.cache.Get(cacheKeyGet + id); ok {
		st := cached.(model.Student)
		return &st, nil
	}

	var st model.Student
	if err := s.do(ctx, http.MethodGet, s.tableURL(s.cfg.RemoteTable.EstudiantesTable, id), nil, &st); err != nil {
		return nil, err
	}

	s.cache.SetDefault(cacheKeyGet+id, st)
	return &st, nil
}

func (s *RESTStore) Create(ctx context.Context, st *model.Student) error {
	err := s.do(ctx, http.MethodPost, s.tableURL(s.cfg.RemoteTable.EstudiantesTable, ""), st, st)
	if err == nil {
		s.cache.Flush()
	}
	return err
}

func (s *RESTStore) Update(ctx context.Context, st *model.Student) error {
	err := s.do(ctx, http.MethodPut, s.tableURL(s.cfg.RemoteTable.EstudiantesTable, st.ID), st, st)
	if err == nil {
		s.cache.Flush()
	}
	return err
}

func (s *RESTStore) Delete(ctx context.Context, id string) error {
	err := s.do(ctx, http.MethodDelete, s.tableURL(s.cfg.RemoteTable.EstudiantesTable, id), nil, nil)
	if err == nil {
		s.cache.Flush()
	}
	return err
}

func (s *RESTStore) BulkInsert(ctx context.Context, students []model.Student) error {
	url := s.tableURL(s.cfg.RemoteTable.EstudiantesTable, "") + "/bulk"
	err := s.do(ctx, http.MethodPost, url, students, nil)
	if err == nil {
		s.cache.Flush()
	}
	return err
}

func (s *RESTStore) CreateImport(ctx context.Context, imp *model.Import) error {
	return s.do(ctx, http.MethodPost, s.tableURL(s.cfg.RemoteTable.ImportsTable, ""), imp, imp)
}

func (s *RESTStore) GetImport(ctx context.Context, id int64) (*model.Import, error) {
	var imp model.Import
	err := s.do(ctx, http.MethodGet, s.tableURL(s.cfg.RemoteTable.ImportsTable, strconv.FormatInt(id, 10)), nil, &imp)
	if err == errors.ErrEstudianteNotFound {
		return nil, errors.ErrImportNotFound
	}
	if err != nil {
		return nil, err
	}
	return &imp, nil
}

func (s *RESTStore) UpdateImportStatus(ctx context.Context, id int64, status model.ImportStatus, totalRows int, errorMessage *string) error {
	imp, err := s.GetImport(ctx, id)
	if err != nil {
		return err
	}
	imp.Status = status
	imp.TotalRows = totalRows
	imp.ErrorMessage = errorMessage
	return s.do(ctx, http.MethodPut, s.tableURL(s.cfg.RemoteTable.ImportsTable, strconv.FormatInt(id, 10)), imp, nil)
}

func (s *RESTStore) tableURL(table, id string) string {
	url := s.cfg.RemoteTable.BaseURL + "/tables/" + table + "/rows"
	if id != "" {
		url += "/" + id
	}
	return url
}

// do runs an authenticated request, retrying retryable failures (auth
// refresh, 429/503, transport errors) with linear backoff up to the
// configured attempt count. Domain errors return immediately.
func (s *RESTStore) do(ctx context.Context, method, url string, body, out interface{}) error {
	attempts := s.cfg.RemoteTable.RetryAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(s.cfg.RemoteTable.RetryDelay * time.Duration(attempt)):
			}
			s.log.Warn().Err(lastErr).Int("attempt", attempt+1).Str("url", url).Msg("Retrying remote table API call")
		}

		lastErr = s.doOnce(ctx, method, url, body, out)
		if lastErr == nil {
			return nil
		}

		var rErr errors.RetryableError
		if !stderrors.As(lastErr, &rErr) {
			return lastErr
		}
	}

	return lastErr
}

func (s *RESTStore) doOnce(ctx context.Context, method, url string, body, out interface{}) error {
	token, err := s.auth.GetToken(ctx)
	if err != nil {
		return errors.NewRetryableError(err, "failed to get auth token")
	}

	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	s.log.Debug().Str("method", method).Str("url", url).Msg("Calling remote table API")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return errors.NewRetryableError(err, "HTTP request failed")
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusNoContent:
		if out != nil && resp.StatusCode != http.StatusNoContent {
			if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
				return fmt.Errorf("failed to decode response: %w", err)
			}
		}
		return nil
	case http.StatusNotFound:
		return errors.ErrEstudianteNotFound
	case http.StatusConflict:
		return errors.ErrDuplicateID
	case http.StatusUnauthorized:
		// Token might be expired, retry will refresh it
		return errors.NewRetryableError(errors.ErrAuthenticationFailed, "authentication failed")
	case http.StatusTooManyRequests, http.StatusServiceUnavailable:
		return errors.NewRetryableError(errors.ErrRemoteAPIError, "remote service unavailable")
	default:
		payload, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: HTTP %d: %s", errors.ErrRemoteAPIError, resp.StatusCode, string(payload))
	}
}
