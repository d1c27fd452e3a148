package api

import (
	stderrors "errors"
	"io"
	"net/http"
	"strconv"

	"gestion-notas/internal/config"
	"gestion-notas/internal/logger"
	"gestion-notas/internal/model"
	"gestion-notas/internal/queue"
	"gestion-notas/internal/service"
	"gestion-notas/internal/storage"
	"gestion-notas/internal/store"
	"gestion-notas/internal/validate"
	"gestion-notas/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type Handler struct {
	svc      *service.Service
	store    store.Store
	producer *queue.Producer
	storage  storage.Storage
	cfg      *config.Config
	log      zerolog.Logger
}

func NewHandler(
	svc *service.Service,
	st store.Store,
	producer *queue.Producer,
	stg storage.Storage,
	cfg *config.Config,
) *Handler {
	return &Handler{
		svc:      svc,
		store:    st,
		producer: producer,
		storage:  stg,
		cfg:      cfg,
		log:      logger.Get(),
	}
}

func (h *Handler) ListEstudiantes(c *gin.Context) {
	students, err := h.svc.List(c.Request.Context())
	if err != nil {
		h.fail(c, err, "Failed to list students")
		return
	}
	if students == nil {
		students = []model.Student{}
	}
	c.JSON(http.StatusOK, students)
}

func (h *Handler) GetEstudiante(c *gin.Context) {
	st, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err, "Failed to get student")
		return
	}
	c.JSON(http.StatusOK, st)
}

func (h *Handler) CreateEstudiante(c *gin.Context) {
	var req model.StudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	st, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err, "Failed to create student")
		return
	}
	c.JSON(http.StatusCreated, st)
}

func (h *Handler) UpdateEstudiante(c *gin.Context) {
	var req model.StudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	st, err := h.svc.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.fail(c, err, "Failed to update student")
		return
	}
	c.JSON(http.StatusOK, st)
}

func (h *Handler) DeleteEstudiante(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err, "Failed to delete student")
		return
	}
	c.Status(http.StatusNoContent)
}

// ImportEstudiantes loads an inline JSON array. Validation failures come
// back as 422 with every row-level message, never just the first one.
func (h *Handler) ImportEstudiantes(c *gin.Context) {
	data, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	students, err := h.svc.ImportInline(c.Request.Context(), data)
	if err != nil {
		h.fail(c, err, "Inline import failed")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "Import loaded",
		"imported": len(students),
	})
}

func (h *Handler) ExportEstudiantes(c *gin.Context) {
	data, err := h.svc.Export(c.Request.Context())
	if err != nil {
		h.fail(c, err, "Export failed")
		return
	}

	c.Header("Content-Disposition", `attachment; filename="estudiantes.json"`)
	c.Data(http.StatusOK, "application/json", data)
}

// RegisterImport records an already-uploaded S3 object and queues the
// asynchronous import job for it.
func (h *Handler) RegisterImport(c *gin.Context) {
	var req model.ImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	exists, err := h.storage.Exists(c.Request.Context(), req.S3Path)
	if err != nil {
		h.fail(c, err, "Failed to check import file")
		return
	}
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "Import file not found in storage"})
		return
	}

	imp := &model.Import{
		S3Path: req.S3Path,
		Status: model.ImportStatusUploaded,
	}
	if err := h.store.CreateImport(c.Request.Context(), imp); err != nil {
		h.fail(c, err, "Failed to register import")
		return
	}

	job := model.ImportJob{ImportID: imp.ID, S3Path: imp.S3Path}
	if err := h.producer.EnqueueImportJob(c.Request.Context(), job); err != nil {
		h.fail(c, err, "Failed to enqueue import job")
		return
	}

	h.log.Info().Int64("import_id", imp.ID).Str("s3_path", imp.S3Path).Msg("Import job enqueued")

	c.JSON(http.StatusAccepted, gin.H{
		"message": "Import job queued successfully",
		"import":  imp,
	})
}

func (h *Handler) GetImportStatus(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid import ID"})
		return
	}

	imp, err := h.store.GetImport(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, "Failed to get import")
		return
	}

	c.JSON(http.StatusOK, model.ImportStatusResponse{
		ImportID:     imp.ID,
		Status:       string(imp.Status),
		TotalRows:    imp.TotalRows,
		ErrorMessage: imp.ErrorMessage,
		UpdatedAt:    imp.UpdatedAt,
	})
}

func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": h.cfg.App.Name,
		"version": h.cfg.App.Version,
	})
}

// fail maps domain errors to HTTP responses. Validation failures expose
// the accumulated messages; everything else stays generic.
func (h *Handler) fail(c *gin.Context, err error, logMsg string) {
	var vErr *validate.Error
	switch {
	case stderrors.As(err, &vErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":   "Validation failed",
			"errors":  vErr.Result.Messages(),
			"details": vErr.Result.Details,
		})
	case stderrors.Is(err, errors.ErrEstudianteNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Estudiante not found"})
	case stderrors.Is(err, errors.ErrImportNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Import not found"})
	case stderrors.Is(err, errors.ErrDuplicateID):
		c.JSON(http.StatusConflict, gin.H{"error": "Duplicate student id"})
	case stderrors.Is(err, errors.ErrInvalidImport):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		h.log.Error().Err(err).Msg(logMsg)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
