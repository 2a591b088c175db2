package http

import (
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/syedbaqir291-debug/42-Days-Compliance-Status/internal/config"
	apierrors "github.com/syedbaqir291-debug/42-Days-Compliance-Status/internal/errors"
	"github.com/syedbaqir291-debug/42-Days-Compliance-Status/internal/middleware"
	"github.com/syedbaqir291-debug/42-Days-Compliance-Status/internal/validation"
	api "github.com/syedbaqir291-debug/42-Days-Compliance-Status/pkg/contracts/api/v1"
)

const (
	// XLSXContentType is the MIME type of annotated workbooks
	XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	// DownloadPathPrefix is where stored results are served from
	DownloadPathPrefix = "/api/compliance/downloads/"

	uploadField  = "file"
	requestField = "request"

	// room for the multipart envelope and the request field
	multipartOverhead = 1 << 20
	maxFormMemory     = 32 << 20
)

// ComplianceHandler handles workbook upload, compliance checks and downloads
type ComplianceHandler struct {
	service      ComplianceServiceInterface
	validator    *middleware.ValidationMiddleware
	files        *validation.FileValidator
	cfg          config.ComplianceConfig
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewComplianceHandler creates a new compliance handler
func NewComplianceHandler(
	service ComplianceServiceInterface,
	validator *middleware.ValidationMiddleware,
	files *validation.FileValidator,
	cfg config.ComplianceConfig,
	logger *slog.Logger,
	errorHandler *apierrors.ErrorHandler,
) *ComplianceHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ComplianceHandler{
		service:      service,
		validator:    validator,
		files:        files,
		cfg:          cfg,
		logger:       logger.With(slog.String("component", "compliance_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the routes mounted under /api/compliance
func (h *ComplianceHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.With(h.uploadLimit(), h.validator.ContentTypeValidator("multipart/form-data")).
		Post("/check", h.Check)
	r.Get("/downloads/{id}", h.Download)
	r.Delete("/downloads/{id}", h.Discard)

	return r
}

// WorkbookRoutes returns the routes mounted under /api/workbooks
func (h *ComplianceHandler) WorkbookRoutes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.With(h.uploadLimit(), h.validator.ContentTypeValidator("multipart/form-data")).
		Post("/inspect", h.Inspect)

	return r
}

func (h *ComplianceHandler) uploadLimit() func(http.Handler) http.Handler {
	limit := h.files.MaxBytes()
	if limit == 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return middleware.MaxBodySize(limit + multipartOverhead)
}

// Inspect handles POST /api/workbooks/inspect
func (h *ComplianceHandler) Inspect(w http.ResponseWriter, r *http.Request) {
	file, header, err := h.readUpload(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	defer file.Close()

	info, err := h.service.Inspect(r.Context(), file, header.Filename)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, info)
}

// Check handles POST /api/compliance/check
func (h *ComplianceHandler) Check(w http.ResponseWriter, r *http.Request) {
	file, header, err := h.readUpload(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	defer file.Close()

	req, err := h.decodeCheckRequest(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	domainReq, err := req.ToDomain(h.cfg.BlankPolicy())
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation(requestField, err.Error()))
		return
	}

	result, err := h.service.Check(r.Context(), file, header.Filename, domainReq)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "check request served",
		slog.String("result_id", result.ID),
		slog.String("filename", header.Filename),
		slog.Int("sheets", len(result.Sheets)))

	resp := api.NewCheckResponse(result, h.cfg.StatusColumn, DownloadPathPrefix+result.ID, h.cfg.PreviewRows)
	render.Status(r, http.StatusOK)
	render.JSON(w, r, resp)
}

// Download handles GET /api/compliance/downloads/{id}
func (h *ComplianceHandler) Download(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("id", "Result ID is required"))
		return
	}

	stored, err := h.service.Download(r.Context(), id)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", XLSXContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", stored.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(stored.Data)))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(stored.Data); err != nil {
		h.logger.WarnContext(r.Context(), "download interrupted",
			slog.String("result_id", id),
			slog.String("error", err.Error()))
	}
}

// Discard handles DELETE /api/compliance/downloads/{id}
func (h *ComplianceHandler) Discard(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.service.Discard(r.Context(), id); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// readUpload returns the validated workbook from the "file" form field.
func (h *ComplianceHandler) readUpload(r *http.Request) (multipart.File, *multipart.FileHeader, error) {
	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, nil, apierrors.ErrPayloadTooLarge
		}
		return nil, nil, apierrors.InvalidRequestWithError(fmt.Errorf("parse upload: %w", err))
	}

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil, apierrors.ErrMissingFile
		}
		return nil, nil, apierrors.InvalidRequestWithError(err)
	}

	if err := h.files.ValidateUpload(header.Filename, header.Size); err != nil {
		file.Close()
		return nil, nil, err
	}

	return file, header, nil
}

// decodeCheckRequest reads the JSON "request" field. Missing direction and
// threshold take the configured defaults.
func (h *ComplianceHandler) decodeCheckRequest(r *http.Request) (*api.CheckRequest, error) {
	raw := strings.TrimSpace(r.FormValue(requestField))
	if raw == "" {
		return nil, apierrors.ErrValidation(requestField, "Check request is required")
	}

	var req api.CheckRequest
	if err := render.DecodeJSON(strings.NewReader(raw), &req); err != nil {
		return nil, apierrors.ErrValidation(requestField, "Invalid JSON: "+err.Error())
	}

	if req.Direction == "" {
		req.Direction = h.cfg.DefaultDirection
	}
	if req.Threshold == nil {
		threshold := h.cfg.DefaultThreshold
		req.Threshold = &threshold
	}

	return &req, nil
}
