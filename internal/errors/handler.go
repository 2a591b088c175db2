package errors

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime"
	"runtime/debug"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"github.com/syedbaqir291-debug/42-Days-Compliance-Status/internal/compliance"
	"github.com/syedbaqir291-debug/42-Days-Compliance-Status/internal/services"
	"github.com/syedbaqir291-debug/42-Days-Compliance-Status/internal/validation"
	"github.com/syedbaqir291-debug/42-Days-Compliance-Status/internal/workbook"
)

// Common error types following RFC 7807
const (
	TypeValidation      = "/errors/validation"
	TypeNotFound        = "/errors/not-found"
	TypeRateLimit       = "/errors/rate-limit"
	TypeInternal        = "/errors/internal"
	TypeServiceDown     = "/errors/service-unavailable"
	TypeTimeout         = "/errors/timeout"
	TypePayloadTooLarge = "/errors/payload-too-large"
	TypeMethodNotAllow  = "/errors/method-not-allowed"
)

// Domain-specific error types
const (
	TypeInvalidWorkbook     = "/errors/workbook/invalid"
	TypeUnsupportedFileType = "/errors/workbook/unsupported-type"
	TypeSheetNotFound       = "/errors/workbook/sheet-not-found"
	TypeColumnNotFound      = "/errors/workbook/column-not-found"
	TypeEmptySheet          = "/errors/workbook/empty-sheet"
	TypeResultNotFound      = "/errors/result/not-found"
)

// ErrorHandler provides centralized error handling
type ErrorHandler struct {
	logger       *slog.Logger
	includeStack bool
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(logger *slog.Logger, includeStack bool) *ErrorHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ErrorHandler{
		logger:       logger.With(slog.String("component", "error_handler")),
		includeStack: includeStack,
	}
}

// HandleError converts any error to RFC 7807 format and responds
func (h *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	reqID := middleware.GetReqID(r.Context())
	problem := h.ErrorToProblem(err, r)
	problem.WithExtension("trace_id", reqID)

	level := slog.LevelWarn
	if problem.Status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	h.logger.Log(r.Context(), level, "request failed",
		slog.String("error", err.Error()),
		slog.Int("status", problem.Status),
		slog.String("request_id", reqID),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
	)

	if h.includeStack && problem.Status >= http.StatusInternalServerError {
		problem.WithExtension("stack", getStackTrace())
	}

	render.Render(w, r, problem)
}

// ErrorToProblem converts an error to RFC 7807 Problem Details
func (h *ErrorHandler) ErrorToProblem(err error, r *http.Request) *ProblemDetails {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return NewProblemDetails(
			http.StatusGatewayTimeout,
			TypeTimeout,
			"Request Timeout",
			"The request took too long to process and was cancelled",
			r.URL.Path,
		)
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return h.apiErrorToProblem(apiErr, r)
	}

	return h.apiErrorToProblem(FromDomain(err), r)
}

// FromDomain maps errors returned by the workbook, compliance and service
// layers to API errors. Unknown errors become internal server errors.
func FromDomain(err error) *APIError {
	switch {
	case errors.Is(err, validation.ErrUnsupportedFileType):
		return NewWithDetails(ErrUnsupportedFileType.StatusCode, CodeUnsupportedFileType, ErrUnsupportedFileType.Message, err.Error())
	case errors.Is(err, validation.ErrFileTooLarge):
		return NewWithDetails(ErrPayloadTooLarge.StatusCode, CodePayloadTooLarge, ErrPayloadTooLarge.Message, err.Error())
	case errors.Is(err, validation.ErrEmptyUpload):
		return ErrMissingFile
	case errors.Is(err, workbook.ErrInvalidWorkbook):
		return ErrInvalidWorkbook
	case errors.Is(err, workbook.ErrSheetNotFound):
		return New(http.StatusUnprocessableEntity, CodeSheetNotFound, err.Error())
	case errors.Is(err, workbook.ErrEmptySheet):
		return New(http.StatusUnprocessableEntity, CodeEmptySheet, err.Error())
	case errors.Is(err, compliance.ErrColumnNotFound):
		return New(http.StatusUnprocessableEntity, CodeColumnNotFound, err.Error())
	case errors.Is(err, services.ErrResultNotFound):
		return ErrResultNotFound
	case errors.Is(err, services.ErrNoSheetsSelected), errors.Is(err, services.ErrInvalidRequest):
		return New(http.StatusBadRequest, CodeValidationFailed, err.Error())
	case errors.Is(err, services.ErrStoreFull):
		return ErrServiceUnavailable
	default:
		return ErrInternalServer
	}
}

// apiErrorToProblem converts APIError to ProblemDetails
func (h *ErrorHandler) apiErrorToProblem(apiErr *APIError, r *http.Request) *ProblemDetails {
	problemType := TypeInternal
	switch apiErr.ErrorCode {
	case CodeValidationFailed, CodeInvalidRequest:
		problemType = TypeValidation
	case CodeNotFound:
		problemType = TypeNotFound
	case CodeResultNotFound:
		problemType = TypeResultNotFound
	case CodeInvalidWorkbook:
		problemType = TypeInvalidWorkbook
	case CodeUnsupportedFileType:
		problemType = TypeUnsupportedFileType
	case CodePayloadTooLarge:
		problemType = TypePayloadTooLarge
	case CodeSheetNotFound:
		problemType = TypeSheetNotFound
	case CodeColumnNotFound:
		problemType = TypeColumnNotFound
	case CodeEmptySheet:
		problemType = TypeEmptySheet
	case CodeRateLimitExceeded:
		problemType = TypeRateLimit
	case CodeServiceUnavailable:
		problemType = TypeServiceDown
	}

	problem := NewProblemDetails(
		apiErr.StatusCode,
		problemType,
		http.StatusText(apiErr.StatusCode),
		apiErr.Message,
		r.URL.Path,
	).WithExtension("error_code", apiErr.ErrorCode)

	if apiErr.Details != nil {
		problem.WithExtension("details", apiErr.Details)
	}

	return problem
}

// HandlePanic recovers from panics and returns RFC 7807 error
func (h *ErrorHandler) HandlePanic(w http.ResponseWriter, r *http.Request, recovered interface{}) {
	reqID := middleware.GetReqID(r.Context())

	h.logger.ErrorContext(r.Context(), "panic recovered",
		slog.Any("panic", recovered),
		slog.String("request_id", reqID),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("stack", string(debug.Stack())),
	)

	problem := NewProblemDetails(
		http.StatusInternalServerError,
		TypeInternal,
		"Internal Server Error",
		"An unexpected error occurred",
		r.URL.Path,
	).WithExtension("trace_id", reqID)

	if h.includeStack {
		problem.WithExtension("panic", fmt.Sprintf("%v", recovered))
		problem.WithExtension("stack", getStackTrace())
	}

	render.Render(w, r, problem)
}

// NotFound returns a standard 404 error
func (h *ErrorHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	problem := NewProblemDetails(
		http.StatusNotFound,
		TypeNotFound,
		"Not Found",
		"The requested resource was not found",
		r.URL.Path,
	).WithExtension("trace_id", middleware.GetReqID(r.Context()))

	render.Render(w, r, problem)
}

// MethodNotAllowed returns a standard 405 error
func (h *ErrorHandler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	problem := NewProblemDetails(
		http.StatusMethodNotAllowed,
		TypeMethodNotAllow,
		"Method Not Allowed",
		fmt.Sprintf("Method %s is not allowed for this endpoint", r.Method),
		r.URL.Path,
	).WithExtension("trace_id", middleware.GetReqID(r.Context()))

	render.Render(w, r, problem)
}

// getStackTrace returns the current stack trace
func getStackTrace() string {
	buf := make([]byte, 1024*8)
	n := runtime.Stack(buf, false)
	return string(buf[:n])
}
