package http

import (
	"bytes"
	"embed"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/syedbaqir291-debug/42-Days-Compliance-Status/internal/config"
	"github.com/syedbaqir291-debug/42-Days-Compliance-Status/pkg/contracts"
	"github.com/syedbaqir291-debug/42-Days-Compliance-Status/pkg/contracts/domain"
)

//go:embed templates/index.html
var templatesFS embed.FS

// PageData is rendered into the upload form
type PageData struct {
	AppName            string
	Version            string
	DefaultThreshold   int
	DefaultDirection   string
	DefaultBlankPolicy string
	Statuses           []string
	MaxUploadMB        int64
}

// HTMLHandler serves the embedded compliance form
type HTMLHandler struct {
	tmpl   *template.Template
	data   PageData
	logger *slog.Logger
}

// NewHTMLHandler parses the embedded form template
func NewHTMLHandler(cfg config.ComplianceConfig, upload config.UploadConfig, logger *slog.Logger) (*HTMLHandler, error) {
	if logger == nil {
		logger = slog.Default()
	}

	tmpl, err := template.ParseFS(templatesFS, "templates/index.html")
	if err != nil {
		return nil, err
	}

	statuses := make([]string, 0, 3)
	for _, s := range domain.AllStatuses() {
		statuses = append(statuses, s.String())
	}

	return &HTMLHandler{
		tmpl: tmpl,
		data: PageData{
			AppName:            contracts.AppName,
			Version:            contracts.Version,
			DefaultThreshold:   cfg.DefaultThreshold,
			DefaultDirection:   string(cfg.Direction()),
			DefaultBlankPolicy: cfg.BlankPolicy().String(),
			Statuses:           statuses,
			MaxUploadMB:        upload.MaxBytes >> 20,
		},
		logger: logger.With(slog.String("handler", "html")),
	}, nil
}

// ServeIndex handles GET /
func (h *HTMLHandler) ServeIndex(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.tmpl.Execute(&buf, h.data); err != nil {
		h.logger.ErrorContext(r.Context(), "render form failed", slog.String("error", err.Error()))
		http.Error(w, "Error rendering page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("X-Frame-Options", "DENY")
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
