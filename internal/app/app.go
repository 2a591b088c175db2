package app

import (
	"compress/flate"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"

	"github.com/syedbaqir291-debug/42-Days-Compliance-Status/internal/config"
	apierrors "github.com/syedbaqir291-debug/42-Days-Compliance-Status/internal/errors"
	"github.com/syedbaqir291-debug/42-Days-Compliance-Status/internal/infrastructure"
	customMiddleware "github.com/syedbaqir291-debug/42-Days-Compliance-Status/internal/middleware"
	"github.com/syedbaqir291-debug/42-Days-Compliance-Status/internal/services"
	handlers "github.com/syedbaqir291-debug/42-Days-Compliance-Status/internal/transport/http"
	"github.com/syedbaqir291-debug/42-Days-Compliance-Status/internal/validation"
	"github.com/syedbaqir291-debug/42-Days-Compliance-Status/pkg/contracts"
)

// Application holds the wired components of the web service
type Application struct {
	Config        *config.Config
	Router        *chi.Mux
	Server        *http.Server
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.BusinessMetrics
	Store         *services.ResultStore
	Services      *ServiceContainer
	ErrorHandler  *apierrors.ErrorHandler
}

// ServiceContainer holds all services
type ServiceContainer struct {
	Compliance *services.ComplianceService
	Health     *services.HealthService
}

// NewApplication loads configuration from the environment and creates the
// application with the process-wide logger.
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return New(cfg, logger)
}

// New wires an application from cfg.
func New(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("Application starting",
		slog.String("name", contracts.AppName),
		slog.String("version", contracts.Version))

	otelProviders, err := infrastructure.InitializeOTel(otelConfig(cfg.Observability), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	metrics, err := infrastructure.CreateBusinessMetrics(otelProviders.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create business metrics: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: otelProviders,
		Metrics:       metrics,
		ErrorHandler:  apierrors.NewErrorHandler(logger, cfg.Observability.Environment == "development"),
	}

	app.initializeServices()

	if err := app.setupRouter(); err != nil {
		return nil, fmt.Errorf("failed to set up router: %w", err)
	}

	app.createServer()

	return app, nil
}

func otelConfig(cfg config.ObservabilityConfig) *infrastructure.OTelConfig {
	oc := infrastructure.DefaultOTelConfig()
	if cfg.ServiceName != "" {
		oc.ServiceName = cfg.ServiceName
	}
	if cfg.Environment != "" {
		oc.Environment = cfg.Environment
	}
	oc.TraceExporter = cfg.TraceExporter
	oc.EnableTracing = cfg.TraceExporter != "none"
	oc.EnableMetrics = cfg.MetricsEnabled
	if !cfg.MetricsEnabled {
		oc.MetricExporter = "none"
	}
	oc.SampleRatio = cfg.SampleRatio
	return oc
}

// initializeServices initializes all application services
func (a *Application) initializeServices() {
	a.Store = services.NewResultStore(a.Config.Compliance.MaxStoredResults, a.Metrics, a.Logger)

	a.Services = &ServiceContainer{
		Compliance: services.NewComplianceService(
			a.Config.Compliance,
			a.Store,
			a.Metrics,
			a.OTelProviders.Tracer,
			a.Logger,
		),
		Health: services.NewHealthService(a.Store, a.Logger),
	}

	a.Logger.Info("Services initialized",
		slog.Int("max_stored_results", a.Config.Compliance.MaxStoredResults),
		slog.Duration("result_ttl", a.Config.Compliance.ResultTTL))
}

// setupRouter configures the HTTP router with all routes.
// Order: RequestID → RealIP → OTel → Timeout → Logger/Recoverer per route group
func (a *Application) setupRouter() error {
	r := chi.NewRouter()

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)
	r.Use(customMiddleware.StripSlashes)

	r.NotFound(a.ErrorHandler.NotFound)
	r.MethodNotAllowed(a.ErrorHandler.MethodNotAllowed)

	otelMiddleware, err := customMiddleware.NewOTelMiddleware(a.OTelProviders, a.Metrics)
	if err != nil {
		return fmt.Errorf("create OpenTelemetry middleware: %w", err)
	}

	htmlHandler, err := handlers.NewHTMLHandler(a.Config.Compliance, a.Config.Upload, a.Logger)
	if err != nil {
		return fmt.Errorf("load form template: %w", err)
	}

	validator := customMiddleware.NewValidationMiddleware(a.Logger, a.ErrorHandler)
	fileValidator := validation.NewFileValidator(a.Config.Upload, a.Logger)
	complianceHandler := handlers.NewComplianceHandler(
		a.Services.Compliance,
		validator,
		fileValidator,
		a.Config.Compliance,
		a.Logger,
		a.ErrorHandler,
	)
	healthHandler := handlers.NewHealthHandler(a.Services.Health, a.Logger)

	r.Group(func(r chi.Router) {
		r.Use(otelMiddleware.Handler)
		r.Use(customMiddleware.SecurityHeaders)
		r.Use(customMiddleware.CORS(a.getCORSConfig()))

		if a.Config.Security.RateLimit.Enabled {
			r.Use(customMiddleware.NewRateLimiter(
				a.Config.Security.RateLimit.RPS,
				a.Config.Security.RateLimit.Burst,
				a.Logger,
			).Handler)
		}

		r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout, a.Logger))
		r.Use(customMiddleware.Compress(flate.DefaultCompression, "application/json", "application/problem+json", "text/html"))

		r.With(
			customMiddleware.StructuredLogger(a.Logger),
			customMiddleware.Recoverer(a.Logger),
		).Get("/", htmlHandler.ServeIndex)

		// API errors and panics are logged and rendered as problem details
		r.Route("/api", func(r chi.Router) {
			r.Use(apierrors.NewErrorMiddleware(a.ErrorHandler, a.Logger).Handler)

			r.Mount("/health", healthHandler.Routes())
			r.Get("/version", healthHandler.Version)
			r.Mount("/workbooks", complianceHandler.WorkbookRoutes())
			r.Mount("/compliance", complianceHandler.Routes())
		})
	})

	// Prometheus scrapes stay outside the logged group
	r.Group(func(r chi.Router) {
		r.Use(apierrors.RecoveryMiddleware(a.ErrorHandler))
		r.Mount("/metrics", handlers.NewMetricsHandler(a.OTelProviders.PrometheusHTTP, a.ErrorHandler).Routes())
	})

	a.Router = r
	return nil
}

// getCORSConfig returns the CORS configuration for the embedded form and
// any configured origins
func (a *Application) getCORSConfig() customMiddleware.CORSConfig {
	cfg := customMiddleware.CORSConfig{
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{
			"Accept",
			"Content-Type",
			"X-Request-ID",
			"X-Requested-With",
		},
		ExposedHeaders: []string{
			"Content-Disposition",
			"X-Request-ID",
		},
		MaxAge: 300,
		Logger: a.Logger,
	}

	cfg.AllowedOrigins = []string{fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)}
	if a.Config.Security.EnableCORS && len(a.Config.Security.AllowedOrigins) > 0 {
		cfg.AllowedOrigins = append(cfg.AllowedOrigins, a.Config.Security.AllowedOrigins...)
	}

	return cfg
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Start starts the result janitor and the HTTP server. A server failure
// cancels ctx through cancel.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "Starting application",
		slog.String("name", contracts.AppName),
		slog.String("version", contracts.Version),
		slog.Int("port", a.Config.Server.Port),
		slog.String("level", a.Config.Logging.Level))

	a.Store.StartJanitor(ctx, a.Config.Compliance.JanitorInterval)

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			infrastructure.RecordSystemError(ctx, a.Metrics, "listen", "http_server")
			cancel()
		}
	}()

	a.Logger.InfoContext(ctx, "Application started successfully",
		slog.String("address", fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)))

	return nil
}

// Stop gracefully shuts down the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	a.Logger.InfoContext(ctx, "Discarding stored results", slog.Int("count", a.Store.Len()))

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return nil
}

// Run runs the application until interrupted
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	var runErr error
	select {
	case sig := <-sigChan:
		a.Logger.InfoContext(ctx, "Received interrupt signal", slog.String("signal", sig.String()))
	case <-ctx.Done():
		a.Logger.ErrorContext(ctx, "Server stopped unexpectedly")
		runErr = errors.New("server stopped unexpectedly")
	}

	// the janitor shares ctx; shutdown gets a fresh one
	cancel()
	if err := a.Stop(context.Background()); err != nil {
		return err
	}
	return runErr
}
