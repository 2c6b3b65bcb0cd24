package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"golang.org/x/sync/errgroup"

	"sheetcli/internal/config"
	"sheetcli/internal/dataprocessing"
	"sheetcli/internal/infrastructure"
	"sheetcli/internal/mailer"
	customMiddleware "sheetcli/internal/middleware"
	"sheetcli/internal/services"
	handlers "sheetcli/internal/transport/http"
)

// Application represents the serve command's component graph
type Application struct {
	Config    *config.Config
	Logger    *slog.Logger
	Telemetry *infrastructure.Telemetry
	Session   *services.SessionService
	Router    chi.Router
	Server    *http.Server
}

// NewSession builds a table session from cfg. A Google Sheets loader is
// attached only when Sheets credentials or an API key are configured.
// metrics may be nil.
func NewSession(ctx context.Context, cfg *config.Config, metrics *infrastructure.PipelineMetrics, logger *slog.Logger) (*services.SessionService, error) {
	var sheets *dataprocessing.GoogleSheetLoader
	if cfg.Sheets.CredentialsFile != "" || cfg.Sheets.APIKey != "" {
		loader, err := dataprocessing.NewGoogleSheetLoader(ctx, cfg.Sheets, logger)
		if err != nil {
			return nil, err
		}
		sheets = loader
	}

	opts := dataprocessing.DefaultOptions()
	if cfg.Filter != (config.FilterConfig{}) {
		opts = dataprocessing.ProcessingOptions{MinNonEmpty: cfg.Filter.MinNonEmpty, SampleSize: cfg.Filter.SampleSize}
	}
	processor := dataprocessing.NewProcessorWithOptions(opts)
	sender := mailer.NewSMTPSender(cfg.Mail.Timeout, logger)

	return services.NewSessionService(dataprocessing.NewOpener(sheets), processor, sender, cfg.Mail, metrics, logger), nil
}

// NewApplication builds the serve command's component graph
func NewApplication(ctx context.Context, cfg *config.Config, tel *infrastructure.Telemetry, logger *slog.Logger) (*Application, error) {
	var metrics *infrastructure.PipelineMetrics
	if tel != nil {
		metrics = tel.Metrics
	}
	session, err := NewSession(ctx, cfg, metrics, logger)
	if err != nil {
		return nil, err
	}

	a := &Application{
		Config:    cfg,
		Logger:    logger,
		Telemetry: tel,
		Session:   session,
	}
	a.setupRouter()
	a.createServer()
	return a, nil
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	// RequestID → Tracing → Logger → Recoverer → RateLimit
	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.Tracing(infrastructure.Tracer()))
	r.Use(customMiddleware.StructuredLogger(a.Logger))
	r.Use(customMiddleware.Recoverer(a.Logger))

	if rl := a.Config.Server.RateLimit; rl.Enabled {
		r.Use(customMiddleware.NewRateLimiter(rl.RPS, rl.Burst, a.Logger).Handler)
	}

	tableHandler := handlers.NewTableHandler(a.Session, a.Config.Server.MaxUploadBytes, a.Logger)

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Get("/health", tableHandler.Health)
		r.Mount("/table", tableHandler.Routes())
	})

	if a.Telemetry != nil {
		if h := a.Telemetry.MetricsHandler(); h != nil {
			r.Handle("/metrics", h)
		}
	}

	a.Router = r
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:      a.Router,
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
	}
}

// Run listens on the configured port and serves until ctx is cancelled.
func (a *Application) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.Server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.Server.Addr, err)
	}
	return a.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled, then shuts the server down
// within the configured timeout and flushes telemetry.
func (a *Application) Serve(ctx context.Context, ln net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Logger.InfoContext(ctx, "Starting server",
			slog.String("address", ln.Addr().String()),
			slog.String("version", config.AppVersion))
		if err := a.Server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		a.Logger.InfoContext(context.Background(), "Shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout)
		defer cancel()

		if err := a.Server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		if a.Telemetry != nil {
			if err := a.Telemetry.Shutdown(shutdownCtx); err != nil {
				a.Logger.ErrorContext(shutdownCtx, "Error shutting down telemetry", slog.String("error", err.Error()))
			}
		}
		return nil
	})

	return g.Wait()
}
