package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"

	"retailflow/internal/config"
	"retailflow/internal/generator"
	"retailflow/internal/history"
	"retailflow/internal/infrastructure"
	"retailflow/internal/operations"
	handlers "retailflow/internal/transport/http"
)

const AppName = "retailflow"

// Application wires the pipeline, its run history, telemetry and the HTTP surface
type Application struct {
	Config    *config.Config
	Logger    *slog.Logger
	Telemetry *infrastructure.TelemetryProviders
	History   *history.Store // nil when history is disabled
	Manager   *operations.Manager
	Router    chi.Router
	Server    *http.Server
}

// NewApplication creates an application from a loaded configuration
func NewApplication(ctx context.Context, cfg *config.Config) (*Application, error) {
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	paths := cfg.Paths()
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}
	paths.LogPathResolution()

	telemetry, err := infrastructure.InitializeTelemetry(ctx, cfg.Telemetry, cfg.Pipeline.Version, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	a := &Application{
		Config:    cfg,
		Logger:    logger,
		Telemetry: telemetry,
	}

	opts := []operations.Option{
		operations.WithTelemetry(telemetry),
		operations.WithGenerator(generator.New(logger, cfg.Pipeline.GeneratorSeed, generator.DefaultSizes())),
	}
	var runHistory handlers.RunHistory
	if cfg.History.Enabled {
		store, err := history.Open(cfg.History.DBPath)
		if err != nil {
			_ = telemetry.Shutdown(ctx)
			return nil, fmt.Errorf("failed to open run history: %w", err)
		}
		a.History = store
		runHistory = store
		opts = append(opts, operations.WithRecorder(store))
	}

	a.Manager = operations.NewManager(cfg, logger, opts...)
	a.Router = handlers.NewRouter(handlers.RouterConfig{
		Runner:       a.Manager,
		History:      runHistory,
		Telemetry:    telemetry,
		Version:      cfg.Pipeline.Version,
		RunRateLimit: cfg.Server.RunRateLimit,
		RunBurst:     cfg.Server.RunBurst,
		Logger:       logger,
	})
	a.createServer()

	logger.InfoContext(ctx, "application_initialized",
		slog.String("name", AppName),
		slog.String("version", cfg.Pipeline.Version),
		slog.String("project_root", cfg.Pipeline.ProjectRoot),
		slog.Bool("history_enabled", cfg.History.Enabled))
	return a, nil
}

func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:      a.Router,
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
	}
}

// RunOnce executes a single pipeline run
func (a *Application) RunOnce(ctx context.Context, opts operations.RunOptions) operations.Result {
	return a.Manager.RunFullPipeline(ctx, opts)
}

// Start starts the HTTP server in the background. A listen failure cancels ctx.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "server_starting",
		slog.Int("port", a.Config.Server.Port),
		slog.String("level", a.Config.Logging.Level))

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.ErrorContext(ctx, "server_error", slog.String("error", err.Error()))
			cancel()
		}
	}()
	return nil
}

// Stop gracefully stops the server and releases every resource
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "application_shutting_down")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("server shutdown error: %w", err))
	}
	if err := a.Close(shutdownCtx); err != nil {
		errs = append(errs, err)
	}

	a.Logger.InfoContext(ctx, "application_shutdown_complete")
	return errors.Join(errs...)
}

// Close releases the history database and flushes telemetry
func (a *Application) Close(ctx context.Context) error {
	var errs []error
	if a.History != nil {
		if err := a.History.Close(); err != nil {
			errs = append(errs, fmt.Errorf("history close: %w", err))
		}
		a.History = nil
	}
	if a.Telemetry != nil {
		if err := a.Telemetry.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("telemetry shutdown: %w", err))
		}
		a.Telemetry = nil
	}
	return errors.Join(errs...)
}

// Run serves until an interrupt or a server failure
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	select {
	case <-sigChan:
		a.Logger.InfoContext(ctx, "received_interrupt_signal")
	case <-ctx.Done():
	}

	// ctx may already be cancelled by a server failure
	return a.Stop(context.WithoutCancel(ctx))
}
