package server

import (
	"context"

	"AraDetector/internal/domain/models"
	"AraDetector/internal/usecase"
	"AraDetector/pkg/config"
	xhttp "AraDetector/pkg/http"
	applogger "AraDetector/pkg/logger"
)

// App encapsulates the application lifecycle shared by every command.
// Resources it depends on are released by the cleanup func returned alongside it from di.InitializeApp.
type App struct {
	cfg        *config.Config
	log        *applogger.Logger
	httpServer *xhttp.Server
	evaluator  *usecase.AraEvaluator
	scanner    *usecase.WatchlistScanUseCase
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	l *applogger.Logger,
	httpServer *xhttp.Server,
	evaluator *usecase.AraEvaluator,
	scanner *usecase.WatchlistScanUseCase,
) *App {
	if l == nil {
		l = applogger.Nop()
	}
	return &App{
		cfg:        cfg,
		log:        l,
		httpServer: httpServer,
		evaluator:  evaluator,
		scanner:    scanner,
	}
}

// Logger returns the application logger.
func (a *App) Logger() *applogger.Logger { return a.log }

// Serve runs the HTTP API until ctx is cancelled, then shuts down gracefully.
func (a *App) Serve(ctx context.Context) error {
	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}
	a.log.Info("ara detector serving",
		applogger.String("env", a.cfg.Environment),
		applogger.String("storage", a.cfg.Storage.Driver),
		applogger.Bool("alerts", a.cfg.Alerts.Enabled),
	)

	<-ctx.Done()
	a.log.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}
	return nil
}

// Scan runs one watchlist scan. An empty date means today in the market timezone.
func (a *App) Scan(ctx context.Context, date string) (*models.ScanReport, error) {
	return a.scanner.Scan(ctx, date)
}

// Evaluate scores the given instruments without persisting them, highest score first.
func (a *App) Evaluate(ctx context.Context, instruments []string, date string) models.BatchResult {
	if date == "" {
		date = a.scanner.Today()
	}
	out := a.evaluator.EvaluateBatch(ctx, instruments, date)
	usecase.SortByScore(out.Results)
	return out
}
