package app

import (
	"context"
	"net/http"

	"startosedge/internal/config"
	"startosedge/internal/logger"
)

// App owns the HTTP server and the teardown of everything wired behind
// it. New builds the full object graph; Run and Shutdown bracket its
// lifetime.
type App struct {
	httpServer *http.Server
	cleanup    func() error
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	router, cleanup, err := setupHTTP(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return &App{
		httpServer: &http.Server{
			Addr:    ":" + cfg.AppPort,
			Handler: router,
		},
		cleanup: cleanup,
	}, nil
}

func (a *App) Run() error {
	logger.Info("listening", map[string]any{"addr": a.httpServer.Addr})
	return a.httpServer.ListenAndServe()
}

func (a *App) Shutdown(ctx context.Context) error {
	if err := a.httpServer.Shutdown(ctx); err != nil {
		return err
	}
	if a.cleanup != nil {
		if err := a.cleanup(); err != nil {
			logger.Warn("cleanup failed", map[string]any{"error": err.Error()})
			return err
		}
	}
	return nil
}
