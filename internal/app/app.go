package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/klokku/pocketbudget/internal/config"
	"github.com/klokku/pocketbudget/internal/utils"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 30 * time.Second

// Application wires configuration, storage, router, and server lifecycle.
type Application struct {
	cfg          config.Application
	deps         *Dependencies
	router       *mux.Router
	srv          *http.Server
	closeStorage func() error
}

// NewApplication constructs the full HTTP application, ready to Run().
func NewApplication(ctx context.Context, cfg config.Application) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	clock := &utils.SystemClock{}
	kv, closeStorage, err := OpenStorage(cfg.Storage, clock)
	if err != nil {
		return nil, err
	}

	deps, err := BuildDependencies(ctx, cfg, kv, clock)
	if err != nil {
		closeStorage()
		return nil, err
	}

	r := mux.NewRouter()
	SetupMiddleware(r)
	RegisterRoutes(r, deps)

	srv := &http.Server{
		Handler:     r,
		Addr:        cfg.Server.Addr,
		ReadTimeout: 15 * time.Second,
		// chat turns wait for the completion service
		WriteTimeout: cfg.Completion.Timeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Application{cfg: cfg, deps: deps, router: r, srv: srv, closeStorage: closeStorage}, nil
}

func (a *Application) Dependencies() *Dependencies {
	return a.deps
}

func (a *Application) Handler() http.Handler {
	return a.router
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully and releases resources.
func (a *Application) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Infof("Starting server on %s", a.srv.Addr)
		if err := a.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return a.srv.Shutdown(shutdownCtx)
	})

	err := g.Wait()
	if closeErr := a.Close(); closeErr != nil {
		log.Errorf("failed to release resources: %v", closeErr)
	}
	return err
}

func (a *Application) Close() error {
	return errors.Join(a.deps.Close(), a.closeStorage())
}
