// Package server is a read-only HTTP browser for reports and run history.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/hairizuan-noorazman/ui-bdd/config"
	"github.com/hairizuan-noorazman/ui-bdd/logger"
	"github.com/hairizuan-noorazman/ui-bdd/report"
	"github.com/hairizuan-noorazman/ui-bdd/runhistory"
	"github.com/hairizuan-noorazman/ui-bdd/storage"
	"github.com/spf13/afero"
)

// ShutdownTimeout bounds graceful shutdown.
const ShutdownTimeout = 30 * time.Second

// Deps are the data sources of the server. Runs and Assets are nil when
// history is disabled, Blobs when no artifact storage is configured.
type Deps struct {
	Reports *report.Manager
	Fs      afero.Fs
	Runs    runhistory.Store
	Assets  runhistory.AssetStore
	Blobs   storage.BlobStorage
	Logger  logger.Logger
}

// NewRouter builds the route table. /health is always public.
func NewRouter(cfg config.ServerConfig, deps Deps) *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/health", HealthHandler).Methods("GET")

	auth := NewBasicAuth(cfg.Username, cfg.PasswordHash, deps.Logger)
	reports := NewReportHandler(deps.Reports, deps.Fs, deps.Logger)

	apiRouter := router.PathPrefix("/api/v1").Subrouter()
	apiRouter.Use(auth.Handler)
	apiRouter.HandleFunc("/reports", reports.List).Methods("GET")

	if deps.Runs != nil && deps.Assets != nil {
		runs := NewRunHandler(deps.Runs, deps.Assets, deps.Blobs, deps.Logger)
		apiRouter.HandleFunc("/runs", runs.List).Methods("GET")
		apiRouter.HandleFunc("/runs/{id}", runs.GetByID).Methods("GET")
		apiRouter.HandleFunc("/runs/{id}/assets/{assetID}", runs.GetAsset).Methods("GET")
	} else {
		apiRouter.HandleFunc("/runs", func(w http.ResponseWriter, r *http.Request) {
			respondError(w, http.StatusNotFound, "run history is disabled")
		}).Methods("GET")
	}

	reportRouter := router.PathPrefix("/reports").Subrouter()
	reportRouter.Use(auth.Handler)
	reportRouter.HandleFunc("/{name}", reports.Get).Methods("GET")

	return router
}

// Server serves the router until its context is cancelled.
type Server struct {
	http   *http.Server
	logger logger.Logger
}

func New(cfg config.ServerConfig, deps Deps) *Server {
	return &Server{
		http: &http.Server{
			Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Handler:           NewRouter(cfg, deps),
			ReadHeaderTimeout: 15 * time.Second,
			WriteTimeout:      60 * time.Second,
		},
		logger: deps.Logger,
	}
}

func (s *Server) Addr() string { return s.http.Addr }

// Run listens on the configured address and shuts down gracefully when ctx
// is done.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "server listening", map[string]interface{}{
			"address": ln.Addr().String(),
		})
		if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info(ctx, "shutting down server", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	s.logger.Info(ctx, "server stopped", nil)
	return nil
}
