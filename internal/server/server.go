// Package server exposes stored version reports over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/dbsmedya/getversions/internal/logger"
	"github.com/dbsmedya/getversions/internal/store"
)

// VersionReader is the read side of the report store.
type VersionReader interface {
	LatestVersions(ctx context.Context, environment string) ([]store.Record, error)
	LatestVersion(ctx context.Context, environment, instanceID string) (store.Record, error)
}

// Server serves the read API.
type Server struct {
	reader VersionReader
	logger *logger.Logger
	router *mux.Router
}

// New creates a Server with its routes registered.
func New(reader VersionReader, log *logger.Logger) (*Server, error) {
	if reader == nil {
		return nil, fmt.Errorf("version reader is nil")
	}
	if log == nil {
		log = logger.NewDefault()
	}

	s := &Server{reader: reader, logger: log, router: mux.NewRouter()}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.router.HandleFunc("/health", s.health).Methods(http.MethodGet)
	s.router.HandleFunc("/environments/{env}/versions", s.listVersions).Methods(http.MethodGet)
	s.router.HandleFunc("/environments/{env}/versions/{instance}", s.getVersion).Methods(http.MethodGet)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Infow("Starting HTTP server", "listen", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	return nil
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (s *Server) listVersions(w http.ResponseWriter, r *http.Request) {
	env := mux.Vars(r)["env"]

	records, err := s.reader.LatestVersions(r.Context(), env)
	if err != nil {
		s.logger.WithEnvironment(env).Errorw("Failed to read versions", "error", err)
		http.Error(w, "failed to read versions", http.StatusInternalServerError)
		return
	}
	if records == nil {
		records = []store.Record{}
	}

	s.writeJSON(w, records)
}

func (s *Server) getVersion(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	env, instance := vars["env"], vars["instance"]

	rec, err := s.reader.LatestVersion(r.Context(), env, instance)
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, "no version recorded for "+instance, http.StatusNotFound)
		return
	}
	if err != nil {
		s.logger.WithEnvironment(env).WithInstance(instance).Errorw("Failed to read version", "error", err)
		http.Error(w, "failed to read version", http.StatusInternalServerError)
		return
	}

	s.writeJSON(w, rec)
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warnw("Failed to write response", "error", err)
	}
}
