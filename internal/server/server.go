// Package server exposes the session commands over an HTTP JSON API.
// Every route is scoped to a session id; state never leaks between
// sessions and a failing request never terminates the process.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/xavrousseau/datalyzer/internal/config"
	"github.com/xavrousseau/datalyzer/internal/session"
)

type Server struct {
	cfg  *config.Config
	mgr  *session.Manager
	http *http.Server
}

func New(cfg *config.Config, mgr *session.Manager) *Server {
	s := &Server{cfg: cfg, mgr: mgr}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("POST /sessions", s.handleCreateSession)
	mux.HandleFunc("DELETE /sessions/{id}", s.handleDeleteSession)

	mux.HandleFunc("POST /sessions/{id}/tables", s.handleUpload)
	mux.HandleFunc("GET /sessions/{id}/tables", s.handleListTables)
	mux.HandleFunc("DELETE /sessions/{id}/tables/{name}", s.handleDropTable)
	mux.HandleFunc("POST /sessions/{id}/tables/{name}/select", s.handleSelectTable)

	mux.HandleFunc("GET /sessions/{id}/tables/{name}/profile", s.handleProfile)
	mux.HandleFunc("GET /sessions/{id}/tables/{name}/quality", s.handleQuality)
	mux.HandleFunc("GET /sessions/{id}/tables/{name}/outliers", s.handleOutliers)
	mux.HandleFunc("GET /sessions/{id}/tables/{name}/types", s.handleSuggestTypes)
	mux.HandleFunc("POST /sessions/{id}/tables/{name}/types", s.handleApplyTypes)
	mux.HandleFunc("POST /sessions/{id}/tables/{name}/drop-columns", s.handleDropColumns)
	mux.HandleFunc("POST /sessions/{id}/tables/{name}/drop-duplicates", s.handleDropDuplicates)

	mux.HandleFunc("POST /sessions/{id}/analysis/correlation", s.handleCorrelation)
	mux.HandleFunc("POST /sessions/{id}/analysis/target", s.handleTarget)
	mux.HandleFunc("POST /sessions/{id}/analysis/cramersv", s.handleCramersV)
	mux.HandleFunc("POST /sessions/{id}/analysis/pca", s.handlePCA)

	mux.HandleFunc("POST /sessions/{id}/joins/suggest", s.handleSuggestJoins)
	mux.HandleFunc("POST /sessions/{id}/joins", s.handleJoin)

	mux.HandleFunc("POST /sessions/{id}/snapshots", s.handleSaveSnapshot)
	mux.HandleFunc("GET /sessions/{id}/snapshots", s.handleListSnapshots)
	mux.HandleFunc("POST /sessions/{id}/snapshots/{name}/restore", s.handleRestoreSnapshot)
	mux.HandleFunc("DELETE /sessions/{id}/snapshots/{name}", s.handleDeleteSnapshot)

	mux.HandleFunc("GET /sessions/{id}/export/{file}", s.handleExport)
	mux.HandleFunc("GET /sessions/{id}/history", s.handleHistory)

	s.http = &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler exposes the routing table for tests.
func (s *Server) Handler() http.Handler { return s.http.Handler }

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		slog.Info("listening", "addr", s.http.Addr)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.http.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return <-errCh
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// sessionFor resolves the {id} path segment to a live session or writes
// the 404 itself.
func (s *Server) sessionFor(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, err := s.mgr.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	return sess, true
}
