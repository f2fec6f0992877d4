// Package server exposes the operational HTTP surface: manual cycle
// trigger and scheduler status.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"feedpulse/internal/scheduler"
)

// Triggerer is the scheduler surface the admin server needs.
type Triggerer interface {
	TriggerNow() error
	Status() scheduler.Status
}

// Server is a small admin HTTP server.
type Server struct {
	srv *http.Server
	log zerolog.Logger
}

// New creates the admin server bound to addr.
func New(addr string, trig Triggerer, log zerolog.Logger) *Server {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /trigger", func(w http.ResponseWriter, r *http.Request) {
		if err := trig.TriggerNow(); err != nil {
			if errors.Is(err, scheduler.ErrNotStarted) {
				http.Error(w, err.Error(), http.StatusConflict)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	})

	mux.HandleFunc("GET /status", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(trig.Status())
	})

	return &Server{
		srv: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		log: log.With().Str("component", "admin").Logger(),
	}
}

// Start serves in a background goroutine.
func (s *Server) Start() {
	go func() {
		s.log.Info().Str("addr", s.srv.Addr).Msg("admin server listening")
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error().Err(err).Msg("admin server failed")
		}
	}()
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
