package metrics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"git.sr.ht/~gioverse/listbench/regen"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Source reports the state of a regeneration controller.
// *regen.Controller implements it.
type Source interface {
	LastRequested() int
	Active() *regen.Task
	Latest() (regen.Snapshot, bool)
}

// Status is the JSON body served on /status.
type Status struct {
	LastRequested int       `json:"last_requested"`
	ActiveState   string    `json:"active_state,omitempty"`
	ActiveCount   int       `json:"active_count,omitempty"`
	Delivered     int       `json:"delivered"`
	DeliveredAt   time.Time `json:"delivered_at,omitempty"`
}

// NewRouter serves /metrics from gatherer, /status from src and /healthz.
func NewRouter(gatherer prometheus.Gatherer, src Source) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	r.Get("/status", func(w http.ResponseWriter, _ *http.Request) {
		st := Status{LastRequested: src.LastRequested()}
		if t := src.Active(); t != nil {
			st.ActiveState = t.State().String()
			st.ActiveCount = t.Count
		}
		if snap, ok := src.Latest(); ok {
			st.Delivered = len(snap.Items)
			st.DeliveredAt = snap.At
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(st); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
	return r
}

// Server exposes the router over HTTP until its context is cancelled.
type Server struct {
	Addr    string
	Handler http.Handler
	Logger  zerolog.Logger
}

// Run listens on s.Addr and shuts down gracefully once ctx is done.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.Addr,
		Handler:           s.Handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errs := make(chan error, 1)
	go func() {
		s.Logger.Info().Str("addr", s.Addr).Msg("metrics listening")
		errs <- srv.ListenAndServe()
	}()
	select {
	case err := <-errs:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving metrics: %w", err)
	case <-ctx.Done():
	}
	shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdown); err != nil {
		return fmt.Errorf("shutting down metrics: %w", err)
	}
	return nil
}
