// Package server exposes box building over HTTP: a JSON description of the
// panels and rendered DXF, SVG, PDF or G-code downloads.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/piwi3910/TabBox/internal/cache"
	"github.com/piwi3910/TabBox/internal/metrics"
)

type Server struct {
	cfg     Config
	log     *zerolog.Logger
	cache   *cache.Cache
	metrics *metrics.Provider
}

// New wires a server. A nil cache is replaced by a memory-only one and a
// nil metrics provider disables recording.
func New(cfg Config, log *zerolog.Logger, c *cache.Cache, m *metrics.Provider) (*Server, error) {
	if log == nil {
		nop := zerolog.Nop()
		log = &nop
	}
	if c == nil {
		var err error
		if c, err = cache.New(cfg.CacheSize, cache.WithLogger(log)); err != nil {
			return nil, err
		}
	}
	if cfg.MaxBody <= 0 {
		cfg.MaxBody = 1 << 20
	}
	return &Server{cfg: cfg, log: log, cache: c, metrics: m}, nil
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(recoverer(s.log))
	r.Use(requestLogging(s.log))

	r.Get("/healthz", s.handleHealth)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}
	r.Route("/v1/box", func(r chi.Router) {
		r.Post("/", s.handleBox)
		r.Post("/{format}", s.handleRender)
	})
	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.cfg.Addr).Msg("http listen")
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.log.Info().Msg("http shutdown")
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
