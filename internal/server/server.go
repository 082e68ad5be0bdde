// Package server exposes the HTTP API: deck generation and retrieval, HTML
// export, a raw picture-of-the-day endpoint, health, and metrics.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"astrodeck/internal/common/config"
	"astrodeck/internal/common/logger"
	"astrodeck/internal/common/observability"
	"astrodeck/internal/deck"
	"astrodeck/internal/nasa"
)

// DeckGenerator builds a deck for a request.
type DeckGenerator interface {
	Generate(ctx context.Context, req deck.Request) (*deck.LessonDeck, error)
}

// ApodSource serves the picture of the day for a date.
type ApodSource interface {
	Apod(ctx context.Context, date time.Time) (*nasa.Apod, error)
}

type Server struct {
	httpServer *http.Server
	log        logger.Logger
}

func New(cfg config.ServerConfig, generator DeckGenerator, store deck.Store, apod ApodSource, obs *observability.Observability, log logger.Logger) *Server {
	h := &handlers{
		generator: generator,
		store:     store,
		apod:      apod,
		obs:       obs,
		log:       log,
		now:       time.Now,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Post("/decks/generate", h.generateDeck)
		r.Get("/decks/{id}", h.getDeck)
		r.Get("/decks/{id}/export/html", h.exportDeckHTML)
		r.Get("/apod", h.getApod)
	})
	r.Get("/healthz", h.health)
	r.Handle("/metrics", promhttp.Handler())

	return &Server{
		httpServer: &http.Server{
			Addr:         cfg.Address,
			Handler:      r,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
		log: log,
	}
}

// Handler exposes the routed handler for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start blocks serving requests until the listener fails or Shutdown runs.
func (s *Server) Start() error {
	s.log.Info("http server listening", map[string]interface{}{"address": s.httpServer.Addr})
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
