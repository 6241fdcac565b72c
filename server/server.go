// Package server exposes the portfolio tracker over HTTP.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/foliotrack/folio"
	"github.com/foliotrack/folio/store"
)

// Config holds server configuration.
type Config struct {
	Port        int
	Store       *store.Store
	Performance *folio.PerformanceService
	Log         zerolog.Logger
}

// Server is the HTTP front of the tracker: portfolio and transaction
// CRUD plus the performance series endpoints.
type Server struct {
	router *chi.Mux
	server *http.Server
	store  *store.Store
	perf   *folio.PerformanceService
	log    zerolog.Logger
}

// New assembles the router and handlers.
func New(cfg Config) *Server {
	s := &Server{
		router: chi.NewRouter(),
		store:  cfg.Store,
		perf:   cfg.Performance,
		log:    cfg.Log.With().Str("component", "server").Logger(),
	}

	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Timeout(60 * time.Second))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	s.router.Use(s.loggingMiddleware)

	s.routes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
	}
	return s
}

func (s *Server) routes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/user/portfolios", s.handleListPortfolios)

		r.Route("/portfolio", func(r chi.Router) {
			r.Post("/create", s.handleCreatePortfolio)
			r.Put("/update", s.handleUpdatePortfolio)
			r.Delete("/delete", s.handleDeletePortfolio)
			r.Get("/transactions", s.handleListTransactions)
			r.Get("/performance", s.handlePerformance)
			r.Get("/performance/chart", s.handlePerformanceChart)
		})

		r.Route("/transaction", func(r chi.Router) {
			r.Post("/create", s.handleCreateTransaction)
			r.Put("/update", s.handleUpdateTransaction)
			r.Delete("/delete-from-portfolio", s.handleDeleteTransaction)
			r.Post("/bulk-create", s.handleBulkCreateTransactions)
		})
	})
}

// Handler exposes the assembled router. For tests.
func (s *Server) Handler() http.Handler { return s.router }

// Start blocks serving HTTP until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("shutting down")
	return s.server.Shutdown(ctx)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("request")
	})
}
