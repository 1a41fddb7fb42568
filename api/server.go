// Package api exposes the read-only sentiment lookup service over the
// tables loaded by the pipeline.
package api

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"reviews-etl/config"
	"reviews-etl/storage"
	"reviews-etl/utils"
)

// Server is the HTTP read API. The sentiment endpoint requires the
// configured X-API-Key header; health does not.
type Server struct {
	cfg     *config.Config
	logger  *utils.Logger
	handler http.Handler
}

// NewServer builds the route table and middleware chain.
func NewServer(cfg *config.Config, store storage.Store, logger *utils.Logger) *Server {
	handlers := NewHandlers(store, logger)
	limiter := NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", handlers.HandleHealth)

	authed := Chain(APIKey(cfg.APIKey, logger))
	mux.Handle("GET /api/v1/sentiment/{product_id}",
		authed(http.HandlerFunc(handlers.HandleSentiment)))

	chain := Chain(
		Logging(logger),
		RateLimit(limiter, logger),
	)

	return &Server{
		cfg:     cfg,
		logger:  logger,
		handler: chain(mux),
	}
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run serves until SIGINT/SIGTERM, then shuts down gracefully.
func (s *Server) Run() error {
	srv := &http.Server{
		Addr:         s.cfg.APIAddress(),
		Handler:      s.handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("[api] Listening on %s", srv.Addr)
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case sig := <-shutdown:
		s.logger.Info("[api] Shutdown signal received: %v", sig)

		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("[api] Stopped")
		return nil
	}
}
