// Package server is the HTTP + WebSocket API over the simulator core.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/comodofi/perps/app"
)

// Config holds the HTTP server configuration.
type Config struct {
	Port        int
	AccessKey   string // if empty, the access gate is disabled
	CORSOrigins []string
}

// Server serves the trading API for browser front ends.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer registers all routes and wires the middleware chain
// (access key, request logging, CORS).
func NewServer(cfg Config, core *app.App, hub *Hub, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	ih := &indexHandler{core: core, logger: logger}
	th := &tradeHandler{core: core, logger: logger}

	mux.HandleFunc("GET /api/health", healthCheck)

	mux.HandleFunc("GET /api/indices", ih.listIndices)
	mux.HandleFunc("POST /api/indices", ih.registerIndex)
	mux.HandleFunc("GET /api/indices/{symbol}/series", ih.getSeries)
	mux.HandleFunc("GET /api/indices/{symbol}/mark", ih.getMark)
	mux.HandleFunc("GET /api/indices/{symbol}/funding", ih.getFunding)

	mux.HandleFunc("POST /api/orders", th.placeOrder)
	mux.HandleFunc("GET /api/positions", th.listPositions)
	mux.HandleFunc("DELETE /api/positions/{id}", th.closePosition)
	mux.HandleFunc("POST /api/session/reset", th.resetSession)
	mux.HandleFunc("GET /api/activity", th.getActivity)
	mux.HandleFunc("GET /api/activity/export", th.exportActivity)

	if hub != nil {
		mux.HandleFunc("GET /ws", hub.HandleWS)
	}

	var h http.Handler = mux
	h = accessGate(cfg.AccessKey)(h)
	h = requestLogging(logger)(h)
	h = corsMiddleware(cfg.CORSOrigins)(h)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: srv,
		logger:     logger,
	}
}

// Start begins listening for HTTP requests. It blocks until the server
// encounters an error or is shut down.
func (s *Server) Start() error {
	s.logger.Info("server: starting",
		slog.String("addr", s.httpServer.Addr),
	)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server: listen: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server, waiting for in-flight requests
// to complete within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("server: shutting down")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// corsMiddleware sets CORS headers for the allowed origins. If no origins
// are specified, all origins are allowed.
func corsMiddleware(allowedOrigins []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			if origin != "" {
				allowed := len(allowedOrigins) == 0
				for _, o := range allowedOrigins {
					if strings.EqualFold(o, "*") || strings.EqualFold(o, origin) {
						allowed = true
						break
					}
				}

				if allowed {
					w.Header().Set("Access-Control-Allow-Origin", origin)
					w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
					w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Access-Key, X-Session-ID")
					w.Header().Set("Access-Control-Max-Age", "86400")
				}
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
