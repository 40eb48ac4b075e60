// Package server provides HTTP server lifecycle management.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/riskgate/riskgate/internal/core/api"
	"github.com/riskgate/riskgate/internal/core/config"
	"github.com/riskgate/riskgate/internal/types"
)

// HTTPServer manages HTTP server lifecycle.
type HTTPServer struct {
	server *http.Server
	config *config.ServerConfig
}

// NewHTTPServer builds the router and wraps it in a configured server.
func NewHTTPServer(cfg *config.ServerConfig, service *api.Service) (*HTTPServer, error) {
	if cfg == nil {
		return nil, fmt.Errorf("cfg cannot be nil")
	}
	if service == nil {
		return nil, fmt.Errorf("service cannot be nil")
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(requestContext)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.Mount("/v1", service.Routes())

	return &HTTPServer{
		server: &http.Server{
			Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Handler:           r,
			ReadHeaderTimeout: 5 * time.Second,
		},
		config: cfg,
	}, nil
}

// Start serves requests until Shutdown is called.
func (s *HTTPServer) Start() error {
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests within the configured timeout.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

// requestContext generates the request id, resolves the tenant from the
// X-Tenant-ID header and exposes the id on the response for correlation.
func requestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := types.NewRequestID()
		ctx := api.WithRequestID(r.Context(), requestID)
		if tenantID := r.Header.Get("X-Tenant-ID"); tenantID != "" {
			ctx = api.WithTenantID(ctx, tenantID)
		}
		w.Header().Set("X-Request-ID", string(requestID))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
