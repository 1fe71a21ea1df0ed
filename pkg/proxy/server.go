// Package proxy implements the credential-forwarding hop between browser
// callers and the Onit ledger API: it strips a fixed path prefix, injects
// the bearer credential, and forwards everything else untouched. Callers
// never see the credential.
package proxy

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	json "github.com/goccy/go-json"
)

// Server is the proxy HTTP server. It also exposes /metrics, /health, and
// /ready like every service in this codebase.
type Server struct {
	server    *http.Server
	logger    *zap.Logger
	startTime time.Time
	ready     atomic.Bool
}

// Config holds proxy server configuration.
type Config struct {
	Port       string
	Upstream   string // ledger API base URL
	APIKey     string // bearer credential injected on every forwarded request
	PathPrefix string // prefix stripped before forwarding, e.g. "/proxy"
	Logger     *zap.Logger
}

// New creates a new proxy server.
func New(cfg *Config) (*Server, error) {
	upstream, err := url.Parse(cfg.Upstream)
	if err != nil {
		return nil, fmt.Errorf("parse upstream URL: %w", err)
	}

	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key cannot be empty")
	}

	prefix := cfg.PathPrefix
	if prefix == "" {
		prefix = "/proxy"
	}

	s := &Server{
		logger:    cfg.Logger,
		startTime: time.Now(),
	}

	forwarder := newForwarder(upstream, cfg.APIKey, prefix, cfg.Logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/metrics", promhttp.Handler().ServeHTTP)
	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)
	r.Handle(prefix+"/*", forwarder)

	s.server = &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return s, nil
}

// newForwarder builds the reverse proxy that rewrites the path and injects
// the credential.
func newForwarder(upstream *url.URL, apiKey, prefix string, logger *zap.Logger) http.Handler {
	proxy := &httputil.ReverseProxy{
		Rewrite: func(r *httputil.ProxyRequest) {
			r.SetURL(upstream)
			r.Out.Host = upstream.Host

			stripped := strings.TrimPrefix(r.In.URL.Path, prefix)
			if stripped == "" {
				stripped = "/"
			}
			r.Out.URL.Path = singleJoin(upstream.Path, stripped)
			r.Out.URL.RawQuery = r.In.URL.RawQuery

			// The caller's own authorization never reaches the upstream;
			// the credential is ours to attach.
			r.Out.Header.Del("Authorization")
			r.Out.Header.Set("Authorization", "Bearer "+apiKey)
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			ForwardErrorsTotal.Inc()
			logger.Error("proxy-upstream-error",
				zap.String("path", r.URL.Path),
				zap.Error(err))
			http.Error(w, "upstream unavailable", http.StatusBadGateway)
		},
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ForwardedTotal.Inc()
		proxy.ServeHTTP(w, r)
	})
}

func singleJoin(a, b string) string {
	switch {
	case strings.HasSuffix(a, "/") && strings.HasPrefix(b, "/"):
		return a + b[1:]
	case !strings.HasSuffix(a, "/") && !strings.HasPrefix(b, "/"):
		return a + "/" + b
	default:
		return a + b
	}
}

// SetReady marks the server as ready to forward traffic.
func (s *Server) SetReady(ready bool) {
	s.ready.Store(ready)
}

type statusResponse struct {
	Status  string `json:"status"`
	Uptime  string `json:"uptime"`
	Message string `json:"message,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeStatus(w, http.StatusOK, statusResponse{
		Status: "healthy",
		Uptime: time.Since(s.startTime).String(),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	if !s.ready.Load() {
		writeStatus(w, http.StatusServiceUnavailable, statusResponse{
			Status:  "not_ready",
			Message: "proxy is starting",
		})
		return
	}

	writeStatus(w, http.StatusOK, statusResponse{
		Status: "ready",
		Uptime: time.Since(s.startTime).String(),
	})
}

func writeStatus(w http.ResponseWriter, code int, resp statusResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(resp)
}

// Start starts the proxy server. Blocks until the server stops or fails.
func (s *Server) Start() error {
	s.logger.Info("proxy-server-starting", zap.String("addr", s.server.Addr))

	err := s.server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("listen and serve: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the proxy server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("proxy-server-shutting-down")

	err := s.server.Shutdown(ctx)
	if err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	return nil
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}
