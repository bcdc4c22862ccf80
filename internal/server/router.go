package server

import (
	"net/http"
	"strings"

	"github.com/agentstation/driftmap/internal/server/handlers"
	"github.com/agentstation/driftmap/internal/server/middleware"
	"github.com/agentstation/driftmap/internal/server/response"
)

// setupRouter creates the HTTP handler with routes and middleware.
func (s *Server) setupRouter() http.Handler {
	mux := http.NewServeMux()
	h := handlers.New(s.app, s.cache, s.logger, s.startTime, s.config.MaxBodyBytes)
	s.registerRoutes(mux, h)
	return s.applyMiddleware(mux)
}

// registerRoutes registers all HTTP routes.
func (s *Server) registerRoutes(mux *http.ServeMux, h *handlers.Handlers) {
	prefix := s.config.PathPrefix

	mux.HandleFunc("/health", h.HandleHealth)
	mux.HandleFunc(prefix+"/health", h.HandleHealth)
	mux.HandleFunc(prefix+"/ready", h.HandleReady)

	// /resolutions/{type} and /resolutions/{type}/properties
	mux.HandleFunc(prefix+"/resolutions/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			response.MethodNotAllowed(w, r.Method)
			return
		}
		parts := splitPath(strings.TrimPrefix(r.URL.Path, prefix+"/resolutions/"))
		switch {
		case len(parts) == 1:
			h.HandleResolutions(w, r, parts[0])
		case len(parts) == 2 && parts[1] == "properties":
			h.HandleProperties(w, r, parts[0])
		default:
			response.NotFound(w, "Not found", r.URL.Path)
		}
	})

	mux.HandleFunc(prefix+"/rules/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			response.MethodNotAllowed(w, r.Method)
			return
		}
		parts := splitPath(strings.TrimPrefix(r.URL.Path, prefix+"/rules/"))
		if len(parts) != 1 {
			response.NotFound(w, "Not found", r.URL.Path)
			return
		}
		h.HandleRules(w, r, parts[0])
	})

	mux.HandleFunc(prefix+"/parse", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			response.MethodNotAllowed(w, r.Method)
			return
		}
		h.HandleParse(w, r)
	})

	mux.HandleFunc(prefix+"/cache", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			h.HandleCacheStats(w, r)
		case http.MethodDelete:
			h.HandleCacheClear(w, r)
		default:
			response.MethodNotAllowed(w, r.Method)
		}
	})

	if s.config.MetricsEnabled {
		mux.Handle("/metrics", s.app.Metrics().Handler())
	}
}

// applyMiddleware wraps handler with the middleware chain.
func (s *Server) applyMiddleware(handler http.Handler) http.Handler {
	cfg := s.config

	chain := []func(http.Handler) http.Handler{
		middleware.Recovery(s.logger),
		middleware.RequestID(),
		middleware.Logger(s.logger),
	}
	if cfg.MetricsEnabled {
		chain = append(chain, middleware.Metrics(s.app.Metrics()))
	}
	if cfg.CORSEnabled {
		corsConfig := middleware.DefaultCORSConfig()
		corsConfig.AllowedOrigins = cfg.CORSOrigins
		corsConfig.AllowAll = len(cfg.CORSOrigins) == 0
		chain = append(chain, middleware.CORS(corsConfig))
	}
	chain = append(chain, middleware.Timeout(cfg.RequestTimeout))

	return middleware.Chain(chain...)(handler)
}

// splitPath splits a URL path into parts, removing empty strings.
func splitPath(path string) []string {
	parts := []string{}
	for _, part := range strings.Split(path, "/") {
		if part != "" {
			parts = append(parts, part)
		}
	}
	return parts
}
