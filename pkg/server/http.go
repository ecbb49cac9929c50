package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// runHTTP serves the MCP endpoint plus plain health and info routes,
// and shuts down gracefully when the context is canceled.
func (s *Server) runHTTP(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.cfg.Server.Addr,
		Handler: s.httpHandler(),
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Infof("Serving MCP over HTTP on %s (endpoint: /mcp)", s.cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		s.logger.Info("Shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// httpHandler builds the route table around the streamable MCP endpoint
func (s *Server) httpHandler() http.Handler {
	r := mux.NewRouter()

	streamable := mcpserver.NewStreamableHTTPServer(s.mcp)
	r.PathPrefix("/mcp").Handler(streamable)

	r.HandleFunc("/", s.handleInfo).Methods(http.MethodGet)
	r.HandleFunc("/info", s.handleInfo).Methods(http.MethodGet)
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/healthz", s.handleHealthz).Methods(http.MethodGet)
	r.HandleFunc("/tools", s.handleTools).Methods(http.MethodGet)

	return r
}

func (s *Server) handleInfo(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, map[string]interface{}{
		"name":      s.cfg.Server.Name,
		"version":   s.version,
		"protocol":  "mcp",
		"endpoints": map[string]string{
			"mcp":    "/mcp",
			"health": "/health",
			"info":   "/info",
			"tools":  "/tools",
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, map[string]string{"status": "healthy"})
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (s *Server) handleTools(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, map[string]interface{}{
		"tools": []map[string]string{
			{"name": "get_finding_config", "description": "Get the query schema for a finding data type"},
			{"name": "get_finding", "description": "Query security findings"},
			{"name": "get_finding_filter", "description": "Get valid values for a finding filter field"},
			{"name": "search_assets", "description": "Search cloud infrastructure assets"},
			{"name": "get_model_vulnerabilities", "description": "Get the AI/ML model vulnerability summary"},
			{"name": "get_model_stats", "description": "Get deployed vs not-deployed model statistics"},
		},
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Warnf("Failed to encode response: %v", err)
	}
}
