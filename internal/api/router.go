package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"parley/internal/archive"
	"parley/internal/mcpserver"
	"parley/internal/ratelimit"
	"parley/internal/store"
)

type Options struct {
	Archive       *archive.Archive
	WebhookURLs   []string
	WebhookSecret string
}

// NewRouter mounts the read-only introspection API and the streamable MCP
// endpoint. The REST surface is unauthenticated, so the rate limiter keys
// on client host rather than agent identity.
func NewRouter(st *store.Store, version string, opts Options) *http.ServeMux {
	mux := http.NewServeMux()
	limiter := ratelimit.NewLimiter()
	started := time.Now().UTC()
	limited := func(h http.Handler) http.Handler {
		return rateLimitMiddleware(limiter, readsPerMinute, h)
	}

	emitter := newWebhookEmitter(opts.WebhookURLs, opts.WebhookSecret)
	server := mcpserver.New(st, version, mcpserver.Options{
		Archive: opts.Archive,
		Emit:    emitter.Emit,
	})

	mux.Handle("/api/v1/status", limited(statusHandler(st, version, started)))
	mux.Handle("/api/v1/agents", limited(agentsHandler(st)))
	mux.Handle("/api/v1/stats", limited(statsHandler(st)))
	mux.Handle("/mcp", mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return server
	}, nil))
	return mux
}

func statusHandler(st *store.Store, version string, started time.Time) http.Handler {
	type statusResponse struct {
		Status        string `json:"status"`
		Version       string `json:"version"`
		Timestamp     string `json:"timestamp"`
		UptimeSeconds int64  `json:"uptime_seconds"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		writeJSON(w, http.StatusOK, statusResponse{
			Status:        "ok",
			Version:       version,
			Timestamp:     time.Now().UTC().Format(time.RFC3339),
			UptimeSeconds: int64(time.Since(started).Seconds()),
		})
	})
}

func agentsHandler(st *store.Store) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		agents := st.ListAgents()
		writeJSON(w, http.StatusOK, map[string]any{
			"agents": agents,
			"total":  len(agents),
		})
	})
}

func statsHandler(st *store.Store) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"stats": st.GetStats(),
		})
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}
