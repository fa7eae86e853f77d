package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"parley/internal/store"
)

func setupTestServer(t *testing.T) (*httptest.Server, *store.Store) {
	t.Helper()
	st := store.New()
	srv := httptest.NewServer(NewRouter(st, "test", Options{}))
	t.Cleanup(srv.Close)
	return srv, st
}

func doGet(t *testing.T, baseURL, path string) *http.Response {
	t.Helper()
	resp, err := http.Get(baseURL + path)
	if err != nil {
		t.Fatalf("get %s: %v", path, err)
	}
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode json: %v", err)
	}
}

func TestStatusEndpoint(t *testing.T) {
	srv, _ := setupTestServer(t)

	resp := doGet(t, srv.URL, "/api/v1/status")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status endpoint returned %d", resp.StatusCode)
	}
	var payload struct {
		Status        string `json:"status"`
		Version       string `json:"version"`
		Timestamp     string `json:"timestamp"`
		UptimeSeconds int64  `json:"uptime_seconds"`
	}
	decodeJSON(t, resp, &payload)
	if payload.Status != "ok" || payload.Version != "test" || payload.Timestamp == "" {
		t.Fatalf("unexpected status payload: %+v", payload)
	}
	if payload.UptimeSeconds < 0 {
		t.Fatalf("negative uptime: %d", payload.UptimeSeconds)
	}
}

func TestAgentsDirectoryEndpoint(t *testing.T) {
	srv, st := setupTestServer(t)

	st.Register(store.RegisterParams{Name: "Alice", Description: "pilot"})
	st.Register(store.RegisterParams{Name: "Bob"})

	resp := doGet(t, srv.URL, "/api/v1/agents")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("agents endpoint returned %d", resp.StatusCode)
	}
	var payload struct {
		Agents []struct {
			Name        string `json:"name"`
			Description string `json:"description"`
			LastSeen    string `json:"last_seen"`
			Joined      string `json:"joined"`
		} `json:"agents"`
		Total int `json:"total"`
	}
	decodeJSON(t, resp, &payload)
	if payload.Total != 2 || len(payload.Agents) != 2 {
		t.Fatalf("unexpected directory payload: %+v", payload)
	}
	// Registration order, display casing preserved.
	if payload.Agents[0].Name != "Alice" || payload.Agents[1].Name != "Bob" {
		t.Fatalf("directory order = %q, %q", payload.Agents[0].Name, payload.Agents[1].Name)
	}
	if payload.Agents[0].Description != "pilot" || payload.Agents[0].Joined == "" {
		t.Fatalf("directory missing fields: %+v", payload.Agents[0])
	}
}

func TestStatsEndpoint(t *testing.T) {
	srv, st := setupTestServer(t)

	st.Register(store.RegisterParams{Name: "alice"})
	st.Register(store.RegisterParams{Name: "bob"})
	if _, err := st.Send("alice", "bob", "one"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if _, err := st.Send("alice", "bob", "two"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if _, err := st.ReadInbox("bob", false, 1); err != nil {
		t.Fatalf("read inbox: %v", err)
	}

	resp := doGet(t, srv.URL, "/api/v1/stats")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("stats endpoint returned %d", resp.StatusCode)
	}
	var payload struct {
		Stats struct {
			Agents         int `json:"agents"`
			Messages       int `json:"messages"`
			UnreadMessages int `json:"unread_messages"`
		} `json:"stats"`
	}
	decodeJSON(t, resp, &payload)
	if payload.Stats.Agents != 2 || payload.Stats.Messages != 2 || payload.Stats.UnreadMessages != 1 {
		t.Fatalf("unexpected stats payload: %+v", payload.Stats)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	srv, _ := setupTestServer(t)

	resp, err := http.Post(srv.URL+"/api/v1/agents", "application/json", nil)
	if err != nil {
		t.Fatalf("post agents: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", resp.StatusCode)
	}
}
