package main

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCmdAgentsPrintsDirectory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/agents" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"agents": []map[string]any{
				{
					"name":      "Alice",
					"profile":   map[string]any{"role": "Engineer", "location": "Berlin"},
					"joined":    "2026-03-01T12:00:00Z",
					"last_seen": "2026-03-01T12:05:00Z",
				},
			},
			"total": 1,
		})
	}))
	defer srv.Close()

	writeCLIConfig(t, srv.URL)

	out, err := captureStdout(t, func() error {
		return run([]string{"agents", "--format", "table"})
	})
	if err != nil {
		t.Fatalf("agents command: %v", err)
	}
	if !strings.Contains(out, "Alice") || !strings.Contains(out, "Engineer") {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestCmdStatsPlainFormat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"stats": map[string]any{"agents": 2, "messages": 5, "unread_messages": 1},
		})
	}))
	defer srv.Close()

	writeCLIConfig(t, srv.URL)

	out, err := captureStdout(t, func() error {
		return run([]string{"stats", "--format", "plain"})
	})
	if err != nil {
		t.Fatalf("stats command: %v", err)
	}
	if !strings.Contains(out, "agents=2") || !strings.Contains(out, "unread=1") {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestRunWithoutConfiguredServerFails(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	_, err := captureStdout(t, func() error {
		return run([]string{"agents"})
	})
	if err == nil || !strings.Contains(err.Error(), "parley connect") {
		t.Fatalf("expected connect hint, got: %v", err)
	}
}

func writeCLIConfig(t *testing.T, serverURL string) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	cfgPath := filepath.Join(home, ".parley", "config.json")
	if err := os.MkdirAll(filepath.Dir(cfgPath), 0o755); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}

	payload := map[string]any{
		"version":        1,
		"default_server": "main",
		"servers": map[string]any{
			"main": map[string]any{
				"url":          serverURL,
				"connected_at": "2026-03-01T00:00:00Z",
			},
		},
	}
	b, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(cfgPath, b, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func captureStdout(t *testing.T, fn func() error) (string, error) {
	t.Helper()
	orig := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("create stdout pipe: %v", err)
	}

	os.Stdout = w
	runErr := fn()
	_ = w.Close()
	os.Stdout = orig

	out, readErr := io.ReadAll(r)
	_ = r.Close()
	if readErr != nil {
		t.Fatalf("read stdout: %v", readErr)
	}
	return string(out), runErr
}
