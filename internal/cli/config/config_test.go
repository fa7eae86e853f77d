package config

import (
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	c, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Version != 1 || c.DefaultServer != "main" {
		t.Fatalf("unexpected defaults: %+v", c)
	}
	if _, ok := c.Default(); ok {
		t.Fatalf("expected no default server before connect")
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	c, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	c.SetDefault("http://localhost:8080")
	if err := Save(c); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	server, ok := loaded.Default()
	if !ok {
		t.Fatalf("default server missing after save")
	}
	if server.URL != "http://localhost:8080" || server.ConnectedAt == "" {
		t.Fatalf("unexpected server: %+v", server)
	}

	loaded.ClearDefault()
	if _, ok := loaded.Default(); ok {
		t.Fatalf("expected default cleared")
	}
}
