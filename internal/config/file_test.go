package config

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	fs := afero.NewMemMapFs()

	cfg, err := Load(fs, "codementor.yaml")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != Default().Server.Port {
		t.Errorf("Server.Port = %d; want default", cfg.Server.Port)
	}
}

func TestLoad_EmptyPath(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(afero.NewMemMapFs(), "")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Review.FreeLimit != 3 {
		t.Errorf("Review.FreeLimit = %d; want 3", cfg.Review.FreeLimit)
	}
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)
	fs := afero.NewMemMapFs()
	yaml := `
server:
  port: 9000
  api_rate_window: 5m
review:
  free_limit: 5
history:
  driver: sqlite
  sqlite_path: /var/lib/codementor/history.db
`
	if err := afero.WriteFile(fs, "/etc/codementor.yaml", []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(fs, "/etc/codementor.yaml")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("Server.Port = %d; want 9000", cfg.Server.Port)
	}
	if cfg.Server.APIRateWindow != 5*time.Minute {
		t.Errorf("Server.APIRateWindow = %v; want 5m", cfg.Server.APIRateWindow)
	}
	if cfg.Review.FreeLimit != 5 {
		t.Errorf("Review.FreeLimit = %d; want 5", cfg.Review.FreeLimit)
	}
	if cfg.History.Driver != DriverSQLite {
		t.Errorf("History.Driver = %q; want sqlite", cfg.History.Driver)
	}
	// keys absent from the file keep their defaults
	if cfg.Server.FrontendURL != "http://localhost:3000" {
		t.Errorf("Server.FrontendURL = %q; want default", cfg.Server.FrontendURL)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "6000")
	fs := afero.NewMemMapFs()
	_ = afero.WriteFile(fs, "codementor.yaml", []byte("server:\n  port: 9000\n"), 0644)

	cfg, err := Load(fs, "codementor.yaml")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 6000 {
		t.Errorf("Server.Port = %d; want 6000", cfg.Server.Port)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	clearEnv(t)
	fs := afero.NewMemMapFs()
	_ = afero.WriteFile(fs, "codementor.yaml", []byte("server: [unclosed"), 0644)

	if _, err := Load(fs, "codementor.yaml"); err == nil {
		t.Error("Load() should fail on invalid YAML")
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	clearEnv(t)
	fs := afero.NewMemMapFs()
	_ = afero.WriteFile(fs, "codementor.yaml", []byte("history:\n  driver: cassandra\n"), 0644)

	_, err := Load(fs, "codementor.yaml")
	if err == nil || !strings.Contains(err.Error(), "history.driver") {
		t.Errorf("Load() error = %v; want history.driver error", err)
	}
}

func TestSave_RoundTrip(t *testing.T) {
	clearEnv(t)
	fs := afero.NewMemMapFs()

	cfg := Default()
	cfg.Review.FreeLimit = 7
	cfg.Server.APIRateWindow = 90 * time.Second

	if err := Save(fs, "conf/codementor.yaml", cfg); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(fs, "conf/codementor.yaml")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Review.FreeLimit != 7 {
		t.Errorf("Review.FreeLimit = %d; want 7", loaded.Review.FreeLimit)
	}
	if loaded.Server.APIRateWindow != 90*time.Second {
		t.Errorf("Server.APIRateWindow = %v; want 1m30s", loaded.Server.APIRateWindow)
	}
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("CODEMENTOR_CONFIG", "")
	if got := DefaultPath(); got != FileName {
		t.Errorf("DefaultPath() = %q; want %q", got, FileName)
	}
	t.Setenv("CODEMENTOR_CONFIG", "/etc/cm.yaml")
	if got := DefaultPath(); got != "/etc/cm.yaml" {
		t.Errorf("DefaultPath() = %q; want /etc/cm.yaml", got)
	}
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, Default()); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{"free_limit: 3", "driver: memory", "port: 5000"} {
		if !strings.Contains(out, want) {
			t.Errorf("Write() output missing %q:\n%s", want, out)
		}
	}
}
