package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.Storage.Backend != BackendSQLite {
		t.Errorf("expected backend sqlite, got %s", cfg.Storage.Backend)
	}
	if cfg.Storage.DBPath != ".dolist/dolist.db" {
		t.Errorf("expected db path .dolist/dolist.db, got %s", cfg.Storage.DBPath)
	}
	if cfg.Server.Port != "8000" {
		t.Errorf("expected port 8000, got %s", cfg.Server.Port)
	}
	if err := Validate(&cfg); err != nil {
		t.Errorf("defaults should validate, got %v", err)
	}
}

func TestLoadYAMLOverride(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "config.yaml")

	content := `
storage:
  backend: json
  data_file: /tmp/dolist/tasks.json
logging:
  level: debug
`
	if err := os.WriteFile(yamlPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := Defaults()
	if err := loadYAML(&cfg, yamlPath); err != nil {
		t.Fatal(err)
	}

	if cfg.Storage.Backend != BackendJSON {
		t.Errorf("expected backend json, got %s", cfg.Storage.Backend)
	}
	if cfg.Storage.DataFile != "/tmp/dolist/tasks.json" {
		t.Errorf("expected data file /tmp/dolist/tasks.json, got %s", cfg.Storage.DataFile)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level debug, got %s", cfg.Logging.Level)
	}
	// Unchanged fields keep defaults
	if cfg.Server.Port != "8000" {
		t.Errorf("expected default port, got %s", cfg.Server.Port)
	}
	if !cfg.Storage.Watch {
		t.Errorf("expected watch to stay enabled")
	}
}

func TestLoadYAMLMissing(t *testing.T) {
	cfg := Defaults()
	if err := loadYAML(&cfg, "/nonexistent/path.yaml"); err != nil {
		t.Errorf("missing YAML should not error, got %v", err)
	}
}

func TestLoadYAMLInvalid(t *testing.T) {
	yamlPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(yamlPath, []byte("storage: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadFrom(yamlPath); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestEnvOverride(t *testing.T) {
	cfg := Defaults()

	t.Setenv("DOLIST_STORAGE", "json")
	t.Setenv("DOLIST_DATA_FILE", "/data/tasks.json")
	t.Setenv("DOLIST_PORT", "7070")
	t.Setenv("DOLIST_LOG_LEVEL", "error")
	t.Setenv("DOLIST_WATCH", "false")

	loadEnv(&cfg)

	if cfg.Storage.Backend != BackendJSON {
		t.Errorf("expected backend json, got %s", cfg.Storage.Backend)
	}
	if cfg.Storage.DataFile != "/data/tasks.json" {
		t.Errorf("expected data file /data/tasks.json, got %s", cfg.Storage.DataFile)
	}
	if cfg.Server.Port != "7070" {
		t.Errorf("expected port 7070, got %s", cfg.Server.Port)
	}
	if cfg.Logging.Level != "error" {
		t.Errorf("expected log level error, got %s", cfg.Logging.Level)
	}
	if cfg.Storage.Watch {
		t.Errorf("expected watch disabled")
	}
}

func TestEnvOverridesYAML(t *testing.T) {
	yamlPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(yamlPath, []byte("server:\n  port: \"9090\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("DOLIST_PORT", "6060")

	cfg, err := LoadFrom(yamlPath)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if cfg.Server.Port != "6060" {
		t.Errorf("expected env port 6060 to win over YAML, got %s", cfg.Server.Port)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"backend is normalized", func(c *Config) { c.Storage.Backend = " JSON " }, ""},
		{"unknown backend", func(c *Config) { c.Storage.Backend = "redis" }, "storage.backend"},
		{"missing db path", func(c *Config) { c.Storage.DBPath = "" }, "storage.db_path"},
		{"missing data file", func(c *Config) {
			c.Storage.Backend = BackendJSON
			c.Storage.DataFile = ""
		}, "storage.data_file"},
		{"unknown format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"missing port", func(c *Config) { c.Server.Port = "" }, "server.port"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)
			err := Validate(&cfg)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestStoragePath(t *testing.T) {
	cfg := Defaults()
	if got := cfg.Storage.StoragePath(); got != cfg.Storage.DBPath {
		t.Errorf("expected db path for sqlite backend, got %s", got)
	}
	cfg.Storage.Backend = BackendJSON
	if got := cfg.Storage.StoragePath(); got != cfg.Storage.DataFile {
		t.Errorf("expected data file for json backend, got %s", got)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".dolist", "config.yaml")
	cfg := Defaults()
	cfg.Storage.Backend = BackendJSON
	cfg.Server.Port = "9999"

	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if loaded.Storage.Backend != BackendJSON || loaded.Server.Port != "9999" {
		t.Errorf("expected saved values back, got %+v", loaded)
	}
}
