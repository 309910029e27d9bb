package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the path checked for YAML configuration.
const DefaultConfigFile = DefaultDir + "/config.yaml"

// Load returns a Config using the hierarchy: defaults < YAML < ENV.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigFile)
}

// LoadFrom returns a Config loaded from the given YAML path using the
// hierarchy: defaults < YAML < ENV. The YAML file is optional.
func LoadFrom(yamlPath string) (*Config, error) {
	cfg := Defaults()

	if err := loadYAML(&cfg, yamlPath); err != nil {
		return nil, fmt.Errorf("config yaml: %w", err)
	}

	loadEnv(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validate: %w", err)
	}

	return &cfg, nil
}

// loadYAML reads the YAML file and unmarshals it over cfg.
// Returns nil if the file does not exist.
func loadYAML(cfg *Config, path string) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	return nil
}

// loadEnv overlays environment variables onto cfg.
// Only non-empty env values override the current config.
func loadEnv(cfg *Config) {
	setString(&cfg.Storage.Backend, "DOLIST_STORAGE")
	setString(&cfg.Storage.DBPath, "DOLIST_DB_PATH")
	setString(&cfg.Storage.DataFile, "DOLIST_DATA_FILE")
	setString(&cfg.Storage.SnapshotPath, "DOLIST_SNAPSHOT_PATH")
	setBool(&cfg.Storage.Watch, "DOLIST_WATCH")
	setString(&cfg.Server.Port, "DOLIST_PORT")
	setString(&cfg.Logging.Level, "DOLIST_LOG_LEVEL")
	setString(&cfg.Logging.Format, "DOLIST_LOG_FORMAT")
	setString(&cfg.Logging.Service, "DOLIST_LOG_SERVICE")
}

// Validate normalizes enum fields and checks that required fields are set.
func Validate(cfg *Config) error {
	cfg.Storage.Backend = strings.ToLower(strings.TrimSpace(cfg.Storage.Backend))
	switch cfg.Storage.Backend {
	case BackendSQLite:
		if cfg.Storage.DBPath == "" {
			return errors.New("storage.db_path is required for the sqlite backend")
		}
	case BackendJSON:
		if cfg.Storage.DataFile == "" {
			return errors.New("storage.data_file is required for the json backend")
		}
	default:
		return fmt.Errorf("storage.backend must be %q or %q, got %q", BackendSQLite, BackendJSON, cfg.Storage.Backend)
	}

	cfg.Logging.Format = strings.ToLower(strings.TrimSpace(cfg.Logging.Format))
	if cfg.Logging.Format != FormatText && cfg.Logging.Format != FormatJSON {
		return fmt.Errorf("logging.format must be %q or %q, got %q", FormatText, FormatJSON, cfg.Logging.Format)
	}

	if cfg.Server.Port == "" {
		return errors.New("server.port is required")
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

// Save writes cfg as YAML to path, creating its directory.
func Save(path string, cfg Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
