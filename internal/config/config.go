// Package config provides hierarchical configuration loading for dolist.
// Precedence: defaults < YAML file < environment variables. Command-line
// flags are applied on top by the caller.
package config

// Storage backends.
const (
	BackendSQLite = "sqlite"
	BackendJSON   = "json"
)

// Log output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// DefaultDir holds the database, data file, snapshot and config file.
const DefaultDir = ".dolist"

// Config holds all runtime configuration.
type Config struct {
	Storage Storage `yaml:"storage"`
	Server  Server  `yaml:"server"`
	Logging Logging `yaml:"logging"`
}

// Storage selects where the task collection lives.
type Storage struct {
	Backend      string `yaml:"backend"`       // "sqlite" | "json" (default: "sqlite")
	DBPath       string `yaml:"db_path"`       // SQLite database file
	DataFile     string `yaml:"data_file"`     // JSON data file for the json backend
	SnapshotPath string `yaml:"snapshot_path"` // Auto-exported snapshot; empty disables it
	Watch        bool   `yaml:"watch"`         // Reload when another process changes the data
}

// Server holds HTTP server configuration.
type Server struct {
	Port string `yaml:"port"`
}

// Logging holds structured logging configuration.
type Logging struct {
	Level   string `yaml:"level"`
	Format  string `yaml:"format"` // "text" | "json"
	Service string `yaml:"service"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Storage: Storage{
			Backend:      BackendSQLite,
			DBPath:       DefaultDir + "/dolist.db",
			DataFile:     DefaultDir + "/tasks.json",
			SnapshotPath: DefaultDir + "/snapshot.json",
			Watch:        true,
		},
		Server: Server{
			Port: "8000",
		},
		Logging: Logging{
			Level:   "warn",
			Format:  FormatText,
			Service: "dolist",
		},
	}
}

// StoragePath is the file that holds the collection for the configured backend.
func (s Storage) StoragePath() string {
	if s.Backend == BackendJSON {
		return s.DataFile
	}
	return s.DBPath
}
