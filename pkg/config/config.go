package config

import (
	"fmt"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for companydb.
// Configuration can come from YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values for fields that support both.
// Secrets (passwords, API keys) must only come from environment variables.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"8080"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version  string `yaml:"-"` // Set at load time, not from config

	// Database configuration (PostgreSQL)
	Database DatabaseConfig `yaml:"database"`

	// Search store configuration (OpenSearch)
	Search SearchConfig `yaml:"search"`

	// Import pipeline configuration
	Import ImportConfig `yaml:"import"`

	// APIKeysStr is a comma-separated list of bearer tokens accepted on /api/v1.
	// Empty means the endpoints run without authentication (development mode).
	APIKeysStr string `yaml:"-" env:"API_KEYS"` // Secret - not in YAML

	// APIKeys is the parsed set from APIKeysStr (not from config file).
	APIKeys map[string]struct{} `yaml:"-"`
}

// DatabaseConfig holds PostgreSQL database configuration.
type DatabaseConfig struct {
	Host           string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User           string `yaml:"user" env:"PGUSER" env-default:"companydb"`
	Password       string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database       string `yaml:"database" env:"PGDATABASE" env-default:"companydb"`
	MaxConnections int32  `yaml:"max_connections" env:"PGMAX_CONNECTIONS" env-default:"25"`
	SSLMode        string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
}

// SearchConfig holds OpenSearch configuration.
type SearchConfig struct {
	// Enabled toggles the search projection and the search query path.
	// When false, ingestion skips indexing and queries go straight to PostgreSQL.
	Enabled bool `yaml:"enabled" env:"OPENSEARCH_ENABLED" env-default:"true"`

	// URL is the OpenSearch endpoint.
	URL string `yaml:"url" env:"OPENSEARCH_URL" env-default:"http://localhost:9200"`

	// HealthTimeoutMS bounds the pre-query health check. On timeout the query
	// router falls back to PostgreSQL.
	HealthTimeoutMS int `yaml:"health_timeout_ms" env:"OPENSEARCH_HEALTH_TIMEOUT_MS" env-default:"500"`

	// IndexChunkSize is the number of documents per bulk indexing request.
	IndexChunkSize int `yaml:"index_chunk_size" env:"OPENSEARCH_INDEX_CHUNK_SIZE" env-default:"1000"`
}

// ImportConfig holds ingestion pipeline settings.
type ImportConfig struct {
	// DataDirectory is scanned for importable .jsonl exports.
	DataDirectory string `yaml:"data_directory" env:"DATA_DIRECTORY" env-default:"./data"`

	// BatchSize is the number of lines accumulated before a bulk flush.
	// Job progress is only written at flush boundaries, so this also bounds
	// how stale the job record's counters can be.
	BatchSize int `yaml:"batch_size" env:"IMPORT_BATCH_SIZE" env-default:"20000"`
}

// Load reads configuration from config.yaml with environment variable overrides.
// The version parameter is injected at build time and set on the returned Config.
func Load(version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
		return nil, fmt.Errorf("failed to read config.yaml: %w", err)
	}

	cfg.APIKeys = parseAPIKeys(cfg.APIKeysStr)

	return cfg, nil
}

// parseAPIKeys parses the comma-separated API key list into a set.
func parseAPIKeys(value string) map[string]struct{} {
	keys := make(map[string]struct{})
	for _, k := range strings.Split(value, ",") {
		k = strings.TrimSpace(k)
		if k != "" {
			keys[k] = struct{}{}
		}
	}
	return keys
}

// ConnectionString returns a PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}
