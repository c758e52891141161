// Package config defines application configuration loaded from YAML files
// and environment variables via cleanenv.
package config

import "time"

// Config is the root application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Store    StoreConfig    `yaml:"store"`
	Enrich   EnrichConfig   `yaml:"enrich"`
	Search   SearchConfig   `yaml:"search"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig holds HTTP server settings for searchd.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"30s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"10"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"2"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
}

// StoreConfig holds local flat-file store settings.
type StoreConfig struct {
	// SnapshotPath is the canonical dictionary CSV written by the build
	// pipeline and read by the search runtime's local fallback.
	SnapshotPath string `yaml:"snapshot_path" env:"STORE_SNAPSHOT_PATH" env-default:"./data/entities.csv"`
	// RecordsPath is the raw ingestion CSV consumed by the pipeline.
	RecordsPath string `yaml:"records_path" env:"STORE_RECORDS_PATH" env-default:"./data/raw_records.csv"`
	// CheckpointSize is how many entities are folded into the local
	// snapshot per durable checkpoint.
	CheckpointSize int `yaml:"checkpoint_size" env:"STORE_CHECKPOINT_SIZE" env-default:"250"`
	// RemoteChunkSize bounds one remote upsert payload.
	RemoteChunkSize int `yaml:"remote_chunk_size" env:"STORE_REMOTE_CHUNK_SIZE" env-default:"1000"`
}

// EnrichConfig holds enrichment client settings.
type EnrichConfig struct {
	APIKey         string        `yaml:"api_key"         env:"ENRICH_API_KEY"`
	Model          string        `yaml:"model"           env:"ENRICH_MODEL"           env-default:"claude-sonnet-4-5"`
	BatchSize      int           `yaml:"batch_size"      env:"ENRICH_BATCH_SIZE"      env-default:"10"`
	Workers        int           `yaml:"workers"         env:"ENRICH_WORKERS"         env-default:"4"`
	MaxRetries     int           `yaml:"max_retries"     env:"ENRICH_MAX_RETRIES"     env-default:"3"`
	BackoffStep    time.Duration `yaml:"backoff_step"    env:"ENRICH_BACKOFF_STEP"    env-default:"5s"`
	RequestTimeout time.Duration `yaml:"request_timeout" env:"ENRICH_REQUEST_TIMEOUT" env-default:"60s"`
	MinConfidence  float64       `yaml:"min_confidence"  env:"ENRICH_MIN_CONFIDENCE"  env-default:"0.5"`
}

// SearchConfig holds dictionary runtime settings.
type SearchConfig struct {
	// PageSize is the remote load page size; pages are fetched
	// sequentially until exhausted.
	PageSize     int `yaml:"page_size"     env:"SEARCH_PAGE_SIZE"     env-default:"1000"`
	DefaultLimit int `yaml:"default_limit" env:"SEARCH_DEFAULT_LIMIT" env-default:"10"`
	MaxLimit     int `yaml:"max_limit"     env:"SEARCH_MAX_LIMIT"     env-default:"50"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}
