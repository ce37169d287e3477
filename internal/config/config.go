package config

import (
	"time"
)

// Store drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config is the root application configuration.
type Config struct {
	Store      StoreConfig      `yaml:"store"`
	Database   DatabaseConfig   `yaml:"database"`
	SQLite     SQLiteConfig     `yaml:"sqlite"`
	Dictionary DictionaryConfig `yaml:"dictionary"`
	Search     SearchConfig     `yaml:"search"`
	Speech     SpeechConfig     `yaml:"speech"`
	Narration  NarrationConfig  `yaml:"narration"`
	Log        LogConfig        `yaml:"log"`
}

// StoreConfig selects the word cache backend.
type StoreConfig struct {
	Driver      string `yaml:"driver"       env:"STORE_DRIVER"       env-default:"sqlite"`
	AutoMigrate bool   `yaml:"auto_migrate" env:"STORE_AUTO_MIGRATE" env-default:"true"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"10"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"1"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
}

// SQLiteConfig holds the on-device cache file settings.
type SQLiteConfig struct {
	Path        string        `yaml:"path"         env:"SQLITE_PATH"         env-default:"./word_cache.db"`
	BusyTimeout time.Duration `yaml:"busy_timeout" env:"SQLITE_BUSY_TIMEOUT" env-default:"5s"`
}

// DictionaryConfig holds remote dictionary settings.
type DictionaryConfig struct {
	BaseURL string        `yaml:"base_url" env:"DICTIONARY_BASE_URL" env-default:"https://api.dictionaryapi.dev/api/v2/entries/en"`
	Timeout time.Duration `yaml:"timeout"  env:"DICTIONARY_TIMEOUT"  env-default:"10s"`
}

// SearchConfig holds search pipeline settings.
type SearchConfig struct {
	// FetchTimeout bounds a remote fetch that outlives its cancelled stream.
	FetchTimeout time.Duration `yaml:"fetch_timeout" env:"SEARCH_FETCH_TIMEOUT" env-default:"15s"`
}

// SpeechConfig holds speech-input settings.
type SpeechConfig struct {
	Language   string        `yaml:"language"    env:"SPEECH_LANGUAGE"    env-default:"en-US"`
	ResetDelay time.Duration `yaml:"reset_delay" env:"SPEECH_RESET_DELAY" env-default:"1s"`
}

// NarrationConfig holds text-to-speech settings.
type NarrationConfig struct {
	Language string `yaml:"language" env:"NARRATION_LANGUAGE" env-default:"en"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}
