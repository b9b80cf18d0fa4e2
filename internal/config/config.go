package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	StorageSQLite = "sqlite"
	StorageMemory = "memory"
)

type Config struct {
	Port          string
	DBPath        string
	Storage       string
	MigrationsDir string
	APISecret     string
	TokenTTL      time.Duration
	CORSOrigins   []string
	TickInterval  time.Duration
	SaveTimeout   time.Duration
	LogLevel      string
	LogFormat     string
}

// fileConfig mirrors Config for the optional YAML file named by CONFIG_FILE.
type fileConfig struct {
	Port           string   `yaml:"port"`
	DBPath         string   `yaml:"db_path"`
	Storage        string   `yaml:"storage"`
	MigrationsDir  string   `yaml:"migrations_dir"`
	APISecret      string   `yaml:"api_secret"`
	TokenTTLHours  int      `yaml:"token_ttl_hours"`
	CORSOrigins    []string `yaml:"cors_origins"`
	TickIntervalMS int      `yaml:"tick_interval_ms"`
	SaveTimeoutMS  int      `yaml:"save_timeout_ms"`
	LogLevel       string   `yaml:"log_level"`
	LogFormat      string   `yaml:"log_format"`
}

func Defaults() Config {
	return Config{
		Port:         "8080",
		DBPath:       "./data/intervals.db",
		Storage:      StorageSQLite,
		TokenTTL:     72 * time.Hour,
		CORSOrigins:  []string{"http://localhost:8081", "http://127.0.0.1:8081"},
		TickInterval: time.Second,
		SaveTimeout:  5 * time.Second,
		LogLevel:     "info",
		LogFormat:    "text",
	}
}

// Load reads defaults, then the YAML file named by CONFIG_FILE (if any), then
// environment variables. Later sources win.
func Load() (Config, error) {
	cfg := Defaults()

	if path := getEnv("CONFIG_FILE", ""); path != "" {
		if err := applyFile(&cfg, path); err != nil {
			return cfg, err
		}
	}

	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.DBPath = getEnv("DB_PATH", cfg.DBPath)
	cfg.Storage = strings.ToLower(getEnv("STORAGE", cfg.Storage))
	cfg.MigrationsDir = getEnv("MIGRATIONS_DIR", cfg.MigrationsDir)
	cfg.APISecret = getEnv("API_SECRET", cfg.APISecret)
	cfg.TokenTTL = time.Duration(getEnvInt("TOKEN_TTL_HOURS", int(cfg.TokenTTL/time.Hour))) * time.Hour
	cfg.CORSOrigins = getEnvList("CORS_ORIGINS", cfg.CORSOrigins)
	cfg.TickInterval = time.Duration(getEnvInt("TICK_INTERVAL_MS", int(cfg.TickInterval/time.Millisecond))) * time.Millisecond
	cfg.SaveTimeout = time.Duration(getEnvInt("SAVE_TIMEOUT_MS", int(cfg.SaveTimeout/time.Millisecond))) * time.Millisecond
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getEnv("LOG_FORMAT", cfg.LogFormat)

	if cfg.Storage != StorageSQLite && cfg.Storage != StorageMemory {
		return cfg, fmt.Errorf("unsupported storage %q", cfg.Storage)
	}
	return cfg, nil
}

func applyFile(cfg *Config, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config file: %w", err)
	}

	var file fileConfig
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return fmt.Errorf("parse config yaml: %w", err)
	}

	if file.Port != "" {
		cfg.Port = file.Port
	}
	if file.DBPath != "" {
		cfg.DBPath = file.DBPath
	}
	if file.Storage != "" {
		cfg.Storage = strings.ToLower(file.Storage)
	}
	if file.MigrationsDir != "" {
		cfg.MigrationsDir = file.MigrationsDir
	}
	if file.APISecret != "" {
		cfg.APISecret = file.APISecret
	}
	if file.TokenTTLHours > 0 {
		cfg.TokenTTL = time.Duration(file.TokenTTLHours) * time.Hour
	}
	if len(file.CORSOrigins) > 0 {
		cfg.CORSOrigins = file.CORSOrigins
	}
	if file.TickIntervalMS != 0 {
		cfg.TickInterval = time.Duration(file.TickIntervalMS) * time.Millisecond
	}
	if file.SaveTimeoutMS > 0 {
		cfg.SaveTimeout = time.Duration(file.SaveTimeoutMS) * time.Millisecond
	}
	if file.LogLevel != "" {
		cfg.LogLevel = file.LogLevel
	}
	if file.LogFormat != "" {
		cfg.LogFormat = file.LogFormat
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvList(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}

	parts := strings.Split(value, ",")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			items = append(items, trimmed)
		}
	}
	if len(items) == 0 {
		return fallback
	}
	return items
}
