package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Evolution EvolutionConfig
	Bot       BotConfig
	Redis     RedisConfig
	Postgres  PostgresConfig
	OpenAI    OpenAIConfig
	Downloads DownloadsConfig
	Logging   LoggingConfig
}

type EvolutionConfig struct {
	BaseURL  string
	WSURL    string
	APIKey   string
	Instance string
}

type BotConfig struct {
	Prefix     string
	GroupsFile string
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	Enabled  bool
}

type OpenAIConfig struct {
	APIKey string
	Model  string
}

type DownloadsConfig struct {
	Dir           string
	CacheFile     string
	MaxAge        time.Duration
	SweepInterval time.Duration
}

type LoggingConfig struct {
	Level string
	File  string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Evolution: EvolutionConfig{
			BaseURL:  getEnv("EVOLUTION_BASE_URL", "http://localhost:8080"),
			WSURL:    getEnv("EVOLUTION_WS_URL", "ws://localhost:8080/ws/events"),
			APIKey:   getEnv("EVOLUTION_API_KEY", ""),
			Instance: getEnv("EVOLUTION_INSTANCE", "ravena"),
		},
		Bot: BotConfig{
			Prefix:     getEnv("BOT_PREFIX", "!"),
			GroupsFile: getEnv("GROUPS_FILE", "data/groups.json"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Postgres: PostgresConfig{
			Host:     getEnv("POSTGRES_HOST", ""),
			Port:     getEnvInt("POSTGRES_PORT", 5432),
			User:     getEnv("POSTGRES_USER", "ravena"),
			Password: getEnv("POSTGRES_PASSWORD", ""),
			Database: getEnv("POSTGRES_DB", "ravena"),
		},
		OpenAI: OpenAIConfig{
			APIKey: getEnv("OPENAI_API_KEY", ""),
			Model:  getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		},
		Downloads: DownloadsConfig{
			Dir:           getEnv("DOWNLOADS_DIR", "data/downloads"),
			CacheFile:     getEnv("DOWNLOADS_CACHE_FILE", "data/smd-cache.json"),
			MaxAge:        time.Duration(getEnvInt("DOWNLOADS_MAX_AGE_HOURS", 168)) * time.Hour,
			SweepInterval: time.Duration(getEnvInt("DOWNLOADS_SWEEP_MINUTES", 60)) * time.Minute,
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
			File:  getEnv("LOG_FILE", ""),
		},
	}

	cfg.Postgres.Enabled = cfg.Postgres.Host != ""

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Evolution.BaseURL == "" {
		return fmt.Errorf("EVOLUTION_BASE_URL is required")
	}
	if c.Evolution.WSURL == "" {
		return fmt.Errorf("EVOLUTION_WS_URL is required")
	}
	if c.Evolution.APIKey == "" {
		return fmt.Errorf("EVOLUTION_API_KEY is required")
	}
	if c.Evolution.Instance == "" {
		return fmt.Errorf("EVOLUTION_INSTANCE is required")
	}
	if c.Bot.Prefix == "" {
		return fmt.Errorf("BOT_PREFIX must not be empty")
	}
	if c.Downloads.MaxAge <= 0 {
		return fmt.Errorf("DOWNLOADS_MAX_AGE_HOURS must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

