package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config keeps runtime settings for the server and its clients.
type Config struct {
	DatabaseURL      string
	ListenAddr       string
	AllowedOrigins   []string
	RedisURL         string
	SnapshotCacheTTL time.Duration
	AutoSnapshotAt   string
	Location         *time.Location
	ServerURL        string
	TelegramToken    string
	TelegramChatID   int64
	Debug            bool
}

var defaultOrigins = []string{"http://localhost:3000", "http://127.0.0.1:3000"}

// Load reads configuration from a .env file, if present, and then from
// environment variables with sane defaults.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function.
func FromEnv(getenv func(string) string) (Config, error) {
	env := func(key string) string { return strings.TrimSpace(getenv(key)) }

	cfg := Config{
		DatabaseURL:      env("DATABASE_URL"),
		ListenAddr:       env("LISTEN_ADDR"),
		AllowedOrigins:   parseList(env("ALLOWED_ORIGINS")),
		RedisURL:         env("REDIS_URL"),
		SnapshotCacheTTL: 10 * time.Minute,
		AutoSnapshotAt:   env("AUTO_SNAPSHOT_AT"),
		Location:         time.Local,
		ServerURL:        strings.TrimRight(env("SERVER_URL"), "/"),
		TelegramToken:    env("TELEGRAM_TOKEN"),
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = "daily_todo.db"
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":3000"
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = append([]string(nil), defaultOrigins...)
	}
	if cfg.ServerURL == "" {
		cfg.ServerURL = "http://localhost:3000"
	}

	if raw := env("SNAPSHOT_CACHE_TTL"); raw != "" {
		ttl, err := time.ParseDuration(raw)
		if err != nil || ttl <= 0 {
			return cfg, fmt.Errorf("invalid SNAPSHOT_CACHE_TTL %q", raw)
		}
		cfg.SnapshotCacheTTL = ttl
	}

	if raw := env("TIMEZONE"); raw != "" {
		loc, err := time.LoadLocation(raw)
		if err != nil {
			return cfg, fmt.Errorf("invalid TIMEZONE %q: %w", raw, err)
		}
		cfg.Location = loc
	}

	if cfg.AutoSnapshotAt != "" {
		if _, err := time.Parse("15:04", cfg.AutoSnapshotAt); err != nil {
			return cfg, fmt.Errorf("invalid AUTO_SNAPSHOT_AT %q, expected HH:MM", cfg.AutoSnapshotAt)
		}
	}

	if raw := env("TELEGRAM_CHAT_ID"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return cfg, fmt.Errorf("invalid TELEGRAM_CHAT_ID %q", raw)
		}
		cfg.TelegramChatID = id
	}

	if raw := env("DEBUG"); raw != "" {
		debug, err := strconv.ParseBool(raw)
		if err != nil {
			return cfg, fmt.Errorf("invalid DEBUG %q", raw)
		}
		cfg.Debug = debug
	}

	return cfg, nil
}

// RequireTelegram reports whether the bot can be started.
func (c Config) RequireTelegram() error {
	if c.TelegramToken == "" {
		return fmt.Errorf("TELEGRAM_TOKEN is required")
	}
	return nil
}

func parseList(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
