// Package config reads CLUBHUB_* settings from the environment and an optional .env file.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// EnvProduction is the CLUBHUB_ENV value that enables strict settings.
const EnvProduction = "production"

// Config holds every runtime setting of the server and CLI.
type Config struct {
	Addr            string
	DBPath          string
	Env             string
	AdminEmail      string
	AdminPassword   string
	CSRFKey         []byte
	JWTSecret       []byte
	SessionLifetime time.Duration
	ResendKey       string
	ResendFrom      string
	LogFile         string
	LogLevel        string
	SlowQueryMs     int
	SlowRequestMs   int
	TrustedOrigins  []string
}

// IsProduction reports whether CLUBHUB_ENV is production.
func (c Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// Load reads .env files (missing files are ignored) and then the process environment.
// Variables already set in the environment win over .env values.
// PRE: none
// POST: In production the CSRF key and JWT secret must be configured; elsewhere random ones are generated
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}

	cfg := Config{
		Addr:          envOrDefault("CLUBHUB_ADDR", ":8080"),
		DBPath:        envOrDefault("CLUBHUB_DB_PATH", "clubhub.db"),
		Env:           envOrDefault("CLUBHUB_ENV", "development"),
		AdminEmail:    envOrDefault("CLUBHUB_ADMIN_EMAIL", "admin@clubhub.local"),
		AdminPassword: os.Getenv("CLUBHUB_ADMIN_PASSWORD"),
		ResendKey:     os.Getenv("CLUBHUB_RESEND_KEY"),
		ResendFrom:    envOrDefault("CLUBHUB_RESEND_FROM", "ClubHub <noreply@clubhub.local>"),
		LogFile:       os.Getenv("CLUBHUB_LOG_FILE"),
		LogLevel:      envOrDefault("CLUBHUB_LOG_LEVEL", "info"),
	}

	days, err := positiveInt("CLUBHUB_SESSION_DAYS", 90)
	if err != nil {
		return Config{}, err
	}
	cfg.SessionLifetime = time.Duration(days) * 24 * time.Hour

	if cfg.SlowQueryMs, err = positiveInt("CLUBHUB_SLOW_QUERY_MS", 50); err != nil {
		return Config{}, err
	}
	if cfg.SlowRequestMs, err = positiveInt("CLUBHUB_SLOW_REQUEST_MS", 200); err != nil {
		return Config{}, err
	}

	if origins := os.Getenv("CLUBHUB_TRUSTED_ORIGINS"); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.TrustedOrigins = append(cfg.TrustedOrigins, o)
			}
		}
	} else {
		cfg.TrustedOrigins = []string{"localhost:8080", "127.0.0.1:8080"}
	}

	if cfg.CSRFKey, err = secret("CLUBHUB_CSRF_KEY", cfg.IsProduction()); err != nil {
		return Config{}, err
	}
	if cfg.JWTSecret, err = secret("CLUBHUB_JWT_SECRET", cfg.IsProduction()); err != nil {
		return Config{}, err
	}
	if cfg.IsProduction() && cfg.AdminPassword == "" {
		return Config{}, errors.New("CLUBHUB_ADMIN_PASSWORD is required in production")
	}
	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func positiveInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", key, v)
	}
	return n, nil
}

// secret reads a 64-hex-character (32 byte) key. Outside production a missing
// key is replaced by a random one, so sessions and tokens do not survive restarts.
func secret(key string, required bool) ([]byte, error) {
	if keyHex := os.Getenv(key); keyHex != "" {
		b, err := hex.DecodeString(keyHex)
		if err != nil || len(b) != 32 {
			return nil, fmt.Errorf("%s must be 64 hex characters (32 bytes)", key)
		}
		return b, nil
	}
	if required {
		return nil, fmt.Errorf("%s is required in production", key)
	}
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("generate %s: %w", key, err)
	}
	slog.Warn("config_random_secret", "key", key)
	return b, nil
}
