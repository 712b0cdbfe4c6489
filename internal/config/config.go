package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env             string        // dev, prod
	APIBaseURL      string        // clinic API root, default http://localhost:8080
	APIToken        string        // bearer token attached to every request
	HTTPTimeout     time.Duration // per-request timeout for the shared client
	SettingsTTL     time.Duration // how long cached site settings stay fresh
	SandboxPort     string        // port the sandbox API listens on
	DigestInterval  time.Duration // how often the digest worker polls pending queues
	ShutdownTimeout time.Duration // graceful shutdown timeout
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Env:             getEnv("APP_ENV", "dev"),
		APIBaseURL:      getEnv("CLINIC_API_BASE_URL", "http://localhost:8080"),
		APIToken:        os.Getenv("CLINIC_API_TOKEN"),
		HTTPTimeout:     getDuration("HTTP_TIMEOUT", 10*time.Second),
		SettingsTTL:     getDuration("SETTINGS_TTL", 5*time.Minute),
		SandboxPort:     getEnv("SANDBOX_PORT", "8080"),
		DigestInterval:  getDuration("DIGEST_INTERVAL", time.Minute),
		ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
	}

	u, err := url.Parse(cfg.APIBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return Config{}, fmt.Errorf("invalid CLINIC_API_BASE_URL %q", cfg.APIBaseURL)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return time.Duration(n) * time.Second
		}
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		fmt.Fprintf(os.Stderr, "invalid duration for %s=%q, using default %s\n", key, v, def)
	}
	return def
}
