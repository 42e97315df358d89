package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr           string
	AllowedOrigins []string

	// ReapGrace is how long a room may sit empty before the registry
	// removes it.
	ReapGrace time.Duration
	// PaceDelay is the cosmetic delay between consecutive phase
	// broadcasts. Zero disables it.
	PaceDelay time.Duration

	SpotifyClientID     string
	SpotifyClientSecret string
}

// Load reads configuration from the environment, with an optional
// .env file for local development.
func Load() (Config, error) {
	godotenv.Load()

	cfg := Config{
		Addr:                getEnv("ADDR", ":5000"),
		SpotifyClientID:     os.Getenv("SPOTIFY_CLIENT_ID"),
		SpotifyClientSecret: os.Getenv("SPOTIFY_CLIENT_SECRET"),
	}

	origins, ok := os.LookupEnv("ALLOWED_ORIGINS")
	if !ok || origins == "" {
		return Config{}, fmt.Errorf("missing ALLOWED_ORIGINS")
	}
	cfg.AllowedOrigins = strings.Split(origins, ",")

	var err error
	if cfg.ReapGrace, err = getDuration("REAP_GRACE", 10*time.Minute); err != nil {
		return Config{}, err
	}
	if cfg.PaceDelay, err = getDuration("PACE_DELAY", 0); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// MusicEnabled reports whether catalog credentials were provided.
// Without them the music routes are not mounted.
func (c Config) MusicEnabled() bool {
	return c.SpotifyClientID != "" && c.SpotifyClientSecret != ""
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
