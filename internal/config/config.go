// Package config loads process settings from the environment, with optional
// .env file support. Flags in cmd/tutube override whatever is loaded here.
package config

import (
	"os"
	"strconv"
	"time"
)

// DefaultBind matches the historical default port.
const DefaultBind = "127.0.0.1:1994"

type Config struct {
	CacheDir string // audio cache root; positional CLI arg wins
	Bind     string // host:port to listen on

	YTDLPBinary string // extractor binary; "" = yt-dlp on PATH

	// Resolve rate limiting against the upstream provider.
	ResolvePerMinute int
	ResolveBurst     int

	MaxConns     int           // concurrent connection cap; 0 = unlimited
	FetchTimeout time.Duration // per-materialization bound; 0 = none

	HistoryFile string // sqlite fetch history; "" = <CacheDir>/history.db
}

// Load reads config from the environment. Call LoadEnvFile(".env") first to
// pick up a .env file.
func Load() *Config {
	c := &Config{
		CacheDir:         os.Getenv("TUTUBE_CACHE"),
		Bind:             getEnv("TUTUBE_BIND", DefaultBind),
		YTDLPBinary:      getEnv("TUTUBE_YTDLP", "yt-dlp"),
		ResolvePerMinute: getEnvInt("TUTUBE_RESOLVE_PER_MINUTE", 60),
		ResolveBurst:     getEnvInt("TUTUBE_RESOLVE_BURST", 10),
		MaxConns:         getEnvInt("TUTUBE_MAX_CONNS", 64),
		FetchTimeout:     getEnvDuration("TUTUBE_FETCH_TIMEOUT", 0),
		HistoryFile:      os.Getenv("TUTUBE_HISTORY_FILE"),
	}
	if c.ResolvePerMinute <= 0 {
		c.ResolvePerMinute = 60
	}
	if c.ResolveBurst <= 0 {
		c.ResolveBurst = 1
	}
	return c
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
