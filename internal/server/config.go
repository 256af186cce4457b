package server

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Addr       string
	LogLevel   string
	LogConsole bool
	CacheSize  int
	RedisAddr  string // empty disables the Redis tier
	RedisPool  int
	CacheTTL   time.Duration
	MaxBody    int64
}

// ConfigFromEnv reads TABBOX_* variables, falling back to defaults for unset
// or unparsable values.
func ConfigFromEnv() Config {
	return Config{
		Addr:       getenv("TABBOX_ADDR", ":8090"),
		LogLevel:   getenv("TABBOX_LOG_LEVEL", "info"),
		LogConsole: getbool("TABBOX_LOG_CONSOLE", false),
		CacheSize:  getint("TABBOX_CACHE_SIZE", 256),
		RedisAddr:  strings.TrimSpace(os.Getenv("TABBOX_REDIS_ADDR")),
		RedisPool:  getint("TABBOX_REDIS_POOL", 16),
		CacheTTL:   getduration("TABBOX_CACHE_TTL", time.Hour),
		MaxBody:    int64(getint("TABBOX_MAX_BODY", 1<<20)),
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getint(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v := os.Getenv(k); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func getduration(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
