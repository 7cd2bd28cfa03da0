package shared

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Dataset source kinds.
const (
	SourceCSV   = "csv"
	SourceURL   = "url"
	SourceMySQL = "mysql"
)

type Config struct {
	AppEnv         string
	LogLevel       string
	HTTPAddr       string
	MetricsAddr    string
	DataSource     string
	DataPath       string
	DataURL        string
	DataToken      string
	MySQLDSN       string
	RedisAddr      string
	RedisDB        int
	RedisPass      string
	CacheTTL       time.Duration
	ScoringConfig  string
	WatchData      bool
	RateLimitRPS   float64
	RateLimitBurst int
	RequestTimeout time.Duration
}

// Load reads configuration from the environment. A .env file in the
// working directory is applied first; real environment variables win.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg(".env could not be parsed")
	}

	c := Config{
		AppEnv:         env("APP_ENV", "prod"),
		LogLevel:       env("LOG_LEVEL", "info"),
		HTTPAddr:       env("HTTP_ADDR", ":8080"),
		MetricsAddr:    env("METRICS_ADDR", ""),
		DataSource:     strings.ToLower(env("DATA_SOURCE", SourceCSV)),
		DataPath:       env("DATA_PATH", "data/suppliers.csv"),
		DataURL:        env("DATA_URL", ""),
		DataToken:      env("DATA_TOKEN", ""),
		MySQLDSN:       env("MYSQL_DSN", "root:root@tcp(localhost:3306)/suppliers?parseTime=true&charset=utf8mb4&loc=UTC"),
		RedisAddr:      env("REDIS_ADDR", ""),
		RedisPass:      env("REDIS_PASSWORD", ""),
		RedisDB:        atoi("REDIS_DB", 0),
		CacheTTL:       time.Duration(atoi("CACHE_TTL_SECONDS", 300)) * time.Second,
		ScoringConfig:  env("SCORING_CONFIG", ""),
		WatchData:      boolean("WATCH_DATA", true),
		RateLimitRPS:   float("RATE_LIMIT_RPS", 0),
		RateLimitBurst: atoi("RATE_LIMIT_BURST", 0),
		RequestTimeout: time.Duration(atoi("REQUEST_TIMEOUT_SECONDS", 15)) * time.Second,
	}
	if c.RedisAddr == "" {
		log.Info().Msg("REDIS_ADDR is empty; query cache disabled")
	}
	return c
}

// Validate reports settings that make startup impossible.
func (c Config) Validate() error {
	switch c.DataSource {
	case SourceCSV:
		if c.DataPath == "" {
			return fmt.Errorf("DATA_PATH is required for the csv source")
		}
	case SourceURL:
		if c.DataURL == "" {
			return fmt.Errorf("DATA_URL is required for the url source")
		}
	case SourceMySQL:
		if c.MySQLDSN == "" {
			return fmt.Errorf("MYSQL_DSN is required for the mysql source")
		}
	default:
		return fmt.Errorf("unknown DATA_SOURCE %q (want csv, url or mysql)", c.DataSource)
	}
	if c.RateLimitRPS < 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must not be negative")
	}
	return nil
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func atoi(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		log.Warn().Str("key", k).Str("value", v).Msg("not an integer; using default")
	}
	return def
}

func float(k string, def float64) float64 {
	if v := os.Getenv(k); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
		log.Warn().Str("key", k).Str("value", v).Msg("not a number; using default")
	}
	return def
}

func boolean(k string, def bool) bool {
	if v := os.Getenv(k); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
		log.Warn().Str("key", k).Str("value", v).Msg("not a boolean; using default")
	}
	return def
}
