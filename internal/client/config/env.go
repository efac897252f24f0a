package config

import (
	"os"
	"strconv"
	"time"

	"github.com/dmitrijs2005/freightdesk/internal/flagx"
	"github.com/joho/godotenv"
)

// parseEnv overlays cfg with FREIGHT_* environment variables. A dotenv file
// named by -e/-env, or ".env" in the working directory, is loaded first;
// variables already set in the process environment are not overridden.
//
// Malformed numeric values are ignored and the previous value is kept.
func parseEnv(cfg *Config) {
	if path := flagx.EnvFileFlag(); path != "" {
		if err := godotenv.Load(path); err != nil {
			panic(err)
		}
	} else {
		_ = godotenv.Load()
	}

	if v := os.Getenv("FREIGHT_API_URL"); v != "" {
		cfg.APIURL = v
	}
	if v := os.Getenv("FREIGHT_DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if n, ok := envInt("FREIGHT_SESSION_TIMEOUT"); ok {
		cfg.SessionTimeout = time.Duration(n) * time.Minute
	}
	if n, ok := envInt("FREIGHT_REMEMBER_ME_DAYS"); ok {
		cfg.RememberMeDuration = time.Duration(n) * 24 * time.Hour
	}
	if n, ok := envInt("FREIGHT_WARNING_SECONDS"); ok {
		cfg.WarningLead = time.Duration(n) * time.Second
	}
	if v := os.Getenv("FREIGHT_ENABLE_SESSION_TIMEOUT"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.EnableSessionTimeout = b
		}
	}
	if v := os.Getenv("FREIGHT_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("SENTRY_DSN"); v != "" {
		cfg.SentryDSN = v
	}
	if v := os.Getenv("FREIGHT_ENV"); v != "" {
		cfg.Environment = v
	}
}

func envInt(key string) (int, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}
