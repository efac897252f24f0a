package config

import (
	"os"
	"strconv"
	"time"

	"github.com/dmitrijs2005/freightdesk/internal/flagx"
	"github.com/joho/godotenv"
)

// parseEnv overlays cfg with MOCKAPI_* environment variables, after loading
// the dotenv file named by -e/-env if there is one.
func parseEnv(cfg *Config) {
	if path := flagx.EnvFileFlag(); path != "" {
		if err := godotenv.Load(path); err != nil {
			panic(err)
		}
	}

	if v := os.Getenv("MOCKAPI_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv("MOCKAPI_SECRET_KEY"); v != "" {
		cfg.SecretKey = v
	}
	if v := os.Getenv("MOCKAPI_TOKEN_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.TokenTTL = d
		}
	}
	if v := os.Getenv("MOCKAPI_DEMO_EMAIL"); v != "" {
		cfg.DemoEmail = v
	}
	if v := os.Getenv("MOCKAPI_DEMO_PASSWORD"); v != "" {
		cfg.DemoPassword = v
	}
	if v := os.Getenv("MOCKAPI_BCRYPT_COST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.BcryptCost = n
		}
	}
	if v := os.Getenv("MOCKAPI_LOGIN_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.LoginInterval = d
		}
	}
	if v := os.Getenv("MOCKAPI_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
}
