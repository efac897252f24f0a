// Package config handles configuration for the mock API, including
// defaults, environment overlay and command-line flags.
package config

import (
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Config holds runtime settings for the mock API.
//
// Fields:
//   - Addr: bind address of the HTTP listener.
//   - SecretKey: HMAC secret for signing JWTs (HS256). Do not use the default outside development.
//   - TokenTTL: lifetime of issued access tokens.
//   - DemoEmail / DemoPassword: credentials of the seeded customer; the seeded
//     admin logs in as AdminEmail with the same password.
//   - BcryptCost: cost of the stored password hashes.
//   - LoginInterval / LoginBurst: per-address login rate, one attempt per
//     LoginInterval with bursts of LoginBurst. Zero interval disables it.
type Config struct {
	Addr         string
	SecretKey    string
	TokenTTL     time.Duration
	DemoEmail    string
	DemoPassword string
	AdminEmail   string
	BcryptCost   int

	LoginInterval time.Duration
	LoginBurst    int

	LogLevel  string
	LogFormat string
}

// LoadDefaults populates Config with development defaults.
func (c *Config) LoadDefaults() {
	c.Addr = ":8080"
	c.SecretKey = "secretKey"
	c.TokenTTL = 2 * time.Hour
	c.DemoEmail = "demo@freightdesk.test"
	c.DemoPassword = "demo-pass-123"
	c.AdminEmail = "admin@freightdesk.test"
	c.BcryptCost = bcrypt.DefaultCost
	c.LoginInterval = 6 * time.Second
	c.LoginBurst = 5
	c.LogLevel = "info"
	c.LogFormat = "text"
}

func (c *Config) Validate() error {
	var errs []error
	if c.SecretKey == "" {
		errs = append(errs, errors.New("secret key is required"))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("token ttl must be positive"))
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		errs = append(errs, errors.New("bcrypt cost out of range"))
	}
	if c.LoginInterval < 0 || c.LoginBurst < 1 {
		errs = append(errs, errors.New("invalid login rate"))
	}
	return errors.Join(errs...)
}

// LoadConfig builds a Config by applying defaults, then the environment and
// finally command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
