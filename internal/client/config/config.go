package config

import (
	"errors"
	"fmt"
	"time"
)

// Config holds runtime settings for the freightdesk client.
//
// SessionTimeout is the lifetime of a non-remembered token and the idle
// window of its session; RememberMeDuration plays the same role for
// remembered logins. WarningLead is how long before the idle timeout the
// countdown prompt appears and must be strictly shorter than SessionTimeout.
type Config struct {
	APIURL               string
	DBPath               string
	SessionTimeout       time.Duration
	RememberMeDuration   time.Duration
	WarningLead          time.Duration
	ActivityThrottle     time.Duration
	EnableSessionTimeout bool
	RequestTimeout       time.Duration
	LogLevel             string
	LogFormat            string
	SentryDSN            string
	Environment          string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIURL = "http://127.0.0.1:8080/api"
	c.DBPath = "freightdesk.db"
	c.SessionTimeout = 2 * time.Hour
	c.RememberMeDuration = 14 * 24 * time.Hour
	c.WarningLead = 30 * time.Second
	c.ActivityThrottle = time.Second
	c.EnableSessionTimeout = true
	c.RequestTimeout = 15 * time.Second
	c.LogLevel = "info"
	c.LogFormat = "text"
	c.Environment = "development"
}

// Validate reports settings the client cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.APIURL == "" {
		errs = append(errs, errors.New("api url is required"))
	}
	if c.SessionTimeout <= 0 || c.RememberMeDuration <= 0 {
		errs = append(errs, errors.New("session durations must be positive"))
	}
	if c.WarningLead <= 0 || c.WarningLead >= min(c.SessionTimeout, c.RememberMeDuration) {
		errs = append(errs, fmt.Errorf("warning lead %s must be positive and shorter than session timeout %s", c.WarningLead, c.SessionTimeout))
	}
	return errors.Join(errs...)
}

// SessionDuration returns the token lifetime and idle window for a login
// with the given remember-me choice.
func (c *Config) SessionDuration(rememberMe bool) time.Duration {
	if rememberMe {
		return c.RememberMeDuration
	}
	return c.SessionTimeout
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// the environment, a config file (if given) and command-line flags. Later
// sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseFile(cfg)
	parseFlags(cfg)
	return cfg
}
