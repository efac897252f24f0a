package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/dmitrijs2005/freightdesk/internal/flagx"
	"github.com/dmitrijs2005/freightdesk/internal/timex"
)

// FileConfig is the DTO decoded from a JSON or TOML config file. Pointer
// fields distinguish "absent" from a zero value, so a file only overrides the
// settings it names.
type FileConfig struct {
	APIURL               *string         `json:"api_url" toml:"api_url"`
	DBPath               *string         `json:"db_path" toml:"db_path"`
	SessionTimeout       *timex.Duration `json:"session_timeout" toml:"session_timeout"`
	RememberMeDuration   *timex.Duration `json:"remember_me_duration" toml:"remember_me_duration"`
	WarningLead          *timex.Duration `json:"warning_lead" toml:"warning_lead"`
	ActivityThrottle     *timex.Duration `json:"activity_throttle" toml:"activity_throttle"`
	EnableSessionTimeout *bool           `json:"enable_session_timeout" toml:"enable_session_timeout"`
	RequestTimeout       *timex.Duration `json:"request_timeout" toml:"request_timeout"`
	LogLevel             *string         `json:"log_level" toml:"log_level"`
	LogFormat            *string         `json:"log_format" toml:"log_format"`
	SentryDSN            *string         `json:"sentry_dsn" toml:"sentry_dsn"`
	Environment          *string         `json:"environment" toml:"environment"`
}

// parseFile overlays cfg with the file named by -c/-config. Files ending in
// .toml are decoded as TOML, everything else as JSON. Read or decode errors
// panic; the caller decides whether to recover.
func parseFile(cfg *Config) {
	path := flagx.ConfigFileFlag()
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var fc FileConfig
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.Decode(string(data), &fc); err != nil {
			panic(err)
		}
	} else if err := json.Unmarshal(data, &fc); err != nil {
		panic(err)
	}

	fc.apply(cfg)
}

func (fc *FileConfig) apply(cfg *Config) {
	setString(&cfg.APIURL, fc.APIURL)
	setString(&cfg.DBPath, fc.DBPath)
	setDuration(&cfg.SessionTimeout, fc.SessionTimeout)
	setDuration(&cfg.RememberMeDuration, fc.RememberMeDuration)
	setDuration(&cfg.WarningLead, fc.WarningLead)
	setDuration(&cfg.ActivityThrottle, fc.ActivityThrottle)
	setDuration(&cfg.RequestTimeout, fc.RequestTimeout)
	setString(&cfg.LogLevel, fc.LogLevel)
	setString(&cfg.LogFormat, fc.LogFormat)
	setString(&cfg.SentryDSN, fc.SentryDSN)
	setString(&cfg.Environment, fc.Environment)
	if fc.EnableSessionTimeout != nil {
		cfg.EnableSessionTimeout = *fc.EnableSessionTimeout
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setDuration(dst *time.Duration, v *timex.Duration) {
	if v != nil {
		*dst = v.Duration
	}
}
