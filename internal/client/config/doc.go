// Package config loads runtime configuration for the freightdesk client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Environment variables, optionally loaded from a dotenv file given with
//     -e/-env (or ./.env when present).
//  3. Optional config file selected with -c or -config. A ".toml" extension
//     selects TOML, anything else is read as JSON.
//  4. Command-line flags, which override everything above.
//
// Supported flags
//
//	-a string   base URL of the remote API
//	-d string   path of the local SQLite store
//	-t int      session timeout for non-remembered logins (minutes)
//	-w int      warning lead before the idle timeout (seconds)
//	-l string   log level
//
// Environment
//
//	FREIGHT_API_URL, FREIGHT_DB_PATH, FREIGHT_SESSION_TIMEOUT (minutes),
//	FREIGHT_REMEMBER_ME_DAYS, FREIGHT_WARNING_SECONDS,
//	FREIGHT_ENABLE_SESSION_TIMEOUT, FREIGHT_LOG_LEVEL, SENTRY_DSN, FREIGHT_ENV
//
// # Config file
//
// Durations are strings such as "2h" or integer nanoseconds:
//
//	{
//	  "api_url": "https://freight.example.com/api",
//	  "session_timeout": "2h",
//	  "remember_me_duration": "336h",
//	  "warning_lead": "30s"
//	}
package config
