// Package config loads the talent-manager configuration from a YAML file, TALENT_ prefixed
// environment variables and command line flags.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jonathan/talent-manager/internal/scoring"
	"github.com/jonathan/talent-manager/internal/server/ratelimit"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// AppName is used for the default config file name and the environment prefix.
const AppName = "talent"

// Config is the full service configuration.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Log        LogConfig        `mapstructure:"log"`
	Scoring    ScoringConfig    `mapstructure:"scoring"`
	Onboarding OnboardingConfig `mapstructure:"onboarding"`
	Seed       SeedConfig       `mapstructure:"seed"`
	Auth       AuthConfig       `mapstructure:"auth"`
	RateLimit  ratelimit.Config `mapstructure:"rate_limit"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig points at the PostgreSQL database.
type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

// LogConfig selects the zap encoder and level.
type LogConfig struct {
	JSON  bool `mapstructure:"json"`
	Debug bool `mapstructure:"debug"`
}

// ScoringConfig selects when fit scores are computed.
type ScoringConfig struct {
	Mode string `mapstructure:"mode"`
}

// OnboardingConfig holds the optional checklist template override.
type OnboardingConfig struct {
	ChecklistTemplate string `mapstructure:"checklist_template"`
}

// SeedConfig holds the fixture file used by the seed command. Empty means the embedded demo data.
type SeedConfig struct {
	Fixtures string `mapstructure:"fixtures"`
}

// AuthConfig holds token and password hashing settings.
type AuthConfig struct {
	JWTSecret          string `mapstructure:"jwt_secret"`
	JWTExpirationHours int    `mapstructure:"jwt_expiration_hours"`
	BcryptCost         int    `mapstructure:"bcrypt_cost"`
	PasswordPepper     string `mapstructure:"password_pepper"`
}

// legacyEnv maps config keys to the unprefixed environment variables deployments already set.
var legacyEnv = map[string]string{
	"database.url":                "DATABASE_URL",
	"auth.jwt_secret":             "JWT_SECRET",
	"auth.jwt_expiration_hours":   "JWT_EXPIRATION_HOURS",
	"auth.bcrypt_cost":            "BCRYPT_COST",
	"auth.password_pepper":        "PASSWORD_PEPPER",
	"rate_limit.enabled":          "RATE_LIMIT_ENABLED",
	"rate_limit.default_limit":    "RATE_LIMIT_DEFAULT_LIMIT",
	"rate_limit.default_window":   "RATE_LIMIT_DEFAULT_WINDOW",
	"rate_limit.cleanup_interval": "RATE_LIMIT_CLEANUP_INTERVAL",
	"rate_limit.whitelist":        "RATE_LIMIT_WHITELIST",
	"rate_limit.blacklist":        "RATE_LIMIT_BLACKLIST",
}

// flagKeys maps config keys to the command line flags that override them.
var flagKeys = map[string]string{
	"log.json":     "json",
	"log.debug":    "debug",
	"server.port":  "port",
	"database.url": "database-url",
	"scoring.mode": "scoring-mode",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("database.url", "")
	v.SetDefault("log.json", false)
	v.SetDefault("log.debug", false)
	v.SetDefault("scoring.mode", string(scoring.ModeSnapshot))
	v.SetDefault("onboarding.checklist_template", "")
	v.SetDefault("seed.fixtures", "")
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.jwt_expiration_hours", 24)
	v.SetDefault("auth.bcrypt_cost", 12)
	v.SetDefault("auth.password_pepper", "")
	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.default_limit", 1000)
	v.SetDefault("rate_limit.default_window", time.Minute)
	v.SetDefault("rate_limit.cleanup_interval", 5*time.Minute)
	v.SetDefault("rate_limit.whitelist", []string{})
	v.SetDefault("rate_limit.blacklist", []string{})
}

// Load reads the configuration. An explicit path must exist; without one, talent.yaml in the
// working directory is read when present. Environment variables override the file and any
// changed flag in flags overrides both. flags may be nil.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(strings.ToUpper(AppName))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range legacyEnv {
		prefixed := strings.ToUpper(AppName + "_" + strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	if flags != nil {
		for key, name := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag --%s: %w", name, err)
				}
			}
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	} else {
		v.AddConfigPath(".")
		v.SetConfigName(AppName)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges. Secrets required only by some commands are checked when the
// matching JWT or Password config is built.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config error: 'server.port' out of range: %d", c.Server.Port)
	}
	if _, err := scoring.ParseMode(c.Scoring.Mode); err != nil {
		return fmt.Errorf("config error: 'scoring.mode': %w", err)
	}
	if c.RateLimit.Enabled && c.RateLimit.DefaultLimit < 0 {
		return fmt.Errorf("config error: 'rate_limit.default_limit' must be non-negative")
	}
	return nil
}

// ScoringMode returns the parsed scoring mode. Validate has already rejected unknown values.
func (c *Config) ScoringMode() scoring.Mode {
	mode, err := scoring.ParseMode(c.Scoring.Mode)
	if err != nil {
		return scoring.ModeSnapshot
	}
	return mode
}

// RequireDatabase returns an error when no database URL is configured.
func (c *Config) RequireDatabase() error {
	if c.Database.URL == "" {
		return fmt.Errorf("database URL is required (set database.url, TALENT_DATABASE_URL or DATABASE_URL)")
	}
	return nil
}
