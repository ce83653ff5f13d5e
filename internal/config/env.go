package config

import (
	"fmt"
	"strings"

	"github.com/mstoykov/envconfig"
	"gopkg.in/guregu/null.v3"
)

// Env holds the settings taken from TAP14_* environment variables. Only
// valid fields override the file.
type Env struct {
	ConfigFile  null.String `envconfig:"TAP14_CONFIG"`
	Format      null.String `envconfig:"TAP14_FORMAT"`
	MaxDepth    null.Int    `envconfig:"TAP14_MAX_DEPTH"`
	StrictPlans null.Bool   `envconfig:"TAP14_STRICT_PLANS"`
	DBPath      null.String `envconfig:"TAP14_DB_PATH"`
	LogLevel    null.String `envconfig:"TAP14_LOG_LEVEL"`
}

func FromEnv(lookup func(key string) (string, bool)) (Env, error) {
	var env Env
	if err := envconfig.Process("", &env, lookup); err != nil {
		return Env{}, fmt.Errorf("reading environment: %w", err)
	}
	return env, nil
}

// Apply overlays the set environment values onto c.
func (e Env) Apply(c Config) Config {
	if e.Format.Valid {
		c.Format = strings.ToLower(strings.TrimSpace(e.Format.String))
	}
	if e.MaxDepth.Valid {
		c.MaxDepth = int(e.MaxDepth.Int64)
	}
	if e.StrictPlans.Valid {
		c.StrictPlans = e.StrictPlans.Bool
	}
	if e.DBPath.Valid {
		c.DBPath = e.DBPath.String
	}
	if e.LogLevel.Valid {
		c.LogLevel = strings.ToLower(strings.TrimSpace(e.LogLevel.String))
	}
	return c
}
