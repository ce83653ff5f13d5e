package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/afero"
)

// DefaultFile is read from the working directory when no path is given.
const DefaultFile = "tap14.toml"

// Config holds the settings shared by every command.
type Config struct {
	Format      string
	Indent      bool
	MaxDepth    int
	StrictPlans bool
	DBPath      string
	LogLevel    string
}

func Default() Config {
	return Config{
		Format:   "json",
		MaxDepth: 64,
		DBPath:   ".tap14/runs.db",
		LogLevel: "info",
	}
}

type fileConfig struct {
	Format      string `toml:"format"`
	Indent      bool   `toml:"indent"`
	MaxDepth    int    `toml:"max_depth"`
	StrictPlans bool   `toml:"strict_plans"`
	DBPath      string `toml:"db_path"`
	LogLevel    string `toml:"log_level"`
}

// Load reads path from fsys over the defaults. A missing file is only an
// error when the caller named it explicitly.
func Load(fsys afero.Fs, path string, explicit bool) (Config, error) {
	cfg := Default()

	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("reading config %s: %w", path, err)
	}

	var raw fileConfig
	meta, err := toml.Decode(string(data), &raw)
	if err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("load config %s: unknown key %q", path, undecoded[0].String())
	}

	if meta.IsDefined("format") {
		cfg.Format = strings.ToLower(strings.TrimSpace(raw.Format))
	}
	if meta.IsDefined("indent") {
		cfg.Indent = raw.Indent
	}
	if meta.IsDefined("max_depth") {
		cfg.MaxDepth = raw.MaxDepth
	}
	if meta.IsDefined("strict_plans") {
		cfg.StrictPlans = raw.StrictPlans
	}
	if meta.IsDefined("db_path") {
		cfg.DBPath = strings.TrimSpace(raw.DBPath)
	}
	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.ToLower(strings.TrimSpace(raw.LogLevel))
	}

	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Format {
	case "json", "yaml":
	default:
		return fmt.Errorf("invalid format %q: want json or yaml", c.Format)
	}
	if c.MaxDepth < 1 {
		return fmt.Errorf("invalid max_depth %d: must be at least 1", c.MaxDepth)
	}
	if c.DBPath == "" {
		return errors.New("db_path must not be empty")
	}
	return nil
}

// Save writes c to path as TOML.
func Save(fsys afero.Fs, path string, c Config) error {
	var buf bytes.Buffer
	err := toml.NewEncoder(&buf).Encode(fileConfig{
		Format:      c.Format,
		Indent:      c.Indent,
		MaxDepth:    c.MaxDepth,
		StrictPlans: c.StrictPlans,
		DBPath:      c.DBPath,
		LogLevel:    c.LogLevel,
	})
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := afero.WriteFile(fsys, path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing config %s: %w", path, err)
	}
	return nil
}
