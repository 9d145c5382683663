package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/RowanDark/payloadforge/internal/env"
	"github.com/RowanDark/payloadforge/internal/transform"
)

const (
	// LocalFile is read from the working directory when no explicit path is given.
	LocalFile = "payloadforge.yml"
	// DotEnvFile supplies environment defaults from the working directory.
	DotEnvFile = ".env"

	homeDir  = ".payloadforge"
	homeFile = "config.toml"
)

// Config captures the payloadforge configuration resolved from defaults,
// optional files, and environment overrides.
type Config struct {
	ChainLimit   int       `koanf:"chain_limit" toml:"chain_limit"`
	ChainWidth   int       `koanf:"chain_width" toml:"chain_width"`
	PayloadField string    `koanf:"payload_field" toml:"payload_field"`
	OutputDir    string    `koanf:"output_dir" toml:"output_dir"`
	Workers      int       `koanf:"workers" toml:"workers"`
	Seed         int64     `koanf:"seed" toml:"seed"`
	JournalPath  string    `koanf:"journal_path" toml:"journal_path"`
	MetricsFile  string    `koanf:"metrics_file" toml:"metrics_file"`
	Log          LogConfig `koanf:"log" toml:"log"`
}

// LogConfig controls CLI diagnostics.
type LogConfig struct {
	Level  string `koanf:"level" toml:"level"`
	Format string `koanf:"format" toml:"format"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		ChainLimit:   transform.DefaultChainLimit,
		ChainWidth:   transform.DefaultChainWidth,
		PayloadField: "payload",
		OutputDir:    "tests",
		Workers:      4,
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load resolves the configuration. Sources are applied in this order, later
// ones winning:
//  1. ~/.payloadforge/config.toml (TOML)
//  2. path, or ./payloadforge.yml when path is empty (YAML)
//  3. ./.env
//  4. PAYLOADFORGE_* environment variables (PFORGE_* accepted with a warning)
//
// An explicit path must exist; the implicit files are optional.
func Load(path string) (Config, error) {
	cfg := Default()

	if err := loadHomeConfig(&cfg); err != nil {
		return Config{}, err
	}
	if err := loadLocalConfig(&cfg, path); err != nil {
		return Config{}, err
	}
	dotenv, err := readDotEnv()
	if err != nil {
		return Config{}, err
	}
	if err := applyEnvOverrides(&cfg, dotenv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports settings that cannot drive a run.
func (c Config) Validate() error {
	if c.ChainLimit < 0 || c.ChainWidth < 0 {
		return fmt.Errorf("chain_limit and chain_width must be non-negative")
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if strings.TrimSpace(c.PayloadField) == "" {
		return fmt.Errorf("payload_field cannot be empty")
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	switch c.Log.Format {
	case "text", "json", "logfmt":
	default:
		return fmt.Errorf("log.format must be text, json or logfmt, got %q", c.Log.Format)
	}
	return nil
}

func loadHomeConfig(cfg *Config) error {
	home, err := os.UserHomeDir()
	if err != nil {
		// No home directory means no home config.
		return nil
	}

	path := filepath.Join(home, homeDir, homeFile)
	var fc fileConfig
	if _, err := toml.DecodeFile(path, &fc); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	applyFileConfig(cfg, fc)
	return nil
}

func loadLocalConfig(cfg *Config, path string) error {
	explicit := path != ""
	if !explicit {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("determine working directory: %w", err)
		}
		path = filepath.Join(wd, LocalFile)
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config %s: %w", path, err)
	}
	var fc fileConfig
	if err := k.Unmarshal("", &fc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	applyFileConfig(cfg, fc)
	return nil
}

func readDotEnv() (map[string]string, error) {
	values, err := godotenv.Read(DotEnvFile)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("read %s: %w", DotEnvFile, err)
	}
	return values, nil
}

// fileConfig distinguishes keys a file sets from keys it leaves alone.
type fileConfig struct {
	ChainLimit   *int           `koanf:"chain_limit" toml:"chain_limit"`
	ChainWidth   *int           `koanf:"chain_width" toml:"chain_width"`
	PayloadField *string        `koanf:"payload_field" toml:"payload_field"`
	OutputDir    *string        `koanf:"output_dir" toml:"output_dir"`
	Workers      *int           `koanf:"workers" toml:"workers"`
	Seed         *int64         `koanf:"seed" toml:"seed"`
	JournalPath  *string        `koanf:"journal_path" toml:"journal_path"`
	MetricsFile  *string        `koanf:"metrics_file" toml:"metrics_file"`
	Log          *fileLogConfig `koanf:"log" toml:"log"`
}

type fileLogConfig struct {
	Level  *string `koanf:"level" toml:"level"`
	Format *string `koanf:"format" toml:"format"`
}

func applyFileConfig(cfg *Config, fc fileConfig) {
	if fc.ChainLimit != nil {
		cfg.ChainLimit = *fc.ChainLimit
	}
	if fc.ChainWidth != nil {
		cfg.ChainWidth = *fc.ChainWidth
	}
	if fc.PayloadField != nil {
		cfg.PayloadField = strings.TrimSpace(*fc.PayloadField)
	}
	if fc.OutputDir != nil {
		cfg.OutputDir = strings.TrimSpace(*fc.OutputDir)
	}
	if fc.Workers != nil {
		cfg.Workers = *fc.Workers
	}
	if fc.Seed != nil {
		cfg.Seed = *fc.Seed
	}
	if fc.JournalPath != nil {
		cfg.JournalPath = strings.TrimSpace(*fc.JournalPath)
	}
	if fc.MetricsFile != nil {
		cfg.MetricsFile = strings.TrimSpace(*fc.MetricsFile)
	}
	if fc.Log != nil {
		if fc.Log.Level != nil {
			cfg.Log.Level = strings.ToLower(strings.TrimSpace(*fc.Log.Level))
		}
		if fc.Log.Format != nil {
			cfg.Log.Format = strings.ToLower(strings.TrimSpace(*fc.Log.Format))
		}
	}
}

// applyEnvOverrides reads each key from the process environment first and from
// the .env values second.
func applyEnvOverrides(cfg *Config, dotenv map[string]string) error {
	lookup := func(name string) (string, bool) {
		if v, ok := env.Get(name); ok {
			return v, true
		}
		for _, key := range []string{env.Prefix + name, env.LegacyPrefix + name} {
			if v := strings.TrimSpace(dotenv[key]); v != "" {
				return v, true
			}
		}
		return "", false
	}

	ints := []struct {
		name string
		dst  *int
	}{
		{"CHAIN_LIMIT", &cfg.ChainLimit},
		{"CHAIN_WIDTH", &cfg.ChainWidth},
		{"WORKERS", &cfg.Workers},
	}
	for _, item := range ints {
		if val, ok := lookup(item.name); ok {
			parsed, err := strconv.Atoi(val)
			if err != nil {
				return fmt.Errorf("%s%s: %w", env.Prefix, item.name, err)
			}
			*item.dst = parsed
		}
	}
	if val, ok := lookup("SEED"); ok {
		parsed, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			return fmt.Errorf("%sSEED: %w", env.Prefix, err)
		}
		cfg.Seed = parsed
	}

	strs := []struct {
		name string
		dst  *string
	}{
		{"PAYLOAD_FIELD", &cfg.PayloadField},
		{"OUTPUT_DIR", &cfg.OutputDir},
		{"JOURNAL_PATH", &cfg.JournalPath},
		{"METRICS_FILE", &cfg.MetricsFile},
	}
	for _, item := range strs {
		if val, ok := lookup(item.name); ok {
			*item.dst = val
		}
	}
	if val, ok := lookup("LOG_LEVEL"); ok {
		cfg.Log.Level = strings.ToLower(val)
	}
	if val, ok := lookup("LOG_FORMAT"); ok {
		cfg.Log.Format = strings.ToLower(val)
	}
	return nil
}
