package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RowanDark/payloadforge/internal/env"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// isolate points HOME and the working directory at empty temp directories.
func isolate(t *testing.T) (home, work string) {
	t.Helper()
	root := t.TempDir()
	home = filepath.Join(root, "home")
	work = filepath.Join(root, "work")
	require.NoError(t, os.MkdirAll(home, 0o755))
	require.NoError(t, os.MkdirAll(work, 0o755))
	t.Setenv("HOME", home)
	t.Chdir(work)
	env.ResetWarningsForTesting()
	t.Cleanup(env.SetWarnLoggerForTesting(func(string, ...any) {}))
	return home, work
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadPrecedence(t *testing.T) {
	home, work := isolate(t)

	writeFile(t, filepath.Join(home, ".payloadforge", "config.toml"), `
output_dir = "/from-home"
workers = 2
chain_limit = 10

[log]
level = "debug"
`)
	writeFile(t, filepath.Join(work, LocalFile), `
workers: 6
payload_field: query
log:
  format: json
`)
	writeFile(t, filepath.Join(work, DotEnvFile), `
PAYLOADFORGE_SEED=99
PAYLOADFORGE_WORKERS=7
`)
	t.Setenv("PAYLOADFORGE_WORKERS", "8")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "/from-home", cfg.OutputDir, "home TOML applies when nothing overrides it")
	assert.Equal(t, 10, cfg.ChainLimit)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "query", cfg.PayloadField, "local YAML overrides defaults")
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, int64(99), cfg.Seed, ".env supplies unset keys")
	assert.Equal(t, 8, cfg.Workers, "process environment beats .env and files")
	assert.Equal(t, Default().ChainWidth, cfg.ChainWidth)
}

func TestLoadExplicitPath(t *testing.T) {
	_, work := isolate(t)

	writeFile(t, filepath.Join(work, LocalFile), "output_dir: ignored\n")
	custom := filepath.Join(t.TempDir(), "custom.yml")
	writeFile(t, custom, "output_dir: out/variants\nmetrics_file: metrics.prom\n")

	cfg, err := Load(custom)
	require.NoError(t, err)
	assert.Equal(t, "out/variants", cfg.OutputDir)
	assert.Equal(t, "metrics.prom", cfg.MetricsFile)
}

func TestLoadExplicitPathMissing(t *testing.T) {
	isolate(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	require.Error(t, err)
}

func TestLoadLegacyEnvironment(t *testing.T) {
	isolate(t)

	var warnings []string
	t.Cleanup(env.SetWarnLoggerForTesting(func(format string, args ...any) {
		warnings = append(warnings, format)
	}))
	t.Setenv("PFORGE_OUTPUT_DIR", "/legacy")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/legacy", cfg.OutputDir)
	assert.Len(t, warnings, 1)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"non-numeric workers", "PAYLOADFORGE_WORKERS", "many"},
		{"zero workers", "PAYLOADFORGE_WORKERS", "0"},
		{"negative chain width", "PAYLOADFORGE_CHAIN_WIDTH", "-1"},
		{"bad seed", "PAYLOADFORGE_SEED", "1.5"},
		{"unknown log level", "PAYLOADFORGE_LOG_LEVEL", "loud"},
		{"unknown log format", "PAYLOADFORGE_LOG_FORMAT", "xml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			t.Setenv(tt.key, tt.val)

			_, err := Load("")
			assert.Error(t, err)
		})
	}
}

func TestLoadMalformedHomeConfig(t *testing.T) {
	home, _ := isolate(t)
	writeFile(t, filepath.Join(home, ".payloadforge", "config.toml"), "workers = [")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config.toml")
}
