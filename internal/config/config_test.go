package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, runtime.GOMAXPROCS(0), cfg.Workers)
	assert.Equal(t, DefaultFlagFormat, cfg.FlagFormat)
	assert.Equal(t, "artifacts", cfg.OutputDir)
	assert.Empty(t, cfg.Database)
	assert.Equal(t, 100*time.Millisecond, cfg.Watch.Debounce.Std())
	require.NoError(t, cfg.Validate())
}

func TestDefaultFlagFormat_MatchesCommonShapes(t *testing.T) {
	pattern := Default().FlagPattern()

	assert.Equal(t, "FLAG{abc}", pattern.FindString("text FLAG{abc} text"))
	assert.Equal(t, "picoCTF{x_1}", pattern.FindString("picoCTF{x_1}"))
	assert.Empty(t, pattern.FindString("no braces here"))
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
workers: 4
flag_format: 'CTF\{[a-z]+\}'
output_dir: /tmp/out
database: /tmp/spyglass.db
timeout: 30s
metrics_addr: ":9090"
units:
  include: [flag_scan, base64_decode]
  exclude: [base64_decode]
  priorities:
    flag_scan: 5
watch:
  debounce: 250ms
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, `CTF\{[a-z]+\}`, cfg.FlagFormat)
	assert.Equal(t, "/tmp/out", cfg.OutputDir)
	assert.Equal(t, "/tmp/spyglass.db", cfg.Database)
	assert.Equal(t, 30*time.Second, cfg.Timeout.Std())
	assert.Equal(t, ":9090", cfg.MetricsAddr)
	assert.Equal(t, []string{"flag_scan", "base64_decode"}, cfg.Units.Include)
	assert.Equal(t, []string{"base64_decode"}, cfg.Units.Exclude)
	assert.Equal(t, map[string]int{"flag_scan": 5}, cfg.Units.Priorities)
	assert.Equal(t, 250*time.Millisecond, cfg.Watch.Debounce.Std())
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := writeConfig(t, "workers: 2\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, DefaultFlagFormat, cfg.FlagFormat)
	assert.Equal(t, "artifacts", cfg.OutputDir)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := writeConfig(t, "workers: [not an int\n")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestDuration_IntegerNanoseconds(t *testing.T) {
	path := writeConfig(t, "timeout: 1000000000\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, time.Second, cfg.Timeout.Std())
}

func TestDuration_InvalidString(t *testing.T) {
	path := writeConfig(t, "timeout: quickly\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid duration")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errSub string
	}{
		{"zero workers", func(c *Config) { c.Workers = 0 }, "workers"},
		{"empty flag format", func(c *Config) { c.FlagFormat = "" }, "flag_format"},
		{"bad flag regexp", func(c *Config) { c.FlagFormat = "[unclosed" }, "flag_format"},
		{"empty output dir", func(c *Config) { c.OutputDir = "" }, "output_dir"},
		{"negative timeout", func(c *Config) { c.Timeout = Duration(-time.Second) }, "timeout"},
		{"negative debounce", func(c *Config) { c.Watch.Debounce = Duration(-time.Millisecond) }, "debounce"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSub)
		})
	}
}
