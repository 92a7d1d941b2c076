package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hostgraph.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
resolver:
  visibility_override: false
runtime:
  concurrency: 2
otel:
  endpoint: collector:4317
log:
  level: debug
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	want := Default()
	want.Resolver.VisibilityOverride = false
	want.Runtime.Concurrency = 2
	want.OTel.Endpoint = "collector:4317"
	want.Log.Level = "debug"
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}

	lvl, err := cfg.Log.ZapLevel()
	require.NoError(t, err)
	require.Equal(t, zapcore.DebugLevel, lvl)
}

func TestLoadEmptyFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("HOSTGRAPH_OTEL_ENDPOINT", "env:4317")
	t.Setenv("HOSTGRAPH_LOG_LEVEL", "warn")

	cfg, err := Load(writeConfig(t, "log:\n  level: debug\n"))
	require.NoError(t, err)
	require.Equal(t, "env:4317", cfg.OTel.Endpoint)
	require.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
		require.ErrorIs(t, err, os.ErrNotExist)
	})
	t.Run("unknown key", func(t *testing.T) {
		_, err := Load(writeConfig(t, "resolver:\n  negative_cache_size: 10\n"))
		require.Error(t, err)
	})
	t.Run("invalid values", func(t *testing.T) {
		_, err := Load(writeConfig(t, `
runtime:
  concurrency: 0
otel:
  endpoint: collector:4317
  service: ""
log:
  level: loud
`))
		require.ErrorIs(t, err, ErrInvalidConcurrency)
		require.ErrorIs(t, err, ErrInvalidLogLevel)
		require.ErrorIs(t, err, ErrMissingService)
	})
}
