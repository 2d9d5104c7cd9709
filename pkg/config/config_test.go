package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "meterbridge.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadValidConfig(t *testing.T) {
	path := writeConfig(t, `
instrumentation_key: ikey-1
endpoints:
  - url: https://dc.example.com/v2/track
  - url: https://backup.example.com/v2/track
    use_auth: true
logging:
  level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "ikey-1", cfg.InstrumentationKey)
	require.Len(t, cfg.Endpoints, 2)
	assert.False(t, cfg.Endpoints[0].UseAuth)
	assert.True(t, cfg.Endpoints[1].UseAuth)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadDefaultsLogLevel(t *testing.T) {
	path := writeConfig(t, `
instrumentation_key: ikey-1
endpoints:
  - url: https://dc.example.com/v2/track
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
instrumentation_key: from-file
endpoints:
  - url: https://dc.example.com/v2/track
`)
	t.Setenv("METERBRIDGE_IKEY", "from-env")
	t.Setenv("METERBRIDGE_ENDPOINT", "https://env.example.com/v2/track")
	t.Setenv("METERBRIDGE_LOG_LEVEL", "warn")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.InstrumentationKey)
	assert.Equal(t, "https://env.example.com/v2/track", cfg.Endpoints[0].URL)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoadRejectsMissingKey(t *testing.T) {
	path := writeConfig(t, `
endpoints:
  - url: https://dc.example.com/v2/track
`)
	_, err := Load(path)
	assert.ErrorContains(t, err, "instrumentation_key")
}

func TestLoadRejectsNoEndpoints(t *testing.T) {
	path := writeConfig(t, `instrumentation_key: ikey-1`)
	_, err := Load(path)
	assert.ErrorContains(t, err, "at least one endpoint")
}

func TestLoadRejectsBadEndpointURL(t *testing.T) {
	path := writeConfig(t, `
instrumentation_key: ikey-1
endpoints:
  - url: "not a url"
`)
	_, err := Load(path)
	assert.ErrorContains(t, err, "invalid url")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorContains(t, err, "failed to read config file")
}
