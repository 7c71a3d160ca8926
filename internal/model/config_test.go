package model

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(NewViper(filepath.Join(t.TempDir(), "absent.yaml")))
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:5000/classify", cfg.Service.Endpoint())
	assert.Equal(t, 30, cfg.Service.TimeoutSec)
	assert.True(t, cfg.Behavior.DiscardStaleResponses)
	assert.False(t, cfg.Behavior.StrictResponse)
	assert.True(t, cfg.History.Enabled)
	assert.Equal(t, 200, cfg.History.Limit)
	assert.False(t, cfg.Mailbox.Configured())
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadConfigReadsYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
service:
  base_url: http://100.71.20.40:5000/
  path: classify
  timeout_sec: 5
behavior:
  discard_stale_responses: false
  strict_response: true
history:
  enabled: false
mailbox:
  host: imap.example.com
  username: ops@example.com
`)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	cfg, err := LoadConfig(NewViper(path))
	require.NoError(t, err)

	assert.Equal(t, "http://100.71.20.40:5000/classify", cfg.Service.Endpoint())
	assert.Equal(t, 5, cfg.Service.TimeoutSec)
	assert.False(t, cfg.Behavior.DiscardStaleResponses)
	assert.True(t, cfg.Behavior.StrictResponse)
	assert.False(t, cfg.History.Enabled)
	assert.True(t, cfg.Mailbox.Configured())
	assert.Equal(t, "993", cfg.Mailbox.Port)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("CASE_CLASSIFIER_SERVICE_BASE_URL", "http://classifier.internal:8080")

	cfg, err := LoadConfig(NewViper(filepath.Join(t.TempDir(), "absent.yaml")))
	require.NoError(t, err)
	assert.Equal(t, "http://classifier.internal:8080/classify", cfg.Service.Endpoint())
}

func TestLoadConfigRejectsBrokenYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("service: [unclosed"), 0o600))

	_, err := LoadConfig(NewViper(path))
	require.Error(t, err)
}

func TestSaveConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg, err := LoadConfig(NewViper(path))
	require.NoError(t, err)
	cfg.Service.BaseURL = "http://example.test"
	cfg.Behavior.StrictResponse = true

	require.NoError(t, SaveConfig(path, cfg))

	loaded, err := LoadConfig(NewViper(path))
	require.NoError(t, err)
	assert.Equal(t, "http://example.test/classify", loaded.Service.Endpoint())
	assert.True(t, loaded.Behavior.StrictResponse)
}
