package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "danmaku.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
url = "wss://example.com/sub"
auth_body = '{"roomid":1}'
access_key = "k"
access_secret = "s"
metrics_addr = ":9090"
debug = true
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "wss://example.com/sub", cfg.URL)
	require.Equal(t, `{"roomid":1}`, cfg.AuthBody)
	require.Equal(t, "k", cfg.AccessKey)
	require.Equal(t, "s", cfg.AccessSecret)
	require.Equal(t, ":9090", cfg.MetricsAddr)
	require.True(t, cfg.Debug)
	require.Equal(t, DefaultHeartbeatSeconds, cfg.HeartbeatSeconds)
	require.True(t, cfg.Signed())
	require.NoError(t, cfg.Validate())
}

func TestLoadHeartbeatOverride(t *testing.T) {
	cfg, err := Load(writeConfig(t, "url = \"ws://localhost:1/sub\"\nheartbeat_seconds = 5\n"))
	require.NoError(t, err)
	require.Equal(t, 5*time.Second, cfg.HeartbeatInterval())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
}

func TestLoadInvalidTOML(t *testing.T) {
	_, err := Load(writeConfig(t, "url = "))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"missing url", func(c *Config) { c.URL = "" }, true},
		{"http scheme", func(c *Config) { c.URL = "https://example.com/sub" }, true},
		{"no host", func(c *Config) { c.URL = "wss:///sub" }, true},
		{"zero heartbeat", func(c *Config) { c.HeartbeatSeconds = 0 }, true},
		{"key without secret", func(c *Config) { c.AccessKey = "k" }, true},
		{"secret without key", func(c *Config) { c.AccessSecret = "s" }, true},
		{"key pair", func(c *Config) { c.AccessKey, c.AccessSecret = "k", "s" }, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			cfg.URL = "wss://example.com/sub"
			tc.mutate(&cfg)

			err := cfg.Validate()
			if tc.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}
