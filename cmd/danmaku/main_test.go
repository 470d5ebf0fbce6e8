package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveConfigFlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "danmaku.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
url = "wss://file.example.com/sub"
auth_body = "from-file"
heartbeat_seconds = 10
`), 0o600))

	c := &cliFlags{}
	cmd := newRootCmd(c)
	require.NoError(t, cmd.ParseFlags([]string{"--config", path, "--auth-body", "from-flag"}))

	cfg, err := resolveConfig(cmd, c.configPath, c.Config)
	require.NoError(t, err)
	require.Equal(t, "wss://file.example.com/sub", cfg.URL)
	require.Equal(t, "from-flag", cfg.AuthBody)
	require.Equal(t, 10, cfg.HeartbeatSeconds)
}

func TestResolveConfigRejectsHalfKeyPair(t *testing.T) {
	c := &cliFlags{}
	cmd := newRootCmd(c)
	require.NoError(t, cmd.ParseFlags([]string{"--url", "ws://localhost:1/sub", "--access-key", "k"}))

	_, err := resolveConfig(cmd, c.configPath, c.Config)
	require.Error(t, err)
}
