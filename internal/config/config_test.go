package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"LiveBoard/internal/interaction"
)

func TestDefaults(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, ModeHost, cfg.Mode)
	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, time.Second, cfg.FlushInterval)
	assert.Equal(t, 10000, cfg.MaxQueued)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.True(t, cfg.Advertise)
	assert.Equal(t, interaction.ModeDraw, cfg.Tool)
}

func TestShareLinkJoins(t *testing.T) {
	cfg, err := Parse([]string{"liveboard://10.0.0.2:9000/", "-log-level", "debug"})
	require.NoError(t, err)
	assert.Equal(t, ModeJoin, cfg.Mode)
	assert.Equal(t, "10.0.0.2:9000", cfg.RelayAddr)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.False(t, cfg.Advertise)
}

func TestEnvFallbacks(t *testing.T) {
	t.Setenv("LIVEBOARD_PORT", "9100")
	t.Setenv("LIVEBOARD_RELAY", "relay.local:9100")
	t.Setenv("LIVEBOARD_FLUSH_MS", "250")
	t.Setenv("LIVEBOARD_MAX_QUEUED", "0")
	t.Setenv("LIVEBOARD_LOG_LEVEL", "warn")
	t.Setenv("LIVEBOARD_TOOL", "move")

	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, 9100, cfg.Port)
	assert.Equal(t, ModeJoin, cfg.Mode)
	assert.Equal(t, "relay.local:9100", cfg.RelayAddr)
	assert.Equal(t, 250*time.Millisecond, cfg.FlushInterval)
	assert.Equal(t, 0, cfg.MaxQueued)
	assert.Equal(t, slog.LevelWarn, cfg.LogLevel)
	assert.Equal(t, interaction.ModeMove, cfg.Tool)
}

func TestFlagsOverrideEnv(t *testing.T) {
	t.Setenv("LIVEBOARD_PORT", "9100")
	cfg, err := Parse([]string{"-p", "7000", "-flush-ms", "50"})
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Port)
	assert.Equal(t, 50*time.Millisecond, cfg.FlushInterval)
}

func TestEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "board.env")
	require.NoError(t, os.WriteFile(path, []byte("LIVEBOARD_PORT=7300\nLIVEBOARD_FLUSH_MS=500\n"), 0o600))
	t.Setenv("LIVEBOARD_FLUSH_MS", "100")

	cfg, err := Parse([]string{"-env", path})
	require.NoError(t, err)
	assert.Equal(t, 7300, cfg.Port)
	assert.Equal(t, 100*time.Millisecond, cfg.FlushInterval, "process env wins over the file")
	_, set := os.LookupEnv("LIVEBOARD_PORT")
	assert.False(t, set, "the file does not leak into the environment")

	_, err = Parse([]string{"-env", filepath.Join(t.TempDir(), "missing.env")})
	assert.NoError(t, err)
}

func TestModes(t *testing.T) {
	cfg, err := Parse([]string{"-relay-only", "-no-mdns"})
	require.NoError(t, err)
	assert.Equal(t, ModeRelay, cfg.Mode)
	assert.False(t, cfg.Advertise)

	cfg, err = Parse([]string{"-discover", "-discover-timeout", "1s"})
	require.NoError(t, err)
	assert.Equal(t, ModeDiscover, cfg.Mode)
	assert.Equal(t, time.Second, cfg.DiscoverTimeout)
}

func TestInvalid(t *testing.T) {
	for name, args := range map[string][]string{
		"port range":        {"-p", "70000"},
		"negative flush":    {"-flush-ms", "-5"},
		"bad level":         {"-log-level", "loud"},
		"unknown tool":      {"-tool", "lasso"},
		"no tool":           {"-tool", "none"},
		"bad relay":         {"-relay", "no-port"},
		"relay-only + join": {"-relay-only", "-relay", "a:1"},
		"unknown flag":      {"-colour", "red"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(args)
			assert.Error(t, err)
		})
	}

	t.Setenv("LIVEBOARD_PORT", "eighty")
	_, err := Parse(nil)
	assert.EqualError(t, err, "invalid LIVEBOARD_PORT env variable")
}
