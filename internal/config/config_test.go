package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const minimalConfig = `
telegram:
  bot_token: "123:abc"
  channel_id: -1001234567890
`

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "config.yaml", minimalConfig)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.App.Env)
	assert.Equal(t, ":9992", cfg.App.HTTPAddr)
	assert.Equal(t, "https://contract.mexc.com", cfg.Mexc.BaseURL)
	assert.Equal(t, 10.0, cfg.Trading.MarginUSDT)
	assert.Equal(t, 25, cfg.Trading.Leverage)
	assert.Equal(t, 0.15, cfg.Trading.TakeProfitPct)
	assert.Equal(t, 0.40, cfg.Trading.StopLossPct)
	assert.Equal(t, "isolated", cfg.Trading.MarginMode)
	assert.Equal(t, 30, cfg.Telegram.PollSeconds)
	assert.True(t, cfg.Telegram.AckEnabled)
	assert.True(t, cfg.Telegram.DropPending)
}

func TestLoadExplicitValuesWin(t *testing.T) {
	content := `
telegram:
  bot_token: "123:abc"
  channel_id: -100
  ack_enabled: false
trading:
  leverage: 50
  dry_run: true
`
	path := writeConfig(t, t.TempDir(), "config.yaml", content)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.False(t, cfg.Telegram.AckEnabled)
	assert.Equal(t, 50, cfg.Trading.Leverage)
	assert.True(t, cfg.Trading.DryRun)
}

func TestLoadIncludeMerge(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "secrets.yaml", `
mexc:
  api_key: "key-from-include"
  api_secret: "secret-from-include"
`)
	path := writeConfig(t, dir, "config.yaml", `
include:
  - secrets.yaml
`+minimalConfig)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "key-from-include", cfg.Mexc.APIKey)
	assert.Equal(t, "secret-from-include", cfg.Mexc.APISecret)
}

func TestLoadIncludeCycle(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "a.yaml", "include:\n  - b.yaml\n")
	path := writeConfig(t, dir, "b.yaml", "include:\n  - a.yaml\n"+minimalConfig)

	_, err := Load(path)
	assert.ErrorContains(t, err, "cycle")
}

func TestLoadValidation(t *testing.T) {
	cases := map[string]string{
		"missing bot token":  "telegram:\n  channel_id: -100\n",
		"missing channel id": "telegram:\n  bot_token: \"123:abc\"\n",
		"bad margin mode":    minimalConfig + "trading:\n  margin_mode: weird\n",
		"bad stop loss":      minimalConfig + "trading:\n  stop_loss_pct: 2\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			path := writeConfig(t, t.TempDir(), "config.yaml", content)
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}
