package loader

import (
	"os"
	"path/filepath"
	"testing"

	"sigbridge/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseTrading() config.TradingConfig {
	return config.TradingConfig{
		MarginUSDT:    10,
		Leverage:      25,
		TakeProfitPct: 0.15,
		StopLossPct:   0.40,
		MarginMode:    "isolated",
	}
}

func TestLoaderWithoutOverrideFile(t *testing.T) {
	l, err := NewTradingLoader(baseTrading(), "")
	require.NoError(t, err)

	p := l.Params()
	assert.Equal(t, 10.0, p.MarginUSDT)
	assert.Equal(t, 25, p.Leverage)
	assert.False(t, p.DryRun)
	assert.EqualValues(t, 0, p.Version)
}

func TestLoaderOverridesSubset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "overrides.yaml")
	require.NoError(t, os.WriteFile(path, []byte("leverage: 10\ndry_run: true\n"), 0o644))

	l, err := NewTradingLoader(baseTrading(), path)
	require.NoError(t, err)

	p := l.Params()
	// 覆盖的字段生效，其余沿用基础配置
	assert.Equal(t, 10, p.Leverage)
	assert.True(t, p.DryRun)
	assert.Equal(t, 10.0, p.MarginUSDT)
	assert.Equal(t, 0.15, p.TakeProfitPct)
	assert.EqualValues(t, 1, p.Version)
}

func TestLoaderIgnoresInvalidOverrideValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "overrides.yaml")
	require.NoError(t, os.WriteFile(path, []byte("stop_loss_pct: 5\nmargin_mode: weird\n"), 0o644))

	l, err := NewTradingLoader(baseTrading(), path)
	require.NoError(t, err)

	p := l.Params()
	assert.Equal(t, 0.40, p.StopLossPct)
	assert.Equal(t, "isolated", p.MarginMode)
}

func TestLoaderReloadBumpsVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "overrides.yaml")
	require.NoError(t, os.WriteFile(path, []byte("leverage: 10\n"), 0o644))

	l, err := NewTradingLoader(baseTrading(), path)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, []byte("leverage: 50\n"), 0o644))
	require.NoError(t, l.reload())

	p := l.Params()
	assert.Equal(t, 50, p.Leverage)
	assert.EqualValues(t, 2, p.Version)
}

func TestLoaderMissingFileFails(t *testing.T) {
	_, err := NewTradingLoader(baseTrading(), filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestIsCross(t *testing.T) {
	assert.True(t, TradingParams{MarginMode: "Cross"}.IsCross())
	assert.False(t, TradingParams{MarginMode: "isolated"}.IsCross())
}
