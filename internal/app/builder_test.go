package app

import (
	"context"
	"testing"

	"sigbridge/internal/config"
	"sigbridge/internal/gateway/exchange"
	"sigbridge/internal/gateway/notifier"
	"sigbridge/internal/listener"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGateway struct{}

func (stubGateway) Name() string                     { return "stub" }
func (stubGateway) ResolveSymbol(pair string) string { return pair }
func (stubGateway) LoadMarket(ctx context.Context, sym string) (exchange.MarketInfo, error) {
	return exchange.MarketInfo{}, nil
}
func (stubGateway) SetLeverage(ctx context.Context, sym string, lev int, mode string) exchange.SideEffect {
	return exchange.Skipped("stub")
}
func (stubGateway) RoundAmount(sym string, v float64) float64 { return v }
func (stubGateway) RoundPrice(sym string, v float64) float64  { return v }
func (stubGateway) SubmitOrder(ctx context.Context, sym, orderType, side string, amount float64, params exchange.OrderParams) (*exchange.OrderRecord, error) {
	return &exchange.OrderRecord{}, nil
}

func TestBuildWiresComponents(t *testing.T) {
	cfg := &config.Config{}
	cfg.App.HTTPAddr = ":0"
	cfg.Trading.MarginUSDT = 10
	cfg.Trading.Leverage = 25

	b := NewAppBuilder(cfg,
		func(b *AppBuilder) {
			b.gatewayFn = func(config.MexcConfig) (exchange.Gateway, error) { return stubGateway{}, nil }
		},
		func(b *AppBuilder) {
			b.listenerFn = func(config.TelegramConfig, listener.Executor, notifier.TextNotifier) (*listener.Telegram, error) {
				return &listener.Telegram{}, nil
			}
		},
	)

	a, err := b.Build(context.Background())
	require.NoError(t, err)
	require.NotNil(t, a)
	assert.NotNil(t, a.listener)
	assert.NotNil(t, a.status)
}

func TestBuildParamSourceStaticWithoutOverrides(t *testing.T) {
	src, err := buildParamSource(config.TradingConfig{MarginUSDT: 10, Leverage: 25, DryRun: true}, "")
	require.NoError(t, err)
	p := src.Params()
	assert.Equal(t, 25, p.Leverage)
	assert.True(t, p.DryRun)
}
