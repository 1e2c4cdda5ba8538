package app

import (
	"context"

	"sigbridge/internal/config"
	cfgloader "sigbridge/internal/config/loader"
	"sigbridge/internal/executor/bracket"
	"sigbridge/internal/gateway/exchange"
	"sigbridge/internal/gateway/mexc"
	"sigbridge/internal/gateway/notifier"
	"sigbridge/internal/listener"
	"sigbridge/internal/logger"
	statushttp "sigbridge/internal/transport/http/status"
)

// AppBuilder 持有各依赖的构造函数，便于测试时替换单个环节。
type AppBuilder struct {
	cfg *config.Config

	gatewayFn  func(config.MexcConfig) (exchange.Gateway, error)
	paramsFn   func(config.TradingConfig, string) (cfgloader.ParamSource, error)
	notifierFn func(config.NotifyConfig) notifier.TextNotifier
	listenerFn func(config.TelegramConfig, listener.Executor, notifier.TextNotifier) (*listener.Telegram, error)
	statusFn   func(statushttp.ServerConfig) (*statushttp.Server, error)
}

type AppBuilderOption func(*AppBuilder)

func NewAppBuilder(cfg *config.Config, opts ...AppBuilderOption) *AppBuilder {
	b := &AppBuilder{
		cfg:        cfg,
		gatewayFn:  buildGateway,
		paramsFn:   buildParamSource,
		notifierFn: notifier.FromConfig,
		listenerFn: buildListener,
		statusFn:   statushttp.NewServer,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

func buildGateway(cfg config.MexcConfig) (exchange.Gateway, error) {
	return mexc.New(cfg)
}

// buildParamSource 有覆盖文件时启用热更新 loader，否则退化为静态快照。
func buildParamSource(base config.TradingConfig, path string) (cfgloader.ParamSource, error) {
	ld, err := cfgloader.NewTradingLoader(base, path)
	if err != nil {
		return nil, err
	}
	ld.Subscribe(func(p cfgloader.TradingParams) {
		logger.Infof("trading params v%d: margin=%v lev=%d tp=%v sl=%v mode=%s dry_run=%v",
			p.Version, p.MarginUSDT, p.Leverage, p.TakeProfitPct, p.StopLossPct, p.MarginMode, p.DryRun)
	})
	return ld, nil
}

func buildListener(cfg config.TelegramConfig, exec listener.Executor, notify notifier.TextNotifier) (*listener.Telegram, error) {
	return listener.NewTelegram(cfg, exec, notify)
}

func (b *AppBuilder) Build(ctx context.Context) (*App, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := b.cfg

	params, err := b.paramsFn(cfg.Trading, cfg.Trading.OverridesPath)
	if err != nil {
		return nil, err
	}
	gw, err := b.gatewayFn(cfg.Mexc)
	if err != nil {
		return nil, err
	}
	coordinator := bracket.NewCoordinator(gw, params)
	notify := b.notifierFn(cfg.Notify)

	lst, err := b.listenerFn(cfg.Telegram, coordinator, notify)
	if err != nil {
		return nil, err
	}
	tracker := statushttp.NewTracker()
	lst.OnResult(tracker.Record)

	status, err := b.statusFn(statushttp.ServerConfig{
		Addr:     cfg.App.HTTPAddr,
		Exchange: gw.Name(),
		Tracker:  tracker,
		Params:   params,
	})
	if err != nil {
		return nil, err
	}

	return &App{cfg: cfg, listener: lst, status: status}, nil
}
