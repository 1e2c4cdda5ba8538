package loader

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"sigbridge/internal/config"
	"sigbridge/internal/logger"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// TradingParams 是执行管线使用的只读参数快照。
type TradingParams struct {
	MarginUSDT    float64
	Leverage      int
	TakeProfitPct float64
	StopLossPct   float64
	MarginMode    string
	DryRun        bool

	Version  int64
	LoadedAt time.Time
}

func (p TradingParams) IsCross() bool {
	return strings.EqualFold(strings.TrimSpace(p.MarginMode), "cross")
}

// ParamSource 供执行组件获取当前交易参数。
type ParamSource interface {
	Params() TradingParams
}

// StaticParams 实现 ParamSource，用于测试与无覆盖文件的部署。
type StaticParams TradingParams

func (s StaticParams) Params() TradingParams { return TradingParams(s) }

// ChangeListener 在参数变更时被调用。
type ChangeListener func(TradingParams)

// overrideFile 是覆盖文件的结构：任意子集生效，未设置的字段沿用基础配置。
type overrideFile struct {
	MarginUSDT    float64 `mapstructure:"margin_usdt"`
	Leverage      int     `mapstructure:"leverage"`
	TakeProfitPct float64 `mapstructure:"take_profit_pct"`
	StopLossPct   float64 `mapstructure:"stop_loss_pct"`
	MarginMode    string  `mapstructure:"margin_mode"`
	DryRun        *bool   `mapstructure:"dry_run"`
}

// TradingLoader 从覆盖文件加载交易参数并监听热更新。
// 没有覆盖文件时退化为基础配置的静态快照。
type TradingLoader struct {
	base config.TradingConfig
	path string
	v    *viper.Viper

	mu        sync.RWMutex
	snapshot  TradingParams
	version   int64
	listeners []ChangeListener
}

// NewTradingLoader 构建 loader；path 为空时不监听文件。
func NewTradingLoader(base config.TradingConfig, path string) (*TradingLoader, error) {
	l := &TradingLoader{base: base, path: strings.TrimSpace(path)}
	if l.path == "" {
		l.snapshot = l.fromBase()
		return l, nil
	}
	v := viper.New()
	v.SetConfigFile(l.path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read trading overrides failed: %w", err)
	}
	l.v = v
	if err := l.reload(); err != nil {
		return nil, err
	}
	v.OnConfigChange(func(evt fsnotify.Event) {
		if err := l.reload(); err != nil {
			logger.Errorf("trading overrides reload failed (%s): %v", evt.Name, err)
			return
		}
		l.notify()
	})
	v.WatchConfig()
	return l, nil
}

// Params 返回当前参数快照。
func (l *TradingLoader) Params() TradingParams {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.snapshot
}

// Subscribe 注册监听器，并立即收到一次完整快照。
func (l *TradingLoader) Subscribe(fn ChangeListener) {
	if fn == nil {
		return
	}
	l.mu.Lock()
	l.listeners = append(l.listeners, fn)
	snap := l.snapshot
	l.mu.Unlock()
	go safeNotify(fn, snap)
}

func (l *TradingLoader) fromBase() TradingParams {
	return TradingParams{
		MarginUSDT:    l.base.MarginUSDT,
		Leverage:      l.base.Leverage,
		TakeProfitPct: l.base.TakeProfitPct,
		StopLossPct:   l.base.StopLossPct,
		MarginMode:    l.base.MarginMode,
		DryRun:        l.base.DryRun,
		LoadedAt:      time.Now(),
	}
}

func (l *TradingLoader) reload() error {
	if err := l.v.ReadInConfig(); err != nil {
		return err
	}
	var file overrideFile
	if err := l.v.Unmarshal(&file); err != nil {
		return fmt.Errorf("parse trading overrides failed: %w", err)
	}
	next := l.fromBase()
	if file.MarginUSDT > 0 {
		next.MarginUSDT = file.MarginUSDT
	}
	if file.Leverage > 0 {
		next.Leverage = file.Leverage
	}
	if file.TakeProfitPct > 0 {
		next.TakeProfitPct = file.TakeProfitPct
	}
	if file.StopLossPct > 0 && file.StopLossPct < 1 {
		next.StopLossPct = file.StopLossPct
	}
	if mode := strings.ToLower(strings.TrimSpace(file.MarginMode)); mode == "isolated" || mode == "cross" {
		next.MarginMode = mode
	}
	if file.DryRun != nil {
		next.DryRun = *file.DryRun
	}

	l.mu.Lock()
	l.version++
	next.Version = l.version
	l.snapshot = next
	l.mu.Unlock()
	logger.Infof("trading params loaded: margin=%.2f lev=%d tp=%.2f%% sl=%.2f%% mode=%s dry_run=%v",
		next.MarginUSDT, next.Leverage, next.TakeProfitPct*100, next.StopLossPct*100, next.MarginMode, next.DryRun)
	return nil
}

func (l *TradingLoader) notify() {
	l.mu.RLock()
	snap := l.snapshot
	listeners := append([]ChangeListener(nil), l.listeners...)
	l.mu.RUnlock()
	for _, fn := range listeners {
		if fn == nil {
			continue
		}
		go safeNotify(fn, snap)
	}
}

func safeNotify(fn ChangeListener, snap TradingParams) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("trading params listener panic: %v", r)
		}
	}()
	fn(snap)
}
