package config

import "strings"

// 默认值常量
const (
	defaultAppEnv        = "dev"
	defaultAppLogLevel   = "info"
	defaultAppHTTPAddr   = ":9992"
	defaultMexcBaseURL   = "https://contract.mexc.com"
	defaultMexcTimeout   = 15
	defaultMexcRate      = 5
	defaultMexcBurst     = 1
	defaultPollSeconds   = 30
	defaultMarginUSDT    = 10
	defaultLeverage      = 25
	defaultTakeProfitPct = 0.15
	defaultStopLossPct   = 0.40
	defaultMarginMode    = "isolated"
)

// applyDefaults 为所有子配置应用默认值。
func (c *Config) applyDefaults(keys keySet) {
	c.App.applyDefaults(keys)
	c.Telegram.applyDefaults(keys)
	c.Mexc.applyDefaults(keys)
	c.Trading.applyDefaults(keys)
}

func (a *AppConfig) applyDefaults(keys keySet) {
	if a == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("app.env", &a.Env, defaultAppEnv),
		stringFieldDefault("app.log_level", &a.LogLevel, defaultAppLogLevel),
		stringFieldDefault("app.http_addr", &a.HTTPAddr, defaultAppHTTPAddr),
	)
}

func (t *TelegramConfig) applyDefaults(keys keySet) {
	if t == nil {
		return
	}
	applyFieldDefaults(keys,
		boolFieldDefault("telegram.ack_enabled", &t.AckEnabled, true),
		boolFieldDefault("telegram.drop_pending", &t.DropPending, true),
		fieldDefault{
			key:   "telegram.poll_seconds",
			need:  func() bool { return t.PollSeconds <= 0 },
			apply: func() { t.PollSeconds = defaultPollSeconds },
		},
	)
}

func (m *MexcConfig) applyDefaults(keys keySet) {
	if m == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("mexc.base_url", &m.BaseURL, defaultMexcBaseURL),
		fieldDefault{
			key:   "mexc.timeout_seconds",
			need:  func() bool { return m.TimeoutSeconds <= 0 },
			apply: func() { m.TimeoutSeconds = defaultMexcTimeout },
		},
		fieldDefault{
			key:   "mexc.rate_per_second",
			need:  func() bool { return m.RatePerSecond <= 0 },
			apply: func() { m.RatePerSecond = defaultMexcRate },
		},
		fieldDefault{
			key:   "mexc.rate_burst",
			need:  func() bool { return m.RateBurst <= 0 },
			apply: func() { m.RateBurst = defaultMexcBurst },
		},
	)
}

func (t *TradingConfig) applyDefaults(keys keySet) {
	if t == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("trading.margin_mode", &t.MarginMode, defaultMarginMode),
		fieldDefault{
			key:   "trading.margin_usdt",
			need:  func() bool { return t.MarginUSDT <= 0 },
			apply: func() { t.MarginUSDT = defaultMarginUSDT },
		},
		fieldDefault{
			key:   "trading.leverage",
			need:  func() bool { return t.Leverage <= 0 },
			apply: func() { t.Leverage = defaultLeverage },
		},
		fieldDefault{
			key:   "trading.take_profit_pct",
			need:  func() bool { return t.TakeProfitPct <= 0 },
			apply: func() { t.TakeProfitPct = defaultTakeProfitPct },
		},
		fieldDefault{
			key:   "trading.stop_loss_pct",
			need:  func() bool { return t.StopLossPct <= 0 },
			apply: func() { t.StopLossPct = defaultStopLossPct },
		},
	)
}

// Helper functions

func applyFieldDefaults(keys keySet, defs ...fieldDefault) {
	for _, def := range defs {
		if def.apply == nil {
			continue
		}
		if def.key != "" && keys.isSet(def.key) {
			continue
		}
		if def.need != nil && !def.need() {
			continue
		}
		def.apply()
	}
}

func stringFieldDefault(key string, target *string, def string) fieldDefault {
	return fieldDefault{
		key: key,
		need: func() bool {
			return target != nil && strings.TrimSpace(*target) == ""
		},
		apply: func() {
			if target != nil {
				*target = def
			}
		},
	}
}

func boolFieldDefault(key string, target *bool, def bool) fieldDefault {
	return fieldDefault{
		key:  key,
		need: func() bool { return target != nil },
		apply: func() {
			if target != nil {
				*target = def
			}
		},
	}
}
