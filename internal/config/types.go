package config

import "strings"

// Config 是 sigbridge 的主配置载体。
type Config struct {
	App      AppConfig      `toml:"app"`
	Telegram TelegramConfig `toml:"telegram"`
	Mexc     MexcConfig     `toml:"mexc"`
	Trading  TradingConfig  `toml:"trading"`
	Notify   NotifyConfig   `toml:"notify"`
}

type AppConfig struct {
	Env      string `toml:"env"`
	LogLevel string `toml:"log_level"`
	HTTPAddr string `toml:"http_addr"`
	LogPath  string `toml:"log_path"`
}

// TelegramConfig 描述信号来源频道的接入方式。
type TelegramConfig struct {
	BotToken    string `toml:"bot_token"`
	ChannelID   int64  `toml:"channel_id"`
	AckEnabled  bool   `toml:"ack_enabled"`
	DropPending bool   `toml:"drop_pending"`
	PollSeconds int    `toml:"poll_seconds"`
}

// MexcConfig 描述 MEXC USDT 本位永续合约 API 的访问方式。
type MexcConfig struct {
	APIKey         string  `toml:"api_key"`
	APISecret      string  `toml:"api_secret"`
	BaseURL        string  `toml:"base_url"`
	TimeoutSeconds int     `toml:"timeout_seconds"`
	RatePerSecond  float64 `toml:"rate_per_second"`
	RateBurst      int     `toml:"rate_burst"`
	RecvWindow     int     `toml:"recv_window"` // 签名请求的有效窗口（秒），0 表示交由交易所默认
}

// TradingConfig 控制固定保证金/杠杆与默认止盈止损比例。
type TradingConfig struct {
	MarginUSDT    float64 `toml:"margin_usdt"`     // 单笔保证金
	Leverage      int     `toml:"leverage"`        // 杠杆倍数
	TakeProfitPct float64 `toml:"take_profit_pct"` // 默认止盈偏移（0.15 = +15%）
	StopLossPct   float64 `toml:"stop_loss_pct"`   // 默认止损偏移
	MarginMode    string  `toml:"margin_mode"`     // isolated | cross
	DryRun        bool    `toml:"dry_run"`
	OverridesPath string  `toml:"overrides_path"` // 可热更新的参数覆盖文件（可为空）
}

func (t TradingConfig) IsCross() bool {
	return strings.EqualFold(strings.TrimSpace(t.MarginMode), "cross")
}

type NotifyConfig struct {
	Telegram TelegramNotifyConfig `toml:"telegram"`
}

type TelegramNotifyConfig struct {
	Enabled  bool   `toml:"enabled"`
	BotToken string `toml:"bot_token"`
	ChatID   string `toml:"chat_id"`
}

// keySet 用于追踪配置文件中显式设置的字段路径。
type keySet map[string]struct{}

func (k keySet) mark(path string) {
	path = strings.ToLower(strings.TrimSpace(path))
	if path == "" {
		return
	}
	k[path] = struct{}{}
}

func (k keySet) isSet(path string) bool {
	if len(k) == 0 {
		return false
	}
	path = strings.ToLower(strings.TrimSpace(path))
	if path == "" {
		return false
	}
	_, ok := k[path]
	return ok
}

// fieldDefault 描述单个字段的默认值设置规则。
type fieldDefault struct {
	key   string
	need  func() bool
	apply func()
}
