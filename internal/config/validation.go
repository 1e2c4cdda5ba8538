package config

import (
	"fmt"
	"strings"
)

// validate 对配置进行基础校验。
func validate(c *Config) error {
	if err := c.Telegram.validate(); err != nil {
		return err
	}
	if err := c.Mexc.validate(); err != nil {
		return err
	}
	if err := c.Trading.validate(); err != nil {
		return err
	}
	if err := c.Notify.validate(); err != nil {
		return err
	}
	return nil
}

func (t *TelegramConfig) validate() error {
	if strings.TrimSpace(t.BotToken) == "" {
		return fmt.Errorf("telegram.bot_token cannot be empty")
	}
	if t.ChannelID == 0 {
		return fmt.Errorf("telegram.channel_id cannot be empty")
	}
	return nil
}

func (m *MexcConfig) validate() error {
	if strings.TrimSpace(m.BaseURL) == "" {
		return fmt.Errorf("mexc.base_url cannot be empty")
	}
	// dry-run 部署允许缺省密钥，下单时网关会拒绝。
	return nil
}

func (t *TradingConfig) validate() error {
	if t.MarginUSDT <= 0 {
		return fmt.Errorf("trading.margin_usdt must be > 0")
	}
	if t.Leverage <= 0 {
		return fmt.Errorf("trading.leverage must be > 0")
	}
	if t.TakeProfitPct <= 0 || t.TakeProfitPct >= 10 {
		return fmt.Errorf("trading.take_profit_pct out of range: %v", t.TakeProfitPct)
	}
	if t.StopLossPct <= 0 || t.StopLossPct >= 1 {
		return fmt.Errorf("trading.stop_loss_pct out of range: %v", t.StopLossPct)
	}
	switch strings.ToLower(strings.TrimSpace(t.MarginMode)) {
	case "isolated", "cross":
	default:
		return fmt.Errorf("trading.margin_mode must be isolated or cross, got %q", t.MarginMode)
	}
	return nil
}

func (n *NotifyConfig) validate() error {
	tg := n.Telegram
	if !tg.Enabled {
		return nil
	}
	if strings.TrimSpace(tg.BotToken) == "" || strings.TrimSpace(tg.ChatID) == "" {
		return fmt.Errorf("notify.telegram requires bot_token and chat_id when enabled")
	}
	return nil
}
