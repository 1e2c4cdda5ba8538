// Package listener 订阅 Telegram 频道的 channel_post，解析交易信号并
// 交给执行协调器。每条信号在独立 goroutine 中执行，互不阻塞。
package listener

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"sigbridge/internal/config"
	"sigbridge/internal/executor/bracket"
	"sigbridge/internal/gateway/notifier"
	"sigbridge/internal/logger"
	"sigbridge/internal/signal"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Executor 抽象执行入口，便于测试替换协调器。
type Executor interface {
	Execute(ctx context.Context, sig signal.Signal) (*bracket.BracketResult, error)
}

// ResultHook 在每次执行结束后被调用（成功与失败都回调），供状态面板记录。
type ResultHook func(res *bracket.BracketResult, err error)

type Telegram struct {
	bot    *tgbotapi.BotAPI
	cfg    config.TelegramConfig
	exec   Executor
	notify notifier.TextNotifier
	hook   ResultHook

	wg sync.WaitGroup
}

func NewTelegram(cfg config.TelegramConfig, exec Executor, notify notifier.TextNotifier) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("telegram bot init: %w", err)
	}
	logger.Infof("telegram listener authorized as @%s", bot.Self.UserName)
	return &Telegram{bot: bot, cfg: cfg, exec: exec, notify: notify}, nil
}

// OnResult 注册执行结果回调。需在 Run 之前调用。
func (t *Telegram) OnResult(hook ResultHook) { t.hook = hook }

// Run 长轮询直到 ctx 取消。离线期间积压的消息按配置丢弃，
// 避免重启后执行过期信号。
func (t *Telegram) Run(ctx context.Context) error {
	if t.cfg.DropPending {
		t.dropPending()
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = t.cfg.PollSeconds
	u.AllowedUpdates = []string{"channel_post"}
	updates := t.bot.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			t.bot.StopReceivingUpdates()
			t.wg.Wait()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				t.wg.Wait()
				return nil
			}
			post := update.ChannelPost
			if post == nil || post.Chat == nil {
				continue
			}
			if t.cfg.ChannelID != 0 && post.Chat.ID != t.cfg.ChannelID {
				continue
			}
			text := post.Text
			if text == "" {
				text = post.Caption
			}
			sig, ok := signal.Parse(text)
			if !ok {
				continue
			}
			logger.Infof("signal received: %s %s entry=%v", sig.Pair, sig.Direction, sig.Entry)
			t.wg.Add(1)
			go func(sig signal.Signal, chatID int64, msgID int) {
				defer t.wg.Done()
				t.handle(ctx, sig, chatID, msgID)
			}(sig, post.Chat.ID, post.MessageID)
		}
	}
}

// dropPending 消费掉离线积压的 update，只推进 offset。
func (t *Telegram) dropPending() {
	cfg := tgbotapi.NewUpdate(-1)
	cfg.Timeout = 1
	updates, err := t.bot.GetUpdates(cfg)
	if err != nil {
		logger.Warnf("drop pending updates: %v", err)
		return
	}
	if len(updates) > 0 {
		logger.Infof("dropped %d pending telegram updates", len(updates))
	}
}

func (t *Telegram) handle(ctx context.Context, sig signal.Signal, chatID int64, msgID int) {
	execCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	res, err := t.exec.Execute(execCtx, sig)
	if t.hook != nil {
		t.hook(res, err)
	}
	if err != nil {
		logger.Errorf("execute %s %s: %v", sig.Pair, sig.Direction, err)
		t.alert(notifier.ExecutionFailed(sig, err))
		return
	}

	t.alert(notifier.TradeExecuted(res))
	if t.cfg.AckEnabled {
		t.ack(res, chatID, msgID)
	}
}

// ack 在信号消息下回复执行回执；失败只记日志，不影响已完成的执行。
func (t *Telegram) ack(res *bracket.BracketResult, chatID int64, msgID int) {
	var b strings.Builder
	switch {
	case res.DryRun:
		b.WriteString("🧪 DRY-RUN ")
	case res.PartialFailure():
		b.WriteString("⚠️ ")
	default:
		b.WriteString("✅ ")
	}
	fmt.Fprintf(&b, "%s %s 数量 %v 入场 %v",
		res.Intent.Symbol, res.Signal.Direction, res.Intent.Amount, res.Signal.Entry)
	if res.TP != nil {
		if res.TP.OK() {
			fmt.Fprintf(&b, " TP %v", res.TP.IntendedTrigger)
		} else {
			b.WriteString(" TP 失败")
		}
	}
	if res.SL != nil {
		if res.SL.OK() {
			fmt.Fprintf(&b, " SL %v", res.SL.IntendedTrigger)
		} else {
			b.WriteString(" SL 失败")
		}
	}
	msg := tgbotapi.NewMessage(chatID, b.String())
	msg.ReplyToMessageID = msgID
	if _, err := t.bot.Send(msg); err != nil {
		logger.Warnf("ack reply failed: %v", err)
	}
}

func (t *Telegram) alert(msg notifier.StructuredMessage) {
	if err := t.notify.SendText(msg.RenderMarkdown()); err != nil {
		logger.Warnf("notify failed: %v", err)
	}
}
