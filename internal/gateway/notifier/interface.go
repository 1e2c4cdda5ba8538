package notifier

// TextNotifier defines a minimal text notification interface.
// It is intentionally small so different components can depend on it without
// importing concrete implementations (e.g. Telegram).
type TextNotifier interface {
	SendText(text string) error
}

// Noop 在通知未启用时占位，所有发送都静默成功。
type Noop struct{}

func (Noop) SendText(string) error { return nil }
