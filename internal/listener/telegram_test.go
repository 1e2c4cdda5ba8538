package listener

import (
	"context"
	"errors"
	"testing"

	"sigbridge/internal/config"
	"sigbridge/internal/executor/bracket"
	"sigbridge/internal/gateway/exchange"
	"sigbridge/internal/signal"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExec struct {
	res *bracket.BracketResult
	err error
	got []signal.Signal
}

func (f *fakeExec) Execute(ctx context.Context, sig signal.Signal) (*bracket.BracketResult, error) {
	f.got = append(f.got, sig)
	return f.res, f.err
}

type recordingNotifier struct{ sent []string }

func (r *recordingNotifier) SendText(text string) error {
	r.sent = append(r.sent, text)
	return nil
}

func testResult() *bracket.BracketResult {
	return &bracket.BracketResult{
		Signal: signal.Signal{Pair: "FLOW/USDT", Direction: signal.Long, Entry: 0.55},
		Intent: bracket.TradeIntent{Symbol: "FLOW/USDT:USDT", Side: "buy", Amount: 450},
		Opened: bracket.OrderOutcome{Order: &exchange.OrderRecord{ID: "1001", Status: "filled"}},
	}
}

func TestHandleSuccessNotifiesAndHooks(t *testing.T) {
	exec := &fakeExec{res: testResult()}
	rec := &recordingNotifier{}
	l := &Telegram{cfg: config.TelegramConfig{}, exec: exec, notify: rec}

	var hooked *bracket.BracketResult
	l.OnResult(func(res *bracket.BracketResult, err error) { hooked = res })

	sig := signal.Signal{Pair: "FLOW/USDT", Direction: signal.Long, Entry: 0.55}
	l.handle(context.Background(), sig, 0, 0)

	require.Len(t, exec.got, 1)
	require.Len(t, rec.sent, 1)
	assert.Contains(t, rec.sent[0], "FLOW/USDT")
	assert.Same(t, exec.res, hooked)
}

func TestHandleFailureAlertsOperator(t *testing.T) {
	exec := &fakeExec{err: errors.New("insufficient balance")}
	rec := &recordingNotifier{}
	l := &Telegram{cfg: config.TelegramConfig{}, exec: exec, notify: rec}

	var hookErr error
	l.OnResult(func(res *bracket.BracketResult, err error) { hookErr = err })

	l.handle(context.Background(), signal.Signal{Pair: "FLOW/USDT", Direction: signal.Short, Entry: 0.55}, 0, 0)

	require.Len(t, rec.sent, 1)
	assert.Contains(t, rec.sent[0], "insufficient balance")
	assert.Error(t, hookErr)
}
