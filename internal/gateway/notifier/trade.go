package notifier

import (
	"fmt"
	"time"

	"sigbridge/internal/executor/bracket"
	"sigbridge/internal/signal"
)

// TradeExecuted 将一次执行结果渲染为推送消息。
// 部分失败（某条保护腿没挂上）用警示图标，提示人工补挂。
func TradeExecuted(res *bracket.BracketResult) StructuredMessage {
	icon := "✅"
	title := "已入场并挂好保护单"
	switch {
	case res.DryRun:
		icon = "🧪"
		title = "dry-run：仅模拟，未下单"
	case res.PartialFailure():
		icon = "⚠️"
		title = "已入场，保护单不完整，请人工补挂"
	}

	sections := []MessageSection{
		{Title: "信号", Lines: []string{
			fmt.Sprintf("%s %s", res.Signal.Pair, res.Signal.Direction),
			fmt.Sprintf("入场价 %v", res.Signal.Entry),
		}},
		{Title: "入场", Lines: entryLines(res)},
	}
	if !res.DryRun {
		sections = append(sections, MessageSection{Title: "保护单", Lines: append(
			legLines("止盈", res.TP),
			legLines("止损", res.SL)...,
		)})
	}

	return StructuredMessage{
		Icon:      icon,
		Title:     title,
		Sections:  sections,
		Timestamp: res.FinishedAt,
	}
}

// ExecutionFailed 渲染致命失败（sizing 或入场单被拒）的告警。
func ExecutionFailed(sig signal.Signal, err error) StructuredMessage {
	return StructuredMessage{
		Icon:  "❌",
		Title: "信号执行失败",
		Sections: []MessageSection{
			{Title: "信号", Lines: []string{
				fmt.Sprintf("%s %s 入场价 %v", sig.Pair, sig.Direction, sig.Entry),
			}},
			{Title: "原因", Lines: []string{err.Error()}},
		},
		Timestamp: time.Now(),
	}
}

func entryLines(res *bracket.BracketResult) []string {
	lines := []string{
		fmt.Sprintf("%s %s 数量 %v %dx %s",
			res.Intent.Symbol, res.Intent.Side, res.Intent.Amount, res.Intent.Leverage, res.Intent.MarginMode),
	}
	if ord := res.Opened.Order; ord != nil {
		if ord.ID != "" {
			lines = append(lines, fmt.Sprintf("订单 %s 状态 %s", ord.ID, ord.Status))
		} else {
			lines = append(lines, ord.Note)
		}
	}
	return lines
}

func legLines(name string, leg *bracket.OrderOutcome) []string {
	if leg == nil {
		return nil
	}
	if leg.OK() {
		return []string{fmt.Sprintf("%s 已挂 触发价 %v", name, leg.IntendedTrigger)}
	}
	return []string{fmt.Sprintf("%s 失败（预期触发价 %v）：%s", name, leg.IntendedTrigger, leg.Err)}
}
