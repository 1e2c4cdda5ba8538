// Package bracket orchestrates one entry order plus two dependent
// reduce-only exit orders, isolating failures per leg.
package bracket

import (
	"time"

	"sigbridge/internal/gateway/exchange"
	"sigbridge/internal/signal"
)

// phase 标记单次执行所处的阶段；只向前推进。
type phase int

const (
	phaseIdle phase = iota
	phaseSizing
	phaseEntrySubmitted
	phaseBracketPlacing
	phaseComplete
)

func (p phase) String() string {
	switch p {
	case phaseIdle:
		return "idle"
	case phaseSizing:
		return "sizing"
	case phaseEntrySubmitted:
		return "entry_submitted"
	case phaseBracketPlacing:
		return "bracket_placing"
	case phaseComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// TradeIntent 是从信号和配置推导出的、符合交易所规则的下单意图。
type TradeIntent struct {
	Symbol     string  // exchange-native symbol
	Side       string  // "buy" | "sell"
	Amount     float64 // rounded to the symbol's lot step, > 0
	Leverage   int
	MarginMode string
}

// OrderOutcome 要么是成功的订单记录，要么是携带预期触发价的错误注记。
type OrderOutcome struct {
	Order           *exchange.OrderRecord
	Err             string
	IntendedTrigger float64 // 仅在触发单失败时有意义，供人工补挂
}

func (o OrderOutcome) OK() bool { return o.Err == "" && o.Order != nil }

// BracketResult 聚合一次执行的全部结果。dry-run 时 TP/SL 为 nil。
type BracketResult struct {
	Signal signal.Signal
	Intent TradeIntent

	Opened OrderOutcome
	TP     *OrderOutcome
	SL     *OrderOutcome
	DryRun bool

	FinishedAt time.Time
}

// PartialFailure 报告是否有触发单腿失败，需要人工补挂保护单。
func (r *BracketResult) PartialFailure() bool {
	if r.DryRun {
		return false
	}
	if r.TP != nil && !r.TP.OK() {
		return true
	}
	if r.SL != nil && !r.SL.OK() {
		return true
	}
	return false
}
