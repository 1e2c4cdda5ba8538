// Package exchange defines the capability boundary over the remote exchange.
// The execution core talks only to these types so the concrete client can be
// swapped or mocked without touching order orchestration.
package exchange

// Order types accepted by SubmitOrder.
const (
	OrderTypeMarket     = "market"
	OrderTypeTakeProfit = "take_profit"
	OrderTypeStopLoss   = "stop_loss"
)

// Order sides.
const (
	SideBuy  = "buy"
	SideSell = "sell"
)

// MarketInfo 是交易所返回的合约精度/交易规则快照。
// 进程生命周期内缓存，允许过期（按需刷新）。
type MarketInfo struct {
	Symbol     string  // unified swap symbol, e.g. "FLOW/USDT:USDT"
	AmountStep float64 // lot step in base currency
	PriceStep  float64 // price tick
	MinAmount  float64 // minimum order amount in base currency
	// ContractSize 是一张合约对应的标的数量；面向调用方的数量均为标的数量，
	// 换算留给具体网关实现。
	ContractSize float64
	MaxLevel     int // maximum leverage reported by the exchange
}

// OrderRecord represents a submitted (or, in dry-run, synthetic) order.
// Price/Average are 0 when the exchange did not report them.
type OrderRecord struct {
	ID            string
	ClientOrderID string
	Symbol        string
	Type          string
	Side          string
	Amount        float64
	Price         float64
	Average       float64
	Status        string
	Note          string         // only set on synthetic dry-run records
	Raw           map[string]any // raw exchange payload for debugging
}

// OrderParams is the parameter bag forwarded with SubmitOrder.
type OrderParams struct {
	MarginMode   string  // "isolated" | "cross"
	Leverage     int     // 0 = let the exchange apply its configured value
	ReduceOnly   bool
	TriggerPrice float64 // required for trigger order types
}

// SideEffectStatus 标记尽力而为调用的结果。
type SideEffectStatus int

const (
	SideEffectApplied SideEffectStatus = iota
	SideEffectFailed                   // 非致命失败，执行继续
	SideEffectSkipped
)

func (s SideEffectStatus) String() string {
	switch s {
	case SideEffectApplied:
		return "applied"
	case SideEffectFailed:
		return "failed"
	case SideEffectSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// SideEffect 是尽力而为副作用调用（杠杆、持仓模式）的带标签结果。
// 调用方根据 Status 分支，而不是捕获异常式的错误。
type SideEffect struct {
	Status SideEffectStatus
	Reason string
}

func Applied() SideEffect             { return SideEffect{Status: SideEffectApplied} }
func Failed(reason string) SideEffect { return SideEffect{Status: SideEffectFailed, Reason: reason} }
func Skipped(reason string) SideEffect {
	return SideEffect{Status: SideEffectSkipped, Reason: reason}
}
