// Package signal extracts structured trade intents from free-text channel posts.
package signal

// Direction 表示信号方向。
type Direction string

const (
	Long  Direction = "LONG"
	Short Direction = "SHORT"
)

// Side 返回开仓方向对应的订单方向。
func (d Direction) Side() string {
	if d == Long {
		return "buy"
	}
	return "sell"
}

// ExitSide 返回平仓（止盈/止损）订单方向。
func (d Direction) ExitSide() string {
	if d == Long {
		return "sell"
	}
	return "buy"
}

// Signal 是从一条消息中解析出的交易指令。TP/SL 为 0 表示信号未给出。
type Signal struct {
	Pair       string
	Direction  Direction
	Entry      float64
	TakeProfit float64
	StopLoss   float64
}
