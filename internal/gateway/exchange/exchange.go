package exchange

import "context"

// Gateway 是系统与远端交易所交互的唯一边界。
// 实现必须自行对出站请求做限速/串行化；并发执行管线不感知这一点。
type Gateway interface {
	Name() string

	// ResolveSymbol 将 "BASE/QUOTE" 映射为交易所永续合约标识；幂等。
	ResolveSymbol(pair string) string

	// LoadMarket 获取并缓存合约精度/交易规则；失败对调用方是致命的。
	LoadMarket(ctx context.Context, symbol string) (MarketInfo, error)

	// SetLeverage 尽力而为地配置杠杆；失败以 SideEffect 形式返回而非 error。
	SetLeverage(ctx context.Context, symbol string, leverage int, marginMode string) SideEffect

	// RoundAmount / RoundPrice 按缓存的合约规则取整；对同一缓存状态是纯函数。
	RoundAmount(symbol string, amount float64) float64
	RoundPrice(symbol string, price float64) float64

	// SubmitOrder 是唯一的下单原语；传输或交易所层拒绝时返回 error。
	SubmitOrder(ctx context.Context, symbol, orderType, side string, amount float64, params OrderParams) (*OrderRecord, error)
}
