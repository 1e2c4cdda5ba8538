package mexc

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"sigbridge/internal/config"
	"sigbridge/internal/gateway/exchange"
	"sigbridge/internal/logger"
	"sigbridge/internal/pkg/symbol"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
	"golang.org/x/sync/singleflight"
)

// Gateway 在 Client 之上实现 exchange.Gateway：符号转换、合约规则缓存、
// 精度取整与下单编排到具体端点的映射。
//
// 杠杆/持仓模式等按符号生效的配置调用没有跨执行隔离：同一交易对的两个
// 并发信号可能交错配置，与上游部署行为一致。
type Gateway struct {
	client *Client
	conv   symbol.SwapConverter

	mu      sync.RWMutex
	markets map[string]exchange.MarketInfo
	flight  singleflight.Group
}

// New 构建网关并尝试一次性将账户切换为双向持仓模式。
// 切换失败不致命：单向模式同样可用，仅记录日志。
func New(cfg config.MexcConfig) (*Gateway, error) {
	client, err := NewClient(cfg)
	if err != nil {
		return nil, err
	}
	g := &Gateway{
		client:  client,
		conv:    symbol.NewSwapConverter(symbol.DefaultMarginAsset),
		markets: make(map[string]exchange.MarketInfo),
	}
	if eff := g.enableHedgeMode(); eff.Status == exchange.SideEffectFailed {
		logger.Warnf("mexc position mode switch failed: %s", eff.Reason)
	}
	return g, nil
}

func (g *Gateway) Name() string { return "mexc" }

// Client exposes the underlying transport (for tests).
func (g *Gateway) Client() *Client { return g.client }

func (g *Gateway) enableHedgeMode() exchange.SideEffect {
	if g.client.apiKey == "" || g.client.apiSecret == "" {
		return exchange.Skipped("no api credentials")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := g.client.Post(ctx, "/api/v1/private/position/position_mode/change",
		changePositionModeRequest{PositionMode: positionModeHedge}); err != nil {
		return exchange.Failed(err.Error())
	}
	return exchange.Applied()
}

// ResolveSymbol 将 "FLOW/USDT" 映射为 "FLOW/USDT:USDT"；幂等。
func (g *Gateway) ResolveSymbol(pair string) string {
	return g.conv.ToExchange(pair)
}

// native 将统一符号转换为合约 API 的 "FLOW_USDT" 形式。
func native(sym string) string {
	if idx := strings.Index(sym, ":"); idx >= 0 {
		sym = sym[:idx]
	}
	return strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(sym)), "/", "_")
}

// LoadMarket 获取并缓存合约精度规则。并发加载经 singleflight 去重。
func (g *Gateway) LoadMarket(ctx context.Context, sym string) (exchange.MarketInfo, error) {
	g.mu.RLock()
	info, ok := g.markets[sym]
	g.mu.RUnlock()
	if ok {
		return info, nil
	}

	v, err, _ := g.flight.Do(sym, func() (any, error) {
		return g.fetchMarket(ctx, sym)
	})
	if err != nil {
		return exchange.MarketInfo{}, err
	}
	return v.(exchange.MarketInfo), nil
}

func (g *Gateway) fetchMarket(ctx context.Context, sym string) (exchange.MarketInfo, error) {
	query := url.Values{}
	query.Set("symbol", native(sym))
	data, err := g.client.Get(ctx, "/api/v1/contract/detail", query, false)
	if err != nil {
		return exchange.MarketInfo{}, fmt.Errorf("load market %s failed: %w", sym, err)
	}
	if data.IsArray() {
		arr := data.Array()
		if len(arr) == 0 {
			return exchange.MarketInfo{}, fmt.Errorf("load market %s failed: unknown contract", sym)
		}
		data = arr[0]
	}
	if !data.Exists() || data.Get("symbol").String() == "" {
		return exchange.MarketInfo{}, fmt.Errorf("load market %s failed: unknown contract", sym)
	}

	contractSize := data.Get("contractSize").Float()
	if contractSize <= 0 {
		contractSize = 1
	}
	info := exchange.MarketInfo{
		Symbol:       sym,
		PriceStep:    data.Get("priceUnit").Float(),
		AmountStep:   data.Get("volUnit").Float() * contractSize,
		MinAmount:    data.Get("minVol").Float() * contractSize,
		ContractSize: contractSize,
		MaxLevel:     int(data.Get("maxLeverage").Int()),
	}
	g.mu.Lock()
	g.markets[sym] = info
	g.mu.Unlock()
	logger.Debugf("market loaded: %s step=%v tick=%v min=%v", sym, info.AmountStep, info.PriceStep, info.MinAmount)
	return info, nil
}

// SetLeverage 尽力而为地为双向持仓的两个方向设置杠杆。
func (g *Gateway) SetLeverage(ctx context.Context, sym string, leverage int, marginMode string) exchange.SideEffect {
	if leverage <= 0 {
		return exchange.Skipped("leverage not configured")
	}
	openType := openTypeFor(marginMode)
	for _, positionType := range []int{1, 2} {
		req := changeLeverageRequest{
			Symbol:       native(sym),
			Leverage:     leverage,
			OpenType:     openType,
			PositionType: positionType,
		}
		if _, err := g.client.Post(ctx, "/api/v1/private/position/change_leverage", req); err != nil {
			// 部分合约在下单时隐式应用杠杆，这里失败不致命。
			return exchange.Failed(err.Error())
		}
	}
	return exchange.Applied()
}

// RoundAmount 将数量向下取整到合约数量步长；规则未加载时原样返回。
func (g *Gateway) RoundAmount(sym string, amount float64) float64 {
	g.mu.RLock()
	info, ok := g.markets[sym]
	g.mu.RUnlock()
	if !ok || info.AmountStep <= 0 {
		return amount
	}
	return floorToStep(amount, info.AmountStep)
}

// RoundPrice 将价格向下取整到最小报价单位；规则未加载时原样返回。
func (g *Gateway) RoundPrice(sym string, price float64) float64 {
	g.mu.RLock()
	info, ok := g.markets[sym]
	g.mu.RUnlock()
	if !ok || info.PriceStep <= 0 {
		return price
	}
	return floorToStep(price, info.PriceStep)
}

// floorToStep 以 decimal 计算 floor(value/step)*step，避免浮点步长误差。
func floorToStep(value, step float64) float64 {
	if step <= 0 || value <= 0 {
		return value
	}
	d := decimal.NewFromFloat(value)
	s := decimal.NewFromFloat(step)
	out, _ := d.Div(s).Floor().Mul(s).Float64()
	return out
}

// SubmitOrder 将统一下单原语映射到合约端点：市价单走 order/submit，
// 止盈/止损触发单走 planorder/place。
func (g *Gateway) SubmitOrder(ctx context.Context, sym, orderType, side string, amount float64, params exchange.OrderParams) (*exchange.OrderRecord, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("order amount must be > 0, got %v", amount)
	}
	sideCode, err := sideCodeFor(side, params.ReduceOnly)
	if err != nil {
		return nil, err
	}
	vol, err := g.contractsFor(sym, amount)
	if err != nil {
		return nil, err
	}
	externalOid := uuid.NewString()

	var data gjson.Result
	switch orderType {
	case exchange.OrderTypeMarket:
		req := submitOrderRequest{
			Symbol:      native(sym),
			Vol:         vol,
			Side:        sideCode,
			Type:        orderTypeMarket,
			OpenType:    openTypeFor(params.MarginMode),
			Leverage:    params.Leverage,
			ExternalOid: externalOid,
			ReduceOnly:  params.ReduceOnly,
		}
		data, err = g.client.Post(ctx, "/api/v1/private/order/submit", req)
	case exchange.OrderTypeTakeProfit, exchange.OrderTypeStopLoss:
		if params.TriggerPrice <= 0 {
			return nil, fmt.Errorf("%s order requires a trigger price", orderType)
		}
		req := planOrderRequest{
			Symbol:       native(sym),
			Vol:          vol,
			Side:         sideCode,
			OpenType:     openTypeFor(params.MarginMode),
			Leverage:     params.Leverage,
			TriggerPrice: params.TriggerPrice,
			TriggerType:  triggerTypeFor(orderType, side),
			ExecuteCycle: executeCycleUntilCancel,
			OrderType:    orderTypeMarket,
			ExternalOid:  externalOid,
			ReduceOnly:   params.ReduceOnly,
		}
		data, err = g.client.Post(ctx, "/api/v1/private/planorder/place", req)
	default:
		return nil, fmt.Errorf("unsupported order type %q", orderType)
	}
	if err != nil {
		return nil, err
	}

	record := orderRecordFromData(data)
	record.ClientOrderID = externalOid
	record.Symbol = sym
	record.Type = orderType
	record.Side = side
	record.Amount = amount
	if record.Status == "" {
		record.Status = "submitted"
	}
	return record, nil
}

// contractsFor 将标的数量换算为合约张数。
func (g *Gateway) contractsFor(sym string, amount float64) (float64, error) {
	g.mu.RLock()
	info, ok := g.markets[sym]
	g.mu.RUnlock()
	if !ok {
		return 0, fmt.Errorf("market %s not loaded", sym)
	}
	size := info.ContractSize
	if size <= 0 {
		size = 1
	}
	vol, _ := decimal.NewFromFloat(amount).Div(decimal.NewFromFloat(size)).Float64()
	return vol, nil
}

// orderRecordFromData 容忍两种响应形态：纯订单号，或携带价格字段的对象。
func orderRecordFromData(data gjson.Result) *exchange.OrderRecord {
	record := &exchange.OrderRecord{}
	if !data.Exists() {
		return record
	}
	if data.Type == gjson.String || data.Type == gjson.Number {
		record.ID = data.String()
		return record
	}
	record.ID = data.Get("orderId").String()
	record.Price = data.Get("price").Float()
	if avg := data.Get("dealAvgPrice").Float(); avg > 0 {
		record.Average = avg
	} else if avg := data.Get("avgPrice").Float(); avg > 0 {
		record.Average = avg
	}
	record.Status = data.Get("state").String()
	if m, ok := data.Value().(map[string]any); ok {
		record.Raw = m
	}
	return record
}

func sideCodeFor(side string, reduceOnly bool) (int, error) {
	switch strings.ToLower(strings.TrimSpace(side)) {
	case exchange.SideBuy:
		if reduceOnly {
			return sideCloseShort, nil
		}
		return sideOpenLong, nil
	case exchange.SideSell:
		if reduceOnly {
			return sideCloseLong, nil
		}
		return sideOpenShort, nil
	default:
		return 0, fmt.Errorf("unsupported order side %q", side)
	}
}

// triggerTypeFor 决定触发方向：多头止盈/空头止损在价格上行时触发。
func triggerTypeFor(orderType, side string) int {
	takeProfit := orderType == exchange.OrderTypeTakeProfit
	sell := strings.EqualFold(side, exchange.SideSell)
	if takeProfit == sell {
		return triggerGTE
	}
	return triggerLTE
}

func openTypeFor(marginMode string) int {
	if strings.EqualFold(strings.TrimSpace(marginMode), "cross") {
		return openTypeCross
	}
	return openTypeIsolated
}
