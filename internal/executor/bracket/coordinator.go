package bracket

import (
	"context"
	"fmt"
	"time"

	"sigbridge/internal/config/loader"
	"sigbridge/internal/gateway/exchange"
	"sigbridge/internal/logger"
	"sigbridge/internal/pkg/convert"
	"sigbridge/internal/pkg/trading"
	"sigbridge/internal/signal"
)

// Coordinator 将解析出的信号执行为一张市价入场单加两张 reduce-only
// 触发单。每次 Execute 是一条串行的远端调用链；多个信号可并发执行，
// 出站请求的串行化/限速由网关内部保证。
type Coordinator struct {
	gateway exchange.Gateway
	params  loader.ParamSource
}

func NewCoordinator(gw exchange.Gateway, params loader.ParamSource) *Coordinator {
	return &Coordinator{gateway: gw, params: params}
}

// Execute 运行 sizing → 入场 → 两腿托管的完整流程。
// 入场失败是致命的：返回 error，不尝试任何一腿。两腿各自独立失败，
// 以错误注记留在结果中，不回滚已成交的入场单。
func (c *Coordinator) Execute(ctx context.Context, sig signal.Signal) (*BracketResult, error) {
	p := c.params.Params()

	// Sizing
	state := phaseSizing
	sym := c.gateway.ResolveSymbol(sig.Pair)
	market, err := c.gateway.LoadMarket(ctx, sym)
	if err != nil {
		return nil, fmt.Errorf("[%s] %w", state, err)
	}
	raw := trading.PositionAmount(sig.Entry, p.MarginUSDT, p.Leverage)
	amount := c.gateway.RoundAmount(sym, raw)
	if amount <= 0 || (market.MinAmount > 0 && amount < market.MinAmount) {
		return nil, fmt.Errorf("[%s] %s amount %v below tradable minimum %v (margin=%v lev=%d entry=%v)",
			state, sym, amount, market.MinAmount, p.MarginUSDT, p.Leverage, sig.Entry)
	}

	intent := TradeIntent{
		Symbol:     sym,
		Side:       sig.Direction.Side(),
		Amount:     amount,
		Leverage:   p.Leverage,
		MarginMode: p.MarginMode,
	}
	result := &BracketResult{Signal: sig, Intent: intent, DryRun: p.DryRun}

	if eff := c.gateway.SetLeverage(ctx, sym, p.Leverage, p.MarginMode); eff.Status == exchange.SideEffectFailed {
		// 部分合约在下单时隐式应用杠杆，继续执行。
		logger.Warnf("set leverage %dx on %s failed: %s", p.Leverage, sym, eff.Reason)
	}

	if p.DryRun {
		result.Opened = OrderOutcome{Order: &exchange.OrderRecord{
			Symbol: sym,
			Side:   intent.Side,
			Amount: amount,
			Status: "dry_run",
			Note:   "dry-run active, no order sent",
		}}
		result.FinishedAt = time.Now()
		logger.Infof("dry-run: %s %s amount=%v entry=%v", sym, sig.Direction, amount, sig.Entry)
		return result, nil
	}

	// Entry
	state = phaseEntrySubmitted
	entry, err := c.gateway.SubmitOrder(ctx, sym, exchange.OrderTypeMarket, intent.Side, amount, exchange.OrderParams{
		MarginMode: p.MarginMode,
		Leverage:   p.Leverage,
	})
	if err != nil {
		return nil, fmt.Errorf("[%s] entry order %s %s failed: %w", state, sym, intent.Side, err)
	}
	result.Opened = OrderOutcome{Order: entry}
	logger.Infof("entry filled: %s %s amount=%v order=%s", sym, intent.Side, amount, entry.ID)

	// 参考价：订单报价 → 平均成交价 → 信号入场价。
	ref := convert.FirstPositive(entry.Price, entry.Average, sig.Entry)

	// Bracket legs
	state = phaseBracketPlacing
	logger.Debugf("phase=%s %s ref_price=%v", state, sym, ref)
	levels := DeriveExitLevels(sig.Direction, ref, sig.TakeProfit, sig.StopLoss, p.TakeProfitPct, p.StopLossPct)
	if sig.TakeProfit > 0 && levels.TPDerived {
		logger.Warnf("signal tp %v on wrong side of %v for %s %s, using derived %v",
			sig.TakeProfit, ref, sym, sig.Direction, levels.TakeProfit)
	}
	if sig.StopLoss > 0 && levels.SLDerived {
		logger.Warnf("signal sl %v on wrong side of %v for %s %s, using derived %v",
			sig.StopLoss, ref, sym, sig.Direction, levels.StopLoss)
	}

	tp := c.placeLeg(ctx, intent, sig.Direction, exchange.OrderTypeTakeProfit, levels.TakeProfit)
	result.TP = &tp
	sl := c.placeLeg(ctx, intent, sig.Direction, exchange.OrderTypeStopLoss, levels.StopLoss)
	result.SL = &sl

	state = phaseComplete
	result.FinishedAt = time.Now()
	logger.Infof("bracket %s: %s tp_ok=%v sl_ok=%v", state, sym, tp.OK(), sl.OK())
	return result, nil
}

// placeLeg 提交单腿 reduce-only 触发单。失败不影响另一腿和已开仓位，
// 以注记形式返回，交由上层提醒人工补挂。
func (c *Coordinator) placeLeg(ctx context.Context, intent TradeIntent, dir signal.Direction, orderType string, price float64) OrderOutcome {
	trigger := c.gateway.RoundPrice(intent.Symbol, price)
	order, err := c.gateway.SubmitOrder(ctx, intent.Symbol, orderType, dir.ExitSide(), intent.Amount, exchange.OrderParams{
		MarginMode:   intent.MarginMode,
		ReduceOnly:   true,
		TriggerPrice: trigger,
	})
	if err != nil {
		logger.Errorf("%s leg on %s failed (trigger=%v): %v", orderType, intent.Symbol, trigger, err)
		return OrderOutcome{Err: err.Error(), IntendedTrigger: trigger}
	}
	return OrderOutcome{Order: order, IntendedTrigger: trigger}
}
