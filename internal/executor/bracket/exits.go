package bracket

import "sigbridge/internal/signal"

// ExitLevels 是一次执行的止盈/止损目标价。Derived 标记该值来自百分比
// 推导而非信号给定（信号值越过参考价方向时也会被弃用并重新推导）。
type ExitLevels struct {
	TakeProfit float64
	StopLoss   float64
	TPDerived  bool
	SLDerived  bool
}

// DeriveExitLevels 根据方向和参考价计算两腿目标价。纯函数，与下单解耦。
//
// 多头：tp = ref*(1+tpPct)，sl = ref*(1-slPct)；空头镜像。信号给定的值
// 仅在满足方向排序（多头 tp > ref > sl，空头相反）时采用。
func DeriveExitLevels(dir signal.Direction, refPrice, suppliedTP, suppliedSL, tpPct, slPct float64) ExitLevels {
	long := dir == signal.Long

	var levels ExitLevels
	if long {
		levels.TakeProfit = refPrice * (1 + tpPct)
		levels.StopLoss = refPrice * (1 - slPct)
	} else {
		levels.TakeProfit = refPrice * (1 - tpPct)
		levels.StopLoss = refPrice * (1 + slPct)
	}
	levels.TPDerived = true
	levels.SLDerived = true

	if suppliedTP > 0 && correctSide(long, suppliedTP, refPrice, true) {
		levels.TakeProfit = suppliedTP
		levels.TPDerived = false
	}
	if suppliedSL > 0 && correctSide(long, suppliedSL, refPrice, false) {
		levels.StopLoss = suppliedSL
		levels.SLDerived = false
	}
	return levels
}

// correctSide 校验目标价相对参考价的方向排序。
func correctSide(long bool, level, ref float64, takeProfit bool) bool {
	above := level > ref
	if long {
		return above == takeProfit
	}
	return above != takeProfit
}
