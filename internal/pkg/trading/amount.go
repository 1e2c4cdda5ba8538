// Package trading provides trading calculation utilities.
package trading

// minEntryPrice floors the entry price to avoid division by zero.
const minEntryPrice = 1e-12

// PositionAmount computes the unrounded order amount in base currency for a
// fixed margin and leverage: notional = margin * leverage, amount = notional / entry.
// Rounding to the instrument's lot step is the exchange gateway's job.
func PositionAmount(entryPrice, marginUSDT float64, leverage int) float64 {
	if marginUSDT <= 0 || leverage <= 0 {
		return 0
	}
	if entryPrice < minEntryPrice {
		entryPrice = minEntryPrice
	}
	notional := marginUSDT * float64(leverage)
	return notional / entryPrice
}
