// Package convert provides small numeric conversion utilities.
package convert

// FirstPositive returns the first value greater than zero, or 0 if none is.
func FirstPositive(values ...float64) float64 {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}
