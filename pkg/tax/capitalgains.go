package tax

// CapitalGains computes the tax owed on a realized capital gain using the
// per-province gain brackets. The taxable portion of the gain (inclusion
// rate) is already reflected in the table rates supplied by the data layer.
func CapitalGains(gain float64, brackets []Bracket) float64 {
	return Progressive(gain, brackets)
}
