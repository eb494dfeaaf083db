package tax

// Quebec default land-transfer ("welcome" tax) bracket breakpoints, used
// when no table rows exist for the property's region.
const (
	quebecTransferBreak1 = 58900
	quebecTransferBreak2 = 294600
	quebecTransferBreak3 = 500000
)

// DefaultQuebecTransferBrackets returns the provincial default welcome-tax
// brackets: 0.5% / 1% / 1.5% / 2% at the standard breakpoints.
func DefaultQuebecTransferBrackets() []Bracket {
	return []Bracket{
		{Lower: 0, Upper: quebecTransferBreak1, Rate: 0.5},
		{Lower: quebecTransferBreak1, Upper: quebecTransferBreak2, Rate: 1.0},
		{Lower: quebecTransferBreak2, Upper: quebecTransferBreak3, Rate: 1.5},
		{Lower: quebecTransferBreak3, Upper: OpenUpper(), Rate: 2.0},
	}
}

// Transfer computes the land-transfer tax on a sale price using the given
// region brackets. The tax is cumulative across brackets, so it is
// continuous at every bracket boundary.
func Transfer(price float64, brackets []Bracket) float64 {
	return Progressive(price, brackets)
}
