package store

import (
	"math"
	"regexp"
	"strings"

	"github.com/plexvest/plexvest/pkg/parsing"
)

var amountPattern = regexp.MustCompile(`\d[\d  ]*(?:[.,]\d+)?`)

// extractAmounts pulls every numeric amount out of a free-text range
// description, tolerating French thousands separators (spaces, including
// non-breaking) and decimal commas.
func extractAmounts(desc string) []float64 {
	matches := amountPattern.FindAllString(desc, -1)
	amounts := make([]float64, 0, len(matches))
	for _, m := range matches {
		m = strings.NewReplacer(" ", "", " ", "").Replace(m)
		m = strings.ReplaceAll(m, ",", ".")
		amounts = append(amounts, parsing.Float(m, 0))
	}
	return amounts
}

// parseRate parses a marginal-rate string such as "15 %" or "11,5 %".
func parseRate(s string) float64 {
	return parsing.Percent(s)
}

// parseIncomeRange parses the free-text bracket descriptions used by the
// income tax table:
//
//	"X $ ou moins"            -> [0, X]
//	"dépassant X jusqu'à Y"   -> [X, Y]
//	"X $ à Y $"               -> [X, Y]
//	"Plus de X" / "dépassant X" -> [X, +Inf]
func parseIncomeRange(desc string) (lower, upper float64, ok bool) {
	normalized := strings.ToLower(desc)
	amounts := extractAmounts(normalized)
	if len(amounts) == 0 {
		return 0, 0, false
	}

	switch {
	case strings.Contains(normalized, "ou moins"):
		return 0, amounts[0], true
	case strings.Contains(normalized, "jusqu") && len(amounts) >= 2:
		return amounts[0], amounts[1], true
	case strings.Contains(normalized, "plus de"), strings.Contains(normalized, "dépassant"):
		return amounts[0], math.Inf(1), true
	case len(amounts) >= 2:
		return amounts[0], amounts[1], true
	}
	return 0, 0, false
}

// parseTransferRange parses the price-range descriptions used by the
// land-transfer tax table:
//
//	"< X"   -> [0, X]
//	"> X"   -> [X, +Inf]
//	"X - Y" -> [X, Y]
func parseTransferRange(desc string) (lower, upper float64, ok bool) {
	amounts := extractAmounts(desc)
	if len(amounts) == 0 {
		return 0, 0, false
	}

	switch {
	case strings.Contains(desc, "<"):
		return 0, amounts[0], true
	case strings.Contains(desc, ">"):
		return amounts[0], math.Inf(1), true
	case len(amounts) >= 2:
		return amounts[0], amounts[1], true
	}
	return 0, 0, false
}

// parseUpperLimit parses a capital-gains upper bound, honoring the
// "Infinity" sentinel used for the open top bracket.
func parseUpperLimit(s string) float64 {
	if strings.EqualFold(strings.TrimSpace(s), "infinity") {
		return math.Inf(1)
	}
	return parsing.Amount(s)
}
