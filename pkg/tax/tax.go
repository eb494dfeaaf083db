// Package tax implements bracket-based progressive tax computation for
// personal income (federal plus provincial), flat corporate rate lookup,
// land-transfer tax, and capital-gains tax.
//
// All computation operates on structured brackets; parsing of the free-text
// range descriptions stored in the database happens at the data-provider
// boundary, never here.
package tax

import (
	"math"

	"github.com/plexvest/plexvest/pkg/constants"
	"github.com/plexvest/plexvest/pkg/mathutil"
)

// Bracket is one marginal tax bracket. Rate is a percentage (e.g. 15 for
// 15%). Upper is +Inf for the open top bracket.
type Bracket struct {
	Lower float64
	Upper float64
	Rate  float64
}

// Source labels how a result was obtained so callers can distinguish a
// normal computation from a documented fallback.
type Source string

const (
	// SourceTable means the live lookup table supplied every row needed.
	SourceTable Source = "table"

	// SourceFederalOnly means no provincial brackets matched and the
	// result covers the federal portion only (an under-estimate).
	SourceFederalOnly Source = "federal_only"

	// SourceRegionFallback means the requested region had no table rows
	// and a substitute region's brackets were used.
	SourceRegionFallback Source = "region_fallback"

	// SourceDefaultTable means the live table was unavailable and the
	// hardcoded default brackets were used.
	SourceDefaultTable Source = "default_table"
)

// OpenUpper is the upper bound used for the top bracket.
func OpenUpper() float64 {
	return math.Inf(1)
}

// Progressive computes the cumulative marginal tax on amount: brackets are
// walked in ascending order and each contributes its rate on only the
// portion of the amount falling inside it.
func Progressive(amount float64, brackets []Bracket) float64 {
	if amount <= 0 {
		return 0
	}
	total := 0.0
	for _, b := range brackets {
		if amount <= b.Lower {
			break
		}
		upper := math.Min(amount, b.Upper)
		total += mathutil.ApplyPercentage(upper-b.Lower, b.Rate)
	}
	return total
}

// IncomeTax is the result of a personal income tax computation.
type IncomeTax struct {
	Federal    float64
	Provincial float64
	Total      float64
	Source     Source
}

// Income computes progressive personal tax as the sum of independent
// federal and provincial bracket walks. When no provincial brackets are
// supplied the result covers the federal portion only and is flagged
// SourceFederalOnly rather than silently under-reporting.
func Income(income float64, federal, provincial []Bracket) IncomeTax {
	result := IncomeTax{
		Federal: Progressive(income, federal),
		Source:  SourceTable,
	}
	if len(provincial) == 0 {
		result.Source = SourceFederalOnly
	} else {
		result.Provincial = Progressive(income, provincial)
	}
	result.Total = result.Federal + result.Provincial
	return result
}

// CorporateRate looks up the flat corporate tax rate for a province from
// the supplied province-to-rate table. Missing provinces fall back to the
// "Fédéral" row, then to the hardcoded default rate.
func CorporateRate(province string, rates map[string]float64) (float64, Source) {
	if rate, ok := rates[province]; ok {
		return rate, SourceTable
	}
	if rate, ok := rates["Fédéral"]; ok {
		return rate, SourceRegionFallback
	}
	return constants.DefaultCorporateRate, SourceDefaultTable
}

// Corporate computes the flat corporate tax owed on income for a province.
// Non-incorporated callers owe nothing through this path.
func Corporate(income float64, province string, incorporated bool, rates map[string]float64) (float64, Source) {
	if !incorporated || income <= 0 {
		return 0, SourceTable
	}
	rate, source := CorporateRate(province, rates)
	return mathutil.ApplyPercentage(income, rate), source
}
