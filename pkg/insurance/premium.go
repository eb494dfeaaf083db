// Package insurance implements the mortgage-insurance premium lookup: a
// loan-to-value-tiered rate table for small (plex) properties, a two-column
// table for six-plus-unit properties, hardcoded defaults for when the live
// tables cannot be loaded, and a manual-override path.
package insurance

import (
	"github.com/plexvest/plexvest/pkg/constants"
	"github.com/plexvest/plexvest/pkg/mathutil"
)

// Tier is one row of the plex premium table: the highest loan-to-value
// percentage the row covers and its premium rate in percent.
type Tier struct {
	MaxLTV float64
	Rate   float64
}

// MultiUnitTier is one row of the six-plus-unit premium table. The rate
// applied depends on whether the debt-coverage qualification is met.
type MultiUnitTier struct {
	MaxLTV     float64
	RateMet    float64
	RateNotMet float64
}

// Source labels where the premium rate came from.
type Source string

const (
	// SourceTable means the caller-supplied live table was used.
	SourceTable Source = "table"

	// SourceDefault means the hardcoded default table was used because no
	// live table was available.
	SourceDefault Source = "default"

	// SourceManual means the caller supplied the rate directly.
	SourceManual Source = "manual"
)

// Result holds a premium computation. Loan reflects any recap applied to
// honor the LTV ceilings, and Capped reports whether that happened.
type Result struct {
	Loan    float64
	LTV     float64
	Rate    float64
	Premium float64
	Source  Source
	Capped  bool
}

// DefaultPlexTiers returns the hardcoded premium table for properties of
// five units or fewer, keyed by maximum loan-to-value percentage. The last
// row guards the range above the insurable ceiling and is unreachable once
// the 95% cap has been applied.
func DefaultPlexTiers() []Tier {
	return []Tier{
		{MaxLTV: 65, Rate: 0.60},
		{MaxLTV: 75, Rate: 1.70},
		{MaxLTV: 80, Rate: 2.40},
		{MaxLTV: 85, Rate: 2.80},
		{MaxLTV: 90, Rate: 3.10},
		{MaxLTV: 95, Rate: 4.00},
		{MaxLTV: 100, Rate: 4.50},
	}
}

// DefaultMultiUnitTiers returns the hardcoded premium table for properties
// of six units or more.
func DefaultMultiUnitTiers() []MultiUnitTier {
	return []MultiUnitTier{
		{MaxLTV: 65, RateMet: 1.75, RateNotMet: 2.40},
		{MaxLTV: 70, RateMet: 2.00, RateNotMet: 2.75},
		{MaxLTV: 75, RateMet: 2.50, RateNotMet: 3.25},
		{MaxLTV: 80, RateMet: 3.50, RateNotMet: 4.25},
		{MaxLTV: 85, RateMet: 4.50, RateNotMet: 5.25},
	}
}

// Premium computes the mortgage-insurance premium for a loan. The loan is
// first recapped to the general 95% LTV ceiling, then to the 85% ceiling
// when the multi-unit table applies. A nil table selects the hardcoded
// default for that branch and marks the result SourceDefault, so the
// function never fails for missing data.
func Premium(loan, value float64, units int, coverageMet bool, plex []Tier, multi []MultiUnitTier) Result {
	var result Result
	if value <= 0 || loan <= 0 {
		return result
	}

	result.Source = SourceTable
	result.Loan = loan
	result.LTV = mathutil.CalculatePercentage(loan, value)
	if result.LTV > constants.InsuredLTVCap {
		result.Loan = mathutil.ApplyPercentage(value, constants.InsuredLTVCap)
		result.LTV = constants.InsuredLTVCap
		result.Capped = true
	}

	if units >= constants.MultiUnitThreshold {
		if result.LTV > constants.MultiUnitLTVCap {
			result.Loan = mathutil.ApplyPercentage(value, constants.MultiUnitLTVCap)
			result.LTV = constants.MultiUnitLTVCap
			result.Capped = true
		}
		if multi == nil {
			multi = DefaultMultiUnitTiers()
			result.Source = SourceDefault
		}
		result.Rate = multiUnitRate(result.LTV, coverageMet, multi)
	} else {
		if plex == nil {
			plex = DefaultPlexTiers()
			result.Source = SourceDefault
		}
		result.Rate = plexRate(result.LTV, plex)
	}

	result.Premium = mathutil.ApplyPercentage(result.Loan, result.Rate)
	return result
}

// ManualPremium computes the premium using a caller-supplied rate, skipping
// table lookup. The general 95% LTV ceiling still applies.
func ManualPremium(loan, value, rate float64) Result {
	var result Result
	if value <= 0 || loan <= 0 {
		return result
	}

	result.Source = SourceManual
	result.Loan = loan
	result.Rate = rate
	result.LTV = mathutil.CalculatePercentage(loan, value)
	if result.LTV > constants.InsuredLTVCap {
		result.Loan = mathutil.ApplyPercentage(value, constants.InsuredLTVCap)
		result.LTV = constants.InsuredLTVCap
		result.Capped = true
	}
	result.Premium = mathutil.ApplyPercentage(result.Loan, rate)
	return result
}

// plexRate walks the tiers in ascending LTV order; the first tier whose
// upper bound covers the actual LTV determines the rate. An LTV above every
// tier takes the last tier's rate.
func plexRate(ltv float64, tiers []Tier) float64 {
	for _, tier := range tiers {
		if ltv <= tier.MaxLTV {
			return tier.Rate
		}
	}
	if len(tiers) == 0 {
		return 0
	}
	return tiers[len(tiers)-1].Rate
}

func multiUnitRate(ltv float64, coverageMet bool, tiers []MultiUnitTier) float64 {
	for _, tier := range tiers {
		if ltv <= tier.MaxLTV {
			if coverageMet {
				return tier.RateMet
			}
			return tier.RateNotMet
		}
	}
	if len(tiers) == 0 {
		return 0
	}
	last := tiers[len(tiers)-1]
	if coverageMet {
		return last.RateMet
	}
	return last.RateNotMet
}
