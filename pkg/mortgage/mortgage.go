// Package mortgage provides loan amortization math: the standard annuity
// payment formula, its inverse, and a monthly balance simulation.
package mortgage

import (
	"math"

	"github.com/plexvest/plexvest/pkg/constants"
)

// NormalizeRate converts an annual rate expressed in percent form (e.g. 5.5)
// to its decimal form (0.055). Rates already below 1 pass through unchanged.
// Callers are inconsistent about which form they pass, so every entry point
// in this package normalizes first.
func NormalizeRate(annualRate float64) float64 {
	if annualRate > 1 {
		return annualRate / constants.PercentageMultiplier
	}
	return annualRate
}

// MonthlyPayment calculates the monthly payment for a loan using the
// standard annuity formula P*r/(1-(1+r)^-n). A zero (or near-zero) rate
// degrades to linear amortization.
func MonthlyPayment(principal, annualRate float64, years int) float64 {
	n := float64(years * constants.MonthsPerYear)
	if n == 0 {
		return 0
	}
	r := NormalizeRate(annualRate) / constants.MonthsPerYear
	if math.Abs(r) < constants.ZeroRateTolerance {
		return principal / n
	}
	return principal * r / (1 - math.Pow(1+r, -n))
}

// MaxLoan calculates the loan principal whose annuity payment equals the
// given monthly payment; it is the inverse of MonthlyPayment. A zero rate
// degrades to monthlyPayment*n.
func MaxLoan(monthlyPayment, annualRate float64, years int) float64 {
	n := float64(years * constants.MonthsPerYear)
	r := NormalizeRate(annualRate) / constants.MonthsPerYear
	if math.Abs(r) < constants.ZeroRateTolerance {
		return monthlyPayment * n
	}
	return monthlyPayment * (1 - math.Pow(1+r, -n)) / r
}

// InterestPayment calculates the interest portion of one monthly payment on
// the given remaining balance.
func InterestPayment(balance, annualRate float64) float64 {
	return balance * NormalizeRate(annualRate) / constants.MonthsPerYear
}

// YearAmortization aggregates one simulated year of monthly payments.
type YearAmortization struct {
	Interest   float64
	Principal  float64
	Payments   float64
	EndBalance float64
}

// SimulateYear walks up to twelve monthly payments against the balance.
// Each month the interest accrues on the current balance and the remainder
// of the payment retires principal. The principal portion is clamped to
// [0, balance]: a payment smaller than the accrued interest counts entirely
// as interest rather than growing the balance.
func SimulateYear(balance, annualRate, monthlyPayment float64) YearAmortization {
	r := NormalizeRate(annualRate) / constants.MonthsPerYear
	var result YearAmortization
	result.EndBalance = balance

	for month := 0; month < constants.MonthsPerYear; month++ {
		if result.EndBalance <= 0 {
			break
		}
		interest := result.EndBalance * r
		principal := monthlyPayment - interest
		if principal < 0 {
			interest = monthlyPayment
			principal = 0
		}
		if principal > result.EndBalance {
			principal = result.EndBalance
		}
		result.Interest += interest
		result.Principal += principal
		result.Payments += interest + principal
		result.EndBalance -= principal
	}

	if result.EndBalance < 0 {
		result.EndBalance = 0
	}
	return result
}
