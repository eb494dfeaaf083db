// Package projection simulates multi-year property cashflows: revenue and
// expense growth, mortgage amortization with term-renewal rate changes,
// depreciation, and income tax, producing one row per year.
package projection

import (
	"fmt"

	"github.com/plexvest/plexvest/pkg/constants"
	"github.com/plexvest/plexvest/pkg/mortgage"
	"github.com/plexvest/plexvest/pkg/tax"
	"go.uber.org/zap"
)

// Depreciation configures the capital cost allowance deduction.
type Depreciation struct {
	Enabled bool
	Base    float64 // depreciable building value
	Rate    float64 // percent per year, straight line
}

// Config holds the inputs for one projection run.
type Config struct {
	Loan  float64
	Rate  float64 // annual interest rate, percent form
	Years int

	GrossRevenue float64
	Expenses     float64

	InflationRate  float64 // percent per year applied to expenses
	RentGrowthRate float64 // percent per year applied to revenue

	// RateChanges maps a year ordinal (1-based) to a new annual rate,
	// representing term renewals. Sparse: most years have no entry.
	RateChanges map[int]float64

	Depreciation Depreciation

	Federal    []tax.Bracket
	Provincial []tax.Bracket
}

// Year is one simulated year of the projection.
type Year struct {
	Year int
	Rate float64

	Revenue   float64
	Expenses  float64
	NetIncome float64

	MonthlyPayment float64
	Interest       float64
	Principal      float64
	EndBalance     float64

	Depreciation  float64
	TaxableIncome float64
	Tax           float64
	TaxSource     tax.Source

	Cashflow        float64
	MonthlyCashflow float64
}

// Project runs the year-stepped cashflow simulation. It stops when the loan
// balance reaches zero or the configured number of years is exhausted.
func Project(logger *zap.Logger, cfg Config) []Year {
	if logger == nil {
		logger = zap.NewNop()
	}

	years := make([]Year, 0, cfg.Years)
	balance := cfg.Loan
	rate := cfg.Rate
	revenue := cfg.GrossRevenue
	expenses := cfg.Expenses
	payment := mortgage.MonthlyPayment(cfg.Loan, rate, cfg.Years)
	depreciated := 0.0

	for yr := 1; yr <= cfg.Years; yr++ {
		if yr > 1 {
			revenue *= 1 + cfg.RentGrowthRate/constants.PercentageMultiplier
			expenses *= 1 + cfg.InflationRate/constants.PercentageMultiplier
		}

		if newRate, ok := cfg.RateChanges[yr]; ok && newRate != rate {
			remaining := cfg.Years - yr + 1
			logger.Debug(fmt.Sprintf("year %d: rate renewal %.2f%% -> %.2f%%, recomputing payment over %d years",
				yr, rate, newRate, remaining),
				zap.String("op", "projection.Project"),
			)
			rate = newRate
			payment = mortgage.MonthlyPayment(balance, rate, remaining)
		}

		amortized := mortgage.SimulateYear(balance, rate, payment)

		row := Year{
			Year:           yr,
			Rate:           rate,
			Revenue:        revenue,
			Expenses:       expenses,
			NetIncome:      revenue - expenses,
			MonthlyPayment: payment,
			Interest:       amortized.Interest,
			Principal:      amortized.Principal,
			EndBalance:     amortized.EndBalance,
		}

		row.Depreciation = deduction(cfg.Depreciation, yr, depreciated, row.NetIncome-row.Interest)
		depreciated += row.Depreciation

		row.TaxableIncome = row.NetIncome - row.Interest - row.Depreciation
		if row.TaxableIncome < 0 {
			row.TaxableIncome = 0
		}
		taxed := tax.Income(row.TaxableIncome, cfg.Federal, cfg.Provincial)
		row.Tax = taxed.Total
		row.TaxSource = taxed.Source

		row.Cashflow = row.NetIncome - row.Tax - row.Interest - row.Principal
		row.MonthlyCashflow = row.Cashflow / constants.MonthsPerYear

		years = append(years, row)
		balance = amortized.EndBalance
		if balance <= 0 {
			break
		}
	}

	return years
}

// deduction computes the depreciation claim for one year: straight line on
// the depreciable base with the half-year rule in year one, capped both by
// the undepreciated base and by the income remaining after interest so the
// claim can never create a loss.
func deduction(cfg Depreciation, year int, depreciated, incomeAfterInterest float64) float64 {
	if !cfg.Enabled || cfg.Base <= 0 || cfg.Rate <= 0 {
		return 0
	}
	claim := cfg.Base * cfg.Rate / constants.PercentageMultiplier
	if year == 1 {
		claim /= 2
	}
	if remaining := cfg.Base - depreciated; claim > remaining {
		claim = remaining
	}
	if incomeAfterInterest < 0 {
		return 0
	}
	if claim > incomeAfterInterest {
		claim = incomeAfterInterest
	}
	if claim < 0 {
		claim = 0
	}
	return claim
}
