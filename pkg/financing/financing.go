// Package financing derives the maximum supportable loan for a property
// from its debt-coverage ratio and applies the lender loan-to-value rules.
package financing

import (
	"errors"
	"fmt"

	"github.com/plexvest/plexvest/pkg/constants"
	"github.com/plexvest/plexvest/pkg/mathutil"
	"github.com/plexvest/plexvest/pkg/mortgage"
	"github.com/plexvest/plexvest/pkg/property"
	"go.uber.org/zap"
)

// Type selects which set of financing fields to read from a property record.
type Type string

const (
	// TypeSCHL is an insured loan (LTV up to 95%).
	TypeSCHL Type = "schl"

	// TypeConventional is an uninsured loan (LTV up to 80%).
	TypeConventional Type = "conventional"
)

// ErrMissingDebtCoverage is returned when the debt-coverage ratio field for
// the requested loan type is zero or absent. There is no principled default
// for it, so loan sizing refuses to fabricate one; callers must treat this
// as an incomplete-data state.
var ErrMissingDebtCoverage = errors.New("debt-coverage ratio is zero or missing")

// DefaultAmortizationYears is used when a record carries no amortization
// term for the requested loan type.
const DefaultAmortizationYears = 25

// Loan is a sized loan with the parameters it was derived from.
type Loan struct {
	Type           Type
	Amount         float64
	LTV            float64 // percent of sale price
	MonthlyPayment float64
	Rate           float64 // annual, percent form
	Years          int
	DebtCoverage   float64
	Capped         bool
}

// LTVCap returns the loan-to-value ceiling in percent for a loan type.
func LTVCap(t Type) float64 {
	if t == TypeSCHL {
		return constants.InsuredLTVCap
	}
	return constants.ConventionalLTVCap
}

// fieldSet maps a loan type to its record field names.
func fieldSet(t Type) (coverage, rate, amortization string) {
	if t == TypeSCHL {
		return property.FieldSCHLDebtCoverage, property.FieldSCHLInterestRate, property.FieldSCHLAmortization
	}
	return property.FieldConvDebtCoverage, property.FieldConvInterestRate, property.FieldConvAmortization
}

// LoanFromDebtCoverage sizes the largest loan whose annuity payment the
// property's net operating income can carry at the required debt-coverage
// ratio, then applies the LTV ceiling for the loan type. rateOverride, when
// positive, replaces the record's interest rate.
//
// Net income is always recomputed from gross revenue and total expenses;
// the stored net-income field is never trusted.
func LoanFromDebtCoverage(logger *zap.Logger, rec property.Record, t Type, rateOverride float64) (Loan, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	coverageField, rateField, amortizationField := fieldSet(t)

	loan := Loan{Type: t}
	loan.DebtCoverage = rec.Number(coverageField)
	if loan.DebtCoverage == 0 {
		return loan, fmt.Errorf("field %s: %w", coverageField, ErrMissingDebtCoverage)
	}

	loan.Rate = rec.Percent(rateField)
	if rateOverride > 0 {
		loan.Rate = rateOverride
	}
	loan.Years = int(rec.Number(amortizationField))
	if loan.Years == 0 {
		logger.Debug(fmt.Sprintf("no amortization term for loan type %s, using %d years", t, DefaultAmortizationYears),
			zap.String("op", "financing.LoanFromDebtCoverage"),
		)
		loan.Years = DefaultAmortizationYears
	}

	netIncome := rec.NetIncome()
	maxPayment := netIncome / constants.MonthsPerYear / loan.DebtCoverage
	loan.Amount = mortgage.MaxLoan(maxPayment, loan.Rate, loan.Years)
	loan.MonthlyPayment = mortgage.MonthlyPayment(loan.Amount, loan.Rate, loan.Years)

	price := rec.SalePrice()
	if price > 0 {
		loan.LTV = mathutil.CalculatePercentage(loan.Amount, price)
		if ceiling := LTVCap(t); loan.LTV > ceiling {
			logger.Debug(fmt.Sprintf("capping %s loan from %.2f%% to %.2f%% LTV", t, loan.LTV, ceiling),
				zap.String("op", "financing.LoanFromDebtCoverage"),
			)
			loan.Amount = mathutil.ApplyPercentage(price, ceiling)
			loan.MonthlyPayment = mortgage.MonthlyPayment(loan.Amount, loan.Rate, loan.Years)
			loan.LTV = ceiling
			loan.Capped = true
		}
	}

	return loan, nil
}

// AchievedCoverage returns the debt-coverage ratio the loan actually
// achieves: annual net operating income over annual debt service. Capping a
// loan lowers its payment, so a capped loan achieves a higher ratio than
// the one it was sized against.
func (l Loan) AchievedCoverage(netIncome float64) float64 {
	if l.MonthlyPayment <= 0 {
		return 0
	}
	return netIncome / constants.MonthsPerYear / l.MonthlyPayment
}

// CoverageMet reports whether the loan's achieved debt-coverage ratio meets
// the required ratio recorded on the loan. A freshly sized loan sits exactly
// at the required ratio up to floating-point round-trip error, so the
// comparison carries a relative tolerance.
func (l Loan) CoverageMet(netIncome float64) bool {
	achieved := l.AchievedCoverage(netIncome)
	return achieved >= l.DebtCoverage ||
		mathutil.WithinRelativeTolerance(achieved, l.DebtCoverage, 1e-9)
}

// WithBankRules applies the bank financing floor: the bank lends against
// the least of the sale price, the real economic value, and the financing
// economic value. When that floor is below the price the loan is recapped
// using the loan type's LTV ceiling applied to the floor value rather than
// the price.
func (l Loan) WithBankRules(price, realValue, financingValue float64) Loan {
	floor := price
	if realValue > 0 && realValue < floor {
		floor = realValue
	}
	if financingValue > 0 && financingValue < floor {
		floor = financingValue
	}
	if floor >= price || floor <= 0 {
		return l
	}

	maxLoan := mathutil.ApplyPercentage(floor, LTVCap(l.Type))
	if l.Amount <= maxLoan {
		return l
	}

	capped := l
	capped.Amount = maxLoan
	capped.MonthlyPayment = mortgage.MonthlyPayment(maxLoan, l.Rate, l.Years)
	if price > 0 {
		capped.LTV = mathutil.CalculatePercentage(maxLoan, price)
	}
	capped.Capped = true
	return capped
}
