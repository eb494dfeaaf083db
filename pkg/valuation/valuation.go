// Package valuation computes cap-rate-based economic values for a property:
// the real market value, the values a lender will finance against, and the
// resulting profit at acquisition.
package valuation

import (
	"github.com/plexvest/plexvest/pkg/constants"
	"github.com/plexvest/plexvest/pkg/mathutil"
	"github.com/plexvest/plexvest/pkg/property"
)

// Params carries the conservative cap-rate defaults used when a property
// record does not supply financing cap rates of its own.
type Params struct {
	InsuredCapRate      float64
	ConventionalCapRate float64
}

// DefaultParams returns the conservative financing cap-rate defaults.
func DefaultParams() Params {
	return Params{
		InsuredCapRate:      constants.DefaultInsuredCapRate,
		ConventionalCapRate: constants.DefaultConventionalCapRate,
	}
}

// Values is the result of an economic valuation. All cap rates are in
// percent.
type Values struct {
	SalePrice         float64
	OriginalNetIncome float64
	NetIncome         float64 // after any revenue override

	RealCapRate         float64 // original net income over price
	ReferenceCapRate    float64 // market reference used for the real value
	InsuredCapRate      float64
	ConventionalCapRate float64

	RealValue         float64 // overridden net income / reference cap rate
	InsuredValue      float64 // original net income / insured financing cap rate
	ConventionalValue float64 // original net income / conventional financing cap rate

	InsuredAcquisitionProfit      float64 // percent, real value vs insured financing value
	ConventionalAcquisitionProfit float64 // percent, real value vs conventional financing value
}

// Economic derives the economic values for a property record. A non-nil
// netIncomeOverride replaces the net operating income for the real market
// value only: the reference cap rate and both financing values always use
// the original (un-overridden) net income, so the reference stays stable
// across revenue scenarios.
func Economic(rec property.Record, netIncomeOverride *float64, params Params) Values {
	v := Values{
		SalePrice:           rec.SalePrice(),
		OriginalNetIncome:   rec.NetIncome(),
		InsuredCapRate:      rec.Percent(property.FieldSCHLCapRate),
		ConventionalCapRate: rec.Percent(property.FieldConvCapRate),
	}
	v.NetIncome = v.OriginalNetIncome
	if netIncomeOverride != nil {
		v.NetIncome = *netIncomeOverride
	}

	if v.InsuredCapRate == 0 {
		v.InsuredCapRate = params.InsuredCapRate
	}
	if v.ConventionalCapRate == 0 {
		v.ConventionalCapRate = params.ConventionalCapRate
	}

	v.RealCapRate = mathutil.CalculatePercentage(v.OriginalNetIncome, v.SalePrice)
	v.ReferenceCapRate = rec.Percent(property.FieldMarketTGA)
	if v.ReferenceCapRate == 0 {
		v.ReferenceCapRate = v.RealCapRate
	}

	v.RealValue = capitalize(v.NetIncome, v.ReferenceCapRate)
	v.InsuredValue = capitalize(v.OriginalNetIncome, v.InsuredCapRate)
	v.ConventionalValue = capitalize(v.OriginalNetIncome, v.ConventionalCapRate)

	v.InsuredAcquisitionProfit = mathutil.CalculatePercentage(v.RealValue-v.InsuredValue, v.InsuredValue)
	v.ConventionalAcquisitionProfit = mathutil.CalculatePercentage(v.RealValue-v.ConventionalValue, v.ConventionalValue)

	return v
}

// capitalize divides net income by a cap rate expressed in percent.
func capitalize(netIncome, capRate float64) float64 {
	if capRate == 0 {
		return 0
	}
	return netIncome / (capRate / constants.PercentageMultiplier)
}
