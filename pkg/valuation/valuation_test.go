package valuation

import (
	"math"
	"testing"

	"github.com/plexvest/plexvest/pkg/property"
)

func valuationRecord() property.Record {
	return property.Record{
		property.FieldSalePrice:    500000.0,
		property.FieldGrossRevenue: 60000.0,
		property.FieldExpenses:     20000.0,
		property.FieldSCHLCapRate:  4.0,
		property.FieldConvCapRate:  5.0,
	}
}

func TestEconomic(t *testing.T) {
	v := Economic(valuationRecord(), nil, DefaultParams())

	if v.OriginalNetIncome != 40000 {
		t.Errorf("OriginalNetIncome = %v, expected 40000", v.OriginalNetIncome)
	}
	if math.Abs(v.RealCapRate-8.0) > 1e-9 {
		t.Errorf("RealCapRate = %v, expected 8.0", v.RealCapRate)
	}
	// No market reference on the record: real cap rate is the reference.
	if v.ReferenceCapRate != v.RealCapRate {
		t.Errorf("ReferenceCapRate = %v, expected fallback to real cap rate %v", v.ReferenceCapRate, v.RealCapRate)
	}
	if math.Abs(v.RealValue-500000) > 0.01 {
		t.Errorf("RealValue = %v, expected 500000", v.RealValue)
	}
	// 40000 / 4% and 40000 / 5%.
	if math.Abs(v.InsuredValue-1000000) > 0.01 {
		t.Errorf("InsuredValue = %v, expected 1000000", v.InsuredValue)
	}
	if math.Abs(v.ConventionalValue-800000) > 0.01 {
		t.Errorf("ConventionalValue = %v, expected 800000", v.ConventionalValue)
	}
}

func TestEconomicMarketReference(t *testing.T) {
	rec := valuationRecord()
	rec[property.FieldMarketTGA] = 5.0

	v := Economic(rec, nil, DefaultParams())
	if v.ReferenceCapRate != 5.0 {
		t.Errorf("ReferenceCapRate = %v, expected market reference 5.0", v.ReferenceCapRate)
	}
	if math.Abs(v.RealValue-800000) > 0.01 {
		t.Errorf("RealValue = %v, expected 40000 / 5%% = 800000", v.RealValue)
	}
}

// A revenue override moves the real market value only. The reference cap
// rate and both financing values must stay pinned to the original income.
func TestEconomicOverrideScopedToRealValue(t *testing.T) {
	base := Economic(valuationRecord(), nil, DefaultParams())

	override := 50000.0
	v := Economic(valuationRecord(), &override, DefaultParams())

	if v.NetIncome != 50000 {
		t.Errorf("NetIncome = %v, expected override 50000", v.NetIncome)
	}
	if v.OriginalNetIncome != 40000 {
		t.Errorf("OriginalNetIncome = %v, expected 40000", v.OriginalNetIncome)
	}
	if v.ReferenceCapRate != base.ReferenceCapRate {
		t.Errorf("ReferenceCapRate = %v, expected unchanged %v", v.ReferenceCapRate, base.ReferenceCapRate)
	}
	// 50000 / 8%.
	if math.Abs(v.RealValue-625000) > 0.01 {
		t.Errorf("RealValue = %v, expected 625000", v.RealValue)
	}
	if v.InsuredValue != base.InsuredValue {
		t.Errorf("InsuredValue = %v, expected unchanged %v", v.InsuredValue, base.InsuredValue)
	}
	if v.ConventionalValue != base.ConventionalValue {
		t.Errorf("ConventionalValue = %v, expected unchanged %v", v.ConventionalValue, base.ConventionalValue)
	}
}

func TestEconomicDefaultCapRates(t *testing.T) {
	rec := valuationRecord()
	delete(rec, property.FieldSCHLCapRate)
	delete(rec, property.FieldConvCapRate)

	v := Economic(rec, nil, DefaultParams())
	if v.InsuredCapRate != 4.5 {
		t.Errorf("InsuredCapRate = %v, expected default 4.5", v.InsuredCapRate)
	}
	if v.ConventionalCapRate != 5.0 {
		t.Errorf("ConventionalCapRate = %v, expected default 5.0", v.ConventionalCapRate)
	}
}

func TestEconomicAcquisitionProfit(t *testing.T) {
	v := Economic(valuationRecord(), nil, DefaultParams())

	// (500000 - 1000000) / 1000000 = -50%.
	if math.Abs(v.InsuredAcquisitionProfit-(-50)) > 0.01 {
		t.Errorf("InsuredAcquisitionProfit = %v, expected -50", v.InsuredAcquisitionProfit)
	}
	// (500000 - 800000) / 800000 = -37.5%.
	if math.Abs(v.ConventionalAcquisitionProfit-(-37.5)) > 0.01 {
		t.Errorf("ConventionalAcquisitionProfit = %v, expected -37.5", v.ConventionalAcquisitionProfit)
	}
}

func TestEconomicZeroPrice(t *testing.T) {
	rec := property.Record{
		property.FieldGrossRevenue: 60000.0,
		property.FieldExpenses:     20000.0,
	}
	v := Economic(rec, nil, DefaultParams())
	if v.RealCapRate != 0 {
		t.Errorf("RealCapRate = %v, expected 0 for a zero price", v.RealCapRate)
	}
	if v.RealValue != 0 {
		t.Errorf("RealValue = %v, expected 0 when no reference cap rate exists", v.RealValue)
	}
}
