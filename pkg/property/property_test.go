package property

import (
	"math"
	"testing"
)

func TestAccessors(t *testing.T) {
	rec := Record{
		FieldSalePrice:        "1 200 000 $",
		FieldGrossRevenue:     96000.0,
		FieldExpenses:         "36,000",
		FieldUnitCount:        12,
		FieldSCHLInterestRate: "5,5 %",
		FieldLatitude:         45.5017,
		FieldLongitude:        -73.5673,
	}

	if got := rec.SalePrice(); got != 1200000 {
		t.Errorf("SalePrice() = %v, expected 1200000", got)
	}
	if got := rec.Percent(FieldSCHLInterestRate); math.Abs(got-5.5) > 1e-9 {
		t.Errorf("Percent(interest rate) = %v, expected 5.5", got)
	}
	if got := rec.UnitCount(); got != 12 {
		t.Errorf("UnitCount() = %v, expected 12", got)
	}
	lat, lon := rec.Coordinates()
	if lat != 45.5017 || lon != -73.5673 {
		t.Errorf("Coordinates() = (%v, %v), expected (45.5017, -73.5673)", lat, lon)
	}
}

// Net income is always recomputed from gross revenue and expenses; a stored
// net revenue field must not influence it.
func TestNetIncomeRecomputed(t *testing.T) {
	rec := Record{
		FieldGrossRevenue: 96000.0,
		FieldExpenses:     36000.0,
		FieldNetRevenue:   999999.0, // stale, must be ignored
	}

	if got := rec.NetIncome(); got != 60000 {
		t.Errorf("NetIncome() = %v, expected recomputed 60000", got)
	}
}

func TestMissingFields(t *testing.T) {
	rec := Record{}

	if got := rec.SalePrice(); got != 0 {
		t.Errorf("SalePrice() on an empty record = %v, expected 0", got)
	}
	if got := rec.NetIncome(); got != 0 {
		t.Errorf("NetIncome() on an empty record = %v, expected 0", got)
	}
	if got := rec.String("whatever"); got != "" {
		t.Errorf("String() on an absent field = %q, expected empty", got)
	}
}

func TestStringRendersNonStrings(t *testing.T) {
	rec := Record{FieldUnitCount: 6}
	if got := rec.String(FieldUnitCount); got != "6" {
		t.Errorf("String(unit count) = %q, expected \"6\"", got)
	}
}
