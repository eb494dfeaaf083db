package mortgage

import (
	"math"
	"testing"

	"github.com/plexvest/plexvest/pkg/mathutil"
)

func TestMonthlyPayment(t *testing.T) {
	tests := []struct {
		name          string
		principal     float64
		annualRate    float64
		years         int
		expectedRange []float64 // [min, max]
	}{
		{
			name:          "Standard 25-year mortgage",
			principal:     300000,
			annualRate:    5.5,
			years:         25,
			expectedRange: []float64{1840, 1845}, // Around $1842
		},
		{
			name:          "Rate passed in decimal form",
			principal:     300000,
			annualRate:    0.055,
			years:         25,
			expectedRange: []float64{1840, 1845}, // Same as percent form
		},
		{
			name:          "Zero interest loan",
			principal:     120000,
			annualRate:    0,
			years:         10,
			expectedRange: []float64{1000, 1000}, // Exactly principal / 120
		},
		{
			name:          "High interest loan",
			principal:     100000,
			annualRate:    18.0,
			years:         5,
			expectedRange: []float64{2530, 2550}, // Around $2539
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := MonthlyPayment(tt.principal, tt.annualRate, tt.years)
			if result < tt.expectedRange[0] || result > tt.expectedRange[1] {
				t.Errorf("MonthlyPayment() = %.2f, expected range [%.2f, %.2f]",
					result, tt.expectedRange[0], tt.expectedRange[1])
			}
		})
	}
}

// Payment at a zero rate must degrade to exact linear amortization.
func TestMonthlyPaymentZeroRateExact(t *testing.T) {
	got := MonthlyPayment(120000, 0, 10)
	want := 120000.0 / (10 * 12)
	if got != want {
		t.Errorf("MonthlyPayment(120000, 0, 10) = %v, expected exactly %v", got, want)
	}
}

// MaxLoan must invert MonthlyPayment within floating-point tolerance.
func TestMaxLoanInverseLaw(t *testing.T) {
	tests := []struct {
		name  string
		loan  float64
		rate  float64
		years int
	}{
		{name: "Typical mortgage", loan: 450000, rate: 5.5, years: 25},
		{name: "Short term", loan: 80000, rate: 7.25, years: 5},
		{name: "Long term low rate", loan: 1000000, rate: 2.1, years: 35},
		{name: "Small loan", loan: 1500, rate: 9.9, years: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payment := MonthlyPayment(tt.loan, tt.rate, tt.years)
			recovered := MaxLoan(payment, tt.rate, tt.years)
			if !mathutil.WithinRelativeTolerance(recovered, tt.loan, 1e-6) {
				t.Errorf("MaxLoan(MonthlyPayment(%v)) = %v, relative error too large", tt.loan, recovered)
			}
		})
	}
}

func TestMaxLoanZeroRate(t *testing.T) {
	got := MaxLoan(1000, 0, 10)
	if got != 120000 {
		t.Errorf("MaxLoan(1000, 0, 10) = %v, expected 120000", got)
	}
}

func TestInterestPayment(t *testing.T) {
	// 200000 * 0.06 / 12 = 1000
	got := InterestPayment(200000, 6.0)
	if math.Abs(got-1000) > 0.01 {
		t.Errorf("InterestPayment(200000, 6.0) = %v, expected 1000", got)
	}
}

func TestSimulateYear(t *testing.T) {
	t.Run("Zero rate retires pure principal", func(t *testing.T) {
		result := SimulateYear(120000, 0, 1000)
		if result.Interest != 0 {
			t.Errorf("Interest = %v, expected 0", result.Interest)
		}
		if result.Principal != 12000 {
			t.Errorf("Principal = %v, expected 12000", result.Principal)
		}
		if result.EndBalance != 108000 {
			t.Errorf("EndBalance = %v, expected 108000", result.EndBalance)
		}
	})

	t.Run("Payment below interest counts entirely as interest", func(t *testing.T) {
		// Interest on 100000 at 12% is 1000/month; a 400 payment cannot
		// cover it, so principal must stay untouched.
		result := SimulateYear(100000, 12.0, 400)
		if result.Principal != 0 {
			t.Errorf("Principal = %v, expected 0", result.Principal)
		}
		if result.EndBalance != 100000 {
			t.Errorf("EndBalance = %v, expected 100000 (no negative amortization)", result.EndBalance)
		}
		if math.Abs(result.Interest-4800) > 1e-9 {
			t.Errorf("Interest = %v, expected 4800 (12 x 400)", result.Interest)
		}
	})

	t.Run("Final payments clamp to balance", func(t *testing.T) {
		result := SimulateYear(5000, 0, 1000)
		if result.Principal != 5000 {
			t.Errorf("Principal = %v, expected 5000", result.Principal)
		}
		if result.EndBalance != 0 {
			t.Errorf("EndBalance = %v, expected 0", result.EndBalance)
		}
	})

	t.Run("Full year against amortizing loan", func(t *testing.T) {
		payment := MonthlyPayment(300000, 5.5, 25)
		result := SimulateYear(300000, 5.5, payment)
		if result.EndBalance >= 300000 {
			t.Errorf("EndBalance = %v, expected balance to decline", result.EndBalance)
		}
		if math.Abs(result.Payments-payment*12) > 0.01 {
			t.Errorf("Payments = %v, expected %v", result.Payments, payment*12)
		}
		if math.Abs(result.Interest+result.Principal-result.Payments) > 1e-6 {
			t.Errorf("Interest + Principal = %v does not equal Payments = %v",
				result.Interest+result.Principal, result.Payments)
		}
	})
}

func TestNormalizeRate(t *testing.T) {
	tests := []struct {
		name     string
		rate     float64
		expected float64
	}{
		{name: "Percent form", rate: 5.5, expected: 0.055},
		{name: "Decimal form", rate: 0.055, expected: 0.055},
		{name: "Exactly one", rate: 1.0, expected: 1.0},
		{name: "Zero", rate: 0, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeRate(tt.rate); math.Abs(got-tt.expected) > 1e-12 {
				t.Errorf("NormalizeRate(%v) = %v, expected %v", tt.rate, got, tt.expected)
			}
		})
	}
}
