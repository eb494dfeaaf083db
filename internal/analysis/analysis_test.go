package analysis

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/plexvest/plexvest/internal/config"
	"github.com/plexvest/plexvest/pkg/insurance"
	"github.com/plexvest/plexvest/pkg/property"
	"github.com/plexvest/plexvest/pkg/tax"
)

// fixtureTables is an in-memory TableProvider for engine tests.
type fixtureTables struct {
	federal    []tax.Bracket
	provincial []tax.Bracket
	transfer   []tax.Bracket
	source     tax.Source

	bracketsErr error
	transferErr error
	premiumErr  error
}

func (f *fixtureTables) IncomeTaxBrackets(_ context.Context, _ string) ([]tax.Bracket, []tax.Bracket, error) {
	return f.federal, f.provincial, f.bracketsErr
}

func (f *fixtureTables) TransferBrackets(_ context.Context, _ string) ([]tax.Bracket, tax.Source, error) {
	return f.transfer, f.source, f.transferErr
}

func (f *fixtureTables) PlexPremiumTiers(_ context.Context) ([]insurance.Tier, error) {
	return nil, f.premiumErr
}

func (f *fixtureTables) MultiUnitPremiumTiers(_ context.Context) ([]insurance.MultiUnitTier, error) {
	return nil, f.premiumErr
}

// fixedRegion resolves every coordinate to one region name.
type fixedRegion struct {
	name string
}

func (r fixedRegion) Lookup(_, _ float64) (string, bool) {
	return r.name, r.name != ""
}

func testTables() *fixtureTables {
	return &fixtureTables{
		federal:    []tax.Bracket{{Lower: 0, Upper: tax.OpenUpper(), Rate: 15}},
		provincial: []tax.Bracket{{Lower: 0, Upper: tax.OpenUpper(), Rate: 10}},
		transfer:   tax.DefaultQuebecTransferBrackets(),
		source:     tax.SourceTable,
	}
}

func testRecord() property.Record {
	return property.Record{
		property.FieldSalePrice:        900000.0,
		property.FieldGrossRevenue:     90000.0,
		property.FieldExpenses:         30000.0,
		property.FieldUnitCount:        4,
		property.FieldSCHLDebtCoverage: 1.2,
		property.FieldSCHLInterestRate: 5.5,
		property.FieldSCHLAmortization: 25,
		property.FieldConvDebtCoverage: 1.3,
		property.FieldConvInterestRate: 6.0,
		property.FieldConvAmortization: 25,
		property.FieldSCHLCapRate:      6.0,
		property.FieldConvCapRate:      6.5,
	}
}

func TestAnalyzeFullReport(t *testing.T) {
	engine := NewEngine(testTables(), fixedRegion{name: "Montréal"}, config.Defaults{
		Province:            "Québec",
		Region:              "Laval",
		InflationRate:       2.0,
		RentGrowthRate:      2.0,
		InsuredCapRate:      4.5,
		ConventionalCapRate: 5.0,
		DepreciationRate:    4.0,
		BuildingPortion:     0.75,
		AcquisitionCosts: config.AcquisitionCosts{
			InspectionFee:  500,
			NotaryFee:      1500,
			EvaluationFee:  800,
			PremiumTaxRate: 9.0,
		},
	}, nil)

	report, err := engine.Analyze(context.Background(), testRecord())
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	if report.SalePrice != 900000 {
		t.Errorf("SalePrice = %v, expected 900000", report.SalePrice)
	}
	if report.NetIncome != 60000 {
		t.Errorf("NetIncome = %v, expected 60000", report.NetIncome)
	}
	if report.Insured == nil || report.Conventional == nil {
		t.Fatalf("expected both loans to be sized")
	}
	if report.Premium == nil {
		t.Fatalf("expected a premium for the insured loan")
	}
	if report.Premium.Premium <= 0 {
		t.Errorf("Premium = %v, expected a positive premium", report.Premium.Premium)
	}
	if report.TransferTax.Region != "Montréal" {
		t.Errorf("TransferTax.Region = %q, expected coordinate lookup to win over the default", report.TransferTax.Region)
	}
	if report.TransferTax.Amount <= 0 {
		t.Errorf("TransferTax.Amount = %v, expected a positive tax", report.TransferTax.Amount)
	}
	if len(report.Scenarios) != 4 {
		t.Errorf("len(Scenarios) = %d, expected 4", len(report.Scenarios))
	}

	expectedDown := report.SalePrice - report.Insured.Amount
	if math.Abs(report.Acquisition.DownPayment-expectedDown) > 0.01 {
		t.Errorf("DownPayment = %v, expected %v", report.Acquisition.DownPayment, expectedDown)
	}
	expectedPremiumTax := report.Premium.Premium * 0.09
	if math.Abs(report.Acquisition.PremiumTax-expectedPremiumTax) > 0.01 {
		t.Errorf("PremiumTax = %v, expected %v", report.Acquisition.PremiumTax, expectedPremiumTax)
	}
	sum := report.Acquisition.DownPayment + report.Acquisition.TransferTax +
		report.Acquisition.InspectionFee + report.Acquisition.NotaryFee +
		report.Acquisition.EvaluationFee + report.Acquisition.PremiumTax
	if math.Abs(report.Acquisition.Total-sum) > 0.01 {
		t.Errorf("Acquisition.Total = %v, expected sum of line items %v", report.Acquisition.Total, sum)
	}
}

// A missing debt-coverage ratio skips that loan with a warning instead of
// failing the whole analysis.
func TestAnalyzeMissingDebtCoverage(t *testing.T) {
	rec := testRecord()
	delete(rec, property.FieldSCHLDebtCoverage)

	engine := NewEngine(testTables(), nil, config.Defaults{Province: "Québec", Region: "Montréal"}, nil)
	report, err := engine.Analyze(context.Background(), rec)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	if report.Insured != nil {
		t.Errorf("expected no insured loan without a debt-coverage ratio")
	}
	if report.Conventional == nil {
		t.Errorf("expected the conventional loan to still be sized")
	}
	if report.Premium != nil {
		t.Errorf("expected no premium without an insured loan")
	}
	found := false
	for _, w := range report.Warnings {
		if strings.Contains(w, "schl") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a warning about the unsized schl loan, got %v", report.Warnings)
	}
	// Scenarios fall back to the conventional loan.
	if len(report.Scenarios) != 4 {
		t.Errorf("len(Scenarios) = %d, expected 4 from the conventional loan", len(report.Scenarios))
	}
}

// An LTV-capped multi-unit loan carries a reduced payment and so covers its
// debt service better than required; the premium must come from the met
// column of the multi-unit table, not the penalized one.
func TestAnalyzeCappedMultiUnitPremiumColumn(t *testing.T) {
	rec := testRecord()
	rec[property.FieldSalePrice] = 400000.0
	rec[property.FieldGrossRevenue] = 130000.0
	rec[property.FieldExpenses] = 30000.0
	rec[property.FieldUnitCount] = 8

	engine := NewEngine(testTables(), nil, config.Defaults{
		Province:       "Québec",
		Region:         "Montréal",
		InsuredCapRate: 4.5,
	}, nil)
	report, err := engine.Analyze(context.Background(), rec)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	if report.Insured == nil || !report.Insured.Capped {
		t.Fatalf("expected a capped insured loan")
	}
	if report.Premium == nil {
		t.Fatalf("expected a premium for the insured loan")
	}
	// Default multi-unit table, 85% tier: met 4.50, not met 5.25.
	if report.Premium.Rate != 4.50 {
		t.Errorf("Premium.Rate = %v, expected the met-column rate 4.50", report.Premium.Rate)
	}
}

func TestAnalyzeRegionFallback(t *testing.T) {
	engine := NewEngine(testTables(), nil, config.Defaults{Province: "Québec", Region: "Montréal"}, nil)
	report, err := engine.Analyze(context.Background(), testRecord())
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if report.TransferTax.Region != "Montréal" {
		t.Errorf("TransferTax.Region = %q, expected the configured default", report.TransferTax.Region)
	}
}

// A non-table transfer source must surface as a warning.
func TestAnalyzeTransferSourceWarning(t *testing.T) {
	tables := testTables()
	tables.source = tax.SourceRegionFallback

	engine := NewEngine(tables, nil, config.Defaults{Province: "Québec", Region: "Trois-Rivières"}, nil)
	report, err := engine.Analyze(context.Background(), testRecord())
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	found := false
	for _, w := range report.Warnings {
		if strings.Contains(w, string(tax.SourceRegionFallback)) {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a warning about fallback transfer brackets, got %v", report.Warnings)
	}
}

// A failed transfer-table load degrades to the hardcoded Québec brackets.
func TestAnalyzeTransferTableFailure(t *testing.T) {
	tables := testTables()
	tables.transferErr = errors.New("connection refused")

	engine := NewEngine(tables, nil, config.Defaults{Province: "Québec", Region: "Montréal"}, nil)
	report, err := engine.Analyze(context.Background(), testRecord())
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	if report.TransferTax.Source != tax.SourceDefaultTable {
		t.Errorf("TransferTax.Source = %s, expected %s", report.TransferTax.Source, tax.SourceDefaultTable)
	}
	if report.TransferTax.Amount <= 0 {
		t.Errorf("TransferTax.Amount = %v, expected the default brackets to apply", report.TransferTax.Amount)
	}
}

// Income tax brackets are load-bearing for the projection; their failure
// fails the analysis.
func TestAnalyzeBracketLoadFailure(t *testing.T) {
	tables := testTables()
	tables.bracketsErr = errors.New("connection refused")

	engine := NewEngine(tables, nil, config.Defaults{Province: "Québec", Region: "Montréal"}, nil)
	if _, err := engine.Analyze(context.Background(), testRecord()); err == nil {
		t.Fatalf("expected an error when income tax brackets cannot be loaded")
	}
}
