// Package analysis assembles a full investment report for one property:
// loan sizing for both financing types, mortgage-insurance premium,
// economic valuation, land-transfer tax, acquisition costs, and the
// multi-scenario cashflow projection.
package analysis

import (
	"context"
	"errors"
	"fmt"

	"github.com/plexvest/plexvest/internal/config"
	"github.com/plexvest/plexvest/pkg/financing"
	"github.com/plexvest/plexvest/pkg/insurance"
	"github.com/plexvest/plexvest/pkg/mathutil"
	"github.com/plexvest/plexvest/pkg/projection"
	"github.com/plexvest/plexvest/pkg/property"
	"github.com/plexvest/plexvest/pkg/tax"
	"github.com/plexvest/plexvest/pkg/valuation"
	"go.uber.org/zap"
)

// TableProvider supplies the lookup tables the engines consume. The
// Postgres store implements it; tests substitute fixtures.
type TableProvider interface {
	IncomeTaxBrackets(ctx context.Context, province string) (federal, provincial []tax.Bracket, err error)
	TransferBrackets(ctx context.Context, region string) ([]tax.Bracket, tax.Source, error)
	PlexPremiumTiers(ctx context.Context) ([]insurance.Tier, error)
	MultiUnitPremiumTiers(ctx context.Context) ([]insurance.MultiUnitTier, error)
}

// RegionLookup resolves coordinates to a region name.
type RegionLookup interface {
	Lookup(lat, lon float64) (string, bool)
}

// Engine orchestrates the calculation packages over externally supplied
// tables. It holds no mutable state across calls.
type Engine struct {
	tables   TableProvider
	regions  RegionLookup // may be nil
	defaults config.Defaults
	logger   *zap.Logger
}

// NewEngine creates an analysis engine. regions may be nil, in which case
// region resolution always falls back to the configured default region.
func NewEngine(tables TableProvider, regions RegionLookup, defaults config.Defaults, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{tables: tables, regions: regions, defaults: defaults, logger: logger}
}

// TransferTax reports the land-transfer tax with the source of its
// brackets.
type TransferTax struct {
	Region string     `json:"region"`
	Amount float64    `json:"amount"`
	Source tax.Source `json:"source"`
}

// AcquisitionCosts breaks down the cash required at acquisition.
type AcquisitionCosts struct {
	DownPayment   float64 `json:"downPayment"`
	TransferTax   float64 `json:"transferTax"`
	InspectionFee float64 `json:"inspectionFee"`
	NotaryFee     float64 `json:"notaryFee"`
	EvaluationFee float64 `json:"evaluationFee"`
	PremiumTax    float64 `json:"premiumTax"`
	Total         float64 `json:"total"`
}

// Report is the full analysis result for one property.
type Report struct {
	SalePrice float64 `json:"salePrice"`
	NetIncome float64 `json:"netIncome"`
	UnitCount int     `json:"unitCount"`

	Insured      *financing.Loan `json:"insured,omitempty"`
	Conventional *financing.Loan `json:"conventional,omitempty"`

	Premium     *insurance.Result `json:"premium,omitempty"`
	Valuation   valuation.Values  `json:"valuation"`
	TransferTax TransferTax       `json:"transferTax"`
	Acquisition AcquisitionCosts  `json:"acquisition"`

	Scenarios []projection.ScenarioResult `json:"scenarios,omitempty"`

	Warnings []string `json:"warnings,omitempty"`
}

// Analyze builds the full report for a property record.
func (e *Engine) Analyze(ctx context.Context, rec property.Record) (*Report, error) {
	report := &Report{
		SalePrice: rec.SalePrice(),
		NetIncome: rec.NetIncome(),
		UnitCount: rec.UnitCount(),
	}

	report.Valuation = valuation.Economic(rec, nil, valuation.Params{
		InsuredCapRate:      e.defaults.InsuredCapRate,
		ConventionalCapRate: e.defaults.ConventionalCapRate,
	})

	e.sizeLoans(rec, report)
	e.computePremium(ctx, rec, report)
	e.computeTransferTax(ctx, rec, report)
	e.computeAcquisitionCosts(report)
	if err := e.projectScenarios(ctx, rec, report); err != nil {
		return nil, err
	}

	return report, nil
}

// sizeLoans sizes both loan types and applies the bank financing floor.
// A missing debt-coverage ratio is an incomplete-data state for that loan
// type, not an analysis failure: the loan is omitted and a warning recorded.
func (e *Engine) sizeLoans(rec property.Record, report *Report) {
	for _, loanType := range []financing.Type{financing.TypeSCHL, financing.TypeConventional} {
		loan, err := financing.LoanFromDebtCoverage(e.logger, rec, loanType, 0)
		if err != nil {
			if errors.Is(err, financing.ErrMissingDebtCoverage) {
				report.Warnings = append(report.Warnings,
					fmt.Sprintf("cannot size %s loan: %v", loanType, err))
				continue
			}
			report.Warnings = append(report.Warnings, err.Error())
			continue
		}

		financingValue := report.Valuation.InsuredValue
		if loanType == financing.TypeConventional {
			financingValue = report.Valuation.ConventionalValue
		}
		sized := loan.WithBankRules(report.SalePrice, report.Valuation.RealValue, financingValue)

		if loanType == financing.TypeSCHL {
			report.Insured = &sized
		} else {
			report.Conventional = &sized
		}
	}
}

// computePremium runs the tiered premium lookup for the insured loan. A
// table load failure degrades to the hardcoded defaults inside the
// insurance package rather than failing the analysis.
func (e *Engine) computePremium(ctx context.Context, rec property.Record, report *Report) {
	if report.Insured == nil {
		return
	}

	plexTiers, err := e.tables.PlexPremiumTiers(ctx)
	if err != nil {
		e.logger.Warn("failed to load plex premium table, using defaults",
			zap.String("op", "analysis.computePremium"),
			zap.Error(err),
		)
		plexTiers = nil
	}
	multiTiers, err := e.tables.MultiUnitPremiumTiers(ctx)
	if err != nil {
		e.logger.Warn("failed to load multi-unit premium table, using defaults",
			zap.String("op", "analysis.computePremium"),
			zap.Error(err),
		)
		multiTiers = nil
	}

	coverageMet := report.Insured.CoverageMet(report.NetIncome)
	premium := insurance.Premium(report.Insured.Amount, report.SalePrice, report.UnitCount,
		coverageMet, plexTiers, multiTiers)
	report.Premium = &premium
	if premium.Source == insurance.SourceDefault {
		report.Warnings = append(report.Warnings, "insurance premium computed from the default rate table")
	}
}

// computeTransferTax resolves the property's region from its coordinates
// and applies that region's welcome-tax brackets.
func (e *Engine) computeTransferTax(ctx context.Context, rec property.Record, report *Report) {
	regionName := ""
	if e.regions != nil {
		lat, lon := rec.Coordinates()
		if name, ok := e.regions.Lookup(lat, lon); ok {
			regionName = name
		}
	}
	if regionName == "" {
		regionName = e.defaults.Region
	}

	brackets, source, err := e.tables.TransferBrackets(ctx, regionName)
	if err != nil {
		e.logger.Warn("failed to load land-transfer table, using default brackets",
			zap.String("op", "analysis.computeTransferTax"),
			zap.Error(err),
		)
		brackets = tax.DefaultQuebecTransferBrackets()
		source = tax.SourceDefaultTable
	}

	report.TransferTax = TransferTax{
		Region: regionName,
		Amount: tax.Transfer(report.SalePrice, brackets),
		Source: source,
	}
	if source != tax.SourceTable {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("land-transfer tax for %s computed from %s brackets", regionName, source))
	}
}

// computeAcquisitionCosts totals the cash required at acquisition from the
// sized loan, the welcome tax, and the configured fee line items.
func (e *Engine) computeAcquisitionCosts(report *Report) {
	loan := report.Insured
	if loan == nil {
		loan = report.Conventional
	}

	costs := AcquisitionCosts{
		TransferTax:   report.TransferTax.Amount,
		InspectionFee: e.defaults.AcquisitionCosts.InspectionFee,
		NotaryFee:     e.defaults.AcquisitionCosts.NotaryFee,
		EvaluationFee: e.defaults.AcquisitionCosts.EvaluationFee,
	}
	if loan != nil {
		costs.DownPayment = report.SalePrice - loan.Amount
	}
	if report.Premium != nil {
		costs.PremiumTax = mathutil.ApplyPercentage(report.Premium.Premium, e.defaults.AcquisitionCosts.PremiumTaxRate)
	}
	costs.Total = costs.DownPayment + costs.TransferTax + costs.InspectionFee +
		costs.NotaryFee + costs.EvaluationFee + costs.PremiumTax

	report.Acquisition = costs
}

// projectScenarios runs the four canonical rate scenarios against the best
// available loan.
func (e *Engine) projectScenarios(ctx context.Context, rec property.Record, report *Report) error {
	loan := report.Insured
	if loan == nil {
		loan = report.Conventional
	}
	if loan == nil {
		return nil
	}

	federal, provincial, err := e.tables.IncomeTaxBrackets(ctx, e.defaults.Province)
	if err != nil {
		return fmt.Errorf("failed to load income tax brackets: %w", err)
	}
	if len(provincial) == 0 {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("no %s tax brackets available; projections use federal tax only", e.defaults.Province))
	}

	cfg := projection.Config{
		Loan:           loan.Amount,
		Rate:           loan.Rate,
		Years:          loan.Years,
		GrossRevenue:   rec.Amount(property.FieldGrossRevenue),
		Expenses:       rec.Amount(property.FieldExpenses),
		InflationRate:  e.defaults.InflationRate,
		RentGrowthRate: e.defaults.RentGrowthRate,
		Depreciation: projection.Depreciation{
			Enabled: e.defaults.DepreciationRate > 0,
			Base:    report.SalePrice * e.defaults.BuildingPortion,
			Rate:    e.defaults.DepreciationRate,
		},
		Federal:    federal,
		Provincial: provincial,
	}

	report.Scenarios = projection.CompareScenarios(e.logger, cfg)
	return nil
}
