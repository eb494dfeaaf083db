// Package constants provides shared constants for the plexvest engine.
package constants

// Financial constants
const (
	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12

	// DecimalPrecision is the precision for currency rounding (2 decimal places)
	DecimalPrecision = 100

	// CurrencyTolerance is the tolerance for currency comparisons (1 cent)
	CurrencyTolerance = 0.01

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0

	// ZeroRateTolerance is the threshold under which an interest rate is
	// treated as zero and the annuity formula degrades to linear amortization
	ZeroRateTolerance = 1e-9
)

// Loan-to-value caps
const (
	// InsuredLTVCap is the maximum loan-to-value percentage for an
	// insured (SCHL) loan
	InsuredLTVCap = 95.0

	// ConventionalLTVCap is the maximum loan-to-value percentage for a
	// conventional loan
	ConventionalLTVCap = 80.0

	// MultiUnitLTVCap is the maximum insurable loan-to-value percentage
	// for properties with six or more units
	MultiUnitLTVCap = 85.0

	// MultiUnitThreshold is the unit count at which the multi-unit
	// insurance premium table applies
	MultiUnitThreshold = 6
)

// Valuation defaults
const (
	// DefaultInsuredCapRate is the conservative financing cap rate used
	// when a property record carries none for the insured loan type
	DefaultInsuredCapRate = 4.5

	// DefaultConventionalCapRate is the conservative financing cap rate
	// used when a property record carries none for the conventional loan type
	DefaultConventionalCapRate = 5.0
)

// Tax defaults
const (
	// DefaultCorporateRate is the combined corporate tax rate used when
	// no table row matches the requested province or the federal fallback
	DefaultCorporateRate = 26.5
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the API
	DefaultServerAddress = ":8080"

	// DefaultMaxBodyBytes is the default maximum request body size (256 KB)
	DefaultMaxBodyBytes int64 = 256 * 1024
)
