// Package config defines the data structures related to configuration and
// includes functions for loading and validating the config.
package config

import (
	"fmt"

	"github.com/plexvest/plexvest/pkg/constants"
	"github.com/spf13/viper"
)

// Configuration holds all configuration for plexvest.
type Configuration struct {
	Database DatabaseConfig `yaml:"database"`
	Logging  LoggingConfig  `yaml:"logging,omitempty"`
	Output   OutputConfig   `yaml:"output,omitempty"`
	Server   ServerConfig   `yaml:"server,omitempty"`
	Regions  RegionsConfig  `yaml:"regions,omitempty"`
	Defaults Defaults       `yaml:"defaults,omitempty"`
}

// DatabaseConfig holds the Postgres connection options. URL falls back to
// the DATABASE_URL environment variable when empty.
type DatabaseConfig struct {
	URL string `yaml:"url,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv
}

// ServerConfig holds the HTTP API options.
type ServerConfig struct {
	Address      string `yaml:"address,omitempty"`
	MaxBodyBytes int64  `yaml:"maxBodyBytes,omitempty"`
}

// RegionsConfig points at the municipal boundary shapefile used for the
// coordinate-to-region lookup. Optional: without it, region resolution
// degrades to the configured default region.
type RegionsConfig struct {
	ShapefilePath string `yaml:"shapefilePath,omitempty"`
	NameField     string `yaml:"nameField,omitempty"`
}

// Defaults is the explicit engine-parameter set threaded into every
// analysis call. It replaces process-wide mutable globals: every field has
// a constructor default and nothing is read from package state at
// calculation time.
type Defaults struct {
	Province            string           `yaml:"province,omitempty"`
	Region              string           `yaml:"region,omitempty"`
	InflationRate       float64          `yaml:"inflationRate,omitempty"`       // percent per year
	RentGrowthRate      float64          `yaml:"rentGrowthRate,omitempty"`      // percent per year
	InsuredCapRate      float64          `yaml:"insuredCapRate,omitempty"`      // percent
	ConventionalCapRate float64          `yaml:"conventionalCapRate,omitempty"` // percent
	DepreciationRate    float64          `yaml:"depreciationRate,omitempty"`    // percent per year
	BuildingPortion     float64          `yaml:"buildingPortion,omitempty"`     // share of price that is depreciable building
	AcquisitionCosts    AcquisitionCosts `yaml:"acquisitionCosts,omitempty"`
}

// AcquisitionCosts holds the fee line items added to the cash required at
// acquisition.
type AcquisitionCosts struct {
	InspectionFee  float64 `yaml:"inspectionFee,omitempty"`
	NotaryFee      float64 `yaml:"notaryFee,omitempty"`
	EvaluationFee  float64 `yaml:"evaluationFee,omitempty"`
	PremiumTaxRate float64 `yaml:"premiumTaxRate,omitempty"` // sales tax on the insurance premium, percent
}

// DefaultDefaults returns the engine parameter defaults used when the
// config file omits them.
func DefaultDefaults() Defaults {
	return Defaults{
		Province:            "Québec",
		Region:              "Montréal",
		InflationRate:       2.0,
		RentGrowthRate:      2.0,
		InsuredCapRate:      constants.DefaultInsuredCapRate,
		ConventionalCapRate: constants.DefaultConventionalCapRate,
		DepreciationRate:    4.0,
		BuildingPortion:     0.75,
		AcquisitionCosts: AcquisitionCosts{
			InspectionFee:  500,
			NotaryFee:      1500,
			EvaluationFee:  800,
			PremiumTaxRate: 9.0,
		},
	}
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	viper.SetConfigFile(configPath)
	viper.AutomaticEnv()

	viper.SetConfigType("yml")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}

	var configuration Configuration
	err := viper.Unmarshal(&configuration)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	configuration.applyDefaults()

	return &configuration, nil
}

// applyDefaults fills any zero-valued engine parameters from the
// constructor defaults.
func (c *Configuration) applyDefaults() {
	defaults := DefaultDefaults()
	if c.Defaults.Province == "" {
		c.Defaults.Province = defaults.Province
	}
	if c.Defaults.Region == "" {
		c.Defaults.Region = defaults.Region
	}
	if c.Defaults.InflationRate == 0 {
		c.Defaults.InflationRate = defaults.InflationRate
	}
	if c.Defaults.RentGrowthRate == 0 {
		c.Defaults.RentGrowthRate = defaults.RentGrowthRate
	}
	if c.Defaults.InsuredCapRate == 0 {
		c.Defaults.InsuredCapRate = defaults.InsuredCapRate
	}
	if c.Defaults.ConventionalCapRate == 0 {
		c.Defaults.ConventionalCapRate = defaults.ConventionalCapRate
	}
	if c.Defaults.DepreciationRate == 0 {
		c.Defaults.DepreciationRate = defaults.DepreciationRate
	}
	if c.Defaults.BuildingPortion == 0 {
		c.Defaults.BuildingPortion = defaults.BuildingPortion
	}
	if c.Defaults.AcquisitionCosts.InspectionFee == 0 {
		c.Defaults.AcquisitionCosts.InspectionFee = defaults.AcquisitionCosts.InspectionFee
	}
	if c.Defaults.AcquisitionCosts.NotaryFee == 0 {
		c.Defaults.AcquisitionCosts.NotaryFee = defaults.AcquisitionCosts.NotaryFee
	}
	if c.Defaults.AcquisitionCosts.EvaluationFee == 0 {
		c.Defaults.AcquisitionCosts.EvaluationFee = defaults.AcquisitionCosts.EvaluationFee
	}
	if c.Defaults.AcquisitionCosts.PremiumTaxRate == 0 {
		c.Defaults.AcquisitionCosts.PremiumTaxRate = defaults.AcquisitionCosts.PremiumTaxRate
	}
	if c.Server.Address == "" {
		c.Server.Address = constants.DefaultServerAddress
	}
	if c.Server.MaxBodyBytes == 0 {
		c.Server.MaxBodyBytes = constants.DefaultMaxBodyBytes
	}
}

// ValidateConfiguration performs general validation of the configuration
// and returns warnings.
func (c *Configuration) ValidateConfiguration() []string {
	var warnings []string

	if c.Database.URL == "" {
		warnings = append(warnings, "no database URL configured; relying on the DATABASE_URL environment variable")
	}
	if c.Defaults.InflationRate < 0 || c.Defaults.InflationRate > 20 {
		warnings = append(warnings, fmt.Sprintf("inflation rate %.2f%% is outside the expected 0-20%% range", c.Defaults.InflationRate))
	}
	if c.Defaults.RentGrowthRate < 0 || c.Defaults.RentGrowthRate > 20 {
		warnings = append(warnings, fmt.Sprintf("rent growth rate %.2f%% is outside the expected 0-20%% range", c.Defaults.RentGrowthRate))
	}
	if c.Defaults.BuildingPortion < 0 || c.Defaults.BuildingPortion > 1 {
		warnings = append(warnings, fmt.Sprintf("building portion %.2f must be a fraction between 0 and 1", c.Defaults.BuildingPortion))
	}
	if c.Regions.ShapefilePath == "" {
		warnings = append(warnings, fmt.Sprintf("no region shapefile configured; region lookups will fall back to %s", c.Defaults.Region))
	}

	return warnings
}
