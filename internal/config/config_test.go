package config

import (
	"strings"
	"testing"
)

func TestApplyDefaults(t *testing.T) {
	t.Run("Empty configuration gets every default", func(t *testing.T) {
		var conf Configuration
		conf.applyDefaults()

		expected := DefaultDefaults()
		if conf.Defaults.Province != expected.Province {
			t.Errorf("Province = %q, expected %q", conf.Defaults.Province, expected.Province)
		}
		if conf.Defaults.Region != expected.Region {
			t.Errorf("Region = %q, expected %q", conf.Defaults.Region, expected.Region)
		}
		if conf.Defaults.InflationRate != expected.InflationRate {
			t.Errorf("InflationRate = %v, expected %v", conf.Defaults.InflationRate, expected.InflationRate)
		}
		if conf.Defaults.BuildingPortion != expected.BuildingPortion {
			t.Errorf("BuildingPortion = %v, expected %v", conf.Defaults.BuildingPortion, expected.BuildingPortion)
		}
		if conf.Defaults.AcquisitionCosts.PremiumTaxRate != expected.AcquisitionCosts.PremiumTaxRate {
			t.Errorf("PremiumTaxRate = %v, expected %v",
				conf.Defaults.AcquisitionCosts.PremiumTaxRate, expected.AcquisitionCosts.PremiumTaxRate)
		}
		if conf.Server.Address == "" {
			t.Errorf("Server.Address should receive a default")
		}
		if conf.Server.MaxBodyBytes == 0 {
			t.Errorf("Server.MaxBodyBytes should receive a default")
		}
	})

	t.Run("Configured values survive", func(t *testing.T) {
		conf := Configuration{
			Defaults: Defaults{
				Province:      "Ontario",
				InflationRate: 3.5,
			},
			Server: ServerConfig{Address: ":9090"},
		}
		conf.applyDefaults()

		if conf.Defaults.Province != "Ontario" {
			t.Errorf("Province = %q, expected configured value to survive", conf.Defaults.Province)
		}
		if conf.Defaults.InflationRate != 3.5 {
			t.Errorf("InflationRate = %v, expected configured value to survive", conf.Defaults.InflationRate)
		}
		if conf.Server.Address != ":9090" {
			t.Errorf("Server.Address = %q, expected configured value to survive", conf.Server.Address)
		}
		// Untouched fields still get defaults.
		if conf.Defaults.Region != DefaultDefaults().Region {
			t.Errorf("Region = %q, expected default", conf.Defaults.Region)
		}
	})
}

func TestValidateConfiguration(t *testing.T) {
	tests := []struct {
		name            string
		configuration   Configuration
		expectedWarning string
	}{
		{
			name:            "Missing database URL",
			configuration:   Configuration{},
			expectedWarning: "DATABASE_URL",
		},
		{
			name: "Implausible inflation rate",
			configuration: Configuration{
				Defaults: Defaults{InflationRate: 45},
			},
			expectedWarning: "inflation rate",
		},
		{
			name: "Building portion above one",
			configuration: Configuration{
				Defaults: Defaults{BuildingPortion: 75},
			},
			expectedWarning: "building portion",
		},
		{
			name:            "Missing shapefile",
			configuration:   Configuration{},
			expectedWarning: "shapefile",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			warnings := tt.configuration.ValidateConfiguration()
			found := false
			for _, w := range warnings {
				if strings.Contains(strings.ToLower(w), strings.ToLower(tt.expectedWarning)) {
					found = true
				}
			}
			if !found {
				t.Errorf("expected a warning containing %q, got %v", tt.expectedWarning, warnings)
			}
		})
	}
}
