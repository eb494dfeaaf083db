package projection

import "go.uber.org/zap"

// renewalTerm is the mortgage term length in years; rate changes land on
// the year after each renewal boundary.
const renewalTerm = 5

// Scenario is a named rate-change schedule.
type Scenario struct {
	Name        string
	RateChanges map[int]float64
}

// ScenarioResult pairs a scenario with its projection.
type ScenarioResult struct {
	Name  string
	Years []Year
}

// RateScenarios builds the four canonical rate-change schedules relative to
// a base rate, each applying changes at the 5-year renewal boundaries.
func RateScenarios(baseRate float64) []Scenario {
	return []Scenario{
		{
			Name:        "fixed",
			RateChanges: map[int]float64{},
		},
		{
			Name: "gradual rise",
			RateChanges: map[int]float64{
				renewalTerm + 1:   baseRate + 0.5,
				2*renewalTerm + 1: baseRate + 1.0,
				3*renewalTerm + 1: baseRate + 1.5,
				4*renewalTerm + 1: baseRate + 2.0,
			},
		},
		{
			Name: "major rise",
			RateChanges: map[int]float64{
				renewalTerm + 1: baseRate + 2.0,
			},
		},
		{
			Name: "economic cycle",
			RateChanges: map[int]float64{
				renewalTerm + 1:   baseRate + 1.5,
				2*renewalTerm + 1: baseRate - 0.5,
				3*renewalTerm + 1: baseRate + 0.5,
				4*renewalTerm + 1: baseRate,
			},
		},
	}
}

// CompareScenarios runs the projection once per canonical rate scenario and
// returns the results in scenario order for side-by-side comparison.
func CompareScenarios(logger *zap.Logger, cfg Config) []ScenarioResult {
	if logger == nil {
		logger = zap.NewNop()
	}

	scenarios := RateScenarios(cfg.Rate)
	results := make([]ScenarioResult, 0, len(scenarios))
	for _, scenario := range scenarios {
		scenarioCfg := cfg
		scenarioCfg.RateChanges = scenario.RateChanges
		results = append(results, ScenarioResult{
			Name:  scenario.Name,
			Years: Project(logger, scenarioCfg),
		})
	}
	return results
}
