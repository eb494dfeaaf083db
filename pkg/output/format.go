// Package output provides utilities for formatting and displaying
// projection results.
package output

import (
	"fmt"

	"github.com/plexvest/plexvest/pkg/projection"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// PrettyFormat outputs a human-readable rather than machine-readable table.
func PrettyFormat(results []projection.ScenarioResult) {
	p := message.NewPrinter(language.English)
	for i, result := range results {
		fmt.Printf("--- Results for scenario %s ---\n", result.Name)
		fmt.Printf("Year | Rate  | Net Income    | Interest      | Principal     | Tax           | Cashflow      | Balance\n")
		fmt.Printf("____ | _____ | _____________ | _____________ | _____________ | _____________ | _____________ | _______\n")
		for _, year := range result.Years {
			_, _ = p.Printf("%4d | %.2f%% | $%.2f | $%.2f | $%.2f | $%.2f | $%.2f | $%.2f\n",
				year.Year, year.Rate, year.NetIncome, year.Interest, year.Principal,
				year.Tax, year.Cashflow, year.EndBalance)
		}
		if i < len(results)-1 {
			fmt.Printf("\n")
		}
	}
}

// CsvFormat outputs in comma-separated value format.
func CsvFormat(results []projection.ScenarioResult) {
	fmt.Printf(`"scenario","year","rate","revenue","expenses","net_income","monthly_payment","interest","principal","depreciation","taxable_income","tax","cashflow","monthly_cashflow","balance"`)
	fmt.Printf("\n")
	for _, result := range results {
		for _, year := range result.Years {
			fmt.Printf(`"%s","%d","%.2f","%.2f","%.2f","%.2f","%.2f","%.2f","%.2f","%.2f","%.2f","%.2f","%.2f","%.2f","%.2f"`,
				result.Name, year.Year, year.Rate, year.Revenue, year.Expenses,
				year.NetIncome, year.MonthlyPayment, year.Interest, year.Principal,
				year.Depreciation, year.TaxableIncome, year.Tax, year.Cashflow,
				year.MonthlyCashflow, year.EndBalance)
			fmt.Printf("\n")
		}
	}
}
