// Package property defines the flat property record consumed by the
// calculation packages and typed accessors over its loosely-typed fields.
package property

import (
	"fmt"

	"github.com/plexvest/plexvest/pkg/parsing"
)

// Well-known record field names. The financing fields follow the
// financement_{type}_{parameter} convention used by the data layer.
const (
	FieldSalePrice    = "prix_vente"
	FieldGrossRevenue = "revenus_bruts"
	FieldExpenses     = "depenses_totales"
	FieldNetRevenue   = "revenus_nets"
	FieldUnitCount    = "nombre_unites"
	FieldLatitude     = "latitude"
	FieldLongitude    = "longitude"
	FieldMarketTGA    = "tga_marche"

	FieldSCHLDebtCoverage = "financement_schl_ratio_couverture_dettes"
	FieldSCHLInterestRate = "financement_schl_taux_interet"
	FieldSCHLAmortization = "financement_schl_amortissement"
	FieldSCHLCapRate      = "financement_schl_tga"

	FieldConvDebtCoverage = "financement_conv_ratio_couverture_dettes"
	FieldConvInterestRate = "financement_conv_taux_interet"
	FieldConvAmortization = "financement_conv_amortissement"
	FieldConvCapRate      = "financement_conv_tga"
)

// Record is a flat mapping of field name to value as supplied by the data
// layer. Values may be numbers, monetary strings, percent strings, or nil;
// the accessors normalize them. Records are read-only from the engine's
// point of view.
type Record map[string]interface{}

// Amount returns the named field parsed as a monetary value.
func (r Record) Amount(field string) float64 {
	return parsing.Amount(r[field])
}

// Percent returns the named field parsed as a percentage.
func (r Record) Percent(field string) float64 {
	return parsing.Percent(r[field])
}

// Number returns the named field parsed as a generic number.
func (r Record) Number(field string) float64 {
	return parsing.Number(r[field])
}

// String returns the named field rendered as a string, or "" when absent.
func (r Record) String(field string) string {
	v, ok := r[field]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

// SalePrice returns the asking/sale price.
func (r Record) SalePrice() float64 {
	return r.Amount(FieldSalePrice)
}

// NetIncome recomputes net operating income from gross revenue and total
// expenses. The stored net revenue field is deliberately ignored so that a
// stale value can never leak into financing math.
func (r Record) NetIncome() float64 {
	return r.Amount(FieldGrossRevenue) - r.Amount(FieldExpenses)
}

// UnitCount returns the number of units, truncated to an integer.
func (r Record) UnitCount() int {
	return int(r.Number(FieldUnitCount))
}

// Coordinates returns the latitude and longitude fields.
func (r Record) Coordinates() (lat, lon float64) {
	return r.Number(FieldLatitude), r.Number(FieldLongitude)
}
