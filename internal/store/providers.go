package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/plexvest/plexvest/pkg/insurance"
	"github.com/plexvest/plexvest/pkg/property"
	"github.com/plexvest/plexvest/pkg/tax"
	"go.uber.org/zap"
)

// federalJurisdiction is the jurisdiction value marking federal rows in the
// income tax table.
const federalJurisdiction = "Fédéral"

// fallbackTransferRegion is used when the requested region has no
// land-transfer rows.
const fallbackTransferRegion = "Montréal"

// fallbackGainsProvince is used when the requested province has no
// capital-gains rows.
const fallbackGainsProvince = "Ontario"

// IncomeTaxBrackets loads the federal and provincial income tax brackets.
// Rows are read in ascending id order and their free-text range
// descriptions parsed into numeric bounds. A province with no rows yields
// an empty provincial slice; the tax package surfaces that degrade.
func (s *Store) IncomeTaxBrackets(ctx context.Context, province string) (federal, provincial []tax.Bracket, err error) {
	rows, err := s.pool.Query(ctx,
		`SELECT juridiction, tranche, taux FROM taux_imposition WHERE juridiction IN ($1, $2) ORDER BY id`,
		federalJurisdiction, province)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query income tax brackets: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var jurisdiction, rangeDesc, rateDesc string
		if err := rows.Scan(&jurisdiction, &rangeDesc, &rateDesc); err != nil {
			return nil, nil, fmt.Errorf("failed to scan income tax bracket: %w", err)
		}
		lower, upper, ok := parseIncomeRange(rangeDesc)
		if !ok {
			s.logger.Warn("skipping unparseable income tax bracket",
				zap.String("op", "store.IncomeTaxBrackets"),
				zap.String("range", rangeDesc),
			)
			continue
		}
		bracket := tax.Bracket{Lower: lower, Upper: upper, Rate: parseRate(rateDesc)}
		if jurisdiction == federalJurisdiction {
			federal = append(federal, bracket)
		} else {
			provincial = append(provincial, bracket)
		}
	}
	return federal, provincial, rows.Err()
}

// CorporateRates loads the flat corporate tax rate per province.
func (s *Store) CorporateRates(ctx context.Context) (map[string]float64, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT province, taux FROM taux_imposition_entreprise ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query corporate tax rates: %w", err)
	}
	defer rows.Close()

	rates := make(map[string]float64)
	for rows.Next() {
		var provinceName, rateDesc string
		if err := rows.Scan(&provinceName, &rateDesc); err != nil {
			return nil, fmt.Errorf("failed to scan corporate tax rate: %w", err)
		}
		rates[provinceName] = parseRate(rateDesc)
	}
	return rates, rows.Err()
}

// TransferBrackets loads the land-transfer ("welcome") tax brackets for a
// region: exact region match first, then substring match, then the
// Montréal table, then the hardcoded Quebec default brackets. The Source
// on the return value records which path served the request.
func (s *Store) TransferBrackets(ctx context.Context, region string) ([]tax.Bracket, tax.Source, error) {
	if region != "" {
		brackets, err := s.queryTransferBrackets(ctx, `region = $1`, region)
		if err != nil {
			return nil, "", err
		}
		if len(brackets) > 0 {
			return brackets, tax.SourceTable, nil
		}

		brackets, err = s.queryTransferBrackets(ctx, `region ILIKE '%' || $1 || '%'`, region)
		if err != nil {
			return nil, "", err
		}
		if len(brackets) > 0 {
			return brackets, tax.SourceTable, nil
		}
	}

	brackets, err := s.queryTransferBrackets(ctx, `region = $1`, fallbackTransferRegion)
	if err != nil {
		return nil, "", err
	}
	if len(brackets) > 0 {
		s.logger.Debug(fmt.Sprintf("no land-transfer rows for region %q, using %s", region, fallbackTransferRegion),
			zap.String("op", "store.TransferBrackets"),
		)
		return brackets, tax.SourceRegionFallback, nil
	}

	return tax.DefaultQuebecTransferBrackets(), tax.SourceDefaultTable, nil
}

func (s *Store) queryTransferBrackets(ctx context.Context, where string, region string) ([]tax.Bracket, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT tranche, taux FROM taxe_bienvenue WHERE `+where+` ORDER BY id`, region)
	if err != nil {
		return nil, fmt.Errorf("failed to query land-transfer brackets: %w", err)
	}
	defer rows.Close()

	var brackets []tax.Bracket
	for rows.Next() {
		var rangeDesc, rateDesc string
		if err := rows.Scan(&rangeDesc, &rateDesc); err != nil {
			return nil, fmt.Errorf("failed to scan land-transfer bracket: %w", err)
		}
		lower, upper, ok := parseTransferRange(rangeDesc)
		if !ok {
			s.logger.Warn("skipping unparseable land-transfer bracket",
				zap.String("op", "store.TransferBrackets"),
				zap.String("range", rangeDesc),
			)
			continue
		}
		brackets = append(brackets, tax.Bracket{Lower: lower, Upper: upper, Rate: parseRate(rateDesc)})
	}
	return brackets, rows.Err()
}

// CapitalGainsBrackets loads the capital-gains brackets for a province,
// falling back to the Ontario rows when the province is absent.
func (s *Store) CapitalGainsBrackets(ctx context.Context, province string) ([]tax.Bracket, tax.Source, error) {
	brackets, err := s.queryGainsBrackets(ctx, province)
	if err != nil {
		return nil, "", err
	}
	if len(brackets) > 0 {
		return brackets, tax.SourceTable, nil
	}

	brackets, err = s.queryGainsBrackets(ctx, fallbackGainsProvince)
	if err != nil {
		return nil, "", err
	}
	s.logger.Debug(fmt.Sprintf("no capital-gains rows for province %q, using %s", province, fallbackGainsProvince),
		zap.String("op", "store.CapitalGainsBrackets"),
	)
	return brackets, tax.SourceRegionFallback, nil
}

func (s *Store) queryGainsBrackets(ctx context.Context, province string) ([]tax.Bracket, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT limite_inferieure, limite_superieure, taux FROM gain_capital WHERE province = $1 ORDER BY id`,
		province)
	if err != nil {
		return nil, fmt.Errorf("failed to query capital-gains brackets: %w", err)
	}
	defer rows.Close()

	var brackets []tax.Bracket
	for rows.Next() {
		var lower float64
		var upperDesc, rateDesc string
		if err := rows.Scan(&lower, &upperDesc, &rateDesc); err != nil {
			return nil, fmt.Errorf("failed to scan capital-gains bracket: %w", err)
		}
		brackets = append(brackets, tax.Bracket{
			Lower: lower,
			Upper: parseUpperLimit(upperDesc),
			Rate:  parseRate(rateDesc),
		})
	}
	return brackets, rows.Err()
}

// PlexPremiumTiers loads the insurance premium table for properties of five
// units or fewer. Callers pass a nil table to the insurance package when
// this fails, selecting the hardcoded defaults there.
func (s *Store) PlexPremiumTiers(ctx context.Context) ([]insurance.Tier, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT ratio_pret_valeur_max, taux FROM prime_schl_plex ORDER BY ratio_pret_valeur_max`)
	if err != nil {
		return nil, fmt.Errorf("failed to query plex premium tiers: %w", err)
	}
	defer rows.Close()

	var tiers []insurance.Tier
	for rows.Next() {
		var maxLTVDesc, rateDesc string
		if err := rows.Scan(&maxLTVDesc, &rateDesc); err != nil {
			return nil, fmt.Errorf("failed to scan plex premium tier: %w", err)
		}
		tiers = append(tiers, insurance.Tier{
			MaxLTV: parseRate(maxLTVDesc),
			Rate:   parseRate(rateDesc),
		})
	}
	return tiers, rows.Err()
}

// MultiUnitPremiumTiers loads the insurance premium table for properties of
// six units or more, with its debt-coverage met/not-met rate columns.
func (s *Store) MultiUnitPremiumTiers(ctx context.Context) ([]insurance.MultiUnitTier, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT ratio_pret_valeur_max, taux_rcd_atteint, taux_rcd_non_atteint FROM prime_schl_multi ORDER BY ratio_pret_valeur_max`)
	if err != nil {
		return nil, fmt.Errorf("failed to query multi-unit premium tiers: %w", err)
	}
	defer rows.Close()

	var tiers []insurance.MultiUnitTier
	for rows.Next() {
		var maxLTVDesc, metDesc, notMetDesc string
		if err := rows.Scan(&maxLTVDesc, &metDesc, &notMetDesc); err != nil {
			return nil, fmt.Errorf("failed to scan multi-unit premium tier: %w", err)
		}
		tiers = append(tiers, insurance.MultiUnitTier{
			MaxLTV:     parseRate(maxLTVDesc),
			RateMet:    parseRate(metDesc),
			RateNotMet: parseRate(notMetDesc),
		})
	}
	return tiers, rows.Err()
}

// PropertyRecord loads one property row as a flat field mapping. Column
// names become record field names unchanged.
func (s *Store) PropertyRecord(ctx context.Context, id int64) (property.Record, error) {
	rows, err := s.pool.Query(ctx, `SELECT * FROM propriete WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query property %d: %w", id, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("failed to read property %d: %w", id, err)
		}
		return nil, fmt.Errorf("property %d not found", id)
	}

	values, err := rows.Values()
	if err != nil {
		return nil, fmt.Errorf("failed to read property %d values: %w", id, err)
	}

	record := make(property.Record, len(values))
	for i, field := range rows.FieldDescriptions() {
		record[strings.ToLower(field.Name)] = values[i]
	}
	return record, nil
}
