// Package pipeline turns a county's transaction records into the
// statistics behind the dashboard: filtering, per-tract and per-month
// aggregation, year-over-year deltas and the choropleth join.
//
// Every function here is pure. Inputs are never modified and results are
// always well-formed, possibly empty, slices.
package pipeline

import "github.com/stwalsh4118/housingdash/api/internal/models"

type predicate func(tx *models.Transaction) bool

// Filter returns the records that satisfy every active predicate of sel.
//
// Predicates are applied cheapest first: region membership, sale year,
// then construction vintage. An empty region list in region mode yields
// an empty result. When both vintage names are empty the vintage predicate
// is inactive; an unknown bucket name matches nothing.
// Records with no year built never satisfy an active vintage predicate.
func Filter(records []models.Transaction, sel models.FilterSelection, vintages models.VintageTable) []models.Transaction {
	if sel.EmptyRegions() {
		return []models.Transaction{}
	}

	preds := make([]predicate, 0, 3)
	if sel.Geography == models.GeographyRegion {
		preds = append(preds, regionPredicate(sel.Regions))
	}
	preds = append(preds, yearPredicate(sel.YearFrom, sel.YearTo))
	if sel.BuiltFrom != "" || sel.BuiltTo != "" {
		preds = append(preds, vintagePredicate(vintages, sel.BuiltFrom, sel.BuiltTo))
	}

	out := make([]models.Transaction, 0, len(records)/4)
	for i := range records {
		if matchAll(&records[i], preds) {
			out = append(out, records[i])
		}
	}
	return out
}

func matchAll(tx *models.Transaction, preds []predicate) bool {
	for _, p := range preds {
		if !p(tx) {
			return false
		}
	}
	return true
}

func regionPredicate(regions []string) predicate {
	set := make(map[string]struct{}, len(regions))
	for _, r := range regions {
		set[r] = struct{}{}
	}
	return func(tx *models.Transaction) bool {
		_, ok := set[tx.SubGeo]
		return ok
	}
}

func yearPredicate(from, to int) predicate {
	return func(tx *models.Transaction) bool {
		return tx.SaleYear >= from && tx.SaleYear <= to
	}
}

func vintagePredicate(table models.VintageTable, from, to string) predicate {
	lo, hi, ok := table.Range(from, to)
	if !ok {
		return func(*models.Transaction) bool { return false }
	}
	return func(tx *models.Transaction) bool {
		return tx.YearBuilt != nil && *tx.YearBuilt >= lo && *tx.YearBuilt <= hi
	}
}

// InYear returns the records sold in year.
func InYear(records []models.Transaction, year int) []models.Transaction {
	out := make([]models.Transaction, 0)
	for i := range records {
		if records[i].SaleYear == year {
			out = append(out, records[i])
		}
	}
	return out
}
