package pipeline

import (
	"fmt"
	"sort"

	"github.com/stwalsh4118/housingdash/api/internal/models"
)

type tractGroup struct {
	geoid   string
	priceSF []float64
	price   []float64
	subGeos []string
}

// AggregateByTract groups records by GEOID and computes the median price
// per square foot, median price, count and the most common sub-geography
// of each group. Only tracts present in records appear in the result,
// which is ordered by GEOID.
func AggregateByTract(records []models.Transaction) []models.TractAggregate {
	groups := make(map[string]*tractGroup)
	for i := range records {
		tx := &records[i]
		g, ok := groups[tx.GEOID]
		if !ok {
			g = &tractGroup{geoid: tx.GEOID}
			groups[tx.GEOID] = g
		}
		g.priceSF = append(g.priceSF, tx.PriceSF)
		g.price = append(g.price, tx.Price)
		g.subGeos = append(g.subGeos, tx.SubGeo)
	}

	out := make([]models.TractAggregate, 0, len(groups))
	for _, g := range groups {
		medSF, _ := Median(g.priceSF)
		medPrice, _ := Median(g.price)
		subGeo, _ := Mode(g.subGeos)
		out = append(out, models.TractAggregate{
			GEOID:         g.geoid,
			SubGeo:        subGeo,
			MedianPriceSF: medSF,
			MedianPrice:   medPrice,
			Count:         len(g.priceSF),
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].GEOID < out[j].GEOID })
	return out
}

type monthKey struct {
	year, month int
}

// AggregateByMonth groups records by sale year and month. The result is
// sorted chronologically, which the trend chart depends on.
func AggregateByMonth(records []models.Transaction) []models.MonthlyAggregate {
	groups := make(map[monthKey][]float64)
	for i := range records {
		k := monthKey{year: records[i].SaleYear, month: records[i].SaleMonth}
		groups[k] = append(groups[k], records[i].PriceSF)
	}

	out := make([]models.MonthlyAggregate, 0, len(groups))
	for k, values := range groups {
		med, _ := Median(values)
		out = append(out, models.MonthlyAggregate{
			Key:           MonthKey(k.year, k.month),
			MedianPriceSF: med,
			Count:         len(values),
			Year:          k.year,
			Month:         k.month,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Month < out[j].Month
	})
	return out
}

// MonthKey formats the year-month label used on the trend axis, e.g. "2020-1".
func MonthKey(year, month int) string {
	return fmt.Sprintf("%d-%d", year, month)
}
