package services

import (
	"errors"
	"fmt"

	"github.com/stwalsh4118/housingdash/api/internal/config"
	"github.com/stwalsh4118/housingdash/api/internal/logger"
	"github.com/stwalsh4118/housingdash/api/internal/models"
	"github.com/stwalsh4118/housingdash/api/internal/pipeline"
)

// User-facing condition messages.
const (
	msgEmptySelection   = "Please select at least one city/region."
	msgNoSales          = "No sales match the selected filters."
	msgNoYearOverYear   = "No year over year change."
	msgInsufficientData = "Not enough sales to compute this figure."
	msgNoDelta          = "Not enough sales in both years to compute a change."
	trendSubtitle       = "Dashed lines reflect range of selected years"
)

// pipelineRun holds one selection's filtered records for a county.
// window is the selection as given; trend spans every selectable year.
type pipelineRun struct {
	county *config.CountyConfig
	sel    models.FilterSelection
	window []models.Transaction
	trend  []models.Transaction
	units  []models.GeoUnit
	log    *logger.Logger
}

func newPipelineRun(c *config.CountyConfig, sel models.FilterSelection, records []models.Transaction, units []models.GeoUnit, log *logger.Logger) *pipelineRun {
	trendSel := sel
	trendSel.YearFrom, trendSel.YearTo = c.FirstYear(), c.LastYear()

	return &pipelineRun{
		county: c,
		sel:    sel,
		window: pipeline.Filter(records, sel, c.Vintage),
		trend:  pipeline.Filter(records, trendSel, c.Vintage),
		units:  units,
		log:    log,
	}
}

func (r *pipelineRun) selectionConditions() []Condition {
	if r.sel.EmptyRegions() {
		return []Condition{{Code: ConditionEmptySelection, Scope: ScopeSelection, Message: msgEmptySelection}}
	}
	return []Condition{}
}

func (r *pipelineRun) mapResult() MapResult {
	conditions := r.selectionConditions()
	if len(conditions) == 0 && len(r.window) == 0 {
		conditions = append(conditions, Condition{Code: ConditionInsufficientData, Scope: ScopeMap, Message: msgNoSales})
	}

	aggregates := pipeline.AggregateByTract(r.window)
	tracts := pipeline.Join(aggregates, r.units, pipeline.JoinOptions{
		Palette:        r.county.Colors(),
		ElevationScale: r.county.ElevationScale,
	})

	if dropped := len(aggregates) - len(tracts); dropped > 0 {
		r.log.Debug("Tracts without geometry dropped from map", map[string]interface{}{
			"dropped": dropped,
		})
	}

	return MapResult{
		County:     r.county.Slug,
		Title:      r.labels().MapTitle,
		Selection:  r.sel,
		Tracts:     tracts,
		Palette:    r.county.Colors(),
		Conditions: conditions,
		View:       r.county.Map,
	}
}

func (r *pipelineRun) trendResult() TrendResult {
	conditions := r.selectionConditions()
	points := pipeline.AggregateByMonth(r.trend)
	if len(conditions) == 0 && len(points) == 0 {
		conditions = append(conditions, Condition{Code: ConditionInsufficientData, Scope: ScopeTrend, Message: msgNoSales})
	}

	return TrendResult{
		County:     r.county.Slug,
		Title:      r.labels().TrendTitle,
		Subtitle:   trendSubtitle,
		Selection:  r.sel,
		Points:     points,
		Conditions: conditions,
		Markers: TrendMarkers{
			Start: pipeline.MonthKey(r.sel.YearFrom, 1),
			End:   pipeline.MonthKey(r.sel.YearTo, 12),
		},
	}
}

func (r *pipelineRun) kpiResult() KPIResult {
	conditions := r.selectionConditions()

	prices := make([]float64, 0, len(r.window))
	pricesSF := make([]float64, 0, len(r.window))
	built := make([]float64, 0, len(r.window))
	sizes := make([]float64, 0, len(r.window))
	for i := range r.window {
		tx := &r.window[i]
		prices = append(prices, tx.Price)
		pricesSF = append(pricesSF, tx.PriceSF)
		if tx.YearBuilt != nil {
			built = append(built, float64(*tx.YearBuilt))
		}
		if tx.Size != nil {
			sizes = append(sizes, *tx.Size)
		}
	}

	total := float64(len(r.window))
	result := KPIResult{
		County:          r.county.Slug,
		Period:          r.labels().Period,
		Scope:           r.labels().Scope,
		Selection:       r.sel,
		TotalSales:      Figure{Value: &total, Display: pipeline.FormatCount(len(r.window))},
		MedianPrice:     medianFigure(prices, pipeline.FormatPrice),
		MedianPriceSF:   medianFigure(pricesSF, pipeline.FormatPriceSF),
		MedianYearBuilt: medianFigure(built, pipeline.FormatYear),
		MedianSize:      medianFigure(sizes, pipeline.FormatNumber),
		Deltas:          r.deltaFigures(),
	}

	if len(conditions) == 0 && len(r.window) == 0 {
		conditions = append(conditions, Condition{Code: ConditionInsufficientData, Scope: ScopeKPIs, Message: msgNoSales})
	}
	if r.sel.SingleYear() {
		conditions = append(conditions, Condition{Code: ConditionDegenerateRange, Scope: ScopeKPIs, Message: msgNoYearOverYear})
	}
	result.Conditions = conditions
	return result
}

func (r *pipelineRun) deltaFigures() []DeltaFigure {
	deltas := pipeline.Deltas(r.window, r.sel.YearFrom, r.sel.YearTo)
	out := make([]DeltaFigure, 0, len(deltas))
	for _, d := range deltas {
		f := DeltaFigure{
			Metric: d.Metric,
			Label:  fmt.Sprintf("Change in %s (%d - %d)", metricLabel(d.Metric), r.sel.YearFrom, r.sel.YearTo),
		}

		switch {
		case d.Err == nil:
			v := d.Value
			f.Value = &v
			f.Display = pipeline.FormatPercent(v)
		case errors.Is(d.Err, pipeline.ErrDegenerateRange):
			f.Condition = ConditionDegenerateRange
			f.Display = msgNoYearOverYear
		default:
			f.Condition = ConditionInsufficientData
			f.Display = msgNoDelta
			r.log.Debug("Year over year change unavailable", map[string]interface{}{
				"metric": string(d.Metric),
				"reason": d.Err.Error(),
			})
		}
		out = append(out, f)
	}
	return out
}

func (r *pipelineRun) labels() Labels {
	l := Labels{Period: periodLabel(r.sel)}

	switch {
	case r.sel.Geography == models.GeographyCounty:
		l.Scope = "Countywide"
		l.MapTitle = "Countywide median price / SF"
		l.TrendTitle = "Countywide home price / SF per month"
	case len(r.sel.Regions) == 1:
		name := r.sel.Regions[0]
		l.Scope = name
		l.MapTitle = name + " sales price / SF"
		l.TrendTitle = name + " home price / SF per month"
	default:
		l.Scope = "Selected regions"
		l.MapTitle = "Sales price / SF for selected regions"
		l.TrendTitle = "Price / SF per month for selected regions"
	}
	return l
}

func periodLabel(sel models.FilterSelection) string {
	if sel.SingleYear() {
		return fmt.Sprintf("%d only", sel.YearFrom)
	}
	return fmt.Sprintf("%d - %d", sel.YearFrom, sel.YearTo)
}

func metricLabel(m pipeline.Metric) string {
	switch m {
	case pipeline.MetricPriceSF:
		return "median price / SF"
	case pipeline.MetricPrice:
		return "median sale price"
	case pipeline.MetricCount:
		return "total home sales"
	default:
		return string(m)
	}
}

func medianFigure(values []float64, format func(float64) string) Figure {
	med, ok := pipeline.Median(values)
	if !ok {
		return Figure{Display: "N/A", Condition: ConditionInsufficientData}
	}
	return Figure{Value: &med, Display: format(med)}
}
