package pipeline

import (
	"errors"
	"fmt"
	"math"

	"github.com/stwalsh4118/housingdash/api/internal/models"
)

var (
	// ErrDegenerateRange means both ends of the year range are the same
	// year, so there is no change to report.
	ErrDegenerateRange = errors.New("degenerate year range")
	// ErrInsufficientData means a statistic needed an empty group, or the
	// base of a ratio was zero.
	ErrInsufficientData = errors.New("insufficient data")
)

// Metric selects the statistic compared by YearOverYear.
type Metric string

const (
	MetricPriceSF Metric = "price_sf"
	MetricPrice   Metric = "price"
	MetricCount   Metric = "count"
)

// Metrics lists every metric Deltas reports, in display order.
var Metrics = []Metric{MetricPriceSF, MetricPrice, MetricCount}

// YearOverYear returns the fractional change of metric between sales in
// y0 and sales in y1: (stat(y1) - stat(y0)) / stat(y0).
// It never returns NaN or infinity; those cases surface as errors.
func YearOverYear(records []models.Transaction, y0, y1 int, metric Metric) (float64, error) {
	if y0 == y1 {
		return 0, fmt.Errorf("%w: %d to %d", ErrDegenerateRange, y0, y1)
	}
	if y0 > y1 {
		return 0, fmt.Errorf("%w: %d is after %d", ErrDegenerateRange, y0, y1)
	}

	base, err := statistic(InYear(records, y0), metric)
	if err != nil {
		return 0, fmt.Errorf("%d: %w", y0, err)
	}
	current, err := statistic(InYear(records, y1), metric)
	if err != nil {
		return 0, fmt.Errorf("%d: %w", y1, err)
	}
	if base == 0 {
		return 0, fmt.Errorf("%w: %s is zero in %d", ErrInsufficientData, metric, y0)
	}

	delta := (current - base) / base
	if math.IsNaN(delta) || math.IsInf(delta, 0) {
		return 0, fmt.Errorf("%w: %s change is not finite", ErrInsufficientData, metric)
	}
	return delta, nil
}

func statistic(records []models.Transaction, metric Metric) (float64, error) {
	if len(records) == 0 {
		return 0, fmt.Errorf("%w: no sales", ErrInsufficientData)
	}

	switch metric {
	case MetricCount:
		return float64(len(records)), nil
	case MetricPrice, MetricPriceSF:
		values := make([]float64, len(records))
		for i := range records {
			if metric == MetricPrice {
				values[i] = records[i].Price
			} else {
				values[i] = records[i].PriceSF
			}
		}
		med, _ := Median(values)
		return med, nil
	default:
		return 0, fmt.Errorf("unknown metric %q", metric)
	}
}

// Delta is the outcome of one year-over-year comparison.
// Err is nil when Value is meaningful.
type Delta struct {
	Err    error
	Metric Metric
	Value  float64
}

// Deltas computes the year-over-year change for every metric.
func Deltas(records []models.Transaction, y0, y1 int) []Delta {
	out := make([]Delta, 0, len(Metrics))
	for _, m := range Metrics {
		v, err := YearOverYear(records, y0, y1, m)
		out = append(out, Delta{Metric: m, Value: v, Err: err})
	}
	return out
}
