package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/stwalsh4118/housingdash/api/internal/config"
	"github.com/stwalsh4118/housingdash/api/internal/loader"
	"github.com/stwalsh4118/housingdash/api/internal/logger"
	"github.com/stwalsh4118/housingdash/api/internal/models"
	"github.com/stwalsh4118/housingdash/api/internal/repository"
)

// Service-level errors
var (
	ErrCountyNotFound   = errors.New("county not found")
	ErrInvalidSelection = errors.New("invalid selection")
	ErrDataUnavailable  = errors.New("county data unavailable")
)

// RecordSource returns the transaction records of a county table.
// *loader.Cache satisfies it.
type RecordSource interface {
	Get(path string, county config.CountyConfig) ([]models.Transaction, loader.LoadStats, error)
}

// SelectionInput carries the user's filter choices. Nil fields fall back to
// the county's default selection. Regions are only read in region mode.
type SelectionInput struct {
	YearFrom  *int
	YearTo    *int
	BuiltFrom *string
	BuiltTo   *string
	Geography *string
	Regions   []string
}

// DashboardService defines the dashboard operations for every configured county.
type DashboardService interface {
	// Counties lists the configured counties in configuration order.
	Counties() []CountySummary

	// County returns the filter options of one county.
	// Returns ErrCountyNotFound for an unknown slug.
	County(slug string) (*CountyOptions, error)

	// Dashboard runs the full pipeline for one selection.
	// Returns ErrCountyNotFound, ErrInvalidSelection or ErrDataUnavailable.
	// Empty or degenerate selections are not errors; they are reported as
	// conditions on the result.
	Dashboard(ctx context.Context, slug string, in SelectionInput) (*DashboardResult, error)

	// Map returns only the joined tracts for one selection.
	Map(ctx context.Context, slug string, in SelectionInput) (*MapResult, error)

	// Trend returns only the monthly series for one selection.
	Trend(ctx context.Context, slug string, in SelectionInput) (*TrendResult, error)

	// KPIs returns only the summary figures for one selection.
	KPIs(ctx context.Context, slug string, in SelectionInput) (*KPIResult, error)

	// Ready loads every county's records and geometry, reporting the first failure.
	Ready(ctx context.Context) error
}

// dashboardService is the concrete implementation of DashboardService.
type dashboardService struct {
	counties map[string]*config.CountyConfig
	order    []string
	records  RecordSource
	tracts   repository.TractRepository
	log      *logger.Logger
}

// NewDashboardService creates a new instance of DashboardService.
func NewDashboardService(counties []config.CountyConfig, records RecordSource, tracts repository.TractRepository, log *logger.Logger) DashboardService {
	s := &dashboardService{
		counties: make(map[string]*config.CountyConfig, len(counties)),
		order:    make([]string, 0, len(counties)),
		records:  records,
		tracts:   tracts,
		log:      log,
	}
	for i := range counties {
		c := counties[i]
		s.counties[c.Slug] = &c
		s.order = append(s.order, c.Slug)
	}
	return s
}

func (s *dashboardService) Counties() []CountySummary {
	out := make([]CountySummary, 0, len(s.order))
	for _, slug := range s.order {
		c := s.counties[slug]
		out = append(out, CountySummary{
			Slug:      c.Slug,
			Name:      c.Name,
			FirstYear: c.FirstYear(),
			LastYear:  c.LastYear(),
		})
	}
	return out
}

func (s *dashboardService) County(slug string) (*CountyOptions, error) {
	c, err := s.county(slug)
	if err != nil {
		return nil, err
	}

	return &CountyOptions{
		Slug:             c.Slug,
		Name:             c.Name,
		Years:            c.Years,
		Vintage:          c.Vintage,
		Regions:          nonNil(c.Regions),
		DefaultRegions:   nonNil(c.DefaultRegions),
		Palette:          c.Colors(),
		DefaultSelection: c.DefaultSelection(),
		Map:              c.Map,
	}, nil
}

func (s *dashboardService) Dashboard(ctx context.Context, slug string, in SelectionInput) (*DashboardResult, error) {
	r, err := s.prepare(ctx, slug, in, true)
	if err != nil {
		return nil, err
	}

	m := r.mapResult()
	t := r.trendResult()
	k := r.kpiResult()

	conditions := make([]Condition, 0, 4)
	conditions = append(conditions, r.selectionConditions()...)
	conditions = append(conditions, withoutScope(m.Conditions, ScopeSelection)...)
	conditions = append(conditions, withoutScope(t.Conditions, ScopeSelection)...)
	conditions = append(conditions, withoutScope(k.Conditions, ScopeSelection)...)

	r.log.Info("Dashboard computed", map[string]interface{}{
		"selection":  r.sel,
		"records":    len(r.window),
		"tracts":     len(m.Tracts),
		"months":     len(t.Points),
		"conditions": len(conditions),
	})

	return &DashboardResult{
		County:     r.county.Slug,
		Name:       r.county.Name,
		Selection:  r.sel,
		Labels:     r.labels(),
		Conditions: conditions,
		Map:        m,
		Trend:      t,
		KPIs:       k,
	}, nil
}

func (s *dashboardService) Map(ctx context.Context, slug string, in SelectionInput) (*MapResult, error) {
	r, err := s.prepare(ctx, slug, in, true)
	if err != nil {
		return nil, err
	}

	m := r.mapResult()
	r.log.Info("Map computed", map[string]interface{}{
		"selection": r.sel,
		"records":   len(r.window),
		"tracts":    len(m.Tracts),
	})
	return &m, nil
}

func (s *dashboardService) Trend(ctx context.Context, slug string, in SelectionInput) (*TrendResult, error) {
	r, err := s.prepare(ctx, slug, in, false)
	if err != nil {
		return nil, err
	}

	t := r.trendResult()
	r.log.Info("Trend computed", map[string]interface{}{
		"selection": r.sel,
		"months":    len(t.Points),
	})
	return &t, nil
}

func (s *dashboardService) KPIs(ctx context.Context, slug string, in SelectionInput) (*KPIResult, error) {
	r, err := s.prepare(ctx, slug, in, false)
	if err != nil {
		return nil, err
	}

	k := r.kpiResult()
	r.log.Info("KPIs computed", map[string]interface{}{
		"selection": r.sel,
		"records":   len(r.window),
	})
	return &k, nil
}

func (s *dashboardService) Ready(ctx context.Context) error {
	for _, slug := range s.order {
		c := s.counties[slug]
		if _, err := s.loadRecords(c); err != nil {
			return err
		}
		if _, err := s.loadTracts(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

func (s *dashboardService) county(slug string) (*config.CountyConfig, error) {
	c, ok := s.counties[strings.ToLower(strings.TrimSpace(slug))]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrCountyNotFound, slug)
	}
	return c, nil
}

// prepare resolves the selection, loads the county's data and filters it.
// Geometry is only loaded when the caller needs the map.
func (s *dashboardService) prepare(ctx context.Context, slug string, in SelectionInput, withTracts bool) (*pipelineRun, error) {
	c, err := s.county(slug)
	if err != nil {
		s.log.Warn("Unknown county requested", map[string]interface{}{
			"county": slug,
		})
		return nil, err
	}
	log := s.log.WithCounty(c.Slug)

	sel, err := ResolveSelection(c, in)
	if err != nil {
		log.Warn("Invalid selection", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, err
	}

	records, err := s.loadRecords(c)
	if err != nil {
		return nil, err
	}

	var units []models.GeoUnit
	if withTracts {
		if units, err = s.loadTracts(ctx, c); err != nil {
			return nil, err
		}
	}

	return newPipelineRun(c, sel, records, units, log), nil
}

func (s *dashboardService) loadRecords(c *config.CountyConfig) ([]models.Transaction, error) {
	records, stats, err := s.records.Get(c.TransactionsPath, *c)
	if err != nil {
		s.log.Error("Failed to load transactions", err, map[string]interface{}{
			"county": c.Slug,
			"path":   c.TransactionsPath,
		})
		return nil, fmt.Errorf("%w: transactions for %s: %v", ErrDataUnavailable, c.Slug, err)
	}

	s.log.Debug("Transactions available", map[string]interface{}{
		"county":  c.Slug,
		"loaded":  stats.Loaded,
		"skipped": stats.Skipped,
	})
	return records, nil
}

func (s *dashboardService) loadTracts(ctx context.Context, c *config.CountyConfig) ([]models.GeoUnit, error) {
	units, err := s.tracts.FindByCounty(ctx, *c)
	if err != nil {
		s.log.Error("Failed to load tract geometry", err, map[string]interface{}{
			"county": c.Slug,
		})
		return nil, fmt.Errorf("%w: tract geometry for %s: %v", ErrDataUnavailable, c.Slug, err)
	}
	return units, nil
}

// ResolveSelection overlays in onto the county's default selection and
// checks the result against the county's option sets.
func ResolveSelection(c *config.CountyConfig, in SelectionInput) (models.FilterSelection, error) {
	sel := c.DefaultSelection()

	if in.YearFrom != nil {
		sel.YearFrom = *in.YearFrom
	}
	if in.YearTo != nil {
		sel.YearTo = *in.YearTo
	}
	if in.BuiltFrom != nil {
		sel.BuiltFrom = *in.BuiltFrom
	}
	if in.BuiltTo != nil {
		sel.BuiltTo = *in.BuiltTo
	}
	if in.Geography != nil {
		sel.Geography = models.GeographyMode(strings.ToLower(*in.Geography))
	}
	if sel.Geography == models.GeographyRegion {
		sel.Regions = uniqueRegions(in.Regions)
	}

	if err := sel.Validate(); err != nil {
		return sel, fmt.Errorf("%w: %v", ErrInvalidSelection, err)
	}
	if !c.HasYear(sel.YearFrom) || !c.HasYear(sel.YearTo) {
		return sel, fmt.Errorf("%w: years must be between %d and %d", ErrInvalidSelection, c.FirstYear(), c.LastYear())
	}

	lo, hi := c.Vintage.Index(sel.BuiltFrom), c.Vintage.Index(sel.BuiltTo)
	if lo < 0 || hi < 0 {
		return sel, fmt.Errorf("%w: unknown vintage bucket %q to %q", ErrInvalidSelection, sel.BuiltFrom, sel.BuiltTo)
	}
	if lo > hi {
		return sel, fmt.Errorf("%w: vintage %q comes after %q", ErrInvalidSelection, sel.BuiltFrom, sel.BuiltTo)
	}

	if len(c.Regions) > 0 {
		for _, r := range sel.Regions {
			if !c.HasRegion(r) {
				return sel, fmt.Errorf("%w: unknown region %q", ErrInvalidSelection, r)
			}
		}
	}

	return sel, nil
}

func uniqueRegions(regions []string) []string {
	out := make([]string, 0, len(regions))
	seen := make(map[string]bool, len(regions))
	for _, r := range regions {
		r = strings.TrimSpace(r)
		if r == "" || seen[r] {
			continue
		}
		seen[r] = true
		out = append(out, r)
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func withoutScope(conditions []Condition, scope string) []Condition {
	out := make([]Condition, 0, len(conditions))
	for _, c := range conditions {
		if c.Scope != scope {
			out = append(out, c)
		}
	}
	return out
}
