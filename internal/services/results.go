package services

import (
	"github.com/stwalsh4118/housingdash/api/internal/config"
	"github.com/stwalsh4118/housingdash/api/internal/models"
	"github.com/stwalsh4118/housingdash/api/internal/pipeline"
)

// ConditionCode names a non-fatal pipeline state that the client should
// render as a message instead of a number or a map.
type ConditionCode string

const (
	ConditionEmptySelection   ConditionCode = "EMPTY_SELECTION"
	ConditionDegenerateRange  ConditionCode = "DEGENERATE_RANGE"
	ConditionInsufficientData ConditionCode = "INSUFFICIENT_DATA"
)

// Condition scopes.
const (
	ScopeSelection = "selection"
	ScopeMap       = "map"
	ScopeTrend     = "trend"
	ScopeKPIs      = "kpis"
)

// Condition is a pipeline state reported alongside a successful result.
type Condition struct {
	Code    ConditionCode `json:"code"`
	Scope   string        `json:"scope"`
	Message string        `json:"message"`
}

// CountySummary is one entry of the county list.
type CountySummary struct {
	Slug      string `json:"slug"`
	Name      string `json:"name"`
	FirstYear int    `json:"first_year"`
	LastYear  int    `json:"last_year"`
}

// CountyOptions lists everything a client needs to build the filter controls.
type CountyOptions struct {
	Slug             string                 `json:"slug"`
	Name             string                 `json:"name"`
	Years            []int                  `json:"years"`
	Vintage          []models.VintageBucket `json:"vintage"`
	Regions          []string               `json:"regions"`
	DefaultRegions   []string               `json:"default_regions"`
	Palette          []models.Color         `json:"palette"`
	DefaultSelection models.FilterSelection `json:"default_selection"`
	Map              config.MapView         `json:"map"`
}

// Labels are the display strings derived from a selection.
type Labels struct {
	Period     string `json:"period"`
	Scope      string `json:"scope"`
	MapTitle   string `json:"map_title"`
	TrendTitle string `json:"trend_title"`
}

// MapResult is the choropleth for one selection.
type MapResult struct {
	County     string                 `json:"county"`
	Title      string                 `json:"title"`
	Selection  models.FilterSelection `json:"selection"`
	Tracts     []models.JoinedTract   `json:"tracts"`
	Palette    []models.Color         `json:"palette"`
	Conditions []Condition            `json:"conditions"`
	View       config.MapView         `json:"view"`
}

// TrendMarkers are the month keys bounding the selected year window.
type TrendMarkers struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// TrendResult is the monthly price series for one selection. Points cover
// every selectable year; Markers show where the selected window sits.
type TrendResult struct {
	County     string                    `json:"county"`
	Title      string                    `json:"title"`
	Subtitle   string                    `json:"subtitle"`
	Selection  models.FilterSelection    `json:"selection"`
	Points     []models.MonthlyAggregate `json:"points"`
	Conditions []Condition               `json:"conditions"`
	Markers    TrendMarkers              `json:"markers"`
}

// Figure is one KPI value. Value is nil whenever Condition is set.
type Figure struct {
	Value     *float64      `json:"value"`
	Display   string        `json:"display"`
	Condition ConditionCode `json:"condition,omitempty"`
}

// DeltaFigure is one year-over-year KPI.
type DeltaFigure struct {
	Figure
	Metric pipeline.Metric `json:"metric"`
	Label  string          `json:"label"`
}

// KPIResult holds the summary figures for the selected window.
type KPIResult struct {
	County          string                 `json:"county"`
	Period          string                 `json:"period"`
	Scope           string                 `json:"scope"`
	Selection       models.FilterSelection `json:"selection"`
	Deltas          []DeltaFigure          `json:"deltas"`
	Conditions      []Condition            `json:"conditions"`
	TotalSales      Figure                 `json:"total_sales"`
	MedianPrice     Figure                 `json:"median_price"`
	MedianPriceSF   Figure                 `json:"median_price_sf"`
	MedianYearBuilt Figure                 `json:"median_year_built"`
	MedianSize      Figure                 `json:"median_size"`
}

// DashboardResult combines map, trend and KPIs for one selection.
type DashboardResult struct {
	County     string                 `json:"county"`
	Name       string                 `json:"name"`
	Selection  models.FilterSelection `json:"selection"`
	Labels     Labels                 `json:"labels"`
	Conditions []Condition            `json:"conditions"`
	Map        MapResult              `json:"map"`
	Trend      TrendResult            `json:"trend"`
	KPIs       KPIResult              `json:"kpis"`
}
