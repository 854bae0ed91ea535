package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stwalsh4118/housingdash/api/internal/config"
	apierrors "github.com/stwalsh4118/housingdash/api/internal/errors"
	"github.com/stwalsh4118/housingdash/api/internal/middleware"
	"github.com/stwalsh4118/housingdash/api/internal/models"
	"github.com/stwalsh4118/housingdash/api/internal/services"
)

// CountyHandler handles county dashboard HTTP requests.
type CountyHandler struct {
	service services.DashboardService
}

// NewCountyHandler creates a new CountyHandler instance.
func NewCountyHandler(service services.DashboardService) *CountyHandler {
	return &CountyHandler{
		service: service,
	}
}

// SelectionRequest represents the filter query parameters shared by the
// dashboard endpoints. Omitted parameters fall back to the county default.
type SelectionRequest struct {
	YearFrom  *int     `form:"year_from" binding:"omitempty,gte=1900,lte=2100"`
	YearTo    *int     `form:"year_to" binding:"omitempty,gte=1900,lte=2100"`
	BuiltFrom *string  `form:"built_from" binding:"omitempty,max=32"`
	BuiltTo   *string  `form:"built_to" binding:"omitempty,max=32"`
	Geography *string  `form:"geography" binding:"omitempty,oneof=county region"`
	Regions   []string `form:"region" binding:"omitempty,max=100,dive,max=128"`
}

// Input converts the request into service input.
func (r SelectionRequest) Input() services.SelectionInput {
	return services.SelectionInput{
		YearFrom:  r.YearFrom,
		YearTo:    r.YearTo,
		BuiltFrom: r.BuiltFrom,
		BuiltTo:   r.BuiltTo,
		Geography: r.Geography,
		Regions:   r.Regions,
	}
}

// CountiesResponse represents the response for the county list.
type CountiesResponse struct {
	Counties []services.CountySummary `json:"counties"`
	Count    int                      `json:"count"`
}

// FeatureCollection is the GeoJSON rendering of a choropleth.
// Fields beside type and features are foreign members describing the map.
type FeatureCollection struct {
	Type       string                 `json:"type"`
	Features   []TractFeature         `json:"features"`
	County     string                 `json:"county"`
	Title      string                 `json:"title"`
	Selection  models.FilterSelection `json:"selection"`
	Palette    []models.Color         `json:"palette"`
	Conditions []services.Condition   `json:"conditions"`
	View       config.MapView         `json:"view"`
}

// TractFeature is one tract of the choropleth.
type TractFeature struct {
	Geometry   models.MultiPolygon `json:"geometry"`
	Type       string              `json:"type"`
	ID         string              `json:"id"`
	Properties TractProperties     `json:"properties"`
}

// TractProperties carries the aggregate and styling of one tract.
// Field order is optimized for memory alignment.
type TractProperties struct {
	FillColor     []int   `json:"fill_color,omitempty"`
	Color         string  `json:"color,omitempty"`
	GEOID         string  `json:"geoid"`
	Name          string  `json:"name,omitempty"`
	SubGeo        string  `json:"sub_geo"`
	PriceSFLabel  string  `json:"price_sf_formatted"`
	PriceLabel    string  `json:"price_formatted"`
	CountLabel    string  `json:"total_sales"`
	MedianPriceSF float64 `json:"median_price_sf"`
	MedianPrice   float64 `json:"median_price"`
	Elevation     float64 `json:"elevation"`
	Count         int     `json:"count"`
	Class         int     `json:"class"`
}

// DashboardResponse represents the full dashboard for one selection.
type DashboardResponse struct {
	County     string                 `json:"county"`
	Name       string                 `json:"name"`
	Selection  models.FilterSelection `json:"selection"`
	Labels     services.Labels        `json:"labels"`
	Conditions []services.Condition   `json:"conditions"`
	Map        FeatureCollection      `json:"map"`
	Trend      services.TrendResult   `json:"trend"`
	KPIs       services.KPIResult     `json:"kpis"`
}

// List handles GET /api/v1/counties endpoint.
func (h *CountyHandler) List(c *gin.Context) {
	counties := h.service.Counties()
	c.JSON(http.StatusOK, CountiesResponse{
		Counties: counties,
		Count:    len(counties),
	})
}

// Get handles GET /api/v1/counties/:county endpoint.
// It returns the filter options and defaults of one county.
func (h *CountyHandler) Get(c *gin.Context) {
	options, err := h.service.County(c.Param("county"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, options)
}

// Dashboard handles GET /api/v1/counties/:county/dashboard endpoint.
func (h *CountyHandler) Dashboard(c *gin.Context) {
	req, ok := bindSelection(c)
	if !ok {
		return
	}

	result, err := h.service.Dashboard(c.Request.Context(), c.Param("county"), req.Input())
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, DashboardResponse{
		County:     result.County,
		Name:       result.Name,
		Selection:  result.Selection,
		Labels:     result.Labels,
		Conditions: result.Conditions,
		Map:        mapResultToGeoJSON(&result.Map),
		Trend:      result.Trend,
		KPIs:       result.KPIs,
	})
}

// Map handles GET /api/v1/counties/:county/map endpoint.
// The body is a GeoJSON FeatureCollection.
func (h *CountyHandler) Map(c *gin.Context) {
	req, ok := bindSelection(c)
	if !ok {
		return
	}

	result, err := h.service.Map(c.Request.Context(), c.Param("county"), req.Input())
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.Header("Content-Type", "application/geo+json; charset=utf-8")
	c.JSON(http.StatusOK, mapResultToGeoJSON(result))
}

// Trend handles GET /api/v1/counties/:county/trend endpoint.
func (h *CountyHandler) Trend(c *gin.Context) {
	req, ok := bindSelection(c)
	if !ok {
		return
	}

	result, err := h.service.Trend(c.Request.Context(), c.Param("county"), req.Input())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// KPIs handles GET /api/v1/counties/:county/kpis endpoint.
func (h *CountyHandler) KPIs(c *gin.Context) {
	req, ok := bindSelection(c)
	if !ok {
		return
	}

	result, err := h.service.KPIs(c.Request.Context(), c.Param("county"), req.Input())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// bindSelection binds and validates the selection query parameters,
// writing the error response itself when they are invalid.
func bindSelection(c *gin.Context) (SelectionRequest, bool) {
	var req SelectionRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			apierrors.ValidationError(c, validationErrors)
			return req, false
		}
		apierrors.BadRequest(c, "Invalid query parameters", map[string]interface{}{
			"error": err.Error(),
		})
		return req, false
	}

	if log := middleware.GetLogger(c); log != nil {
		log.Debug("Processing selection", map[string]interface{}{
			"year_from":  req.YearFrom,
			"year_to":    req.YearTo,
			"built_from": req.BuiltFrom,
			"built_to":   req.BuiltTo,
			"geography":  req.Geography,
			"regions":    req.Regions,
		})
	}
	return req, true
}

// handleError maps service errors to API errors.
func (h *CountyHandler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrCountyNotFound):
		apierrors.CountyNotFound(c, c.Param("county"))
	case errors.Is(err, services.ErrInvalidSelection):
		apierrors.InvalidSelection(c, err.Error())
	case errors.Is(err, services.ErrDataUnavailable):
		apierrors.DataUnavailable(c, "County data is temporarily unavailable", err)
	default:
		apierrors.InternalServerError(c, "Failed to compute dashboard", err)
	}
}

// mapResultToGeoJSON maps a MapResult to its GeoJSON DTO.
func mapResultToGeoJSON(m *services.MapResult) FeatureCollection {
	features := make([]TractFeature, 0, len(m.Tracts))
	for i := range m.Tracts {
		features = append(features, mapTractToFeature(&m.Tracts[i]))
	}

	return FeatureCollection{
		Type:       "FeatureCollection",
		Features:   features,
		County:     m.County,
		Title:      m.Title,
		Selection:  m.Selection,
		Palette:    m.Palette,
		Conditions: m.Conditions,
		View:       m.View,
	}
}

func mapTractToFeature(t *models.JoinedTract) TractFeature {
	props := TractProperties{
		GEOID:         t.GEOID,
		Name:          t.Name,
		SubGeo:        t.SubGeo,
		PriceSFLabel:  t.PriceSFLabel,
		PriceLabel:    t.PriceLabel,
		CountLabel:    t.CountLabel,
		MedianPriceSF: t.MedianPriceSF,
		MedianPrice:   t.MedianPrice,
		Elevation:     t.Elevation,
		Count:         t.Count,
		Class:         t.Class,
	}
	if t.Color != nil {
		props.Color = t.Color.Hex
		props.FillColor = []int{int(t.Color.RGB[0]), int(t.Color.RGB[1]), int(t.Color.RGB[2])}
	}

	return TractFeature{
		Type:       "Feature",
		ID:         t.GEOID,
		Geometry:   t.Geometry,
		Properties: props,
	}
}
