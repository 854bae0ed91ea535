package config

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/viper"
	"github.com/stwalsh4118/housingdash/api/internal/models"
)

// Default values applied to county records that leave them unset.
const (
	DefaultDelimiter      = ","
	DefaultElevationScale = 30.0
	ChoroplethClasses     = 4
)

// CountyConfig parameterizes the dashboard pipeline for one county.
type CountyConfig struct {
	Slug             string              `mapstructure:"slug"`
	Name             string              `mapstructure:"name"`
	TransactionsPath string              `mapstructure:"transactions_path"`
	GeometryPath     string              `mapstructure:"geometry_path"`
	Delimiter        string              `mapstructure:"delimiter"`
	DefaultBuiltFrom string              `mapstructure:"default_built_from"`
	DefaultBuiltTo   string              `mapstructure:"default_built_to"`
	Years            []int               `mapstructure:"years"`
	Vintage          models.VintageTable `mapstructure:"vintage"`
	Regions          []string            `mapstructure:"regions"`
	DefaultRegions   []string            `mapstructure:"default_regions"`
	Palette          []string            `mapstructure:"palette"`
	Columns          ColumnMap           `mapstructure:"columns"`
	Geometry         GeometryFields      `mapstructure:"geometry"`
	Map              MapView             `mapstructure:"map"`
	DefaultYearFrom  int                 `mapstructure:"default_year_from"`
	DefaultYearTo    int                 `mapstructure:"default_year_to"`
	ElevationScale   float64             `mapstructure:"elevation_scale"`

	colors []models.Color
}

// ColumnMap names the transaction table headers for each field.
// Counties export slightly different headers, so every name is configurable.
type ColumnMap struct {
	GEOID     string `mapstructure:"geoid"`
	Year      string `mapstructure:"year"`
	Month     string `mapstructure:"month"`
	Date      string `mapstructure:"date"`
	Price     string `mapstructure:"price"`
	PriceSF   string `mapstructure:"price_sf"`
	Size      string `mapstructure:"size"`
	YearBuilt string `mapstructure:"year_built"`
	SubGeo    string `mapstructure:"sub_geo"`
	County    string `mapstructure:"county"`
}

// GeometryFields names the tract attributes in the geometry source.
type GeometryFields struct {
	GEOIDProperty  string `mapstructure:"geoid_property"`
	NameProperty   string `mapstructure:"name_property"`
	SubGeoProperty string `mapstructure:"sub_geo_property"`
	Table          string `mapstructure:"table"`
}

// MapView holds the initial camera position for 2D and 3D map views.
type MapView struct {
	CenterLat   float64 `mapstructure:"center_lat" json:"center_lat"`
	CenterLat3D float64 `mapstructure:"center_lat_3d" json:"center_lat_3d"`
	CenterLng   float64 `mapstructure:"center_lng" json:"center_lng"`
	Zoom2D      float64 `mapstructure:"zoom_2d" json:"zoom_2d"`
	Zoom3D      float64 `mapstructure:"zoom_3d" json:"zoom_3d"`
}

// LoadCounties reads the county definitions from a YAML (or JSON/TOML) file.
// Relative data paths are resolved against dataDir.
func LoadCounties(path, dataDir string) ([]CountyConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read counties file %s: %w", path, err)
	}

	var counties []CountyConfig
	if err := v.UnmarshalKey("counties", &counties); err != nil {
		return nil, fmt.Errorf("failed to decode counties file %s: %w", path, err)
	}
	if len(counties) == 0 {
		return nil, fmt.Errorf("counties file %s defines no counties", path)
	}

	seen := make(map[string]bool, len(counties))
	for i := range counties {
		c := &counties[i]
		c.ApplyDefaults()
		c.TransactionsPath = resolvePath(dataDir, c.TransactionsPath)
		c.GeometryPath = resolvePath(dataDir, c.GeometryPath)

		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("county %q: %w", c.Slug, err)
		}
		if seen[c.Slug] {
			return nil, fmt.Errorf("county %q is defined more than once", c.Slug)
		}
		seen[c.Slug] = true
	}

	return counties, nil
}

// ApplyDefaults fills unset fields with the Henry/Rockdale dashboard values.
func (c *CountyConfig) ApplyDefaults() {
	c.Slug = strings.ToLower(strings.TrimSpace(c.Slug))
	if c.Name == "" {
		c.Name = c.Slug
	}
	if c.Delimiter == "" {
		c.Delimiter = DefaultDelimiter
	}
	if len(c.Vintage) == 0 {
		c.Vintage = models.DefaultVintageTable()
	}
	if len(c.Palette) == 0 {
		c.Palette = append([]string(nil), models.DefaultPalette...)
	}
	if c.ElevationScale == 0 {
		c.ElevationScale = DefaultElevationScale
	}

	sort.Ints(c.Years)
	if len(c.Years) > 0 {
		if c.DefaultYearFrom == 0 {
			c.DefaultYearFrom = c.Years[0]
		}
		if c.DefaultYearTo == 0 {
			c.DefaultYearTo = c.Years[len(c.Years)-1]
		}
	}
	if c.DefaultBuiltFrom == "" && len(c.Vintage) > 0 {
		c.DefaultBuiltFrom = c.Vintage[0].Name
	}
	if c.DefaultBuiltTo == "" && len(c.Vintage) > 0 {
		c.DefaultBuiltTo = c.Vintage[len(c.Vintage)-1].Name
	}

	c.Columns.applyDefaults()
	c.Geometry.applyDefaults()
}

func (m *ColumnMap) applyDefaults() {
	setDefault(&m.GEOID, "GEOID")
	setDefault(&m.Year, "year")
	setDefault(&m.Month, "month")
	setDefault(&m.Date, "date")
	setDefault(&m.Price, "price")
	setDefault(&m.PriceSF, "price_sf")
	setDefault(&m.Size, "sf")
	setDefault(&m.YearBuilt, "yr_blt")
	setDefault(&m.SubGeo, "Sub_geo")
	setDefault(&m.County, "county")
}

func (g *GeometryFields) applyDefaults() {
	setDefault(&g.GEOIDProperty, "GEOID")
	setDefault(&g.NameProperty, "NAME")
	setDefault(&g.SubGeoProperty, "Sub_geo")
	setDefault(&g.Table, "census_tracts")
}

// Validate checks a county record after defaults have been applied.
func (c *CountyConfig) Validate() error {
	if c.Slug == "" {
		return fmt.Errorf("slug is required")
	}
	if c.TransactionsPath == "" {
		return fmt.Errorf("transactions_path is required")
	}
	if len([]rune(c.Delimiter)) != 1 {
		return fmt.Errorf("delimiter must be a single character")
	}
	if len(c.Years) == 0 {
		return fmt.Errorf("at least one selectable year is required")
	}
	if !c.HasYear(c.DefaultYearFrom) || !c.HasYear(c.DefaultYearTo) || c.DefaultYearFrom > c.DefaultYearTo {
		return fmt.Errorf("default year range %d-%d is not selectable", c.DefaultYearFrom, c.DefaultYearTo)
	}

	for _, b := range c.Vintage {
		if b.Name == "" {
			return fmt.Errorf("vintage bucket name is required")
		}
		if b.Min > b.Max {
			return fmt.Errorf("vintage bucket %q has min greater than max", b.Name)
		}
	}
	lo, hi := c.Vintage.Index(c.DefaultBuiltFrom), c.Vintage.Index(c.DefaultBuiltTo)
	if lo < 0 || hi < 0 || lo > hi {
		return fmt.Errorf("default vintage range %q-%q is not selectable", c.DefaultBuiltFrom, c.DefaultBuiltTo)
	}

	for _, r := range c.DefaultRegions {
		if !c.HasRegion(r) {
			return fmt.Errorf("default region %q is not in regions", r)
		}
	}

	if len(c.Palette) != ChoroplethClasses {
		return fmt.Errorf("palette must have exactly %d colors, got %d", ChoroplethClasses, len(c.Palette))
	}
	colors := make([]models.Color, 0, len(c.Palette))
	for _, p := range c.Palette {
		col, err := models.ParseHexColor(p)
		if err != nil {
			return err
		}
		colors = append(colors, col)
	}
	c.colors = colors

	if c.ElevationScale < 0 {
		return fmt.Errorf("elevation_scale must be non-negative")
	}

	return nil
}

// Colors returns the parsed palette, lightest first.
func (c *CountyConfig) Colors() []models.Color {
	if c.colors == nil {
		colors := make([]models.Color, 0, len(c.Palette))
		for _, p := range c.Palette {
			if col, err := models.ParseHexColor(p); err == nil {
				colors = append(colors, col)
			}
		}
		c.colors = colors
	}
	return c.colors
}

// DefaultSelection is the selection a fresh dashboard opens with.
func (c *CountyConfig) DefaultSelection() models.FilterSelection {
	return models.FilterSelection{
		YearFrom:  c.DefaultYearFrom,
		YearTo:    c.DefaultYearTo,
		BuiltFrom: c.DefaultBuiltFrom,
		BuiltTo:   c.DefaultBuiltTo,
		Geography: models.GeographyCounty,
	}
}

// FirstYear and LastYear bound the selectable years.
func (c *CountyConfig) FirstYear() int { return c.Years[0] }
func (c *CountyConfig) LastYear() int  { return c.Years[len(c.Years)-1] }

// HasYear reports whether y is one of the selectable years.
func (c *CountyConfig) HasYear(y int) bool {
	for _, year := range c.Years {
		if year == y {
			return true
		}
	}
	return false
}

// HasRegion reports whether name is one of the county's sub-geographies.
func (c *CountyConfig) HasRegion(name string) bool {
	for _, r := range c.Regions {
		if r == name {
			return true
		}
	}
	return false
}

func setDefault(field *string, value string) {
	if strings.TrimSpace(*field) == "" {
		*field = value
	}
}

func resolvePath(dir, path string) string {
	if path == "" || filepath.IsAbs(path) || dir == "" {
		return path
	}
	return filepath.Join(dir, path)
}
