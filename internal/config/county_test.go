package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stwalsh4118/housingdash/api/internal/models"
)

func writeCountiesFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "counties.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadCounties_AppliesDefaults(t *testing.T) {
	path := writeCountiesFile(t, `
counties:
  - slug: Henry
    transactions_path: Henry_18-22_CT.csv
    geometry_path: Data/Henry_CTs.geojson
    years: [2022, 2018, 2020]
    regions: [McDonough, East Henry]
`)

	counties, err := LoadCounties(path, "/srv/data")
	require.NoError(t, err)
	require.Len(t, counties, 1)

	c := counties[0]
	assert.Equal(t, "henry", c.Slug)
	assert.Equal(t, "henry", c.Name)
	assert.Equal(t, filepath.Join("/srv/data", "Henry_18-22_CT.csv"), c.TransactionsPath)
	assert.Equal(t, filepath.Join("/srv/data", "Data/Henry_CTs.geojson"), c.GeometryPath)
	assert.Equal(t, ",", c.Delimiter)
	assert.Equal(t, []int{2018, 2020, 2022}, c.Years)
	assert.Equal(t, 2018, c.DefaultYearFrom)
	assert.Equal(t, 2022, c.DefaultYearTo)
	assert.Equal(t, models.DefaultVintageTable(), c.Vintage)
	assert.Equal(t, "<2000", c.DefaultBuiltFrom)
	assert.Equal(t, "2011-2023", c.DefaultBuiltTo)
	assert.Equal(t, "GEOID", c.Columns.GEOID)
	assert.Equal(t, "price_sf", c.Columns.PriceSF)
	assert.Equal(t, "yr_blt", c.Columns.YearBuilt)
	assert.Equal(t, "Sub_geo", c.Columns.SubGeo)
	assert.Equal(t, "GEOID", c.Geometry.GEOIDProperty)
	assert.Equal(t, DefaultElevationScale, c.ElevationScale)
	assert.Len(t, c.Colors(), ChoroplethClasses)
	assert.Equal(t, "#022b3a", c.Colors()[3].Hex)
}

func TestLoadCounties_ExplicitValues(t *testing.T) {
	path := writeCountiesFile(t, `
counties:
  - slug: rockdale
    name: Rockdale
    transactions_path: /data/rockdale.csv
    delimiter: ";"
    years: [2019, 2020, 2021]
    default_year_from: 2020
    default_year_to: 2021
    vintage:
      - { name: old, min: 0, max: 1979 }
      - { name: new, min: 1980, max: 2050 }
    default_built_from: new
    default_built_to: new
    regions: [Conyers]
    default_regions: [Conyers]
    columns:
      geoid: tract
      price_sf: ppsf
    map:
      center_lat: 33.6
      center_lng: -84.0
      zoom_2d: 9.5
`)

	counties, err := LoadCounties(path, "/ignored")
	require.NoError(t, err)
	c := counties[0]

	assert.Equal(t, "/data/rockdale.csv", c.TransactionsPath)
	assert.Equal(t, ";", c.Delimiter)
	assert.Equal(t, "tract", c.Columns.GEOID)
	assert.Equal(t, "ppsf", c.Columns.PriceSF)
	assert.Equal(t, "price", c.Columns.Price)
	assert.Equal(t, 33.6, c.Map.CenterLat)
	assert.Equal(t, 9.5, c.Map.Zoom2D)

	sel := c.DefaultSelection()
	assert.Equal(t, 2020, sel.YearFrom)
	assert.Equal(t, 2021, sel.YearTo)
	assert.Equal(t, "new", sel.BuiltFrom)
	assert.Equal(t, "new", sel.BuiltTo)
	assert.Equal(t, models.GeographyCounty, sel.Geography)
	assert.Empty(t, sel.Regions)
}

func TestLoadCounties_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{
			name: "no counties",
			body: "counties: []\n",
		},
		{
			name: "missing years",
			body: `
counties:
  - slug: henry
    transactions_path: a.csv
`,
		},
		{
			name: "duplicate slug",
			body: `
counties:
  - slug: henry
    transactions_path: a.csv
    years: [2020]
  - slug: HENRY
    transactions_path: b.csv
    years: [2020]
`,
		},
		{
			name: "default year not selectable",
			body: `
counties:
  - slug: henry
    transactions_path: a.csv
    years: [2020, 2021]
    default_year_from: 2019
`,
		},
		{
			name: "three color palette",
			body: `
counties:
  - slug: henry
    transactions_path: a.csv
    years: [2020]
    palette: ["#000000", "#111111", "#222222"]
`,
		},
		{
			name: "unknown default region",
			body: `
counties:
  - slug: henry
    transactions_path: a.csv
    years: [2020]
    regions: [McDonough]
    default_regions: [Atlanta]
`,
		},
		{
			name: "inverted vintage bucket",
			body: `
counties:
  - slug: henry
    transactions_path: a.csv
    years: [2020]
    vintage:
      - { name: bad, min: 2010, max: 2000 }
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeCountiesFile(t, tt.body)
			_, err := LoadCounties(path, "")
			assert.Error(t, err)
		})
	}
}

func TestLoadCounties_MissingFile(t *testing.T) {
	_, err := LoadCounties(filepath.Join(t.TempDir(), "missing.yaml"), "")
	assert.Error(t, err)
}

func TestCountyConfig_Lookups(t *testing.T) {
	c := CountyConfig{Years: []int{2018, 2019, 2020}, Regions: []string{"McDonough"}}

	assert.True(t, c.HasYear(2019))
	assert.False(t, c.HasYear(2017))
	assert.True(t, c.HasRegion("McDonough"))
	assert.False(t, c.HasRegion("mcdonough"))
	assert.Equal(t, 2018, c.FirstYear())
	assert.Equal(t, 2020, c.LastYear())
}
