package models

import "fmt"

// GeographyMode selects between the whole county and a subset of its regions.
type GeographyMode string

const (
	GeographyCounty GeographyMode = "county"
	GeographyRegion GeographyMode = "region"
)

// Valid reports whether m is one of the known geography modes.
func (m GeographyMode) Valid() bool {
	return m == GeographyCounty || m == GeographyRegion
}

// FilterSelection is the set of user-chosen constraints for one pipeline run.
// YearFrom and YearTo are inclusive. BuiltFrom and BuiltTo name vintage
// buckets; the construction-year range spans from the lower bucket's Min to
// the upper bucket's Max. Regions is only consulted in GeographyRegion mode.
type FilterSelection struct {
	BuiltFrom string        `json:"built_from"`
	BuiltTo   string        `json:"built_to"`
	Geography GeographyMode `json:"geography"`
	Regions   []string      `json:"regions"`
	YearFrom  int           `json:"year_from"`
	YearTo    int           `json:"year_to"`
}

// Validate checks the structural invariants of the selection.
// An empty region list is valid; it produces an empty result downstream.
func (s FilterSelection) Validate() error {
	if s.YearFrom > s.YearTo {
		return fmt.Errorf("year_from (%d) must be less than or equal to year_to (%d)", s.YearFrom, s.YearTo)
	}
	if !s.Geography.Valid() {
		return fmt.Errorf("unknown geography mode %q", s.Geography)
	}
	return nil
}

// SingleYear reports whether the selected window covers exactly one year.
func (s FilterSelection) SingleYear() bool {
	return s.YearFrom == s.YearTo
}

// EmptyRegions reports whether region mode is active with nothing selected.
func (s FilterSelection) EmptyRegions() bool {
	return s.Geography == GeographyRegion && len(s.Regions) == 0
}

// VintageBucket is a named range of construction years, inclusive on both ends.
type VintageBucket struct {
	Name string `mapstructure:"name" json:"name"`
	Min  int    `mapstructure:"min" json:"min"`
	Max  int    `mapstructure:"max" json:"max"`
}

// VintageTable is the ordered lookup of vintage buckets for a county.
type VintageTable []VintageBucket

// Index returns the position of the named bucket, or -1.
func (t VintageTable) Index(name string) int {
	for i, b := range t {
		if b.Name == name {
			return i
		}
	}
	return -1
}

// Range resolves a lower and upper bucket name into a construction-year range.
func (t VintageTable) Range(from, to string) (int, int, bool) {
	lo, hi := t.Index(from), t.Index(to)
	if lo < 0 || hi < 0 {
		return 0, 0, false
	}
	return t[lo].Min, t[hi].Max, true
}

// DefaultVintageTable is the bucket set used when a county declares none.
// The last bucket deliberately extends to 2050 so newer construction is admitted.
func DefaultVintageTable() VintageTable {
	return VintageTable{
		{Name: "<2000", Min: 0, Max: 1999},
		{Name: "2000-2010", Min: 2000, Max: 2010},
		{Name: "2011-2023", Min: 2011, Max: 2050},
	}
}
