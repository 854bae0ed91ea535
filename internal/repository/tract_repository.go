package repository

import (
	"context"
	"errors"
	"sync"

	"github.com/stwalsh4118/housingdash/api/internal/config"
	"github.com/stwalsh4118/housingdash/api/internal/models"
)

// ErrNoTracts is returned when a geometry source holds no usable tracts
// for a county.
var ErrNoTracts = errors.New("no tract geometry")

// TractRepository defines the interface for census tract geometry access.
type TractRepository interface {
	// FindByCounty returns every tract boundary for the county, in source
	// order. Tracts without a GEOID are dropped.
	FindByCounty(ctx context.Context, county config.CountyConfig) ([]models.GeoUnit, error)
}

// cachedTractRepository memoizes another TractRepository per county slug.
// Tract boundaries are static, so each county is read at most once per
// successful load.
type cachedTractRepository struct {
	next    TractRepository
	mu      sync.Mutex
	entries map[string][]models.GeoUnit
}

// NewCachedTractRepository wraps next with a per-county cache.
func NewCachedTractRepository(next TractRepository) TractRepository {
	return &cachedTractRepository{
		next:    next,
		entries: make(map[string][]models.GeoUnit),
	}
}

func (r *cachedTractRepository) FindByCounty(ctx context.Context, county config.CountyConfig) ([]models.GeoUnit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if units, ok := r.entries[county.Slug]; ok {
		return units, nil
	}

	units, err := r.next.FindByCounty(ctx, county)
	if err != nil {
		return nil, err
	}

	r.entries[county.Slug] = units
	return units, nil
}
