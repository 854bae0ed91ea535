package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/stwalsh4118/housingdash/api/internal/config"
	"github.com/stwalsh4118/housingdash/api/internal/database"
	"github.com/stwalsh4118/housingdash/api/internal/models"
)

// postGISTractRepository reads tract boundaries from a PostGIS table with
// columns geoid, name, sub_geo, county_name and geom (SRID 4326).
type postGISTractRepository struct {
	db *database.Database
}

// NewPostGISTractRepository creates a TractRepository backed by PostGIS.
func NewPostGISTractRepository(db *database.Database) TractRepository {
	return &postGISTractRepository{
		db: db,
	}
}

// FindByCounty selects every tract whose county_name matches the county's
// display name or slug. ST_Multi promotes Polygon rows so every boundary
// decodes as a MultiPolygon.
func (r *postGISTractRepository) FindByCounty(ctx context.Context, county config.CountyConfig) ([]models.GeoUnit, error) {
	query := fmt.Sprintf(`
		SELECT
			geoid,
			COALESCE(name, ''),
			COALESCE(sub_geo, ''),
			ST_AsGeoJSON(ST_Multi(geom)) AS geometry
		FROM %s
		WHERE lower(county_name) IN (lower($1), lower($2))
		ORDER BY geoid
	`, tableIdentifier(county.Geometry.Table))

	rows, err := r.db.Pool.Query(ctx, query, county.Name, county.Slug)
	if err != nil {
		return nil, fmt.Errorf("failed to query tracts for county %q: %w", county.Slug, err)
	}
	defer rows.Close()

	units := make([]models.GeoUnit, 0, 64)
	for rows.Next() {
		var unit models.GeoUnit
		var geomJSON []byte

		if err := rows.Scan(&unit.GEOID, &unit.Name, &unit.SubGeo, &geomJSON); err != nil {
			return nil, fmt.Errorf("failed to scan tract row: %w", err)
		}

		if geomJSON != nil {
			if err := unit.Geometry.Scan(geomJSON); err != nil {
				return nil, fmt.Errorf("failed to parse geometry for tract %s: %w", unit.GEOID, err)
			}
		}

		unit.GEOID = models.NormalizeGEOID(unit.GEOID)
		if unit.GEOID == "" {
			continue
		}
		units = append(units, unit)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tract rows: %w", err)
	}

	if len(units) == 0 {
		return nil, fmt.Errorf("%w: county %q has no rows in %s", ErrNoTracts, county.Slug, county.Geometry.Table)
	}
	return units, nil
}

// tableIdentifier quotes an optionally schema-qualified table name.
func tableIdentifier(table string) string {
	return pgx.Identifier(strings.Split(table, ".")).Sanitize()
}
