// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fieldstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/oregon-agtech/smart-tap/pkg/types"
)

// FindByCity returns every field whose pre-computed nearest city contains
// the given name (case-insensitive), ordered ascending by distance to the
// matched city. With includeSecondary, matches on the second-nearest city
// count too, and the reported distance is the distance to that secondary
// city. Multiple matches are returned as-is; deduplication by field ID is
// the caller's concern. An empty slice means no field matched.
func (s *Store) FindByCity(ctx context.Context, name string, includeSecondary bool) ([]types.FieldReference, error) {
	pattern := "%" + name + "%"

	var (
		query string
		args  []any
	)
	if includeSecondary {
		query = `
			SELECT OPENET_ID, County, Nearest_City_1, Nearest_City_2,
			       Longitude, Latitude,
			       CASE
			           WHEN Nearest_City_1 LIKE ? THEN Dist_City_1_ft
			           ELSE Dist_City_2_ft
			       END AS distance_ft
			FROM ` + fieldPointsTable + `
			WHERE Nearest_City_1 LIKE ? OR Nearest_City_2 LIKE ?
			ORDER BY distance_ft`
		args = []any{pattern, pattern, pattern}
	} else {
		query = `
			SELECT OPENET_ID, County, Nearest_City_1, Nearest_City_2,
			       Longitude, Latitude, Dist_City_1_ft AS distance_ft
			FROM ` + fieldPointsTable + `
			WHERE Nearest_City_1 LIKE ?
			ORDER BY distance_ft`
		args = []any{pattern}
	}

	rows, err := s.fields.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying fields near city %q: %w", name, err)
	}
	defer rows.Close()

	return scanFieldRefs(rows, true)
}

// FindByCounty returns every field in a county whose name contains the
// given name (case-insensitive). Order is unspecified and no distance is
// reported. An empty slice means no field matched.
func (s *Store) FindByCounty(ctx context.Context, name string) ([]types.FieldReference, error) {
	rows, err := s.fields.QueryContext(ctx, `
		SELECT OPENET_ID, County, Nearest_City_1, Nearest_City_2,
		       Longitude, Latitude
		FROM `+fieldPointsTable+`
		WHERE County LIKE ?`,
		"%"+name+"%")
	if err != nil {
		return nil, fmt.Errorf("querying fields in county %q: %w", name, err)
	}
	defer rows.Close()

	return scanFieldRefs(rows, false)
}

func scanFieldRefs(rows *sql.Rows, withDistance bool) ([]types.FieldReference, error) {
	var refs []types.FieldReference
	for rows.Next() {
		var (
			ref      types.FieldReference
			county   sql.NullString
			city1    sql.NullString
			city2    sql.NullString
			lon, lat sql.NullFloat64
			dist     sql.NullFloat64
		)

		dest := []any{&ref.FieldID, &county, &city1, &city2, &lon, &lat}
		if withDistance {
			dest = append(dest, &dist)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scanning field row: %w", err)
		}

		ref.County = county.String
		ref.NearestCity1 = city1.String
		ref.NearestCity2 = city2.String
		ref.Longitude = lon.Float64
		ref.Latitude = lat.Float64
		ref.DistanceFt = dist.Float64
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

// FieldIDs extracts the identifiers from a list of field references.
func FieldIDs(refs []types.FieldReference) []string {
	ids := make([]string, len(refs))
	for i, r := range refs {
		ids[i] = r.FieldID
	}
	return ids
}
