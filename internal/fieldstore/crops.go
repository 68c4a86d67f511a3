// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fieldstore

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/oregon-agtech/smart-tap/pkg/types"
)

const (
	cropTable     = "CROP"
	cropColPrefix = "CROP_"
)

// CropsForFields returns the crop code assigned to each field for a year.
// When the requested year's column is absent from the crop table, the
// lexicographically-last available year column is used instead and the
// substitution is reported as a year_fallback warning; each assignment
// carries the year actually used. Rows whose crop code does not parse as
// an integer are dropped so one bad row cannot block the query.
func (s *Store) CropsForFields(ctx context.Context, ids []string, year int) ([]types.CropAssignment, []types.Warning, error) {
	if len(ids) == 0 {
		return nil, nil, nil
	}

	cols, err := tableColumns(s.crops, cropTable)
	if err != nil {
		return nil, nil, err
	}
	if len(cols) == 0 {
		return nil, nil, fmt.Errorf("crop table %s does not exist", cropTable)
	}

	var yearCols []string
	for _, c := range cols {
		if strings.HasPrefix(c, cropColPrefix) {
			yearCols = append(yearCols, c)
		}
	}
	if len(yearCols) == 0 {
		return nil, nil, fmt.Errorf("crop table %s has no %s* year columns", cropTable, cropColPrefix)
	}
	sort.Strings(yearCols)

	var warnings []types.Warning
	col := cropColPrefix + strconv.Itoa(year)
	usedYear := year
	if !contains(yearCols, col) {
		col = yearCols[len(yearCols)-1]
		usedYear = yearFromColumn(col, year)
		warnings = append(warnings, types.Warning{
			Code:    types.WarnYearFallback,
			Message: fmt.Sprintf("crop data for %d not available, using %s", year, col),
		})
	}
	if !identRe.MatchString(col) {
		return nil, nil, fmt.Errorf("invalid crop column name %q", col)
	}

	query := fmt.Sprintf(`SELECT OPENET_ID, %s FROM %s WHERE OPENET_ID IN (%s)`,
		col, cropTable, placeholders(len(ids)))

	rows, err := s.crops.QueryContext(ctx, query, idArgs(ids)...)
	if err != nil {
		return nil, nil, fmt.Errorf("querying crops for %d fields: %w", len(ids), err)
	}
	defer rows.Close()

	var assignments []types.CropAssignment
	for rows.Next() {
		var (
			fieldID string
			raw     any
		)
		if err := rows.Scan(&fieldID, &raw); err != nil {
			return nil, nil, fmt.Errorf("scanning crop row: %w", err)
		}
		v, ok := coerceFloat(raw)
		if !ok {
			continue
		}
		assignments = append(assignments, types.CropAssignment{
			FieldID:  fieldID,
			CropCode: int(v),
			Year:     usedYear,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	return assignments, warnings, nil
}

// yearFromColumn parses the year out of a CROP_YYYY column name, falling
// back to the requested year when the suffix is not numeric.
func yearFromColumn(col string, fallback int) int {
	y, err := strconv.Atoi(strings.TrimPrefix(col, cropColPrefix))
	if err != nil {
		return fallback
	}
	return y
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
