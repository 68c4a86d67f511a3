// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fieldstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/oregon-agtech/smart-tap/pkg/types"
)

// monthColumn builds the backing column name for one (variable, month)
// pair. Format: VAR_MM_YY<unit_suffix>, e.g. ETa_01_20_in or AW_01_20_acft.
func monthColumn(variable string, month time.Time, suffix string) string {
	return variable + "_" + month.Format("01_06") + suffix
}

// monthsIn enumerates every first-of-month date in [start, end] inclusive.
func monthsIn(start, end time.Time) []time.Time {
	first := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)
	last := time.Date(end.Year(), end.Month(), 1, 0, 0, 0, 0, time.UTC)

	var months []time.Time
	for m := first; !m.After(last); m = m.AddDate(0, 1, 0) {
		months = append(months, m)
	}
	return months
}

// SeriesForFields extracts a monthly time series for one variable across a
// set of fields, aggregated per month with the requested function (mean,
// sum, or median; anything else falls back to mean with a warning).
//
// The backing table is named after the variable and stores one column per
// month. Columns absent from the table are coverage gaps, skipped silently
// unless no requested column exists, in which case the result is empty and
// carries a coverage_gap warning. A missing table entirely is a
// configuration error reported as ErrNoSuchVariable.
func (s *Store) SeriesForFields(ctx context.Context, ids []string, variable string, start, end time.Time, aggregation string) (*types.TimeSeriesResult, error) {
	if !identRe.MatchString(variable) {
		return nil, fmt.Errorf("invalid variable name %q", variable)
	}

	result := &types.TimeSeriesResult{
		Columns:     []string{variable},
		FieldCount:  len(ids),
		Aggregation: aggregation,
	}

	agg, known := aggregator(aggregation)
	if !known {
		result.Aggregation = "mean"
		result.Warn(types.WarnUnknownAggregation,
			fmt.Sprintf("unknown aggregation %q, using mean", aggregation))
	}

	existing, err := tableColumns(s.crops, variable)
	if err != nil {
		return nil, err
	}
	if len(existing) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoSuchVariable, variable)
	}
	existingSet := make(map[string]bool, len(existing))
	for _, c := range existing {
		existingSet[c] = true
	}

	suffix := s.vars.Suffix(variable)
	var (
		cols  []string
		dates []time.Time
	)
	for _, m := range monthsIn(start, end) {
		col := monthColumn(variable, m, suffix)
		if existingSet[col] {
			cols = append(cols, col)
			dates = append(dates, m)
		}
	}
	if len(cols) == 0 {
		result.Warn(types.WarnCoverageGap,
			fmt.Sprintf("no %s columns cover %s to %s", variable,
				start.Format("2006-01-02"), end.Format("2006-01-02")))
		return result, nil
	}
	if len(ids) == 0 {
		return result, nil
	}

	query := fmt.Sprintf(`SELECT OPENET_ID, %s FROM %s WHERE OPENET_ID IN (%s)`,
		strings.Join(cols, ", "), variable, placeholders(len(ids)))

	rows, err := s.crops.QueryContext(ctx, query, idArgs(ids)...)
	if err != nil {
		return nil, fmt.Errorf("querying %s for %d fields: %w", variable, len(ids), err)
	}
	defer rows.Close()

	// Wide to long: collect per-month value lists across all fields.
	perMonth := make([][]float64, len(cols))
	for rows.Next() {
		dest := make([]any, len(cols)+1)
		var fieldID string
		dest[0] = &fieldID
		raw := make([]any, len(cols))
		for i := range raw {
			dest[i+1] = &raw[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scanning %s row: %w", variable, err)
		}
		for i, r := range raw {
			if v, ok := coerceFloat(r); ok {
				perMonth[i] = append(perMonth[i], v)
			}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i, date := range dates {
		rec := types.Record{Timestamp: date, Values: map[string]float64{}}
		if len(perMonth[i]) > 0 {
			rec.Values[variable] = agg(perMonth[i])
		}
		result.Rows = append(result.Rows, rec)
	}

	return result, nil
}

// aggregator returns the cross-field reduction for an aggregation name.
// ok is false for unrecognized names, in which case mean is returned.
func aggregator(name string) (func([]float64) float64, bool) {
	switch name {
	case "mean":
		return mean, true
	case "sum":
		return sum, true
	case "median":
		return median, true
	default:
		return mean, false
	}
}

func sum(vals []float64) float64 {
	var total float64
	for _, v := range vals {
		total += v
	}
	return total
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	return sum(vals) / float64(len(vals))
}

func median(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sorted := make([]float64, len(vals))
	copy(sorted, vals)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}
