// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Warning codes reported on query results.
const (
	WarnYearFallback        = "year_fallback"
	WarnCropFilterUnmatched = "crop_filter_unmatched"
	WarnUnknownAggregation  = "unknown_aggregation"
	WarnCoverageGap         = "coverage_gap"
)

// Warning records a non-fatal condition encountered while producing a
// result. Warnings accumulate on the result instead of being printed, so
// the caller decides how to surface them.
type Warning struct {
	Code    string `json:"code" yaml:"code"`
	Message string `json:"message" yaml:"message"`
}

// Record is one time-stamped observation. Values holds one entry per
// variable code; a missing entry is a missing (null) value.
type Record struct {
	Timestamp time.Time          `json:"timestamp"`
	Values    map[string]float64 `json:"values"`
}

// Value returns the value for a variable code. ok is false when the value
// is missing for this timestamp.
func (r Record) Value(code string) (float64, bool) {
	v, ok := r.Values[code]
	return v, ok
}

// TimeSeriesResult is an ordered set of variable columns over rows sorted
// ascending by timestamp. Rows may have missing values per column.
type TimeSeriesResult struct {
	// Columns are the variable codes present, in request order.
	Columns []string `json:"columns"`

	// Rows are the observations, ascending by Timestamp.
	Rows []Record `json:"rows"`

	// FieldCount is the number of fields contributing to each aggregate.
	// Zero for results not produced by cross-field aggregation.
	FieldCount int `json:"field_count,omitempty"`

	// Aggregation is the function actually applied across fields.
	Aggregation string `json:"aggregation,omitempty"`

	// Location and LocationType identify the queried place, when known.
	Location     string `json:"location,omitempty"`
	LocationType string `json:"location_type,omitempty"`

	// Warnings accumulated while producing the result.
	Warnings []Warning `json:"warnings,omitempty"`
}

// Empty reports whether the result carries no rows.
func (t *TimeSeriesResult) Empty() bool {
	return t == nil || len(t.Rows) == 0
}

// Column extracts the non-missing values of one variable, in row order.
func (t *TimeSeriesResult) Column(code string) []float64 {
	if t == nil {
		return nil
	}
	out := make([]float64, 0, len(t.Rows))
	for _, row := range t.Rows {
		if v, ok := row.Value(code); ok {
			out = append(out, v)
		}
	}
	return out
}

// Warn appends a warning to the result.
func (t *TimeSeriesResult) Warn(code, message string) {
	t.Warnings = append(t.Warnings, Warning{Code: code, Message: message})
}
