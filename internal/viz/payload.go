// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package viz

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/oregon-agtech/smart-tap/pkg/types"
)

// timestampLayouts are the accepted record timestamp formats.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParsePayload converts the records payload into a time-series result and
// the list of variables to plot. Structural problems (no records, missing
// datetime key, no plottable values) are errors; the payload is the sole
// interchange format between data loaders and the renderer, so a
// malformed one cannot be partially recovered.
//
// The requested variables come from the query spec, intersected with the columns
// actually present; when none survive, every numeric column is used.
// Rows are sorted ascending by timestamp.
func ParsePayload(p *types.Payload) (*types.TimeSeriesResult, []string, error) {
	records := p.Data.Records
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("no records in payload.data.records")
	}

	result := &types.TimeSeriesResult{}
	present := map[string]bool{}

	for i, rec := range records {
		ts, ok := recordTimestamp(rec)
		if !ok {
			return nil, nil, fmt.Errorf("record %d: missing or unparsable 'datetime' (or 'DATETIME') key", i)
		}

		row := types.Record{Timestamp: ts, Values: map[string]float64{}}
		for key, raw := range rec {
			if key == "datetime" || key == "DATETIME" {
				continue
			}
			if v, ok := numeric(raw); ok {
				row.Values[key] = v
				if !present[key] {
					present[key] = true
					result.Columns = append(result.Columns, key)
				}
			}
		}
		result.Rows = append(result.Rows, row)
	}

	sort.SliceStable(result.Rows, func(i, j int) bool {
		return result.Rows[i].Timestamp.Before(result.Rows[j].Timestamp)
	})
	sort.Strings(result.Columns)

	var requested []string
	for _, v := range p.Spec.Variables {
		if present[v] {
			requested = append(requested, v)
		}
	}
	if len(requested) == 0 {
		requested = append(requested, result.Columns...)
	}
	if len(requested) == 0 {
		return nil, nil, fmt.Errorf("payload has no numeric columns to plot")
	}

	return result, requested, nil
}

// recordTimestamp extracts and parses the datetime key of one record.
func recordTimestamp(rec map[string]any) (time.Time, bool) {
	raw, ok := rec["datetime"]
	if !ok {
		raw, ok = rec["DATETIME"]
	}
	if !ok {
		return time.Time{}, false
	}

	switch v := raw.(type) {
	case string:
		for _, layout := range timestampLayouts {
			if t, err := time.Parse(layout, v); err == nil {
				return t, true
			}
		}
		return time.Time{}, false
	case time.Time:
		return v, true
	default:
		return time.Time{}, false
	}
}

// numeric coerces a JSON-decoded value to float64. Strings holding
// numbers count; everything else is non-numeric.
func numeric(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(v, 64)
		return f, err == nil
	default:
		return 0, false
	}
}
