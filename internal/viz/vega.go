// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package viz

import (
	"fmt"
	"time"

	"github.com/oregon-agtech/smart-tap/internal/catalog"
	"github.com/oregon-agtech/smart-tap/pkg/types"
)

const vegaSchema = "https://vega.github.io/schema/vega-lite/v5.json"

// VegaSpec renders a view decision into a Vega-Lite specification. The
// decision is the single source of truth for layout; no thresholds are
// re-evaluated here. The declarative output supports the bar and line
// marks only (the raster-only chart types are a deliberate asymmetry).
func VegaSpec(result *types.TimeSeriesResult, decision ViewDecision, spec types.QuerySpec, vars *catalog.VariableCatalog) (map[string]any, error) {
	if result.Empty() {
		return nil, fmt.Errorf("cannot build chart spec from an empty result")
	}

	title := chartTitle(spec, resultVariables(decision))
	mark := markType(spec.ChartType)

	switch d := decision.(type) {
	case Single:
		if len(d.Variables) == 0 {
			return nil, fmt.Errorf("no variables to plot: spec variables %v, result columns %v",
				spec.Variables, result.Columns)
		}
		return map[string]any{
			"$schema": vegaSchema,
			"title":   title,
			"data":    map[string]any{"values": longRecords(result, d.Variables)},
			"mark":    map[string]any{"type": mark},
			"encoding": map[string]any{
				"x":       temporalX("Date/Time"),
				"y":       map[string]any{"field": "value", "type": "quantitative", "title": "Value"},
				"color":   map[string]any{"field": "variable", "type": "nominal", "title": "Variable"},
				"tooltip": tooltipFields(),
			},
		}, nil

	case DualAxis:
		layer := func(code string, rightAxis bool) map[string]any {
			y := map[string]any{
				"field": "value",
				"type":  "quantitative",
				"title": vars.Label(code),
			}
			if rightAxis {
				y["axis"] = map[string]any{"orient": "right"}
			}
			return map[string]any{
				"data": map[string]any{"values": longRecords(result, []string{code})},
				"mark": map[string]any{"type": mark},
				"encoding": map[string]any{
					"x":       temporalX("Date/Time"),
					"y":       y,
					"tooltip": tooltipFields(),
				},
			}
		}
		return map[string]any{
			"$schema": vegaSchema,
			"title":   title,
			"resolve": map[string]any{"scale": map[string]any{"y": "independent"}},
			"layer":   []any{layer(d.Left, false), layer(d.Right, true)},
		}, nil

	case Facet:
		return map[string]any{
			"$schema": vegaSchema,
			"title":   title,
			"data":    map[string]any{"values": longRecords(result, d.Variables)},
			"facet":   map[string]any{"field": "variable", "type": "nominal"},
			"spec": map[string]any{
				"mark": map[string]any{"type": mark},
				"encoding": map[string]any{
					"x":       temporalX("Date/Time"),
					"y":       map[string]any{"field": "value", "type": "quantitative", "title": "Value"},
					"tooltip": tooltipFields(),
				},
			},
			"columns": 1,
		}, nil

	default:
		return nil, fmt.Errorf("unhandled view decision %T", decision)
	}
}

// markType maps the requested chart type to a Vega-Lite mark: bar when
// literally requested, line otherwise.
func markType(chartType string) string {
	if chartType == "bar" {
		return "bar"
	}
	return "line"
}

// resultVariables lists the variables a decision will plot.
func resultVariables(decision ViewDecision) []string {
	switch d := decision.(type) {
	case Single:
		return d.Variables
	case DualAxis:
		return []string{d.Left, d.Right}
	case Facet:
		return d.Variables
	default:
		return nil
	}
}

// longRecords melts the result to long form: one record per (timestamp,
// variable) pair with an ISO datetime string. Missing values are skipped.
func longRecords(result *types.TimeSeriesResult, variables []string) []map[string]any {
	out := make([]map[string]any, 0, len(result.Rows)*len(variables))
	for _, row := range result.Rows {
		for _, v := range variables {
			val, ok := row.Value(v)
			if !ok {
				continue
			}
			out = append(out, map[string]any{
				"datetime": row.Timestamp.Format(time.RFC3339),
				"variable": v,
				"value":    val,
			})
		}
	}
	return out
}

func temporalX(title string) map[string]any {
	return map[string]any{"field": "datetime", "type": "temporal", "title": title}
}

func tooltipFields() []any {
	return []any{
		map[string]any{"field": "datetime", "type": "temporal"},
		map[string]any{"field": "variable", "type": "nominal"},
		map[string]any{"field": "value", "type": "quantitative"},
	}
}
