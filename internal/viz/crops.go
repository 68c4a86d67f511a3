// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package viz

import (
	"bytes"
	"fmt"

	"github.com/wcharczuk/go-chart/v2"

	"github.com/oregon-agtech/smart-tap/pkg/types"
)

// CropBarPNG renders a bar chart of field counts per crop, most common
// first. Rows are expected in the order SummarizeCrops returns them.
func (r *Renderer) CropBarPNG(rows []types.CropSummaryRow, location string) ([]byte, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("no crop rows to chart")
	}

	bars := make([]chart.Value, len(rows))
	for i, row := range rows {
		bars[i] = chart.Value{
			Label: row.CropName,
			Value: float64(row.FieldCount),
		}
	}

	barWidth := r.width / (len(rows) * 2)
	if barWidth < 10 {
		barWidth = 10
	}

	graph := chart.BarChart{
		Title:    cropChartTitle(location),
		Width:    r.width,
		Height:   r.height,
		BarWidth: barWidth,
		YAxis:    chart.YAxis{Name: "Number of Fields"},
		Bars:     bars,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("rendering crop bar chart: %w", err)
	}
	return buf.Bytes(), nil
}

// CropPiePNG renders a pie chart of the crop mix by field share.
func (r *Renderer) CropPiePNG(rows []types.CropSummaryRow, location string) ([]byte, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("no crop rows to chart")
	}

	values := make([]chart.Value, len(rows))
	for i, row := range rows {
		values[i] = chart.Value{
			Label: fmt.Sprintf("%s (%.1f%%)", row.CropName, row.Percentage),
			Value: float64(row.FieldCount),
		}
	}

	side := r.height
	graph := chart.PieChart{
		Title:  cropChartTitle(location),
		Width:  side,
		Height: side,
		Values: values,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("rendering crop pie chart: %w", err)
	}
	return buf.Bytes(), nil
}

// CropBarVega builds the Vega-Lite counterpart of CropBarPNG.
func CropBarVega(rows []types.CropSummaryRow, location string) (map[string]any, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("no crop rows to chart")
	}

	values := make([]map[string]any, len(rows))
	for i, row := range rows {
		values[i] = map[string]any{
			"crop":       row.CropName,
			"fields":     row.FieldCount,
			"percentage": row.Percentage,
		}
	}

	return map[string]any{
		"$schema": vegaSchema,
		"title":   cropChartTitle(location),
		"data":    map[string]any{"values": values},
		"mark":    "bar",
		"encoding": map[string]any{
			"x": map[string]any{
				"field": "crop",
				"type":  "nominal",
				"sort":  "-y",
				"axis":  map[string]any{"labelAngle": -45},
			},
			"y": map[string]any{
				"field": "fields",
				"type":  "quantitative",
				"title": "Number of Fields",
			},
			"tooltip": []map[string]any{
				{"field": "crop", "type": "nominal"},
				{"field": "fields", "type": "quantitative"},
				{"field": "percentage", "type": "quantitative"},
			},
		},
	}, nil
}

// CropPieVega builds the Vega-Lite counterpart of CropPiePNG using an
// arc mark with a color legend.
func CropPieVega(rows []types.CropSummaryRow, location string) (map[string]any, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("no crop rows to chart")
	}

	values := make([]map[string]any, len(rows))
	for i, row := range rows {
		values[i] = map[string]any{
			"crop":       row.CropName,
			"fields":     row.FieldCount,
			"percentage": row.Percentage,
		}
	}

	return map[string]any{
		"$schema": vegaSchema,
		"title":   cropChartTitle(location),
		"data":    map[string]any{"values": values},
		"mark":    map[string]any{"type": "arc", "tooltip": true},
		"encoding": map[string]any{
			"theta": map[string]any{
				"field": "fields",
				"type":  "quantitative",
			},
			"color": map[string]any{
				"field": "crop",
				"type":  "nominal",
			},
		},
	}, nil
}

func cropChartTitle(location string) string {
	if location == "" {
		return "Crop Distribution"
	}
	return fmt.Sprintf("Crop Distribution near %s", titleCase(location))
}
