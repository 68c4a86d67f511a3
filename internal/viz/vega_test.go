// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package viz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oregon-agtech/smart-tap/internal/catalog"
	"github.com/oregon-agtech/smart-tap/pkg/types"
)

func TestVegaSpecSingle(t *testing.T) {
	result := monthlyResult(map[string][]float64{"ETa": {1, 2, 3}})
	spec := types.QuerySpec{Dataset: "agrimet", Location: "corvallis", ChartType: "line"}
	decision := ChooseView(result, []string{"ETa"}, spec.ChartType)

	vega, err := VegaSpec(result, decision, spec, catalog.NewVariableCatalog())
	require.NoError(t, err)

	assert.Equal(t, vegaSchema, vega["$schema"])
	assert.Equal(t, "ETa in Corvallis (AGRIMET)", vega["title"])

	mark := vega["mark"].(map[string]any)
	assert.Equal(t, "line", mark["type"])

	data := vega["data"].(map[string]any)
	values := data["values"].([]map[string]any)
	require.Len(t, values, 3)
	assert.Equal(t, "ETa", values[0]["variable"])

	encoding := vega["encoding"].(map[string]any)
	x := encoding["x"].(map[string]any)
	assert.Equal(t, "temporal", x["type"])
}

func TestVegaSpecBarMark(t *testing.T) {
	result := monthlyResult(map[string][]float64{"PC": {0.1, 0.4}})
	spec := types.QuerySpec{Dataset: "agrimet", Location: "corvallis", ChartType: "bar"}
	decision := ChooseView(result, []string{"PC"}, spec.ChartType)

	vega, err := VegaSpec(result, decision, spec, catalog.NewVariableCatalog())
	require.NoError(t, err)

	mark := vega["mark"].(map[string]any)
	assert.Equal(t, "bar", mark["type"])
}

func TestVegaSpecDualAxis(t *testing.T) {
	result := monthlyResult(map[string][]float64{
		"PPT": {0, 200, 400},
		"MX":  {30, 50, 70},
	})
	spec := types.QuerySpec{Dataset: "agrimet", Location: "corvallis", ChartType: "line"}
	decision := ChooseView(result, []string{"MX", "PPT"}, spec.ChartType)
	require.IsType(t, DualAxis{}, decision)

	vega, err := VegaSpec(result, decision, spec, catalog.NewVariableCatalog())
	require.NoError(t, err)

	resolve := vega["resolve"].(map[string]any)
	scale := resolve["scale"].(map[string]any)
	assert.Equal(t, "independent", scale["y"])

	layers := vega["layer"].([]any)
	require.Len(t, layers, 2)

	left := layers[0].(map[string]any)
	leftY := left["encoding"].(map[string]any)["y"].(map[string]any)
	assert.Equal(t, "Precipitation (mm)", leftY["title"])
	assert.Nil(t, leftY["axis"])

	right := layers[1].(map[string]any)
	rightY := right["encoding"].(map[string]any)["y"].(map[string]any)
	assert.Equal(t, "Max Temp (°F)", rightY["title"])
	axis := rightY["axis"].(map[string]any)
	assert.Equal(t, "right", axis["orient"])
}

func TestVegaSpecFacet(t *testing.T) {
	result := monthlyResult(map[string][]float64{
		"ETa": {1, 2},
		"PPT": {3, 4},
		"AW":  {5, 6},
	})
	spec := types.QuerySpec{Dataset: "agrimet", Location: "corvallis", ChartType: "line"}
	decision := ChooseView(result, []string{"ETa", "PPT", "AW"}, spec.ChartType)
	require.IsType(t, Facet{}, decision)

	vega, err := VegaSpec(result, decision, spec, catalog.NewVariableCatalog())
	require.NoError(t, err)

	facet := vega["facet"].(map[string]any)
	assert.Equal(t, "variable", facet["field"])
	assert.Equal(t, 1, vega["columns"])

	data := vega["data"].(map[string]any)
	values := data["values"].([]map[string]any)
	assert.Len(t, values, 6)
}

func TestVegaSpecSkipsMissingValues(t *testing.T) {
	result := monthlyResult(map[string][]float64{"ETa": {1, 2, 3}})
	delete(result.Rows[1].Values, "ETa")
	spec := types.QuerySpec{Dataset: "agrimet", Location: "corvallis", ChartType: "line"}

	vega, err := VegaSpec(result, Single{Variables: []string{"ETa"}}, spec, catalog.NewVariableCatalog())
	require.NoError(t, err)

	data := vega["data"].(map[string]any)
	values := data["values"].([]map[string]any)
	assert.Len(t, values, 2)
}

func TestVegaSpecEmptyResult(t *testing.T) {
	spec := types.QuerySpec{Dataset: "agrimet"}
	_, err := VegaSpec(&types.TimeSeriesResult{}, Single{Variables: []string{"ETa"}}, spec, catalog.NewVariableCatalog())
	assert.Error(t, err)

	_, err = VegaSpec(nil, Single{Variables: []string{"ETa"}}, spec, catalog.NewVariableCatalog())
	assert.Error(t, err)
}

func TestVegaSpecSingleNoVariables(t *testing.T) {
	result := monthlyResult(map[string][]float64{"ETa": {1, 2}})
	spec := types.QuerySpec{Dataset: "agrimet"}
	_, err := VegaSpec(result, Single{}, spec, catalog.NewVariableCatalog())
	assert.Error(t, err)
}
