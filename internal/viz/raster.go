// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package viz

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"sort"
	"time"

	"github.com/wcharczuk/go-chart/v2"

	"github.com/oregon-agtech/smart-tap/internal/catalog"
	"github.com/oregon-agtech/smart-tap/pkg/types"
)

const (
	defaultChartWidth  = 1000
	defaultChartHeight = 480
	histogramBins      = 10
)

// Renderer produces raster PNG charts. Axis titles come from the variable
// catalog, falling back to the raw variable code.
type Renderer struct {
	width  int
	height int
	vars   *catalog.VariableCatalog
}

// NewRenderer builds a renderer from config, applying default dimensions.
func NewRenderer(cfg types.RenderConfig, vars *catalog.VariableCatalog) *Renderer {
	w, h := cfg.Width, cfg.Height
	if w <= 0 {
		w = defaultChartWidth
	}
	if h <= 0 {
		h = defaultChartHeight
	}
	return &Renderer{width: w, height: h, vars: vars}
}

// RenderPNG renders a view decision into PNG bytes. Like VegaSpec it
// treats the decision as the single source of truth for layout. When the
// spec supplies a date window, the horizontal axis is clipped exactly to
// it rather than to the data extent, even when the data has gaps at the
// window edges.
func (r *Renderer) RenderPNG(result *types.TimeSeriesResult, decision ViewDecision, spec types.QuerySpec) ([]byte, error) {
	if result.Empty() {
		return nil, fmt.Errorf("cannot render chart from an empty result")
	}

	title := chartTitle(spec, resultVariables(decision))

	switch d := decision.(type) {
	case Single:
		if len(d.Variables) == 0 {
			return nil, fmt.Errorf("no variables to plot: spec variables %v, result columns %v",
				spec.Variables, result.Columns)
		}
		return r.renderSingle(result, d.Variables, spec, title)

	case DualAxis:
		return r.renderDualAxis(result, d, spec, title)

	case Facet:
		return r.renderFacet(result, d.Variables, spec, title)

	default:
		return nil, fmt.Errorf("unhandled view decision %T", decision)
	}
}

func (r *Renderer) renderSingle(result *types.TimeSeriesResult, variables []string, spec types.QuerySpec, title string) ([]byte, error) {
	// Bar and the distribution chart types use categorical axes and only
	// apply to a single variable.
	if len(variables) == 1 {
		switch spec.ChartType {
		case "bar":
			return r.renderBar(result, variables[0], title)
		case "histogram":
			return r.renderHistogram(result, variables[0], title)
		case "box":
			return r.renderBox(result, variables[0], title)
		}
	}

	graph := chart.Chart{
		Title:  title,
		Width:  r.width,
		Height: r.height,
		XAxis:  r.timeAxis(spec),
	}

	if len(variables) == 1 {
		graph.YAxis = chart.YAxis{Name: r.vars.Label(variables[0])}
	} else {
		graph.YAxis = chart.YAxis{Name: "Value"}
	}

	for i, v := range variables {
		xs, ys := seriesPoints(result, v)
		if len(xs) == 0 {
			continue
		}
		graph.Series = append(graph.Series, chart.TimeSeries{
			Name:    r.vars.Label(v),
			XValues: xs,
			YValues: ys,
			Style:   seriesStyle(spec.ChartType, i),
		})
	}
	if len(graph.Series) == 0 {
		return nil, fmt.Errorf("no values to plot for variables %v", variables)
	}
	if len(variables) > 1 {
		graph.Elements = []chart.Renderable{chart.Legend(&graph)}
	}

	return encodeChart(&graph)
}

func (r *Renderer) renderDualAxis(result *types.TimeSeriesResult, d DualAxis, spec types.QuerySpec, title string) ([]byte, error) {
	leftX, leftY := seriesPoints(result, d.Left)
	rightX, rightY := seriesPoints(result, d.Right)
	if len(leftX) == 0 || len(rightX) == 0 {
		return nil, fmt.Errorf("dual-axis requires values for both %s and %s", d.Left, d.Right)
	}

	graph := chart.Chart{
		Title:          title,
		Width:          r.width,
		Height:         r.height,
		XAxis:          r.timeAxis(spec),
		YAxis:          chart.YAxis{Name: r.vars.Label(d.Left)},
		YAxisSecondary: chart.YAxis{Name: r.vars.Label(d.Right)},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    r.vars.Label(d.Left),
				XValues: leftX,
				YValues: leftY,
				Style:   chart.Style{StrokeColor: chart.GetDefaultColor(0), StrokeWidth: 2},
			},
			chart.TimeSeries{
				Name:    r.vars.Label(d.Right),
				YAxis:   chart.YAxisSecondary,
				XValues: rightX,
				YValues: rightY,
				Style:   chart.Style{StrokeColor: chart.GetDefaultColor(1), StrokeWidth: 2},
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	return encodeChart(&graph)
}

// renderFacet renders one sub-chart per variable and stacks them into a
// single image, sharing the time window across facets.
func (r *Renderer) renderFacet(result *types.TimeSeriesResult, variables []string, spec types.QuerySpec, title string) ([]byte, error) {
	facetHeight := r.height / 2
	if facetHeight < 160 {
		facetHeight = 160
	}

	var facets []image.Image
	for i, v := range variables {
		xs, ys := seriesPoints(result, v)
		if len(xs) == 0 {
			continue
		}
		graph := chart.Chart{
			Width:  r.width,
			Height: facetHeight,
			XAxis:  r.timeAxis(spec),
			YAxis:  chart.YAxis{Name: r.vars.Label(v)},
			Series: []chart.Series{chart.TimeSeries{
				Name:    r.vars.Label(v),
				XValues: xs,
				YValues: ys,
				Style:   seriesStyle(spec.ChartType, i),
			}},
		}
		if i == 0 {
			graph.Title = title
		}

		data, err := encodeChart(&graph)
		if err != nil {
			return nil, fmt.Errorf("rendering facet %s: %w", v, err)
		}
		img, err := png.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("decoding facet %s: %w", v, err)
		}
		facets = append(facets, img)
	}
	if len(facets) == 0 {
		return nil, fmt.Errorf("no values to plot for variables %v", variables)
	}

	return stackImages(facets)
}

// renderBar draws one bar per timestamp, labeled by month.
func (r *Renderer) renderBar(result *types.TimeSeriesResult, variable, title string) ([]byte, error) {
	var bars []chart.Value
	for _, row := range result.Rows {
		v, ok := row.Value(variable)
		if !ok {
			continue
		}
		bars = append(bars, chart.Value{
			Label: row.Timestamp.Format("2006-01"),
			Value: v,
		})
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("no values to plot for %s", variable)
	}

	barWidth := r.width / (len(bars) * 2)
	if barWidth < 4 {
		barWidth = 4
	}

	graph := chart.BarChart{
		Title:    title,
		Width:    r.width,
		Height:   r.height,
		BarWidth: barWidth,
		YAxis:    chart.YAxis{Name: r.vars.Label(variable)},
		Bars:     bars,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("rendering bar chart: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) renderHistogram(result *types.TimeSeriesResult, variable, title string) ([]byte, error) {
	vals := result.Column(variable)
	if len(vals) == 0 {
		return nil, fmt.Errorf("no values to bin for %s", variable)
	}

	min, max := vals[0], vals[0]
	for _, v := range vals {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	width := (max - min) / histogramBins
	if width == 0 {
		width = 1
	}

	counts := make([]int, histogramBins)
	for _, v := range vals {
		bin := int((v - min) / width)
		if bin >= histogramBins {
			bin = histogramBins - 1
		}
		counts[bin]++
	}

	bars := make([]chart.Value, histogramBins)
	for i, n := range counts {
		lo := min + float64(i)*width
		bars[i] = chart.Value{
			Label: fmt.Sprintf("%.1f", lo),
			Value: float64(n),
		}
	}

	graph := chart.BarChart{
		Title:    title,
		Width:    r.width,
		Height:   r.height,
		BarWidth: r.width / (histogramBins * 2),
		YAxis:    chart.YAxis{Name: "Frequency"},
		Bars:     bars,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("rendering histogram: %w", err)
	}
	return buf.Bytes(), nil
}

// renderBox draws the five-number summary of one variable as labeled
// horizontal levels (go-chart has no box mark).
func (r *Renderer) renderBox(result *types.TimeSeriesResult, variable, title string) ([]byte, error) {
	vals := result.Column(variable)
	if len(vals) == 0 {
		return nil, fmt.Errorf("no values to summarize for %s", variable)
	}
	sorted := make([]float64, len(vals))
	copy(sorted, vals)
	sort.Float64s(sorted)

	levels := []struct {
		label string
		value float64
	}{
		{"min", sorted[0]},
		{"q1", quantile(sorted, 0.25)},
		{"median", quantile(sorted, 0.5)},
		{"q3", quantile(sorted, 0.75)},
		{"max", sorted[len(sorted)-1]},
	}

	graph := chart.Chart{
		Title:  title,
		Width:  r.width,
		Height: r.height,
		YAxis:  chart.YAxis{Name: r.vars.Label(variable)},
	}
	annotations := make([]chart.Value2, 0, len(levels))
	for i, l := range levels {
		graph.Series = append(graph.Series, chart.ContinuousSeries{
			XValues: []float64{0, 1},
			YValues: []float64{l.value, l.value},
			Style:   chart.Style{StrokeColor: chart.GetDefaultColor(i), StrokeWidth: 2},
		})
		annotations = append(annotations, chart.Value2{
			XValue: 1,
			YValue: l.value,
			Label:  fmt.Sprintf("%s %.2f", l.label, l.value),
		})
	}
	graph.Series = append(graph.Series, chart.AnnotationSeries{Annotations: annotations})

	return encodeChart(&graph)
}

// timeAxis builds the X axis, clipped to the requested window when the
// spec supplies one.
func (r *Renderer) timeAxis(spec types.QuerySpec) chart.XAxis {
	axis := chart.XAxis{
		Name:           "Date/Time",
		ValueFormatter: chart.TimeValueFormatterWithFormat("2006-01-02"),
	}
	if start, end, ok := spec.Window(); ok {
		axis.Range = &chart.ContinuousRange{
			Min: float64(start.UnixNano()),
			Max: float64(end.UnixNano()),
		}
	}
	return axis
}

// seriesStyle maps the requested chart type onto go-chart series styles.
// Scatter and area only affect single-variable raster charts, mirroring
// the reference renderer.
func seriesStyle(chartType string, index int) chart.Style {
	color := chart.GetDefaultColor(index)
	switch chartType {
	case "scatter":
		return chart.Style{StrokeWidth: chart.Disabled, DotWidth: 4, DotColor: color}
	case "area":
		return chart.Style{StrokeColor: color, StrokeWidth: 2, FillColor: color.WithAlpha(64)}
	default:
		return chart.Style{StrokeColor: color, StrokeWidth: 2}
	}
}

// seriesPoints extracts the (timestamp, value) pairs of one variable,
// skipping missing values.
func seriesPoints(result *types.TimeSeriesResult, variable string) ([]time.Time, []float64) {
	var (
		xs []time.Time
		ys []float64
	)
	for _, row := range result.Rows {
		if v, ok := row.Value(variable); ok {
			xs = append(xs, row.Timestamp)
			ys = append(ys, v)
		}
	}
	return xs, ys
}

func encodeChart(graph *chart.Chart) ([]byte, error) {
	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("rendering chart: %w", err)
	}
	return buf.Bytes(), nil
}

// quantile interpolates the q-th quantile of an ascending-sorted slice.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(pos)
	frac := pos - float64(lo)
	if lo+1 >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	return sorted[lo]*(1-frac) + sorted[lo+1]*frac
}

// stackImages composes facet images vertically into one PNG.
func stackImages(images []image.Image) ([]byte, error) {
	var width, height int
	for _, img := range images {
		b := img.Bounds()
		if b.Dx() > width {
			width = b.Dx()
		}
		height += b.Dy()
	}

	canvas := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(canvas, canvas.Bounds(), image.White, image.Point{}, draw.Src)

	y := 0
	for _, img := range images {
		b := img.Bounds()
		rect := image.Rect(0, y, b.Dx(), y+b.Dy())
		draw.Draw(canvas, rect, img, b.Min, draw.Src)
		y += b.Dy()
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return nil, fmt.Errorf("encoding faceted chart: %w", err)
	}
	return buf.Bytes(), nil
}
