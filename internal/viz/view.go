// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package viz turns a time-series result into chart artifacts: a layout
// decision, a Vega-Lite specification, and a raster PNG. The layout
// decision is made once and both renderers dispatch on it, so the two
// outputs cannot disagree on series or axis assignment.
package viz

import (
	"fmt"

	"github.com/oregon-agtech/smart-tap/pkg/types"
)

// dualAxisRatio is the scale ratio at or above which two variables get
// independent axes. Inherited from the reference behavior; not validated
// for other variable pairs.
const dualAxisRatio = 5.0

// rangeEpsilon guards the ratio against division by zero without biasing
// large ratios.
const rangeEpsilon = 1e-9

// ViewDecision is the layout chosen for a result: exactly one of Single,
// DualAxis, or Facet. Every decision carries a Reason describing the
// numeric condition that produced it.
type ViewDecision interface {
	// Reason explains the decision for auditing.
	Reason() string

	viewDecision()
}

// Single plots zero or more variables on one shared axis.
type Single struct {
	Variables []string
	Why       string
}

// DualAxis plots two variables with independent vertical scales. Left is
// the variable with the larger value range.
type DualAxis struct {
	Left  string
	Right string
	Why   string
}

// Facet plots three or more variables as small multiples, one per variable.
type Facet struct {
	Variables []string
	Why       string
}

func (d Single) Reason() string   { return d.Why }
func (d DualAxis) Reason() string { return d.Why }
func (d Facet) Reason() string    { return d.Why }

func (Single) viewDecision()   {}
func (DualAxis) viewDecision() {}
func (Facet) viewDecision()    {}

// ChooseView picks the layout for a result. Pure and deterministic:
//
//   - 0 or 1 variables: Single.
//   - all ranges zero (flat or all-null series): Single with the first
//     requested variable only.
//   - exactly 2 variables: DualAxis when the larger range is at least
//     dualAxisRatio times the smaller nonzero range, else Single.
//   - 3+ variables: Facet, regardless of scale.
func ChooseView(result *types.TimeSeriesResult, variables []string, chartType string) ViewDecision {
	if len(variables) <= 1 {
		return Single{
			Variables: variables,
			Why:       "only one variable requested, single-axis",
		}
	}

	ranges := make(map[string]float64, len(variables))
	var nonzero []float64
	for _, v := range variables {
		r := valueRange(result.Column(v))
		ranges[v] = r
		if r > 0 {
			nonzero = append(nonzero, r)
		}
	}

	if len(nonzero) == 0 {
		return Single{
			Variables: variables[:1],
			Why:       "all variable ranges are 0 (flat series), using first variable on single-axis",
		}
	}

	if len(variables) == 2 {
		rmax, rmin := nonzero[0], nonzero[0]
		for _, r := range nonzero[1:] {
			if r > rmax {
				rmax = r
			}
			if r < rmin {
				rmin = r
			}
		}
		ratio := rmax / (rmin + rangeEpsilon)
		if ratio >= dualAxisRatio {
			left, right := variables[0], variables[1]
			if ranges[right] > ranges[left] {
				left, right = right, left
			}
			return DualAxis{
				Left:  left,
				Right: right,
				Why: fmt.Sprintf("two variables with scale ratio %.2f >= %g, dual-axis (left=%s, right=%s)",
					ratio, dualAxisRatio, left, right),
			}
		}
		return Single{
			Variables: variables,
			Why:       fmt.Sprintf("two variables with similar scales (ratio %.2f < %g), single-axis", ratio, dualAxisRatio),
		}
	}

	return Facet{
		Variables: variables,
		Why:       "3+ variables requested, faceted small multiples",
	}
}

// valueRange is max minus min of the non-missing values; zero for empty
// or constant series.
func valueRange(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	min, max := vals[0], vals[0]
	for _, v := range vals[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return max - min
}
