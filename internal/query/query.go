// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package query answers location-based crop and variable questions by
// composing the field locator, crop resolver, crop-name matcher, and
// variable time-series resolver.
package query

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/oregon-agtech/smart-tap/internal/catalog"
	"github.com/oregon-agtech/smart-tap/internal/fieldstore"
	"github.com/oregon-agtech/smart-tap/pkg/types"
)

// Service runs location/crop queries against the local backing tables.
// The catalogs are shared read-only state; everything else is created
// fresh per query.
type Service struct {
	store *fieldstore.Store
	crops *catalog.CropCatalog
}

// NewService wires the store and crop catalog into a query service.
func NewService(store *fieldstore.Store, crops *catalog.CropCatalog) *Service {
	return &Service{store: store, crops: crops}
}

// VariableRequest describes one variable time-series query.
type VariableRequest struct {
	// Location is the city or county name; Type selects which.
	Location string
	// LocationType is "city" or "county".
	LocationType string

	Variable   string
	Start, End time.Time

	// CropFilter optionally restricts fields to a named crop. When the
	// name matches no catalog entry, all located fields are used and a
	// crop_filter_unmatched warning is attached to the result.
	CropFilter string

	// Aggregation combines values across fields (default mean).
	Aggregation string

	// IncludeSecondaryCity extends city matching to second-nearest cities.
	IncludeSecondaryCity bool
}

// Variable answers a variable time-series query for fields near a city or
// in a county. The empty-crop-match fallback to all fields is deliberate,
// mirroring the permissive reference behavior, and is always surfaced as
// a warning rather than silently applied.
func (s *Service) Variable(ctx context.Context, req VariableRequest) (*types.TimeSeriesResult, error) {
	agg := req.Aggregation
	if agg == "" {
		agg = types.DefaultAggregation
	}

	refs, err := s.locate(ctx, req.Location, req.LocationType, req.IncludeSecondaryCity)
	if err != nil {
		return nil, err
	}

	result := &types.TimeSeriesResult{
		Columns:      []string{req.Variable},
		Aggregation:  agg,
		Location:     req.Location,
		LocationType: req.LocationType,
	}
	if len(refs) == 0 {
		result.Warn(types.WarnCoverageGap,
			fmt.Sprintf("no fields found for %s %q", req.LocationType, req.Location))
		return result, nil
	}

	ids := fieldstore.FieldIDs(refs)

	var warnings []types.Warning
	if req.CropFilter != "" {
		ids, warnings, err = s.filterByCrop(ctx, ids, req.CropFilter, req.Start.Year())
		if err != nil {
			return nil, err
		}
		if len(ids) == 0 {
			// All fields filtered out: short-circuit before the resolver.
			result.Warnings = warnings
			result.Warn(types.WarnCoverageGap,
				fmt.Sprintf("no %s fields match near %s", req.CropFilter, req.Location))
			return result, nil
		}
	}

	series, err := s.store.SeriesForFields(ctx, ids, req.Variable, req.Start, req.End, agg)
	if err != nil {
		return nil, err
	}

	series.Location = req.Location
	series.LocationType = req.LocationType
	series.Warnings = append(warnings, series.Warnings...)
	return series, nil
}

// locate resolves a location name to field references.
func (s *Service) locate(ctx context.Context, location, locationType string, includeSecondary bool) ([]types.FieldReference, error) {
	switch locationType {
	case "county":
		return s.store.FindByCounty(ctx, location)
	case "city", "":
		return s.store.FindByCity(ctx, location, includeSecondary)
	default:
		return nil, fmt.Errorf("unsupported location type %q", locationType)
	}
}

// filterByCrop narrows field IDs to those growing a crop matching the
// free-text filter. An unmatched filter keeps all fields and reports a
// warning; a matched filter may still leave zero fields.
func (s *Service) filterByCrop(ctx context.Context, ids []string, filter string, year int) ([]string, []types.Warning, error) {
	codes := s.crops.Match(filter)
	if len(codes) == 0 {
		return ids, []types.Warning{{
			Code:    types.WarnCropFilterUnmatched,
			Message: fmt.Sprintf("no crop found matching %q, using all fields", filter),
		}}, nil
	}

	assignments, warnings, err := s.store.CropsForFields(ctx, ids, year)
	if err != nil {
		return nil, nil, err
	}

	codeSet := make(map[int]bool, len(codes))
	for _, c := range codes {
		codeSet[c] = true
	}

	var filtered []string
	for _, a := range assignments {
		if codeSet[a.CropCode] {
			filtered = append(filtered, a.FieldID)
		}
	}
	return filtered, warnings, nil
}

// CropQueryResult pairs crop assignments with the field metadata they
// were joined against.
type CropQueryResult struct {
	Fields      []types.FieldReference
	Assignments []types.CropAssignment
	Warnings    []types.Warning
}

// Crops returns the crop assignment for every field near a city or in a
// county for one year. An empty result (no fields, or no crop data)
// carries the explanation in Warnings.
func (s *Service) Crops(ctx context.Context, location, locationType string, year int, includeSecondary bool) (*CropQueryResult, error) {
	refs, err := s.locate(ctx, location, locationType, includeSecondary)
	if err != nil {
		return nil, err
	}

	out := &CropQueryResult{Fields: refs}
	if len(refs) == 0 {
		out.Warnings = append(out.Warnings, types.Warning{
			Code:    types.WarnCoverageGap,
			Message: fmt.Sprintf("no fields found for %s %q", locationType, location),
		})
		return out, nil
	}

	assignments, warnings, err := s.store.CropsForFields(ctx, fieldstore.FieldIDs(refs), year)
	if err != nil {
		return nil, err
	}
	out.Assignments = assignments
	out.Warnings = warnings
	return out, nil
}

// SummarizeCrops counts fields per crop, resolves names and groups from
// the catalog, and returns the top N crops by field count with each
// crop's percentage share (one decimal place).
func (s *Service) SummarizeCrops(assignments []types.CropAssignment, topN int) []types.CropSummaryRow {
	if len(assignments) == 0 {
		return nil
	}

	counts := make(map[int]int)
	for _, a := range assignments {
		counts[a.CropCode]++
	}

	rows := make([]types.CropSummaryRow, 0, len(counts))
	total := len(assignments)
	for code, n := range counts {
		rows = append(rows, types.CropSummaryRow{
			CropCode:   code,
			CropName:   s.crops.Name(code),
			CropGroup:  s.crops.Group(code),
			FieldCount: n,
			Percentage: roundTo1(float64(n) / float64(total) * 100),
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].FieldCount != rows[j].FieldCount {
			return rows[i].FieldCount > rows[j].FieldCount
		}
		return rows[i].CropCode < rows[j].CropCode
	})

	if topN > 0 && len(rows) > topN {
		rows = rows[:topN]
	}
	return rows
}

func roundTo1(v float64) float64 {
	return math.Round(v*10) / 10
}
