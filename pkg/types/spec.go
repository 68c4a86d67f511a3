// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the shared data structures exchanged between the
// query, store, and visualization stages: the query specification produced
// by the external interpreter, the records payload, time-series results,
// and field/crop records.
package types

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Spec defaults applied by ApplyDefaults.
const (
	DefaultDataset     = "agrimet"
	DefaultChartType   = "line"
	DefaultInterval    = "daily"
	DefaultAggregation = "mean"
)

// QuerySpec is the structured query specification handed to the core by the
// external language-model interpreter. Every field is optional; the renderer
// additionally requires Variables and a non-empty records payload, which the
// caller validates before rendering.
type QuerySpec struct {
	// Task names the requested operation, e.g. "visualize_timeseries".
	Task string `json:"task,omitempty" yaml:"task,omitempty"`

	// Dataset selects the data source: "agrimet" or "openet".
	Dataset string `json:"dataset,omitempty" yaml:"dataset,omitempty" validate:"omitempty,oneof=agrimet openet"`

	// Title overrides the derived chart title when set.
	Title string `json:"title,omitempty" yaml:"title,omitempty"`

	// Location is the free-text place name ("Corvallis", "Benton").
	Location string `json:"location,omitempty" yaml:"location,omitempty"`

	// LocationType qualifies Location: "city" or "county".
	LocationType string `json:"location_type,omitempty" yaml:"location_type,omitempty" validate:"omitempty,oneof=city county"`

	// OpenETGeo selects the OpenET spatial mode: "location" for city/county
	// field queries, empty for legacy HUC lookups.
	OpenETGeo string `json:"openet_geo,omitempty" yaml:"openet_geo,omitempty"`

	// HUC8Code is the watershed code for legacy HUC-based queries.
	HUC8Code string `json:"huc8_code,omitempty" yaml:"huc8_code,omitempty"`

	// Variables are the requested variable codes, e.g. ["ETa", "PPT"].
	Variables []string `json:"variables,omitempty" yaml:"variables,omitempty"`

	// CropFilter restricts fields to those growing a named crop.
	CropFilter string `json:"crop_filter,omitempty" yaml:"crop_filter,omitempty"`

	// Aggregation combines values across fields: mean, sum, or median.
	// Anything else falls back to mean with a warning.
	Aggregation string `json:"aggregation,omitempty" yaml:"aggregation,omitempty"`

	// StartDate and EndDate bound the query window (YYYY-MM-DD).
	StartDate string `json:"start_date,omitempty" yaml:"start_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	EndDate   string `json:"end_date,omitempty" yaml:"end_date,omitempty" validate:"omitempty,datetime=2006-01-02"`

	// Interval is the sample spacing of the underlying records.
	Interval string `json:"interval,omitempty" yaml:"interval,omitempty"`

	// ChartType requests a chart style. "bar" switches the mark; the raster
	// renderer additionally understands scatter, area, histogram, and box
	// for single-variable views.
	ChartType string `json:"chart_type,omitempty" yaml:"chart_type,omitempty"`
}

var validate = validator.New()

// Validate checks enum fields and date formats at the system boundary.
func (s *QuerySpec) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("invalid query spec: %w", err)
	}
	if s.StartDate != "" && s.EndDate != "" {
		start, _ := time.Parse("2006-01-02", s.StartDate)
		end, _ := time.Parse("2006-01-02", s.EndDate)
		if end.Before(start) {
			return fmt.Errorf("invalid query spec: end_date %s precedes start_date %s", s.EndDate, s.StartDate)
		}
	}
	return nil
}

// ApplyDefaults fills unset optional fields with the documented defaults.
func (s *QuerySpec) ApplyDefaults() {
	if s.Dataset == "" {
		s.Dataset = DefaultDataset
	}
	if s.ChartType == "" {
		s.ChartType = DefaultChartType
	}
	if s.Interval == "" {
		s.Interval = DefaultInterval
	}
	if s.Aggregation == "" {
		s.Aggregation = DefaultAggregation
	}
}

// Window returns the requested [start, end] date range. ok is false when
// either bound is absent or malformed.
func (s *QuerySpec) Window() (start, end time.Time, ok bool) {
	if s.StartDate == "" || s.EndDate == "" {
		return time.Time{}, time.Time{}, false
	}
	start, err := time.Parse("2006-01-02", s.StartDate)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	end, err = time.Parse("2006-01-02", s.EndDate)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

// Payload is the interchange format between data-loading collaborators and
// the visualization core.
type Payload struct {
	Spec QuerySpec   `json:"spec"`
	Data PayloadData `json:"data"`
}

// PayloadData wraps the record list.
type PayloadData struct {
	Records []map[string]any `json:"records"`
}

// Date wraps time.Time but marshals/unmarshals as YYYY-MM-DD.
type Date struct {
	time.Time
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

func (d Date) String() string {
	return d.Format("2006-01-02")
}
