// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"
)

// defaultLabels maps variable codes to axis/legend display labels.
var defaultLabels = map[string]string{
	"OBM":  "Avg Temp (°F)",
	"MX":   "Max Temp (°F)",
	"MN":   "Min Temp (°F)",
	"PC":   "Precipitation (mm)",
	"SR":   "Solar Radiation (Langleys)",
	"WS":   "Wind Speed (mph)",
	"TU":   "Humidity (%)",
	"ET":   "Evapotranspiration (mm)",
	"ETa":  "Evapotranspiration (mm)",
	"PPT":  "Precipitation (mm)",
	"AW":   "Available Water (mm)",
	"WS_C": "Water Stress Coefficient",
	"P_rz": "Root Zone Precip (mm)",
}

// defaultSuffixes maps OpenET variable codes to the unit suffix embedded in
// their monthly column names. Depth-based variables carry "_in", volume-based
// variables "_acft", and WS_C has no suffix.
var defaultSuffixes = map[string]string{
	"ETa":           "_in",
	"PPT":           "_in",
	"P_rz":          "_in",
	"P_eft":         "_in",
	"NIWR":          "_in",
	"AW":            "_acft",
	"IRR_CU_VOLUME": "_acft",
	"NIWR_VOLUME":   "_acft",
	"PPT_VOLUME":    "_acft",
	"ET_VOLUME":     "_acft",
	"ETO_VOLUME":    "_acft",
	"ETD_VOLUME":    "_acft",
	"ETDa_VOLUME":   "_acft",
	"EFF_VOLUME":    "_acft",
	"WS_C":          "",
}

// depthSuffix is assumed for variables absent from the suffix table.
const depthSuffix = "_in"

// VariableCatalog resolves variable codes to display labels and monthly
// column unit suffixes. Read-only after construction.
type VariableCatalog struct {
	labels   map[string]string
	suffixes map[string]string
}

// variableOverrides is the YAML shape of an override file.
type variableOverrides struct {
	Labels   map[string]string `yaml:"labels"`
	Suffixes map[string]string `yaml:"suffixes"`
}

// NewVariableCatalog returns the built-in catalog.
func NewVariableCatalog() *VariableCatalog {
	return &VariableCatalog{labels: defaultLabels, suffixes: defaultSuffixes}
}

// LoadVariableCatalog returns the built-in catalog with entries from an
// optional YAML override file merged on top. An empty path yields the
// defaults; an unreadable or malformed file is a configuration error.
func LoadVariableCatalog(path string) (*VariableCatalog, error) {
	if path == "" {
		return NewVariableCatalog(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading variable catalog %s: %w", path, err)
	}
	var ov variableOverrides
	if err := yaml.Unmarshal(data, &ov); err != nil {
		return nil, fmt.Errorf("parsing variable catalog %s: %w", path, err)
	}

	labels := make(map[string]string, len(defaultLabels)+len(ov.Labels))
	for k, v := range defaultLabels {
		labels[k] = v
	}
	for k, v := range ov.Labels {
		labels[k] = v
	}
	suffixes := make(map[string]string, len(defaultSuffixes)+len(ov.Suffixes))
	for k, v := range defaultSuffixes {
		suffixes[k] = v
	}
	for k, v := range ov.Suffixes {
		suffixes[k] = v
	}

	return &VariableCatalog{labels: labels, suffixes: suffixes}, nil
}

// Label returns the display label for a variable code, falling back to the
// raw code when no friendly label exists.
func (v *VariableCatalog) Label(code string) string {
	if l, ok := v.labels[code]; ok {
		return l
	}
	return code
}

// Suffix returns the monthly column unit suffix for a variable, defaulting
// to the depth suffix for unrecognized variables.
func (v *VariableCatalog) Suffix(code string) string {
	if s, ok := v.suffixes[code]; ok {
		return s
	}
	return depthSuffix
}
