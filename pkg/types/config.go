package types

// DataConfig holds paths to the local backing data files. All tables are
// pre-downloaded to disk; nothing here reaches the network.
type DataConfig struct {
	// FieldPointsPath is the field_points geopackage (SQLite) with one row
	// per field: county, nearest cities, coordinates.
	FieldPointsPath string `json:"field_points_path" yaml:"field_points_path"`

	// CropDataPath is the full Oregon geopackage (SQLite) holding the CROP
	// table and one table per OpenET variable. May be the same file as
	// FieldPointsPath.
	CropDataPath string `json:"crop_data_path" yaml:"crop_data_path"`

	// CDLCodesPath is the CDL crop-code CSV (code, name, group, lifecycle).
	CDLCodesPath string `json:"cdl_codes_path" yaml:"cdl_codes_path"`

	// VariableCatalogPath is an optional YAML file overriding variable
	// display labels and unit suffixes. Built-in defaults apply when empty.
	VariableCatalogPath string `json:"variable_catalog_path,omitempty" yaml:"variable_catalog_path,omitempty"`
}

// RenderConfig holds chart rendering settings.
type RenderConfig struct {
	// Width and Height are the raster canvas size in pixels (defaults 1000x480).
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`

	// OutputDir is where chart artifacts are written (default ".").
	OutputDir string `json:"output_dir" yaml:"output_dir"`
}

// QueryConfig holds defaults for location/crop queries.
type QueryConfig struct {
	// IncludeSecondaryCity extends city matching to each field's second
	// nearest city (default false: nearest city only).
	IncludeSecondaryCity bool `json:"include_secondary_city" yaml:"include_secondary_city"`

	// TopCrops is the number of rows returned by crop summaries (default 10).
	TopCrops int `json:"top_crops" yaml:"top_crops"`
}

// Config groups all settings for the smart-tap CLI.
type Config struct {
	Data   DataConfig   `json:"data" yaml:"data"`
	Render RenderConfig `json:"render" yaml:"render"`
	Query  QueryConfig  `json:"query" yaml:"query"`
}
