// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// FieldReference locates one agricultural field and its pre-computed
// nearest population centers. Returned by the field locator and consumed
// within a single query; never persisted.
type FieldReference struct {
	// FieldID is the opaque OPENET_ID identifier.
	FieldID string `json:"field_id"`

	County       string  `json:"county"`
	NearestCity1 string  `json:"nearest_city_1"`
	NearestCity2 string  `json:"nearest_city_2,omitempty"`
	Longitude    float64 `json:"longitude"`
	Latitude     float64 `json:"latitude"`

	// DistanceFt is the distance in feet to the city that matched the
	// query: the primary city normally, the secondary city when the match
	// was on Nearest_City_2. Zero for county queries.
	DistanceFt float64 `json:"distance_ft,omitempty"`
}

// CropAssignment records which crop a field grew in a given year.
type CropAssignment struct {
	FieldID  string `json:"field_id"`
	CropCode int    `json:"crop_code"`

	// Year is the year actually used, which may differ from the requested
	// year when the crop table lacks that year's column.
	Year int `json:"year"`
}

// CropSummaryRow is one row of a crop distribution summary: how many
// fields grew a crop, and its share of all summarized fields.
type CropSummaryRow struct {
	CropCode   int     `json:"crop_code"`
	CropName   string  `json:"crop_name"`
	CropGroup  string  `json:"crop_group"`
	FieldCount int     `json:"field_count"`
	Percentage float64 `json:"percentage"`
}
