// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog loads the static reference tables: CDL crop codes and
// the variable display/unit catalog. Both are read once at startup and
// never mutated, so they are safe for unsynchronized concurrent reads.
package catalog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
)

// CropInfo describes one CDL crop code.
type CropInfo struct {
	Name  string
	Group string
	// Lifecycle is "Annual", "Perennial", or "Unknown".
	Lifecycle string
}

// CropCatalog maps CDL codes to crop names and groups. Read-only after
// construction.
type CropCatalog struct {
	crops map[int]CropInfo
}

// LoadCropCatalog reads the CDL crop-code CSV. Expected header columns:
// CDL_Code, Crop_Name, and optionally Crop_Group and Annual_Perennial.
// An unreadable or malformed file is a configuration error; rows with an
// unparsable code are skipped.
func LoadCropCatalog(path string) (*CropCatalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening crop catalog %s: %w", path, err)
	}
	defer f.Close()

	return readCropCatalog(f, path)
}

func readCropCatalog(r io.Reader, name string) (*CropCatalog, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading crop catalog header %s: %w", name, err)
	}

	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.TrimSpace(h)] = i
	}
	codeIdx, ok := col["CDL_Code"]
	if !ok {
		return nil, fmt.Errorf("crop catalog %s: missing CDL_Code column", name)
	}
	nameIdx, ok := col["Crop_Name"]
	if !ok {
		return nil, fmt.Errorf("crop catalog %s: missing Crop_Name column", name)
	}

	field := func(rec []string, idx int, ok bool) string {
		if !ok || idx >= len(rec) {
			return "Unknown"
		}
		if v := strings.TrimSpace(rec[idx]); v != "" {
			return v
		}
		return "Unknown"
	}
	groupIdx, hasGroup := col["Crop_Group"]
	lifeIdx, hasLife := col["Annual_Perennial"]

	crops := make(map[int]CropInfo)
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading crop catalog %s: %w", name, err)
		}
		if codeIdx >= len(rec) || nameIdx >= len(rec) {
			continue
		}
		code, err := strconv.Atoi(strings.TrimSpace(rec[codeIdx]))
		if err != nil {
			continue
		}
		crops[code] = CropInfo{
			Name:      strings.TrimSpace(rec[nameIdx]),
			Group:     field(rec, groupIdx, hasGroup),
			Lifecycle: field(rec, lifeIdx, hasLife),
		}
	}

	return &CropCatalog{crops: crops}, nil
}

// NewCropCatalog builds a catalog from an in-memory code map. Used by
// tests and by callers with pre-loaded reference data.
func NewCropCatalog(crops map[int]CropInfo) *CropCatalog {
	copied := make(map[int]CropInfo, len(crops))
	for k, v := range crops {
		copied[k] = v
	}
	return &CropCatalog{crops: copied}
}

// Name returns the crop name for a CDL code, or a placeholder naming the
// unknown code.
func (c *CropCatalog) Name(code int) string {
	if info, ok := c.crops[code]; ok {
		return info.Name
	}
	return fmt.Sprintf("Unknown (CDL %d)", code)
}

// Group returns the crop group for a CDL code, or "Unknown".
func (c *CropCatalog) Group(code int) string {
	if info, ok := c.crops[code]; ok {
		return info.Group
	}
	return "Unknown"
}

// Info returns the full record for a CDL code.
func (c *CropCatalog) Info(code int) (CropInfo, bool) {
	info, ok := c.crops[code]
	return info, ok
}

// Len returns the number of catalog entries.
func (c *CropCatalog) Len() int { return len(c.crops) }

// Match finds every CDL code whose crop name fuzzily matches a free-text
// name. Matching is case-insensitive containment tested across the raw and
// singularized forms of both strings, so "cherry" matches "Cherries",
// "wheat" matches "Winter Wheat", and "berries" matches "Blueberry".
// Deliberately permissive: no ranking, and an empty slice (not an error)
// when nothing matches. Codes are returned in ascending order.
func (c *CropCatalog) Match(name string) []int {
	query := strings.ToLower(strings.TrimSpace(name))
	if query == "" {
		return nil
	}

	var codes []int
	for code, info := range c.crops {
		if nameMatches(query, strings.ToLower(info.Name)) {
			codes = append(codes, code)
		}
	}
	sort.Ints(codes)
	return codes
}

// nameMatches tests containment in both directions across the raw and
// singular forms of query and crop name.
func nameMatches(query, cropName string) bool {
	sq, sn := singularize(query), singularize(cropName)
	return strings.Contains(cropName, query) ||
		strings.Contains(query, cropName) ||
		strings.Contains(cropName, sq) ||
		strings.Contains(query, sn) ||
		strings.Contains(sn, query) ||
		strings.Contains(sq, cropName)
}

// singularize strips an English plural ending: "ies" becomes "y",
// otherwise a trailing "s" is dropped.
func singularize(s string) string {
	if strings.HasSuffix(s, "ies") {
		return strings.TrimSuffix(s, "ies") + "y"
	}
	return strings.TrimSuffix(s, "s")
}
