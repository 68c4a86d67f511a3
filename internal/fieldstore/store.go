// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fieldstore reads the local SQLite-backed field tables: the
// field_points table (one row per field with county and nearest-city
// metadata), the CROP table (one column per year), and one table per
// OpenET variable (one column per month). All queries are read-only.
package fieldstore

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/oregon-agtech/smart-tap/internal/catalog"
	"github.com/oregon-agtech/smart-tap/pkg/types"
)

// ErrNoSuchVariable marks a variable whose backing table does not exist.
// A deployment problem for that variable, fatal for the call but not for
// the process.
var ErrNoSuchVariable = errors.New("no backing table for variable")

const fieldPointsTable = "field_points"

// identRe restricts table and column names interpolated into SQL. SQLite
// cannot parameterize identifiers, so anything failing this check is
// rejected before query construction.
var identRe = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// Store provides read access to the field, crop, and variable tables.
type Store struct {
	fields *sql.DB
	crops  *sql.DB
	vars   *catalog.VariableCatalog
}

// Open opens the backing databases read-only. Missing files are
// configuration errors. When FieldPointsPath and CropDataPath are the same
// file, one connection is shared.
func Open(cfg types.DataConfig, vars *catalog.VariableCatalog) (*Store, error) {
	if _, err := os.Stat(cfg.FieldPointsPath); err != nil {
		return nil, fmt.Errorf("field points database: %w", err)
	}
	fields, err := sql.Open("sqlite3", "file:"+cfg.FieldPointsPath+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("opening field points database: %w", err)
	}

	crops := fields
	if cfg.CropDataPath != "" && cfg.CropDataPath != cfg.FieldPointsPath {
		if _, err := os.Stat(cfg.CropDataPath); err != nil {
			fields.Close()
			return nil, fmt.Errorf("crop database: %w", err)
		}
		crops, err = sql.Open("sqlite3", "file:"+cfg.CropDataPath+"?mode=ro")
		if err != nil {
			fields.Close()
			return nil, fmt.Errorf("opening crop database: %w", err)
		}
	}

	return &Store{fields: fields, crops: crops, vars: vars}, nil
}

// Close releases the database connections.
func (s *Store) Close() error {
	err := s.fields.Close()
	if s.crops != s.fields {
		if cerr := s.crops.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// tableColumns lists the column names of a table via PRAGMA table_info.
// An absent table yields an empty list, not an error.
func tableColumns(db *sql.DB, table string) ([]string, error) {
	if !identRe.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}

	rows, err := db.Query(fmt.Sprintf(`PRAGMA table_info(%s)`, table))
	if err != nil {
		return nil, fmt.Errorf("inspecting table %s: %w", table, err)
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var (
			cid, notnull, pk int
			name, ctype      string
			dflt             sql.NullString
		)
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			return nil, fmt.Errorf("scanning table info for %s: %w", table, err)
		}
		cols = append(cols, name)
	}
	return cols, rows.Err()
}

// placeholders returns "?, ?, ..." for n parameters.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// idArgs converts field IDs to query arguments.
func idArgs(ids []string) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}

// coerceFloat converts a dynamically typed SQLite value to a float64.
// ok is false for NULLs and values that do not parse as numbers.
func coerceFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case nil:
		return 0, false
	case float64:
		return x, true
	case int64:
		return float64(x), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return f, err == nil
	case []byte:
		f, err := strconv.ParseFloat(strings.TrimSpace(string(x)), 64)
		return f, err == nil
	default:
		return 0, false
	}
}
