// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package viz

import (
	"testing"

	"github.com/oregon-agtech/smart-tap/pkg/types"
)

func TestParsePayloadSortsAndCoerces(t *testing.T) {
	p := &types.Payload{
		Spec: types.QuerySpec{Variables: []string{"ETa"}},
		Data: types.PayloadData{Records: []map[string]any{
			{"datetime": "2021-03-01", "ETa": 3.0, "station": "ABEI"},
			{"datetime": "2021-01-01", "ETa": 1, "station": "ABEI"},
			{"datetime": "2021-02-01", "ETa": "2.5", "station": "ABEI"},
		}},
	}

	result, vars, err := ParsePayload(p)
	if err != nil {
		t.Fatalf("ParsePayload: %v", err)
	}
	if len(vars) != 1 || vars[0] != "ETa" {
		t.Fatalf("vars = %v, want [ETa]", vars)
	}
	if len(result.Rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(result.Rows))
	}
	for i := 1; i < len(result.Rows); i++ {
		if result.Rows[i].Timestamp.Before(result.Rows[i-1].Timestamp) {
			t.Fatalf("rows not sorted ascending: %v before %v",
				result.Rows[i].Timestamp, result.Rows[i-1].Timestamp)
		}
	}
	got := result.Column("ETa")
	want := []float64{1, 2.5, 3}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("column[%d] = %v, want %v", i, got[i], want[i])
		}
	}
	// The non-numeric station column must not become a variable.
	for _, c := range result.Columns {
		if c == "station" {
			t.Error("non-numeric column leaked into Columns")
		}
	}
}

func TestParsePayloadUppercaseDatetime(t *testing.T) {
	p := &types.Payload{
		Data: types.PayloadData{Records: []map[string]any{
			{"DATETIME": "2021-01-01 00:00:00", "OBM": 42.0},
		}},
	}

	result, vars, err := ParsePayload(p)
	if err != nil {
		t.Fatalf("ParsePayload: %v", err)
	}
	if len(result.Rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(result.Rows))
	}
	if len(vars) != 1 || vars[0] != "OBM" {
		t.Errorf("vars = %v, want [OBM]", vars)
	}
}

func TestParsePayloadMissingValues(t *testing.T) {
	p := &types.Payload{
		Data: types.PayloadData{Records: []map[string]any{
			{"datetime": "2021-01-01", "ETa": 1.0, "PPT": 0.5},
			{"datetime": "2021-02-01", "ETa": nil, "PPT": 0.7},
		}},
	}

	result, _, err := ParsePayload(p)
	if err != nil {
		t.Fatalf("ParsePayload: %v", err)
	}
	if _, ok := result.Rows[1].Value("ETa"); ok {
		t.Error("null ETa should be missing in row 1")
	}
	if v, ok := result.Rows[1].Value("PPT"); !ok || v != 0.7 {
		t.Errorf("PPT row 1 = %v/%v, want 0.7 present", v, ok)
	}
}

func TestParsePayloadVariableSelection(t *testing.T) {
	records := []map[string]any{
		{"datetime": "2021-01-01", "ETa": 1.0, "PPT": 2.0},
	}

	// Requested variables are intersected with present columns.
	p := &types.Payload{
		Spec: types.QuerySpec{Variables: []string{"ETa", "BOGUS"}},
		Data: types.PayloadData{Records: records},
	}
	_, vars, err := ParsePayload(p)
	if err != nil {
		t.Fatalf("ParsePayload: %v", err)
	}
	if len(vars) != 1 || vars[0] != "ETa" {
		t.Errorf("vars = %v, want [ETa]", vars)
	}

	// With no requested variable present, every numeric column is used.
	p.Spec.Variables = []string{"NIWR"}
	_, vars, err = ParsePayload(p)
	if err != nil {
		t.Fatalf("ParsePayload: %v", err)
	}
	if len(vars) != 2 {
		t.Errorf("vars = %v, want both columns", vars)
	}
}

func TestParsePayloadErrors(t *testing.T) {
	cases := []struct {
		name    string
		payload *types.Payload
	}{
		{"no records", &types.Payload{}},
		{"missing datetime", &types.Payload{
			Data: types.PayloadData{Records: []map[string]any{{"ETa": 1.0}}},
		}},
		{"unparsable datetime", &types.Payload{
			Data: types.PayloadData{Records: []map[string]any{{"datetime": "last tuesday", "ETa": 1.0}}},
		}},
		{"no numeric columns", &types.Payload{
			Data: types.PayloadData{Records: []map[string]any{{"datetime": "2021-01-01", "station": "ABEI"}}},
		}},
	}
	for _, tc := range cases {
		if _, _, err := ParsePayload(tc.payload); err == nil {
			t.Errorf("%s: expected an error", tc.name)
		}
	}
}
