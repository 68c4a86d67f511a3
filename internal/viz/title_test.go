// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package viz

import (
	"testing"

	"github.com/oregon-agtech/smart-tap/pkg/types"
)

func TestChartTitle(t *testing.T) {
	cases := []struct {
		name string
		spec types.QuerySpec
		vars []string
		want string
	}{
		{
			name: "explicit title wins",
			spec: types.QuerySpec{Title: "My Chart", Dataset: "openet", Location: "Corvallis"},
			vars: []string{"ETa"},
			want: "My Chart",
		},
		{
			name: "openet location with crop filter",
			spec: types.QuerySpec{
				Dataset: "openet", OpenETGeo: "location",
				Location: "Corvallis", LocationType: "city", CropFilter: "wheat",
			},
			vars: []string{"ETa"},
			want: "ETa for Wheat Fields near Corvallis (City)",
		},
		{
			name: "openet location without crop filter",
			spec: types.QuerySpec{
				Dataset: "openet", OpenETGeo: "location",
				Location: "Benton", LocationType: "county",
			},
			vars: []string{"ETa", "PPT"},
			want: "ETa, PPT near Benton (County)",
		},
		{
			name: "klamath falls watershed",
			spec: types.QuerySpec{Dataset: "openet", HUC8Code: "18010204"},
			vars: []string{"ETa"},
			want: "Klamath Falls • OpenET",
		},
		{
			name: "other watershed",
			spec: types.QuerySpec{Dataset: "openet", HUC8Code: "17090003"},
			vars: []string{"ETa"},
			want: "HUC8 17090003 • OpenET",
		},
		{
			name: "agrimet few variables",
			spec: types.QuerySpec{Dataset: "agrimet", Location: "corvallis"},
			vars: []string{"OBM", "PC"},
			want: "OBM, PC in Corvallis (AGRIMET)",
		},
		{
			name: "agrimet many variables",
			spec: types.QuerySpec{Dataset: "agrimet", Location: "hood river"},
			vars: []string{"OBM", "MX", "MN", "PC"},
			want: "Hood River • AGRIMET",
		},
	}

	for _, tc := range cases {
		if got := chartTitle(tc.spec, tc.vars); got != tc.want {
			t.Errorf("%s: chartTitle = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestVariableLabel(t *testing.T) {
	if got := variableLabel([]string{"ETa"}); got != "ETa" {
		t.Errorf("one variable: %q", got)
	}
	if got := variableLabel([]string{"ETa", "PPT", "AW"}); got != "ETa, PPT, AW" {
		t.Errorf("three variables: %q", got)
	}
	if got := variableLabel([]string{"a", "b", "c", "d"}); got != "4 variables" {
		t.Errorf("four variables: %q", got)
	}
}

func TestTitleCase(t *testing.T) {
	if got := titleCase("hood river"); got != "Hood River" {
		t.Errorf("titleCase = %q", got)
	}
	if got := titleCase(""); got != "" {
		t.Errorf("empty input: %q", got)
	}
}
