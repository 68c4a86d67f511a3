package catalog

import (
	"os"
	"path/filepath"
	"testing"
)

func TestVariableSuffixes(t *testing.T) {
	v := NewVariableCatalog()

	cases := map[string]string{
		"ETa":        "_in",
		"PPT":        "_in",
		"AW":         "_acft",
		"PPT_VOLUME": "_acft",
		"WS_C":       "",
		"MYSTERY":    "_in", // unrecognized defaults to depth suffix
	}
	for code, want := range cases {
		if got := v.Suffix(code); got != want {
			t.Errorf("Suffix(%s) = %q, want %q", code, got, want)
		}
	}
}

func TestVariableLabels(t *testing.T) {
	v := NewVariableCatalog()
	if got := v.Label("PC"); got != "Precipitation (mm)" {
		t.Errorf("Label(PC) = %q", got)
	}
	// Unknown codes fall back to the raw code.
	if got := v.Label("XYZ"); got != "XYZ" {
		t.Errorf("Label(XYZ) = %q", got)
	}
}

func TestLoadVariableCatalogOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "variables.yaml")
	override := "labels:\n  XYZ: \"Mystery (units)\"\n  PC: \"Rain (mm)\"\nsuffixes:\n  XYZ: \"_acft\"\n"
	if err := os.WriteFile(path, []byte(override), 0o644); err != nil {
		t.Fatal(err)
	}

	v, err := LoadVariableCatalog(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := v.Label("XYZ"); got != "Mystery (units)" {
		t.Errorf("Label(XYZ) = %q", got)
	}
	if got := v.Label("PC"); got != "Rain (mm)" {
		t.Errorf("Label(PC) = %q", got)
	}
	// Defaults survive the merge.
	if got := v.Label("MX"); got != "Max Temp (°F)" {
		t.Errorf("Label(MX) = %q", got)
	}
	if got := v.Suffix("XYZ"); got != "_acft" {
		t.Errorf("Suffix(XYZ) = %q", got)
	}
}

func TestLoadVariableCatalogErrors(t *testing.T) {
	if _, err := LoadVariableCatalog(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing override file")
	}

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(bad, []byte("labels: [not, a, map]"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadVariableCatalog(bad); err == nil {
		t.Fatal("expected error for malformed override file")
	}

	v, err := LoadVariableCatalog("")
	if err != nil {
		t.Fatal(err)
	}
	if got := v.Suffix("ETa"); got != "_in" {
		t.Errorf("Suffix(ETa) = %q", got)
	}
}
