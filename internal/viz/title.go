// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package viz

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/oregon-agtech/smart-tap/pkg/types"
)

// klamathHUC8 is the watershed code of the legacy Klamath Falls queries.
const klamathHUC8 = "18010204"

// chartTitle derives a title from the query spec and plotted variables.
// An explicit spec title wins; otherwise OpenET location queries, legacy
// HUC queries, and AgriMet queries each get their reference phrasing.
func chartTitle(spec types.QuerySpec, vars []string) string {
	if spec.Title != "" {
		return spec.Title
	}

	if spec.Dataset == "openet" {
		if spec.OpenETGeo == "location" && spec.Location != "" {
			typeLabel := ""
			if spec.LocationType == "city" || spec.LocationType == "county" {
				typeLabel = titleCase(spec.LocationType)
			}
			varLabel := variableLabel(vars)
			if spec.CropFilter != "" {
				return fmt.Sprintf("%s for %s Fields near %s (%s)",
					varLabel, titleCase(spec.CropFilter), spec.Location, typeLabel)
			}
			return fmt.Sprintf("%s near %s (%s)", varLabel, spec.Location, typeLabel)
		}

		if spec.HUC8Code == klamathHUC8 {
			return "Klamath Falls • OpenET"
		}
		return fmt.Sprintf("HUC8 %s • OpenET", spec.HUC8Code)
	}

	location := titleCase(spec.Location)
	dataset := strings.ToUpper(spec.Dataset)
	if len(vars) >= 1 && len(vars) <= 3 {
		return fmt.Sprintf("%s in %s (%s)", strings.Join(vars, ", "), location, dataset)
	}
	return fmt.Sprintf("%s • %s", location, dataset)
}

// variableLabel names the plotted variables: the codes themselves up to
// three, a count beyond that.
func variableLabel(vars []string) string {
	switch {
	case len(vars) == 1:
		return vars[0]
	case len(vars) <= 3:
		return strings.Join(vars, ", ")
	default:
		return fmt.Sprintf("%d variables", len(vars))
	}
}

// titleCase upper-cases the first letter of each word. Replaces the
// deprecated strings.Title.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, word := range words {
		runes := []rune(word)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
