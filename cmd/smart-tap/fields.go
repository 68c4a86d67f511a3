// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/oregon-agtech/smart-tap/pkg/types"
)

var queryFieldsCmd = &cobra.Command{
	Use:   "fields",
	Short: "List agricultural fields near a city or in a county",
	Long: `Fields lists the fields whose nearest city matches --city (sorted by
distance) or whose county matches --county. City and county names match
case-insensitively on substrings.`,
	RunE: runQueryFields,
}

func runQueryFields(cmd *cobra.Command, args []string) error {
	location, locationType, err := locationFromFlags(cmd)
	if err != nil {
		return err
	}
	secondary, _ := cmd.Flags().GetBool("secondary")

	store, _, _, err := openStores(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	var refs []types.FieldReference
	switch locationType {
	case "county":
		refs, err = store.FindByCounty(context.Background(), location)
	default:
		refs, err = store.FindByCity(context.Background(), location, secondary)
	}
	if err != nil {
		return err
	}

	if len(refs) == 0 {
		fmt.Println("No fields found.")
		return nil
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(refs)
	}

	fmt.Printf("%-24s  %-16s  %-16s  %10s\n", "Field", "County", "Nearest City", "Dist (ft)")
	fmt.Println(strings.Repeat("-", 72))
	for _, r := range refs {
		fmt.Printf("%-24s  %-16s  %-16s  %10.0f\n", r.FieldID, r.County, r.NearestCity1, r.DistanceFt)
	}
	fmt.Printf("\n%d field(s)\n", len(refs))
	return nil
}

func init() {
	queryFieldsCmd.Flags().String("city", "", "match fields by nearest city")
	queryFieldsCmd.Flags().String("county", "", "match fields by county")
	queryFieldsCmd.Flags().Bool("secondary", false, "also match each field's second-nearest city")
	queryFieldsCmd.Flags().Bool("json", false, "output fields as JSON")

	queryCmd.AddCommand(queryFieldsCmd)
}
