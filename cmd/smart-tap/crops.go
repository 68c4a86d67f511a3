// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/oregon-agtech/smart-tap/internal/catalog"
	"github.com/oregon-agtech/smart-tap/internal/query"
	"github.com/oregon-agtech/smart-tap/internal/viz"
	"github.com/oregon-agtech/smart-tap/pkg/types"
)

var queryCropsCmd = &cobra.Command{
	Use:   "crops",
	Short: "Crop distribution for fields near a location",
	Long: `Crops summarizes what the fields near a city or in a county grew in a
given year: field count and percentage share per crop, most common first.
When the crop table lacks the requested year, the latest available year
is used and reported as a warning.

Optionally writes a bar or pie chart of the distribution (PNG plus a
matching Vega-Lite spec).`,
	RunE: runQueryCrops,
}

func runQueryCrops(cmd *cobra.Command, args []string) error {
	location, locationType, err := locationFromFlags(cmd)
	if err != nil {
		return err
	}
	year, _ := cmd.Flags().GetInt("year")
	secondary, _ := cmd.Flags().GetBool("secondary")

	store, crops, vars, err := openStores(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	svc := query.NewService(store, crops)
	result, err := svc.Crops(context.Background(), location, locationType, year, secondary)
	if err != nil {
		return err
	}
	printWarnings(result.Warnings)

	rows := svc.SummarizeCrops(result.Assignments, topCrops(cmd))
	if len(rows) == 0 {
		fmt.Println("No crop data found.")
		return nil
	}

	if err := writeCropCharts(cmd, rows, location, vars); err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}

	printCropTable(rows, len(result.Fields))
	return nil
}

func topCrops(cmd *cobra.Command) int {
	if top, _ := cmd.Flags().GetInt("top"); cmd.Flags().Changed("top") {
		return top
	}
	if top := viper.GetInt("query.top_crops"); top > 0 {
		return top
	}
	return 10
}

// writeCropCharts renders the optional bar/pie artifacts. Each PNG gets a
// sibling Vega-Lite spec with the .png suffix replaced by _vega.json.
func writeCropCharts(cmd *cobra.Command, rows []types.CropSummaryRow, location string, vars *catalog.VariableCatalog) error {
	renderer := viz.NewRenderer(renderConfig(cmd), vars)

	type chartOut struct {
		flag string
		png  func([]types.CropSummaryRow, string) ([]byte, error)
		vega func([]types.CropSummaryRow, string) (map[string]any, error)
	}
	for _, c := range []chartOut{
		{"bar", renderer.CropBarPNG, viz.CropBarVega},
		{"pie", renderer.CropPiePNG, viz.CropPieVega},
	} {
		path, _ := cmd.Flags().GetString(c.flag)
		if path == "" {
			continue
		}

		image, err := c.png(rows, location)
		if err != nil {
			return err
		}
		if err := os.WriteFile(path, image, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}

		vega, err := c.vega(rows, location)
		if err != nil {
			return err
		}
		vegaJSON, err := json.MarshalIndent(vega, "", "  ")
		if err != nil {
			return err
		}
		vegaPath := strings.TrimSuffix(path, ".png") + "_vega.json"
		if err := os.WriteFile(vegaPath, vegaJSON, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", vegaPath, err)
		}
		fmt.Fprintln(os.Stderr, "wrote", path)
		fmt.Fprintln(os.Stderr, "wrote", vegaPath)
	}
	return nil
}

func printCropTable(rows []types.CropSummaryRow, fieldCount int) {
	fmt.Printf("%-6s  %-30s  %-20s  %7s  %7s\n", "Code", "Crop", "Group", "Fields", "Share")
	fmt.Println(strings.Repeat("-", 78))
	for _, r := range rows {
		fmt.Printf("%-6d  %-30s  %-20s  %7d  %6.1f%%\n",
			r.CropCode, r.CropName, r.CropGroup, r.FieldCount, r.Percentage)
	}
	fmt.Printf("\n%d field(s) summarized\n", fieldCount)
}

func init() {
	queryCropsCmd.Flags().String("city", "", "match fields by nearest city")
	queryCropsCmd.Flags().String("county", "", "match fields by county")
	queryCropsCmd.Flags().Int("year", 2024, "crop year (falls back to the latest available)")
	queryCropsCmd.Flags().Int("top", 0, "number of crops to report (default: query.top_crops config, or 10)")
	queryCropsCmd.Flags().Bool("secondary", false, "also match each field's second-nearest city")
	queryCropsCmd.Flags().Bool("json", false, "output summary rows as JSON")
	queryCropsCmd.Flags().String("bar", "", "write a bar chart PNG to this path")
	queryCropsCmd.Flags().String("pie", "", "write a pie chart PNG to this path")
	queryCropsCmd.Flags().Int("width", 0, "chart width in pixels")
	queryCropsCmd.Flags().Int("height", 0, "chart height in pixels")

	queryCmd.AddCommand(queryCropsCmd)
}
