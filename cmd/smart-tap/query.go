// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/oregon-agtech/smart-tap/internal/query"
	"github.com/oregon-agtech/smart-tap/pkg/types"
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query fields, crops, and variables near a city or county",
	Long: `Query joins the local field, crop, and variable tables to answer
location-based questions: which fields are near a city, what crops they
grow, and how a variable evolved over a date range.`,
}

// --- variable subcommand ---

var queryVariableCmd = &cobra.Command{
	Use:   "variable",
	Short: "Monthly variable time series for fields near a location",
	Long: `Variable aggregates a monthly OpenET variable (ETa, PPT, AW, ...) across
the fields near a city or in a county, optionally restricted to fields
growing a named crop. Values are combined across fields with mean, sum,
or median.

With --json the result is emitted as a records payload that the render
command accepts on stdin.`,
	RunE: runQueryVariable,
}

func runQueryVariable(cmd *cobra.Command, args []string) error {
	spec, err := variableSpecFromFlags(cmd)
	if err != nil {
		return err
	}

	start, end, ok := spec.Window()
	if !ok {
		return fmt.Errorf("--start and --end are required (YYYY-MM-DD)")
	}

	store, crops, _, err := openStores(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	secondary, _ := cmd.Flags().GetBool("secondary")
	if !cmd.Flags().Changed("secondary") {
		secondary = viper.GetBool("query.include_secondary_city")
	}
	svc := query.NewService(store, crops)
	result, err := svc.Variable(context.Background(), query.VariableRequest{
		Location:             spec.Location,
		LocationType:         spec.LocationType,
		Variable:             spec.Variables[0],
		Start:                start,
		End:                  end,
		CropFilter:           spec.CropFilter,
		Aggregation:          spec.Aggregation,
		IncludeSecondaryCity: secondary,
	})
	if err != nil {
		return err
	}
	printWarnings(result.Warnings)

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		return writePayload(spec, result)
	}
	return printSeriesTable(result, spec.Variables[0])
}

// variableSpecFromFlags builds and validates the query spec.
func variableSpecFromFlags(cmd *cobra.Command) (types.QuerySpec, error) {
	location, locationType, err := locationFromFlags(cmd)
	if err != nil {
		return types.QuerySpec{}, err
	}

	variable, _ := cmd.Flags().GetString("variable")
	if variable == "" {
		return types.QuerySpec{}, fmt.Errorf("--variable is required")
	}
	crop, _ := cmd.Flags().GetString("crop")
	agg, _ := cmd.Flags().GetString("aggregation")
	start, _ := cmd.Flags().GetString("start")
	end, _ := cmd.Flags().GetString("end")

	spec := types.QuerySpec{
		Task:         "visualize_timeseries",
		Dataset:      "openet",
		OpenETGeo:    "location",
		Location:     location,
		LocationType: locationType,
		Variables:    []string{variable},
		CropFilter:   crop,
		Aggregation:  agg,
		StartDate:    start,
		EndDate:      end,
	}
	spec.ApplyDefaults()
	if err := spec.Validate(); err != nil {
		return types.QuerySpec{}, err
	}
	return spec, nil
}

// locationFromFlags resolves the mutually exclusive --city/--county pair.
func locationFromFlags(cmd *cobra.Command) (location, locationType string, err error) {
	city, _ := cmd.Flags().GetString("city")
	county, _ := cmd.Flags().GetString("county")
	switch {
	case city != "" && county != "":
		return "", "", fmt.Errorf("--city and --county are mutually exclusive")
	case city != "":
		return city, "city", nil
	case county != "":
		return county, "county", nil
	default:
		return "", "", fmt.Errorf("one of --city or --county is required")
	}
}

// writePayload emits the result as a records payload on stdout.
func writePayload(spec types.QuerySpec, result *types.TimeSeriesResult) error {
	records := make([]map[string]any, 0, len(result.Rows))
	for _, row := range result.Rows {
		rec := map[string]any{"datetime": row.Timestamp.Format("2006-01-02")}
		for code, v := range row.Values {
			rec[code] = v
		}
		records = append(records, rec)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(types.Payload{
		Spec: spec,
		Data: types.PayloadData{Records: records},
	})
}

func printSeriesTable(result *types.TimeSeriesResult, variable string) error {
	if result.Empty() {
		fmt.Println("No data found.")
		return nil
	}

	fmt.Printf("%-12s  %12s\n", "Month", variable)
	for _, row := range result.Rows {
		if v, ok := row.Value(variable); ok {
			fmt.Printf("%-12s  %12.3f\n", row.Timestamp.Format("2006-01"), v)
		} else {
			fmt.Printf("%-12s  %12s\n", row.Timestamp.Format("2006-01"), "-")
		}
	}
	fmt.Printf("\n%d field(s), %s across fields\n", result.FieldCount, result.Aggregation)
	return nil
}

func init() {
	queryVariableCmd.Flags().String("city", "", "match fields by nearest city")
	queryVariableCmd.Flags().String("county", "", "match fields by county")
	queryVariableCmd.Flags().String("variable", "", "variable code, e.g. ETa, PPT, AW")
	queryVariableCmd.Flags().String("start", "", "window start (YYYY-MM-DD)")
	queryVariableCmd.Flags().String("end", "", "window end (YYYY-MM-DD)")
	queryVariableCmd.Flags().String("crop", "", "restrict to fields growing this crop")
	queryVariableCmd.Flags().String("aggregation", "", "mean, sum, or median (default mean)")
	queryVariableCmd.Flags().Bool("secondary", false, "also match each field's second-nearest city")
	queryVariableCmd.Flags().Bool("json", false, "emit a records payload for the render command")

	queryCmd.AddCommand(queryVariableCmd)
	rootCmd.AddCommand(queryCmd)
}
