// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the smart-tap CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/oregon-agtech/smart-tap/internal/catalog"
	"github.com/oregon-agtech/smart-tap/internal/fieldstore"
	"github.com/oregon-agtech/smart-tap/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the smart-tap CLI.
var rootCmd = &cobra.Command{
	Use:   "smart-tap",
	Short: "Query and chart Oregon agricultural time-series data",
	Long: `smart-tap answers questions about Oregon agricultural and weather data
from local AgriMet and OpenET tables. An external interpreter turns natural
language into a structured query spec; the CLI runs the data queries and
renders charts.

Use "query" to pull field, crop, and variable data near a city or county,
and "render" to chart a records payload. The query command emits payload
JSON on request, so the two compose:

  smart-tap query variable --city Corvallis --variable ETa \
      --start 2020-01-01 --end 2020-12-31 --json | smart-tap render`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./smart-tap.yaml or ~/.config/smart-tap/config.yaml)")
	rootCmd.PersistentFlags().String("field-points", "", "field points SQLite file (overrides config data.field_points_path)")
	rootCmd.PersistentFlags().String("crop-data", "", "crop/variable SQLite file (overrides config data.crop_data_path)")
	rootCmd.PersistentFlags().String("cdl-codes", "", "CDL crop code CSV (overrides config data.cdl_codes_path)")
	rootCmd.PersistentFlags().String("variable-catalog", "", "variable label/suffix override YAML (optional)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("smart-tap")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "smart-tap"))
		}
	}

	viper.SetEnvPrefix("SMART_TAP")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// dataConfig assembles the data paths: flags win over config file values.
func dataConfig(cmd *cobra.Command) types.DataConfig {
	pathOr := func(flag, key string) string {
		if v, _ := cmd.Flags().GetString(flag); v != "" {
			return v
		}
		return viper.GetString(key)
	}
	return types.DataConfig{
		FieldPointsPath:     pathOr("field-points", "data.field_points_path"),
		CropDataPath:        pathOr("crop-data", "data.crop_data_path"),
		CDLCodesPath:        pathOr("cdl-codes", "data.cdl_codes_path"),
		VariableCatalogPath: pathOr("variable-catalog", "data.variable_catalog_path"),
	}
}

// openStores opens the backing tables and catalogs for a query command.
// The caller closes the store.
func openStores(cmd *cobra.Command) (*fieldstore.Store, *catalog.CropCatalog, *catalog.VariableCatalog, error) {
	data := dataConfig(cmd)

	vars, err := catalog.LoadVariableCatalog(data.VariableCatalogPath)
	if err != nil {
		return nil, nil, nil, err
	}
	crops, err := catalog.LoadCropCatalog(data.CDLCodesPath)
	if err != nil {
		return nil, nil, nil, err
	}
	store, err := fieldstore.Open(data, vars)
	if err != nil {
		return nil, nil, nil, err
	}
	return store, crops, vars, nil
}

// printWarnings reports query warnings on stderr, keeping stdout clean
// for data output.
func printWarnings(warnings []types.Warning) {
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "warning [%s]: %s\n", w.Code, w.Message)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
