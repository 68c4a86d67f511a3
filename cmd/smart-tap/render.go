// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/oregon-agtech/smart-tap/internal/catalog"
	"github.com/oregon-agtech/smart-tap/internal/viz"
	"github.com/oregon-agtech/smart-tap/pkg/types"
)

var renderCmd = &cobra.Command{
	Use:   "render [payload.json]",
	Short: "Render a records payload as a PNG chart and Vega-Lite spec",
	Long: `Render reads a records payload (a query spec plus time-stamped records),
chooses a chart layout, and writes two artifacts sharing that layout: a
raster PNG and a Vega-Lite JSON spec.

The payload is read from the argument file, or from stdin when no argument
is given. Two variables with very different value ranges get independent
dual axes; three or more get faceted small multiples.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRender,
}

func runRender(cmd *cobra.Command, args []string) error {
	payload, err := readPayload(args)
	if err != nil {
		return err
	}

	payload.Spec.ApplyDefaults()
	if err := payload.Spec.Validate(); err != nil {
		return err
	}

	result, variables, err := viz.ParsePayload(payload)
	if err != nil {
		return err
	}

	vars, err := catalog.LoadVariableCatalog(dataConfig(cmd).VariableCatalogPath)
	if err != nil {
		return err
	}

	decision := viz.ChooseView(result, variables, payload.Spec.ChartType)
	fmt.Fprintln(os.Stderr, "layout:", decision.Reason())
	printWarnings(result.Warnings)

	vega, err := viz.VegaSpec(result, decision, payload.Spec, vars)
	if err != nil {
		return err
	}
	renderer := viz.NewRenderer(renderConfig(cmd), vars)
	image, err := renderer.RenderPNG(result, decision, payload.Spec)
	if err != nil {
		return err
	}

	outDir, name := outputTarget(cmd)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory %s: %w", outDir, err)
	}

	pngPath := filepath.Join(outDir, name+".png")
	if err := os.WriteFile(pngPath, image, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", pngPath, err)
	}

	vegaPath := filepath.Join(outDir, name+"_vega.json")
	vegaJSON, err := json.MarshalIndent(vega, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding Vega-Lite spec: %w", err)
	}
	if err := os.WriteFile(vegaPath, vegaJSON, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", vegaPath, err)
	}

	fmt.Fprintln(os.Stderr, "wrote", pngPath)
	fmt.Fprintln(os.Stderr, "wrote", vegaPath)
	return nil
}

// readPayload decodes the payload from the argument file or stdin.
func readPayload(args []string) (*types.Payload, error) {
	var (
		data []byte
		err  error
	)
	if len(args) == 1 && args[0] != "-" {
		data, err = os.ReadFile(args[0])
		if err != nil {
			return nil, fmt.Errorf("reading payload %s: %w", args[0], err)
		}
	} else {
		data, err = io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("reading payload from stdin: %w", err)
		}
	}

	var payload types.Payload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("decoding payload: %w", err)
	}
	return &payload, nil
}

// renderConfig assembles the canvas settings: flags win over config.
func renderConfig(cmd *cobra.Command) types.RenderConfig {
	width, _ := cmd.Flags().GetInt("width")
	if width == 0 {
		width = viper.GetInt("render.width")
	}
	height, _ := cmd.Flags().GetInt("height")
	if height == 0 {
		height = viper.GetInt("render.height")
	}
	return types.RenderConfig{Width: width, Height: height}
}

// outputTarget resolves the artifact directory and base name.
func outputTarget(cmd *cobra.Command) (dir, name string) {
	dir, _ = cmd.Flags().GetString("out")
	if dir == "" {
		dir = viper.GetString("render.output_dir")
	}
	if dir == "" {
		dir = "."
	}
	name, _ = cmd.Flags().GetString("name")
	if name == "" {
		name = "chart"
	}
	return dir, name
}

func init() {
	renderCmd.Flags().String("out", "", "output directory (default: render.output_dir config, or .)")
	renderCmd.Flags().String("name", "chart", "base name for output files")
	renderCmd.Flags().Int("width", 0, "chart width in pixels")
	renderCmd.Flags().Int("height", 0, "chart height in pixels")

	rootCmd.AddCommand(renderCmd)
}
