package cli

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/duotone/internal/colour"
	"github.com/jmylchreest/duotone/internal/gradient"
	imgutil "github.com/jmylchreest/duotone/internal/image"
)

// inspectReport is the output of the inspect command.
type inspectReport struct {
	Source string            `json:"source"`
	Format string            `json:"format"`
	Width  int               `json:"width"`
	Height int               `json:"height"`
	Bytes  int               `json:"bytes"`
	Luma   imgutil.LumaStats `json:"luma"`
	Preset string            `json:"preset"`
	// MappedMean is the colour a pixel of mean luma maps to.
	MappedMean string `json:"mapped_mean"`
}

func newInspectCmd(a *app) *cobra.Command {
	var (
		asJSON bool
		preset = a.cfg.Preset
	)

	cmd := &cobra.Command{
		Use:   "inspect <image>",
		Short: "Show an image's dimensions and luminance statistics",
		Long: `Decode an image and report its dimensions, format and the distribution of
pixel luminance that drives the gradient map.

Examples:
  duotone inspect photo.jpg
  duotone inspect --json -p harbour https://example.com/photo.png`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, err := colour.LookupPreset(preset)
			if err != nil {
				return err
			}

			decoded, err := imgutil.NewSmartLoader().Load(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to load image: %w", err)
			}
			snap := imgutil.Snapshot(decoded.Image)
			stats := imgutil.ComputeLumaStats(snap)
			a.logger.Debug("computed luma statistics", "pixels", stats.Pixels)

			report := inspectReport{
				Source:     decoded.Source,
				Format:     decoded.Format,
				Width:      snap.Rect.Dx(),
				Height:     snap.Rect.Dy(),
				Bytes:      decoded.Size,
				Luma:       stats,
				Preset:     spec.Name,
				MappedMean: gradient.At(spec, stats.Mean/255).Hex(),
			}

			if asJSON {
				data, err := json.MarshalIndent(report, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to marshal report: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			}

			table := NewTable([]string{"Property", "Value"})
			table.SetColumnMaxWidth(1, 60)
			table.AddRow([]string{"Source", report.Source})
			table.AddRow([]string{"Format", report.Format})
			table.AddRow([]string{"Dimensions", fmt.Sprintf("%dx%d", report.Width, report.Height)})
			table.AddRow([]string{"Bytes", strconv.Itoa(report.Bytes)})
			table.AddRow([]string{"Luma mean", formatLuma(stats.Mean)})
			table.AddRow([]string{"Luma stddev", formatLuma(stats.StdDev)})
			table.AddRow([]string{"Luma min", formatLuma(stats.Min)})
			table.AddRow([]string{"Luma median", formatLuma(stats.Median)})
			table.AddRow([]string{"Luma max", formatLuma(stats.Max)})
			table.AddRow([]string{"Mean maps to", report.MappedMean + " (" + report.Preset + ")"})
			fmt.Fprint(cmd.OutOrStdout(), table.Render())
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	cmd.Flags().StringVarP(&preset, "preset", "p", preset, "gradient preset used for the mapped mean colour")
	return cmd
}

func formatLuma(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', 2, 64)
}
