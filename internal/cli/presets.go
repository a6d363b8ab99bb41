package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/duotone/internal/colour"
	"github.com/jmylchreest/duotone/internal/gradient"
)

// presetView is the printable form of a gradient preset.
type presetView struct {
	Name    string   `json:"name"`
	Aliases []string `json:"aliases,omitempty"`
	Low     string   `json:"low"`
	High    string   `json:"high"`
	Mid     string   `json:"mid"`
}

func newPresetsCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "presets",
		Short: "List the available gradient presets",
		Long: `List the gradient presets with their low and high colour stops and the
colour a mid-grey pixel maps to.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			views := presetViews()
			if asJSON {
				data, err := json.MarshalIndent(views, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to marshal presets: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			}

			table := NewTable([]string{"Name", "Aliases", "Low", "High", "Mid"})
			for _, v := range views {
				table.AddRow([]string{v.Name, strings.Join(v.Aliases, ", "), v.Low, v.High, v.Mid})
			}
			fmt.Fprint(cmd.OutOrStdout(), table.Render())
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print presets as JSON")
	return cmd
}

func presetViews() []presetView {
	presets := colour.Presets()
	views := make([]presetView, 0, len(presets))
	for _, p := range presets {
		views = append(views, presetView{
			Name:    p.Name,
			Aliases: p.Aliases,
			Low:     p.Low.Hex(),
			High:    p.High.Hex(),
			Mid:     gradient.At(p, 0.5).Hex(),
		})
	}
	return views
}
