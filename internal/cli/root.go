// Package cli provides the command-line interface for duotone.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/duotone/internal/config"
	"github.com/jmylchreest/duotone/internal/version"
)

// app is the state shared by every command of one root command instance.
type app struct {
	cfg    config.Config
	cfgErr error
	logger hclog.Logger

	verbose bool
	quiet   bool
}

// NewRootCmd builds the duotone command tree. Environment configuration is
// read once here so it can seed flag defaults.
func NewRootCmd() *cobra.Command {
	a := &app{logger: hclog.NewNullLogger()}
	a.cfg, a.cfgErr = config.FromEnv()

	rootCmd := &cobra.Command{
		Use:   "duotone",
		Short: "Recolour images with a two-stop gradient map",
		Long: `Duotone recolours images with a two-colour gradient map.

Every pixel's luminance picks a position between a dark and a light colour
stop. An optional tone adjustment (contrast, or highlights and shadows) is
applied first. Output is written as PNG or JPEG, and JPEG quality can be
searched automatically to land inside a target file size.`,
		Version:      version.Short(),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			a.logger = newLogger(cmd, a.verbose, a.quiet)
			if a.cfgErr != nil {
				return fmt.Errorf("invalid environment configuration: %w", a.cfgErr)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&a.quiet, "quiet", "q", false, "suppress non-error output")
	rootCmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	rootCmd.SetVersionTemplate(version.String() + "\n")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newApplyCmd(a))
	rootCmd.AddCommand(newPresetsCmd())
	rootCmd.AddCommand(newInspectCmd(a))

	return rootCmd
}

// Execute runs the root command and exits non-zero on failure.
func Execute(ctx context.Context) {
	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// newLogger creates the named stderr logger for a command run.
func newLogger(cmd *cobra.Command, verbose, quiet bool) hclog.Logger {
	level := hclog.Info
	switch {
	case verbose:
		level = hclog.Debug
	case quiet:
		level = hclog.Error
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:   "duotone",
		Level:  level,
		Output: cmd.ErrOrStderr(),
		Color:  hclog.AutoColor,
	})
}

func newVersionCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print detailed version information including build date, commit hash, and Go version.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if asJSON {
				data, err := version.JSON()
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print version information as JSON")
	return cmd
}
