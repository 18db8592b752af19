package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/couchcryptid/flood-signal-etl/internal/domain"
	"github.com/couchcryptid/flood-signal-etl/internal/observability"
	"github.com/couchcryptid/flood-signal-etl/internal/report"
)

var (
	runStations []string
	runOut      string
	runQuiet    bool
	runNoColor  bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the pipeline once and print the series",
	Example: `  etl run
  etl run --stations Centro,Garcia
  etl run --out bundle.json --quiet`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		p, closeFn := newPipeline(observability.NewMetrics())
		defer closeFn()

		bundle, err := p.Run(cmd.Context())
		if err != nil {
			return err
		}

		if runOut != "" {
			if err := writeBundle(runOut, bundle); err != nil {
				return err
			}
			logger.Info("bundle written", "path", runOut)
		}
		if runQuiet {
			return nil
		}
		useColors := !runNoColor && !color.NoColor
		return report.NewPrinter(cmd.OutOrStdout(), useColors).Summary(bundle, runStations)
	},
}

func init() {
	runCmd.Flags().StringSliceVar(&runStations, "stations", nil, "stations to show (default: all)")
	runCmd.Flags().StringVarP(&runOut, "out", "o", "", "write the bundle as JSON to this path")
	runCmd.Flags().BoolVarP(&runQuiet, "quiet", "q", false, "do not print tables")
	runCmd.Flags().BoolVar(&runNoColor, "no-color", false, "disable colored output")
}

func writeBundle(path string, b domain.SeriesBundle) error {
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal bundle: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write bundle: %w", err)
	}
	return nil
}
