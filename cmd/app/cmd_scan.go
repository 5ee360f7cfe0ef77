package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"AraDetector/pkg/util"
)

var scanDate string

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan the watchlist once and print the report as JSON",
	Long: `Evaluate every watchlist instrument, store the results and publish alerts.

Examples:
  aradetector scan
  aradetector scan --date 2025-03-03`,
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)
	scanCmd.Flags().StringVar(&scanDate, "date", "", "scan date YYYY-MM-DD (default: today in the market timezone)")
}

func runScan(cmd *cobra.Command, args []string) error {
	if scanDate != "" {
		if _, ok := util.ParseDate(scanDate); !ok {
			return fmt.Errorf("invalid --date %q, want YYYY-MM-DD", scanDate)
		}
	}
	app, cleanup, err := loadApp(true)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, stop := signalContext()
	defer stop()

	report, err := app.Scan(ctx, scanDate)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), report)
}
