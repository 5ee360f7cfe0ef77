package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"AraDetector/pkg/util"
)

var evaluateDate string

var evaluateCmd = &cobra.Command{
	Use:   "evaluate CODE...",
	Short: "Score instruments on demand and print them ranked as JSON",
	Long: `Evaluate one or more instruments without storing the results.

Examples:
  aradetector evaluate BBRI
  aradetector evaluate BBRI TLKM GOTO --date 2025-03-03`,
	Args: cobra.MinimumNArgs(1),
	RunE: runEvaluate,
}

func init() {
	rootCmd.AddCommand(evaluateCmd)
	evaluateCmd.Flags().StringVar(&evaluateDate, "date", "", "evaluation date YYYY-MM-DD (default: today in the market timezone)")
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	if evaluateDate != "" {
		if _, ok := util.ParseDate(evaluateDate); !ok {
			return fmt.Errorf("invalid --date %q, want YYYY-MM-DD", evaluateDate)
		}
	}
	app, cleanup, err := loadApp(true)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, stop := signalContext()
	defer stop()

	out := app.Evaluate(ctx, args, evaluateDate)
	if err := printJSON(cmd.OutOrStdout(), out); err != nil {
		return err
	}
	if len(out.Results) == 0 && len(out.Failures) > 0 {
		return fmt.Errorf("all %d instruments failed", len(out.Failures))
	}
	return nil
}
