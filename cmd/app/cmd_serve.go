package main

import "github.com/spf13/cobra"

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Serve the screener API until interrupted.

Endpoints:
  GET  /api/ara-detector?watchlist=true     scan the watchlist and store results
  GET  /api/ara-detector?date=YYYY-MM-DD    stored results (minScore, alertLevel, limit)
  POST /api/ara-detector {"instrument":..}  on-demand evaluation
  GET  /healthz, /metrics`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, cleanup, err := loadApp(false)
		if err != nil {
			return err
		}
		defer cleanup()

		ctx, stop := signalContext()
		defer stop()
		return app.Serve(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
