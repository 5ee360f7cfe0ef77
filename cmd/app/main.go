package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"AraDetector/internal/di"
	"AraDetector/pkg/config"
	"AraDetector/pkg/server"
)

var configPath string

// rootCmd is the base command for the ARA detector CLI.
var rootCmd = &cobra.Command{
	Use:   "aradetector",
	Short: "Auto-reject-up (ARA) equity screener",
	Long: `aradetector scores equities for the likelihood of hitting the exchange's
upper price limit, from order book, broker accumulation and trailing session data.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config/config.yaml", "config file path")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadApp reads config and wires the application. Batch commands keep stdout for JSON output,
// so their logs go to stderr unless a log file is configured.
// The returned func releases the store, publisher and cache.
func loadApp(batch bool) (*server.App, func(), error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("config load failed: %w", err)
	}
	if batch && (cfg.Log.Output == "" || cfg.Log.Output == "stdout") {
		cfg.Log.Output = "stderr"
	}
	app, cleanup, err := di.InitializeApp(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("app initialization failed: %w", err)
	}
	return app, func() {
		cleanup()
		app.Logger().Info("shutdown complete")
	}, nil
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
