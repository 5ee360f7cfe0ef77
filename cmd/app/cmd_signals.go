package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"AraDetector/internal/services/scoring"
)

var signalsCmd = &cobra.Command{
	Use:   "signals",
	Short: "Print the signal weight table",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "CODE\tWEIGHT\tLABEL")
		for _, s := range scoring.Weights() {
			fmt.Fprintf(w, "%s\t%d\t%s\n", s.Code, s.Weight, s.Label)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(signalsCmd)
}
