package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/bms/core/soc"
)

var curveStep float64

var curveCmd = &cobra.Command{
	Use:   "curve",
	Short: "Print the OCV curve",
	RunE: func(cmd *cobra.Command, _ []string) error {
		out := cmd.OutOrStdout()
		if _, err := fmt.Fprintln(out, "SoC (%)\tVoltage (V)"); err != nil {
			return err
		}
		for _, p := range soc.CurveTable(curveStep) {
			if _, err := fmt.Fprintf(out, "%.1f\t%.3f\n", p.SoC, p.Voltage); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	curveCmd.Flags().Float64Var(&curveStep, "step", 5, "SoC step in percent")
	rootCmd.AddCommand(curveCmd)
}
