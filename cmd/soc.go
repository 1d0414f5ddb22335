package cmd

import (
	"github.com/spf13/cobra"

	"github.com/kilianp07/bms/app"
)

var socCmd = &cobra.Command{
	Use:   "soc",
	Short: "Run the SoC estimation loop",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runService(cmd, (*app.Service).RunSoC)
	},
}

var thermalCmd = &cobra.Command{
	Use:   "thermal",
	Short: "Run the thermal controller loop",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runService(cmd, (*app.Service).RunThermal)
	},
}

func init() {
	rootCmd.AddCommand(socCmd, thermalCmd)
}
