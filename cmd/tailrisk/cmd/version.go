package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

const version = "0.1.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  `Display the current version of the tailrisk CLI.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "tailrisk version %s\n", version)
		fmt.Fprintln(cmd.OutOrStdout(), "Market and credit tail-risk engine")
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
