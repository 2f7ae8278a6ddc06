// Package cmd builds the nucleusctl CLI: a cobra command tree that drives
// the nucleus kernel against the software hardware.Harness, grounded in
// arctir-proctor/proctor/cmd's SetupCLI()/cobra.Command wiring pattern.
//
// Do not import this package from anything other than
// cmd/nucleusctl/main.go; import the nucleus and hardware packages
// directly instead.
package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "nucleusctl",
	Short: "Drive the nucleus kernel against a software hardware harness.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// Root builds the full nucleusctl command tree and returns its root.
func Root() *cobra.Command {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(dumpCmd)
	return rootCmd
}
