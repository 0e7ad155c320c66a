// Package cli wires the command line interface. Every command loads the
// configuration, opens its own database pool and releases it on exit.
package cli

import (
	"github.com/spf13/cobra"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "review-balancer",
	Short: "Scholarship application review assignment service",
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "config.yaml", "configuration file")
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }
