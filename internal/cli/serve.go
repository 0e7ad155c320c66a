package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"review-balancer/internal/app"
	"review-balancer/internal/config"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP admin API",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	a, err := app.NewApp(cfg)
	if err != nil {
		return err
	}
	return a.Run()
}
