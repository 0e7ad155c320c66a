package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"review-balancer/internal/db"
)

var initDBCmd = &cobra.Command{
	Use:   "init-db",
	Short: "Create the database tables and indexes",
	RunE:  runInitDB,
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert the demo cohort",
	RunE:  runSeed,
}

func init() {
	rootCmd.AddCommand(initDBCmd)
	rootCmd.AddCommand(seedCmd)
}

func runInitDB(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	e, err := newEnv(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	if err := db.InitSchema(ctx, e.cm.Get(ctx)); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "schema initialized")
	return nil
}

func runSeed(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	e, err := newEnv(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	if err := db.Seed(ctx, e.cm.Get(ctx)); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "demo cohort seeded")
	return nil
}
