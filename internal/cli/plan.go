package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"review-balancer/internal/service/planner"
	"review-balancer/internal/service/rebalance"
)

var (
	planMax   int
	planApply bool

	rebalanceMoves int
	rebalanceApply bool
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Compute an assignment plan for the pending queue",
	RunE:  runPlan,
}

var rebalanceCmd = &cobra.Command{
	Use:   "rebalance",
	Short: "Propose moves from overloaded reviewers to better fits",
	RunE:  runRebalance,
}

func init() {
	planCmd.Flags().IntVar(&planMax, "limit", 0, "maximum applications to plan (0 for all)")
	planCmd.Flags().BoolVar(&planApply, "apply", false, "persist the plan instead of a dry run")
	rebalanceCmd.Flags().IntVar(&rebalanceMoves, "max-moves", 0, "move cap for this run (0 for configured default)")
	rebalanceCmd.Flags().BoolVar(&rebalanceApply, "apply", false, "persist the moves instead of a dry run")
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(rebalanceCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	e, err := newEnv(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	plan, err := e.planner.Plan(ctx, planner.Options{Limit: planMax, Apply: planApply})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "APPLICATION\tREVIEWER\tSCORE")
	for _, a := range plan.Assignments {
		fmt.Fprintf(w, "%d\t%d\t%.3f\n", a.ApplicationID, a.ReviewerID, a.Score)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if len(plan.Unassignable) > 0 {
		fmt.Fprintf(out, "unassignable: %v (%d open slots)\n", plan.Unassignable, plan.UnassignableSlots)
	}
	if planApply {
		fmt.Fprintf(out, "applied %d assignments, %d applications now in review\n",
			len(plan.Assignments), len(plan.ReadyForReview))
	} else {
		fmt.Fprintf(out, "dry run: %d assignments proposed (use --apply to persist)\n", len(plan.Assignments))
	}
	return nil
}

func runRebalance(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	e, err := newEnv(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	moves, err := e.rebalancer.Rebalance(ctx, rebalance.Options{MaxMoves: rebalanceMoves, Apply: rebalanceApply})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "APPLICATION\tFROM\tTO\tSCORE")
	for _, m := range moves {
		fmt.Fprintf(w, "%d\t%d\t%d\t%.3f\n", m.ApplicationID, m.FromReviewerID, m.ToReviewerID, m.Score)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if rebalanceApply {
		fmt.Fprintf(out, "applied %d moves\n", len(moves))
	} else {
		fmt.Fprintf(out, "dry run: %d moves proposed (use --apply to persist)\n", len(moves))
	}
	return nil
}
