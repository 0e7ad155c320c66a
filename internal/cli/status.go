package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"review-balancer/internal/domain"
)

var queueLimit int

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show reviewer loads and utilization",
	RunE:  runStatus,
}

var queueCmd = &cobra.Command{
	Use:   "queue",
	Short: "Show pending applications in allocation order",
	RunE:  runQueue,
}

func init() {
	queueCmd.Flags().IntVar(&queueLimit, "limit", 0, "maximum applications to list (0 for all)")
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(queueCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	e, err := newEnv(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	statuses, err := e.reviewers.Status(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tACTIVE\tLOAD\tMAX\tUTIL\tEXPERTISE")
	for _, s := range statuses {
		fmt.Fprintf(w, "%d\t%s\t%t\t%d\t%d\t%.2f\t%s\n",
			s.Reviewer.ID, s.Reviewer.Name, s.Reviewer.Active,
			s.Assigned, s.Reviewer.MaxLoad, s.Utilization,
			strings.Join(s.Reviewer.Expertise, ","))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	counts, err := e.applications.Counts(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "applications: %d pending, %d in review, %d completed\n",
		counts[domain.ApplicationStatusPending],
		counts[domain.ApplicationStatusInReview],
		counts[domain.ApplicationStatusCompleted])
	return nil
}

func runQueue(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	e, err := newEnv(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	apps, err := e.applications.Queue(ctx, queueLimit)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tAPPLICANT\tPROGRAM\tPRIORITY\tSUBMITTED\tNEEDS\tTOPICS")
	for _, a := range apps {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\t%d\t%s\n",
			a.ID, a.ApplicantName, a.Program, a.Priority,
			a.SubmittedAt.UTC().Format("2006-01-02 15:04"),
			a.NeedsReviews, strings.Join(a.Topics, ","))
	}
	return w.Flush()
}
