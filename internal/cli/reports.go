package cli

import (
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var (
	agingStaleDays int
	throughputDays int
)

var agingCmd = &cobra.Command{
	Use:   "aging",
	Short: "Show how long active assignments have been waiting",
	RunE:  runAging,
}

var coverageCmd = &cobra.Command{
	Use:   "coverage",
	Short: "Show queue demand versus reviewer capacity per tag",
	RunE:  runCoverage,
}

var throughputCmd = &cobra.Command{
	Use:   "throughput",
	Short: "Show completed reviews over a recent window",
	RunE:  runThroughput,
}

func init() {
	agingCmd.Flags().IntVar(&agingStaleDays, "stale-days", 0, "age at which an assignment counts as stale (0 for configured default)")
	throughputCmd.Flags().IntVar(&throughputDays, "days", 0, "window in days (0 for configured default)")
	rootCmd.AddCommand(agingCmd)
	rootCmd.AddCommand(coverageCmd)
	rootCmd.AddCommand(throughputCmd)
}

func runAging(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	e, err := newEnv(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	staleDays := agingStaleDays
	if staleDays <= 0 {
		staleDays = e.cfg.Reports.StaleDays
	}

	rep, err := e.reports.Backlog(ctx, staleDays)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "active assignments: %d (stale after %d days: %d)\n", rep.Total, staleDays, rep.Stale)
	fmt.Fprintf(out, "avg age: %.1f days, oldest: %.1f days\n", rep.AvgAgeDays, rep.OldestAgeDays)

	buckets := make([]string, 0, len(rep.BucketCounts))
	for b := range rep.BucketCounts {
		buckets = append(buckets, b)
	}
	sort.Strings(buckets)
	for _, b := range buckets {
		fmt.Fprintf(out, "  %s days: %d\n", b, rep.BucketCounts[b])
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "REVIEWER\tTOTAL\tSTALE\tOLDEST")
	for _, s := range rep.ReviewerStats {
		fmt.Fprintf(w, "%s\t%d\t%d\t%.1f\n", s.Reviewer, s.Total, s.Stale, s.OldestAgeDays)
	}
	return w.Flush()
}

func runCoverage(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	e, err := newEnv(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	rows, err := e.reports.Coverage(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TAG\tQUEUE\tREVIEWERS\tCAPACITY\tASSIGNED\tREMAINING\tCOVERAGE")
	for _, row := range rows {
		coverage := "-"
		if row.CoverageRatio != nil {
			coverage = fmt.Sprintf("%.2f", *row.CoverageRatio)
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\t%d\t%s\n",
			row.Tag, row.QueueCount, row.ReviewerCount, row.Capacity,
			row.Assigned, row.Remaining, coverage)
	}
	return w.Flush()
}

func runThroughput(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	e, err := newEnv(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	days := throughputDays
	if days <= 0 {
		days = e.cfg.Reports.ThroughputDays
	}

	rep, err := e.reports.Throughput(ctx, days)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "completed in last %d days: %d\n", days, rep.TotalCompleted)
	if rep.TotalCompleted > 0 {
		fmt.Fprintf(out, "cycle days avg/min/max: %.1f/%.1f/%.1f\n",
			rep.AvgCycleDays, rep.MinCycleDays, rep.MaxCycleDays)
	}

	dates := make([]string, 0, len(rep.DailyCounts))
	for d := range rep.DailyCounts {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	for _, d := range dates {
		fmt.Fprintf(out, "  %s: %d\n", d, rep.DailyCounts[d])
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "REVIEWER\tCOMPLETED\tAVG CYCLE")
	for _, s := range rep.ReviewerStats {
		fmt.Fprintf(w, "%s\t%d\t%.1f\n", s.Reviewer, s.Completed, s.AvgCycleDays)
	}
	return w.Flush()
}
