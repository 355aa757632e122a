package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sparckit/sparc/internal/analytics"
)

var analyticsCmd = &cobra.Command{
	Use:   "analytics",
	Short: "Query pipeline performance analytics",
}

var analyticsPhaseDurationCmd = &cobra.Command{
	Use:   "phase-duration",
	Short: "Average and percentile durations per phase",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("db")
		d, cleanup, err := openDB(path)
		if err != nil {
			return err
		}
		defer cleanup()

		since, _ := cmd.Flags().GetString("since")
		stats, err := analytics.QueryPhaseDurations(d, since)
		if err != nil {
			return err
		}
		if len(stats) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No completed phases recorded.")
			return nil
		}
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "%-15s %-6s %-10s %-10s %-10s\n", "PHASE", "RUNS", "AVG(s)", "P50(s)", "P95(s)")
		for _, s := range stats {
			fmt.Fprintf(w, "%-15s %-6d %-10.2f %-10.2f %-10.2f\n",
				s.Phase, s.Count, s.Avg, s.P50, s.P95)
		}
		return nil
	},
}

var analyticsGatePassRateCmd = &cobra.Command{
	Use:   "gate-pass-rate",
	Short: "Quality gate pass rates and remediation counts per phase",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("db")
		d, cleanup, err := openDB(path)
		if err != nil {
			return err
		}
		defer cleanup()

		since, _ := cmd.Flags().GetString("since")
		rates, err := analytics.QueryGatePassRates(d, since)
		if err != nil {
			return err
		}
		if len(rates) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No gate evaluations recorded.")
			return nil
		}
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "%-15s %-6s %-10s %-10s %s\n", "PHASE", "EVALS", "PASS", "AVGSCORE", "REMEDIATED")
		for _, r := range rates {
			fmt.Fprintf(w, "%-15s %-6d %-10.0f %-10.1f %d\n",
				r.Phase, r.Evaluations, r.PassRate*100, r.AvgScore, r.Remediated)
		}
		return nil
	},
}

var analyticsOutcomesCmd = &cobra.Command{
	Use:   "outcomes",
	Short: "Latest terminal outcome per namespace",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("db")
		d, cleanup, err := openDB(path)
		if err != nil {
			return err
		}
		defer cleanup()

		outcomes, err := analytics.QueryRunOutcomes(d)
		if err != nil {
			return err
		}
		if len(outcomes) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No finished runs recorded.")
			return nil
		}
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "%-20s %-15s %s\n", "NAMESPACE", "OUTCOME", "TIME")
		for _, o := range outcomes {
			fmt.Fprintf(w, "%-20s %-15s %s\n", o.Namespace, o.Outcome, o.Timestamp)
		}
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{analyticsPhaseDurationCmd, analyticsGatePassRateCmd, analyticsOutcomesCmd} {
		c.Flags().String("db", "", "Path to the event database")
	}
	analyticsPhaseDurationCmd.Flags().String("since", "", "Only include rows at or after this timestamp")
	analyticsGatePassRateCmd.Flags().String("since", "", "Only include rows at or after this timestamp")
	analyticsCmd.AddCommand(analyticsPhaseDurationCmd)
	analyticsCmd.AddCommand(analyticsGatePassRateCmd)
	analyticsCmd.AddCommand(analyticsOutcomesCmd)
}
