package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Event database management",
}

var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database schema migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("db")
		_, cleanup, err := openDB(path)
		if err != nil {
			return err
		}
		defer cleanup()
		fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
		return nil
	},
}

var dbResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset the database (destructive!)",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("db")
		d, cleanup, err := openDB(path)
		if err != nil {
			return err
		}
		defer cleanup()
		if err := d.Reset(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "database reset")
		return nil
	},
}

var dbEventsCmd = &cobra.Command{
	Use:   "events <namespace>",
	Short: "Show recent pipeline events for a namespace",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("db")
		d, cleanup, err := openDB(path)
		if err != nil {
			return err
		}
		defer cleanup()

		limit, _ := cmd.Flags().GetInt("limit")
		events, err := d.RecentEvents(args[0], limit)
		if err != nil {
			return err
		}
		if len(events) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No events found.")
			return nil
		}
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "%-20s %-20s %-15s %-4s %s\n", "TIME", "EVENT", "PHASE", "ATT", "DETAIL")
		for _, e := range events {
			fmt.Fprintf(w, "%-20s %-20s %-15s %-4d %s\n",
				e.Timestamp, e.Event, e.Phase, e.Attempt, e.Detail)
		}
		return nil
	},
}

var dbGatesCmd = &cobra.Command{
	Use:   "gates <namespace>",
	Short: "Show all quality gate evaluations for a namespace",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("db")
		d, cleanup, err := openDB(path)
		if err != nil {
			return err
		}
		defer cleanup()

		results, err := d.GateResults(args[0])
		if err != nil {
			return err
		}
		if len(results) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No gate evaluations found.")
			return nil
		}
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "%-15s %-4s %-7s %-7s %-10s %s\n", "PHASE", "ATT", "PASSED", "SCORE", "THRESHOLD", "ISSUES")
		for _, g := range results {
			fmt.Fprintf(w, "%-15s %-4d %-7v %-7.0f %-10.2f %s\n",
				g.Phase, g.Attempt, g.Passed, g.Score, g.Threshold, g.Issues)
		}
		return nil
	},
}

var dbAgentsCmd = &cobra.Command{
	Use:   "agents <namespace>",
	Short: "Show the final agent performance snapshots for a namespace",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("db")
		d, cleanup, err := openDB(path)
		if err != nil {
			return err
		}
		defer cleanup()

		metrics, err := d.LatestAgentMetrics(args[0])
		if err != nil {
			return err
		}
		if len(metrics) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No agent metrics found.")
			return nil
		}
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "%-25s %-15s %-6s %-8s %-6s %s\n", "AGENT", "TYPE", "TASKS", "QUALITY", "EFF", "AVG(ms)")
		for _, m := range metrics {
			fmt.Fprintf(w, "%-25s %-15s %-6d %-8.1f %-6.2f %.0f\n",
				m.AgentID, m.AgentType, m.TasksCompleted, m.QualityScore, m.Efficiency, m.AvgDurationMs)
		}
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{dbMigrateCmd, dbResetCmd, dbEventsCmd, dbGatesCmd, dbAgentsCmd} {
		c.Flags().String("db", "", "Path to the event database")
	}
	dbEventsCmd.Flags().Int("limit", 50, "Maximum events to show")
	dbCmd.AddCommand(dbMigrateCmd)
	dbCmd.AddCommand(dbResetCmd)
	dbCmd.AddCommand(dbEventsCmd)
	dbCmd.AddCommand(dbGatesCmd)
	dbCmd.AddCommand(dbAgentsCmd)
}
