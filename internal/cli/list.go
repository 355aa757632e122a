package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		stateDir, _ := cmd.Flags().GetString("state-dir")
		runs, err := openStore(stateDir)
		if err != nil {
			return err
		}

		statusFilter, _ := cmd.Flags().GetString("status")
		all, err := runs.List(statusFilter)
		if err != nil {
			return err
		}

		format, _ := cmd.Flags().GetString("format")
		if format == "json" {
			data, _ := json.MarshalIndent(all, "", "  ")
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		}

		if len(all) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No runs found.")
			return nil
		}
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "%-20s %-10s %-7s %-20s %s\n", "NAMESPACE", "STATUS", "PHASES", "UPDATED", "TASK")
		for _, run := range all {
			task := run.Task
			if len(task) > 40 {
				task = task[:37] + "..."
			}
			fmt.Fprintf(w, "%-20s %-10s %-7d %-20s %s\n",
				run.Namespace, run.Status, len(run.Phases), run.UpdatedAt, task)
		}
		return nil
	},
}

func init() {
	listCmd.Flags().String("status", "", "Filter by run status")
	listCmd.Flags().String("format", "text", "Output format: text or json")
	listCmd.Flags().String("state-dir", "", "Directory for run state")
}
