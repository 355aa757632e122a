package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status <namespace>",
	Short: "Show the phase-by-phase state of a run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		stateDir, _ := cmd.Flags().GetString("state-dir")
		runs, err := openStore(stateDir)
		if err != nil {
			return err
		}

		run, err := runs.Get(args[0])
		if err != nil {
			return err
		}

		format, _ := cmd.Flags().GetString("format")
		if format == "json" {
			data, _ := json.MarshalIndent(run, "", "  ")
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		}

		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "Run %s: %s\n", run.Namespace, run.Status)
		fmt.Fprintf(w, "Task: %s\n", run.Task)
		fmt.Fprintf(w, "Agent pool: %d\n\n", run.AgentPool)
		fmt.Fprintf(w, "%-15s %-10s %-8s %-10s %s\n", "PHASE", "STATUS", "SCORE", "DURATION", "ARTIFACT")
		for _, p := range run.Phases {
			score := "-"
			if p.Gate != nil {
				score = fmt.Sprintf("%.0f", p.Gate.Score)
			}
			artifact := ""
			if len(p.ArtifactRefs) > 0 {
				artifact = p.ArtifactRefs[0]
			}
			fmt.Fprintf(w, "%-15s %-10s %-8s %-10s %s\n",
				p.Phase, p.Status, score, fmt.Sprintf("%dms", p.DurationMs), artifact)
		}
		if run.FailureReason != "" {
			fmt.Fprintf(w, "\nFailure: %s\n", run.FailureReason)
		}
		return nil
	},
}

func init() {
	statusCmd.Flags().String("format", "text", "Output format: text or json")
	statusCmd.Flags().String("state-dir", "", "Directory for run state")
}
