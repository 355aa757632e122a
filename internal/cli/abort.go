package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sparckit/sparc/internal/store"
)

var abortCmd = &cobra.Command{
	Use:   "abort <namespace>",
	Short: "Mark a pending or running run as cancelled",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		stateDir, _ := cmd.Flags().GetString("state-dir")
		runs, err := openStore(stateDir)
		if err != nil {
			return err
		}

		reason, _ := cmd.Flags().GetString("reason")
		err = runs.Update(args[0], func(run *store.PipelineRun) {
			if run.Status == store.StatusSucceeded || run.Status == store.StatusFailed {
				return
			}
			run.Status = store.StatusCancelled
			run.FailureReason = reason
		})
		if err != nil {
			return err
		}

		run, err := runs.Get(args[0])
		if err != nil {
			return err
		}
		if run.Status != store.StatusCancelled {
			return fmt.Errorf("run %q already finished with status %q", args[0], run.Status)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "run %s cancelled\n", args[0])
		return nil
	},
}

func init() {
	abortCmd.Flags().String("reason", "aborted by operator", "Recorded failure reason")
	abortCmd.Flags().String("state-dir", "", "Directory for run state")
}
