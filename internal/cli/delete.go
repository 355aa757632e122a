package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <namespace>",
	Short: "Remove a run's state and free its namespace",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		stateDir, _ := cmd.Flags().GetString("state-dir")
		runs, err := openStore(stateDir)
		if err != nil {
			return err
		}
		if err := runs.Delete(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "run %s deleted\n", args[0])
		return nil
	},
}

func init() {
	deleteCmd.Flags().String("state-dir", "", "Directory for run state")
}
