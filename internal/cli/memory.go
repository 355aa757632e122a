package cli

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/sparckit/sparc/internal/phase"
)

var memoryCmd = &cobra.Command{
	Use:   "memory <namespace>",
	Short: "Inspect a run's persisted phase results",
	Long: `Shows the namespaced completion keys a run produced and, with --key,
the stored value for one of them. Keys follow the {namespace}_{phase}_complete
convention.`,
	Args: cobra.ExactArgs(1),
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

		// Rebuild the persisted keyspace from the run's phase records. Later
		// attempts overwrite earlier ones, matching the live store.
		values := make(map[string]phase.Payload)
		for _, p := range run.Phases {
			if p.Result != nil {
				values[run.Namespace+"_"+phase.CompletionKey(p.Phase)] = p.Result
			}
		}

		if key, _ := cmd.Flags().GetString("key"); key != "" {
			v, ok := values[key]
			if !ok {
				return fmt.Errorf("key %q not found in run %q", key, run.Namespace)
			}
			data, _ := json.MarshalIndent(v, "", "  ")
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		}

		keys := make([]string, 0, len(values))
		for k := range values {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%d fields)\n", k, len(values[k]))
		}
		return nil
	},
}

func init() {
	memoryCmd.Flags().String("key", "", "Print the stored value for one key")
	memoryCmd.Flags().String("state-dir", "", "Directory for run state")
}
