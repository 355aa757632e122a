package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sparckit/sparc/internal/config"
	"github.com/sparckit/sparc/internal/hooks"
	"github.com/sparckit/sparc/internal/runner"
	"github.com/sparckit/sparc/internal/store"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute a pipeline run for a task",
	Long: `Runs a task through all five phases in order. Each phase result is
evaluated against its quality gate; a failed gate triggers exactly one
remediation re-run before the run is declared failed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := runConfigFromFlags(cmd)
		if err != nil {
			return err
		}
		if errs := config.Validate(cfg); len(errs) > 0 {
			for _, e := range errs {
				fmt.Fprintf(cmd.ErrOrStderr(), "config error: %s\n", e)
			}
			return fmt.Errorf("invalid configuration (%d errors)", len(errs))
		}
		r := cfg.Run

		verbose, _ := cmd.Flags().GetBool("verbose")
		logger, err := buildLogger(verbose)
		if err != nil {
			return err
		}
		defer logger.Sync()

		var backend *hooks.Client
		if r.SwarmEnabled {
			timeout, err := r.HookTimeoutDuration()
			if err != nil {
				return err
			}
			backend = hooks.NewClient(hooks.Noop{}, logger, timeout)
		}

		runs := store.NewStore(r.StateDir)
		if err := os.MkdirAll(r.StateDir, 0o755); err != nil {
			return fmt.Errorf("create state dir: %w", err)
		}

		var events runner.EventLog
		database, cleanup, err := openDB(r.DBPath)
		if err != nil {
			logger.Warn("event database unavailable, continuing without event log")
		} else {
			defer cleanup()
			events = database
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		eng := runner.New(runner.Options{
			Namespace:         r.Namespace,
			Task:              r.Task,
			NeuralLearning:    r.NeuralLearning,
			ParallelExecution: r.ParallelExecution,
			ArtifactDir:       r.ArtifactDir,
		}, backend, runs, events, logger)

		run, runErr := eng.Run(ctx)
		if run != nil {
			printRunSummary(cmd, run)
		}
		return runErr
	},
}

// runConfigFromFlags loads --config if given, then overlays explicit flags.
func runConfigFromFlags(cmd *cobra.Command) (*config.RunConfig, error) {
	var cfg *config.RunConfig
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		d := config.Default()
		cfg = &d
	}

	if v, _ := cmd.Flags().GetString("namespace"); v != "" {
		cfg.Run.Namespace = v
	}
	if v, _ := cmd.Flags().GetString("task"); v != "" {
		cfg.Run.Task = v
	}
	if cmd.Flags().Changed("swarm") {
		cfg.Run.SwarmEnabled, _ = cmd.Flags().GetBool("swarm")
	}
	if cmd.Flags().Changed("neural") {
		cfg.Run.NeuralLearning, _ = cmd.Flags().GetBool("neural")
	}
	if cmd.Flags().Changed("parallel") {
		cfg.Run.ParallelExecution, _ = cmd.Flags().GetBool("parallel")
	}
	if v, _ := cmd.Flags().GetString("artifact-dir"); v != "" {
		cfg.Run.ArtifactDir = v
	}
	if v, _ := cmd.Flags().GetString("state-dir"); v != "" {
		cfg.Run.StateDir = v
	}
	if v, _ := cmd.Flags().GetString("db"); v != "" {
		cfg.Run.DBPath = v
	}

	// Fill path defaults for the flags-only case.
	raw := *cfg
	config.ApplyDefaults(&raw)
	return &raw, nil
}

func printRunSummary(cmd *cobra.Command, run *store.PipelineRun) {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "\nRun %s (%s): %s\n", run.Namespace, run.ID, run.Status)
	fmt.Fprintf(w, "Agent pool: %d\n", run.AgentPool)
	fmt.Fprintf(w, "%-15s %-10s %-8s %-10s %s\n", "PHASE", "STATUS", "SCORE", "DURATION", "NOTES")
	for _, p := range run.Phases {
		score := "-"
		if p.Gate != nil {
			score = fmt.Sprintf("%.0f", p.Gate.Score)
		}
		notes := ""
		if p.Remediated {
			notes = "remediated"
		}
		if p.Error != "" {
			notes = p.Error
		}
		fmt.Fprintf(w, "%-15s %-10s %-8s %-10s %s\n",
			p.Phase, p.Status, score, fmt.Sprintf("%dms", p.DurationMs), notes)
	}
	if run.Report != nil {
		fmt.Fprintf(w, "Gate pass rate: %.0f%%\n", run.Report.GatePassRate*100)
		for _, rec := range run.Report.Recommendations {
			fmt.Fprintf(w, "  - %s\n", rec)
		}
	}
	if run.FailureReason != "" {
		fmt.Fprintf(w, "Failure: %s\n", run.FailureReason)
	}
}

func init() {
	runCmd.Flags().String("config", "", "Path to a run config YAML")
	runCmd.Flags().String("namespace", "", "Run namespace (unique per run)")
	runCmd.Flags().String("task", "", "Task description to run through the pipeline")
	runCmd.Flags().Bool("swarm", false, "Enable the distributed-agent backend")
	runCmd.Flags().Bool("neural", true, "Enable neural learning hooks")
	runCmd.Flags().Bool("parallel", false, "Size the agent pool for parallel execution")
	runCmd.Flags().String("artifact-dir", "", "Directory for phase documents")
	runCmd.Flags().String("state-dir", "", "Directory for run state")
	runCmd.Flags().String("db", "", "Path to the event database")
	runCmd.Flags().Bool("verbose", false, "Human-readable debug logging")
}
