package config

// RunConfig is the top-level configuration structure parsed from run YAML.
type RunConfig struct {
	Run Run `yaml:"run"`
}

// Run defines a single pipeline run: identity, execution options, and paths.
type Run struct {
	Namespace         string `yaml:"namespace"`
	Task              string `yaml:"task"`
	SwarmEnabled      bool   `yaml:"swarm_enabled"`
	NeuralLearning    bool   `yaml:"neural_learning"`
	ParallelExecution bool   `yaml:"parallel_execution"`
	ArtifactDir       string `yaml:"artifact_dir"`
	StateDir          string `yaml:"state_dir"`
	DBPath            string `yaml:"db_path"`
	HookTimeout       string `yaml:"hook_timeout"`
}
