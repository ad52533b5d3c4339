package harness

import (
	"fmt"
	"os"
)

// WorkerEnv is set in the environment of every worker process.
const WorkerEnv = "SEQBENCH_WORKER"

// CommandConfig holds the resolved command, extra arguments, and
// environment variables needed to start a worker process.
type CommandConfig struct {
	Binary    string
	ExtraArgs []string
	Env       []string
}

// SelfCommand re-enters the running executable through its hidden worker
// command. verbose forwards debug logging to the worker.
func SelfCommand(verbose bool) (CommandConfig, error) {
	exe, err := os.Executable()
	if err != nil {
		return CommandConfig{}, fmt.Errorf("resolve executable: %w", err)
	}

	args := []string{"worker"}
	if verbose {
		args = append(args, "--verbose")
	}

	return CommandConfig{
		Binary:    exe,
		ExtraArgs: args,
		Env:       []string{WorkerEnv + "=1"},
	}, nil
}
