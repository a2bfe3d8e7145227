// Package exec provides an interface for command execution.
package exec

import (
	"context"
)

// Output holds the separated streams of a finished command.
type Output struct {
	Stdout string
	Stderr string
}

// CommandRunner defines the interface for running external commands.
// This abstraction allows mocking command execution in tests.
type CommandRunner interface {
	// RunShell executes a command line through the platform shell.
	// The working directory is set to workDir if non-empty.
	// A non-nil error with populated Output means the command ran and failed.
	RunShell(ctx context.Context, workDir string, command string) (Output, error)
}
