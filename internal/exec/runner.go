package exec

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"runtime"
	"time"
)

// waitDelay bounds how long Wait keeps reading output after the process is
// killed, for grandchildren that still hold the pipes.
const waitDelay = 500 * time.Millisecond

// ExecRunner implements CommandRunner using os/exec.
type ExecRunner struct {
	shell     string
	shellArgs []string
}

// NewRunner creates a new ExecRunner using the platform's default shell:
// PowerShell on Windows, /bin/sh elsewhere.
func NewRunner() *ExecRunner {
	if runtime.GOOS == "windows" {
		return &ExecRunner{shell: "powershell.exe", shellArgs: []string{"-NoProfile", "-Command"}}
	}
	return &ExecRunner{shell: "/bin/sh", shellArgs: []string{"-c"}}
}

// RunShell executes a command line through the platform shell.
// Canceling ctx kills the shell and every process it started.
func (r *ExecRunner) RunShell(ctx context.Context, workDir string, command string) (Output, error) {
	args := append(append([]string{}, r.shellArgs...), command)
	cmd := exec.CommandContext(ctx, r.shell, args...)
	if workDir != "" {
		cmd.Dir = workDir
	}
	killTree(cmd)
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return Output{Stdout: stdout.String(), Stderr: stderr.String()}, err
}

// Exited reports whether err came from a process that ran and exited
// non-zero, as opposed to one that could not be started.
func Exited(err error) bool {
	var exitErr *exec.ExitError
	return errors.As(err, &exitErr)
}

// Verify ExecRunner implements CommandRunner at compile time.
var _ CommandRunner = (*ExecRunner)(nil)
