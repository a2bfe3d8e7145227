package models

// Termination records why a self-healing run stopped.
type Termination string

const (
	// TerminationSucceeded indicates the command finally exited cleanly.
	TerminationSucceeded Termination = "succeeded"
	// TerminationExhausted indicates no heuristic could repair the last failure.
	TerminationExhausted Termination = "exhausted"
	// TerminationMaxAttempts indicates every attempt failed despite a fix being applied.
	TerminationMaxAttempts Termination = "max-attempts-reached"
	// TerminationCanceled indicates the caller's context ended the run.
	TerminationCanceled Termination = "canceled"
)

// Valid returns true if the termination is a known value.
func (t Termination) Valid() bool {
	switch t {
	case TerminationSucceeded, TerminationExhausted, TerminationMaxAttempts, TerminationCanceled:
		return true
	default:
		return false
	}
}

// CommandRunResult is the outcome of one self-healing command invocation.
type CommandRunResult struct {
	// Command is the shell command as given.
	Command string `json:"command"`
	// Attempts is the number of times the command ran (at least 1).
	Attempts int `json:"attempts"`
	// Success is true when the last attempt exited cleanly.
	Success bool `json:"success"`
	// Stdout is the standard output of the last attempt.
	Stdout string `json:"stdout"`
	// Stderr is the standard error of the last attempt.
	Stderr string `json:"stderr"`
	// FixesApplied describes each corrective action, in order.
	FixesApplied []string `json:"fixesApplied"`
	// Termination is the terminal state the run ended in.
	Termination Termination `json:"termination"`
}
