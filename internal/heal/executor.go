// Package heal runs shell commands and repairs known failures between
// bounded retries.
package heal

import (
	"context"

	"go.uber.org/zap"

	"github.com/ShayCichocki/architect/internal/exec"
	"github.com/ShayCichocki/architect/pkg/models"
)

// MaxAttempts is the hard ceiling on runs per invocation.
const MaxAttempts = 3

// AttemptEvent reports the outcome of one run of the command.
type AttemptEvent struct {
	Attempt int    `json:"attempt"`
	Success bool   `json:"success"`
	Stdout  string `json:"stdout"`
	Stderr  string `json:"stderr"`
	// Rule names the matched signature, empty if none matched.
	Rule string `json:"rule,omitempty"`
	// Fix describes the corrective action applied after this attempt, if any.
	Fix string `json:"fix,omitempty"`
}

// Observer receives an event after every attempt.
type Observer func(AttemptEvent)

// Executor runs commands with heuristic self-repair.
// It holds no per-run state and is safe for concurrent use as long as
// concurrent runs use different working directories.
type Executor struct {
	runner exec.CommandRunner
	rules  []Rule
	logger *zap.Logger
}

// Option configures an Executor.
type Option func(*Executor)

// WithRunner sets the command runner.
func WithRunner(r exec.CommandRunner) Option {
	return func(e *Executor) {
		if r != nil {
			e.runner = r
		}
	}
}

// WithRules replaces the rule chain.
func WithRules(rules []Rule) Option {
	return func(e *Executor) {
		e.rules = rules
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Executor) {
		if l != nil {
			e.logger = l
		}
	}
}

// New creates an Executor using the platform shell and DefaultRules.
func New(opts ...Option) *Executor {
	e := &Executor{
		runner: exec.NewRunner(),
		rules:  DefaultRules,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run executes command in dir until it succeeds, a failure cannot be
// repaired, MaxAttempts runs have failed, or ctx is canceled.
// The returned streams are those of the last attempt.
func (e *Executor) Run(ctx context.Context, command, dir string, observe Observer) models.CommandRunResult {
	result := models.CommandRunResult{
		Command:      command,
		FixesApplied: []string{},
	}
	log := e.logger.With(zap.String("command", command), zap.String("dir", dir))

	for result.Attempts < MaxAttempts {
		result.Attempts++
		out, err := e.runner.RunShell(ctx, dir, command)
		result.Stdout, result.Stderr = out.Stdout, out.Stderr

		if err == nil {
			log.Debug("command succeeded", zap.Int("attempt", result.Attempts))
			notify(observe, AttemptEvent{Attempt: result.Attempts, Success: true, Stdout: out.Stdout, Stderr: out.Stderr})
			result.Success = true
			result.Termination = models.TerminationSucceeded
			return result
		}

		if ctx.Err() != nil {
			log.Info("command canceled", zap.Int("attempt", result.Attempts), zap.Error(ctx.Err()))
			notify(observe, AttemptEvent{Attempt: result.Attempts, Stdout: out.Stdout, Stderr: out.Stderr})
			result.Termination = models.TerminationCanceled
			return result
		}

		if result.Stderr == "" && !exec.Exited(err) {
			result.Stderr = err.Error()
		}

		rule, fix, fixed := e.repair(ctx, dir, result.Stderr)
		if ctx.Err() != nil {
			log.Info("command canceled during fix", zap.Int("attempt", result.Attempts), zap.String("rule", rule))
			notify(observe, AttemptEvent{Attempt: result.Attempts, Stdout: result.Stdout, Stderr: result.Stderr, Rule: rule})
			result.Termination = models.TerminationCanceled
			return result
		}
		log.Info("command failed",
			zap.Int("attempt", result.Attempts),
			zap.String("rule", rule),
			zap.String("fix", fix),
			zap.Error(err))
		notify(observe, AttemptEvent{
			Attempt: result.Attempts,
			Stdout:  result.Stdout,
			Stderr:  result.Stderr,
			Rule:    rule,
			Fix:     fix,
		})

		if !fixed {
			result.Termination = models.TerminationExhausted
			return result
		}
		result.FixesApplied = append(result.FixesApplied, fix)
	}

	log.Warn("command still failing after max attempts", zap.Int("attempts", result.Attempts))
	result.Termination = models.TerminationMaxAttempts
	return result
}

// repair applies the first rule whose signature matches stderr.
func (e *Executor) repair(ctx context.Context, dir, stderr string) (rule, fix string, ok bool) {
	for _, r := range e.rules {
		match := r.Signature.FindStringSubmatch(stderr)
		if match == nil {
			continue
		}
		fix, ok = r.Fix(ctx, e.runner, dir, match)
		return r.Name, fix, ok
	}
	return "", "", false
}

func notify(observe Observer, ev AttemptEvent) {
	if observe != nil {
		observe(ev)
	}
}
