// Package decompose turns a free-text specification into an ordered,
// dependency-chained plan.
package decompose

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/ShayCichocki/architect/internal/graph"
	"github.com/ShayCichocki/architect/pkg/models"
)

// ErrBrokenChain indicates a plan whose steps do not form a linear chain.
var ErrBrokenChain = errors.New("plan steps do not form a linear chain")

// DefaultSteps is the plan used when a specification has no usable text.
var DefaultSteps = []string{
	"Review the existing project structure",
	"Implement the plan",
	"Test and verify the output",
}

var (
	newlines  = regexp.MustCompile(`\n+`)
	sentences = regexp.MustCompile(`[.?!]`)
)

// Synthesize splits a specification into plan steps, one per non-empty line.
// A specification without line content falls back to sentences, and one
// without sentences falls back to DefaultSteps. The result is never empty.
func Synthesize(spec string) []models.PlanStep {
	summaries := split(strings.ReplaceAll(spec, "\r\n", "\n"), newlines)
	if len(summaries) == 0 {
		summaries = split(spec, sentences)
	}
	if len(summaries) == 0 {
		summaries = DefaultSteps
	}

	steps := make([]models.PlanStep, len(summaries))
	for i, summary := range summaries {
		step := models.PlanStep{
			ID:           StepID(i),
			Summary:      summary,
			Rationale:    fmt.Sprintf("Action %d derived from the requirements.", i+1),
			Dependencies: []string{},
			Status:       models.StepStatusPending,
		}
		if i == 0 {
			step.Status = models.StepStatusInProgress
		} else {
			step.Dependencies = []string{StepID(i - 1)}
		}
		steps[i] = step
	}
	return steps
}

// StepID returns the id of the step at a 0-based plan position.
func StepID(index int) string {
	return fmt.Sprintf("step-%d", index+1)
}

// ValidateChain checks that each step depends on exactly its predecessor:
// plan order is execution order, and no step has more than one dependency
// or dependent.
func ValidateChain(steps []models.PlanStep) error {
	g := graph.New()
	if err := g.Build(steps); err != nil {
		return fmt.Errorf("build plan graph: %w", err)
	}
	order, err := g.TopologicalSort()
	if err != nil {
		return fmt.Errorf("order plan graph: %w", err)
	}

	for i, id := range order {
		if id != steps[i].ID {
			return fmt.Errorf("%w: %s must run before %s", ErrBrokenChain, id, steps[i].ID)
		}
		deps := g.Dependencies(id)
		switch {
		case i == 0 && len(deps) != 0:
			return fmt.Errorf("%w: %s has dependencies %v", ErrBrokenChain, id, deps)
		case i > 0 && len(deps) != 1:
			return fmt.Errorf("%w: %s depends on %v, want [%s]", ErrBrokenChain, id, deps, steps[i-1].ID)
		}
		if dependents := g.Dependents(id); len(dependents) > 1 {
			return fmt.Errorf("%w: %s has dependents %v", ErrBrokenChain, id, dependents)
		}
	}

	// A step may only be in progress once everything before it is done.
	ready := make(map[string]bool)
	for _, id := range g.Ready() {
		ready[id] = true
	}
	for _, step := range steps {
		if step.Status == models.StepStatusInProgress && !ready[step.ID] {
			return fmt.Errorf("%w: %s is in progress before its dependencies are done", ErrBrokenChain, step.ID)
		}
	}
	return nil
}

func split(text string, sep *regexp.Regexp) []string {
	var out []string
	for _, part := range sep.Split(text, -1) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
