// Package commentary narrates a plan as manager, coder and reviewer notes
// and suggests the commands to verify it.
package commentary

import (
	"fmt"
	"regexp"
	"time"

	"github.com/ShayCichocki/architect/pkg/models"
)

const (
	coderPlaceholder    = "General context"
	reviewerPlaceholder = "Plan details"
)

var docPattern = regexp.MustCompile(`(?i)doc|readme`)

// Commands holds the fallback commands used when a caller supplies no tests.
type Commands struct {
	Build string
	Test  string
	Lint  string
}

// DefaultCommands returns the stock Node.js command set.
func DefaultCommands() Commands {
	return Commands{
		Build: "npm run build",
		Test:  "npm test",
		Lint:  "npm run lint",
	}
}

// Generator produces agent messages. The zero value is not usable; use New.
type Generator struct {
	// Now stamps each message.
	Now func() time.Time
}

// New creates a Generator stamping messages with the wall clock.
func New() *Generator {
	return &Generator{Now: time.Now}
}

func (g *Generator) message(role models.AgentRole, content, reasoning string) models.AgentMessage {
	return models.AgentMessage{
		Role:      role,
		Content:   content,
		Reasoning: reasoning,
		Timestamp: g.Now().UTC(),
	}
}

// ManagerMessage reports the size of the plan.
func (g *Generator) ManagerMessage(plan []models.PlanStep) models.AgentMessage {
	return g.message(models.RoleManager,
		fmt.Sprintf("Task analysis complete. Built a %d-step plan.", len(plan)),
		"Turned the requirements in the specification into solution steps.")
}

// CodingNotes returns one coder message per step, cycling through contextSummary.
func (g *Generator) CodingNotes(plan []models.PlanStep, contextSummary []string) []models.AgentMessage {
	if len(contextSummary) == 0 {
		contextSummary = []string{coderPlaceholder}
	}

	notes := make([]models.AgentMessage, 0, len(plan))
	for i, step := range plan {
		content := fmt.Sprintf("Action plan for step %q:\n"+
			"- Related context: %s\n"+
			"- Change to apply: update or create the code related to the step title.\n"+
			"- Expected output: code that passes the tests and matches the documentation.",
			step.Summary, contextSummary[i%len(contextSummary)])
		notes = append(notes, g.message(models.RoleCoder, content,
			"Described the targeted code change following the planned task order."))
	}
	return notes
}

// ReviewNotes returns one reviewer checklist per step. The last step gets
// the final assessment; earlier steps report nothing carried over.
func (g *Generator) ReviewNotes(plan []models.PlanStep, contextSummary []string) []models.AgentMessage {
	if len(contextSummary) == 0 {
		contextSummary = []string{reviewerPlaceholder}
	}

	notes := make([]models.AgentMessage, 0, len(plan))
	for i, step := range plan {
		verdict := "Intermediate step: no findings carried over to the next step."
		if i == len(plan)-1 {
			verdict = "Final assessment: the whole system looks stable."
		}
		content := fmt.Sprintf("Verification checklist for step %q:\n"+
			"- Code style check\n"+
			"- Edge case scenarios\n"+
			"- Test coverage and automation\n"+
			"Related context: %s\n"+
			"Result: %s",
			step.Summary, contextSummary[i%len(contextSummary)], verdict)
		notes = append(notes, g.message(models.RoleReviewer, content,
			"Automated the quality checks specific to the step."))
	}
	return notes
}

// ContextSummary formats retrieval hits as "path (similarity)".
func ContextSummary(hits []models.RetrievalHit) []string {
	summary := make([]string, 0, len(hits))
	for _, hit := range hits {
		summary = append(summary, fmt.Sprintf("%s (%.2f)", hit.Path, hit.Similarity))
	}
	return summary
}

// SuggestCommands returns the caller's tests, or the build and test
// defaults when there are none, plus the lint command when any step
// mentions documentation. Duplicates are dropped; order is insertion order.
func SuggestCommands(tests []string, plan []models.PlanStep, defaults Commands) []string {
	var out []string
	seen := make(map[string]bool)
	add := func(cmd string) {
		if seen[cmd] {
			return
		}
		seen[cmd] = true
		out = append(out, cmd)
	}

	// Caller tests are kept verbatim, blank ones included. Empty defaults
	// mean the command is not configured.
	if len(tests) > 0 {
		for _, cmd := range tests {
			add(cmd)
		}
	} else {
		for _, cmd := range []string{defaults.Build, defaults.Test} {
			if cmd != "" {
				add(cmd)
			}
		}
	}

	for _, step := range plan {
		if docPattern.MatchString(step.Summary) {
			if defaults.Lint != "" {
				add(defaults.Lint)
			}
			break
		}
	}

	if out == nil {
		out = []string{}
	}
	return out
}
