package models

import "time"

// StepStatus represents the current state of a plan step.
type StepStatus string

const (
	// StepStatusPending indicates the step has not started.
	StepStatusPending StepStatus = "pending"
	// StepStatusInProgress indicates the step is being worked on.
	StepStatusInProgress StepStatus = "in-progress"
	// StepStatusDone indicates the step completed successfully.
	StepStatusDone StepStatus = "done"
	// StepStatusNeedsAttention indicates the step needs a human look.
	StepStatusNeedsAttention StepStatus = "needs-attention"
)

// Valid returns true if the status is a known value.
func (s StepStatus) Valid() bool {
	switch s {
	case StepStatusPending, StepStatusInProgress, StepStatusDone, StepStatusNeedsAttention:
		return true
	default:
		return false
	}
}

// PlanStep is one atomic unit of work derived from a line or sentence
// of a specification.
type PlanStep struct {
	// ID is "step-<n>" with n the 1-based position in the plan.
	ID string `json:"id"`
	// Summary is the trimmed source line or sentence.
	Summary string `json:"summary"`
	// Rationale explains where the step came from.
	Rationale string `json:"rationale"`
	// Dependencies lists the ids of steps that must finish first.
	Dependencies []string `json:"dependencies"`
	// Status is the current state of the step.
	Status StepStatus `json:"status"`
}

// AgentRole tags the narrator of an AgentMessage.
type AgentRole string

const (
	// RoleManager summarizes the plan as a whole.
	RoleManager AgentRole = "manager"
	// RoleCoder describes the change for a step.
	RoleCoder AgentRole = "coder"
	// RoleReviewer lists the checks for a step.
	RoleReviewer AgentRole = "reviewer"
)

// Valid returns true if the role is a known value.
func (r AgentRole) Valid() bool {
	switch r {
	case RoleManager, RoleCoder, RoleReviewer:
		return true
	default:
		return false
	}
}

// AgentMessage is a role-labeled narrative note about a plan.
type AgentMessage struct {
	Role      AgentRole `json:"role"`
	Content   string    `json:"content"`
	Reasoning string    `json:"reasoning"`
	Timestamp time.Time `json:"timestamp"`
}

// OrchestrationResult aggregates everything a single orchestration run produces.
type OrchestrationResult struct {
	// Plan is the ordered, dependency-chained list of steps.
	Plan []PlanStep `json:"plan"`
	// CodingNotes holds the manager summary followed by one coder note per step.
	CodingNotes []AgentMessage `json:"codingNotes"`
	// ReviewNotes holds one reviewer note per step.
	ReviewNotes []AgentMessage `json:"reviewNotes"`
	// RelevantContext holds the retrieval hits that fed the commentary.
	RelevantContext []RetrievalHit `json:"relevantContext"`
	// SuggestedCommands is the ordered, de-duplicated command list.
	SuggestedCommands []string `json:"suggestedCommands"`
}
