// Package graph provides a dependency graph over plan steps.
package graph

import (
	"errors"
	"fmt"

	"github.com/ShayCichocki/architect/pkg/models"
)

// ErrCycleDetected indicates a circular dependency was found in the plan.
var ErrCycleDetected = errors.New("circular dependency detected")

// DependencyGraph is a directed acyclic graph of plan steps.
// Edges point from a step to the steps it depends on.
type DependencyGraph struct {
	// order keeps step ids in plan order.
	order []string
	nodes map[string]models.PlanStep
	edges map[string][]string
}

// New creates a new empty dependency graph.
func New() *DependencyGraph {
	return &DependencyGraph{
		nodes: make(map[string]models.PlanStep),
		edges: make(map[string][]string),
	}
}

// Build constructs the graph from plan steps.
// Returns an error on duplicate ids, unknown dependencies, or cycles.
func (g *DependencyGraph) Build(steps []models.PlanStep) error {
	for _, step := range steps {
		if _, exists := g.nodes[step.ID]; exists {
			return fmt.Errorf("duplicate step id %s", step.ID)
		}
		g.order = append(g.order, step.ID)
		g.nodes[step.ID] = step
		g.edges[step.ID] = nil
	}

	for _, step := range steps {
		for _, depID := range step.Dependencies {
			if _, exists := g.nodes[depID]; !exists {
				return fmt.Errorf("step %s depends on unknown step %s", step.ID, depID)
			}
			g.edges[step.ID] = append(g.edges[step.ID], depID)
		}
	}

	if g.HasCycle() {
		return ErrCycleDetected
	}
	return nil
}

// HasCycle returns true if the graph contains a circular dependency.
// Uses depth-first search with coloring to detect back edges.
func (g *DependencyGraph) HasCycle() bool {
	// 0 = unvisited, 1 = in progress, 2 = done.
	colors := make(map[string]int, len(g.nodes))

	var visit func(id string) bool
	visit = func(id string) bool {
		colors[id] = 1
		for _, depID := range g.edges[id] {
			switch colors[depID] {
			case 1:
				return true
			case 0:
				if visit(depID) {
					return true
				}
			}
		}
		colors[id] = 2
		return false
	}

	for _, id := range g.order {
		if colors[id] == 0 && visit(id) {
			return true
		}
	}
	return false
}

// TopologicalSort returns step ids with every dependency ahead of its dependents.
// Independent steps keep plan order.
func (g *DependencyGraph) TopologicalSort() ([]string, error) {
	if g.HasCycle() {
		return nil, ErrCycleDetected
	}

	visited := make(map[string]bool, len(g.nodes))
	result := make([]string, 0, len(g.nodes))

	var visit func(id string)
	visit = func(id string) {
		if visited[id] {
			return
		}
		visited[id] = true
		for _, depID := range g.edges[id] {
			visit(depID)
		}
		result = append(result, id)
	}

	for _, id := range g.order {
		visit(id)
	}
	return result, nil
}

// Ready returns ids of steps that are not done and whose dependencies are all done.
func (g *DependencyGraph) Ready() []string {
	var ready []string
	for _, id := range g.order {
		if g.nodes[id].Status == models.StepStatusDone {
			continue
		}
		satisfied := true
		for _, depID := range g.edges[id] {
			if g.nodes[depID].Status != models.StepStatusDone {
				satisfied = false
				break
			}
		}
		if satisfied {
			ready = append(ready, id)
		}
	}
	return ready
}

// Dependencies returns the ids the given step depends on.
func (g *DependencyGraph) Dependencies(id string) []string {
	return g.edges[id]
}

// Dependents returns the ids of steps that depend on the given step.
func (g *DependencyGraph) Dependents(id string) []string {
	var dependents []string
	for _, other := range g.order {
		for _, depID := range g.edges[other] {
			if depID == id {
				dependents = append(dependents, other)
				break
			}
		}
	}
	return dependents
}
