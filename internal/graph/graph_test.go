package graph

import (
	"errors"
	"reflect"
	"testing"

	"github.com/ShayCichocki/architect/pkg/models"
)

func step(id string, status models.StepStatus, deps ...string) models.PlanStep {
	if deps == nil {
		deps = []string{}
	}
	return models.PlanStep{ID: id, Summary: id, Dependencies: deps, Status: status}
}

func TestBuild_Chain(t *testing.T) {
	g := New()
	err := g.Build([]models.PlanStep{
		step("step-1", models.StepStatusInProgress),
		step("step-2", models.StepStatusPending, "step-1"),
		step("step-3", models.StepStatusPending, "step-2"),
	})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	order, err := g.TopologicalSort()
	if err != nil {
		t.Fatalf("TopologicalSort failed: %v", err)
	}
	if want := []string{"step-1", "step-2", "step-3"}; !reflect.DeepEqual(order, want) {
		t.Errorf("order = %v, want %v", order, want)
	}
	if deps := g.Dependencies("step-3"); !reflect.DeepEqual(deps, []string{"step-2"}) {
		t.Errorf("Dependencies(step-3) = %v", deps)
	}
	if dependents := g.Dependents("step-1"); !reflect.DeepEqual(dependents, []string{"step-2"}) {
		t.Errorf("Dependents(step-1) = %v", dependents)
	}
}

func TestBuild_UnknownDependency(t *testing.T) {
	err := New().Build([]models.PlanStep{step("step-2", models.StepStatusPending, "step-1")})
	if err == nil {
		t.Fatal("expected error for unknown dependency")
	}
}

func TestBuild_DuplicateID(t *testing.T) {
	err := New().Build([]models.PlanStep{
		step("step-1", models.StepStatusPending),
		step("step-1", models.StepStatusPending),
	})
	if err == nil {
		t.Fatal("expected error for duplicate id")
	}
}

func TestBuild_Cycle(t *testing.T) {
	err := New().Build([]models.PlanStep{
		step("a", models.StepStatusPending, "b"),
		step("b", models.StepStatusPending, "a"),
	})
	if !errors.Is(err, ErrCycleDetected) {
		t.Errorf("err = %v, want ErrCycleDetected", err)
	}
}

func TestReady(t *testing.T) {
	g := New()
	if err := g.Build([]models.PlanStep{
		step("step-1", models.StepStatusDone),
		step("step-2", models.StepStatusInProgress, "step-1"),
		step("step-3", models.StepStatusPending, "step-2"),
	}); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if ready := g.Ready(); !reflect.DeepEqual(ready, []string{"step-2"}) {
		t.Errorf("Ready = %v, want [step-2]", ready)
	}
}
