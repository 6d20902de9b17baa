package state_test

import (
	"context"
	"errors"
	"testing"

	"flowforge/model"
	"flowforge/state"
)

func strPtr(s string) *string { return &s }

func statusPtr(s model.WorkflowStatus) *model.WorkflowStatus { return &s }

func TestWorkflowRoundTrip(t *testing.T) {
	provider, st := newTestProvider(t)
	ctx := context.Background()
	seedUser(t, st, "user-1", "Creator", "creator@example.com")

	input := model.WorkflowInput{
		Name:        "Onboarding",
		Description: "New hire onboarding",
		Status:      model.WorkflowActive,
		CreatedBy:   "user-1",
		Steps: []model.WorkflowStep{
			{Name: "Collect Details", Type: model.StepForm, Config: map[string]any{"formId": "form-1"}, Position: model.Position{X: 100, Y: 80}},
			{Name: "Manager Review", Type: model.StepApproval, Config: map[string]any{"role": "manager"}, Position: model.Position{X: 300, Y: 80}},
			{Name: "Provision", Type: model.StepTask, Config: map[string]any{}, Position: model.Position{X: 500, Y: 80}},
		},
		Connections: []model.Connection{},
	}

	created, err := provider.AddWorkflow(ctx, input)
	if err != nil {
		t.Fatal(err)
	}
	if created == nil || created.Id == "" {
		t.Fatal("created workflow should have an id")
	}

	// Connections reference the persisted step ids, so wire them in a second
	// write the way the canvas does.
	updated, err := provider.UpdateWorkflow(ctx, created.Id, model.WorkflowUpdate{
		Steps: input.Steps,
		Connections: []model.Connection{
			{Source: "s1", Target: "s2"},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(updated.Connections) != 1 {
		t.Fatalf("expected 1 connection, got %d", len(updated.Connections))
	}

	fetched, err := provider.GetWorkflow(ctx, created.Id)
	if err != nil {
		t.Fatal(err)
	}
	if fetched.Name != "Onboarding" || fetched.Status != model.WorkflowActive || fetched.CreatedBy != "user-1" {
		t.Fatalf("workflow fields lost in round trip: %+v", fetched)
	}
	if len(fetched.Steps) != 3 {
		t.Fatalf("expected 3 steps, got %d", len(fetched.Steps))
	}
	for i, want := range []string{"Collect Details", "Manager Review", "Provision"} {
		if fetched.Steps[i].Name != want {
			t.Fatalf("step order lost: expected %v at %d, got %v", want, i, fetched.Steps[i].Name)
		}
	}
	if fetched.Steps[0].Config["formId"] != "form-1" {
		t.Fatalf("step config lost: %v", fetched.Steps[0].Config)
	}
	if fetched.Steps[1].Position.X != 300 || fetched.Steps[1].Position.Y != 80 {
		t.Fatalf("step position lost: %+v", fetched.Steps[1].Position)
	}

	workflows := provider.Workflows()
	if len(workflows) != 1 || workflows[0].Id != created.Id {
		t.Fatalf("mirror not refreshed after write: %v", workflows)
	}
}

func TestWorkflowPartialUpdateLeavesChildrenUntouched(t *testing.T) {
	provider, st := newTestProvider(t)
	ctx := context.Background()
	seedUser(t, st, "user-1", "Creator", "creator@example.com")

	created, err := provider.AddWorkflow(ctx, model.WorkflowInput{
		Name:      "Expense Approval",
		CreatedBy: "user-1",
		Steps: []model.WorkflowStep{
			{Name: "Submit", Type: model.StepForm, Config: map[string]any{}},
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	updated, err := provider.UpdateWorkflow(ctx, created.Id, model.WorkflowUpdate{
		Description: strPtr("Expense review and signoff"),
	})
	if err != nil {
		t.Fatal(err)
	}
	if updated.Description != "Expense review and signoff" {
		t.Fatalf("description not updated: %v", updated.Description)
	}
	if updated.Name != "Expense Approval" {
		t.Fatalf("untouched field changed: %v", updated.Name)
	}
	if len(updated.Steps) != 1 || updated.Steps[0].Name != "Submit" {
		t.Fatalf("nil step slice must leave steps untouched: %v", updated.Steps)
	}

	cleared, err := provider.UpdateWorkflow(ctx, created.Id, model.WorkflowUpdate{
		Steps: []model.WorkflowStep{},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(cleared.Steps) != 0 {
		t.Fatalf("empty non-nil step slice must clear steps, got %v", cleared.Steps)
	}
}

func TestWorkflowStatusLifecycle(t *testing.T) {
	provider, st := newTestProvider(t)
	ctx := context.Background()
	seedUser(t, st, "user-1", "Creator", "creator@example.com")

	created, err := provider.AddWorkflow(ctx, model.WorkflowInput{Name: "Lifecycle", CreatedBy: "user-1"})
	if err != nil {
		t.Fatal(err)
	}
	if created.Status != model.WorkflowDraft {
		t.Fatalf("new workflows default to draft, got %v", created.Status)
	}

	activated, err := provider.UpdateWorkflow(ctx, created.Id, model.WorkflowUpdate{Status: statusPtr(model.WorkflowActive)})
	if err != nil {
		t.Fatal(err)
	}
	if activated.Status != model.WorkflowActive {
		t.Fatalf("draft to active should be allowed, got %v", activated.Status)
	}

	back, err := provider.UpdateWorkflow(ctx, created.Id, model.WorkflowUpdate{Status: statusPtr(model.WorkflowDraft)})
	if err != nil {
		t.Fatal(err)
	}
	if back.Status != model.WorkflowDraft {
		t.Fatalf("active to draft should be allowed, got %v", back.Status)
	}

	archived, err := provider.UpdateWorkflow(ctx, created.Id, model.WorkflowUpdate{Status: statusPtr(model.WorkflowArchived)})
	if err != nil {
		t.Fatal(err)
	}
	if archived.Status != model.WorkflowArchived {
		t.Fatalf("draft to archived should be allowed, got %v", archived.Status)
	}

	if _, err := provider.UpdateWorkflow(ctx, created.Id, model.WorkflowUpdate{Status: statusPtr(model.WorkflowActive)}); !errors.Is(err, state.ErrInvalidStatusChange) {
		t.Fatalf("archived is terminal, expected ErrInvalidStatusChange, got %v", err)
	}
}

func TestWorkflowDeleteIsIdempotent(t *testing.T) {
	provider, st := newTestProvider(t)
	ctx := context.Background()
	seedUser(t, st, "user-1", "Creator", "creator@example.com")

	created, err := provider.AddWorkflow(ctx, model.WorkflowInput{
		Name:      "Disposable",
		CreatedBy: "user-1",
		Steps:     []model.WorkflowStep{{Name: "Only", Type: model.StepTask, Config: map[string]any{}}},
	})
	if err != nil {
		t.Fatal(err)
	}

	if !provider.DeleteWorkflow(ctx, created.Id) {
		t.Fatal("first delete should succeed")
	}
	if provider.DeleteWorkflow(ctx, created.Id) {
		t.Fatal("second delete of the same id should report false")
	}

	fetched, err := provider.GetWorkflow(ctx, created.Id)
	if err != nil {
		t.Fatal(err)
	}
	if fetched != nil {
		t.Fatalf("workflow should be gone, got %+v", fetched)
	}
}

func TestWorkflowLoadIsolatesBrokenChildren(t *testing.T) {
	provider, st := newTestProvider(t)
	ctx := context.Background()
	seedUser(t, st, "user-1", "Creator", "creator@example.com")

	if _, err := provider.AddWorkflow(ctx, model.WorkflowInput{
		Name:      "Resilient",
		CreatedBy: "user-1",
		Steps:     []model.WorkflowStep{{Name: "Step", Type: model.StepTask, Config: map[string]any{}}},
		Connections: []model.Connection{
			{Source: "a", Target: "b"},
		},
	}); err != nil {
		t.Fatal(err)
	}

	broken := &brokenTables{Client: st, tables: map[string]bool{"workflow_steps": true}}
	flaky := state.New(broken)

	workflows, err := flaky.LoadWorkflows(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(workflows) != 1 {
		t.Fatalf("parent load should survive child failure, got %d workflows", len(workflows))
	}
	if len(workflows[0].Steps) != 0 {
		t.Fatalf("broken child branch should yield empty steps, got %v", workflows[0].Steps)
	}
	if len(workflows[0].Connections) != 1 {
		t.Fatalf("healthy child branch should still load, got %v", workflows[0].Connections)
	}
}
