package state_test

import (
	"context"
	"testing"
	"time"

	"flowforge/model"
)

func TestTaskRoundTrip(t *testing.T) {
	provider, st := newTestProvider(t)
	ctx := context.Background()
	seedUser(t, st, "user-1", "Creator", "creator@example.com")

	due := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	created, err := provider.AddTask(ctx, model.TaskInput{
		Title:       "Order laptop",
		Description: "Order and image a laptop",
		Status:      model.TaskInProgress,
		Priority:    model.PriorityHigh,
		DueDate:     &due,
		AssignedTo:  strPtr("user-1"),
		CreatedBy:   "user-1",
	})
	if err != nil {
		t.Fatal(err)
	}

	fetched, err := provider.GetTask(ctx, created.Id)
	if err != nil {
		t.Fatal(err)
	}
	if fetched.Title != "Order laptop" || fetched.Status != model.TaskInProgress || fetched.Priority != model.PriorityHigh {
		t.Fatalf("task fields lost in round trip: %+v", fetched)
	}
	if fetched.DueDate == nil || !fetched.DueDate.Equal(due) {
		t.Fatalf("due date lost: %v", fetched.DueDate)
	}
	if fetched.AssignedTo == nil || *fetched.AssignedTo != "user-1" {
		t.Fatalf("assignee lost: %v", fetched.AssignedTo)
	}
}

func TestTaskDefaults(t *testing.T) {
	provider, st := newTestProvider(t)
	ctx := context.Background()
	seedUser(t, st, "user-1", "Creator", "creator@example.com")

	created, err := provider.AddTask(ctx, model.TaskInput{Title: "Bare", CreatedBy: "user-1"})
	if err != nil {
		t.Fatal(err)
	}
	if created.Status != model.TaskTodo || created.Priority != model.PriorityMedium {
		t.Fatalf("expected todo/medium defaults, got %v/%v", created.Status, created.Priority)
	}
}

func TestTaskDependencyReplacement(t *testing.T) {
	provider, st := newTestProvider(t)
	ctx := context.Background()
	seedUser(t, st, "user-1", "Creator", "creator@example.com")

	first, err := provider.AddTask(ctx, model.TaskInput{Title: "First", CreatedBy: "user-1"})
	if err != nil {
		t.Fatal(err)
	}
	second, err := provider.AddTask(ctx, model.TaskInput{Title: "Second", CreatedBy: "user-1"})
	if err != nil {
		t.Fatal(err)
	}

	third, err := provider.AddTask(ctx, model.TaskInput{
		Title:        "Third",
		CreatedBy:    "user-1",
		Dependencies: []string{first.Id},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(third.Dependencies) != 1 || third.Dependencies[0] != first.Id {
		t.Fatalf("dependency not persisted: %v", third.Dependencies)
	}

	updated, err := provider.UpdateTask(ctx, third.Id, model.TaskUpdate{
		Dependencies: []string{first.Id, second.Id},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(updated.Dependencies) != 2 {
		t.Fatalf("dependency set not replaced: %v", updated.Dependencies)
	}

	// Nil leaves the set alone.
	renamed, err := provider.UpdateTask(ctx, third.Id, model.TaskUpdate{Title: strPtr("Third v2")})
	if err != nil {
		t.Fatal(err)
	}
	if len(renamed.Dependencies) != 2 {
		t.Fatalf("nil dependency slice must leave edges untouched: %v", renamed.Dependencies)
	}
}

func TestTaskDeleteLeavesDanglingEdges(t *testing.T) {
	provider, st := newTestProvider(t)
	ctx := context.Background()
	seedUser(t, st, "user-1", "Creator", "creator@example.com")

	upstream, err := provider.AddTask(ctx, model.TaskInput{Title: "Upstream", CreatedBy: "user-1"})
	if err != nil {
		t.Fatal(err)
	}
	downstream, err := provider.AddTask(ctx, model.TaskInput{
		Title:        "Downstream",
		CreatedBy:    "user-1",
		Dependencies: []string{upstream.Id},
	})
	if err != nil {
		t.Fatal(err)
	}

	if !provider.DeleteTask(ctx, upstream.Id) {
		t.Fatal("delete should succeed")
	}
	if provider.DeleteTask(ctx, upstream.Id) {
		t.Fatal("second delete of the same id should report false")
	}

	// Edges owned by other tasks that point at the deleted id are kept, not
	// swept. Readers see them and skip unresolvable ids.
	fetched, err := provider.GetTask(ctx, downstream.Id)
	if err != nil {
		t.Fatal(err)
	}
	if len(fetched.Dependencies) != 1 || fetched.Dependencies[0] != upstream.Id {
		t.Fatalf("dangling edge should be preserved, got %v", fetched.Dependencies)
	}
}
