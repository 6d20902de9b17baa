package state_test

import (
	"context"
	"testing"

	"flowforge/model"
)

func TestFormRoundTrip(t *testing.T) {
	provider, st := newTestProvider(t)
	ctx := context.Background()
	seedUser(t, st, "user-1", "Creator", "creator@example.com")

	created, err := provider.AddForm(ctx, model.FormInput{
		Name:        "HR Intake",
		Description: "New hire basics",
		CreatedBy:   "user-1",
		Fields: []model.FormField{
			{Name: "full_name", Label: "Full Name", Type: "text", Required: true},
			{Name: "start_date", Label: "Start Date", Type: "date", Required: true},
			{Name: "shirt_size", Label: "Shirt Size", Type: "select", Options: []string{"S", "M", "L"}},
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	if len(created.Fields) != 3 {
		t.Fatalf("expected 3 fields, got %d", len(created.Fields))
	}
	for i, want := range []string{"full_name", "start_date", "shirt_size"} {
		field := created.Fields[i]
		if field.Name != want {
			t.Fatalf("field order lost: expected %v at %d, got %v", want, i, field.Name)
		}
		if field.Order != i+1 {
			t.Fatalf("order column should be sequential, got %d at %d", field.Order, i)
		}
	}
	if len(created.Fields[2].Options) != 3 || created.Fields[2].Options[0] != "S" {
		t.Fatalf("field options lost: %v", created.Fields[2].Options)
	}
}

func TestFormFieldReplacement(t *testing.T) {
	provider, st := newTestProvider(t)
	ctx := context.Background()
	seedUser(t, st, "user-1", "Creator", "creator@example.com")

	created, err := provider.AddForm(ctx, model.FormInput{
		Name:      "Survey",
		CreatedBy: "user-1",
		Fields: []model.FormField{
			{Name: "q1", Label: "Q1", Type: "text"},
			{Name: "q2", Label: "Q2", Type: "text"},
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	// Scalar-only update: fields stay as they are.
	renamed, err := provider.UpdateForm(ctx, created.Id, model.FormUpdate{Name: strPtr("Survey v2")})
	if err != nil {
		t.Fatal(err)
	}
	if renamed.Name != "Survey v2" {
		t.Fatalf("name not updated: %v", renamed.Name)
	}
	if len(renamed.Fields) != 2 {
		t.Fatalf("nil field slice must leave fields untouched, got %d", len(renamed.Fields))
	}

	// Non-nil slice replaces the whole set.
	replaced, err := provider.UpdateForm(ctx, created.Id, model.FormUpdate{
		Fields: []model.FormField{
			{Name: "q3", Label: "Q3", Type: "number"},
			{Name: "q4", Label: "Q4", Type: "text"},
			{Name: "q5", Label: "Q5", Type: "text"},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(replaced.Fields) != 3 || replaced.Fields[0].Name != "q3" {
		t.Fatalf("field set not replaced: %v", replaced.Fields)
	}
	for i, field := range replaced.Fields {
		if field.Order != i+1 {
			t.Fatalf("replacement fields should be renumbered, got %d at %d", field.Order, i)
		}
	}

	// Empty non-nil slice clears every field.
	cleared, err := provider.UpdateForm(ctx, created.Id, model.FormUpdate{Fields: []model.FormField{}})
	if err != nil {
		t.Fatal(err)
	}
	if len(cleared.Fields) != 0 {
		t.Fatalf("empty non-nil field slice must clear fields, got %v", cleared.Fields)
	}
}

func TestFormDeleteIsIdempotent(t *testing.T) {
	provider, st := newTestProvider(t)
	ctx := context.Background()
	seedUser(t, st, "user-1", "Creator", "creator@example.com")

	created, err := provider.AddForm(ctx, model.FormInput{
		Name:      "Short-lived",
		CreatedBy: "user-1",
		Fields:    []model.FormField{{Name: "f", Label: "F", Type: "text"}},
	})
	if err != nil {
		t.Fatal(err)
	}

	if !provider.DeleteForm(ctx, created.Id) {
		t.Fatal("first delete should succeed")
	}
	if provider.DeleteForm(ctx, created.Id) {
		t.Fatal("second delete should report false")
	}
}
