package state_test

import (
	"context"
	"slices"
	"testing"

	"flowforge/model"
)

func TestTeamRoundTrip(t *testing.T) {
	provider, st := newTestProvider(t)
	ctx := context.Background()
	seedUser(t, st, "user-1", "One", "one@example.com")
	seedUser(t, st, "user-2", "Two", "two@example.com")

	parent, err := provider.AddTeam(ctx, model.TeamInput{Name: "Engineering", Description: "Product engineering"})
	if err != nil {
		t.Fatal(err)
	}

	child, err := provider.AddTeam(ctx, model.TeamInput{
		Name:     "Platform",
		ParentId: &parent.Id,
		Members:  []string{"user-1", "user-2"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if child.ParentId == nil || *child.ParentId != parent.Id {
		t.Fatalf("parent linkage lost: %v", child.ParentId)
	}
	if len(child.Members) != 2 {
		t.Fatalf("expected 2 members, got %v", child.Members)
	}

	updated, err := provider.UpdateTeam(ctx, child.Id, model.TeamUpdate{Members: []string{"user-2"}})
	if err != nil {
		t.Fatal(err)
	}
	if len(updated.Members) != 1 || updated.Members[0] != "user-2" {
		t.Fatalf("member set not replaced: %v", updated.Members)
	}
}

func TestTeamMembershipDualWrite(t *testing.T) {
	provider, st := newTestProvider(t)
	ctx := context.Background()
	seedUser(t, st, "user-1", "One", "one@example.com")

	team, err := provider.AddTeam(ctx, model.TeamInput{Name: "Core"})
	if err != nil {
		t.Fatal(err)
	}

	if !provider.AddUserToTeam(ctx, "user-1", team.Id) {
		t.Fatal("adding user to team should succeed")
	}

	fetched, err := provider.GetTeam(ctx, team.Id)
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Contains(fetched.Members, "user-1") {
		t.Fatalf("join row missing after add: %v", fetched.Members)
	}

	user, err := provider.GetUser(ctx, "user-1")
	if err != nil {
		t.Fatal(err)
	}
	if user.TeamId == nil || *user.TeamId != team.Id {
		t.Fatalf("denormalized team id missing after add: %v", user.TeamId)
	}

	if !provider.RemoveUserFromTeam(ctx, "user-1", team.Id) {
		t.Fatal("removing user from team should succeed")
	}

	fetched, err = provider.GetTeam(ctx, team.Id)
	if err != nil {
		t.Fatal(err)
	}
	if slices.Contains(fetched.Members, "user-1") {
		t.Fatalf("join row still present after remove: %v", fetched.Members)
	}

	user, err = provider.GetUser(ctx, "user-1")
	if err != nil {
		t.Fatal(err)
	}
	if user.TeamId != nil {
		t.Fatalf("denormalized team id should be cleared, got %v", *user.TeamId)
	}
}

func TestTeamDeleteIsIdempotent(t *testing.T) {
	provider, st := newTestProvider(t)
	ctx := context.Background()
	seedUser(t, st, "user-1", "One", "one@example.com")

	team, err := provider.AddTeam(ctx, model.TeamInput{Name: "Temp", Members: []string{"user-1"}})
	if err != nil {
		t.Fatal(err)
	}

	if !provider.DeleteTeam(ctx, team.Id) {
		t.Fatal("first delete should succeed")
	}
	if provider.DeleteTeam(ctx, team.Id) {
		t.Fatal("second delete should report false")
	}
}

func TestUpdateUserApprovalRole(t *testing.T) {
	provider, st := newTestProvider(t)
	ctx := context.Background()
	seedUser(t, st, "user-1", "One", "one@example.com")

	role := model.ApprovalRoleApprover
	if !provider.UpdateUserApprovalRole(ctx, "user-1", &role) {
		t.Fatal("setting approval role should succeed")
	}

	user, err := provider.GetUser(ctx, "user-1")
	if err != nil {
		t.Fatal(err)
	}
	if user.ApprovalRole == nil || *user.ApprovalRole != model.ApprovalRoleApprover {
		t.Fatalf("approval role not set: %v", user.ApprovalRole)
	}

	if !provider.UpdateUserApprovalRole(ctx, "user-1", nil) {
		t.Fatal("clearing approval role should succeed")
	}
	user, err = provider.GetUser(ctx, "user-1")
	if err != nil {
		t.Fatal(err)
	}
	if user.ApprovalRole != nil {
		t.Fatalf("approval role should be cleared, got %v", *user.ApprovalRole)
	}
}
