package state_test

import (
	"context"
	"testing"

	"flowforge/state"
	"flowforge/store"
)

func TestSignupProvisionsUser(t *testing.T) {
	provider, _ := newTestProvider(t)
	ctx := context.Background()

	if !provider.Signup(ctx, "new@example.com", "password123", "New Person") {
		t.Fatal("signup should succeed")
	}
	if !provider.IsAuthenticated() {
		t.Fatal("signup should leave the provider authenticated")
	}

	current := provider.CurrentUser()
	if current == nil {
		t.Fatal("expected a current user after signup")
	}
	if current.Email != "new@example.com" || current.Name != "New Person" {
		t.Fatalf("unexpected current user: %+v", current)
	}

	users, err := provider.LoadUsers(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(users) != 1 {
		t.Fatalf("expected 1 provisioned user row, got %d", len(users))
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	provider, _ := newTestProvider(t)
	ctx := context.Background()

	if !provider.Signup(ctx, "person@example.com", "password123", "Person") {
		t.Fatal("signup should succeed")
	}
	provider.Logout(ctx)
	if provider.IsAuthenticated() {
		t.Fatal("logout should clear authentication")
	}
	if provider.CurrentUser() != nil {
		t.Fatal("logout should clear the current user")
	}

	if provider.Login(ctx, "person@example.com", "wrong") {
		t.Fatal("login with a wrong password should fail")
	}
	if provider.IsAuthenticated() {
		t.Fatal("failed login should not authenticate")
	}
}

func TestLoginAdoptsExistingUser(t *testing.T) {
	provider, _ := newTestProvider(t)
	ctx := context.Background()

	if !provider.Signup(ctx, "person@example.com", "password123", "Person") {
		t.Fatal("signup should succeed")
	}
	first := provider.CurrentUser()
	provider.Logout(ctx)

	if !provider.Login(ctx, "person@example.com", "password123") {
		t.Fatal("login should succeed")
	}
	second := provider.CurrentUser()
	if second == nil || second.Id != first.Id {
		t.Fatalf("login should adopt the existing user row, got %+v", second)
	}

	users, err := provider.LoadUsers(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(users) != 1 {
		t.Fatalf("re-login should not provision a duplicate row, got %d users", len(users))
	}
}

func TestStartOnMockStoreAdoptsFixtureSession(t *testing.T) {
	provider := state.New(store.NewMockStore())
	defer provider.Close()

	provider.Start(context.Background())

	if !provider.IsAuthenticated() {
		t.Fatal("the mock store always carries a session")
	}
	current := provider.CurrentUser()
	if current == nil || current.Id != "user-admin" {
		t.Fatalf("expected the fixture admin to be adopted, got %+v", current)
	}

	if got := len(provider.Users()); got != 3 {
		t.Fatalf("expected 3 fixture users, got %d", got)
	}
	if got := len(provider.Teams()); got != 2 {
		t.Fatalf("expected 2 fixture teams, got %d", got)
	}
	if got := len(provider.Workflows()); got != 2 {
		t.Fatalf("expected 2 fixture workflows, got %d", got)
	}
	if got := len(provider.Forms()); got != 1 {
		t.Fatalf("expected 1 fixture form, got %d", got)
	}
	if got := len(provider.Tasks()); got != 3 {
		t.Fatalf("expected 3 fixture tasks, got %d", got)
	}
}
