package state

import (
	"context"
	"log/slog"
	"strings"

	"flowforge/model"
	"flowforge/schema"
	"flowforge/store"
)

func (p *Provider) handleAuthChange(event store.AuthEvent, session *store.Session) {
	switch event {
	case store.SignedIn:
		if session == nil {
			return
		}
		if err := p.adoptSession(context.Background(), session); err != nil {
			slog.Error("sign-in session adoption failed", "error", err)
		}
	case store.SignedOut:
		p.mu.Lock()
		p.currentUser = nil
		p.authenticated = false
		p.mu.Unlock()
	}
}

// adoptSession resolves the session to an application user by email,
// provisioning a row for first-time sign-ins.
func (p *Provider) adoptSession(ctx context.Context, session *store.Session) error {
	row, err := p.store.SelectOne(ctx, store.Query{
		Table:   schema.TableUsers,
		Filters: []store.Filter{store.Eq("email", session.Email)},
	})
	if err != nil {
		slog.Error("user lookup failed", "email", session.Email, "error", err)
		return err
	}

	var user model.User
	if row == nil {
		name := session.Name
		if name == "" {
			name, _, _ = strings.Cut(session.Email, "@")
		}
		newRow := store.Row{
			"name":  name,
			"email": session.Email,
			"role":  string(model.RoleUser),
		}
		if session.Subject != "" {
			newRow["id"] = session.Subject
		}
		inserted, err := p.store.Insert(ctx, schema.TableUsers, []store.Row{newRow})
		if err != nil {
			slog.Error("user provisioning failed", "email", session.Email, "error", err)
			return err
		}
		user = userFromRow(inserted[0])
	} else {
		user = userFromRow(row)
	}

	p.mu.Lock()
	p.currentUser = &user
	p.authenticated = true
	p.mu.Unlock()

	if _, err := p.LoadUsers(ctx); err != nil {
		slog.Error("user refresh after sign-in failed", "error", err)
	}
	return nil
}

// Signup registers a new credential with the store's auth client and adopts
// the resulting session.
func (p *Provider) Signup(ctx context.Context, email, password, name string) bool {
	session, err := p.store.Auth().SignUp(ctx, email, password, name)
	if err != nil {
		slog.Error("signup failed", "email", email, "error", err)
		return false
	}
	if err := p.adoptSession(ctx, session); err != nil {
		return false
	}
	return true
}

// Login authenticates against the store and adopts the resulting session.
// It reports success rather than returning the underlying error so callers
// can treat any failure as invalid credentials.
func (p *Provider) Login(ctx context.Context, email, password string) bool {
	session, err := p.store.Auth().SignInWithPassword(ctx, email, password)
	if err != nil {
		slog.Error("login failed", "email", email, "error", err)
		return false
	}
	if err := p.adoptSession(ctx, session); err != nil {
		return false
	}
	return true
}

func (p *Provider) Logout(ctx context.Context) {
	if err := p.store.Auth().SignOut(ctx); err != nil {
		slog.Error("logout failed", "error", err)
	}
	p.mu.Lock()
	p.currentUser = nil
	p.authenticated = false
	p.mu.Unlock()
}
