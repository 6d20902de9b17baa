package state

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"flowforge/model"
	"flowforge/store"
)

// Provider owns the in-memory mirror of the remote dataset and coordinates
// every read and write against the backing store. All exported accessors
// return copies so callers never observe a mirror mid-update.
type Provider struct {
	store store.Client

	mu            sync.RWMutex
	currentUser   *model.User
	authenticated bool
	users         []model.User
	teams         []model.Team
	workflows     []model.Workflow
	forms         []model.Form
	tasks         []model.Task

	loading     atomic.Int64
	unsubscribe func()
}

func New(st store.Client) *Provider {
	return &Provider{store: st}
}

// Start subscribes to auth state changes and performs the initial load of
// every entity list. Load failures are logged per entity and never abort
// startup, so one unreachable table cannot blank the whole dashboard.
func (p *Provider) Start(ctx context.Context) {
	p.unsubscribe = p.store.Auth().OnAuthStateChange(p.handleAuthChange)

	session, err := p.store.Auth().GetSession(ctx)
	if err != nil {
		slog.Error("session restore failed", "error", err)
	} else if session != nil {
		if err := p.adoptSession(ctx, session); err != nil {
			slog.Error("session adoption failed", "error", err)
		}
	}

	p.refreshAll(ctx)
}

func (p *Provider) Close() {
	if p.unsubscribe != nil {
		p.unsubscribe()
		p.unsubscribe = nil
	}
}

func (p *Provider) refreshAll(ctx context.Context) {
	if _, err := p.LoadUsers(ctx); err != nil {
		slog.Error("initial user load failed", "error", err)
	}
	if _, err := p.LoadTeams(ctx); err != nil {
		slog.Error("initial team load failed", "error", err)
	}
	if _, err := p.LoadWorkflows(ctx); err != nil {
		slog.Error("initial workflow load failed", "error", err)
	}
	if _, err := p.LoadForms(ctx); err != nil {
		slog.Error("initial form load failed", "error", err)
	}
	if _, err := p.LoadTasks(ctx); err != nil {
		slog.Error("initial task load failed", "error", err)
	}
}

func (p *Provider) beginLoading() {
	p.loading.Add(1)
}

func (p *Provider) endLoading() {
	p.loading.Add(-1)
}

// IsLoading reports whether any load or mutation is currently in flight.
func (p *Provider) IsLoading() bool {
	return p.loading.Load() > 0
}

func (p *Provider) IsAuthenticated() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.authenticated
}

// AccessToken returns the bearer token of the active session, or the empty
// string when signed out. Callers that talk to the HTTP API directly need it
// for the Authorization header.
func (p *Provider) AccessToken(ctx context.Context) string {
	session, err := p.store.Auth().GetSession(ctx)
	if err != nil || session == nil {
		return ""
	}
	return session.AccessToken
}

func (p *Provider) CurrentUser() *model.User {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.currentUser == nil {
		return nil
	}
	user := *p.currentUser
	return &user
}

func (p *Provider) Users() []model.User {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]model.User(nil), p.users...)
}

func (p *Provider) Teams() []model.Team {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]model.Team(nil), p.teams...)
}

func (p *Provider) Workflows() []model.Workflow {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]model.Workflow(nil), p.workflows...)
}

func (p *Provider) Forms() []model.Form {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]model.Form(nil), p.forms...)
}

func (p *Provider) Tasks() []model.Task {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]model.Task(nil), p.tasks...)
}
