package state

import (
	"context"
	"log/slog"
	"time"

	"flowforge/model"
	"flowforge/schema"
	"flowforge/store"
)

// LoadUsers fetches every user row and replaces the in-memory mirror.
func (p *Provider) LoadUsers(ctx context.Context) ([]model.User, error) {
	p.beginLoading()
	defer p.endLoading()

	rows, err := p.store.Select(ctx, store.Query{Table: schema.TableUsers, OrderBy: "created_at"})
	if err != nil {
		slog.Error("user load failed", "error", err)
		return nil, err
	}

	users := make([]model.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, userFromRow(row))
	}

	p.mu.Lock()
	p.users = users
	p.mu.Unlock()
	return append([]model.User(nil), users...), nil
}

func (p *Provider) GetUser(ctx context.Context, id string) (*model.User, error) {
	row, err := p.store.SelectOne(ctx, store.Query{
		Table:   schema.TableUsers,
		Filters: []store.Filter{store.Eq("id", id)},
	})
	if err != nil {
		slog.Error("user fetch failed", "user_id", id, "error", err)
		return nil, err
	}
	if row == nil {
		return nil, nil
	}
	user := userFromRow(row)
	return &user, nil
}

// UpdateUserApprovalRole sets or clears the per-user approval role used by
// approval steps. A nil role clears it.
func (p *Provider) UpdateUserApprovalRole(ctx context.Context, userId string, role *model.ApprovalRole) bool {
	p.beginLoading()
	defer p.endLoading()

	changes := store.Row{"updated_at": store.FormatTime(time.Now())}
	if role != nil {
		changes["approval_role"] = string(*role)
	} else {
		changes["approval_role"] = nil
	}
	if err := p.store.Update(ctx, schema.TableUsers, changes, store.Eq("id", userId)); err != nil {
		slog.Error("user approval role update failed", "user_id", userId, "error", err)
		return false
	}

	if _, err := p.LoadUsers(ctx); err != nil {
		slog.Error("user refresh failed", "error", err)
	}
	return true
}
