package state

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"flowforge/model"
	"flowforge/schema"
	"flowforge/store"
)

func (p *Provider) loadTeamMembers(ctx context.Context, teamId string) []string {
	rows, err := p.store.Select(ctx, store.Query{
		Table:   schema.TableTeamMembers,
		Filters: []store.Filter{store.Eq("team_id", teamId)},
	})
	if err != nil {
		slog.Error("team member load failed", "team_id", teamId, "error", err)
	}
	members := make([]string, 0, len(rows))
	for _, row := range rows {
		members = append(members, rowString(row, "user_id"))
	}
	return members
}

// LoadTeams fetches every team with its member ids and replaces the
// in-memory mirror.
func (p *Provider) LoadTeams(ctx context.Context) ([]model.Team, error) {
	p.beginLoading()
	defer p.endLoading()

	rows, err := p.store.Select(ctx, store.Query{Table: schema.TableTeams, OrderBy: "created_at"})
	if err != nil {
		slog.Error("team load failed", "error", err)
		return nil, err
	}

	teams := make([]model.Team, len(rows))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(8)
	for i, row := range rows {
		i, row := i, row
		group.Go(func() error {
			teams[i] = teamFromRow(row, p.loadTeamMembers(groupCtx, rowString(row, "id")))
			return nil
		})
	}
	group.Wait()

	p.mu.Lock()
	p.teams = teams
	p.mu.Unlock()
	return append([]model.Team(nil), teams...), nil
}

func (p *Provider) GetTeam(ctx context.Context, id string) (*model.Team, error) {
	row, err := p.store.SelectOne(ctx, store.Query{
		Table:   schema.TableTeams,
		Filters: []store.Filter{store.Eq("id", id)},
	})
	if err != nil {
		slog.Error("team fetch failed", "team_id", id, "error", err)
		return nil, err
	}
	if row == nil {
		return nil, nil
	}
	team := teamFromRow(row, p.loadTeamMembers(ctx, id))
	return &team, nil
}

func (p *Provider) AddTeam(ctx context.Context, input model.TeamInput) (*model.Team, error) {
	p.beginLoading()
	defer p.endLoading()

	parent := store.Row{
		"name":        input.Name,
		"description": input.Description,
	}
	if input.ParentId != nil {
		parent["parent_id"] = *input.ParentId
	}
	inserted, err := p.store.Insert(ctx, schema.TableTeams, []store.Row{parent})
	if err != nil {
		slog.Error("team insert failed", "error", err)
		return nil, err
	}
	id := rowString(inserted[0], "id")

	p.insertTeamMembers(ctx, id, input.Members)

	team, err := p.GetTeam(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := p.LoadTeams(ctx); err != nil {
		slog.Error("team refresh failed", "error", err)
	}
	return team, nil
}

func (p *Provider) UpdateTeam(ctx context.Context, id string, update model.TeamUpdate) (*model.Team, error) {
	p.beginLoading()
	defer p.endLoading()

	existing, err := p.store.SelectOne(ctx, store.Query{
		Table:   schema.TableTeams,
		Filters: []store.Filter{store.Eq("id", id)},
	})
	if err != nil {
		slog.Error("team fetch failed", "team_id", id, "error", err)
		return nil, err
	}
	if existing == nil {
		return nil, nil
	}

	changes := store.Row{"updated_at": store.FormatTime(time.Now())}
	ptrColumn(changes, "name", update.Name)
	ptrColumn(changes, "description", update.Description)
	ptrColumn(changes, "parent_id", update.ParentId)
	if err := p.store.Update(ctx, schema.TableTeams, changes, store.Eq("id", id)); err != nil {
		slog.Error("team update failed", "team_id", id, "error", err)
		return nil, err
	}

	if update.Members != nil {
		if err := p.store.Delete(ctx, schema.TableTeamMembers, store.Eq("team_id", id)); err != nil {
			slog.Error("team member clear failed", "team_id", id, "error", err)
		}
		p.insertTeamMembers(ctx, id, update.Members)
	}

	team, err := p.GetTeam(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := p.LoadTeams(ctx); err != nil {
		slog.Error("team refresh failed", "error", err)
	}
	return team, nil
}

func (p *Provider) DeleteTeam(ctx context.Context, id string) bool {
	p.beginLoading()
	defer p.endLoading()

	existing, err := p.store.SelectOne(ctx, store.Query{
		Table:   schema.TableTeams,
		Filters: []store.Filter{store.Eq("id", id)},
	})
	if err != nil || existing == nil {
		if err != nil {
			slog.Error("team fetch failed", "team_id", id, "error", err)
		}
		return false
	}

	if err := p.store.Delete(ctx, schema.TableTeamMembers, store.Eq("team_id", id)); err != nil {
		slog.Error("team member delete failed", "team_id", id, "error", err)
	}
	if err := p.store.Delete(ctx, schema.TableTeams, store.Eq("id", id)); err != nil {
		slog.Error("team delete failed", "team_id", id, "error", err)
		return false
	}

	if _, err := p.LoadTeams(ctx); err != nil {
		slog.Error("team refresh failed", "error", err)
	}
	return true
}

// AddUserToTeam performs the membership dual write: a join row in
// team_members plus the denormalized team_id on the user row. Both writes
// must succeed for the operation to report success.
func (p *Provider) AddUserToTeam(ctx context.Context, userId, teamId string) bool {
	p.beginLoading()
	defer p.endLoading()

	ok := true
	if _, err := p.store.Insert(ctx, schema.TableTeamMembers, []store.Row{memberRow(teamId, userId)}); err != nil {
		slog.Error("team member insert failed", "team_id", teamId, "user_id", userId, "error", err)
		ok = false
	}
	changes := store.Row{"team_id": teamId, "updated_at": store.FormatTime(time.Now())}
	if err := p.store.Update(ctx, schema.TableUsers, changes, store.Eq("id", userId)); err != nil {
		slog.Error("user team assignment failed", "user_id", userId, "error", err)
		ok = false
	}

	if _, err := p.LoadTeams(ctx); err != nil {
		slog.Error("team refresh failed", "error", err)
	}
	if _, err := p.LoadUsers(ctx); err != nil {
		slog.Error("user refresh failed", "error", err)
	}
	return ok
}

// RemoveUserFromTeam reverses both halves of the membership dual write.
func (p *Provider) RemoveUserFromTeam(ctx context.Context, userId, teamId string) bool {
	p.beginLoading()
	defer p.endLoading()

	ok := true
	if err := p.store.Delete(ctx, schema.TableTeamMembers, store.Eq("team_id", teamId), store.Eq("user_id", userId)); err != nil {
		slog.Error("team member delete failed", "team_id", teamId, "user_id", userId, "error", err)
		ok = false
	}
	changes := store.Row{"team_id": nil, "updated_at": store.FormatTime(time.Now())}
	if err := p.store.Update(ctx, schema.TableUsers, changes, store.Eq("id", userId)); err != nil {
		slog.Error("user team clear failed", "user_id", userId, "error", err)
		ok = false
	}

	if _, err := p.LoadTeams(ctx); err != nil {
		slog.Error("team refresh failed", "error", err)
	}
	if _, err := p.LoadUsers(ctx); err != nil {
		slog.Error("user refresh failed", "error", err)
	}
	return ok
}

func (p *Provider) insertTeamMembers(ctx context.Context, teamId string, members []string) {
	if len(members) == 0 {
		return
	}
	rows := make([]store.Row, 0, len(members))
	for _, userId := range members {
		rows = append(rows, memberRow(teamId, userId))
	}
	if _, err := p.store.Insert(ctx, schema.TableTeamMembers, rows); err != nil {
		slog.Error("team member insert failed", "team_id", teamId, "error", err)
	}
}
