package state

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"flowforge/model"
	"flowforge/schema"
	"flowforge/store"
)

// loadWorkflowChildren fetches the steps and connections for one workflow.
// Child fetch failures are logged and yield empty slices so a single broken
// branch cannot fail the surrounding aggregate load.
func (p *Provider) loadWorkflowChildren(ctx context.Context, workflowId string) ([]model.WorkflowStep, []model.Connection) {
	stepRows, err := p.store.Select(ctx, store.Query{
		Table:   schema.TableWorkflowSteps,
		Filters: []store.Filter{store.Eq("workflow_id", workflowId)},
		OrderBy: "created_at",
	})
	if err != nil {
		slog.Error("workflow step load failed", "workflow_id", workflowId, "error", err)
	}
	steps := make([]model.WorkflowStep, 0, len(stepRows))
	for _, row := range stepRows {
		steps = append(steps, stepFromRow(row))
	}

	connRows, err := p.store.Select(ctx, store.Query{
		Table:   schema.TableConnections,
		Filters: []store.Filter{store.Eq("workflow_id", workflowId)},
		OrderBy: "created_at",
	})
	if err != nil {
		slog.Error("workflow connection load failed", "workflow_id", workflowId, "error", err)
	}
	connections := make([]model.Connection, 0, len(connRows))
	for _, row := range connRows {
		connections = append(connections, connectionFromRow(row))
	}

	return steps, connections
}

// LoadWorkflows fetches every workflow with its steps and connections and
// replaces the in-memory mirror. Child fetches run concurrently per parent.
func (p *Provider) LoadWorkflows(ctx context.Context) ([]model.Workflow, error) {
	p.beginLoading()
	defer p.endLoading()

	rows, err := p.store.Select(ctx, store.Query{Table: schema.TableWorkflows, OrderBy: "created_at"})
	if err != nil {
		slog.Error("workflow load failed", "error", err)
		return nil, err
	}

	workflows := make([]model.Workflow, len(rows))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(8)
	for i, row := range rows {
		i, row := i, row
		group.Go(func() error {
			steps, connections := p.loadWorkflowChildren(groupCtx, rowString(row, "id"))
			workflows[i] = workflowFromRow(row, steps, connections)
			return nil
		})
	}
	group.Wait()

	p.mu.Lock()
	p.workflows = workflows
	p.mu.Unlock()
	return append([]model.Workflow(nil), workflows...), nil
}

// GetWorkflow returns one workflow aggregate, or nil when no row matches.
func (p *Provider) GetWorkflow(ctx context.Context, id string) (*model.Workflow, error) {
	row, err := p.store.SelectOne(ctx, store.Query{
		Table:   schema.TableWorkflows,
		Filters: []store.Filter{store.Eq("id", id)},
	})
	if err != nil {
		slog.Error("workflow fetch failed", "workflow_id", id, "error", err)
		return nil, err
	}
	if row == nil {
		return nil, nil
	}
	steps, connections := p.loadWorkflowChildren(ctx, id)
	workflow := workflowFromRow(row, steps, connections)
	return &workflow, nil
}

// AddWorkflow inserts the parent row and then its steps and connections.
// A parent insert failure aborts the operation; child insert failures are
// logged and leave the workflow partially populated.
func (p *Provider) AddWorkflow(ctx context.Context, input model.WorkflowInput) (*model.Workflow, error) {
	p.beginLoading()
	defer p.endLoading()

	status := input.Status
	if status == "" {
		status = model.WorkflowDraft
	}
	parent := store.Row{
		"name":        input.Name,
		"description": input.Description,
		"status":      string(status),
		"created_by":  input.CreatedBy,
	}
	inserted, err := p.store.Insert(ctx, schema.TableWorkflows, []store.Row{parent})
	if err != nil {
		slog.Error("workflow insert failed", "error", err)
		return nil, err
	}
	id := rowString(inserted[0], "id")

	p.insertWorkflowChildren(ctx, id, input.Steps, input.Connections)

	workflow, err := p.GetWorkflow(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := p.LoadWorkflows(ctx); err != nil {
		slog.Error("workflow refresh failed", "error", err)
	}
	return workflow, nil
}

// UpdateWorkflow applies the given changes. Nil scalar fields are left
// untouched. A nil child slice leaves that child set untouched, a non-nil
// slice replaces the full set, and an empty non-nil slice clears it.
func (p *Provider) UpdateWorkflow(ctx context.Context, id string, update model.WorkflowUpdate) (*model.Workflow, error) {
	p.beginLoading()
	defer p.endLoading()

	existing, err := p.store.SelectOne(ctx, store.Query{
		Table:   schema.TableWorkflows,
		Filters: []store.Filter{store.Eq("id", id)},
	})
	if err != nil {
		slog.Error("workflow fetch failed", "workflow_id", id, "error", err)
		return nil, err
	}
	if existing == nil {
		return nil, nil
	}

	changes := store.Row{"updated_at": store.FormatTime(time.Now())}
	ptrColumn(changes, "name", update.Name)
	ptrColumn(changes, "description", update.Description)
	if update.Status != nil {
		current := model.WorkflowStatus(rowString(existing, "status"))
		if !validStatusChange(current, *update.Status) {
			return nil, fmt.Errorf("%w: %v to %v", ErrInvalidStatusChange, current, *update.Status)
		}
		changes["status"] = string(*update.Status)
	}
	if err := p.store.Update(ctx, schema.TableWorkflows, changes, store.Eq("id", id)); err != nil {
		slog.Error("workflow update failed", "workflow_id", id, "error", err)
		return nil, err
	}

	if update.Steps != nil {
		if err := p.store.Delete(ctx, schema.TableWorkflowSteps, store.Eq("workflow_id", id)); err != nil {
			slog.Error("workflow step clear failed", "workflow_id", id, "error", err)
		}
	}
	if update.Connections != nil {
		if err := p.store.Delete(ctx, schema.TableConnections, store.Eq("workflow_id", id)); err != nil {
			slog.Error("workflow connection clear failed", "workflow_id", id, "error", err)
		}
	}
	p.insertWorkflowChildren(ctx, id, update.Steps, update.Connections)

	workflow, err := p.GetWorkflow(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := p.LoadWorkflows(ctx); err != nil {
		slog.Error("workflow refresh failed", "error", err)
	}
	return workflow, nil
}

// DeleteWorkflow removes the workflow and its owned children. It reports
// false when the workflow does not exist or the parent delete fails, which
// makes repeated deletes of the same id safe.
func (p *Provider) DeleteWorkflow(ctx context.Context, id string) bool {
	p.beginLoading()
	defer p.endLoading()

	existing, err := p.store.SelectOne(ctx, store.Query{
		Table:   schema.TableWorkflows,
		Filters: []store.Filter{store.Eq("id", id)},
	})
	if err != nil || existing == nil {
		if err != nil {
			slog.Error("workflow fetch failed", "workflow_id", id, "error", err)
		}
		return false
	}

	if err := p.store.Delete(ctx, schema.TableWorkflowSteps, store.Eq("workflow_id", id)); err != nil {
		slog.Error("workflow step delete failed", "workflow_id", id, "error", err)
	}
	if err := p.store.Delete(ctx, schema.TableConnections, store.Eq("workflow_id", id)); err != nil {
		slog.Error("workflow connection delete failed", "workflow_id", id, "error", err)
	}
	if err := p.store.Delete(ctx, schema.TableWorkflows, store.Eq("id", id)); err != nil {
		slog.Error("workflow delete failed", "workflow_id", id, "error", err)
		return false
	}

	if _, err := p.LoadWorkflows(ctx); err != nil {
		slog.Error("workflow refresh failed", "error", err)
	}
	return true
}

var ErrInvalidStatusChange = errors.New("invalid workflow status change")

// validStatusChange enforces the workflow lifecycle: draft and active move
// freely between each other and into archived, archived is terminal.
func validStatusChange(from, to model.WorkflowStatus) bool {
	if from == to {
		return true
	}
	return from != model.WorkflowArchived
}

func (p *Provider) insertWorkflowChildren(ctx context.Context, workflowId string, steps []model.WorkflowStep, connections []model.Connection) {
	if len(steps) > 0 {
		rows := make([]store.Row, 0, len(steps))
		for _, step := range steps {
			rows = append(rows, stepRow(workflowId, step))
		}
		if _, err := p.store.Insert(ctx, schema.TableWorkflowSteps, rows); err != nil {
			slog.Error("workflow step insert failed", "workflow_id", workflowId, "error", err)
		}
	}
	if len(connections) > 0 {
		rows := make([]store.Row, 0, len(connections))
		for _, conn := range connections {
			rows = append(rows, connectionRow(workflowId, conn))
		}
		if _, err := p.store.Insert(ctx, schema.TableConnections, rows); err != nil {
			slog.Error("workflow connection insert failed", "workflow_id", workflowId, "error", err)
		}
	}
}
