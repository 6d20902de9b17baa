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

func (p *Provider) loadTaskDependencies(ctx context.Context, taskId string) []string {
	rows, err := p.store.Select(ctx, store.Query{
		Table:   schema.TableTaskDependencies,
		Filters: []store.Filter{store.Eq("task_id", taskId)},
	})
	if err != nil {
		slog.Error("task dependency load failed", "task_id", taskId, "error", err)
	}
	dependencies := make([]string, 0, len(rows))
	for _, row := range rows {
		dependencies = append(dependencies, rowString(row, "depends_on_task_id"))
	}
	return dependencies
}

// LoadTasks fetches every task with its dependency ids and replaces the
// in-memory mirror.
func (p *Provider) LoadTasks(ctx context.Context) ([]model.Task, error) {
	p.beginLoading()
	defer p.endLoading()

	rows, err := p.store.Select(ctx, store.Query{Table: schema.TableTasks, OrderBy: "created_at"})
	if err != nil {
		slog.Error("task load failed", "error", err)
		return nil, err
	}

	tasks := make([]model.Task, len(rows))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(8)
	for i, row := range rows {
		i, row := i, row
		group.Go(func() error {
			tasks[i] = taskFromRow(row, p.loadTaskDependencies(groupCtx, rowString(row, "id")))
			return nil
		})
	}
	group.Wait()

	p.mu.Lock()
	p.tasks = tasks
	p.mu.Unlock()
	return append([]model.Task(nil), tasks...), nil
}

func (p *Provider) GetTask(ctx context.Context, id string) (*model.Task, error) {
	row, err := p.store.SelectOne(ctx, store.Query{
		Table:   schema.TableTasks,
		Filters: []store.Filter{store.Eq("id", id)},
	})
	if err != nil {
		slog.Error("task fetch failed", "task_id", id, "error", err)
		return nil, err
	}
	if row == nil {
		return nil, nil
	}
	task := taskFromRow(row, p.loadTaskDependencies(ctx, id))
	return &task, nil
}

func (p *Provider) AddTask(ctx context.Context, input model.TaskInput) (*model.Task, error) {
	p.beginLoading()
	defer p.endLoading()

	status := input.Status
	if status == "" {
		status = model.TaskTodo
	}
	priority := input.Priority
	if priority == "" {
		priority = model.PriorityMedium
	}
	parent := store.Row{
		"title":       input.Title,
		"description": input.Description,
		"status":      string(status),
		"priority":    string(priority),
		"created_by":  input.CreatedBy,
	}
	if input.DueDate != nil {
		parent["due_date"] = store.FormatTime(*input.DueDate)
	}
	if input.AssignedTo != nil {
		parent["assigned_to"] = *input.AssignedTo
	}
	if input.WorkflowId != nil {
		parent["workflow_id"] = *input.WorkflowId
	}

	inserted, err := p.store.Insert(ctx, schema.TableTasks, []store.Row{parent})
	if err != nil {
		slog.Error("task insert failed", "error", err)
		return nil, err
	}
	id := rowString(inserted[0], "id")

	p.insertTaskDependencies(ctx, id, input.Dependencies)

	task, err := p.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := p.LoadTasks(ctx); err != nil {
		slog.Error("task refresh failed", "error", err)
	}
	return task, nil
}

func (p *Provider) UpdateTask(ctx context.Context, id string, update model.TaskUpdate) (*model.Task, error) {
	p.beginLoading()
	defer p.endLoading()

	existing, err := p.store.SelectOne(ctx, store.Query{
		Table:   schema.TableTasks,
		Filters: []store.Filter{store.Eq("id", id)},
	})
	if err != nil {
		slog.Error("task fetch failed", "task_id", id, "error", err)
		return nil, err
	}
	if existing == nil {
		return nil, nil
	}

	changes := store.Row{"updated_at": store.FormatTime(time.Now())}
	ptrColumn(changes, "title", update.Title)
	ptrColumn(changes, "description", update.Description)
	ptrColumn(changes, "assigned_to", update.AssignedTo)
	ptrColumn(changes, "workflow_id", update.WorkflowId)
	if update.Status != nil {
		changes["status"] = string(*update.Status)
	}
	if update.Priority != nil {
		changes["priority"] = string(*update.Priority)
	}
	if update.DueDate != nil {
		changes["due_date"] = store.FormatTime(*update.DueDate)
	}
	if err := p.store.Update(ctx, schema.TableTasks, changes, store.Eq("id", id)); err != nil {
		slog.Error("task update failed", "task_id", id, "error", err)
		return nil, err
	}

	if update.Dependencies != nil {
		if err := p.store.Delete(ctx, schema.TableTaskDependencies, store.Eq("task_id", id)); err != nil {
			slog.Error("task dependency clear failed", "task_id", id, "error", err)
		}
		p.insertTaskDependencies(ctx, id, update.Dependencies)
	}

	task, err := p.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := p.LoadTasks(ctx); err != nil {
		slog.Error("task refresh failed", "error", err)
	}
	return task, nil
}

// DeleteTask removes the task and the dependency rows it owns. Edges in
// other tasks that point at the deleted id are left in place and skipped
// by readers.
func (p *Provider) DeleteTask(ctx context.Context, id string) bool {
	p.beginLoading()
	defer p.endLoading()

	existing, err := p.store.SelectOne(ctx, store.Query{
		Table:   schema.TableTasks,
		Filters: []store.Filter{store.Eq("id", id)},
	})
	if err != nil || existing == nil {
		if err != nil {
			slog.Error("task fetch failed", "task_id", id, "error", err)
		}
		return false
	}

	if err := p.store.Delete(ctx, schema.TableTaskDependencies, store.Eq("task_id", id)); err != nil {
		slog.Error("task dependency delete failed", "task_id", id, "error", err)
	}
	if err := p.store.Delete(ctx, schema.TableTasks, store.Eq("id", id)); err != nil {
		slog.Error("task delete failed", "task_id", id, "error", err)
		return false
	}

	if _, err := p.LoadTasks(ctx); err != nil {
		slog.Error("task refresh failed", "error", err)
	}
	return true
}

func (p *Provider) insertTaskDependencies(ctx context.Context, taskId string, dependencies []string) {
	if len(dependencies) == 0 {
		return
	}
	rows := make([]store.Row, 0, len(dependencies))
	for _, dependsOn := range dependencies {
		rows = append(rows, dependencyRow(taskId, dependsOn))
	}
	if _, err := p.store.Insert(ctx, schema.TableTaskDependencies, rows); err != nil {
		slog.Error("task dependency insert failed", "task_id", taskId, "error", err)
	}
}
