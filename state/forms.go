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

func (p *Provider) loadFormFields(ctx context.Context, formId string) []model.FormField {
	rows, err := p.store.Select(ctx, store.Query{
		Table:   schema.TableFormFields,
		Filters: []store.Filter{store.Eq("form_id", formId)},
		OrderBy: "order",
	})
	if err != nil {
		slog.Error("form field load failed", "form_id", formId, "error", err)
	}
	fields := make([]model.FormField, 0, len(rows))
	for _, row := range rows {
		fields = append(fields, fieldFromRow(row))
	}
	return fields
}

// LoadForms fetches every form with its fields, ordered by the field order
// column, and replaces the in-memory mirror.
func (p *Provider) LoadForms(ctx context.Context) ([]model.Form, error) {
	p.beginLoading()
	defer p.endLoading()

	rows, err := p.store.Select(ctx, store.Query{Table: schema.TableForms, OrderBy: "created_at"})
	if err != nil {
		slog.Error("form load failed", "error", err)
		return nil, err
	}

	forms := make([]model.Form, len(rows))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(8)
	for i, row := range rows {
		i, row := i, row
		group.Go(func() error {
			forms[i] = formFromRow(row, p.loadFormFields(groupCtx, rowString(row, "id")))
			return nil
		})
	}
	group.Wait()

	p.mu.Lock()
	p.forms = forms
	p.mu.Unlock()
	return append([]model.Form(nil), forms...), nil
}

func (p *Provider) GetForm(ctx context.Context, id string) (*model.Form, error) {
	row, err := p.store.SelectOne(ctx, store.Query{
		Table:   schema.TableForms,
		Filters: []store.Filter{store.Eq("id", id)},
	})
	if err != nil {
		slog.Error("form fetch failed", "form_id", id, "error", err)
		return nil, err
	}
	if row == nil {
		return nil, nil
	}
	form := formFromRow(row, p.loadFormFields(ctx, id))
	return &form, nil
}

// AddForm inserts the form and then its fields with sequential order values
// reflecting the caller's ordering.
func (p *Provider) AddForm(ctx context.Context, input model.FormInput) (*model.Form, error) {
	p.beginLoading()
	defer p.endLoading()

	parent := store.Row{
		"name":        input.Name,
		"description": input.Description,
		"created_by":  input.CreatedBy,
	}
	inserted, err := p.store.Insert(ctx, schema.TableForms, []store.Row{parent})
	if err != nil {
		slog.Error("form insert failed", "error", err)
		return nil, err
	}
	id := rowString(inserted[0], "id")

	p.insertFormFields(ctx, id, input.Fields)

	form, err := p.GetForm(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := p.LoadForms(ctx); err != nil {
		slog.Error("form refresh failed", "error", err)
	}
	return form, nil
}

// UpdateForm applies partial changes. A non-nil Fields slice replaces the
// full field set; nil leaves the existing fields untouched.
func (p *Provider) UpdateForm(ctx context.Context, id string, update model.FormUpdate) (*model.Form, error) {
	p.beginLoading()
	defer p.endLoading()

	existing, err := p.store.SelectOne(ctx, store.Query{
		Table:   schema.TableForms,
		Filters: []store.Filter{store.Eq("id", id)},
	})
	if err != nil {
		slog.Error("form fetch failed", "form_id", id, "error", err)
		return nil, err
	}
	if existing == nil {
		return nil, nil
	}

	changes := store.Row{"updated_at": store.FormatTime(time.Now())}
	ptrColumn(changes, "name", update.Name)
	ptrColumn(changes, "description", update.Description)
	if err := p.store.Update(ctx, schema.TableForms, changes, store.Eq("id", id)); err != nil {
		slog.Error("form update failed", "form_id", id, "error", err)
		return nil, err
	}

	if update.Fields != nil {
		if err := p.store.Delete(ctx, schema.TableFormFields, store.Eq("form_id", id)); err != nil {
			slog.Error("form field clear failed", "form_id", id, "error", err)
		}
		p.insertFormFields(ctx, id, update.Fields)
	}

	form, err := p.GetForm(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := p.LoadForms(ctx); err != nil {
		slog.Error("form refresh failed", "error", err)
	}
	return form, nil
}

func (p *Provider) DeleteForm(ctx context.Context, id string) bool {
	p.beginLoading()
	defer p.endLoading()

	existing, err := p.store.SelectOne(ctx, store.Query{
		Table:   schema.TableForms,
		Filters: []store.Filter{store.Eq("id", id)},
	})
	if err != nil || existing == nil {
		if err != nil {
			slog.Error("form fetch failed", "form_id", id, "error", err)
		}
		return false
	}

	if err := p.store.Delete(ctx, schema.TableFormFields, store.Eq("form_id", id)); err != nil {
		slog.Error("form field delete failed", "form_id", id, "error", err)
	}
	if err := p.store.Delete(ctx, schema.TableForms, store.Eq("id", id)); err != nil {
		slog.Error("form delete failed", "form_id", id, "error", err)
		return false
	}

	if _, err := p.LoadForms(ctx); err != nil {
		slog.Error("form refresh failed", "error", err)
	}
	return true
}

func (p *Provider) insertFormFields(ctx context.Context, formId string, fields []model.FormField) {
	if len(fields) == 0 {
		return
	}
	rows := make([]store.Row, 0, len(fields))
	for i, field := range fields {
		rows = append(rows, fieldRow(formId, i+1, field))
	}
	if _, err := p.store.Insert(ctx, schema.TableFormFields, rows); err != nil {
		slog.Error("form field insert failed", "form_id", formId, "error", err)
	}
}
