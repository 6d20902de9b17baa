package state

import (
	"encoding/json"
	"fmt"
	"time"

	"flowforge/model"
	"flowforge/store"
)

// This file is the single place where remote row shapes (snake_case columns,
// json columns as serialized text) are translated to and from the aggregate
// shapes the UI consumes.

func rowString(row store.Row, key string) string {
	switch v := row[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return fmt.Sprint(v)
	}
}

func rowStringPtr(row store.Row, key string) *string {
	if row[key] == nil {
		return nil
	}
	s := rowString(row, key)
	if s == "" {
		return nil
	}
	return &s
}

func rowBool(row store.Row, key string) bool {
	switch v := row[key].(type) {
	case bool:
		return v
	case int64:
		return v != 0
	case float64:
		return v != 0
	}
	return false
}

func rowInt(row store.Row, key string) int {
	switch v := row[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

func rowTime(row store.Row, key string) time.Time {
	switch v := row[key].(type) {
	case time.Time:
		return v.UTC()
	case string:
		if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

func rowTimePtr(row store.Row, key string) *time.Time {
	if row[key] == nil {
		return nil
	}
	t := rowTime(row, key)
	if t.IsZero() {
		return nil
	}
	return &t
}

func decodeJSONMap(row store.Row, key string) map[string]any {
	text := rowString(row, key)
	if text == "" {
		return map[string]any{}
	}
	var decoded map[string]any
	if err := json.Unmarshal([]byte(text), &decoded); err != nil {
		return map[string]any{}
	}
	return decoded
}

func decodeJSONStrings(row store.Row, key string) []string {
	text := rowString(row, key)
	if text == "" {
		return nil
	}
	var decoded []string
	if err := json.Unmarshal([]byte(text), &decoded); err != nil {
		return nil
	}
	return decoded
}

func decodeJSONValue(row store.Row, key string) any {
	text := rowString(row, key)
	if text == "" {
		return nil
	}
	var decoded any
	if err := json.Unmarshal([]byte(text), &decoded); err != nil {
		return nil
	}
	return decoded
}

func encodeJSON(value any) string {
	encoded, err := json.Marshal(value)
	if err != nil {
		return ""
	}
	return string(encoded)
}

func userFromRow(row store.Row) model.User {
	user := model.User{
		Id:        rowString(row, "id"),
		Name:      rowString(row, "name"),
		Email:     rowString(row, "email"),
		Role:      model.Role(rowString(row, "role")),
		TeamId:    rowStringPtr(row, "team_id"),
		Avatar:    rowStringPtr(row, "avatar"),
		CreatedAt: rowTime(row, "created_at"),
		UpdatedAt: rowTime(row, "updated_at"),
	}
	if approval := rowStringPtr(row, "approval_role"); approval != nil {
		role := model.ApprovalRole(*approval)
		user.ApprovalRole = &role
	}
	return user
}

func teamFromRow(row store.Row, members []string) model.Team {
	if members == nil {
		members = []string{}
	}
	return model.Team{
		Id:          rowString(row, "id"),
		Name:        rowString(row, "name"),
		Description: rowString(row, "description"),
		ParentId:    rowStringPtr(row, "parent_id"),
		Members:     members,
		CreatedAt:   rowTime(row, "created_at"),
		UpdatedAt:   rowTime(row, "updated_at"),
	}
}

func stepFromRow(row store.Row) model.WorkflowStep {
	step := model.WorkflowStep{
		Id:     rowString(row, "id"),
		Name:   rowString(row, "name"),
		Type:   model.StepType(rowString(row, "type")),
		Config: decodeJSONMap(row, "config"),
	}
	position := decodeJSONMap(row, "position")
	if x, ok := position["x"].(float64); ok {
		step.Position.X = x
	}
	if y, ok := position["y"].(float64); ok {
		step.Position.Y = y
	}
	return step
}

func connectionFromRow(row store.Row) model.Connection {
	return model.Connection{
		Source: rowString(row, "source_id"),
		Target: rowString(row, "target_id"),
	}
}

func workflowFromRow(row store.Row, steps []model.WorkflowStep, connections []model.Connection) model.Workflow {
	if steps == nil {
		steps = []model.WorkflowStep{}
	}
	if connections == nil {
		connections = []model.Connection{}
	}
	return model.Workflow{
		Id:          rowString(row, "id"),
		Name:        rowString(row, "name"),
		Description: rowString(row, "description"),
		Status:      model.WorkflowStatus(rowString(row, "status")),
		Steps:       steps,
		Connections: connections,
		CreatedBy:   rowString(row, "created_by"),
		CreatedAt:   rowTime(row, "created_at"),
		UpdatedAt:   rowTime(row, "updated_at"),
	}
}

func fieldFromRow(row store.Row) model.FormField {
	field := model.FormField{
		Id:           rowString(row, "id"),
		Name:         rowString(row, "name"),
		Label:        rowString(row, "label"),
		Type:         rowString(row, "type"),
		Required:     rowBool(row, "required"),
		Order:        rowInt(row, "order"),
		Options:      decodeJSONStrings(row, "options"),
		Placeholder:  rowStringPtr(row, "placeholder"),
		DefaultValue: decodeJSONValue(row, "default_value"),
	}
	if row["validation"] != nil {
		field.Validation = decodeJSONMap(row, "validation")
	}
	return field
}

func formFromRow(row store.Row, fields []model.FormField) model.Form {
	if fields == nil {
		fields = []model.FormField{}
	}
	return model.Form{
		Id:          rowString(row, "id"),
		Name:        rowString(row, "name"),
		Description: rowString(row, "description"),
		Fields:      fields,
		CreatedBy:   rowString(row, "created_by"),
		CreatedAt:   rowTime(row, "created_at"),
		UpdatedAt:   rowTime(row, "updated_at"),
	}
}

func taskFromRow(row store.Row, dependencies []string) model.Task {
	if dependencies == nil {
		dependencies = []string{}
	}
	return model.Task{
		Id:           rowString(row, "id"),
		Title:        rowString(row, "title"),
		Description:  rowString(row, "description"),
		Status:       model.TaskStatus(rowString(row, "status")),
		Priority:     model.TaskPriority(rowString(row, "priority")),
		DueDate:      rowTimePtr(row, "due_date"),
		AssignedTo:   rowStringPtr(row, "assigned_to"),
		WorkflowId:   rowStringPtr(row, "workflow_id"),
		CreatedBy:    rowString(row, "created_by"),
		Dependencies: dependencies,
		CreatedAt:    rowTime(row, "created_at"),
		UpdatedAt:    rowTime(row, "updated_at"),
	}
}

func stepRow(workflowId string, step model.WorkflowStep) store.Row {
	row := store.Row{
		"workflow_id": workflowId,
		"name":        step.Name,
		"type":        string(step.Type),
		"config":      encodeJSON(step.Config),
		"position":    encodeJSON(map[string]float64{"x": step.Position.X, "y": step.Position.Y}),
	}
	if step.Id != "" {
		row["id"] = step.Id
	}
	return row
}

func connectionRow(workflowId string, conn model.Connection) store.Row {
	return store.Row{
		"workflow_id": workflowId,
		"source_id":   conn.Source,
		"target_id":   conn.Target,
	}
}

func fieldRow(formId string, order int, field model.FormField) store.Row {
	row := store.Row{
		"form_id":  formId,
		"name":     field.Name,
		"label":    field.Label,
		"type":     field.Type,
		"required": field.Required,
		"order":    order,
	}
	if field.Id != "" {
		row["id"] = field.Id
	}
	if field.Options != nil {
		row["options"] = encodeJSON(field.Options)
	}
	if field.Placeholder != nil {
		row["placeholder"] = *field.Placeholder
	}
	if field.DefaultValue != nil {
		row["default_value"] = encodeJSON(field.DefaultValue)
	}
	if field.Validation != nil {
		row["validation"] = encodeJSON(field.Validation)
	}
	return row
}

func dependencyRow(taskId, dependsOn string) store.Row {
	return store.Row{"task_id": taskId, "depends_on_task_id": dependsOn}
}

func memberRow(teamId, userId string) store.Row {
	return store.Row{"team_id": teamId, "user_id": userId}
}

func ptrColumn[T any](changes store.Row, column string, value *T) {
	if value != nil {
		changes[column] = *value
	}
}
