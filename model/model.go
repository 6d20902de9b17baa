package model

import "time"

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleUser    Role = "user"
)

type ApprovalRole string

const (
	ApprovalRoleApprover ApprovalRole = "approver"
	ApprovalRoleReviewer ApprovalRole = "reviewer"
	ApprovalRoleAdmin    ApprovalRole = "admin"
)

type WorkflowStatus string

const (
	WorkflowActive   WorkflowStatus = "active"
	WorkflowDraft    WorkflowStatus = "draft"
	WorkflowArchived WorkflowStatus = "archived"
)

type StepType string

const (
	StepForm      StepType = "form"
	StepTask      StepType = "task"
	StepApproval  StepType = "approval"
	StepCondition StepType = "condition"
)

type TaskStatus string

const (
	TaskTodo       TaskStatus = "todo"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
)

type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

type User struct {
	Id           string        `json:"id"`
	Name         string        `json:"name"`
	Email        string        `json:"email"`
	Role         Role          `json:"role"`
	TeamId       *string       `json:"teamId,omitempty"`
	ApprovalRole *ApprovalRole `json:"approvalRole,omitempty"`
	Avatar       *string       `json:"avatar,omitempty"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}

type Team struct {
	Id          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	ParentId    *string   `json:"parentId,omitempty"`
	Members     []string  `json:"members"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type WorkflowStep struct {
	Id       string         `json:"id"`
	Name     string         `json:"name"`
	Type     StepType       `json:"type"`
	Config   map[string]any `json:"config"`
	Position Position       `json:"position"`
}

// Connection is a directed edge between two steps on the workflow canvas.
type Connection struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

type Workflow struct {
	Id          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Status      WorkflowStatus `json:"status"`
	Steps       []WorkflowStep `json:"steps"`
	Connections []Connection   `json:"connections"`
	CreatedBy   string         `json:"createdBy"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

type FormField struct {
	Id           string         `json:"id"`
	Name         string         `json:"name"`
	Label        string         `json:"label"`
	Type         string         `json:"type"`
	Required     bool           `json:"required"`
	Order        int            `json:"order"`
	Options      []string       `json:"options,omitempty"`
	Placeholder  *string        `json:"placeholder,omitempty"`
	DefaultValue any            `json:"defaultValue,omitempty"`
	Validation   map[string]any `json:"validation,omitempty"`
}

type Form struct {
	Id          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Fields      []FormField `json:"fields"`
	CreatedBy   string      `json:"createdBy"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

type Task struct {
	Id           string       `json:"id"`
	Title        string       `json:"title"`
	Description  string       `json:"description"`
	Status       TaskStatus   `json:"status"`
	Priority     TaskPriority `json:"priority"`
	DueDate      *time.Time   `json:"dueDate,omitempty"`
	AssignedTo   *string      `json:"assignedTo,omitempty"`
	WorkflowId   *string      `json:"workflowId,omitempty"`
	CreatedBy    string       `json:"createdBy"`
	Dependencies []string     `json:"dependencies"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}

// Input types carry the caller-supplied portion of an aggregate for creation.
// The store assigns ids and timestamps.

type WorkflowInput struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Status      WorkflowStatus `json:"status"`
	CreatedBy   string         `json:"createdBy"`
	Steps       []WorkflowStep `json:"steps"`
	Connections []Connection   `json:"connections"`
}

type FormInput struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	CreatedBy   string      `json:"createdBy"`
	Fields      []FormField `json:"fields"`
}

type TaskInput struct {
	Title        string       `json:"title"`
	Description  string       `json:"description"`
	Status       TaskStatus   `json:"status"`
	Priority     TaskPriority `json:"priority"`
	DueDate      *time.Time   `json:"dueDate,omitempty"`
	AssignedTo   *string      `json:"assignedTo,omitempty"`
	WorkflowId   *string      `json:"workflowId,omitempty"`
	CreatedBy    string       `json:"createdBy"`
	Dependencies []string     `json:"dependencies"`
}

type TeamInput struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	ParentId    *string  `json:"parentId,omitempty"`
	Members     []string `json:"members"`
}

// Update types are partial: nil scalar pointers leave the column untouched,
// and a nil child slice leaves the existing child rows in place. A non-nil
// empty slice clears them.

type WorkflowUpdate struct {
	Name        *string         `json:"name,omitempty"`
	Description *string         `json:"description,omitempty"`
	Status      *WorkflowStatus `json:"status,omitempty"`
	Steps       []WorkflowStep  `json:"steps,omitempty"`
	Connections []Connection    `json:"connections,omitempty"`
}

type FormUpdate struct {
	Name        *string     `json:"name,omitempty"`
	Description *string     `json:"description,omitempty"`
	Fields      []FormField `json:"fields,omitempty"`
}

type TaskUpdate struct {
	Title        *string       `json:"title,omitempty"`
	Description  *string       `json:"description,omitempty"`
	Status       *TaskStatus   `json:"status,omitempty"`
	Priority     *TaskPriority `json:"priority,omitempty"`
	DueDate      *time.Time    `json:"dueDate,omitempty"`
	AssignedTo   *string       `json:"assignedTo,omitempty"`
	WorkflowId   *string       `json:"workflowId,omitempty"`
	Dependencies []string      `json:"dependencies,omitempty"`
}

type TeamUpdate struct {
	Name        *string  `json:"name,omitempty"`
	Description *string  `json:"description,omitempty"`
	ParentId    *string  `json:"parentId,omitempty"`
	Members     []string `json:"members,omitempty"`
}
