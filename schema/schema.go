package schema

import (
	"errors"
	"time"
)

// Row models for the relational backend. Column names follow the remote
// datastore's snake_case convention; json-typed columns are stored as
// serialized text and decoded at the aggregate boundary, never here.

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrTeamNotFound      = errors.New("team not found")
	ErrWorkflowNotFound  = errors.New("workflow not found")
	ErrFormNotFound      = errors.New("form not found")
	ErrTaskNotFound      = errors.New("task not found")
	ErrStoreAccessFailed = errors.New("store access failed")
)

const (
	TableUsers            = "users"
	TableTeams            = "teams"
	TableTeamMembers      = "team_members"
	TableWorkflows        = "workflows"
	TableWorkflowSteps    = "workflow_steps"
	TableConnections      = "connections"
	TableForms            = "forms"
	TableFormFields       = "form_fields"
	TableTasks            = "tasks"
	TableTaskDependencies = "task_dependencies"
)

type User struct {
	Id string `gorm:"type:uuid;primaryKey"`

	Name  string `gorm:"size:100;not null"`
	Email string `gorm:"unique;size:254;not null"`

	Role         string  `gorm:"size:50;not null;default:'user'"`
	TeamId       *string `gorm:"type:uuid"`
	ApprovalRole *string `gorm:"size:50"`
	Avatar       *string `gorm:"size:500"`

	PasswordHash []byte

	CreatedAt time.Time
	UpdatedAt time.Time
}

type Team struct {
	Id string `gorm:"type:uuid;primaryKey"`

	Name        string  `gorm:"size:100;not null"`
	Description string
	ParentId    *string `gorm:"type:uuid"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

type TeamMember struct {
	TeamId string `gorm:"type:uuid;primaryKey"`
	UserId string `gorm:"type:uuid;primaryKey"`

	CreatedAt time.Time
}

type Workflow struct {
	Id string `gorm:"type:uuid;primaryKey"`

	Name        string `gorm:"size:100;not null"`
	Description string
	Status      string `gorm:"size:50;not null;default:'draft'"`
	CreatedBy   string `gorm:"type:uuid;not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

type WorkflowStep struct {
	Id         string `gorm:"type:uuid;primaryKey"`
	WorkflowId string `gorm:"type:uuid;not null;index"`

	Name     string `gorm:"size:100;not null"`
	Type     string `gorm:"size:50;not null"`
	Config   string
	Position string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Connection is a directed edge between two canvas steps of one workflow.
type Connection struct {
	Id         string `gorm:"type:uuid;primaryKey"`
	WorkflowId string `gorm:"type:uuid;not null;index"`

	SourceId string `gorm:"type:uuid;not null"`
	TargetId string `gorm:"type:uuid;not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

type Form struct {
	Id string `gorm:"type:uuid;primaryKey"`

	Name        string `gorm:"size:100;not null"`
	Description string
	CreatedBy   string `gorm:"type:uuid;not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

type FormField struct {
	Id     string `gorm:"type:uuid;primaryKey"`
	FormId string `gorm:"type:uuid;not null;index"`

	Name     string `gorm:"size:100;not null"`
	Label    string `gorm:"size:200;not null"`
	Type     string `gorm:"size:50;not null"`
	Required bool   `gorm:"not null;default:false"`
	Order    int    `gorm:"column:order;not null"`

	Options      *string
	Placeholder  *string `gorm:"size:200"`
	DefaultValue *string `gorm:"column:default_value"`
	Validation   *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

type Task struct {
	Id string `gorm:"type:uuid;primaryKey"`

	Title       string `gorm:"size:200;not null"`
	Description string
	Status      string `gorm:"size:50;not null;default:'todo'"`
	Priority    string `gorm:"size:50;not null;default:'medium'"`

	DueDate    *time.Time
	AssignedTo *string `gorm:"type:uuid"`
	WorkflowId *string `gorm:"type:uuid"`
	CreatedBy  string  `gorm:"type:uuid;not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

type TaskDependency struct {
	TaskId          string `gorm:"type:uuid;primaryKey"`
	DependsOnTaskId string `gorm:"type:uuid;primaryKey"`

	CreatedAt time.Time
}

// All returns every row model, in migration order.
func All() []any {
	return []any{
		&User{}, &Team{}, &TeamMember{},
		&Workflow{}, &WorkflowStep{}, &Connection{},
		&Form{}, &FormField{},
		&Task{}, &TaskDependency{},
	}
}
