package client

import (
	"fmt"

	"flowforge/model"
)

// FlowforgeClient is a typed client for the dashboard sync API. Auth state is
// client-held: Login and Signup capture the bearer token returned by the
// server and attach it to every subsequent request.
type FlowforgeClient struct {
	BaseClient
	userId string
}

func New(baseUrl string) *FlowforgeClient {
	return &FlowforgeClient{BaseClient: BaseClient{baseUrl: baseUrl}}
}

type sessionResponse struct {
	Authenticated bool        `json:"authenticated"`
	AccessToken   string      `json:"accessToken"`
	User          *model.User `json:"user"`
}

func (c *FlowforgeClient) adoptSession(session sessionResponse) {
	c.authToken = session.AccessToken
	if session.User != nil {
		c.userId = session.User.Id
	}
}

func (c *FlowforgeClient) Signup(email, password, name string) error {
	body := map[string]string{
		"email": email, "password": password, "name": name,
	}

	var session sessionResponse
	err := c.Post("/api/v1/auth/signup").Json(body).Do(&session)
	if err != nil {
		return err
	}

	c.adoptSession(session)
	return nil
}

func (c *FlowforgeClient) Login(email, password string) error {
	body := map[string]string{
		"email": email, "password": password,
	}

	var session sessionResponse
	err := c.Post("/api/v1/auth/login").Json(body).Do(&session)
	if err != nil {
		return err
	}

	c.adoptSession(session)
	return nil
}

func (c *FlowforgeClient) Logout() error {
	err := c.Post("/api/v1/auth/logout").Do(nil)
	if err != nil {
		return err
	}

	c.authToken = ""
	c.userId = ""
	return nil
}

func (c *FlowforgeClient) UserId() string {
	return c.userId
}

func (c *FlowforgeClient) Session() (*model.User, error) {
	var session sessionResponse
	err := c.Get("/api/v1/auth/session").Do(&session)
	if err != nil {
		return nil, err
	}
	if !session.Authenticated {
		return nil, nil
	}
	return session.User, nil
}

func (c *FlowforgeClient) Health() error {
	return c.Get("/api/v1/health").Do(nil)
}

func (c *FlowforgeClient) ListWorkflows() ([]model.Workflow, error) {
	var workflows []model.Workflow
	err := c.Get("/api/v1/workflow/list").Do(&workflows)
	if err != nil {
		return nil, fmt.Errorf("failed to list workflows: %w", err)
	}
	return workflows, nil
}

func (c *FlowforgeClient) GetWorkflow(id string) (*model.Workflow, error) {
	var workflow model.Workflow
	err := c.Get(fmt.Sprintf("/api/v1/workflow/%v", id)).Do(&workflow)
	if err != nil {
		return nil, fmt.Errorf("failed to get workflow: %w", err)
	}
	return &workflow, nil
}

func (c *FlowforgeClient) CreateWorkflow(input model.WorkflowInput) (*model.Workflow, error) {
	var workflow model.Workflow
	err := c.Post("/api/v1/workflow/create").Json(input).Do(&workflow)
	if err != nil {
		return nil, fmt.Errorf("failed to create workflow: %w", err)
	}
	return &workflow, nil
}

func (c *FlowforgeClient) UpdateWorkflow(id string, update model.WorkflowUpdate) (*model.Workflow, error) {
	var workflow model.Workflow
	err := c.Post(fmt.Sprintf("/api/v1/workflow/%v/update", id)).Json(update).Do(&workflow)
	if err != nil {
		return nil, fmt.Errorf("failed to update workflow: %w", err)
	}
	return &workflow, nil
}

func (c *FlowforgeClient) DeleteWorkflow(id string) error {
	err := c.Delete(fmt.Sprintf("/api/v1/workflow/%v", id)).Do(nil)
	if err != nil {
		return fmt.Errorf("failed to delete workflow: %w", err)
	}
	return nil
}

func (c *FlowforgeClient) ListForms() ([]model.Form, error) {
	var forms []model.Form
	err := c.Get("/api/v1/form/list").Do(&forms)
	if err != nil {
		return nil, fmt.Errorf("failed to list forms: %w", err)
	}
	return forms, nil
}

func (c *FlowforgeClient) GetForm(id string) (*model.Form, error) {
	var form model.Form
	err := c.Get(fmt.Sprintf("/api/v1/form/%v", id)).Do(&form)
	if err != nil {
		return nil, fmt.Errorf("failed to get form: %w", err)
	}
	return &form, nil
}

func (c *FlowforgeClient) CreateForm(input model.FormInput) (*model.Form, error) {
	var form model.Form
	err := c.Post("/api/v1/form/create").Json(input).Do(&form)
	if err != nil {
		return nil, fmt.Errorf("failed to create form: %w", err)
	}
	return &form, nil
}

func (c *FlowforgeClient) UpdateForm(id string, update model.FormUpdate) (*model.Form, error) {
	var form model.Form
	err := c.Post(fmt.Sprintf("/api/v1/form/%v/update", id)).Json(update).Do(&form)
	if err != nil {
		return nil, fmt.Errorf("failed to update form: %w", err)
	}
	return &form, nil
}

func (c *FlowforgeClient) DeleteForm(id string) error {
	err := c.Delete(fmt.Sprintf("/api/v1/form/%v", id)).Do(nil)
	if err != nil {
		return fmt.Errorf("failed to delete form: %w", err)
	}
	return nil
}

func (c *FlowforgeClient) ListTasks() ([]model.Task, error) {
	var tasks []model.Task
	err := c.Get("/api/v1/task/list").Do(&tasks)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

func (c *FlowforgeClient) GetTask(id string) (*model.Task, error) {
	var task model.Task
	err := c.Get(fmt.Sprintf("/api/v1/task/%v", id)).Do(&task)
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return &task, nil
}

func (c *FlowforgeClient) CreateTask(input model.TaskInput) (*model.Task, error) {
	var task model.Task
	err := c.Post("/api/v1/task/create").Json(input).Do(&task)
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	return &task, nil
}

func (c *FlowforgeClient) UpdateTask(id string, update model.TaskUpdate) (*model.Task, error) {
	var task model.Task
	err := c.Post(fmt.Sprintf("/api/v1/task/%v/update", id)).Json(update).Do(&task)
	if err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	return &task, nil
}

func (c *FlowforgeClient) DeleteTask(id string) error {
	err := c.Delete(fmt.Sprintf("/api/v1/task/%v", id)).Do(nil)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

func (c *FlowforgeClient) ListTeams() ([]model.Team, error) {
	var teams []model.Team
	err := c.Get("/api/v1/team/list").Do(&teams)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	return teams, nil
}

func (c *FlowforgeClient) GetTeam(id string) (*model.Team, error) {
	var team model.Team
	err := c.Get(fmt.Sprintf("/api/v1/team/%v", id)).Do(&team)
	if err != nil {
		return nil, fmt.Errorf("failed to get team: %w", err)
	}
	return &team, nil
}

func (c *FlowforgeClient) CreateTeam(input model.TeamInput) (*model.Team, error) {
	var team model.Team
	err := c.Post("/api/v1/team/create").Json(input).Do(&team)
	if err != nil {
		return nil, fmt.Errorf("failed to create team: %w", err)
	}
	return &team, nil
}

func (c *FlowforgeClient) UpdateTeam(id string, update model.TeamUpdate) (*model.Team, error) {
	var team model.Team
	err := c.Post(fmt.Sprintf("/api/v1/team/%v/update", id)).Json(update).Do(&team)
	if err != nil {
		return nil, fmt.Errorf("failed to update team: %w", err)
	}
	return &team, nil
}

func (c *FlowforgeClient) DeleteTeam(id string) error {
	err := c.Delete(fmt.Sprintf("/api/v1/team/%v", id)).Do(nil)
	if err != nil {
		return fmt.Errorf("failed to delete team: %w", err)
	}
	return nil
}

func (c *FlowforgeClient) AddUserToTeam(teamId, userId string) error {
	err := c.Post(fmt.Sprintf("/api/v1/team/%v/users/%v", teamId, userId)).Do(nil)
	if err != nil {
		return fmt.Errorf("failed to add user to team: %w", err)
	}
	return nil
}

func (c *FlowforgeClient) RemoveUserFromTeam(teamId, userId string) error {
	err := c.Delete(fmt.Sprintf("/api/v1/team/%v/users/%v", teamId, userId)).Do(nil)
	if err != nil {
		return fmt.Errorf("failed to remove user from team: %w", err)
	}
	return nil
}

func (c *FlowforgeClient) ListUsers() ([]model.User, error) {
	var users []model.User
	err := c.Get("/api/v1/user/list").Do(&users)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (c *FlowforgeClient) SetApprovalRole(userId string, role *model.ApprovalRole) error {
	body := map[string]*model.ApprovalRole{"approvalRole": role}
	err := c.Post(fmt.Sprintf("/api/v1/user/%v/approval-role", userId)).Json(body).Do(nil)
	if err != nil {
		return fmt.Errorf("failed to set approval role: %w", err)
	}
	return nil
}
