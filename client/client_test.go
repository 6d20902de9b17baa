package client_test

import (
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"flowforge/client"
	"flowforge/model"
	"flowforge/schema"
	"flowforge/services"
	"flowforge/state"
	"flowforge/store"
)

func newTestClient(t *testing.T) *client.FlowforgeClient {
	dsn := fmt.Sprintf("file:%v?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatal(err)
	}
	if err := db.AutoMigrate(schema.All()...); err != nil {
		t.Fatal(err)
	}

	provider := state.New(store.NewGormStore(db, []byte("290zcv02ai249")))
	app := services.NewApp(provider, nil)

	r := chi.NewRouter()
	r.Mount("/api/v1", app.Routes())

	server := httptest.NewServer(r)
	t.Cleanup(server.Close)

	return client.New(server.URL)
}

func TestClientWorkflowLifecycle(t *testing.T) {
	c := newTestClient(t)

	err := c.Signup("owner@example.com", "password123", "Owner")
	assert.NoError(t, err)
	assert.NotEmpty(t, c.UserId())

	created, err := c.CreateWorkflow(model.WorkflowInput{
		Name: "Expense Approval",
		Steps: []model.WorkflowStep{
			{Name: "Submit", Type: model.StepForm},
			{Name: "Approve", Type: model.StepApproval},
		},
	})
	assert.NoError(t, err)
	assert.Len(t, created.Steps, 2)
	assert.Equal(t, "Submit", created.Steps[0].Name)

	workflows, err := c.ListWorkflows()
	assert.NoError(t, err)
	assert.Len(t, workflows, 1)

	name := "Expense Approval v2"
	updated, err := c.UpdateWorkflow(created.Id, model.WorkflowUpdate{Name: &name})
	assert.NoError(t, err)
	assert.Equal(t, name, updated.Name)
	assert.Len(t, updated.Steps, 2)

	err = c.DeleteWorkflow(created.Id)
	assert.NoError(t, err)

	_, err = c.GetWorkflow(created.Id)
	assert.Error(t, err)
}

func TestClientSessionHandling(t *testing.T) {
	c := newTestClient(t)

	_, err := c.ListWorkflows()
	assert.Error(t, err)

	err = c.Signup("owner@example.com", "password123", "Owner")
	assert.NoError(t, err)

	user, err := c.Session()
	assert.NoError(t, err)
	assert.NotNil(t, user)
	assert.Equal(t, "owner@example.com", user.Email)

	err = c.Logout()
	assert.NoError(t, err)

	user, err = c.Session()
	assert.NoError(t, err)
	assert.Nil(t, user)
}

func TestClientTeamMembership(t *testing.T) {
	c := newTestClient(t)

	err := c.Signup("owner@example.com", "password123", "Owner")
	assert.NoError(t, err)

	team, err := c.CreateTeam(model.TeamInput{Name: "Core"})
	assert.NoError(t, err)

	err = c.AddUserToTeam(team.Id, c.UserId())
	assert.NoError(t, err)

	fetched, err := c.GetTeam(team.Id)
	assert.NoError(t, err)
	assert.Contains(t, fetched.Members, c.UserId())

	role := model.ApprovalRoleApprover
	err = c.SetApprovalRole(c.UserId(), &role)
	assert.NoError(t, err)

	users, err := c.ListUsers()
	assert.NoError(t, err)
	assert.Len(t, users, 1)
	assert.NotNil(t, users[0].ApprovalRole)
	assert.Equal(t, model.ApprovalRoleApprover, *users[0].ApprovalRole)
}
