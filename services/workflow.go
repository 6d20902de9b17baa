package services

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"flowforge/model"
	"flowforge/schema"
	"flowforge/state"
	"flowforge/utils"
)

type WorkflowService struct {
	provider    *state.Provider
	sessionAuth []func(http.Handler) http.Handler
}

func (s *WorkflowService) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(s.sessionAuth...)

	r.Get("/list", s.List)
	r.Post("/create", s.Create)

	r.Route("/{workflow_id}", func(r chi.Router) {
		r.Get("/", s.Get)
		r.Post("/update", s.Update)
		r.Delete("/", s.Delete)
	})

	return r
}

func (s *WorkflowService) List(w http.ResponseWriter, r *http.Request) {
	workflows, err := s.provider.LoadWorkflows(r.Context())
	if err != nil {
		http.Error(w, fmt.Sprintf("error listing workflows: %v", schema.ErrStoreAccessFailed), http.StatusInternalServerError)
		return
	}
	utils.WriteJsonResponse(w, workflows)
}

func (s *WorkflowService) Get(w http.ResponseWriter, r *http.Request) {
	id, err := utils.URLParam(r, "workflow_id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	workflow, err := s.provider.GetWorkflow(r.Context(), id)
	if err != nil {
		http.Error(w, fmt.Sprintf("error getting workflow: %v", schema.ErrStoreAccessFailed), http.StatusInternalServerError)
		return
	}
	if workflow == nil {
		http.Error(w, schema.ErrWorkflowNotFound.Error(), http.StatusNotFound)
		return
	}
	utils.WriteJsonResponse(w, workflow)
}

func (s *WorkflowService) Create(w http.ResponseWriter, r *http.Request) {
	var params model.WorkflowInput
	if !utils.ParseRequestBody(w, r, &params) {
		return
	}
	if params.Name == "" {
		http.Error(w, "workflow name must be specified", http.StatusBadRequest)
		return
	}
	if params.CreatedBy == "" {
		if user := s.provider.CurrentUser(); user != nil {
			params.CreatedBy = user.Id
		}
	}

	workflow, err := s.provider.AddWorkflow(r.Context(), params)
	if err != nil {
		http.Error(w, fmt.Sprintf("error creating workflow: %v", schema.ErrStoreAccessFailed), http.StatusInternalServerError)
		return
	}
	utils.WriteJsonResponse(w, workflow)
}

func (s *WorkflowService) Update(w http.ResponseWriter, r *http.Request) {
	id, err := utils.URLParam(r, "workflow_id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var params model.WorkflowUpdate
	if !utils.ParseRequestBody(w, r, &params) {
		return
	}

	workflow, err := s.provider.UpdateWorkflow(r.Context(), id, params)
	if err != nil {
		cerr := CodedError(err, http.StatusInternalServerError)
		if errors.Is(err, state.ErrInvalidStatusChange) {
			cerr = CodedError(err, http.StatusUnprocessableEntity)
		}
		http.Error(w, fmt.Sprintf("error updating workflow: %v", err), GetResponseCode(cerr))
		return
	}
	if workflow == nil {
		http.Error(w, schema.ErrWorkflowNotFound.Error(), http.StatusNotFound)
		return
	}
	utils.WriteJsonResponse(w, workflow)
}

func (s *WorkflowService) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := utils.URLParam(r, "workflow_id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if !s.provider.DeleteWorkflow(r.Context(), id) {
		http.Error(w, schema.ErrWorkflowNotFound.Error(), http.StatusNotFound)
		return
	}
	utils.WriteSuccess(w)
}
