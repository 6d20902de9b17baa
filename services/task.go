package services

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"flowforge/model"
	"flowforge/schema"
	"flowforge/state"
	"flowforge/utils"
)

type TaskService struct {
	provider    *state.Provider
	sessionAuth []func(http.Handler) http.Handler
}

func (s *TaskService) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(s.sessionAuth...)

	r.Get("/list", s.List)
	r.Post("/create", s.Create)

	r.Route("/{task_id}", func(r chi.Router) {
		r.Get("/", s.Get)
		r.Post("/update", s.Update)
		r.Delete("/", s.Delete)
	})

	return r
}

func (s *TaskService) List(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.provider.LoadTasks(r.Context())
	if err != nil {
		http.Error(w, fmt.Sprintf("error listing tasks: %v", schema.ErrStoreAccessFailed), http.StatusInternalServerError)
		return
	}
	utils.WriteJsonResponse(w, tasks)
}

func (s *TaskService) Get(w http.ResponseWriter, r *http.Request) {
	id, err := utils.URLParam(r, "task_id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	task, err := s.provider.GetTask(r.Context(), id)
	if err != nil {
		http.Error(w, fmt.Sprintf("error getting task: %v", schema.ErrStoreAccessFailed), http.StatusInternalServerError)
		return
	}
	if task == nil {
		http.Error(w, schema.ErrTaskNotFound.Error(), http.StatusNotFound)
		return
	}
	utils.WriteJsonResponse(w, task)
}

func (s *TaskService) Create(w http.ResponseWriter, r *http.Request) {
	var params model.TaskInput
	if !utils.ParseRequestBody(w, r, &params) {
		return
	}
	if params.Title == "" {
		http.Error(w, "task title must be specified", http.StatusBadRequest)
		return
	}
	if params.CreatedBy == "" {
		if user := s.provider.CurrentUser(); user != nil {
			params.CreatedBy = user.Id
		}
	}

	task, err := s.provider.AddTask(r.Context(), params)
	if err != nil {
		http.Error(w, fmt.Sprintf("error creating task: %v", schema.ErrStoreAccessFailed), http.StatusInternalServerError)
		return
	}
	utils.WriteJsonResponse(w, task)
}

func (s *TaskService) Update(w http.ResponseWriter, r *http.Request) {
	id, err := utils.URLParam(r, "task_id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var params model.TaskUpdate
	if !utils.ParseRequestBody(w, r, &params) {
		return
	}

	task, err := s.provider.UpdateTask(r.Context(), id, params)
	if err != nil {
		http.Error(w, fmt.Sprintf("error updating task: %v", schema.ErrStoreAccessFailed), http.StatusInternalServerError)
		return
	}
	if task == nil {
		http.Error(w, schema.ErrTaskNotFound.Error(), http.StatusNotFound)
		return
	}
	utils.WriteJsonResponse(w, task)
}

func (s *TaskService) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := utils.URLParam(r, "task_id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if !s.provider.DeleteTask(r.Context(), id) {
		http.Error(w, schema.ErrTaskNotFound.Error(), http.StatusNotFound)
		return
	}
	utils.WriteSuccess(w)
}
