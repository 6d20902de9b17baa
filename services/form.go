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

type FormService struct {
	provider    *state.Provider
	sessionAuth []func(http.Handler) http.Handler
}

func (s *FormService) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(s.sessionAuth...)

	r.Get("/list", s.List)
	r.Post("/create", s.Create)

	r.Route("/{form_id}", func(r chi.Router) {
		r.Get("/", s.Get)
		r.Post("/update", s.Update)
		r.Delete("/", s.Delete)
	})

	return r
}

func (s *FormService) List(w http.ResponseWriter, r *http.Request) {
	forms, err := s.provider.LoadForms(r.Context())
	if err != nil {
		http.Error(w, fmt.Sprintf("error listing forms: %v", schema.ErrStoreAccessFailed), http.StatusInternalServerError)
		return
	}
	utils.WriteJsonResponse(w, forms)
}

func (s *FormService) Get(w http.ResponseWriter, r *http.Request) {
	id, err := utils.URLParam(r, "form_id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	form, err := s.provider.GetForm(r.Context(), id)
	if err != nil {
		http.Error(w, fmt.Sprintf("error getting form: %v", schema.ErrStoreAccessFailed), http.StatusInternalServerError)
		return
	}
	if form == nil {
		http.Error(w, schema.ErrFormNotFound.Error(), http.StatusNotFound)
		return
	}
	utils.WriteJsonResponse(w, form)
}

func (s *FormService) Create(w http.ResponseWriter, r *http.Request) {
	var params model.FormInput
	if !utils.ParseRequestBody(w, r, &params) {
		return
	}
	if params.Name == "" {
		http.Error(w, "form name must be specified", http.StatusBadRequest)
		return
	}
	if params.CreatedBy == "" {
		if user := s.provider.CurrentUser(); user != nil {
			params.CreatedBy = user.Id
		}
	}

	form, err := s.provider.AddForm(r.Context(), params)
	if err != nil {
		http.Error(w, fmt.Sprintf("error creating form: %v", schema.ErrStoreAccessFailed), http.StatusInternalServerError)
		return
	}
	utils.WriteJsonResponse(w, form)
}

func (s *FormService) Update(w http.ResponseWriter, r *http.Request) {
	id, err := utils.URLParam(r, "form_id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var params model.FormUpdate
	if !utils.ParseRequestBody(w, r, &params) {
		return
	}

	form, err := s.provider.UpdateForm(r.Context(), id, params)
	if err != nil {
		http.Error(w, fmt.Sprintf("error updating form: %v", schema.ErrStoreAccessFailed), http.StatusInternalServerError)
		return
	}
	if form == nil {
		http.Error(w, schema.ErrFormNotFound.Error(), http.StatusNotFound)
		return
	}
	utils.WriteJsonResponse(w, form)
}

func (s *FormService) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := utils.URLParam(r, "form_id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if !s.provider.DeleteForm(r.Context(), id) {
		http.Error(w, schema.ErrFormNotFound.Error(), http.StatusNotFound)
		return
	}
	utils.WriteSuccess(w)
}
