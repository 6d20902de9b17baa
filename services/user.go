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

type UserService struct {
	provider    *state.Provider
	sessionAuth []func(http.Handler) http.Handler
}

func (s *UserService) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(s.sessionAuth...)

	r.Get("/list", s.List)

	r.Route("/{user_id}", func(r chi.Router) {
		r.Get("/", s.Get)
		r.Post("/approval-role", s.UpdateApprovalRole)
	})

	return r
}

func (s *UserService) List(w http.ResponseWriter, r *http.Request) {
	users, err := s.provider.LoadUsers(r.Context())
	if err != nil {
		http.Error(w, fmt.Sprintf("error listing users: %v", schema.ErrStoreAccessFailed), http.StatusInternalServerError)
		return
	}
	utils.WriteJsonResponse(w, users)
}

func (s *UserService) Get(w http.ResponseWriter, r *http.Request) {
	id, err := utils.URLParam(r, "user_id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	user, err := s.provider.GetUser(r.Context(), id)
	if err != nil {
		http.Error(w, fmt.Sprintf("error getting user: %v", schema.ErrStoreAccessFailed), http.StatusInternalServerError)
		return
	}
	if user == nil {
		http.Error(w, schema.ErrUserNotFound.Error(), http.StatusNotFound)
		return
	}
	utils.WriteJsonResponse(w, user)
}

type approvalRoleRequest struct {
	ApprovalRole *model.ApprovalRole `json:"approvalRole"`
}

func (s *UserService) UpdateApprovalRole(w http.ResponseWriter, r *http.Request) {
	id, err := utils.URLParam(r, "user_id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var params approvalRoleRequest
	if !utils.ParseRequestBody(w, r, &params) {
		return
	}

	if !s.provider.UpdateUserApprovalRole(r.Context(), id, params.ApprovalRole) {
		http.Error(w, "error updating approval role", http.StatusInternalServerError)
		return
	}
	utils.WriteSuccess(w)
}
