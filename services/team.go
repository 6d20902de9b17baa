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

type TeamService struct {
	provider    *state.Provider
	sessionAuth []func(http.Handler) http.Handler
}

func (s *TeamService) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(s.sessionAuth...)

	r.Get("/list", s.List)
	r.Post("/create", s.Create)

	r.Route("/{team_id}", func(r chi.Router) {
		r.Get("/", s.Get)
		r.Post("/update", s.Update)
		r.Delete("/", s.Delete)

		r.Post("/users/{user_id}", s.AddUserToTeam)
		r.Delete("/users/{user_id}", s.RemoveUserFromTeam)
	})

	return r
}

func (s *TeamService) List(w http.ResponseWriter, r *http.Request) {
	teams, err := s.provider.LoadTeams(r.Context())
	if err != nil {
		http.Error(w, fmt.Sprintf("error listing teams: %v", schema.ErrStoreAccessFailed), http.StatusInternalServerError)
		return
	}
	utils.WriteJsonResponse(w, teams)
}

func (s *TeamService) Get(w http.ResponseWriter, r *http.Request) {
	id, err := utils.URLParam(r, "team_id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	team, err := s.provider.GetTeam(r.Context(), id)
	if err != nil {
		http.Error(w, fmt.Sprintf("error getting team: %v", schema.ErrStoreAccessFailed), http.StatusInternalServerError)
		return
	}
	if team == nil {
		http.Error(w, schema.ErrTeamNotFound.Error(), http.StatusNotFound)
		return
	}
	utils.WriteJsonResponse(w, team)
}

func (s *TeamService) Create(w http.ResponseWriter, r *http.Request) {
	var params model.TeamInput
	if !utils.ParseRequestBody(w, r, &params) {
		return
	}
	if params.Name == "" {
		http.Error(w, "team name must be specified", http.StatusBadRequest)
		return
	}

	team, err := s.provider.AddTeam(r.Context(), params)
	if err != nil {
		http.Error(w, fmt.Sprintf("error creating team: %v", schema.ErrStoreAccessFailed), http.StatusInternalServerError)
		return
	}
	utils.WriteJsonResponse(w, team)
}

func (s *TeamService) Update(w http.ResponseWriter, r *http.Request) {
	id, err := utils.URLParam(r, "team_id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var params model.TeamUpdate
	if !utils.ParseRequestBody(w, r, &params) {
		return
	}

	team, err := s.provider.UpdateTeam(r.Context(), id, params)
	if err != nil {
		http.Error(w, fmt.Sprintf("error updating team: %v", schema.ErrStoreAccessFailed), http.StatusInternalServerError)
		return
	}
	if team == nil {
		http.Error(w, schema.ErrTeamNotFound.Error(), http.StatusNotFound)
		return
	}
	utils.WriteJsonResponse(w, team)
}

func (s *TeamService) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := utils.URLParam(r, "team_id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if !s.provider.DeleteTeam(r.Context(), id) {
		http.Error(w, schema.ErrTeamNotFound.Error(), http.StatusNotFound)
		return
	}
	utils.WriteSuccess(w)
}

func (s *TeamService) AddUserToTeam(w http.ResponseWriter, r *http.Request) {
	teamId, err := utils.URLParam(r, "team_id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	userId, err := utils.URLParam(r, "user_id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if !s.provider.AddUserToTeam(r.Context(), userId, teamId) {
		http.Error(w, "error adding user to team", http.StatusInternalServerError)
		return
	}
	utils.WriteSuccess(w)
}

func (s *TeamService) RemoveUserFromTeam(w http.ResponseWriter, r *http.Request) {
	teamId, err := utils.URLParam(r, "team_id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	userId, err := utils.URLParam(r, "user_id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if !s.provider.RemoveUserFromTeam(r.Context(), userId, teamId) {
		http.Error(w, "error removing user from team", http.StatusInternalServerError)
		return
	}
	utils.WriteSuccess(w)
}
