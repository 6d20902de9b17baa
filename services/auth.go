package services

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"flowforge/model"
	"flowforge/state"
	"flowforge/utils"
)

type AuthService struct {
	provider *state.Provider
}

func (s *AuthService) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/signup", s.Signup)
	r.Post("/login", s.Login)
	r.Post("/logout", s.Logout)
	r.Get("/session", s.Session)

	return r
}

type signupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

func (s *AuthService) Signup(w http.ResponseWriter, r *http.Request) {
	var params signupRequest
	if !utils.ParseRequestBody(w, r, &params) {
		return
	}
	if params.Email == "" || params.Password == "" {
		http.Error(w, "email and password must be specified", http.StatusBadRequest)
		return
	}

	if !s.provider.Signup(r.Context(), params.Email, params.Password, params.Name) {
		http.Error(w, "signup failed", http.StatusConflict)
		return
	}

	utils.WriteJsonResponse(w, sessionResponse{
		Authenticated: true,
		AccessToken:   s.provider.AccessToken(r.Context()),
		User:          s.provider.CurrentUser(),
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *AuthService) Login(w http.ResponseWriter, r *http.Request) {
	var params loginRequest
	if !utils.ParseRequestBody(w, r, &params) {
		return
	}

	if !s.provider.Login(r.Context(), params.Email, params.Password) {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	utils.WriteJsonResponse(w, sessionResponse{
		Authenticated: true,
		AccessToken:   s.provider.AccessToken(r.Context()),
		User:          s.provider.CurrentUser(),
	})
}

func (s *AuthService) Logout(w http.ResponseWriter, r *http.Request) {
	s.provider.Logout(r.Context())
	utils.WriteSuccess(w)
}

type sessionResponse struct {
	Authenticated bool        `json:"authenticated"`
	AccessToken   string      `json:"accessToken,omitempty"`
	User          *model.User `json:"user,omitempty"`
}

func (s *AuthService) Session(w http.ResponseWriter, r *http.Request) {
	utils.WriteJsonResponse(w, sessionResponse{
		Authenticated: s.provider.IsAuthenticated(),
		User:          s.provider.CurrentUser(),
	})
}
