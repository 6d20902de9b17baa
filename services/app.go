package services

import (
	"log"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"flowforge/auth"
	"flowforge/state"
	"flowforge/utils"
)

// App bundles the per-entity services over one shared state provider.
type App struct {
	auth     AuthService
	user     UserService
	team     TeamService
	workflow WorkflowService
	form     FormService
	task     TaskService

	provider *state.Provider
}

// NewApp wires the services. When a jwt manager is supplied, mutating routes
// require a verified bearer token; otherwise (mock mode) they only require
// that a session is active on the provider.
func NewApp(provider *state.Provider, jwt *auth.JwtManager) App {
	var sessionAuth []func(http.Handler) http.Handler
	if jwt != nil {
		sessionAuth = []func(http.Handler) http.Handler{jwt.Verifier(), jwt.Authenticator()}
	} else {
		sessionAuth = []func(http.Handler) http.Handler{requireSession(provider)}
	}

	return App{
		auth:     AuthService{provider: provider},
		user:     UserService{provider: provider, sessionAuth: sessionAuth},
		team:     TeamService{provider: provider, sessionAuth: sessionAuth},
		workflow: WorkflowService{provider: provider, sessionAuth: sessionAuth},
		form:     FormService{provider: provider, sessionAuth: sessionAuth},
		task:     TaskService{provider: provider, sessionAuth: sessionAuth},
		provider: provider,
	}
}

func (a *App) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{
		Logger: log.New(os.Stderr, "", log.LstdFlags), NoColor: false,
	}))

	r.Mount("/auth", a.auth.Routes())
	r.Mount("/user", a.user.Routes())
	r.Mount("/team", a.team.Routes())
	r.Mount("/workflow", a.workflow.Routes())
	r.Mount("/form", a.form.Routes())
	r.Mount("/task", a.task.Routes())

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		utils.WriteSuccess(w)
	})

	return r
}

// requireSession rejects requests made before a user has signed in. Session
// state lives in the provider, which tracks the store's auth events.
func requireSession(provider *state.Provider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		handler := func(w http.ResponseWriter, r *http.Request) {
			if !provider.IsAuthenticated() {
				http.Error(w, "not signed in", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		}
		return http.HandlerFunc(handler)
	}
}
