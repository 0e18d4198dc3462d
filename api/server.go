package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"divnest/app"
	"divnest/ports"
)

// App represents the HTTP API application
type App struct {
	router  *chi.Mux
	service *app.PermutationService
	results ports.ResultRepository // optional
}

// Config holds API application configuration
type Config struct {
	Port string
}

// NewApp creates a new API application
func NewApp(service *app.PermutationService, results ports.ResultRepository) *App {
	a := &App{
		router:  chi.NewRouter(),
		service: service,
		results: results,
	}
	a.setupMiddleware()
	a.setupRoutes()
	return a
}

// setupMiddleware configures HTTP middleware
func (a *App) setupMiddleware() {
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Compress(5))
}

// setupRoutes configures the application routes
func (a *App) setupRoutes() {
	a.router.Get("/healthz", a.handleHealth)
	a.router.Post("/api/tests", a.handleRunTest)
	a.router.Get("/api/tests", a.handleListResults)
	a.router.Get("/api/tests/{id}", a.handleGetResult)
}

// Router exposes the configured router, mainly for tests.
func (a *App) Router() http.Handler {
	return a.router
}

// Start runs the HTTP server on the configured port
func (a *App) Start(config Config) error {
	return http.ListenAndServe(":"+config.Port, a.router)
}
