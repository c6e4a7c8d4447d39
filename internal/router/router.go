package router

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/AsgharZaheer/todo-app-chatbot/internal/handlers"
	"github.com/AsgharZaheer/todo-app-chatbot/internal/middleware"
)

func NewRouter(deps *handlers.Deps, auth *middleware.Middleware) chi.Router {
	r := chi.NewRouter()

	lm := middleware.NewLoggerMiddleware(deps.Log)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(lm.LoggerMiddleware)
	r.Use(chimiddleware.Recoverer)

	hh := handlers.NewHealthHandlers(deps)
	ch := handlers.NewChatHandlers(deps)
	th := handlers.NewTaskHandlers(deps)

	r.Get("/healthz", hh.Healthz)
	r.Route("/api/{userID}", func(r chi.Router) {
		r.Use(auth.FirebaseAuth)
		r.Mount("/tasks", th.TaskRoutes())
		r.Mount("/", ch.ChatRoutes())
	})
	return r
}
