package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/wordgym/wordgym-api/internal/api"
	apiMiddleware "github.com/wordgym/wordgym-api/internal/api/middleware"
)

func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	authHandler := api.NewAuthHandler(app.userStore, app.jwtService, app.passwordVerifier)
	deckHandler := api.NewDeckHandler(app.deckStore, app.txRunner)
	streakHandler := api.NewStreakHandler(app.streakStore)
	userHandler := api.NewUserHandler(
		app.userStore,
		app.deckStore,
		app.streakStore,
		app.sessionStore,
		app.txRunner,
	)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/refresh", authHandler.Refresh)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Get("/decks", deckHandler.List)
			r.Post("/decks", deckHandler.Create)
			r.Post("/decks/sync", deckHandler.Sync)
			r.Get("/decks/{deckID}", deckHandler.Get)
			r.Put("/decks/{deckID}", deckHandler.Update)
			r.Delete("/decks/{deckID}", deckHandler.Delete)
			r.Post("/decks/{deckID}/cards", deckHandler.CreateCard)
			r.Put("/decks/{deckID}/cards/{cardID}", deckHandler.UpdateCard)
			r.Delete("/decks/{deckID}/cards/{cardID}", deckHandler.DeleteCard)

			r.Get("/streak", streakHandler.Get)
			r.Post("/streak/sync", streakHandler.Sync)

			r.Get("/user/me", userHandler.Me)
			r.Post("/user/sync", userHandler.Sync)
			r.Delete("/user/me", userHandler.Delete)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}
