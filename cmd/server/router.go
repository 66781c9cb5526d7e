package main

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/phrazzld/authors-api/internal/api"
	apiMiddleware "github.com/phrazzld/authors-api/internal/api/middleware"
	"github.com/phrazzld/authors-api/internal/api/shared"
)

// setupRouter creates and configures the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	httpCfg := app.config.HTTP
	r.Use(middleware.RealIP)
	r.Use(apiMiddleware.NewTraceMiddleware(app.logger))
	r.Use(apiMiddleware.NewResponseLogger(app.logger, apiMiddleware.ResponseLoggingConfig{
		LogBodies:     httpCfg.LogResponseBodies,
		MaxBodyLength: httpCfg.MaxLoggedBodyLength,
	}))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: httpCfg.AllowedOrigins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{"Location", shared.TraceIDHeader},
		MaxAge:         300,
	}))
	r.Use(apiMiddleware.NewRateLimiter(httpCfg.RateLimit, httpCfg.RateBurst).Middleware)

	authorHandler := api.NewAuthorHandler(app.authorService, app.logger)
	bookHandler := api.NewBookHandler(app.bookService, app.logger)
	commentHandler := api.NewCommentHandler(app.commentService, app.logger)

	r.Route("/api", func(r chi.Router) {
		r.Route("/authors", func(r chi.Router) {
			r.Get("/", authorHandler.ListAuthors)
			r.Post("/", authorHandler.CreateAuthor)
			r.Get("/search", authorHandler.SearchAuthors)
			r.Get("/{id}", authorHandler.GetAuthor)
			r.Put("/{id}", authorHandler.ReplaceAuthor)
			r.Delete("/{id}", authorHandler.DeleteAuthor)
		})

		r.Route("/books", func(r chi.Router) {
			r.Get("/", bookHandler.ListBooks)
			r.Post("/", bookHandler.CreateBook)
			r.Get("/{id}", bookHandler.GetBook)
			r.Put("/{id}", bookHandler.ReplaceBook)
			r.Patch("/{id}", bookHandler.PatchBook)
			r.Delete("/{id}", bookHandler.DeleteBook)

			r.Get("/{id}/comments", commentHandler.ListComments)
			r.Post("/{id}/comments", commentHandler.CreateComment)
		})
	})

	r.Get("/health", app.handleHealth)

	return r
}

// handleHealth reports whether the database answers a ping.
func (app *application) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := app.db.PingContext(ctx); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusServiceUnavailable, "Database unavailable", err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}
