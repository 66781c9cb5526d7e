package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/authors-api/internal/config"
	"github.com/phrazzld/authors-api/internal/platform/postgres"
	"github.com/phrazzld/authors-api/internal/service"
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	authorService  service.AuthorService
	bookService    service.BookService
	commentService service.CommentService
}

// newApplication creates the stores and services on top of an open database.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	authorStore := postgres.NewPostgresAuthorStore(db, logger)
	bookStore := postgres.NewPostgresBookStore(db, logger)
	commentStore := postgres.NewPostgresCommentStore(db, logger)

	var err error
	app.authorService, err = service.NewAuthorService(db, authorStore, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create author service: %w", err)
	}

	app.bookService, err = service.NewBookService(db, bookStore, authorStore, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create book service: %w", err)
	}

	app.commentService, err = service.NewCommentService(commentStore, bookStore, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create comment service: %w", err)
	}

	logger.Info("application initialized successfully")
	return app, nil
}

// Run serves HTTP until ctx is canceled, then releases the database.
func (app *application) Run(ctx context.Context) error {
	defer app.cleanup()

	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	closeDB(app.db, app.logger)
	app.logger.Info("application shutdown completed")
}
