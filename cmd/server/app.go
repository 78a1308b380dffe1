package main

import (
	"database/sql"
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/revisio/revisio-api/internal/api"
	"github.com/revisio/revisio-api/internal/config"
	"github.com/revisio/revisio-api/internal/domain"
	"github.com/revisio/revisio-api/internal/platform/postgres"
	"github.com/revisio/revisio-api/internal/service/progress"
)

// application holds the shared application dependencies: one series store,
// one catalog per item kind, and one lifecycle engine per kind sharing the
// generic implementation.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB
	router chi.Router
}

// newApplication wires all dependencies into a ready-to-serve application.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) *application {
	seriesStore := postgres.NewSeriesStore(db, logger)

	flashcardCatalog := postgres.NewCatalogStore(db, domain.KindFlashcard, logger)
	choiceCatalog := postgres.NewCatalogStore(db, domain.KindChoice, logger)
	tableCatalog := postgres.NewCatalogStore(db, domain.KindTable, logger)

	engineOpts := []progress.Option{
		progress.WithSaveRetries(cfg.Progress.SaveRetries),
	}
	if cfg.Progress.AutoCompleteActive {
		engineOpts = append(engineOpts, progress.WithAutoCompleteActive())
	}

	flashcardService := progress.NewService(
		domain.KindFlashcard, seriesStore, flashcardCatalog, logger, engineOpts...)
	choiceService := progress.NewService(
		domain.KindChoice, seriesStore, choiceCatalog, logger,
		append(engineOpts, progress.WithAnswerKey(choiceCatalog))...)
	tableService := progress.NewService(
		domain.KindTable, seriesStore, tableCatalog, logger, engineOpts...)

	router := api.NewRouter(
		api.NewSeriesHandler(domain.KindFlashcard, flashcardService, logger),
		api.NewSeriesHandler(domain.KindChoice, choiceService, logger),
		api.NewSeriesHandler(domain.KindTable, tableService, logger),
	)

	return &application{
		config: cfg,
		logger: logger,
		db:     db,
		router: router,
	}
}
