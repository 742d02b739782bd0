// File: cmd/server/providers.go
package main

import (
	"bookmarked_backend/internal/account"
	"bookmarked_backend/internal/bookshelf"
	"bookmarked_backend/internal/config"
	"bookmarked_backend/internal/jobs"
	"bookmarked_backend/internal/platform/database"
	"bookmarked_backend/internal/platform/metrics"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

func provideDatabase(cfg *config.Config, logger *zap.Logger) (*gorm.DB, func(), error) {
	db, err := database.NewGORM(cfg)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		logger.Info("Executing database cleanup...")
		database.CloseGORMDB(db)
	}
	return db, cleanup, nil
}

// provideMetrics returns nil when METRICS_ENABLED is false; every consumer
// accepts a nil *metrics.Metrics.
func provideMetrics(cfg *config.Config) *metrics.Metrics {
	if !cfg.MetricsEnabled {
		return nil
	}
	return metrics.New()
}

// providePurgers lists every store holding records owned by an account.
func providePurgers(entries bookshelf.Repository) []account.OwnedRecordsPurger {
	return []account.OwnedRecordsPurger{entries}
}

func provideLibraryCounters(accounts account.Repository, entries bookshelf.Repository) jobs.LibraryCounters {
	return jobs.LibraryCounters{Accounts: accounts, Entries: entries}
}
