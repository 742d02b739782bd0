// File: cmd/server/wire.go
//go:build wireinject
// +build wireinject

package main

import (
	"bookmarked_backend/internal/account"
	"bookmarked_backend/internal/admin"
	"bookmarked_backend/internal/app"
	"bookmarked_backend/internal/auth"
	"bookmarked_backend/internal/bookshelf"
	"bookmarked_backend/internal/catalog"
	"bookmarked_backend/internal/config"
	"bookmarked_backend/internal/events"
	"bookmarked_backend/internal/jobs"
	"bookmarked_backend/internal/middleware"
	"bookmarked_backend/internal/session"

	"github.com/google/wire"
	"go.uber.org/zap"
)

// initializeServer is the main Wire injector.
func initializeServer(cfg *config.Config, logger *zap.Logger) (*app.Server, func(), error) {
	wire.Build(
		// Platform Layer
		provideDatabase,
		provideMetrics,
		events.NewPublisher,

		// Sessions
		session.NewStore,
		session.NewBlocklist,
		session.NewIssuer,

		// Stores and services
		account.NewGORMRepository,
		bookshelf.NewGORMRepository,
		providePurgers,
		account.NewService,
		wire.Bind(new(account.Service), new(*account.ServiceImplementation)),
		bookshelf.NewService,
		wire.Bind(new(bookshelf.Service), new(*bookshelf.ServiceImplementation)),
		wire.Bind(new(admin.EntryCounter), new(*bookshelf.ServiceImplementation)),

		// Auth
		auth.NewGoogleProvider,
		wire.Bind(new(auth.IdentityProvider), new(*auth.GoogleProvider)),
		auth.NewProvisioningService,
		wire.Bind(new(auth.Provisioner), new(*auth.ProvisioningService)),
		wire.Bind(new(middleware.PrincipalResolver), new(*auth.ProvisioningService)),

		// Catalog
		catalog.NewOpenLibraryClient,
		wire.Bind(new(catalog.Searcher), new(*catalog.OpenLibraryClient)),

		// Handlers
		auth.NewHandler,
		bookshelf.NewHandler,
		admin.NewHandler,
		catalog.NewHandler,
		wire.Struct(new(app.Handlers), "*"),

		// Jobs
		provideLibraryCounters,
		jobs.NewStatsJob,

		// Application Layer
		app.NewServer,
	)
	return nil, nil, nil
}
