// File: cmd/server/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"log" // Standard log for critical startup/shutdown messages before/after zap is active
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"bookmarked_backend/internal/account"
	"bookmarked_backend/internal/app"
	"bookmarked_backend/internal/config"
	"bookmarked_backend/internal/events"
	"bookmarked_backend/internal/platform/database"
	"bookmarked_backend/internal/platform/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	root := &cobra.Command{
		Use:          "bookmarked",
		Short:        "Bookmarked API server",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update database tables and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatabase(func(db *gorm.DB, appLogger *zap.Logger) error {
				if err := app.AutoMigrate(db); err != nil {
					return fmt.Errorf("auto-migrate: %w", err)
				}
				appLogger.Info("Database migration completed.")
				return nil
			})
		},
	}

	var promoteEmail string
	promoteCmd := &cobra.Command{
		Use:   "promote-admin",
		Short: "Grant the admin role to the account registered with an email",
		RunE: func(cmd *cobra.Command, args []string) error {
			if promoteEmail == "" {
				return errors.New("--email is required")
			}
			return withDatabase(func(db *gorm.DB, appLogger *zap.Logger) error {
				svc := account.NewService(account.NewGORMRepository(db), nil, events.NoopPublisher{}, appLogger)
				acc, err := svc.PromoteByEmail(context.Background(), promoteEmail)
				if err != nil {
					return fmt.Errorf("promote %s: %w", promoteEmail, err)
				}
				appLogger.Info("Account is now an admin", zap.String("accountID", acc.ID.String()), zap.String("email", acc.Email))
				return nil
			})
		},
	}
	promoteCmd.Flags().StringVar(&promoteEmail, "email", "", "Email of the account to promote")

	root.AddCommand(serveCmd, migrateCmd, promoteCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

// withDatabase runs fn against a freshly opened database for one-shot commands.
func withDatabase(fn func(db *gorm.DB, appLogger *zap.Logger) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	appLogger, err := logger.New(cfg)
	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}
	defer appLogger.Sync() //nolint:errcheck

	db, err := database.NewGORM(cfg)
	if err != nil {
		return err
	}
	defer database.CloseGORMDB(db)

	return fn(db, appLogger)
}

func runServer() error {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}
	appLogger, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize logger: %v", err)
	}
	defer appLogger.Sync() //nolint:errcheck

	// Development databases are migrated on boot; production runs `migrate`.
	if !cfg.IsRelease() {
		if err := migrateOnBoot(cfg, appLogger); err != nil {
			return err
		}
	}

	server, cleanup, err := initializeServer(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize server", zap.Error(err))
	}
	defer cleanup()

	serverErr := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		appLogger.Info("Received signal, shutting down server", zap.String("signal", sig.String()))
	case err := <-serverErr:
		appLogger.Error("Server failed", zap.Error(err))
		return err
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.ServerTimeout)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", zap.Error(err))
	} else {
		appLogger.Info("Server shutdown complete.")
	}
	return nil
}

func migrateOnBoot(cfg *config.Config, appLogger *zap.Logger) error {
	db, err := database.NewGORM(cfg)
	if err != nil {
		return err
	}
	defer database.CloseGORMDB(db)
	if err := app.AutoMigrate(db); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	appLogger.Info("Database schema is up to date.")
	return nil
}
