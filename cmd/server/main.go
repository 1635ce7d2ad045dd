package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/HappyHacker143/taskflow/internal/apperror"
	"github.com/HappyHacker143/taskflow/internal/config"
	"github.com/HappyHacker143/taskflow/internal/db"
	"github.com/HappyHacker143/taskflow/internal/httpapi"
	"github.com/HappyHacker143/taskflow/internal/logging"
	"github.com/HappyHacker143/taskflow/internal/models"
	"github.com/HappyHacker143/taskflow/internal/service"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:          "taskflow",
	Short:        "Project and task tracker for teams",
	SilenceUsage: true,
	RunE:         runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API (default)",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Bring the database schema up to date",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, logger, database, err := bootstrap()
		if err != nil {
			return err
		}

		status, err := db.Status(database)
		if err != nil {
			return err
		}
		logger.Info("schema is up to date",
			"dialect", status.Dialect,
			"version", status.CurrentVersion,
			"dirty", status.Dirty,
		)
		return nil
	},
}

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create a superuser account with the admin role",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, database, err := bootstrap()
		if err != nil {
			return err
		}

		username, _ := cmd.Flags().GetString("username")
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")
		firstName, _ := cmd.Flags().GetString("first-name")
		lastName, _ := cmd.Flags().GetString("last-name")

		svc := newService(cfg, database)
		user, err := svc.CreateUser(cmd.Context(), service.CreateUserInput{
			Username:    username,
			Email:       email,
			FirstName:   firstName,
			LastName:    lastName,
			Password1:   password,
			Password2:   password,
			Role:        string(models.RoleAdmin),
			IsSuperuser: true,
		})
		if err != nil {
			return describe(err)
		}

		logger.Info("admin created", "id", user.ID, "username", user.Username)
		return nil
	},
}

var deleteUserCmd = &cobra.Command{
	Use:   "delete-user",
	Short: "Permanently delete an account and everything it created",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, database, err := bootstrap()
		if err != nil {
			return err
		}

		username, _ := cmd.Flags().GetString("username")
		svc := newService(cfg, database)

		user, err := svc.FindUserByUsername(cmd.Context(), username)
		if err != nil {
			return describe(err)
		}
		if err := svc.DeleteUser(cmd.Context(), user.ID); err != nil {
			return describe(err)
		}

		logger.Info("user deleted", "id", user.ID, "username", user.Username)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file (defaults to $CONFIG_FILE)")

	createAdminCmd.Flags().String("username", "", "login of the new admin")
	createAdminCmd.Flags().String("email", "", "email of the new admin")
	createAdminCmd.Flags().String("password", "", "password of the new admin")
	createAdminCmd.Flags().String("first-name", "Admin", "first name")
	createAdminCmd.Flags().String("last-name", "User", "last name")
	_ = createAdminCmd.MarkFlagRequired("username")
	_ = createAdminCmd.MarkFlagRequired("password")

	deleteUserCmd.Flags().String("username", "", "login of the account to delete")
	_ = deleteUserCmd.MarkFlagRequired("username")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(createAdminCmd)
	rootCmd.AddCommand(deleteUserCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// bootstrap loads the config, sets up logging and returns a migrated database.
func bootstrap() (config.Config, *slog.Logger, *gorm.DB, error) {
	path := configPath
	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}

	cfg, err := config.LoadFile(path)
	if err != nil {
		return config.Config{}, nil, nil, fmt.Errorf("config error: %w", err)
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stdout)

	database, err := db.Connect(cfg, logger)
	if err != nil {
		return config.Config{}, nil, nil, fmt.Errorf("database connection error: %w", err)
	}
	if err := db.Migrate(database); err != nil {
		return config.Config{}, nil, nil, err
	}

	return cfg, logger, database, nil
}

func newService(cfg config.Config, database *gorm.DB) *service.Service {
	return service.New(database, service.Options{
		Location:   cfg.Location(),
		SessionTTL: cfg.SessionTTL,
	})
}

// describe adds the field messages of a validation error to its text.
func describe(err error) error {
	fields := apperror.FieldErrors(err)
	if len(fields) == 0 {
		return err
	}
	return fmt.Errorf("%w: %v", err, fields)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, database, err := bootstrap()
	if err != nil {
		return err
	}

	handler := httpapi.NewHandler(newService(cfg, database), logger, httpapi.CookieConfig{
		Name:   cfg.SessionCookieName,
		Secure: cfg.SessionCookieSecure,
	})

	// -- Router --
	mux := http.NewServeMux()
	mux.HandleFunc("/healthcheck", httpapi.Healthcheck)
	mux.Handle("/", handler)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           httpapi.LogRequests(logger, mux),
		ReadHeaderTimeout: 5 * time.Second,
		ErrorLog:          logging.StdLogger(logger, slog.LevelError),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("starting server", "port", cfg.Port)
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
