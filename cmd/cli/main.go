package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/event-rota/cmd/cli/commands"
	"github.com/jakechorley/event-rota/internal/config"
	"github.com/jakechorley/event-rota/pkg/clients/gmailclient"
	"github.com/jakechorley/event-rota/pkg/clients/sheetsclient"
	"github.com/jakechorley/event-rota/pkg/db"
	"github.com/jakechorley/event-rota/pkg/postgres"
	"github.com/jakechorley/event-rota/pkg/redisstore"
	"github.com/jakechorley/event-rota/pkg/utils"
	"github.com/jakechorley/event-rota/pkg/utils/logging"
)

var (
	env     string
	verbose bool
	app     = &commands.AppContext{}
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "cli",
		Short: "Event Rota CLI - Coordinate volunteers across a multi-day event",
		Long:  `A CLI tool for recording volunteer availability, assigning volunteers to tasks and shifts, and notifying them.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app.Database != nil {
				app.Database.Close()
			}
			if app.Logger != nil {
				app.Logger.Sync()
			}
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&env, "env", "e", "", "Environment (required: test, prod, etc.)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show debug logs on the console")
	rootCmd.MarkPersistentFlagRequired("env")

	rootCmd.AddCommand(commands.ToggleAvailabilityCmd(app))
	rootCmd.AddCommand(commands.ListVolunteersCmd(app))
	rootCmd.AddCommand(commands.AssignCmd(app))
	rootCmd.AddCommand(commands.NotifyCmd(app))
	rootCmd.AddCommand(commands.ImportRosterCmd(app))
	rootCmd.AddCommand(commands.SetStatusCmd(app))
	rootCmd.AddCommand(commands.UnassignCmd(app))
	rootCmd.AddCommand(commands.CheckScheduleCmd(app))
	rootCmd.AddCommand(commands.InteractiveCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initApp sets up logger, config, clients, and database
func initApp() error {
	var err error
	app.Ctx = context.Background()

	// Initialize logger
	app.Logger, err = logging.InitLogger(env, verbose)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	app.Logger.Info("Starting application", zap.String("environment", env))

	// Load configuration
	app.Logger.Info("Loading configuration")
	app.Cfg, err = config.LoadWithEnv(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	app.Grid, err = app.Cfg.Grid()
	if err != nil {
		return fmt.Errorf("failed to build event grid: %w", err)
	}
	app.Logger.Debug("Configuration loaded successfully",
		zap.String("event", app.Cfg.Event.Name),
		zap.Strings("days", app.Grid.Days()),
		zap.Strings("shifts", app.Grid.Shifts()))

	// Authenticate against Google
	app.Logger.Info("Loading Google credentials")
	httpClient, err := utils.NewHTTPClientFromFile(app.Ctx, app.Cfg.CredentialsFile, app.Cfg.GmailSender)
	if err != nil {
		return fmt.Errorf("failed to authenticate: %w", err)
	}

	// Initialize sheets client
	app.Logger.Info("Initializing sheets client")
	app.SheetsClient, err = sheetsclient.NewClient(app.Ctx, httpClient)
	if err != nil {
		return fmt.Errorf("failed to create sheets client: %w", err)
	}

	// Initialize gmail client
	app.Logger.Info("Initializing gmail client")
	app.GmailClient, err = gmailclient.NewClient(app.Ctx, httpClient, app.Cfg.GmailUserID, app.Cfg.GmailSender)
	if err != nil {
		return fmt.Errorf("failed to create gmail client: %w", err)
	}

	// Initialize database
	app.Logger.Info("Connecting to database", zap.String("driver", app.Cfg.Database.Driver))
	app.Database, err = openDatabase(app.Ctx, app.Cfg.Database)
	if err != nil {
		return err
	}
	app.Logger.Info("Database initialized successfully")

	return nil
}

func openDatabase(ctx context.Context, cfg config.Database) (db.Database, error) {
	switch cfg.Driver {
	case "postgres":
		database, err := postgres.NewDB(ctx, cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		if err := database.RunMigrations(ctx); err != nil {
			database.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		return database, nil

	case "redis":
		database, err := redisstore.NewDB(ctx, cfg.URL, cfg.Prefix)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		return database, nil
	}

	return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
}
