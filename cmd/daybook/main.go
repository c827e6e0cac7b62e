package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"daybook/internal/config"
	"daybook/internal/holiday"
	"daybook/internal/linkage"
	"daybook/internal/store"
	"daybook/internal/watcher"
)

var (
	cfgFile string
	verbose bool
	version = "dev"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "daybook",
		Short:   "Personal notes, todos and calendar over Postgres",
		Long:    `Daybook keeps per-user notes, todos and calendar events in PostgreSQL and maintains the shadow calendar events that mirror LeetCode notes.`,
		Version: version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Setup logging
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: level,
			})))
		},
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	rootCmd.AddCommand(
		serveCmd(),
		reconcileCmd(),
		statusCmd(),
		migrateCmd(),
		initCmd(),
		noteCmd(),
		todoCmd(),
		calCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the background reconcile daemon",
		Long:  `Runs a daemon that periodically repairs missing shadow events and reloads holiday filters when the config file changes.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			cfg, err := config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			db, err := store.New(ctx, &cfg.Database)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer db.Close()

			sync := linkage.New(db, db)
			holidays := holiday.NewClient(cfg.Holiday)

			// Repair anything left behind by a previous crash before the
			// schedule takes over.
			slog.Info("performing initial reconcile")
			if _, err := sync.Reconcile(ctx, cfg.User); err != nil {
				slog.Error("initial reconcile failed", "error", err)
			}

			scheduler := cron.New(cron.WithChain(
				cron.SkipIfStillRunning(cron.DiscardLogger),
			))
			_, err = scheduler.AddFunc(cfg.Sync.ReconcileSchedule, func() {
				if _, err := sync.Reconcile(ctx, cfg.User); err != nil {
					slog.Error("scheduled reconcile failed", "error", err)
				}
			})
			if err != nil {
				return fmt.Errorf("invalid reconcile schedule %q: %w", cfg.Sync.ReconcileSchedule, err)
			}
			scheduler.Start()
			defer scheduler.Stop()

			// Watch the config file so holiday filter edits apply without a
			// restart.
			configPath := config.ConfigFilePath(cfgFile)
			w, err := watcher.NewConfigWatcher(configPath, cfg.Sync.DebounceMs)
			if err != nil {
				return fmt.Errorf("failed to create config watcher: %w", err)
			}
			if err := w.Start(ctx); err != nil {
				return fmt.Errorf("failed to start config watcher: %w", err)
			}

			// Handle graceful shutdown
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

			slog.Info("daemon started",
				"user", cfg.User,
				"schedule", cfg.Sync.ReconcileSchedule,
				"config", configPath)
			fmt.Println("Reconcile daemon running. Press Ctrl+C to stop.")

			for {
				select {
				case <-sigCh:
					slog.Info("shutting down...")
					w.Stop()
					return nil

				case event := <-w.Events():
					slog.Debug("config event", "path", event.Path, "type", event.Type)
					if event.Type == watcher.EventRemove {
						slog.Warn("config file removed, keeping last known filters")
						continue
					}
					reloaded, err := config.Load(cfgFile)
					if err != nil {
						slog.Error("config reload failed, keeping last known filters", "error", err)
						continue
					}
					holidays.UpdateFilters(reloaded.Holiday.Country, reloaded.Holiday.AllowList)
					slog.Info("holiday filters reloaded",
						"country", reloaded.Holiday.Country,
						"allow_list", len(reloaded.Holiday.AllowList))
				}
			}
		},
	}
}

func reconcileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "One-time repair of missing shadow events, then exit",
		Long:  `Scans the user's LeetCode notes, re-creates any missing shadow calendar events, and exits.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			cfg, err := config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			db, err := store.New(ctx, &cfg.Database)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer db.Close()

			sync := linkage.New(db, db)

			missing, scanned, err := sync.MissingShadows(ctx, cfg.User)
			if err != nil {
				return fmt.Errorf("reconcile scan failed: %w", err)
			}
			if len(missing) == 0 {
				fmt.Printf("Scanned %d notes, nothing to repair.\n", scanned)
				return nil
			}

			bar := progressbar.Default(int64(len(missing)), "repairing shadows")
			for i := range missing {
				if err := sync.RepairShadow(ctx, cfg.User, &missing[i]); err != nil {
					return fmt.Errorf("repair shadow for %q: %w", missing[i].Title, err)
				}
				_ = bar.Add(1)
			}

			fmt.Printf("Scanned %d notes, repaired %d shadow events.\n", scanned, len(missing))
			return nil
		},
	}
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show connection status and collection counts",
		Long:  `Shows the current database connection status, per-collection document counts, and the last write time.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			cfg, err := config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			db, err := store.New(ctx, &cfg.Database)
			if err != nil {
				fmt.Printf("Database Status: Disconnected\n")
				fmt.Printf("Error: %v\n", err)
				return nil
			}
			defer db.Close()

			status, err := db.GetStatus(ctx)
			if err != nil {
				return fmt.Errorf("failed to get status: %w", err)
			}

			fmt.Println("=== Daybook Status ===")
			fmt.Printf("Database Status: Connected\n")
			fmt.Printf("  Host: %s\n", cfg.Database.Host)
			fmt.Printf("  Database: %s\n", cfg.Database.Database)
			fmt.Println()
			fmt.Printf("User: %s\n", cfg.User)
			fmt.Println()
			fmt.Printf("Documents:\n")
			fmt.Printf("  Notes: %d\n", status.Notes)
			fmt.Printf("  Todos: %d\n", status.Todos)
			fmt.Printf("  Events: %d\n", status.Events)
			if status.LastWrite != nil {
				fmt.Printf("  Last Write: %s\n", status.LastWrite.Format(time.RFC3339))
			}

			return nil
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long:  `Runs all pending database migrations.`,
	}

	migrationsDir := ""
	showStatus := false
	cmd.Flags().StringVar(&migrationsDir, "dir", "migrations", "migrations directory")
	cmd.Flags().BoolVar(&showStatus, "status", false, "print migration status instead of applying")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		db, err := store.New(ctx, &cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer db.Close()

		// Resolve migrations directory
		if !filepath.IsAbs(migrationsDir) {
			// Try relative to executable first
			exe, _ := os.Executable()
			exeDir := filepath.Dir(exe)
			if _, err := os.Stat(filepath.Join(exeDir, migrationsDir)); err == nil {
				migrationsDir = filepath.Join(exeDir, migrationsDir)
			} else {
				// Try relative to current directory
				cwd, _ := os.Getwd()
				migrationsDir = filepath.Join(cwd, migrationsDir)
			}
		}

		if showStatus {
			return db.MigrationStatus(migrationsDir)
		}

		if err := db.RunMigrations(migrationsDir); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}

		fmt.Println("Migrations completed successfully.")
		return nil
	}

	return cmd
}

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Interactive setup to create config file",
		Long:  `Interactively creates a configuration file and tells you how to verify the database connection.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			reader := bufio.NewReader(os.Stdin)

			fmt.Println("=== Daybook Setup ===")
			fmt.Println()

			fmt.Print("Your email (used as the document owner key): ")
			user, _ := reader.ReadString('\n')
			user = strings.TrimSpace(user)
			if user == "" {
				return fmt.Errorf("user email is required")
			}

			fmt.Println("\nDatabase Configuration:")
			fmt.Print("  Host: ")
			host, _ := reader.ReadString('\n')
			host = strings.TrimSpace(host)

			fmt.Print("  Port [5432]: ")
			portStr, _ := reader.ReadString('\n')
			portStr = strings.TrimSpace(portStr)
			if portStr == "" {
				portStr = "5432"
			}
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return fmt.Errorf("invalid port %q: %w", portStr, err)
			}

			fmt.Print("  User: ")
			dbUser, _ := reader.ReadString('\n')
			dbUser = strings.TrimSpace(dbUser)

			fmt.Print("  Password: ")
			password, _ := reader.ReadString('\n')
			password = strings.TrimSpace(password)

			fmt.Print("  Database name: ")
			dbName, _ := reader.ReadString('\n')
			dbName = strings.TrimSpace(dbName)
			if dbName == "" {
				return fmt.Errorf("database name is required")
			}

			fmt.Print("  SSL mode [require]: ")
			sslMode, _ := reader.ReadString('\n')
			sslMode = strings.TrimSpace(sslMode)
			if sslMode == "" {
				sslMode = "require"
			}

			fmt.Print("\nHoliday country code [US]: ")
			country, _ := reader.ReadString('\n')
			country = config.NormalizeCountry(country)
			if country == "" {
				country = "US"
			}

			cfg := config.DefaultConfig()
			cfg.User = user
			cfg.Database.Host = host
			cfg.Database.Port = port
			cfg.Database.User = dbUser
			cfg.Database.Password = "${DAYBOOK_DB_PASSWORD}"
			cfg.Database.Database = dbName
			cfg.Database.SSLMode = sslMode
			cfg.Holiday.Country = country

			configDir, err := config.GetStateDir()
			if err != nil {
				return err
			}
			configPath := filepath.Join(configDir, "config.yaml")

			if err := config.WriteTemplate(configPath, cfg); err != nil {
				return err
			}

			fmt.Printf("\nConfig file written to: %s\n", configPath)
			fmt.Printf("\nIMPORTANT: Set the DAYBOOK_DB_PASSWORD environment variable:\n")
			fmt.Printf("  export DAYBOOK_DB_PASSWORD='%s'\n", password)
			fmt.Println("\nTo test the connection, run: daybook status")
			fmt.Println("To run migrations, run: daybook migrate")
			fmt.Println("To start the daemon, run: daybook serve")

			return nil
		},
	}
}
