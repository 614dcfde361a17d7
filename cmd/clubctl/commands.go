package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"clubhub/internal/adapters/storage"
	accountStore "clubhub/internal/adapters/storage/account"
	sessionStore "clubhub/internal/adapters/storage/session"
	"clubhub/internal/application/orchestrators"
	"clubhub/internal/config"
	"clubhub/internal/logging"
)

// newRootCmd builds the command tree. Every subcommand shares --db.
func newRootCmd() *cobra.Command {
	var dbPath string
	rootCmd := &cobra.Command{
		Use:           "clubctl",
		Short:         "ClubHub operator tool",
		Long:          "clubctl applies migrations, creates accounts and purges sessions on the ClubHub database.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			logging.Setup(logging.Options{Level: envOr("CLUBHUB_LOG_LEVEL", "warn")}, os.Stderr)
			if dbPath != "" {
				return nil
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			dbPath = cfg.DBPath
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite database path (default $CLUBHUB_DB_PATH or clubhub.db)")

	rootCmd.AddCommand(
		newMigrateCmd(&dbPath),
		newCreateUserCmd(&dbPath),
		newPurgeSessionsCmd(&dbPath),
	)
	return rootCmd
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// openMigrated opens path and applies pending migrations.
func openMigrated(ctx context.Context, path string) (*sql.DB, error) {
	db, err := storage.Open(path)
	if err != nil {
		return nil, err
	}
	if err := storage.MigrateDB(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func newMigrateCmd(dbPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			db, err := openMigrated(ctx, *dbPath)
			if err != nil {
				return err
			}
			defer db.Close()
			v, err := storage.SchemaVersion(ctx, db)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is at schema version %d\n", *dbPath, v)
			return nil
		},
	}
}

func newCreateUserCmd(dbPath *string) *cobra.Command {
	var email, name, role, password string
	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create an account with the given role",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			db, err := openMigrated(ctx, *dbPath)
			if err != nil {
				return err
			}
			defer db.Close()

			acct, err := orchestrators.ExecuteCreateAccount(ctx, orchestrators.CreateAccountInput{
				FullName: name,
				Email:    email,
				Password: password,
				Role:     role,
			}, orchestrators.CreateAccountDeps{
				AccountStore: accountStore.NewSQLiteStore(db),
				GenerateID:   func() string { return uuid.New().String() },
				Now:          time.Now,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s %s (%s)\n", acct.Role, acct.Email, acct.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "login email")
	cmd.Flags().StringVar(&name, "name", "", "full name")
	cmd.Flags().StringVar(&role, "role", "player", "player, coach, medicalStaff, trainingManagement, manager or admin")
	cmd.Flags().StringVar(&password, "password", "", "initial password (min 6 characters)")
	for _, f := range []string{"email", "name", "password"} {
		_ = cmd.MarkFlagRequired(f)
	}
	return cmd
}

func newPurgeSessionsCmd(dbPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "purge-sessions",
		Short: "Delete expired and logged-out sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			db, err := openMigrated(ctx, *dbPath)
			if err != nil {
				return err
			}
			defer db.Close()

			n, err := orchestrators.ExecutePurgeSessions(ctx, orchestrators.PurgeSessionsDeps{
				SessionStore: sessionStore.NewSQLiteStore(db),
				Now:          time.Now,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d sessions\n", n)
			return nil
		},
	}
}
