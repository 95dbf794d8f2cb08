package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"text/tabwriter"

	"recycle-backend/internal/config"
	"recycle-backend/internal/migrations"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the database schema",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply every pending revision",
	RunE: withRunner(func(ctx context.Context, runner *migrations.Runner) error {
		n, err := runner.Up(ctx)
		if err != nil {
			return err
		}
		log.Info().Int("applied", n).Msg("Migrations applied")
		return nil
	}),
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Revert the head revision",
	RunE: withRunner(func(ctx context.Context, runner *migrations.Runner) error {
		rev, err := runner.Down(ctx)
		if err != nil {
			return err
		}
		if rev != "" {
			log.Info().Str("revision", rev).Msg("Revision reverted")
		}
		return nil
	}),
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which revisions are applied",
	RunE: withRunner(func(ctx context.Context, runner *migrations.Runner) error {
		statuses, err := runner.Status(ctx)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "REVISION\tAPPLIED\tDESCRIPTION")
		for _, s := range statuses {
			fmt.Fprintf(tw, "%s\t%t\t%s\n", s.Revision, s.Applied, s.Description)
		}
		return tw.Flush()
	}),
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd, migrateStatusCmd)
}

// withRunner opens the database through database/sql and hands a runner to fn
func withRunner(fn func(ctx context.Context, runner *migrations.Runner) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		db, err := openSQL(cfg.Database)
		if err != nil {
			return err
		}
		defer db.Close()

		return fn(cmd.Context(), migrations.NewRunner(db))
	}
}

func openSQL(cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("pgx", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}
