package cmd

import (
	"github.com/spf13/cobra"

	"github.com/templui/fliptrack/internal/db"
)

func MigrateCmd() *cobra.Command {
	var driver, dsn string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the preference database schema",
	}
	cmd.PersistentFlags().StringVar(&driver, "driver", "sqlite", "database driver: sqlite or pgx")
	cmd.PersistentFlags().StringVar(&dsn, "dsn", "./data/fliptrack.db", "database connection string")

	step := func(use, short string, fn func(cmd *cobra.Command) error) *cobra.Command {
		return &cobra.Command{Use: use, Short: short, Args: cobra.NoArgs, RunE: func(cmd *cobra.Command, args []string) error {
			return fn(cmd)
		}}
	}

	cmd.AddCommand(step("up", "Apply pending migrations", func(cmd *cobra.Command) error {
		conn, err := db.Open(cmd.Context(), driver, dsn)
		if err != nil {
			return err
		}
		defer db.Close(conn)
		return db.RunMigrations(cmd.Context(), conn.DB, driver)
	}))
	cmd.AddCommand(step("down", "Roll back the latest migration", func(cmd *cobra.Command) error {
		conn, err := db.Open(cmd.Context(), driver, dsn)
		if err != nil {
			return err
		}
		defer db.Close(conn)
		return db.MigrateDown(cmd.Context(), conn.DB, driver)
	}))

	return cmd
}
