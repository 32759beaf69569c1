package cli

import (
	"fmt"

	"backend-tripline/internal/db"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the PostgreSQL schema",
	Long: `Apply the embedded schema to the database at POSTGRES_URL.

Every statement is idempotent, so running it against an up to date
database changes nothing.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		q, closeFn, err := openPostgres(loadConfig())
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer closeFn()

		ctx, cancel := withTimeout(cmd)
		defer cancel()
		if err := db.Migrate(ctx, q); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "schema applied")
		return nil
	},
}
