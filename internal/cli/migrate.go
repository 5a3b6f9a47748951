package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/grazioso/shelter/internal/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage ticket database migrations",
	Long:  `Apply the embedded schema migrations to the ticket database.`,
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Run all pending migrations",
	Long:  `Apply all pending migrations and print the resulting schema version.`,
	RunE:  runMigrateUp,
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd)
}

func runMigrateUp(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	fmt.Fprintf(cmd.OutOrStdout(), "🔄 Running migrations on %s...\n", cfg.SQLDatabase.URI)

	// Connect applies pending migrations
	if _, err := connectTickets(ctx); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	version, dirty, err := db.MigrationVersion(ticketStore.DB())
	if err != nil {
		return fmt.Errorf("failed to read migration version: %w", err)
	}
	if dirty {
		return fmt.Errorf("database is dirty at version %d, fix it manually before migrating again", version)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s✅ Migrations completed successfully!%s Schema version: %s\n", SuccessStyle, Reset, FormatCount(int(version)))
	return nil
}
