package cli

import (
	"fmt"

	"shelter-operations/internal/adapters/storage"

	"github.com/spf13/cobra"
)

func newMigrateCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema (postgres or sqlite)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := storage.Migrate(cmd.Context(), storageOptions(app)); err != nil {
				return err
			}
			fmt.Fprintf(app.out, "schema applied (%s)\n", app.Config.DBDriver)
			return nil
		},
	}
}
