package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"formbuilder/internal/db"
)

func newMigrateCmd(e *env) *cobra.Command {
	var reset bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the schema",
		Long: `Create or update every table the server needs.

Examples:
  formsctl migrate
  formsctl migrate --reset`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			gormDB, err := e.openDB()
			if err != nil {
				return err
			}
			if reset {
				e.logger.Warn(cmd.Context(), "dropping all tables")
				if err := db.Reset(gormDB); err != nil {
					return err
				}
			}
			if err := db.Migrate(gormDB); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "✓ Schema is up to date")
			return nil
		},
	}
	cmd.Flags().BoolVar(&reset, "reset", false, "Drop every table before migrating")
	return cmd
}
