package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"formbuilder/internal/repository"
)

func newSessionsCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Maintain login sessions",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "purge",
		Short: "Delete expired sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			gormDB, err := e.openDB()
			if err != nil {
				return err
			}
			n, err := repository.NewSessionRepository(gormDB).DeleteExpired(cmd.Context(), time.Now())
			if err != nil {
				return fmt.Errorf("failed to purge sessions: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Removed %d expired sessions\n", n)
			return nil
		},
	})
	return cmd
}
