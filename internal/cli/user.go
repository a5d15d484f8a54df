package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"formbuilder/internal/auth"
	"formbuilder/internal/model"
	"formbuilder/internal/repository"
	"formbuilder/internal/service"
)

func newUserCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
	}
	cmd.AddCommand(newUserCreateCmd(e))
	cmd.AddCommand(newUserListCmd(e))
	return cmd
}

func newUserCreateCmd(e *env) *cobra.Command {
	var email, password, role string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user account",
		Long: `Create a user account, typically the first administrator.

Examples:
  formsctl user create --email admin@example.com --password s3cret! --role admin`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			gormDB, err := e.openDB()
			if err != nil {
				return err
			}
			// Sessions and revocation are never touched by Register.
			authService := service.NewAuthService(
				repository.NewUserRepository(gormDB),
				repository.NewSessionRepository(gormDB),
				auth.NewJWTService(e.cfg.JWTSecret, e.cfg.TokenTTL, e.cfg.ResetTokenTTL),
				auth.NewTokenStore(nil),
				e.cfg.BcryptCost,
				e.logger,
			)

			user, err := authService.Register(cmd.Context(), email, password, model.Role(role))
			if err != nil {
				return fmt.Errorf("failed to create user: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Created %s %s (id: %d)\n", user.Role, user.Email, user.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password (6-20 characters)")
	cmd.Flags().StringVar(&role, "role", string(model.RoleUser), "Account role (user or admin)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newUserListCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List user accounts",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			gormDB, err := e.openDB()
			if err != nil {
				return err
			}
			users, err := repository.NewUserRepository(gormDB).List(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list users: %w", err)
			}
			printUsers(cmd, users)
			return nil
		},
	}
}

func printUsers(cmd *cobra.Command, users []model.User) {
	out := cmd.OutOrStdout()
	if len(users) == 0 {
		fmt.Fprintln(out, "No users found.")
		return
	}

	fmt.Fprintf(out, "  %-6s  %-32s  %-6s  %s\n", "ID", "Email", "Role", "Created")
	fmt.Fprintln(out, strings.Repeat("─", 70))
	for _, u := range users {
		fmt.Fprintf(out, "  %-6d  %-32s  %-6s  %s\n", u.ID, u.Email, u.Role, u.CreatedAt.Format("2006-01-02 15:04"))
	}
	fmt.Fprintln(out, strings.Repeat("─", 70))
	fmt.Fprintf(out, "  %d users\n", len(users))
}
