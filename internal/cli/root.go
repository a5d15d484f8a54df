// Package cli implements formsctl, the administrative command line for the form builder.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"formbuilder/internal/config"
	"formbuilder/internal/db"
	"formbuilder/internal/logging"
)

// env is the state shared by every command once the root pre-run has loaded it.
type env struct {
	cfg    *config.Config
	logger logging.Logger
	gormDB *gorm.DB
}

// openDB connects lazily so commands that fail flag validation never touch the store.
func (e *env) openDB() (*gorm.DB, error) {
	if e.gormDB != nil {
		return e.gormDB, nil
	}
	gormDB, err := db.Open(e.cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	e.gormDB = gormDB
	return gormDB, nil
}

func (e *env) close() {
	if e.gormDB == nil {
		return
	}
	if err := db.Close(e.gormDB); err != nil {
		e.logger.Warn(context.Background(), "close database", "error", err)
	}
	e.gormDB = nil
}

// NewRootCmd builds the formsctl command tree.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&env{logger: logging.Nop()})
}

func newRootCmd(e *env) *cobra.Command {
	var logLevel string

	root := &cobra.Command{
		Use:   "formsctl",
		Short: "Administer the form builder store",
		Long: `formsctl runs schema migrations and account maintenance against the
database configured for the form builder server (CONFIG_FILE, .env and environment).`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if cmd.Flags().Changed("log-level") {
				cfg.LogLevel = logLevel
			}
			e.cfg = cfg
			e.logger = logging.NewWithWriter(cmd.ErrOrStderr(), cfg.LogLevel)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	root.AddCommand(newMigrateCmd(e))
	root.AddCommand(newUserCmd(e))
	root.AddCommand(newSessionsCmd(e))
	return root
}

// Execute runs formsctl with the process arguments.
func Execute() error {
	e := &env{logger: logging.Nop()}
	defer e.close()
	return newRootCmd(e).Execute()
}
