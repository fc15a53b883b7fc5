package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Skotchmaster/feedback_web/internal/config"
	"github.com/Skotchmaster/feedback_web/internal/db"
	"github.com/Skotchmaster/feedback_web/internal/logging"
	"github.com/Skotchmaster/feedback_web/internal/session"
)

func NewMigrateCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the session table used by SESSION_BACKEND=db",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.EnvFile)
			if err != nil {
				return err
			}
			logger := logging.New(cfg.LogLevel, cfg.AppEnv)

			gdb, err := db.Open(cmd.Context(), cfg.DBDriver, cfg.DatabaseURL)
			if err != nil {
				return err
			}
			if sqlDB, err := gdb.DB(); err == nil {
				defer sqlDB.Close()
			}

			if err := session.Migrate(gdb); err != nil {
				return fmt.Errorf("migrate sessions: %w", err)
			}
			logger.Info().Str("driver", cfg.DBDriver).Msg("migrations applied")
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}
