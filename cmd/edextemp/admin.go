package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/uttaradit-pharmacy/edextemp/internal/cli"
	"github.com/uttaradit-pharmacy/edextemp/internal/db"
	"github.com/uttaradit-pharmacy/edextemp/internal/logger"
	"github.com/uttaradit-pharmacy/edextemp/internal/services"
	"gorm.io/gorm"
)

func newMigrateCommand(state *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDatabase(state, func(_ *gorm.DB) error {
				logger.Infof(cmd.Context(), "migrations applied (driver: %s)", state.cfg.Database.Driver)
				return nil
			})
		},
	}
}

func newSeedCommand(state *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the bootstrap admin and sample formulas on an empty database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDatabase(state, func(database *gorm.DB) error {
				repositories := db.NewRepositories(database)
				result, err := services.NewSeedService(repositories.Users, repositories.Formulas).Seed()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "admin created: %t, formulas created: %d\n", result.AdminCreated, result.FormulasCreated)
				return nil
			})
		},
	}
}

func newResetPasswordCommand(state *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "reset-password <pha_id>",
		Short: "Issue a temporary password and force a change at next login",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatabase(state, func(database *gorm.DB) error {
				return cli.RunResetPasswordCommand(database, args[0], cmd.OutOrStdout())
			})
		},
	}
}

// withDatabase opens the configured database, which also applies pending
// migrations, and closes it once run returns.
func withDatabase(state *cliState, run func(*gorm.DB) error) error {
	database, err := db.Open(state.cfg.Database)
	if err != nil {
		return fmt.Errorf("database init failed: %w", err)
	}
	defer func() {
		_ = db.Close(database)
	}()
	return run(database)
}
