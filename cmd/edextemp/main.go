package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/uttaradit-pharmacy/edextemp/internal/config"
	"github.com/uttaradit-pharmacy/edextemp/internal/logger"
)

type cliState struct {
	configDir string
	cfg       *config.Config
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	state := &cliState{}

	root := &cobra.Command{
		Use:          "edextemp",
		Short:        "Extemporaneous eye-drop compounding records for the hospital pharmacy",
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := config.Load(state.configDir)
			if err != nil {
				return err
			}
			if err := logger.Init(cfg.Logging); err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			state.cfg = cfg
			return nil
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			logger.Close()
			return nil
		},
	}
	root.PersistentFlags().StringVar(&state.configDir, "config-dir", "", "directory holding edextemp.yaml")

	root.AddCommand(
		newServeCommand(state),
		newMigrateCommand(state),
		newSeedCommand(state),
		newResetPasswordCommand(state),
	)
	return root
}
