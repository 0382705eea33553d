package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ayush/smart-research-assistant/internal/config"
	"github.com/ayush/smart-research-assistant/internal/logging"
)

// app is the state shared by all subcommands once the root command has
// loaded the configuration.
type app struct {
	cfgFile string
	cfg     *config.Config
	log     *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "assistant",
		Short:         "Smart Research Assistant: cited research reports from your documents and live updates",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.cfgFile)
			if err != nil {
				return err
			}
			log, err := logging.New(cfg.LogLevel, cfg.LogDevelopment)
			if err != nil {
				return err
			}
			zap.ReplaceGlobals(log)
			a.cfg, a.log = cfg, log
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}
	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (yaml, json or toml); environment variables take precedence")

	root.AddCommand(newServeCmd(a), newAskCmd(a))
	return root
}
