package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sagan/naimeta/config"
	"github.com/sagan/naimeta/version"
)

var (
	flagConfig   string
	flagLogLevel string
)

// Config is the effective configuration, loaded before any subcommand runs.
var Config *config.Config

var RootCmd = &cobra.Command{
	Use:   "naimeta",
	Short: "naimeta " + version.Version,
	Long: `naimeta ` + version.Version + "." + `
Read NovelAI generation metadata (prompt, seed, steps, sampler, character prompts...) from PNG / WebP images,
including the alpha channel "stealth" encoding, and manage a local searchable image library.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(flagConfig)
		if err != nil {
			return err
		}
		if flagLogLevel != "" {
			cfg.LogLevel = flagLogLevel
		}
		level, err := log.ParseLevel(cfg.LogLevel)
		if err != nil {
			return fmt.Errorf("invalid log level: %w", err)
		}
		log.SetLevel(level)
		log.SetOutput(os.Stderr)
		Config = cfg
		return nil
	},
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := RootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Printf("%v\n", err)
		os.Exit(1)
	}
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "", "",
		`Config file path. Default is $NAIMETA_CONFIG or "`+config.DefaultConfigPath()+`"`)
	RootCmd.PersistentFlags().StringVarP(&flagLogLevel, "log-level", "", "",
		"Log level: trace, debug, info, warn, error. Overrides config and NAIMETA_LOG_LEVEL env")
}
