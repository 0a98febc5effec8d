package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"
	"github.com/spf13/cobra"

	"github.com/sagan/naimeta/cmd"
	appconfig "github.com/sagan/naimeta/config"
	"github.com/sagan/naimeta/util/helper"
)

var ConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or initialize the config file",
	Long: `Show or initialize the config file.

The config file is TOML, at "--config" flag, or $NAIMETA_CONFIG env, or "` + appconfig.DefaultConfigPath() + `".
Env NAIMETA_LIBRARY, NAIMETA_WORKERS, NAIMETA_LOCALE and NAIMETA_LOG_LEVEL override the file.`,
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective config as TOML",
	Args:  cobra.NoArgs,
	RunE: func(command *cobra.Command, args []string) error {
		data, err := cmd.Config.Marshal()
		if err != nil {
			return err
		}
		_, err = command.OutOrStdout().Write(data)
		return err
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with default values",
	Args:  cobra.NoArgs,
	RunE: func(command *cobra.Command, args []string) error {
		path := command.Flag("config").Value.String()
		if path == "" {
			path = appconfig.DefaultConfigPath()
		}
		if err := helper.CheckOutput(path, flagForce); err != nil {
			return err
		}
		data, err := appconfig.Default().Marshal()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
		if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
			return err
		}
		fmt.Fprintf(command.OutOrStdout(), "Config written to %s\n", path)
		return nil
	},
}

var (
	flagForce bool
)

func init() {
	initCmd.Flags().BoolVarP(&flagForce, "force", "", false, "Overwrite existing config file")
	ConfigCmd.AddCommand(showCmd, initCmd)
	cmd.RootCmd.AddCommand(ConfigCmd)
}
