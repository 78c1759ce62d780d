package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Tiliavir/track/internal/config"
	"github.com/Tiliavir/track/internal/render"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the configuration and the resolved log directory",
	Args:  cobra.NoArgs,
	RunE:  runConfig,
}

var configLogPathCmd = &cobra.Command{
	Use:   "log-path <dir>",
	Short: "Set the directory holding the time logs",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigLogPath,
}

func init() {
	configCmd.AddCommand(configLogPathCmd)
}

func runConfig(cmd *cobra.Command, args []string) error {
	store, err := openStore(cmd)
	if err != nil {
		return err
	}
	settings, err := yaml.Marshal(session.cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	source := "config file"
	if os.Getenv(config.EnvLogPath) != "" {
		source = config.EnvLogPath
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, render.Panel("track config",
		fmt.Sprintf("Config file: %s\nLog directory: %s (from %s)", session.cfgPath, store.Dir(), source),
		render.ColorInfo))
	fmt.Fprint(out, string(settings))
	return nil
}

func runConfigLogPath(cmd *cobra.Command, args []string) error {
	dir, err := config.EnsureDir(args[0])
	if err != nil {
		return err
	}
	if err := config.SetLogPath(session.cfgPath, dir); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), render.Panel("track config",
		fmt.Sprintf("Saved log path %s to %s", dir, session.cfgPath), render.ColorSuccess))
	if os.Getenv(config.EnvLogPath) != "" {
		fmt.Fprintln(cmd.ErrOrStderr(), render.Message(config.EnvLogPath+" is set and takes precedence.", render.ColorWarning))
	}
	return nil
}
