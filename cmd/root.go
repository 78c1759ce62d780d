package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/track/internal/config"
	"github.com/Tiliavir/track/internal/logging"
	"github.com/Tiliavir/track/internal/prompt"
	"github.com/Tiliavir/track/internal/render"
	"github.com/Tiliavir/track/internal/storage"
	"github.com/Tiliavir/track/internal/trackerr"
)

var verbose bool

// Replaced in tests.
var (
	now         = time.Now
	newPrompter = prompt.Default
	configPath  = config.FilePath
)

// session is the state prepared before every command runs.
var session struct {
	cfg     config.Config
	cfgPath string
	logger  *slog.Logger
}

var rootCmd = &cobra.Command{
	Use:   "track",
	Short: "Track working hours by client and task",
	Long: `track is a file-based command-line time tracker.
Every tracked interval is one plain-text log file whose name carries the
date, a sequence number, the client and whether it is still open.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

// Execute is the entry point called from main.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(printError(os.Stderr, err))
	}
}

// printError reports err and returns the process exit code.
func printError(w io.Writer, err error) int {
	switch {
	case errors.Is(err, trackerr.ErrCancelled):
		fmt.Fprintln(w, render.Message("Cancelled.", render.ColorWarning))
		return 1
	case errors.Is(err, trackerr.ErrIOFailure):
		fmt.Fprintln(w, render.Message("Error: "+err.Error(), render.ColorError))
		return 2
	default:
		fmt.Fprintln(w, render.Message("Error: "+err.Error(), render.ColorError))
		return 1
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log diagnostics to stderr")

	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(endCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(clientsCmd)
	rootCmd.AddCommand(tasksCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(outlookCmd)
	rootCmd.AddCommand(configCmd)
}

// setup loads the configuration and builds the logger.
func setup(cmd *cobra.Command, _ []string) error {
	path, err := configPath()
	if err != nil {
		return err
	}
	cfg, err := config.LoadFrom(path)
	if err != nil {
		return err
	}

	level, levelErr := logging.ParseLevel(cfg.Logging.Level)
	if verbose {
		level = slog.LevelDebug
	}
	logger := logging.New(cmd.ErrOrStderr(), level)
	if levelErr != nil {
		logger.Warn("using default log level", "err", levelErr)
	}

	session.cfg = cfg
	session.cfgPath = path
	session.logger = logger
	return nil
}

// discovery locates the log directory, asking the user when nothing is
// configured.
func discovery(cmd *cobra.Command) config.Discovery {
	errOut := cmd.ErrOrStderr()
	return config.Discovery{
		ConfigPath: session.cfgPath,
		Warn: func(msg string) {
			fmt.Fprintln(errOut, render.Message(msg, render.ColorWarning))
		},
		Ask: func(def string) (string, error) {
			fmt.Fprintln(errOut, render.Panel("Set up track",
				"Choose a folder to store your time logs.\n"+
					"You can change this later with "+config.EnvLogPath+" or in "+session.cfgPath+".",
				render.ColorInfo))
			return newPrompter().Text("Log folder", def)
		},
	}
}

// openStore resolves the log directory and returns the store over it.
func openStore(cmd *cobra.Command) (*storage.Store, error) {
	dir, err := discovery(cmd).LogDir(session.cfg)
	if err != nil {
		return nil, err
	}
	session.logger.Debug("using log directory", "dir", dir)
	return storage.New(dir, storage.WithClock(now), storage.WithLogger(session.logger)), nil
}
