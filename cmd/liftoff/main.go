// Command liftoff is the desktop installer entrypoint. It bootstraps the
// installation framework, binds the local control service, and runs the
// embedded view until the user closes it. Every bootstrap step is a hard
// precondition: failure terminates the process with a diagnostic.
package main

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"liftoff/internal/bridge"
	"liftoff/internal/config"
	"liftoff/internal/dialog"
	"liftoff/internal/endpoint"
	"liftoff/internal/framework"
	"liftoff/internal/logging"
	"liftoff/internal/rest"
	"liftoff/internal/ui"
)

//go:embed config.yml
var rawConfig []byte

var (
	verbose bool
	logger  *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:           "liftoff",
	Short:         "Desktop installer bootstrap",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runInstaller,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func main() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runInstaller(cmd *cobra.Command, args []string) error {
	var err error
	logger, err = logging.Setup(verbose)
	if err != nil {
		return fmt.Errorf("unable to set up logging: %w", err)
	}

	cfg, err := config.Parse(rawConfig)
	if err != nil {
		logger.Fatal("embedded config could not be read", zap.Error(err))
	}
	appName := cfg.General.Name
	logger.Info("starting installer", zap.String("application", appName))

	exe, err := os.Executable()
	if err != nil {
		logger.Fatal("current executable could not be resolved", zap.Error(err))
	}
	exeDir := filepath.Dir(exe)

	fw, err := framework.Bootstrap(cfg, exeDir)
	if err != nil {
		logger.Fatal("unable to load existing installation metadata", zap.Error(err))
	}
	if fw.FreshInstall {
		logger.Info("starting fresh install")
	} else {
		logger.Info("resuming from existing metadata",
			zap.String("file", filepath.Join(exeDir, framework.MetadataFile)))
	}
	handle := framework.NewHandle(fw)

	port, err := endpoint.ReservePort()
	if err != nil {
		logger.Fatal("no free loopback port", zap.Error(err))
	}
	candidates, err := endpoint.Candidates(cmd.Context(), port)
	if err != nil {
		logger.Fatal("localhost could not be resolved", zap.Error(err))
	}

	servers, err := rest.StartAll(handle, candidates, logger)
	if err != nil {
		logger.Fatal("control service could not bind any address", zap.Error(err))
	}
	for _, addr := range servers.Addrs() {
		logger.Debug("control service listening", zap.String("addr", addr.String()))
	}

	controlURL := fmt.Sprintf("http://localhost:%d", port)
	view, err := ui.New(ui.Config{
		Title:  ui.Title(appName),
		URL:    controlURL,
		Width:  1024,
		Height: 500,
		Debug:  true,
	}, logger)
	if err != nil {
		logger.Fatal("embedded view could not start", zap.Error(err))
	}

	dispatcher := bridge.NewDispatcher(dialog.Native(), view, logger)
	err = view.Run(func(msg string) {
		if err := dispatcher.Dispatch(msg); err != nil {
			logger.Fatal("bridge command failed", zap.String("message", msg), zap.Error(err))
		}
	})
	if err != nil {
		logger.Fatal("embedded view failed", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := servers.Shutdown(shutdownCtx); err != nil {
		logger.Warn("control service shutdown", zap.Error(err))
	}
	return nil
}
