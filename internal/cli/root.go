// Package cli contains the storefront commands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/THE-DEEPDAS/HTT/internal/app"
	"github.com/THE-DEEPDAS/HTT/internal/config"
	"github.com/THE-DEEPDAS/HTT/internal/logger"
	"github.com/THE-DEEPDAS/HTT/internal/output"
)

var (
	cfgFile   string
	colorFlag string
	verbose   bool
	cfg       *config.Config
	log       *zap.Logger
	rt        *app.App
	version   = "dev"
)

var rootCmd = &cobra.Command{
	Use:   "storefront",
	Short: "Shop the storefront from the terminal",
	Long: `storefront browses the catalogue, keeps a local cart, places orders and
handles returns and exchanges against the storefront API.

Example usage:
  storefront login --email you@example.com
  storefront products search lamp
  storefront cart add 12 --qty 2
  storefront checkout --payment "Credit Card" --shipping Express`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initApp(cmd.Context())
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeApp()
	},
}

// Execute runs the command line and prints a failure the way the user
// should see it. The returned code is the process exit status.
func Execute(ctx context.Context) int {
	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return output.ExitSuccess
	}
	_ = closeApp()

	var cliErr *output.CLIError
	if !errors.As(err, &cliErr) {
		cliErr = describe(err)
	}
	newPrinter(rootCmd).FormatError(cliErr)
	return cliErr.ExitCode
}

func SetVersion(v string) {
	version = v
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .storefront.yaml)")
	rootCmd.PersistentFlags().StringVar(&colorFlag, "color", "auto", "color output: auto, always, or never")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// defaultStorageURL keeps CLI state between invocations.
func defaultStorageURL() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "memory://"
	}
	return "sqlite://" + filepath.Join(home, ".config", "storefront", "state.db")
}

func initApp(ctx context.Context) error {
	if _, err := output.ParseColorMode(colorFlag); err != nil {
		return &output.CLIError{Summary: err.Error(), ExitCode: output.ExitUsageError}
	}

	var err error
	if cfg == nil {
		cfg, err = config.Load(cfgFile, defaultStorageURL())
		if err != nil {
			return &output.CLIError{
				Summary:    "invalid configuration",
				Detail:     err.Error(),
				Suggestion: "check .storefront.yaml and STOREFRONT_* variables",
				ExitCode:   output.ExitConfigError,
				Err:        err,
			}
		}
	}

	// command results go through the Printer, so routine info logs stay quiet
	level := cfg.Logging.Level
	if level == "info" || level == "" {
		level = "warn"
	}
	if verbose {
		level = "debug"
	}
	log, err = logger.New(level, cfg.Logging.Format)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}

	if err := ensureStateDir(cfg.Storage.URL); err != nil {
		return err
	}

	rt, err = app.New(ctx, cfg, log)
	if err != nil {
		return &output.CLIError{
			Summary:  "could not open local state",
			Detail:   err.Error(),
			ExitCode: output.ExitConfigError,
			Err:      err,
		}
	}
	log.Debug("storefront ready",
		zap.String("api", cfg.API.BaseURL),
		zap.String("client_id", rt.ClientID),
	)
	return nil
}

func closeApp() error {
	if rt == nil {
		return nil
	}
	rt.FlushEvents(context.Background())
	err := rt.Close()
	rt = nil
	if log != nil {
		_ = log.Sync()
	}
	return err
}

func ensureStateDir(storageURL string) error {
	const prefix = "sqlite://"
	if len(storageURL) <= len(prefix) || storageURL[:len(prefix)] != prefix {
		return nil
	}
	dir := filepath.Dir(storageURL[len(prefix):])
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}
	return nil
}

func newPrinter(cmd *cobra.Command) *output.Printer {
	mode, _ := output.ParseColorMode(colorFlag)
	colors := true
	if cfg != nil {
		colors = cfg.Output.Colors
	}
	return output.NewPrinter(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.ResolveColors(mode, colors))
}
