// Package cli implements the headless akara command line.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"akara-desktop/internal/config"
	"akara-desktop/internal/domain"
	"akara-desktop/internal/logging"
	"akara-desktop/internal/transcribe"
)

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	backendURL string
	verbose    bool
	format     string

	logger   *zap.Logger
	settings domain.Settings
	client   *transcribe.Client
}

// NewRootCmd builds the akara command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "akara",
		Short: "Transcribe and translate audio with the Akara backend",
		Long: `Transcribe and translate audio with the Akara backend.

The backend location is taken from --backend-url, then AKARA_BACKEND_URL,
REACT_APP_BACKEND_URL, the desktop settings file, and finally
http://localhost:8001.`,
		SilenceUsage:     true,
		TraverseChildren: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.logger != nil {
				_ = opts.logger.Sync()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&opts.backendURL, "backend-url", "", "backend base URL")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "V", false, "verbose output")
	cmd.PersistentFlags().StringVarP(&opts.format, "format", "f", formatText, "output format: text, json or yaml")

	cmd.AddCommand(newTranscribeCmd(opts))
	cmd.AddCommand(newLanguagesCmd(opts))
	cmd.AddCommand(newHealthCmd(opts))
	cmd.AddCommand(newHistoryCmd(opts))
	return cmd
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// setup resolves logging, settings, and the backend client.
func (o *rootOptions) setup() error {
	if err := validateFormat(o.format); err != nil {
		return err
	}

	logger, err := logging.New(o.verbose || config.DebugEnabled())
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	o.logger = logger

	if path, err := config.LoadEnv(); err != nil {
		return fmt.Errorf("load environment: %w", err)
	} else if path != "" {
		logger.Debug("environment file loaded", zap.String("path", path))
	}

	o.settings = config.DefaultSettings()
	if homeDir, err := os.UserHomeDir(); err == nil {
		settings, err := config.NewJSONStore(config.SettingsPath(homeDir)).Load()
		if err != nil {
			logger.Warn("settings unreadable, using defaults", zap.Error(err))
		} else {
			o.settings = settings
		}
	}

	backendURL := config.ResolveBackendURL(o.backendURL, o.settings)
	logger.Debug("backend configured", zap.String("url", backendURL))
	o.client = transcribe.NewClient(backendURL)
	return nil
}
