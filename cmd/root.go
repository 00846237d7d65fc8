// Package cmd defines the CLI commands of the site-report executable.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/site-report/internal/app"
	"github.com/JakeFAU/site-report/internal/config"
	"github.com/JakeFAU/site-report/internal/logging"
	"github.com/JakeFAU/site-report/internal/pipeline"
	"github.com/JakeFAU/site-report/internal/report"
)

// App defines the application surface the commands use.
// Tests swap newApp to inject a fake.
type App interface {
	Close()
	Logger() *zap.Logger
	Serve(ctx context.Context) error
	Extract(ctx context.Context, rawURL string) (pipeline.ExtractionResult, string, error)
	Generate(ctx context.Context, req report.Request) (pipeline.ReportOutput, error)
}

var newApp = func(cfg config.Config, logger *zap.Logger) (App, error) {
	return app.New(cfg, logger)
}

var newLogger = logging.New

type sessionKeyType string

const sessionKey sessionKeyType = "session"

// session is what PersistentPreRunE prepares for the subcommands.
type session struct {
	cfg    config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	var cfgFile string

	cmd := &cobra.Command{
		Use:   "site-report",
		Short: "Turns a website into an analytical HTML report.",
		Long: `site-report acquires the readable content of a web page, either by
fetching it directly or through a hosted crawl service, and asks a language
model to write an HTML report about it. It runs as an HTTP API or as one-shot
commands.`,
		SilenceUsage: true,

		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Read(cfgFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger, err := newLogger(cfg.Logging.Development, cfg.Logging.Level)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			cmd.SetContext(context.WithValue(cmd.Context(), sessionKey, &session{cfg: cfg, logger: logger}))
			return nil
		},

		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if rt, ok := cmd.Context().Value(sessionKey).(*session); ok && rt != nil {
				_ = rt.logger.Sync()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML, JSON or TOML)")
	cmd.AddCommand(newServeCmd(), newExtractCmd(), newReportCmd())
	return cmd
}

func resolveSession(ctx context.Context) (*session, error) {
	rt, ok := ctx.Value(sessionKey).(*session)
	if !ok || rt == nil {
		return nil, errors.New("configuration not loaded")
	}
	return rt, nil
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
