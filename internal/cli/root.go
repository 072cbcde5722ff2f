// Package cli implements the agriinsight command tree.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"agriinsight/internal/app"
	"agriinsight/internal/applog"
	"agriinsight/internal/config"
	"agriinsight/internal/domain"
	"agriinsight/internal/weather"
)

// Backend is the application surface the commands drive.
type Backend interface {
	EnableAssistant(ctx context.Context) error
	Ask(ctx context.Context, query string) string
	Records(ctx context.Context) domain.Table
	Insight(query string, table domain.Table) string
	Rainfall(ctx context.Context, name string, days int) (*domain.RainfallSeries, error)
	RainfallAt(ctx context.Context, lat, lon float64, days int) (*domain.RainfallSeries, error)
	LatestRainfall(ctx context.Context, name string) (*domain.RainfallReading, error)
	CompareRainfall(ctx context.Context, names []string, days int) []weather.Comparison
	States() []string
}

// newBackend is replaced in tests.
var newBackend = func(cfg *config.AppConfig) Backend { return app.New(cfg) }

type rootOptions struct {
	configPath string
	logLevel   string
	logFile    string

	cfg     *config.AppConfig
	backend Backend
	logSink io.Closer
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "agriinsight",
		Short: "Indian agriculture assistant",
		Long: `AgriInsight answers questions about Indian crop production and rainfall.
It combines the data.gov.in crop dataset, Open-Meteo precipitation history
and a hosted language model. Without a subcommand it opens the dashboard.`,
		SilenceUsage:      true,
		PersistentPreRunE: opts.setup,
		PersistentPostRun: func(*cobra.Command, []string) { opts.teardown() },
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, opts)
		},
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to YAML config (default ~/.config/agriinsight/config.yaml)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override the configured log level")
	root.PersistentFlags().StringVar(&opts.logFile, "log-file", "", "write logs to this file")

	root.AddCommand(
		newTUICmd(opts),
		newAskCmd(opts),
		newDataCmd(opts),
		newInsightCmd(opts),
		newRainfallCmd(opts),
		newStatesCmd(opts),
		newServeCmd(opts),
	)
	return root
}

// Execute runs the command tree against os.Args. Cancelling ctx aborts
// in-flight requests.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

func (o *rootOptions) setup(cmd *cobra.Command, _ []string) error {
	_ = godotenv.Load()

	var err error
	if o.configPath == "" {
		o.cfg, _, err = config.LoadDefault()
	} else {
		o.cfg, err = config.Load(o.configPath)
	}
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if o.logLevel != "" {
		o.cfg.Log.Level = o.logLevel
	}

	out, err := o.logOutput(cmd)
	if err != nil {
		return err
	}
	applog.Init(applog.Config{Level: o.cfg.Log.Level, Format: o.cfg.Log.Format, Output: out})
	o.backend = newBackend(o.cfg)
	return nil
}

// logOutput keeps the dashboard screen clean: without --log-file its logs
// are discarded.
func (o *rootOptions) logOutput(cmd *cobra.Command) (io.Writer, error) {
	if o.logFile != "" {
		f, err := os.OpenFile(o.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		o.logSink = f
		return f, nil
	}
	if cmd.Name() == "tui" || !cmd.HasParent() {
		return io.Discard, nil
	}
	return cmd.ErrOrStderr(), nil
}

func (o *rootOptions) teardown() {
	applog.Sync()
	if o.logSink != nil {
		_ = o.logSink.Close()
	}
}

func (o *rootOptions) enableAssistant(ctx context.Context) error {
	if err := o.backend.EnableAssistant(ctx); err != nil {
		return fmt.Errorf("assistant unavailable: %w", err)
	}
	return nil
}

var (
	errNoQuestion = errors.New("Type a question first.")
	errNoAnalysis = errors.New("Enter a question.")
)
