package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cognicore/fuzzy/pkg/fuzzy"
	"github.com/cognicore/fuzzy/pkg/fuzzy/config"
	"github.com/cognicore/fuzzy/pkg/fuzzy/metrics"
	"github.com/cognicore/fuzzy/pkg/fuzzy/operator"
)

const defaultTimeout = time.Minute

// app carries the flags shared by every subcommand
type app struct {
	logLevel  string
	logFormat string
	timeout   time.Duration

	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "fuzzy",
		Short:         "fuzzy - evaluate fuzzy membership layers and their centres of mass",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(a.logLevel, a.logFormat)
			if err != nil {
				return err
			}
			a.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&a.logFormat, "log-format", "console", "Log format (console, json)")
	root.PersistentFlags().DurationVar(&a.timeout, "timeout", defaultTimeout, "Timeout for one-shot commands")

	root.AddCommand(
		a.estimateCmd(),
		a.evalCmd(),
		a.plotCmd(),
		a.historyCmd(),
		a.serveCmd(),
		gradesCmd(),
	)
	return root
}

func newLogger(level, format string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid --log-level: %w", err)
	}

	var cfg zap.Config
	switch format {
	case "json":
		cfg = zap.NewProductionConfig()
	case "console":
		cfg = zap.NewDevelopmentConfig()
	default:
		return nil, fmt.Errorf("invalid --log-format %q (want console or json)", format)
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}

func (a *app) context(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), a.timeout)
}

// buildEngine loads the system and opens the store. The returned cleanup
// closes the engine and its store.
func (a *app) buildEngine(ctx context.Context, systemPath, dbPath string, samplings int, m *metrics.Metrics) (*fuzzy.Engine, func(), error) {
	loader := &config.Loader{SystemPath: systemPath, StorePath: dbPath}
	comp, err := loader.Load(ctx)
	if err != nil {
		return nil, nil, err
	}

	engine, err := fuzzy.New(fuzzy.Options{
		Model:     comp.Model,
		Store:     comp.Store,
		Logger:    a.logger,
		Metrics:   m,
		Samplings: samplings,
	})
	if err != nil {
		if comp.Store != nil {
			comp.Store.Close()
		}
		return nil, nil, err
	}

	a.logger.Info("loaded system",
		zap.String("system", comp.Model.Name),
		zap.Strings("layers", engine.Layers()),
		zap.String("db", dbPath),
	)

	cleanup := func() {
		if err := engine.Close(); err != nil {
			a.logger.Warn("close engine", zap.Error(err))
		}
	}
	return engine, cleanup, nil
}

// parseInputs turns repeated name=value flags into named inputs
func parseInputs(pairs []string) (operator.Inputs, error) {
	in := make(operator.Inputs, len(pairs))
	for _, p := range pairs {
		name, value, ok := strings.Cut(p, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --input %q (want name=value)", p)
		}
		x, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid --input %q: %w", p, err)
		}
		in[name] = x
	}
	return in, nil
}
