package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"

	"github.com/Mindburn-Labs/spp/pkg/config"
	"github.com/Mindburn-Labs/spp/pkg/extensions"
	"github.com/Mindburn-Labs/spp/pkg/observability"
	"github.com/Mindburn-Labs/spp/pkg/trust"
	"github.com/Mindburn-Labs/spp/pkg/validator"
)

// env is the wiring shared by every subcommand.
type env struct {
	cfg       *config.Config
	tables    config.Tables
	logger    *slog.Logger
	telemetry *observability.Provider
	validator *validator.Validator
	scorer    *trust.Scorer
	registry  *extensions.Registry
}

type envOptions struct {
	schemaDir string
	verbose   bool
}

// newEnv loads configuration and builds the validator, scorer and
// telemetry. Logs go to stderr.
func newEnv(ctx context.Context, stderr io.Writer, opts envOptions) (*env, error) {
	cfg := config.Load()
	if opts.schemaDir != "" {
		cfg.SchemaDir = opts.schemaDir
	}

	level := cfg.SlogLevel()
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	tables, err := config.LoadTables(cfg)
	if err != nil {
		return nil, err
	}

	otelCfg := observability.DefaultConfig()
	otelCfg.ServiceVersion = Version
	otelCfg.Enabled = cfg.OTelEnabled
	otelCfg.OTLPEndpoint = cfg.OTLPEndpoint
	telemetry, err := observability.New(ctx, otelCfg)
	if err != nil {
		return nil, fmt.Errorf("telemetry: %w", err)
	}

	registry := extensions.NewRegistry(tables.Extensions)
	vopts := []validator.Option{
		validator.WithRegistry(registry),
		validator.WithTelemetry(telemetry),
		validator.WithLogger(logger.With("component", "validator")),
		validator.WithConcurrency(cfg.Concurrency),
	}
	if cfg.SchemaDir != "" {
		vopts = append(vopts, validator.WithSchemaDir(cfg.SchemaDir, cfg.SchemaNamespace))
	}

	return &env{
		cfg:       cfg,
		tables:    tables,
		logger:    logger,
		telemetry: telemetry,
		validator: validator.New(vopts...),
		scorer:    trust.NewScorer(tables.Trust),
		registry:  registry,
	}, nil
}

func (e *env) close(ctx context.Context) {
	if err := e.telemetry.Shutdown(ctx); err != nil {
		e.logger.Warn("telemetry shutdown", "error", err)
	}
}

// parseArgs parses flags that may appear before or after positional
// arguments and returns the positionals.
func parseArgs(cmd *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := cmd.Parse(args); err != nil {
			return nil, err
		}
		args = cmd.Args()
		if len(args) == 0 {
			return positional, nil
		}
		positional = append(positional, args[0])
		args = args[1:]
	}
}

// multiFlag allows repeatable flag values (e.g. --require a --require b).
type multiFlag []string

func (f *multiFlag) String() string { return fmt.Sprintf("%v", *f) }
func (f *multiFlag) Set(value string) error {
	*f = append(*f, value)
	return nil
}
