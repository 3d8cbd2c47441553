package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/insinfo/insert-to-copy/internal/config"
	"github.com/insinfo/insert-to-copy/internal/convert"
	"github.com/insinfo/insert-to-copy/internal/dumpio"
	"github.com/insinfo/insert-to-copy/internal/errors"
	"github.com/insinfo/insert-to-copy/internal/log"
	"github.com/insinfo/insert-to-copy/internal/sink"
	"github.com/insinfo/insert-to-copy/internal/sql"
)

var (
	version = "0.1.0"
	commit  = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "insert-to-copy: %s\n", describe(err))
		os.Exit(1)
	}
}

func describe(err error) string {
	if e := errors.GetError(err); e != nil && e.Code != errors.InternalError {
		return errors.Describe(e)
	}
	return err.Error()
}

func newRootCmd() *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:   "insert-to-copy <input> <output>",
		Short: "Rewrite INSERT statements in a PostgreSQL dump as COPY blocks",
		Long: `insert-to-copy reads a SQL dump and writes it back with every run of
INSERT ... VALUES statements replaced by COPY ... FROM stdin blocks. All other
statements are copied through unchanged and in order.

Use "-" for stdin or stdout. With --target the output argument is omitted and
the converted dump is loaded straight into that server.`,
		Version:       fmt.Sprintf("%s (commit: %s)", version, commit),
		SilenceErrors: true,
		Args: func(cmd *cobra.Command, args []string) error {
			target, _ := cmd.Flags().GetString(config.FlagTarget)
			if target != "" || os.Getenv(config.EnvTarget) != "" {
				return cobra.ExactArgs(1)(cmd, args)
			}
			return cobra.ExactArgs(2)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			cfg, err := loadConfig(cmd, configFile, args)
			if err != nil {
				return err
			}
			logger := log.Configure(cfg.Log)

			s, err := run(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			logger.Info("Wrote output",
				"read", humanize.IBytes(uint64(s.BytesIn)),
				"written", humanize.IBytes(uint64(s.BytesOut)),
				"rows", humanize.Comma(s.Rows),
				"copy_blocks", s.CopyBlocks,
				"warnings", s.Warnings)
			return nil
		},
	}

	cmd.Flags().StringVar(&configFile, "config", "", "path to a JSON, YAML or TOML configuration file")
	config.AddFlags(cmd.Flags())
	return cmd
}

// loadConfig layers the configuration: defaults, file, environment, flags,
// then positional arguments.
func loadConfig(cmd *cobra.Command, configFile string, args []string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		var err error
		if cfg, err = config.LoadFromFile(configFile); err != nil {
			return nil, err
		}
	}
	cfg.LoadFromEnv()
	if err := cfg.LoadFromFlags(cmd.Flags()); err != nil {
		return nil, errors.ConfigErrorf("%v", err).WithCause(err)
	}

	cfg.Input = args[0]
	if len(args) > 1 {
		cfg.Output = args[1]
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// run opens the input and the destination and converts one dump.
func run(ctx context.Context, cfg *config.Config, logger log.Logger) (convert.Summary, error) {
	parser, err := sql.New(cfg.Parser)
	if err != nil {
		return convert.Summary{}, err
	}
	limit, err := cfg.StatementLimit()
	if err != nil {
		return convert.Summary{}, err
	}

	in, err := dumpio.OpenInput(cfg.Input, cfg.InputOptions())
	if err != nil {
		return convert.Summary{}, err
	}
	defer in.Close()

	var out sink.Sink
	if cfg.LoadsTarget() {
		if out, err = sink.Dial(ctx, cfg.Target); err != nil {
			return convert.Summary{}, err
		}
	} else {
		w, err := dumpio.CreateOutput(cfg.Output, cfg.OutputCompression())
		if err != nil {
			return convert.Summary{}, err
		}
		out = sink.NewText(w)
	}

	logger.Debug("Starting conversion",
		"input", cfg.Input,
		"output", cfg.Output,
		"target", cfg.LoadsTarget(),
		"parser", parser.Name(),
		"threshold", cfg.Convert.Threshold)

	conv := convert.New(parser, out, convert.Options{
		Threshold:        cfg.Convert.Threshold,
		MaxStatementSize: limit,
		Format:           cfg.FormatOptions(),
		Logger:           logger,
	})
	return conv.Run(ctx, in)
}
