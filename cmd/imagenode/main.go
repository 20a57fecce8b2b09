// Package main is the entry point for the imagenode viewer.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/dshills/imagenode/internal/app"
	"github.com/dshills/imagenode/internal/config"
	"github.com/dshills/imagenode/internal/logging"
	"github.com/dshills/imagenode/internal/renderer/backend"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newCommand().Run(ctx, os.Args)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:            "imagenode",
		Usage:           "view and resize images embedded in rich-text documents",
		Version:         fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		HideHelpCommand: true,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "load configuration from `FILE` (TOML or YAML)"},
			&cli.StringFlag{Name: "log-level", Usage: "override the configured log `LEVEL`"},
			&cli.StringFlag{Name: "log-file", Usage: "write logs to `FILE`"},
		},
		Commands: []*cli.Command{
			{
				Name:      "view",
				Usage:     "Opens a document in the terminal",
				ArgsUsage: "DOCUMENT",
				Action:    runView,
			},
			{
				Name:      "inspect",
				Usage:     "Loads every image of a document and reports the result",
				ArgsUsage: "DOCUMENT",
				Flags: []cli.Flag{
					&cli.DurationFlag{Name: "timeout", Value: time.Minute, Usage: "give up after `DURATION`"},
				},
				Action: runInspect,
			},
			{
				Name:  "dumpconfig",
				Usage: "Prints the effective configuration",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "format", Value: "toml", Usage: "output `FORMAT` (toml or yaml)"},
				},
				Action: runDumpConfig,
			},
		},
	}
}

// configPath returns the --config value or the default location.
func configPath(cmd *cli.Command) string {
	if p := cmd.String("config"); p != "" {
		return p
	}
	return config.DefaultPath()
}

// loadConfig loads configuration. The logging flags enter as environment
// overrides so they survive reloads.
func loadConfig(cmd *cli.Command, log *zap.Logger) (*config.Manager, error) {
	environ := os.Environ()
	if lvl := cmd.String("log-level"); lvl != "" {
		environ = append(environ, config.EnvPrefix+"LOG_LEVEL="+lvl)
	}
	if f := cmd.String("log-file"); f != "" {
		environ = append(environ, config.EnvPrefix+"LOG_FILE="+f)
	}
	m, err := config.NewManager(configPath(cmd), log, config.WithEnviron(environ))
	if err != nil {
		return nil, fmt.Errorf("unable to load configuration: %w", err)
	}
	return m, nil
}

func documentArg(cmd *cli.Command) (string, error) {
	if cmd.NArg() != 1 {
		return "", fmt.Errorf("%s: expected one DOCUMENT argument, got %d", cmd.Name, cmd.NArg())
	}
	return cmd.Args().First(), nil
}

// runView opens the document in an interactive terminal session. Logs go
// to the configured file only since the terminal belongs to the viewer.
func runView(ctx context.Context, cmd *cli.Command) (err error) {
	path, err := documentArg(cmd)
	if err != nil {
		return err
	}
	mgr, err := loadConfig(cmd, zap.NewNop())
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, mgr.Close()) }()

	cfg := mgr.Current()
	logger, err := logging.New(cfg.Logging, io.Discard)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, logger.Close()) }()
	log := logger.Logger
	log.Info("program started", zap.String("version", version), zap.String("document", path))
	mgr.SetLogger(log.Named("config"))

	if _, serr := os.Stat(cfg.Path); serr == nil {
		if werr := mgr.Watch(); werr != nil {
			log.Warn("configuration not watched", zap.String("path", cfg.Path), zap.Error(werr))
		}
	}

	doc, err := app.OpenDocument(path)
	if err != nil {
		return err
	}
	application, err := app.New(app.Options{
		Document:      doc,
		ConfigManager: mgr,
		Logger:        log,
		LevelSetter:   logger,
	})
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, application.Close()) }()

	term, err := backend.NewTerminal()
	if err != nil {
		return fmt.Errorf("unable to create terminal: %w", err)
	}
	if err := application.SetBackend(term); err != nil {
		return err
	}

	go func() {
		<-ctx.Done()
		application.Shutdown()
	}()

	if err := application.Run(); err != nil && !errors.Is(err, app.ErrQuit) {
		return err
	}
	snap := application.Metrics().Snapshot()
	log.Info("program ended",
		zap.Duration("uptime", snap.Uptime),
		zap.Uint64("events", snap.Events),
		zap.Uint64("renders", snap.Renders),
		zap.Duration("avgRender", snap.AvgRender),
		zap.Uint64("resizes", snap.Resizes))
	return nil
}

// runInspect loads every image of the document and prints one row per
// image. It fails when any image fails.
func runInspect(ctx context.Context, cmd *cli.Command) (err error) {
	path, err := documentArg(cmd)
	if err != nil {
		return err
	}
	mgr, err := loadConfig(cmd, zap.NewNop())
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, mgr.Close()) }()

	cfg := mgr.Current()
	logger, err := logging.New(cfg.Logging, os.Stderr)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, logger.Close()) }()

	doc, err := app.OpenDocument(path)
	if err != nil {
		return err
	}
	gate := app.NewGate(cfg.Loadgate, doc, nil, logger.Logger)
	defer func() { err = multierr.Append(err, gate.Close()) }()

	ctx, cancel := context.WithTimeout(ctx, cmd.Duration("timeout"))
	defer cancel()

	reports, err := app.Inspect(ctx, doc.Tree(), gate)
	printReports(cmd.Root().Writer, reports)
	if err != nil {
		return fmt.Errorf("%d of %d images failed: %w", len(multierr.Errors(err)), len(reports), err)
	}
	return nil
}

func printReports(w io.Writer, reports []app.ImageReport) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tSTATUS\tFORMAT\tSIZE\tBYTES\tTIME\tSOURCE")
	for _, r := range reports {
		dims := "-"
		if r.Width > 0 {
			dims = fmt.Sprintf("%dx%d", r.Width, r.Height)
		}
		format := r.Format
		if format == "" {
			format = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			r.Key, r.Status, format, dims, r.Size, r.Elapsed.Round(time.Millisecond), r.Src)
	}
	_ = tw.Flush()
}

func runDumpConfig(_ context.Context, cmd *cli.Command) (err error) {
	mgr, err := loadConfig(cmd, zap.NewNop())
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, mgr.Close()) }()
	return mgr.Current().Encode(cmd.Root().Writer, cmd.String("format"))
}
