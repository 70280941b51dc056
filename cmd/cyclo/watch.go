package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/panbanda/cyclo/internal/cache"
	"github.com/panbanda/cyclo/internal/fileproc"
	"github.com/panbanda/cyclo/internal/output"
	"github.com/panbanda/cyclo/pkg/analyzer/complexity"
	"github.com/panbanda/cyclo/pkg/watch"
	"github.com/urfave/cli/v2"
)

func watchCmd() *cli.Command {
	return &cli.Command{
		Name:      "watch",
		Aliases:   []string{"w"},
		Usage:     "Re-measure Java files as they change",
		ArgsUsage: "[path]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "ignore-boolean-paths",
				Usage: "Do not count && and || in conditions",
			},
			&cli.BoolFlag{
				Name:  "consider-assert",
				Usage: "Count assert statements as decision points",
			},
			&cli.IntFlag{
				Name:  "method-threshold",
				Usage: "Method report level (default from config, 10)",
			},
			&cli.IntFlag{
				Name:  "class-threshold",
				Usage: "Class report level (default from config, 80)",
			},
			&cli.BoolFlag{
				Name:  "violations-only",
				Usage: "Show only violations and the summary",
			},
			&cli.DurationFlag{
				Name:  "debounce",
				Usage: "How long a file must be unchanged before it is measured",
				Value: watch.DefaultDebounce,
			},
		},
		Action: runWatchCmd,
	}
}

func runWatchCmd(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	applyAnalyzeFlags(c, cfg)

	root := "."
	if c.Args().Len() > 0 {
		root = c.Args().First()
	}
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("invalid path %s: %w", root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", root)
	}

	resultCache, err := cache.New(cfg.Cache.Dir, cfg.Cache.TTL, cfg.Cache.Enabled)
	if err != nil {
		resultCache = nil
	}

	a := complexity.New(
		complexity.WithMetricOptions(cfg.MetricOptions()),
		complexity.WithThresholds(complexity.Thresholds{
			Method: cfg.Thresholds.Method,
			Class:  cfg.Thresholds.Class,
		}),
		complexity.WithMaxFileSize(cfg.Exclude.MaxFileSize),
		complexity.WithCache(resultCache),
	)
	defer a.Close()

	w, err := watch.NewWatcher(root, cfg, c.Duration("debounce"))
	if err != nil {
		return err
	}
	defer w.Stop()

	formatter := output.NewWriterFormatter(output.ParseFormat(cfg.Output.Format), c.App.Writer, cfg.Output.Color)
	w.SetOutput(c.App.ErrWriter)
	w.SetCallback(func(paths []string) {
		if err := measureChanged(c.Context, a, formatter, paths, c.Bool("violations-only")); err != nil {
			formatter.Error("%v", err)
		}
	})

	err = w.Start(c.Context)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// measureChanged analyzes one batch of changed files and renders the
// report. Files that fail to parse are reported without stopping the watch.
func measureChanged(ctx context.Context, a *complexity.Analyzer, f *output.Formatter, paths []string, violationsOnly bool) error {
	result, err := a.Analyze(ctx, paths)

	var procErrs *fileproc.ProcessingErrors
	if err != nil && !errors.As(err, &procErrs) {
		return fmt.Errorf("analysis failed: %w", err)
	}

	colored := f.Colored() && f.Format() == output.FormatText
	if err := f.Output(buildReport(result, violationsOnly, colored)); err != nil {
		return err
	}
	if procErrs != nil {
		for _, e := range procErrs.Errors {
			f.Warning("%s: %v", e.Path, e.Err)
		}
	}
	return nil
}
