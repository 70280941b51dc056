package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/panbanda/cyclo/internal/cache"
	"github.com/panbanda/cyclo/internal/fileproc"
	"github.com/panbanda/cyclo/internal/output"
	"github.com/panbanda/cyclo/internal/progress"
	"github.com/panbanda/cyclo/internal/remote"
	"github.com/panbanda/cyclo/internal/scanner"
	"github.com/panbanda/cyclo/internal/vcs"
	"github.com/panbanda/cyclo/pkg/analyzer"
	"github.com/panbanda/cyclo/pkg/analyzer/complexity"
	"github.com/panbanda/cyclo/pkg/config"
	"github.com/panbanda/cyclo/pkg/parser"
	"github.com/panbanda/cyclo/pkg/source"
	"github.com/urfave/cli/v2"
)

// exitViolations is the exit status for --fail-on-violation.
const exitViolations = 2

func analyzeCmd() *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Aliases:   []string{"a"},
		Usage:     "Measure cyclomatic complexity of Java methods and classes",
		ArgsUsage: "[path|owner/repo[@ref]...]",
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
			&cli.BoolFlag{
				Name:  "fail-on-violation",
				Usage: "Exit with status 2 when any violation is reported",
			},
			&cli.StringFlag{
				Name:  "ref",
				Usage: "Git revision (branch, tag, SHA) to analyze instead of the working tree",
			},
			&cli.BoolFlag{
				Name:  "shallow",
				Usage: "Shallow clone (depth=1) for remote repositories",
			},
		},
		Action: runAnalyzeCmd,
	}
}

// applyAnalyzeFlags layers the analyze flags over the configuration.
func applyAnalyzeFlags(c *cli.Context, cfg *config.Config) {
	if c.Bool("ignore-boolean-paths") {
		cfg.Metric.IgnoreBooleanPaths = true
	}
	if c.Bool("consider-assert") {
		cfg.Metric.ConsiderAssert = true
	}
	if c.IsSet("method-threshold") {
		cfg.Thresholds.Method = c.Int("method-threshold")
	}
	if c.IsSet("class-threshold") {
		cfg.Thresholds.Class = c.Int("class-threshold")
	}
}

func runAnalyzeCmd(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	applyAnalyzeFlags(c, cfg)

	stderr := output.NewWriterFormatter(output.FormatText, os.Stderr, cfg.Output.Color)

	ref := c.String("ref")
	resolved, cleanup, err := resolveTargets(c.Context, getPaths(c), ref, c.Bool("shallow"), cfg.Output.Verbose)
	if err != nil {
		return err
	}
	defer cleanup()

	var (
		files []string
		src   source.ContentSource = source.NewFilesystem()
	)
	if ref != "" && !resolved.remote {
		files, src, err = revisionFiles(cfg, resolved.paths, ref)
	} else {
		spinner := progress.NewSpinner("Scanning files...")
		files, err = scanner.NewScanner(cfg).ScanPaths(resolved.paths)
		spinner.FinishSuccess()
	}
	if err != nil {
		return err
	}

	if len(files) == 0 {
		stderr.Warning("No Java source files found")
		return nil
	}

	resultCache, err := cache.New(cfg.Cache.Dir, cfg.Cache.TTL, cfg.Cache.Enabled)
	if err != nil {
		stderr.Warning("Cache disabled: %v", err)
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
		complexity.WithSource(src),
	)
	defer a.Close()

	bar := progress.NewBar("Analyzing complexity...", len(files))
	ctx := analyzer.WithTracker(c.Context, bar.Tracker())
	result, err := a.Analyze(ctx, files)
	bar.FinishSuccess()

	var procErrs *fileproc.ProcessingErrors
	if err != nil && !errors.As(err, &procErrs) {
		return fmt.Errorf("analysis failed: %w", err)
	}

	formatter, err := output.NewFormatter(output.ParseFormat(cfg.Output.Format), c.String("output"), cfg.Output.Color)
	if err != nil {
		return err
	}
	defer formatter.Close()

	colored := formatter.Colored() && formatter.Format() == output.FormatText
	if err := formatter.Output(buildReport(result, c.Bool("violations-only"), colored)); err != nil {
		return err
	}

	if procErrs != nil {
		reportProcessingErrors(stderr, procErrs, cfg.Output.Verbose)
	}

	if c.Bool("fail-on-violation") && len(result.Violations) > 0 {
		return cli.Exit(fmt.Sprintf("%d complexity violations", len(result.Violations)), exitViolations)
	}
	return nil
}

// targets are the local directories to analyze after remote repositories
// have been cloned.
type targets struct {
	paths  []string
	remote bool
}

// resolveTargets clones every remote reference among paths. The returned
// cleanup removes the clones.
func resolveTargets(ctx context.Context, paths []string, ref string, shallow, verbose bool) (targets, func(), error) {
	var (
		t       targets
		sources []*remote.Source
	)
	cleanup := func() {
		for _, s := range sources {
			_ = s.Cleanup()
		}
	}

	var gitProgress io.Writer = io.Discard
	if verbose {
		gitProgress = os.Stderr
	}

	for _, path := range paths {
		src, err := remote.Parse(path)
		if err != nil {
			cleanup()
			return targets{}, func() {}, err
		}
		if src == nil {
			t.paths = append(t.paths, path)
			continue
		}

		if src.Ref == "" {
			src.Ref = ref
		}
		spinner := progress.NewSpinner("Cloning " + src.URL + "...")
		err = src.Clone(ctx, gitProgress, shallow)
		spinner.FinishSuccess()
		if err != nil {
			cleanup()
			return targets{}, func() {}, err
		}
		sources = append(sources, src)
		t.paths = append(t.paths, src.CloneDir)
		t.remote = true
	}
	return t, cleanup, nil
}

// revisionFiles lists the Java files under paths as they are at ref, and
// returns a source that reads them from the repository.
func revisionFiles(cfg *config.Config, paths []string, ref string) ([]string, source.ContentSource, error) {
	repo, err := vcs.Open(paths[0])
	if err != nil {
		return nil, nil, err
	}
	tree, err := repo.Tree(ref)
	if err != nil {
		return nil, nil, err
	}

	root, err := filepath.EvalSymlinks(repo.Root())
	if err != nil {
		root = repo.Root()
	}

	prefixes := make([]string, 0, len(paths))
	for _, path := range paths {
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid path %s: %w", path, err)
		}
		if resolved, err := filepath.EvalSymlinks(abs); err == nil {
			abs = resolved
		}
		rel, err := filepath.Rel(root, abs)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return nil, nil, fmt.Errorf("%s is outside repository %s", path, repo.Root())
		}
		prefixes = append(prefixes, filepath.ToSlash(rel))
	}

	files, err := tree.Files(func(path string) bool {
		if !parser.IsSupported(path) || cfg.ShouldExclude(path) {
			return false
		}
		for _, prefix := range prefixes {
			if prefix == "." || path == prefix || strings.HasPrefix(path, prefix+"/") {
				return true
			}
		}
		return false
	})
	if err != nil {
		return nil, nil, err
	}
	return files, source.NewTree(tree), nil
}

func reportProcessingErrors(f *output.Formatter, errs *fileproc.ProcessingErrors, verbose bool) {
	if !verbose {
		f.Warning("%d files could not be analyzed (use --verbose for details)", len(errs.Errors))
		return
	}
	f.Warning("%d files could not be analyzed:", len(errs.Errors))
	for _, e := range errs.Errors {
		fmt.Fprintf(f.Writer(), "  - %s: %v\n", e.Path, e.Err)
	}
}
