// Package complexity measures the cyclomatic complexity of Java methods and
// constructors and aggregates it per class, file and project.
package complexity

import (
	"context"
	"fmt"
	"sort"

	"github.com/panbanda/cyclo/internal/cache"
	"github.com/panbanda/cyclo/internal/fileproc"
	"github.com/panbanda/cyclo/pkg/analyzer"
	"github.com/panbanda/cyclo/pkg/cyclo"
	"github.com/panbanda/cyclo/pkg/parser"
	"github.com/panbanda/cyclo/pkg/source"
	"gonum.org/v1/gonum/stat"
)

// Ensure Analyzer implements analyzer.FileAnalyzer.
var _ analyzer.FileAnalyzer[*Analysis] = (*Analyzer)(nil)

// Analyzer computes cyclomatic complexity for Java sources.
type Analyzer struct {
	parser      *parser.Parser
	opts        cyclo.Options
	thresholds  Thresholds
	maxFileSize int64
	cache       *cache.Cache
	source      source.ContentSource
}

// Option is a functional option for configuring Analyzer.
type Option func(*Analyzer)

// WithMetricOptions sets the counting rules.
func WithMetricOptions(opts cyclo.Options) Option {
	return func(a *Analyzer) {
		a.opts = opts
	}
}

// WithThresholds sets the method and class report levels.
func WithThresholds(t Thresholds) Option {
	return func(a *Analyzer) {
		a.thresholds = t
	}
}

// WithMaxFileSize sets the maximum file size to analyze (0 = no limit).
func WithMaxFileSize(maxSize int64) Option {
	return func(a *Analyzer) {
		a.maxFileSize = maxSize
	}
}

// WithCache reuses per-file results stored in c.
func WithCache(c *cache.Cache) Option {
	return func(a *Analyzer) {
		a.cache = c
	}
}

// WithSource reads files from src instead of the filesystem.
func WithSource(src source.ContentSource) Option {
	return func(a *Analyzer) {
		a.source = src
	}
}

// New creates a new complexity analyzer.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		parser:     parser.New(),
		opts:       cyclo.DefaultOptions(),
		thresholds: DefaultThresholds(),
		source:     source.NewFilesystem(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// MetricOptions returns the counting rules in effect.
func (a *Analyzer) MetricOptions() cyclo.Options {
	return a.opts
}

// AnalyzeFile analyzes a single file read from the analyzer's source.
func (a *Analyzer) AnalyzeFile(path string) (*FileResult, error) {
	content, err := a.source.Read(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return a.AnalyzeSource(content, path)
}

// AnalyzeSource analyzes content as if it were the file at path.
func (a *Analyzer) AnalyzeSource(content []byte, path string) (*FileResult, error) {
	fr, err := a.analyzeContent(a.parser, path, content)
	if err != nil {
		return nil, err
	}
	return &fr, nil
}

// Analyze analyzes files in parallel. Files that fail are left out of the
// analysis and reported in the returned *fileproc.ProcessingErrors, which
// accompanies a usable analysis.
// Progress is tracked via context using analyzer.WithTracker.
func (a *Analyzer) Analyze(ctx context.Context, files []string) (*Analysis, error) {
	results, errs := fileproc.MapFilesN(ctx, files, a.source,
		fileproc.Options{MaxFileSize: a.maxFileSize}, a.analyzeContent)

	analysis := buildAnalysis(results, a.opts, a.thresholds)
	if errs != nil {
		return analysis, errs
	}
	return analysis, nil
}

// Close releases analyzer resources.
func (a *Analyzer) Close() {
	a.parser.Close()
}

func (a *Analyzer) analyzeContent(psr *parser.Parser, path string, content []byte) (FileResult, error) {
	fingerprint := a.opts.Fingerprint()

	var cached FileResult
	if a.cache.Lookup(path, fingerprint, content, &cached) {
		return cached, nil
	}

	lang := parser.DetectLanguage(path)
	if lang == parser.LangUnknown {
		return FileResult{}, fmt.Errorf("%w for file: %s", parser.ErrUnsupportedLanguage, path)
	}

	result, err := psr.Parse(content, lang, path)
	if err != nil {
		return FileResult{}, err
	}
	defer result.Tree.Close()

	fr := measureDocument(parser.Lower(result), a.opts)
	fr.Language = string(lang)

	// A failed store only costs a re-parse next run.
	_ = a.cache.Store(path, fingerprint, content, fr)
	return fr, nil
}

// measureDocument scores every unit of doc and totals them per class.
func measureDocument(doc *parser.Document, opts cyclo.Options) FileResult {
	fr := FileResult{
		Path:    doc.Path,
		Units:   make([]UnitResult, 0, len(doc.Units)),
		Classes: make([]ClassResult, 0, len(doc.Classes)),
	}

	for _, c := range doc.Classes {
		fr.Classes = append(fr.Classes, ClassResult{
			Name:      c.Name,
			Kind:      c.Kind,
			StartLine: c.StartLine,
			EndLine:   c.EndLine,
		})
	}

	for _, u := range doc.Units {
		score := cyclo.Compute(u.Node, opts)
		fr.Units = append(fr.Units, UnitResult{
			Name:       u.Name,
			Signature:  u.Signature,
			Class:      u.Class,
			Kind:       string(u.Kind),
			StartLine:  u.StartLine,
			EndLine:    u.EndLine,
			Cyclomatic: score,
		})

		fr.TotalCyclomatic += score
		fr.MaxCyclomatic = max(fr.MaxCyclomatic, score)

		if i := u.ClassIndex; i >= 0 && i < len(fr.Classes) {
			c := &fr.Classes[i]
			c.Units++
			c.Total += score
			c.Highest = max(c.Highest, score)
		}
	}

	for i := range fr.Classes {
		if c := &fr.Classes[i]; c.Units > 0 {
			c.Average = float64(c.Total) / float64(c.Units)
		}
	}
	if len(fr.Units) > 0 {
		fr.AvgCyclomatic = float64(fr.TotalCyclomatic) / float64(len(fr.Units))
	}

	return fr
}

// buildAnalysis constructs an Analysis from file results.
func buildAnalysis(results []FileResult, opts cyclo.Options, thresholds Thresholds) *Analysis {
	sort.SliceStable(results, func(i, j int) bool { return results[i].Path < results[j].Path })

	analysis := &Analysis{
		Options:    opts.String(),
		Thresholds: thresholds,
		Files:      results,
		Violations: make([]Violation, 0),
	}
	if analysis.Files == nil {
		analysis.Files = make([]FileResult, 0)
	}

	var scores []float64
	for _, fr := range results {
		analysis.Summary.TotalClasses += len(fr.Classes)
		analysis.Summary.TotalCyclomatic += fr.TotalCyclomatic
		analysis.Summary.MaxCyclomatic = max(analysis.Summary.MaxCyclomatic, fr.MaxCyclomatic)

		for _, u := range fr.Units {
			scores = append(scores, float64(u.Cyclomatic))
		}
		analysis.Violations = append(analysis.Violations, fileViolations(fr, thresholds)...)
	}

	analysis.Summary.TotalFiles = len(results)
	analysis.Summary.TotalUnits = len(scores)
	analysis.Summary.ViolationCount = len(analysis.Violations)

	if len(scores) > 0 {
		sort.Float64s(scores)
		analysis.Summary.AvgCyclomatic = stat.Mean(scores, nil)
		analysis.Summary.P50Cyclomatic = percentile(scores, 0.50)
		analysis.Summary.P90Cyclomatic = percentile(scores, 0.90)
		analysis.Summary.P95Cyclomatic = percentile(scores, 0.95)
	}

	return analysis
}

// percentile returns the empirical p-quantile of sorted.
func percentile(sorted []float64, p float64) int {
	if len(sorted) == 0 {
		return 0
	}
	return int(stat.Quantile(p, stat.Empirical, sorted, nil))
}

// fileViolations lists the units and classes of fr at or above their
// report levels, classes first, in source order.
func fileViolations(fr FileResult, thresholds Thresholds) []Violation {
	var violations []Violation

	for _, c := range fr.Classes {
		if c.Units == 0 || !thresholds.ClassViolation(c.Total) {
			continue
		}
		violations = append(violations, Violation{
			Rule:      RuleClassComplexity,
			File:      fr.Path,
			Line:      c.StartLine,
			Name:      c.Name,
			Value:     c.Total,
			Threshold: thresholds.Class,
			Message:   classMessage(c),
		})
	}

	for _, u := range fr.Units {
		if !thresholds.MethodViolation(u.Cyclomatic) {
			continue
		}
		name := u.Signature
		if u.Class != "" {
			name = u.Class + "." + u.Signature
		}
		violations = append(violations, Violation{
			Rule:      RuleMethodComplexity,
			File:      fr.Path,
			Line:      u.StartLine,
			Name:      name,
			Value:     u.Cyclomatic,
			Threshold: thresholds.Method,
			Message:   unitMessage(u),
		})
	}

	return violations
}
