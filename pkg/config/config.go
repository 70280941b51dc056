// Package config loads cyclo configuration from TOML, YAML or JSON files.
package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	kjson "github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/panbanda/cyclo/pkg/cyclo"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

// ErrInvalidConfig is returned when a config file fails validation.
var ErrInvalidConfig = errors.New("invalid configuration")

//go:embed schema.json
var schemaJSON []byte

// Config holds all configuration options for cyclo.
type Config struct {
	// Counting rules
	Metric MetricConfig `koanf:"metric" toml:"metric" yaml:"metric"`

	// Report levels
	Thresholds ThresholdConfig `koanf:"thresholds" toml:"thresholds" yaml:"thresholds"`

	// File exclusion patterns
	Exclude ExcludeConfig `koanf:"exclude" toml:"exclude" yaml:"exclude"`

	// Cache settings
	Cache CacheConfig `koanf:"cache" toml:"cache" yaml:"cache"`

	// Output settings
	Output OutputConfig `koanf:"output" toml:"output" yaml:"output"`
}

// MetricConfig selects the optional counting rules. Options takes rule
// names in any accepted spelling, such as "ignoreBooleanPaths".
type MetricConfig struct {
	IgnoreBooleanPaths bool     `koanf:"ignore_boolean_paths" toml:"ignore_boolean_paths" yaml:"ignore_boolean_paths"`
	ConsiderAssert     bool     `koanf:"consider_assert" toml:"consider_assert" yaml:"consider_assert"`
	Options            []string `koanf:"options" toml:"options" yaml:"options,omitempty"`
}

// ThresholdConfig defines the method and class report levels.
type ThresholdConfig struct {
	Method int `koanf:"method" toml:"method" yaml:"method"`
	Class  int `koanf:"class" toml:"class" yaml:"class"`
}

// ExcludeConfig defines file exclusion patterns.
type ExcludeConfig struct {
	Patterns    []string `koanf:"patterns" toml:"patterns" yaml:"patterns"`
	Dirs        []string `koanf:"dirs" toml:"dirs" yaml:"dirs"`
	Gitignore   bool     `koanf:"gitignore" toml:"gitignore" yaml:"gitignore"`
	MaxFileSize int64    `koanf:"max_file_size" toml:"max_file_size" yaml:"max_file_size"` // bytes, 0 = no limit
}

// CacheConfig controls caching behavior.
type CacheConfig struct {
	Enabled bool   `koanf:"enabled" toml:"enabled" yaml:"enabled"`
	Dir     string `koanf:"dir" toml:"dir" yaml:"dir"`
	TTL     int    `koanf:"ttl" toml:"ttl" yaml:"ttl"` // TTL in hours
}

// OutputConfig controls output formatting.
type OutputConfig struct {
	Format  string `koanf:"format" toml:"format" yaml:"format"` // text, json, markdown, toon
	Color   bool   `koanf:"color" toml:"color" yaml:"color"`
	Verbose bool   `koanf:"verbose" toml:"verbose" yaml:"verbose"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Thresholds: ThresholdConfig{
			Method: 10,
			Class:  80,
		},
		Exclude: ExcludeConfig{
			Patterns: []string{
				"package-info.java",
				"module-info.java",
			},
			Dirs: []string{
				".git",
				".cyclo",
				".gradle",
				".idea",
				"build",
				"target",
				"out",
				"node_modules",
			},
			Gitignore:   true,
			MaxFileSize: 1 << 20,
		},
		Cache: CacheConfig{
			Enabled: true,
			Dir:     ".cyclo/cache",
			TTL:     24,
		},
		Output: OutputConfig{
			Format:  "text",
			Color:   true,
			Verbose: false,
		},
	}
}

// Formats lists the accepted output formats.
var Formats = []string{"text", "json", "markdown", "toon"}

// configNames are searched, in order, in each search directory.
var configNames = []string{
	"cyclo.toml",
	"cyclo.yaml",
	"cyclo.yml",
	"cyclo.json",
	".cyclo.toml",
	".cyclo.yaml",
	".cyclo.yml",
	".cyclo.json",
}

// LoadResult is a loaded configuration and the file it came from. Source is
// empty when no file was found and defaults are in effect.
type LoadResult struct {
	Config *Config
	Source string
}

type loadOptions struct {
	path string
	dir  string
}

// LoadOption customizes LoadConfig.
type LoadOption func(*loadOptions)

// WithPath loads the given file instead of searching.
func WithPath(path string) LoadOption {
	return func(o *loadOptions) {
		o.path = path
	}
}

// WithDir searches dir and dir/.cyclo instead of the working directory.
func WithDir(dir string) LoadOption {
	return func(o *loadOptions) {
		o.dir = dir
	}
}

// LoadConfig loads and validates configuration. Without WithPath it uses
// the first config file found, or the defaults when there is none.
func LoadConfig(opts ...LoadOption) (*LoadResult, error) {
	o := loadOptions{dir: "."}
	for _, opt := range opts {
		opt(&o)
	}

	path := o.path
	if path == "" {
		path = Find(o.dir)
	}
	if path == "" {
		return &LoadResult{Config: DefaultConfig()}, nil
	}

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	return &LoadResult{Config: cfg, Source: path}, nil
}

// Find returns the first config file in dir or dir/.cyclo, or "".
func Find(dir string) string {
	for _, d := range []string{dir, filepath.Join(dir, ".cyclo")} {
		for _, name := range configNames {
			path := filepath.Join(d, name)
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				return path
			}
		}
	}
	return ""
}

// Load loads and validates configuration from a file. Settings missing
// from the file keep their defaults.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	if err := k.Load(file.Provider(path), parserFor(path)); err != nil {
		return nil, fmt.Errorf("failed to load config %s: %w", path, err)
	}

	if err := validateSchema(k.Raw()); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, path, err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return cfg, nil
}

// LoadOrDefault loads config from the standard locations, falling back to
// defaults when none is found or it fails to load.
func LoadOrDefault() *Config {
	result, err := LoadConfig()
	if err != nil {
		return DefaultConfig()
	}
	return result.Config
}

func parserFor(path string) koanf.Parser {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Parser()
	case ".json":
		return kjson.Parser()
	default:
		return toml.Parser()
	}
}

// validateSchema checks the raw document against the embedded JSON Schema.
// The document goes through JSON so that every parser's value types look
// alike to the validator.
func validateSchema(raw map[string]any) error {
	schema, err := compileSchema()
	if err != nil {
		return err
	}

	data, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return err
	}

	return schema.Validate(doc)
}

func compileSchema() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to read config schema: %w", err)
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource("cyclo.schema.json", doc); err != nil {
		return nil, fmt.Errorf("failed to add config schema: %w", err)
	}
	return c.Compile("cyclo.schema.json")
}

// Validate checks semantic rules the schema cannot express, and the rules
// it does, for configs built in code.
func (c *Config) Validate() error {
	var problems []string

	if c.Thresholds.Method < 1 {
		problems = append(problems, fmt.Sprintf("thresholds.method must be at least 1, got %d", c.Thresholds.Method))
	}
	if c.Thresholds.Class < 1 {
		problems = append(problems, fmt.Sprintf("thresholds.class must be at least 1, got %d", c.Thresholds.Class))
	}
	if c.Cache.TTL < 0 {
		problems = append(problems, fmt.Sprintf("cache.ttl must not be negative, got %d", c.Cache.TTL))
	}
	if c.Exclude.MaxFileSize < 0 {
		problems = append(problems, fmt.Sprintf("exclude.max_file_size must not be negative, got %d", c.Exclude.MaxFileSize))
	}
	if !isFormat(c.Output.Format) {
		problems = append(problems, fmt.Sprintf("output.format must be one of %s, got %q",
			strings.Join(Formats, ", "), c.Output.Format))
	}
	for _, name := range c.Metric.Options {
		if _, err := cyclo.ParseOption(name); err != nil {
			problems = append(problems, fmt.Sprintf("metric.options: %v", err))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

func isFormat(format string) bool {
	for _, f := range Formats {
		if f == format {
			return true
		}
	}
	return false
}

// MetricOptions builds the counting rules from the metric section. Unknown
// names in Options are ignored; Validate reports them.
func (c *Config) MetricOptions() cyclo.Options {
	var flags []cyclo.Option
	if c.Metric.IgnoreBooleanPaths {
		flags = append(flags, cyclo.IgnoreBooleanPaths)
	}
	if c.Metric.ConsiderAssert {
		flags = append(flags, cyclo.ConsiderAssert)
	}
	for _, name := range c.Metric.Options {
		if opt, err := cyclo.ParseOption(name); err == nil {
			flags = append(flags, opt)
		}
	}
	return cyclo.NewOptions(flags...)
}

// ShouldExclude checks if a path should be excluded from analysis.
func (c *Config) ShouldExclude(path string) bool {
	sep := string(filepath.Separator)

	for _, dir := range c.Exclude.Dirs {
		if strings.Contains(path, sep+dir+sep) || strings.HasPrefix(path, dir+sep) {
			return true
		}
	}

	base := filepath.Base(path)
	for _, pattern := range c.Exclude.Patterns {
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
	}

	return false
}
