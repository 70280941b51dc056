package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/panbanda/cyclo/internal/fileproc"
	"github.com/panbanda/cyclo/internal/output"
	"github.com/panbanda/cyclo/internal/scanner"
	"github.com/panbanda/cyclo/pkg/analyzer/complexity"
	"github.com/panbanda/cyclo/pkg/config"
)

// AnalyzeInput is the base input for analyze tools.
type AnalyzeInput struct {
	Paths  []string `json:"paths,omitempty" jsonschema:"Paths to analyze. Defaults to current directory if empty."`
	Format string   `json:"format,omitempty" jsonschema:"Output format: toon (default), json, or markdown."`
}

// CyclomaticInput adds the counting rules and report levels.
type CyclomaticInput struct {
	AnalyzeInput
	IgnoreBooleanPaths bool `json:"ignore_boolean_paths,omitempty" jsonschema:"Do not count && and || in conditions."`
	ConsiderAssert     bool `json:"consider_assert,omitempty" jsonschema:"Count assert statements as decision points."`
	MethodThreshold    int  `json:"method_threshold,omitempty" jsonschema:"Method report level. Default 10."`
	ClassThreshold     int  `json:"class_threshold,omitempty" jsonschema:"Class report level. Default 80."`
	ViolationsOnly     bool `json:"violations_only,omitempty" jsonschema:"Return only violations and the summary, omit per-file results."`
}

func getPaths(input AnalyzeInput) []string {
	if len(input.Paths) == 0 {
		return []string{"."}
	}
	return input.Paths
}

func getFormat(input AnalyzeInput) output.Format {
	switch input.Format {
	case "json":
		return output.FormatJSON
	case "markdown", "md":
		return output.FormatMarkdown
	default:
		return output.FormatTOON
	}
}

func formatOutput(data any, format output.Format) (string, error) {
	switch format {
	case output.FormatJSON:
		out, err := json.MarshalIndent(data, "", "  ")
		if err != nil {
			return "", err
		}
		return string(out), nil
	case output.FormatMarkdown:
		out, err := output.MarshalTOON(data)
		if err != nil {
			return "", err
		}
		return "```\n" + out + "\n```", nil
	default:
		return output.MarshalTOON(data)
	}
}

func toolResult(data any, format output.Format) (*mcp.CallToolResult, any, error) {
	text, err := formatOutput(data, format)
	if err != nil {
		return nil, nil, err
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}, nil, nil
}

func toolError(msg string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: "Error: " + msg},
		},
		IsError: true,
	}, nil, nil
}

// applyInput layers the tool arguments over the loaded configuration.
func applyInput(cfg *config.Config, input CyclomaticInput) {
	if input.IgnoreBooleanPaths {
		cfg.Metric.IgnoreBooleanPaths = true
	}
	if input.ConsiderAssert {
		cfg.Metric.ConsiderAssert = true
	}
	if input.MethodThreshold > 0 {
		cfg.Thresholds.Method = input.MethodThreshold
	}
	if input.ClassThreshold > 0 {
		cfg.Thresholds.Class = input.ClassThreshold
	}
}

// violationsView is the reduced result returned with violations_only.
type violationsView struct {
	Options    string                 `json:"options" toon:"options"`
	Violations []complexity.Violation `json:"violations" toon:"violations"`
	Summary    complexity.Summary     `json:"summary" toon:"summary"`
}

func handleAnalyzeCyclomatic(ctx context.Context, req *mcp.CallToolRequest, input CyclomaticInput) (*mcp.CallToolResult, any, error) {
	paths := getPaths(input.AnalyzeInput)
	format := getFormat(input.AnalyzeInput)

	cfg := config.LoadOrDefault()
	applyInput(cfg, input)

	files, err := scanner.NewScanner(cfg).ScanPaths(paths)
	if err != nil {
		return toolError(err.Error())
	}
	if len(files) == 0 {
		return toolError("no Java source files found")
	}

	a := complexity.New(
		complexity.WithMetricOptions(cfg.MetricOptions()),
		complexity.WithThresholds(complexity.Thresholds{
			Method: cfg.Thresholds.Method,
			Class:  cfg.Thresholds.Class,
		}),
		complexity.WithMaxFileSize(cfg.Exclude.MaxFileSize),
	)
	defer a.Close()

	result, err := a.Analyze(ctx, files)
	var procErrs *fileproc.ProcessingErrors
	if err != nil && !errors.As(err, &procErrs) {
		return toolError(err.Error())
	}
	if procErrs != nil && len(procErrs.Errors) == len(files) {
		return toolError(fmt.Sprintf("all %d files failed: %v", len(files), procErrs))
	}

	if input.ViolationsOnly {
		return toolResult(violationsView{
			Options:    result.Options,
			Violations: result.Violations,
			Summary:    result.Summary,
		}, format)
	}
	return toolResult(result, format)
}
