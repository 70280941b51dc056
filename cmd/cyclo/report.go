package main

import (
	"fmt"

	"github.com/panbanda/cyclo/internal/output"
	"github.com/panbanda/cyclo/pkg/analyzer/complexity"
)

// violationsView is the serialized result of --violations-only.
type violationsView struct {
	Options    string                 `json:"options" toon:"options"`
	Thresholds complexity.Thresholds  `json:"thresholds" toon:"thresholds"`
	Violations []complexity.Violation `json:"violations" toon:"violations"`
	Summary    complexity.Summary     `json:"summary" toon:"summary"`
}

// buildReport lays out an analysis as a summary, method and class tables,
// and the violations. JSON and TOON output serialize the analysis itself.
func buildReport(result *complexity.Analysis, violationsOnly, colored bool) *output.Report {
	report := &output.Report{
		Title: "Cyclomatic Complexity",
		Data:  result,
	}
	if violationsOnly {
		report.Data = violationsView{
			Options:    result.Options,
			Thresholds: result.Thresholds,
			Violations: result.Violations,
			Summary:    result.Summary,
		}
	}

	report.Parts = append(report.Parts, summarySection(result))
	if !violationsOnly {
		report.Parts = append(report.Parts,
			methodTable(result, colored),
			classTable(result, colored))
	}
	if len(result.Violations) > 0 {
		report.Parts = append(report.Parts, violationTable(result))
	}
	return report
}

func summarySection(result *complexity.Analysis) *output.Section {
	s := result.Summary
	return &output.Section{
		Title: "Summary",
		Fields: []output.Field{
			{Label: "Options", Value: result.Options},
			{Label: "Files", Value: fmt.Sprintf("%d", s.TotalFiles)},
			{Label: "Classes", Value: fmt.Sprintf("%d", s.TotalClasses)},
			{Label: "Methods", Value: fmt.Sprintf("%d", s.TotalUnits)},
			{Label: "Total Cyclomatic", Value: fmt.Sprintf("%d", s.TotalCyclomatic)},
			{Label: "Average Cyclomatic", Value: fmt.Sprintf("%.2f", s.AvgCyclomatic)},
			{Label: "Median Cyclomatic (P50)", Value: fmt.Sprintf("%d", s.P50Cyclomatic)},
			{Label: "90th Percentile Cyclomatic", Value: fmt.Sprintf("%d", s.P90Cyclomatic)},
			{Label: "95th Percentile Cyclomatic", Value: fmt.Sprintf("%d", s.P95Cyclomatic)},
			{Label: "Max Cyclomatic", Value: fmt.Sprintf("%d", s.MaxCyclomatic)},
			{Label: "Violations", Value: fmt.Sprintf("%d", s.ViolationCount)},
		},
	}
}

func levelCell(value, level int, colored bool) string {
	text := fmt.Sprintf("%d", value)
	if !colored {
		return text
	}
	return output.LevelColor(value, level, text)
}

func methodTable(result *complexity.Analysis, colored bool) *output.Table {
	var rows [][]string
	for _, f := range result.Files {
		for _, u := range f.Units {
			rows = append(rows, []string{
				f.Path,
				u.Class,
				u.Signature,
				fmt.Sprintf("%d", u.StartLine),
				levelCell(u.Cyclomatic, result.Thresholds.Method, colored),
			})
		}
	}
	return output.NewTable(
		"Methods",
		[]string{"File", "Class", "Method", "Line", "Cyclomatic"},
		rows,
		[]string{
			fmt.Sprintf("Methods: %d", result.Summary.TotalUnits),
			fmt.Sprintf("Report level: %d", result.Thresholds.Method),
		},
		nil,
	)
}

func classTable(result *complexity.Analysis, colored bool) *output.Table {
	var rows [][]string
	for _, f := range result.Files {
		for _, cl := range f.Classes {
			rows = append(rows, []string{
				f.Path,
				cl.Name,
				cl.Kind,
				fmt.Sprintf("%d", cl.Units),
				levelCell(cl.Total, result.Thresholds.Class, colored),
				fmt.Sprintf("%d", cl.Highest),
				fmt.Sprintf("%.2f", cl.Average),
			})
		}
	}
	return output.NewTable(
		"Classes",
		[]string{"File", "Class", "Kind", "Methods", "Total", "Highest", "Average"},
		rows,
		[]string{
			fmt.Sprintf("Classes: %d", result.Summary.TotalClasses),
			fmt.Sprintf("Report level: %d", result.Thresholds.Class),
		},
		nil,
	)
}

func violationTable(result *complexity.Analysis) *output.Table {
	rows := make([][]string, 0, len(result.Violations))
	for _, v := range result.Violations {
		rows = append(rows, []string{
			v.Rule,
			fmt.Sprintf("%s:%d", v.File, v.Line),
			fmt.Sprintf("%d", v.Value),
			v.Message,
		})
	}
	return output.NewTable(
		"Violations",
		[]string{"Rule", "Location", "Value", "Message"},
		rows,
		nil,
		result.Violations,
	)
}
