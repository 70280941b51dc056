package complexity

import "fmt"

// Rule names reported in violations.
const (
	RuleMethodComplexity = "method_complexity"
	RuleClassComplexity  = "class_complexity"
)

// UnitResult is the cyclomatic complexity of one method or constructor.
type UnitResult struct {
	Name       string `json:"name" toon:"name"`
	Signature  string `json:"signature" toon:"signature"`
	Class      string `json:"class" toon:"class"`
	Kind       string `json:"kind" toon:"kind"`
	StartLine  uint32 `json:"start_line" toon:"start_line"`
	EndLine    uint32 `json:"end_line" toon:"end_line"`
	Cyclomatic int    `json:"cyclomatic" toon:"cyclomatic"`
}

// ClassResult aggregates the units declared directly in a class. Units of
// nested and anonymous classes belong to those classes.
type ClassResult struct {
	Name      string  `json:"name" toon:"name"`
	Kind      string  `json:"kind" toon:"kind"`
	StartLine uint32  `json:"start_line" toon:"start_line"`
	EndLine   uint32  `json:"end_line" toon:"end_line"`
	Units     int     `json:"units" toon:"units"`
	Total     int     `json:"total" toon:"total"`
	Highest   int     `json:"highest" toon:"highest"`
	Average   float64 `json:"average" toon:"average"`
}

// FileResult represents aggregated complexity for a file.
type FileResult struct {
	Path            string        `json:"path" toon:"path"`
	Language        string        `json:"language" toon:"language"`
	Units           []UnitResult  `json:"units" toon:"units"`
	Classes         []ClassResult `json:"classes" toon:"classes"`
	TotalCyclomatic int           `json:"total_cyclomatic" toon:"total_cyclomatic"`
	MaxCyclomatic   int           `json:"max_cyclomatic" toon:"max_cyclomatic"`
	AvgCyclomatic   float64       `json:"avg_cyclomatic" toon:"avg_cyclomatic"`
}

// Violation is a unit or class at or above its report level.
type Violation struct {
	Rule      string `json:"rule" toon:"rule"`
	File      string `json:"file" toon:"file"`
	Line      uint32 `json:"line" toon:"line"`
	Name      string `json:"name" toon:"name"`
	Value     int    `json:"value" toon:"value"`
	Threshold int    `json:"threshold" toon:"threshold"`
	Message   string `json:"message" toon:"message"`
}

// Summary provides aggregate statistics over every unit analyzed.
type Summary struct {
	TotalFiles      int     `json:"total_files" toon:"total_files"`
	TotalClasses    int     `json:"total_classes" toon:"total_classes"`
	TotalUnits      int     `json:"total_units" toon:"total_units"`
	TotalCyclomatic int     `json:"total_cyclomatic" toon:"total_cyclomatic"`
	AvgCyclomatic   float64 `json:"avg_cyclomatic" toon:"avg_cyclomatic"`
	MaxCyclomatic   int     `json:"max_cyclomatic" toon:"max_cyclomatic"`
	P50Cyclomatic   int     `json:"p50_cyclomatic" toon:"p50_cyclomatic"`
	P90Cyclomatic   int     `json:"p90_cyclomatic" toon:"p90_cyclomatic"`
	P95Cyclomatic   int     `json:"p95_cyclomatic" toon:"p95_cyclomatic"`
	ViolationCount  int     `json:"violation_count" toon:"violation_count"`
}

// Analysis represents the full analysis result.
type Analysis struct {
	Options    string       `json:"options" toon:"options"`
	Thresholds Thresholds   `json:"thresholds" toon:"thresholds"`
	Files      []FileResult `json:"files" toon:"files"`
	Violations []Violation  `json:"violations" toon:"violations"`
	Summary    Summary      `json:"summary" toon:"summary"`
}

// Thresholds are the report levels: a unit or class whose complexity
// reaches the level is reported.
type Thresholds struct {
	Method int `json:"method" toon:"method"`
	Class  int `json:"class" toon:"class"`
}

// DefaultThresholds returns the conventional report levels.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Method: 10,
		Class:  80,
	}
}

// MethodViolation reports whether a unit score reaches the method level.
func (t Thresholds) MethodViolation(cyclomatic int) bool {
	return t.Method > 0 && cyclomatic >= t.Method
}

// ClassViolation reports whether a class total reaches the class level.
func (t Thresholds) ClassViolation(total int) bool {
	return t.Class > 0 && total >= t.Class
}

func unitMessage(u UnitResult) string {
	return fmt.Sprintf("The %s '%s' has a cyclomatic complexity of %d.", u.Kind, u.Signature, u.Cyclomatic)
}

func classMessage(c ClassResult) string {
	return fmt.Sprintf("The %s '%s' has a total cyclomatic complexity of %d (highest %d).",
		classWord(c.Kind), c.Name, c.Total, c.Highest)
}

func classWord(kind string) string {
	switch kind {
	case "anonymous":
		return "anonymous class"
	case "":
		return "class"
	default:
		return kind
	}
}
