package mcpserver

// Tool descriptions with interpretation guidance for LLMs.

func describeCyclomatic() string {
	return `Measures the cyclomatic complexity of every Java method and constructor, and the total per class.

USE WHEN:
- Identifying methods that are hard to test or maintain
- Finding refactoring candidates before code reviews
- Checking a change against method and class report levels

INTERPRETING RESULTS:
- Every method starts at 1; each if, loop, catch, throw, finally, ternary, lambda and counted case label adds 1
- With boolean paths counted (the default), each && and || in a condition adds 1
- Method complexity >= 10 is reported as a method_complexity violation
- Class total >= 80 is reported as a class_complexity violation
- Nested, local and anonymous classes are measured separately from their enclosing method
- P90 values show the 90th percentile across all methods (codebase trend)

METRICS RETURNED:
- Per-method: signature, class, kind, lines, cyclomatic
- Per-class: units, total, highest, average
- Violations: rule, file, line, name, value, threshold, message
- Summary: totals, average, max, P50, P90, P95, violation count`
}
