// Package gate evaluates generated deliverables against phase criteria
// and renders the PASS/FAIL decision for a phase transition. Scoring is
// rule-based and deterministic: the same deliverable files always
// produce the same review.
package gate

import (
	"fmt"
	"strings"
)

// DeliverableEvaluator scores one deliverable's decoded JSON payload.
// Scores are 0..100; issues explain every point lost.
type DeliverableEvaluator interface {
	Evaluate(data map[string]any) (float64, []string)
}

// FieldPresence scores a deliverable by counting which required fields
// carry a non-empty value. Empty strings and empty lists don't count.
type FieldPresence struct {
	Fields []string
}

func (e FieldPresence) Evaluate(data map[string]any) (float64, []string) {
	var issues []string
	present := 0
	for _, field := range e.Fields {
		if hasValue(data[field]) {
			present++
		} else {
			issues = append(issues, fmt.Sprintf("Missing or empty: %s", field))
		}
	}
	if len(e.Fields) == 0 {
		return 0, []string{"no required fields configured"}
	}
	return float64(present) / float64(len(e.Fields)) * 100, issues
}

// StepList scores a list-of-steps deliverable: 40 points for having at
// least MinItems entries, the remaining 60 split evenly across Attrs by
// the fraction of entries carrying each attribute.
type StepList struct {
	Key      string
	Attrs    []string
	MinItems int
}

func (e StepList) Evaluate(data map[string]any) (float64, []string) {
	items := listOf(data[e.Key])
	if len(items) == 0 {
		return 0, []string{fmt.Sprintf("No %s defined", e.Key)}
	}

	var issues []string
	score := 0.0
	if len(items) >= e.MinItems {
		score += 40
	} else {
		issues = append(issues, fmt.Sprintf("Only %d %s (need at least %d)", len(items), e.Key, e.MinItems))
	}

	attrShare := 60.0 / float64(len(e.Attrs))
	for _, attr := range e.Attrs {
		with := 0
		for _, item := range items {
			if hasValue(item[attr]) {
				with++
			}
		}
		score += float64(with) / float64(len(items)) * attrShare
		if with < len(items) {
			issues = append(issues, fmt.Sprintf("Missing %s for %d %s", attr, len(items)-with, e.Key))
		}
	}
	return score, issues
}

// MetricsBundle checks that each metric category exists and holds at
// least one actual value, not just metric names.
type MetricsBundle struct {
	Categories []string
}

func (e MetricsBundle) Evaluate(data map[string]any) (float64, []string) {
	var issues []string
	present := 0
	for _, cat := range e.Categories {
		metrics, ok := data[cat].(map[string]any)
		if !ok || len(metrics) == 0 {
			issues = append(issues, fmt.Sprintf("Missing %s metrics", cat))
			continue
		}
		hasValues := false
		for _, v := range metrics {
			if v != nil && v != "" {
				hasValues = true
				break
			}
		}
		if hasValues {
			present++
		} else {
			issues = append(issues, fmt.Sprintf("%s metrics defined but no values", titleCase(cat)))
		}
	}
	if len(e.Categories) == 0 {
		return 0, []string{"no metric categories configured"}
	}
	return float64(present) / float64(len(e.Categories)) * 100, issues
}

// MermaidDiagram validates a flowchart: some substance, a recognized
// mermaid header, and at least two connections. The score ladder is
// coarse on purpose — a diagram is either usable or it isn't.
type MermaidDiagram struct{}

func (MermaidDiagram) Evaluate(data map[string]any) (float64, []string) {
	diagram, _ := data["diagram"].(string)
	trimmed := strings.TrimSpace(diagram)
	if len(trimmed) < 50 {
		return 0, []string{"Flowchart diagram missing or too short"}
	}
	if !strings.HasPrefix(trimmed, "flowchart") && !strings.HasPrefix(trimmed, "graph") {
		return 50, []string{"Invalid Mermaid syntax (should start with 'flowchart' or 'graph')"}
	}
	connections := strings.Count(trimmed, "-->") + strings.Count(trimmed, "---")
	if connections < 2 {
		return 60, []string{"Flowchart has too few connections (need at least 2)"}
	}
	return 100, nil
}

// HandledItemList scores a register of items by the fraction carrying
// at least one of the handling attributes. An empty register scores 0:
// "we have no exceptions" is recorded as an explicit entry, not an
// empty list.
type HandledItemList struct {
	Key   string
	Attrs []string
}

func (e HandledItemList) Evaluate(data map[string]any) (float64, []string) {
	items := listOf(data[e.Key])
	if len(items) == 0 {
		return 0, []string{fmt.Sprintf("No %s documented", e.Key)}
	}

	handled := 0
	for _, item := range items {
		for _, attr := range e.Attrs {
			if hasValue(item[attr]) {
				handled++
				break
			}
		}
	}

	var issues []string
	if handled < len(items) {
		issues = append(issues, fmt.Sprintf("Missing %s for %d %s",
			strings.Join(e.Attrs, " or "), len(items)-handled, e.Key))
	}
	return float64(handled) / float64(len(items)) * 100, issues
}

// titleCase uppercases the first letter of each underscore- or
// space-separated word, for human-facing feedback lines.
func titleCase(s string) string {
	words := strings.Fields(strings.ReplaceAll(s, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// hasValue reports whether a decoded JSON value is meaningfully set.
func hasValue(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(val) != ""
	case []any:
		return len(val) > 0
	case map[string]any:
		return len(val) > 0
	default:
		return true
	}
}

// listOf coerces a decoded JSON value into a list of objects, dropping
// non-object entries.
func listOf(v any) []map[string]any {
	raw, ok := v.([]any)
	if !ok {
		return nil
	}
	var out []map[string]any
	for _, item := range raw {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}
