// Package tools implements the MCP tool handlers for the improvement
// roadmap engine.
//
// Each tool is a struct that receives its dependencies (stores,
// analyzers) at construction and exposes a Definition for registration
// plus a Handle compatible with mcp-go's CallToolRequest signature.
// One file per tool. Tools render markdown — the engine's types stay
// wire-format free.
package tools

import (
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"roadmap/internal/errs"
	"roadmap/internal/project"
)

// errorResult converts an engine error into an MCP tool error result.
// Validation and not-found problems are the caller's to fix, so they
// come back as tool errors, not protocol errors.
func errorResult(err error) (*mcp.CallToolResult, error) {
	switch errs.KindOf(err) {
	case errs.NotFound, errs.Validation, errs.UpstreamParse:
		return mcp.NewToolResultError(err.Error()), nil
	default:
		return nil, err
	}
}

// phaseEmoji marks phase status in rendered tables.
func phaseEmoji(status project.PhaseStatus) string {
	switch status {
	case project.PhaseComplete:
		return "✅"
	case project.PhaseInProgress:
		return "🔄"
	default:
		return "🔒"
	}
}

// deliverableEmoji marks deliverable status in rendered tables.
func deliverableEmoji(status project.DeliverableStatus) string {
	switch status {
	case project.DeliverableComplete:
		return "✅"
	case project.DeliverableInProgress:
		return "🔄"
	default:
		return "⬜"
	}
}

// titleCase renders snake_case identifiers as readable titles.
func titleCase(s string) string {
	words := strings.Fields(strings.ReplaceAll(s, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// requirePhase parses and validates an optional phase argument,
// defaulting to the project's current phase.
func requirePhase(p *project.Project, raw string) (project.PhaseName, error) {
	if raw == "" {
		return p.CurrentPhase, nil
	}
	phase := project.PhaseName(raw)
	if err := project.ValidatePhase(phase); err != nil {
		return "", errs.Wrap(errs.Validation, err, "parsing phase argument")
	}
	return phase, nil
}

// bullets renders a string slice as a markdown list.
func bullets(items []string) string {
	var b strings.Builder
	for _, item := range items {
		fmt.Fprintf(&b, "- %s\n", item)
	}
	return b.String()
}
