package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"roadmap/internal/knowledge"
	"roadmap/internal/project"
)

// StatusTool handles the roadmap_status MCP tool.
type StatusTool struct {
	store   project.Store
	ledgers knowledge.Store
}

// NewStatusTool creates a StatusTool with the given stores.
func NewStatusTool(store project.Store, ledgers knowledge.Store) *StatusTool {
	return &StatusTool{store: store, ledgers: ledgers}
}

// Definition returns the MCP tool definition for registration.
func (t *StatusTool) Definition() mcp.Tool {
	return mcp.NewTool("roadmap_status",
		mcp.WithDescription(
			"Show the full state of a project: phase progression, deliverable "+
				"completeness, knowledge base size, and gate review history.",
		),
		mcp.WithString("project_id",
			mcp.Required(),
			mcp.Description("The project to inspect."),
		),
	)
}

// Handle processes the roadmap_status tool call.
func (t *StatusTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("project_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	p, err := t.store.Load(id)
	if err != nil {
		return errorResult(err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", p.Name)
	if p.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", p.Description)
	}
	fmt.Fprintf(&b, "**ID:** `%s`\n**Created:** %s\n**Current phase:** %s\n\n", p.ID, p.Created, p.CurrentPhase)

	// Phase overview.
	b.WriteString("## Phases\n\n")
	b.WriteString("| Phase | Status | Gate Threshold |\n")
	b.WriteString("|-------|--------|----------------|\n")
	for _, name := range project.PhaseOrder {
		ph := p.Phases[name]
		fmt.Fprintf(&b, "| %s %s | %s | %d%% |\n",
			phaseEmoji(ph.Status), name, ph.Status, ph.GateCriteria.Threshold)
	}
	b.WriteString("\n")

	// Current phase deliverables.
	current := p.Phases[p.CurrentPhase]
	fmt.Fprintf(&b, "## Deliverables (%s)\n\n", p.CurrentPhase)
	b.WriteString("| Deliverable | Status | Completeness | Weight |\n")
	b.WriteString("|-------------|--------|--------------|--------|\n")
	for _, name := range project.DeliverableOrder(p.CurrentPhase) {
		d, ok := current.Deliverables[name]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "| %s %s | %s | %d%% | %d |\n",
			deliverableEmoji(d.Status), titleCase(name), d.Status, d.Completeness,
			current.GateCriteria.Weights[name])
	}
	b.WriteString("\n")

	// Knowledge base summary, tolerant of a missing ledger.
	if ledger, err := t.ledgers.LoadOrInit(p.ID); err == nil {
		fmt.Fprintf(&b, "## Knowledge Base\n\n%d facts, %d sources, %d open questions\n\n",
			len(ledger.Facts), len(ledger.Sources), len(ledger.Unknowns))
	}

	// Gate review history.
	if len(p.GateReviews) > 0 {
		b.WriteString("## Gate Reviews\n\n")
		for _, name := range project.PhaseOrder {
			for _, rec := range p.GateReviews[name] {
				fmt.Fprintf(&b, "- %s: **%s** (%.1f/%d) at %s\n",
					name, rec.Decision, rec.Score, rec.Threshold, rec.Timestamp)
			}
		}
	}

	return mcp.NewToolResultText(b.String()), nil
}
