package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"roadmap/internal/gate"
	"roadmap/internal/project"
)

// GateReviewTool handles the roadmap_gate_review MCP tool. It scores a
// phase's generated deliverables against the gate criteria and, on
// PASS, advances the project to the next phase.
type GateReviewTool struct {
	store project.Store
}

// NewGateReviewTool creates a GateReviewTool with the given store.
func NewGateReviewTool(store project.Store) *GateReviewTool {
	return &GateReviewTool{store: store}
}

// Definition returns the MCP tool definition for registration.
func (t *GateReviewTool) Definition() mcp.Tool {
	return mcp.NewTool("roadmap_gate_review",
		mcp.WithDescription(
			"Run the gate review for a phase: score every generated deliverable "+
				"file against its quality rule, weigh the scores, and decide "+
				"PASS or FAIL. A PASS completes the phase and unlocks the next "+
				"one. The decision is recorded in the project's gate history.",
		),
		mcp.WithString("project_id",
			mcp.Required(),
			mcp.Description("The project under review."),
		),
		mcp.WithString("phase",
			mcp.Description("Phase to review. Defaults to the project's current phase."),
		),
	)
}

// Handle processes the roadmap_gate_review tool call.
func (t *GateReviewTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("project_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	p, err := t.store.Load(id)
	if err != nil {
		return errorResult(err)
	}
	phase, err := requirePhase(p, req.GetString("phase", ""))
	if err != nil {
		return errorResult(err)
	}
	if project.PhaseIndex(phase) > project.PhaseIndex(p.CurrentPhase) {
		return mcp.NewToolResultError(fmt.Sprintf(
			"cannot review gate for locked phase %q (current phase is %q)", phase, p.CurrentPhase)), nil
	}

	review, err := gate.Evaluate(p, phase, t.store.DeliverablesDir(id, phase))
	if err != nil {
		return errorResult(err)
	}

	// Persist the full breakdown first; the project mutation below only
	// carries the summary record.
	if err := gate.WriteReview(t.store.GateReviewPath(id, phase), review); err != nil {
		return errorResult(err)
	}

	p, err = t.store.Mutate(id, func(p *project.Project) error {
		return p.ApplyGateResult(phase, review.Record())
	})
	if err != nil {
		return errorResult(err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Gate Review: %s\n\n%s\n\n", phase, review.Summary)
	b.WriteString("## Deliverables\n\n")
	b.WriteString(gate.FeedbackText(review))
	b.WriteString("\n")

	if review.SignOffRequired {
		b.WriteString("\n⚠️ This gate requires explicit human sign-off. The recorded decision " +
			"has already been applied; confirm it with the process owner now.\n")
	}
	if review.Decision == "PASS" {
		fmt.Fprintf(&b, "\nCurrent phase is now **%s**.\n", p.CurrentPhase)
	} else {
		b.WriteString("\nAddress the issues above, regenerate the deliverables, and run the review again.\n")
	}
	return mcp.NewToolResultText(b.String()), nil
}
