package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"roadmap/internal/gap"
	"roadmap/internal/knowledge"
	"roadmap/internal/project"
)

// GapAnalysisTool handles the roadmap_gap_analysis MCP tool. It compares
// the knowledge base against the current phase's deliverable
// requirements and reports what is still missing.
type GapAnalysisTool struct {
	store    project.Store
	ledgers  knowledge.Store
	analyzer *gap.Analyzer
}

// NewGapAnalysisTool creates a GapAnalysisTool with the given stores.
func NewGapAnalysisTool(store project.Store, ledgers knowledge.Store) *GapAnalysisTool {
	return &GapAnalysisTool{store: store, ledgers: ledgers, analyzer: gap.NewAnalyzer()}
}

// Definition returns the MCP tool definition for registration.
func (t *GapAnalysisTool) Definition() mcp.Tool {
	return mcp.NewTool("roadmap_gap_analysis",
		mcp.WithDescription(
			"Analyze what the knowledge base covers and what is still missing "+
				"for the current phase's deliverables. Returns per-deliverable "+
				"completeness, the single gap to focus the next conversation on, "+
				"and recommended next steps.",
		),
		mcp.WithString("project_id",
			mcp.Required(),
			mcp.Description("The project to analyze."),
		),
	)
}

// Handle processes the roadmap_gap_analysis tool call.
func (t *GapAnalysisTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("project_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	p, err := t.store.Load(id)
	if err != nil {
		return errorResult(err)
	}
	ledger, err := t.ledgers.LoadOrInit(id)
	if err != nil {
		return errorResult(err)
	}

	brief := t.analyzer.Analyze(p, ledger)

	var b strings.Builder
	fmt.Fprintf(&b, "# Gap Analysis: %s\n\n", p.Name)
	fmt.Fprintf(&b, "**Phase:** %s\n**Overall completeness:** %d%%\n\n",
		brief.Phase, brief.OverallCompleteness)
	fmt.Fprintf(&b, "Knowledge base: %d facts from %d sources.\n\n",
		brief.Knowledge.FactsCount, brief.Knowledge.SourcesCount)

	b.WriteString("## Deliverables\n\n")
	b.WriteString("| Deliverable | Importance | Completeness | Missing |\n")
	b.WriteString("|-------------|------------|--------------|--------|\n")
	for _, g := range brief.DeliverableGaps {
		missing := strings.Join(g.MissingFields, ", ")
		if missing == "" {
			missing = "—"
		}
		fmt.Fprintf(&b, "| %s | %s | %d%% | %s |\n",
			titleCase(g.Deliverable), g.Importance, g.Completeness, missing)
	}
	b.WriteString("\n")

	if focus, ok := brief.FocusGap(); ok {
		fmt.Fprintf(&b, "## Focus Next\n\n**%s** (%d%% complete)\n\n%s\n\n",
			titleCase(focus.Deliverable), focus.Completeness, focus.Recommendation)
	}

	b.WriteString("## Recommendations\n\n")
	b.WriteString(bullets(brief.Recommendations))
	b.WriteString("\n## Next Steps\n\n")
	for _, step := range brief.NextSteps {
		fmt.Fprintf(&b, "%s\n", step)
	}

	return mcp.NewToolResultText(b.String()), nil
}
