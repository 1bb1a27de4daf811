package tools

import (
	"context"
	"fmt"
	"log"

	"github.com/mark3labs/mcp-go/mcp"

	"roadmap/internal/extraction"
	"roadmap/internal/knowledge"
	"roadmap/internal/project"
)

// IngestTool handles the roadmap_ingest MCP tool. It parses extracted
// knowledge (facts, sources, exceptions, unknowns) out of raw agent
// output and merges it into the project's knowledge base.
type IngestTool struct {
	store   project.Store
	ledgers knowledge.Store
}

// NewIngestTool creates an IngestTool with the given stores.
func NewIngestTool(store project.Store, ledgers knowledge.Store) *IngestTool {
	return &IngestTool{store: store, ledgers: ledgers}
}

// Definition returns the MCP tool definition for registration.
func (t *IngestTool) Definition() mcp.Tool {
	return mcp.NewTool("roadmap_ingest",
		mcp.WithDescription(
			"Merge extracted process knowledge into a project's knowledge base. "+
				"`extraction` is the JSON object you produced from documents or "+
				"conversation: {\"facts\": [{\"category\", \"fact\", \"confidence\"}], "+
				"\"sources\": [...], \"exceptions\": [...], \"unknowns\": [...]}. "+
				"Surrounding prose or markdown fences are tolerated. Duplicate facts "+
				"(same category and text) are skipped, never overwritten.",
		),
		mcp.WithString("project_id",
			mcp.Required(),
			mcp.Description("The project receiving the knowledge."),
		),
		mcp.WithString("extraction",
			mcp.Required(),
			mcp.Description("The extraction JSON (may be wrapped in prose or a markdown fence)."),
		),
		mcp.WithString("source",
			mcp.Description("Where this knowledge came from, e.g. a session ID or an uploaded file name."),
		),
	)
}

// Handle processes the roadmap_ingest tool call.
func (t *IngestTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("project_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	raw, err := req.RequireString("extraction")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	source := req.GetString("source", "")

	if _, err := t.store.Load(id); err != nil {
		return errorResult(err)
	}

	payload, err := extraction.Parse(raw, source)
	if err != nil {
		return errorResult(err)
	}
	if payload.Empty() {
		return mcp.NewToolResultText("Extraction contained nothing to merge. The knowledge base is unchanged."), nil
	}

	ledger, err := t.ledgers.LoadOrInit(id)
	if err != nil {
		return errorResult(err)
	}
	stats := ledger.Merge(payload)
	if err := t.ledgers.Save(id, ledger); err != nil {
		return errorResult(err)
	}

	// Record provenance on the project record. A failed stamp doesn't
	// undo the merge (the ledger is already durable) but must not be
	// lost silently either.
	if source != "" {
		if _, err := t.store.Mutate(id, func(p *project.Project) error {
			p.AddKnowledgeSource(source, "extraction", "")
			return nil
		}); err != nil {
			log.Printf("WARNING: recording knowledge source %q on project %q: %v", source, id, err)
		}
	}

	response := fmt.Sprintf(
		"# Knowledge Merged\n\n"+
			"| Section | Added |\n"+
			"|---------|-------|\n"+
			"| Facts | %d |\n"+
			"| Sources | %d |\n"+
			"| Exceptions | %d |\n"+
			"| Open questions | %d |\n\n"+
			"Knowledge base now holds %d facts. Run `roadmap_gap_analysis` to see "+
			"how this moved deliverable completeness.",
		stats.FactsAdded, stats.SourcesAdded, stats.ExceptionsAdded, stats.UnknownsAdded,
		len(ledger.Facts),
	)
	return mcp.NewToolResultText(response), nil
}
