package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"roadmap/internal/project"
)

// ListProjectsTool handles the roadmap_list_projects MCP tool.
type ListProjectsTool struct {
	store project.Store
}

// NewListProjectsTool creates a ListProjectsTool with the given store.
func NewListProjectsTool(store project.Store) *ListProjectsTool {
	return &ListProjectsTool{store: store}
}

// Definition returns the MCP tool definition for registration.
func (t *ListProjectsTool) Definition() mcp.Tool {
	return mcp.NewTool("roadmap_list_projects",
		mcp.WithDescription(
			"List all improvement projects with their current phase, newest first. "+
				"Archived projects are not shown.",
		),
	)
}

// Handle processes the roadmap_list_projects tool call.
func (t *ListProjectsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projects, err := t.store.List()
	if err != nil {
		return errorResult(err)
	}
	if len(projects) == 0 {
		return mcp.NewToolResultText("No projects yet. Create one with `roadmap_create_project`."), nil
	}

	var b strings.Builder
	b.WriteString("# Projects\n\n")
	b.WriteString("| ID | Name | Current Phase | Created |\n")
	b.WriteString("|----|------|---------------|--------|\n")
	for _, p := range projects {
		fmt.Fprintf(&b, "| `%s` | %s | %s %s | %s |\n",
			p.ID, p.Name, phaseEmoji(p.Phases[p.CurrentPhase].Status), p.CurrentPhase, p.Created)
	}
	return mcp.NewToolResultText(b.String()), nil
}
