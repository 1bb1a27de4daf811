package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"roadmap/internal/project"
)

// ArchiveProjectTool handles the roadmap_archive_project MCP tool.
// Archiving is the terminal lifecycle operation: the project directory
// moves under archive/ and stops appearing in listings. Nothing is
// deleted.
type ArchiveProjectTool struct {
	store project.Store
}

// NewArchiveProjectTool creates an ArchiveProjectTool with the given
// store.
func NewArchiveProjectTool(store project.Store) *ArchiveProjectTool {
	return &ArchiveProjectTool{store: store}
}

// Definition returns the MCP tool definition for registration.
func (t *ArchiveProjectTool) Definition() mcp.Tool {
	return mcp.NewTool("roadmap_archive_project",
		mcp.WithDescription(
			"Archive a finished or abandoned project. The project and all its "+
				"knowledge, deliverables, and gate reviews move to the archive "+
				"folder and no longer show up in project listings. Nothing is deleted.",
		),
		mcp.WithString("project_id",
			mcp.Required(),
			mcp.Description("The project to archive."),
		),
	)
}

// Handle processes the roadmap_archive_project tool call.
func (t *ArchiveProjectTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("project_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := t.store.Archive(id); err != nil {
		return errorResult(err)
	}
	return mcp.NewToolResultText(fmt.Sprintf("Project `%s` archived.", id)), nil
}
