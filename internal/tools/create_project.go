package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"roadmap/internal/project"
)

// CreateProjectTool handles the roadmap_create_project MCP tool.
// It registers a new improvement project with the five-phase plan.
type CreateProjectTool struct {
	store project.Store
}

// NewCreateProjectTool creates a CreateProjectTool with the given store.
func NewCreateProjectTool(store project.Store) *CreateProjectTool {
	return &CreateProjectTool{store: store}
}

// Definition returns the MCP tool definition for registration.
func (t *CreateProjectTool) Definition() mcp.Tool {
	return mcp.NewTool("roadmap_create_project",
		mcp.WithDescription(
			"Create a new process improvement project. Sets up the five-phase "+
				"roadmap (standardization → optimization → digitization → automation "+
				"→ autonomization) with the first phase unlocked. The project ID is "+
				"derived from the name unless `id` is provided.",
		),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Human-readable project name, e.g. \"SD Light Invoicing\"."),
		),
		mcp.WithString("description",
			mcp.Description("What process this project improves."),
		),
		mcp.WithString("id",
			mcp.Description("Explicit project ID (lowercase letters, digits, hyphens). Derived from the name if omitted."),
		),
	)
}

// Handle processes the roadmap_create_project tool call.
func (t *CreateProjectTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	description := req.GetString("description", "")

	id := req.GetString("id", "")
	if id == "" {
		id = project.Slugify(name)
	}
	if err := project.ValidateProjectID(id); err != nil {
		return errorResult(err)
	}

	p := project.NewProject(id, name, description)
	if err := t.store.Create(p); err != nil {
		return errorResult(err)
	}

	response := fmt.Sprintf(
		"# Project Created\n\n"+
			"**ID:** `%s`\n"+
			"**Name:** %s\n"+
			"**Current phase:** %s\n\n"+
			"The standardization phase is unlocked. Start by ingesting process "+
			"knowledge (SOPs, notes, interviews) with `roadmap_ingest`, then run "+
			"`roadmap_gap_analysis` to see what each deliverable still needs.",
		p.ID, p.Name, p.CurrentPhase,
	)
	return mcp.NewToolResultText(response), nil
}
