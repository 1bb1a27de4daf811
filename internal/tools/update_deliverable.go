package tools

import (
	"context"
	"fmt"
	"strconv"

	"github.com/mark3labs/mcp-go/mcp"

	"roadmap/internal/project"
)

// UpdateDeliverableTool handles the roadmap_update_deliverable MCP tool.
type UpdateDeliverableTool struct {
	store project.Store
}

// NewUpdateDeliverableTool creates an UpdateDeliverableTool with the
// given store.
func NewUpdateDeliverableTool(store project.Store) *UpdateDeliverableTool {
	return &UpdateDeliverableTool{store: store}
}

// Definition returns the MCP tool definition for registration.
func (t *UpdateDeliverableTool) Definition() mcp.Tool {
	return mcp.NewTool("roadmap_update_deliverable",
		mcp.WithDescription(
			"Update the tracked status or completeness of one deliverable, "+
				"for example after generating its file. Only existing "+
				"deliverables can be updated; unknown names are rejected.",
		),
		mcp.WithString("project_id",
			mcp.Required(),
			mcp.Description("The project owning the deliverable."),
		),
		mcp.WithString("deliverable",
			mcp.Required(),
			mcp.Description("Deliverable name, e.g. `sipoc` or `process_map`."),
		),
		mcp.WithString("phase",
			mcp.Description("Phase the deliverable belongs to. Defaults to the current phase."),
		),
		mcp.WithString("status",
			mcp.Description("New status: not_started, in_progress, or complete."),
		),
		mcp.WithString("completeness",
			mcp.Description("New completeness percentage, 0-100."),
		),
	)
}

// Handle processes the roadmap_update_deliverable tool call.
func (t *UpdateDeliverableTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("project_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	name, err := req.RequireString("deliverable")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var upd project.DeliverableUpdate
	if raw := req.GetString("status", ""); raw != "" {
		status := project.DeliverableStatus(raw)
		upd.Status = &status
	}
	if raw := req.GetString("completeness", ""); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("completeness must be a number, got %q", raw)), nil
		}
		upd.Completeness = &n
	}
	if upd.Status == nil && upd.Completeness == nil {
		return mcp.NewToolResultError("nothing to update: provide status or completeness"), nil
	}

	var phase project.PhaseName
	p, err := t.store.Mutate(id, func(p *project.Project) error {
		var err error
		phase, err = requirePhase(p, req.GetString("phase", ""))
		if err != nil {
			return err
		}
		return p.UpdateDeliverable(phase, name, upd)
	})
	if err != nil {
		return errorResult(err)
	}

	d := p.Phases[phase].Deliverables[name]
	response := fmt.Sprintf(
		"Updated **%s** (%s): status `%s`, completeness %d%%.",
		titleCase(name), phase, d.Status, d.Completeness,
	)
	return mcp.NewToolResultText(response), nil
}
