// Package resources implements MCP resource handlers for the roadmap.
//
// Resources provide read-only data that the host can consume for
// context. They use URI-based addressing (roadmap://...) following MCP
// conventions.
package resources

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"roadmap/internal/project"
)

// Handler manages roadmap resource endpoints.
type Handler struct {
	store project.Store
}

// NewHandler creates a resource Handler with its dependencies.
func NewHandler(store project.Store) *Handler {
	return &Handler{store: store}
}

// ProjectsResource returns the MCP resource definition for the project
// portfolio.
func (h *Handler) ProjectsResource() mcp.Resource {
	return mcp.NewResource(
		"roadmap://projects",
		"Improvement Projects",
		mcp.WithResourceDescription("All improvement projects with phase and deliverable state"),
		mcp.WithMIMEType("application/json"),
	)
}

// HandleProjects returns every project record as JSON.
func (h *Handler) HandleProjects(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	projects, err := h.store.List()
	if err != nil {
		return errorResource(req.Params.URI, err.Error()), nil
	}
	if projects == nil {
		projects = []project.Project{}
	}

	data, err := json.MarshalIndent(projects, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling projects: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

// errorResource returns a resource with an error message.
func errorResource(uri, message string) []mcp.ResourceContents {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "text/plain",
			Text:     fmt.Sprintf("Error: %s", message),
		},
	}
}
