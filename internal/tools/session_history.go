package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"roadmap/internal/project"
	"roadmap/internal/session"
)

// SessionHistoryTool handles the roadmap_session_history MCP tool.
type SessionHistoryTool struct {
	store    project.Store
	sessions *session.Store
}

// NewSessionHistoryTool creates a SessionHistoryTool with the given
// stores.
func NewSessionHistoryTool(store project.Store, sessions *session.Store) *SessionHistoryTool {
	return &SessionHistoryTool{store: store, sessions: sessions}
}

// Definition returns the MCP tool definition for registration.
func (t *SessionHistoryTool) Definition() mcp.Tool {
	return mcp.NewTool("roadmap_session_history",
		mcp.WithDescription(
			"Browse a project's conversation history. Without a query, lists "+
				"recent sessions. With a query, full-text searches what was "+
				"actually said across all of the project's sessions.",
		),
		mcp.WithString("project_id",
			mcp.Required(),
			mcp.Description("The project whose history to browse."),
		),
		mcp.WithString("query",
			mcp.Description("Full-text search terms, e.g. \"manager approval\"."),
		),
		mcp.WithString("limit",
			mcp.Description("Maximum sessions or search hits to return (default 10)."),
		),
	)
}

// Handle processes the roadmap_session_history tool call.
func (t *SessionHistoryTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("project_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if _, err := t.store.Load(id); err != nil {
		return errorResult(err)
	}

	limit := 0
	if raw := req.GetString("limit", ""); raw != "" {
		fmt.Sscanf(raw, "%d", &limit)
	}

	if query := req.GetString("query", ""); query != "" {
		return t.search(id, query, limit)
	}
	return t.list(id, limit)
}

func (t *SessionHistoryTool) search(projectID, query string, limit int) (*mcp.CallToolResult, error) {
	results, err := t.sessions.SearchTurns(query, projectID, limit)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No turns matching %q.", query)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Search: %q\n\n%d matching turns:\n\n", query, len(results))
	for _, r := range results {
		fmt.Fprintf(&b, "- **%s** (session `%s`, %s): %s\n",
			r.Speaker, r.SessionID, r.CreatedAt, r.Content)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (t *SessionHistoryTool) list(projectID string, limit int) (*mcp.CallToolResult, error) {
	sessions, err := t.sessions.SessionsForProject(projectID, limit)
	if err != nil {
		return nil, err
	}
	if len(sessions) == 0 {
		return mcp.NewToolResultText("No sessions recorded for this project yet."), nil
	}

	var b strings.Builder
	b.WriteString("# Sessions\n\n")
	b.WriteString("| Session | Started | Ended | Summary |\n")
	b.WriteString("|---------|---------|-------|--------|\n")
	for _, s := range sessions {
		ended, summary := "—", "—"
		if s.EndedAt != nil {
			ended = *s.EndedAt
		}
		if s.Summary != nil {
			summary = *s.Summary
		}
		fmt.Fprintf(&b, "| `%s` | %s | %s | %s |\n", s.ID, s.StartedAt, ended, summary)
	}

	if stats, err := t.sessions.Stats(); err == nil {
		fmt.Fprintf(&b, "\n%d sessions and %d turns recorded overall.\n",
			stats.TotalSessions, stats.TotalTurns)
	}
	return mcp.NewToolResultText(b.String()), nil
}
