package prompts

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

// StatusPrompt handles the roadmap-status MCP prompt.
// It instructs the AI to read and present the project's roadmap state.
type StatusPrompt struct{}

// NewStatusPrompt creates a StatusPrompt.
func NewStatusPrompt() *StatusPrompt {
	return &StatusPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *StatusPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("roadmap-status",
		mcp.WithPromptDescription(
			"Check where an improvement project stands. "+
				"Shows phase progression, deliverable completeness, knowledge "+
				"gaps, and what to do next.",
		),
		mcp.WithArgument("project_id",
			mcp.ArgumentDescription("The project to check. If omitted, list projects and ask."),
		),
	)
}

// Handle processes the roadmap-status prompt request.
func (p *StatusPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	projectID := ""
	if args := req.Params.Arguments; args != nil {
		projectID = args["project_id"]
	}

	text := "Please run `roadmap_list_projects`, ask me which project I mean, then:\n"
	if projectID != "" {
		text = "Please check the project '" + projectID + "':\n"
	}
	text += "1. Run `roadmap_status` and show me the phase and deliverable state in a clear, visual format\n" +
		"2. Run `roadmap_gap_analysis` and highlight the biggest knowledge gap\n" +
		"3. Tell me exactly what I should do next: keep gathering knowledge, generate a deliverable, or run the gate review"

	return &mcp.GetPromptResult{
		Description: "Improvement Project Status",
		Messages: []mcp.PromptMessage{
			{
				Role:    mcp.RoleUser,
				Content: mcp.NewTextContent(text),
			},
		},
	}, nil
}
