// Package prompts implements MCP prompt handlers for the improvement
// roadmap.
//
// MCP prompts are user-triggered workflows (like slash commands) that
// instruct the AI to execute a specific sequence. Unlike tools (which
// the AI calls), prompts are initiated by the user.
package prompts

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// StartPrompt handles the roadmap-start MCP prompt.
// It guides the AI to set up a project and begin gathering knowledge.
type StartPrompt struct{}

// NewStartPrompt creates a StartPrompt.
func NewStartPrompt() *StartPrompt {
	return &StartPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *StartPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("roadmap-start",
		mcp.WithPromptDescription(
			"Start a new process improvement project. "+
				"Sets up the five-phase roadmap and begins a knowledge-gathering "+
				"conversation about how the process works today.",
		),
		mcp.WithArgument("project_name",
			mcp.ArgumentDescription("Name of the process to improve, e.g. 'Invoice Processing'"),
		),
	)
}

// Handle processes the roadmap-start prompt request.
func (p *StartPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	projectName := "my-process"
	if args := req.Params.Arguments; args != nil {
		if name, ok := args["project_name"]; ok && name != "" {
			projectName = name
		}
	}

	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Start improvement project: %s", projectName),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(fmt.Sprintf(
					"I want to start improving the '%s' process.\n\n"+
						"Please:\n"+
						"1. Run `roadmap_create_project` with name='%s' (ask me for a brief description first)\n"+
						"2. Run `roadmap_gap_analysis` to see what the standardization phase needs\n"+
						"3. Interview me about the process, focusing on the deliverable the gap analysis flags\n"+
						"4. After each of my answers, extract facts as JSON and merge them with `roadmap_ingest`, "+
						"and record both our turns with `roadmap_check_trigger`\n"+
						"5. Only generate a deliverable when `roadmap_check_trigger` says so\n\n"+
						"Keep the questions conversational, one topic at a time.",
					projectName, projectName,
				)),
			},
		},
	}, nil
}
