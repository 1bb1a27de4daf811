// Package server wires all MCP components and creates the server instance.
//
// This is the composition root (DIP): it creates concrete implementations
// and injects them into the tools/prompts that depend on abstractions.
// No business logic lives here — only wiring.
package server

import (
	"log"
	"os"
	"path/filepath"

	"github.com/mark3labs/mcp-go/server"

	"roadmap/internal/knowledge"
	"roadmap/internal/project"
	"roadmap/internal/prompts"
	"roadmap/internal/resources"
	"roadmap/internal/session"
	"roadmap/internal/tools"
)

// Version is set at build time via ldflags.
var Version = "dev"

// dataDir resolves the root data directory: ROADMAP_DATA_DIR wins, then
// ~/.roadmap.
func dataDir() string {
	if dir := os.Getenv("ROADMAP_DATA_DIR"); dir != "" {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".roadmap")
}

// New creates and configures the MCP server with all tools and prompts
// registered. This is the single place where all dependencies are
// resolved.
//
// The returned cleanup function closes the session store's database
// connection and must be called on shutdown (typically via defer).
// It is always non-nil and safe to call even if session init failed.
func New() (*server.MCPServer, func(), error) {
	// --- Create shared dependencies ---

	root := dataDir()
	projectStore := project.NewFileStore(filepath.Join(root, "projects"))
	ledgerStore := knowledge.NewFileStore(projectStore.ProjectDir)

	// --- Create the MCP server ---

	s := server.NewMCPServer(
		"roadmap",
		Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithPromptCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	// --- Register project lifecycle tools ---

	createTool := tools.NewCreateProjectTool(projectStore)
	s.AddTool(createTool.Definition(), createTool.Handle)

	listTool := tools.NewListProjectsTool(projectStore)
	s.AddTool(listTool.Definition(), listTool.Handle)

	statusTool := tools.NewStatusTool(projectStore, ledgerStore)
	s.AddTool(statusTool.Definition(), statusTool.Handle)

	archiveTool := tools.NewArchiveProjectTool(projectStore)
	s.AddTool(archiveTool.Definition(), archiveTool.Handle)

	// --- Register knowledge and analysis tools ---

	ingestTool := tools.NewIngestTool(projectStore, ledgerStore)
	s.AddTool(ingestTool.Definition(), ingestTool.Handle)

	gapTool := tools.NewGapAnalysisTool(projectStore, ledgerStore)
	s.AddTool(gapTool.Definition(), gapTool.Handle)

	// --- Register gate and deliverable tools ---

	gateTool := tools.NewGateReviewTool(projectStore)
	s.AddTool(gateTool.Definition(), gateTool.Handle)

	updateTool := tools.NewUpdateDeliverableTool(projectStore)
	s.AddTool(updateTool.Definition(), updateTool.Handle)

	// --- Register session tools ---
	//
	// Sessions are an independent subsystem: if SQLite fails to
	// initialize, the roadmap tools above continue working. We log a
	// warning and skip session tool registration — knowledge gathering
	// and gate reviews are still fully functional.

	cleanup := noop
	sessions, sessErr := session.New(session.Config{
		DataDir:       root,
		MaxTurnLength: 4000,
	})
	if sessErr != nil {
		log.Printf("WARNING: session subsystem disabled: %v", sessErr)
	} else {
		cleanup = func() {
			if err := sessions.Close(); err != nil {
				log.Printf("WARNING: session store close: %v", err)
			}
		}

		triggerTool := tools.NewCheckTriggerTool(projectStore, ledgerStore, sessions)
		s.AddTool(triggerTool.Definition(), triggerTool.Handle)

		historyTool := tools.NewSessionHistoryTool(projectStore, sessions)
		s.AddTool(historyTool.Definition(), historyTool.Handle)
	}

	// --- Register prompts ---

	startPrompt := prompts.NewStartPrompt()
	s.AddPrompt(startPrompt.Definition(), startPrompt.Handle)

	statusPrompt := prompts.NewStatusPrompt()
	s.AddPrompt(statusPrompt.Definition(), statusPrompt.Handle)

	// --- Register resources ---

	resourceHandler := resources.NewHandler(projectStore)
	s.AddResource(resourceHandler.ProjectsResource(), resourceHandler.HandleProjects)

	return s, cleanup, nil
}

// noop is a no-op cleanup function used as the default when sessions
// are disabled or haven't been initialized.
func noop() {}

// serverInstructions returns the system instructions that tell the AI
// how to run an improvement project effectively.
func serverInstructions() string {
	return `You have access to Roadmap, a process improvement MCP server.

## What Roadmap Does

Roadmap manages process improvement projects through five phase-gated
stages: standardization → optimization → digitization → automation →
autonomization. Each phase has deliverables, and a gate review must PASS
before the next phase unlocks.

You gather knowledge about the process in conversation, the server
tracks what is known and what is missing, and deliverables are only
generated when the user asks for them.

## CRITICAL: How Tools Work

Roadmap tools are STORAGE and SCORING tools, not AI tools. YOU extract
knowledge, YOU write deliverable content; the tools persist, score, and
gate it.

## Knowledge-Gathering Workflow

1. Create the project with roadmap_create_project
2. Run roadmap_gap_analysis to see what the current phase needs
3. Interview the user about the focus deliverable the analysis flags.
   Ask about CONTEXT, one topic at a time:
   - Instead of "describe the process" ask "what arrives, from whom, and
     what do you do with it first?"
   - Probe for exceptions: "when does this NOT work the usual way?"
4. After each substantive answer, extract what you learned as JSON and
   merge it with roadmap_ingest:
   {"facts": [{"category": "...", "fact": "...", "confidence": 0.9}],
    "sources": [...], "exceptions": [...], "unknowns": [...]}
   Use categories matching the deliverable fields (suppliers, inputs,
   steps, volume, exceptions, ...). Record open questions as unknowns.
5. Record EVERY turn (yours and the user's) with roadmap_check_trigger.

## Generation Discipline

NEVER generate a deliverable on your own initiative. Generation happens
only when roadmap_check_trigger fires:
- The user explicitly asks ("generate it", "create the SIPOC"), or
- You offered ("Shall I generate the process map?") and the user
  confirmed, or
- The user gave a short go-ahead while the phase is complete enough.

When it fires: write the deliverable JSON file into the project's
deliverables folder for the phase, then report the new state with
roadmap_update_deliverable.

## Gate Reviews

When roadmap_gap_analysis says all deliverables are ready, offer a gate
review. roadmap_gate_review scores every generated deliverable file,
weighs the scores, and decides PASS or FAIL. A PASS advances the project
to the next phase automatically. On FAIL, read the feedback, fill the
gaps in conversation, regenerate, and review again.

The autonomization gate requires explicit human sign-off — never treat
its PASS as final without the user's confirmation.

## Important Rules

- Follow the phase order; locked phases cannot be reviewed or worked on
- NEVER pass placeholder text to tools — extract REAL facts from what
  the user actually said
- Re-ingesting the same fact is safe (duplicates are skipped), so ingest
  eagerly
- Use roadmap_session_history to recover context from earlier
  conversations instead of asking the user to repeat themselves`
}
