package tools

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"roadmap/internal/errs"
	"roadmap/internal/gap"
	"roadmap/internal/knowledge"
	"roadmap/internal/project"
	"roadmap/internal/session"
	"roadmap/internal/trigger"
)

// CheckTriggerTool handles the roadmap_check_trigger MCP tool. Every
// conversation turn passes through here: the turn is recorded in session
// history and the generation trigger detector decides whether the user
// just asked for (or accepted) deliverable generation.
type CheckTriggerTool struct {
	store    project.Store
	ledgers  knowledge.Store
	sessions *session.Store
	analyzer *gap.Analyzer
}

// NewCheckTriggerTool creates a CheckTriggerTool with the given stores.
func NewCheckTriggerTool(store project.Store, ledgers knowledge.Store, sessions *session.Store) *CheckTriggerTool {
	return &CheckTriggerTool{
		store:    store,
		ledgers:  ledgers,
		sessions: sessions,
		analyzer: gap.NewAnalyzer(),
	}
}

// Definition returns the MCP tool definition for registration.
func (t *CheckTriggerTool) Definition() mcp.Tool {
	return mcp.NewTool("roadmap_check_trigger",
		mcp.WithDescription(
			"Record a conversation turn and check whether it triggers "+
				"deliverable generation. Call this for every turn of a "+
				"knowledge-gathering session: assistant turns register offers "+
				"(\"Shall I generate the SIPOC?\"), user turns fire on explicit "+
				"requests, on confirmations of an outstanding offer, or on short "+
				"confirmations once the phase is complete enough. "+
				"Never generate a deliverable unless this tool says fire.",
		),
		mcp.WithString("project_id",
			mcp.Required(),
			mcp.Description("The project the conversation is about."),
		),
		mcp.WithString("session_id",
			mcp.Required(),
			mcp.Description("Conversation session ID. A new ID starts a new session."),
		),
		mcp.WithString("speaker",
			mcp.Required(),
			mcp.Description("Who spoke this turn: `user` or `assistant`."),
		),
		mcp.WithString("utterance",
			mcp.Required(),
			mcp.Description("The turn's text."),
		),
		mcp.WithString("completeness",
			mcp.Description("Overall completeness of the current phase, 0-100. "+
				"Computed from the gap analysis if omitted."),
		),
	)
}

// Handle processes the roadmap_check_trigger tool call.
func (t *CheckTriggerTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("project_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	sessionID, err := req.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	speaker := session.Speaker(req.GetString("speaker", ""))
	if err := session.ValidateSpeaker(speaker); err != nil {
		return errorResult(err)
	}
	utterance, err := req.RequireString("utterance")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	p, err := t.store.Load(id)
	if err != nil {
		return errorResult(err)
	}

	completeness, focusName, err := t.resolveCompleteness(p, req.GetString("completeness", ""))
	if err != nil {
		return errorResult(err)
	}

	if err := t.sessions.StartSession(sessionID, id); err != nil {
		return nil, err
	}

	det, err := t.replayDetector(sessionID)
	if err != nil {
		return nil, err
	}

	if speaker == session.SpeakerAssistant {
		det.ObserveAssistant(utterance)
		if _, err := t.sessions.AddTurn(session.AddTurnParams{
			SessionID:    sessionID,
			Project:      id,
			Speaker:      speaker,
			Content:      utterance,
			Completeness: completeness,
			State:        string(det.State()),
		}); err != nil {
			return nil, err
		}
		if det.State() == trigger.StateOffered {
			return mcp.NewToolResultText(
				"Offer registered. A short confirmation from the user in the next turn will trigger generation.",
			), nil
		}
		return mcp.NewToolResultText("Turn recorded. No offer detected."), nil
	}

	dec := det.ObserveUser(utterance, completeness)
	dec.Phase = string(p.CurrentPhase)
	if _, err := t.sessions.AddTurn(session.AddTurnParams{
		SessionID:    sessionID,
		Project:      id,
		Speaker:      speaker,
		Content:      utterance,
		Completeness: completeness,
		State:        string(det.State()),
	}); err != nil {
		return nil, err
	}

	var b strings.Builder
	if dec.Fire {
		b.WriteString("# 🔥 Generation Triggered\n\n")
	} else {
		b.WriteString("# No Trigger\n\n")
	}
	fmt.Fprintf(&b, "**Reason:** %s\n**Phase:** %s\n**Overall completeness:** %d%%\n",
		dec.Reason, dec.Phase, dec.Completeness)
	if focusName != "" {
		fmt.Fprintf(&b, "**Deliverable in focus:** %s\n", titleCase(focusName))
	}
	if dec.Fire {
		b.WriteString("\nGenerate the deliverable now, write it to the project's deliverables " +
			"folder, then report completeness with `roadmap_update_deliverable`.")
	}
	return mcp.NewToolResultText(b.String()), nil
}

// resolveCompleteness parses an explicit overall-completeness argument
// or derives it from the gap analysis. The focus deliverable's name
// comes along for display.
func (t *CheckTriggerTool) resolveCompleteness(p *project.Project, raw string) (int, string, error) {
	if raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return 0, "", errs.New(errs.Validation, "completeness must be a number, got %q", raw)
		}
		return n, "", nil
	}

	ledger, err := t.ledgers.LoadOrInit(p.ID)
	if err != nil {
		return 0, "", err
	}
	brief := t.analyzer.Analyze(p, ledger)
	focusName := ""
	if focus, ok := brief.FocusGap(); ok {
		focusName = focus.Deliverable
	}
	return brief.OverallCompleteness, focusName, nil
}

// replayDetector rebuilds the session's detector state from its recent
// turns. The detector itself is in-memory only; the session store is
// the durable record, so a restart just replays the window.
func (t *CheckTriggerTool) replayDetector(sessionID string) (*trigger.Detector, error) {
	det := trigger.NewDetector()
	turns, err := t.sessions.RecentTurns(sessionID, 0)
	if err != nil {
		return nil, err
	}
	for _, turn := range turns {
		if det.State() == trigger.StateTriggered {
			// The fire was already reported when this turn was live.
			det.Reset()
		}
		if turn.Speaker == session.SpeakerAssistant {
			det.ObserveAssistant(turn.Content)
		} else {
			det.ObserveUser(turn.Content, turn.Completeness)
		}
	}
	if det.State() == trigger.StateTriggered {
		det.Reset()
	}
	return det, nil
}
