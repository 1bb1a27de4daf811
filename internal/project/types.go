// Package project holds the lifecycle state machine for improvement
// projects: five sequential phases, each gated behind a set of
// deliverables that must reach minimum completeness before the next
// phase unlocks.
//
// This package follows the same design split as the rest of the engine:
// - types, plan, store, and state machine in separate files
// - Store is an interface; tools depend on the abstraction
// - phases and deliverables are data, so new plans need no new code
package project

import (
	"fmt"
	"strings"
)

// --- Phase name enum ---

// PhaseName identifies one of the five sequential improvement phases.
type PhaseName string

const (
	PhaseStandardization PhaseName = "standardization"
	PhaseOptimization    PhaseName = "optimization"
	PhaseDigitization    PhaseName = "digitization"
	PhaseAutomation      PhaseName = "automation"
	PhaseAutonomization  PhaseName = "autonomization"
)

// PhaseOrder is the total order of phases. Projects advance through
// this sequence forward-only and may never skip a phase.
var PhaseOrder = []PhaseName{
	PhaseStandardization,
	PhaseOptimization,
	PhaseDigitization,
	PhaseAutomation,
	PhaseAutonomization,
}

// PhaseIndex returns the ordinal position of a phase, or -1 if unknown.
func PhaseIndex(name PhaseName) int {
	for i, p := range PhaseOrder {
		if p == name {
			return i
		}
	}
	return -1
}

// ValidatePhase returns an error if the phase name is not recognized.
func ValidatePhase(name PhaseName) error {
	if PhaseIndex(name) < 0 {
		return fmt.Errorf("invalid phase %q: must be one of: standardization, optimization, digitization, automation, autonomization", name)
	}
	return nil
}

// --- Phase status enum ---

// PhaseStatus tracks where a phase sits in its lifecycle.
type PhaseStatus string

const (
	PhaseLocked     PhaseStatus = "locked"
	PhaseInProgress PhaseStatus = "in_progress"
	PhaseComplete   PhaseStatus = "complete"
)

// --- Deliverable status enum ---

// DeliverableStatus tracks progress on a single deliverable.
type DeliverableStatus string

const (
	DeliverableNotStarted DeliverableStatus = "not_started"
	DeliverableInProgress DeliverableStatus = "in_progress"
	DeliverableComplete   DeliverableStatus = "complete"
)

// validDeliverableStatuses is the set of allowed deliverable statuses.
var validDeliverableStatuses = map[DeliverableStatus]bool{
	DeliverableNotStarted: true,
	DeliverableInProgress: true,
	DeliverableComplete:   true,
}

// ValidateDeliverableStatus returns an error if the status is not recognized.
func ValidateDeliverableStatus(s DeliverableStatus) error {
	if !validDeliverableStatuses[s] {
		return fmt.Errorf("invalid deliverable status %q: must be one of: not_started, in_progress, complete", s)
	}
	return nil
}

// --- Core data structures ---

// Deliverable tracks one required document within a phase.
type Deliverable struct {
	Status       DeliverableStatus `json:"status"`
	Completeness int               `json:"completeness"` // 0-100
	LastUpdated  string            `json:"last_updated,omitempty"`
	File         string            `json:"file"` // payload path relative to the project dir
	Gaps         []string          `json:"gaps"`
}

// GateCriteria defines the pass/fail checkpoint for a phase.
// Weights must sum to exactly 100; anything else is a configuration
// error surfaced at load time, never silently normalized.
type GateCriteria struct {
	Threshold       int            `json:"threshold"`
	Weights         map[string]int `json:"weights"`
	SignOffRequired bool           `json:"sign_off_required"`
}

// Phase is one stage of the improvement lifecycle with its gate.
type Phase struct {
	Status       PhaseStatus            `json:"status"`
	Description  string                 `json:"description"`
	GateCriteria GateCriteria           `json:"gate_criteria"`
	Deliverables map[string]Deliverable `json:"deliverables"`
}

// TeamMember is a named role on the project roster.
type TeamMember struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// KnowledgeSource records a file added to the project's knowledge folder.
type KnowledgeSource struct {
	File      string `json:"file"`
	Type      string `json:"type"`
	Processed bool   `json:"processed"`
	AddedBy   string `json:"added_by"`
	DateAdded string `json:"date_added"`
}

// GateRecord captures the outcome of a gate review for audit.
type GateRecord struct {
	Decision  string  `json:"decision"` // PASS | FAIL
	Score     float64 `json:"score"`
	Threshold int     `json:"threshold"`
	Timestamp string  `json:"timestamp"`
}

// Project is the root record, persisted as project.json. It is the
// single source of truth for project state and is read-modify-written
// as a whole on every mutation.
type Project struct {
	ID               string                  `json:"project_id"`
	Name             string                  `json:"project_name"`
	Description      string                  `json:"description"`
	Created          string                  `json:"created"`
	CurrentPhase     PhaseName               `json:"current_phase"`
	Phases           map[PhaseName]*Phase    `json:"phases"`
	Team             map[string]TeamMember   `json:"team"`
	KnowledgeSources []KnowledgeSource       `json:"knowledge_sources"`
	GateReviews      map[PhaseName][]GateRecord `json:"gate_reviews"`
	UpdatedAt        string                  `json:"updated_at"`
}

// --- Slug generation ---

const maxSlugLen = 100

// Slugify converts a project name into a filesystem-safe identifier.
// Example: "SD Light Invoicing" → "sd-light-invoicing"
//
// Rules:
//   - Lowercase
//   - Spaces and underscores become hyphens
//   - Non-alphanumeric characters (except hyphens) are removed
//   - Consecutive hyphens are collapsed
//   - Leading/trailing hyphens are trimmed
//   - Truncated to 100 characters (the validator's upper bound)
func Slugify(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))

	var b strings.Builder
	prevHyphen := false
	for _, r := range s {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			prevHyphen = false
		case r == ' ' || r == '_' || r == '-':
			if !prevHyphen {
				b.WriteByte('-')
				prevHyphen = true
			}
		}
	}

	slug := strings.Trim(b.String(), "-")
	if len(slug) > maxSlugLen {
		slug = strings.TrimRight(slug[:maxSlugLen], "-")
	}
	return slug
}
