package gap

import (
	"fmt"
	"strings"

	"roadmap/internal/knowledge"
	"roadmap/internal/project"
)

// readyThreshold is the per-deliverable completeness at which a
// deliverable stops being flagged in recommendations.
const readyThreshold = 80

// DeliverableGap is the analysis result for one deliverable.
type DeliverableGap struct {
	Deliverable    string     `json:"deliverable"`
	Description    string     `json:"description"`
	Importance     Importance `json:"importance"`
	FoundFields    []string   `json:"found_fields"`
	MissingFields  []string   `json:"missing_fields"`
	Completeness   int        `json:"completeness_pct"`
	Recommendation string     `json:"recommendation"`
}

// KnowledgeSummary describes how much the ledger holds.
type KnowledgeSummary struct {
	FactsCount   int            `json:"facts_count"`
	SourcesCount int            `json:"sources_count"`
	Categories   map[string]int `json:"categories"`
}

// Brief is the full gap analysis for a project's current phase.
type Brief struct {
	ProjectID           string           `json:"project_id"`
	Phase               project.PhaseName `json:"phase"`
	Timestamp           string           `json:"timestamp"`
	Knowledge           KnowledgeSummary `json:"knowledge_summary"`
	DeliverableGaps     []DeliverableGap `json:"deliverable_gaps"`
	OverallCompleteness int              `json:"overall_completeness_pct"`
	Recommendations     []string         `json:"recommendations"`
	NextSteps           []string         `json:"next_steps"`
}

// FocusGap returns the deliverable the next conversation should target:
// lowest completeness among those with missing fields. Ties keep the
// earlier deliverable, so the table's declaration order breaks them.
func (b *Brief) FocusGap() (DeliverableGap, bool) {
	var focus DeliverableGap
	found := false
	for _, g := range b.DeliverableGaps {
		if len(g.MissingFields) == 0 {
			continue
		}
		if !found || g.Completeness < focus.Completeness {
			focus = g
			found = true
		}
	}
	return focus, found
}

// Analyzer scores deliverable completeness against the ledger.
type Analyzer struct {
	Matcher FieldMatcher
}

// NewAnalyzer returns an analyzer with the default substring matcher.
func NewAnalyzer() *Analyzer {
	return &Analyzer{Matcher: SubstringMatcher{}}
}

// Analyze produces the gap brief for the project's current phase. The
// ledger may be freshly initialized (no facts yet); the brief then shows
// every field as missing rather than failing.
func (a *Analyzer) Analyze(p *project.Project, l *knowledge.Ledger) *Brief {
	phase := p.CurrentPhase
	reqs := Requirements(phase)

	var gaps []DeliverableGap
	for _, name := range project.DeliverableOrder(phase) {
		req, ok := reqs[name]
		if !ok {
			continue
		}
		gaps = append(gaps, a.analyzeDeliverable(name, req, l))
	}

	brief := &Brief{
		ProjectID: p.ID,
		Phase:     phase,
		Timestamp: timeNow().UTC().Format(timeLayout),
		Knowledge: KnowledgeSummary{
			FactsCount:   len(l.Facts),
			SourcesCount: len(l.Sources),
			Categories:   l.CategoryCounts(),
		},
		DeliverableGaps:     gaps,
		OverallCompleteness: overallCompleteness(gaps),
	}
	brief.Recommendations = recommendations(gaps, l)
	brief.NextSteps = nextSteps(gaps)
	return brief
}

func (a *Analyzer) analyzeDeliverable(name string, req Requirement, l *knowledge.Ledger) DeliverableGap {
	found := []string{}
	missing := []string{}
	for _, field := range req.Fields {
		if a.Matcher.Matches(field, l.Facts) {
			found = append(found, field)
		} else {
			missing = append(missing, field)
		}
	}

	completeness := 0
	if len(req.Fields) > 0 {
		completeness = len(found) * 100 / len(req.Fields)
	}

	return DeliverableGap{
		Deliverable:    name,
		Description:    req.Description,
		Importance:     req.Importance,
		FoundFields:    found,
		MissingFields:  missing,
		Completeness:   completeness,
		Recommendation: recommendFor(name, missing),
	}
}

// interviewRoles names who to ask when a deliverable has gaps.
var interviewRoles = map[string]string{
	"sipoc":              "Process Owner and SME",
	"process_map":        "SME (Subject Matter Expert)",
	"baseline_metrics":   "SME or data analyst",
	"exception_register": "SME",
}

func recommendFor(name string, missing []string) string {
	if len(missing) == 0 {
		return "Deliverable appears complete based on knowledge base."
	}
	if name == "flowchart" {
		return "Will be generated automatically once the process map is complete."
	}
	role, ok := interviewRoles[name]
	if !ok {
		role = "stakeholder"
	}
	return fmt.Sprintf("Interview %s about: %s", role, strings.Join(missing, ", "))
}

// overallCompleteness is the plain average across deliverables, 0 when
// there is nothing to score.
func overallCompleteness(gaps []DeliverableGap) int {
	if len(gaps) == 0 {
		return 0
	}
	total := 0
	for _, g := range gaps {
		total += g.Completeness
	}
	return total / len(gaps)
}

func recommendations(gaps []DeliverableGap, l *knowledge.Ledger) []string {
	var recs []string

	if len(l.Sources) == 0 {
		recs = append(recs, "Start by uploading SOP, process documentation, or meeting notes.")
	}
	if n := len(l.Unknowns); n > 0 {
		recs = append(recs, fmt.Sprintf("There are %d questions raised: prioritize clarifying these.", n))
	}

	var incomplete []string
	for _, g := range gaps {
		if g.Completeness < readyThreshold {
			incomplete = append(incomplete, g.Deliverable)
		}
	}
	if len(incomplete) > 0 {
		recs = append(recs, fmt.Sprintf("Complete the following: %s", strings.Join(incomplete, ", ")))
	} else {
		recs = append(recs, "All deliverables appear > 80% complete. Ready for gate review.")
	}
	return recs
}

func nextSteps(gaps []DeliverableGap) []string {
	var steps []string
	for _, g := range gaps {
		if g.Importance == ImportanceCritical && g.Completeness < readyThreshold {
			steps = append(steps, fmt.Sprintf("1. Complete critical deliverable: %s", g.Deliverable))
			break
		}
	}
	steps = append(steps,
		"2. Run a knowledge-gathering conversation to fill identified gaps",
		"3. Re-run the gap analysis to track progress",
		"4. Proceed to gate review once all >= 80% complete",
	)
	return steps
}
