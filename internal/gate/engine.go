package gate

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"roadmap/internal/errs"
	"roadmap/internal/project"
)

// DeliverableScore is the per-deliverable breakdown in a review.
type DeliverableScore struct {
	Score  float64  `json:"score"`
	Weight int      `json:"weight"`
	Status string   `json:"status"` // PASS, FAIL, MISSING, ERROR
	Issues []string `json:"issues,omitempty"`
}

// Review is the full result of one gate evaluation.
type Review struct {
	Decision          string                      `json:"decision"` // PASS or FAIL
	Score             float64                     `json:"score"`
	Threshold         int                         `json:"threshold"`
	Phase             project.PhaseName           `json:"phase"`
	SignOffRequired   bool                        `json:"sign_off_required"`
	DeliverableScores map[string]DeliverableScore `json:"deliverable_scores"`
	Feedback          []string                    `json:"feedback"`
	Summary           string                      `json:"summary"`
	Timestamp         string                      `json:"timestamp"`
}

// Record converts a review into the audit record appended to the
// project's gate history.
func (r *Review) Record() project.GateRecord {
	return project.GateRecord{
		Decision:  r.Decision,
		Score:     r.Score,
		Threshold: r.Threshold,
		Timestamp: r.Timestamp,
	}
}

// Evaluate judges every deliverable of a phase against its rule and
// weighs the scores into a gate decision. deliverablesDir is where the
// generated deliverable JSON files live; absent files score 0 with a
// MISSING status rather than failing the evaluation.
func Evaluate(p *project.Project, phase project.PhaseName, deliverablesDir string) (*Review, error) {
	ph, ok := p.Phases[phase]
	if !ok {
		return nil, errs.New(errs.NotFound, "phase %q not found in project %q", phase, p.ID)
	}
	if err := project.ValidateGateCriteria(phase, ph.GateCriteria); err != nil {
		return nil, err
	}

	review := &Review{
		Phase:             phase,
		Threshold:         ph.GateCriteria.Threshold,
		SignOffRequired:   ph.GateCriteria.SignOffRequired,
		DeliverableScores: make(map[string]DeliverableScore),
		Timestamp:         timeNow().UTC().Format(timeLayout),
	}

	overall := 0.0
	for _, name := range project.DeliverableOrder(phase) {
		weight, ok := ph.GateCriteria.Weights[name]
		if !ok {
			continue
		}
		r := ruleFor(phase, name)
		ds := evaluateFile(filepath.Join(deliverablesDir, name+".json"), name, r)
		ds.Weight = weight
		review.DeliverableScores[name] = ds
		review.Feedback = append(review.Feedback, feedbackLines(name, ds, r)...)
		overall += ds.Score * float64(weight) / 100
	}

	review.Score = math.Round(overall*10) / 10
	if review.Score >= float64(review.Threshold) {
		review.Decision = "PASS"
		review.Summary = fmt.Sprintf("Gate Review PASSED! Score: %.0f/%d - Ready to proceed to next phase.",
			review.Score, review.Threshold)
	} else {
		review.Decision = "FAIL"
		review.Summary = fmt.Sprintf("Gate Review FAILED. Score: %.0f/%d - More work needed before proceeding.",
			review.Score, review.Threshold)
	}
	return review, nil
}

// evaluateFile loads one deliverable file and applies its rule.
func evaluateFile(path, name string, r rule) DeliverableScore {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DeliverableScore{
				Status: "MISSING",
				Issues: []string{fmt.Sprintf("%s not generated", titleCase(name))},
			}
		}
		return DeliverableScore{
			Status: "ERROR",
			Issues: []string{fmt.Sprintf("Error reading deliverable: %v", err)},
		}
	}

	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return DeliverableScore{
			Status: "ERROR",
			Issues: []string{fmt.Sprintf("Error reading deliverable: %v", err)},
		}
	}

	score, issues := r.evaluator.Evaluate(data)
	status := "FAIL"
	if score >= r.minCompleteness {
		status = "PASS"
	}
	return DeliverableScore{Score: score, Status: status, Issues: issues}
}

// feedbackLines renders the human-facing lines for one deliverable.
func feedbackLines(name string, ds DeliverableScore, r rule) []string {
	title := titleCase(name)
	switch ds.Status {
	case "MISSING":
		return []string{fmt.Sprintf("❌ %s: Not generated", title)}
	case "ERROR":
		return []string{fmt.Sprintf("❌ %s: Error reading file", title)}
	case "PASS":
		return []string{fmt.Sprintf("✅ %s: %.0f%%", title, ds.Score)}
	default:
		lines := []string{fmt.Sprintf("❌ %s: %.0f%% (need %.0f%%)", title, ds.Score, r.minCompleteness)}
		for _, issue := range ds.Issues {
			lines = append(lines, "   • "+issue)
		}
		return lines
	}
}

// WriteReview persists a review as the phase's gate review record,
// overwriting any earlier review of the same phase. History lives in
// the project record; this file is the latest full breakdown.
func WriteReview(path string, r *Review) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return errs.Wrap(errs.Persistence, err, "marshaling gate review")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errs.Wrap(errs.Persistence, err, "creating gate review directory")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errs.Wrap(errs.Persistence, err, "writing %s", path)
	}
	return nil
}

// FeedbackText joins feedback lines for display.
func FeedbackText(r *Review) string {
	return strings.Join(r.Feedback, "\n")
}
