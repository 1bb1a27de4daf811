package project

import (
	"roadmap/internal/errs"
)

// --- State machine for the phase-gated lifecycle ---
//
// Phases advance forward-only through PhaseOrder. The only transition
// out of in_progress is a PASS decision from the gate review engine,
// applied here as one explicit project mutation: mark the phase
// complete AND unlock the next phase in the same write, so a crash can
// never leave a passed gate without an unlocked successor.

// CurrentPhaseData returns the phase record for the project's current
// phase, or NotFound if the phase map is inconsistent.
func (p *Project) CurrentPhaseData() (*Phase, error) {
	ph, ok := p.Phases[p.CurrentPhase]
	if !ok {
		return nil, errs.New(errs.NotFound,
			"project %q has no phase record for current phase %q", p.ID, p.CurrentPhase)
	}
	return ph, nil
}

// NextPhase returns the phase after name in the canonical order.
// ok is false when name is the final phase or unknown.
func NextPhase(name PhaseName) (PhaseName, bool) {
	idx := PhaseIndex(name)
	if idx < 0 || idx >= len(PhaseOrder)-1 {
		return "", false
	}
	return PhaseOrder[idx+1], true
}

// DeliverableUpdate carries the optional fields of an update. Nil
// pointers mean "leave unchanged".
type DeliverableUpdate struct {
	Status       *DeliverableStatus
	Completeness *int
	Gaps         []string
}

// UpdateDeliverable applies a partial update to one deliverable. It is
// an idempotent upsert over existing keys only: an absent phase or
// deliverable is a NotFound failure, not a silent create, to prevent
// configuration drift. Completeness is clamped to [0,100].
func (p *Project) UpdateDeliverable(phase PhaseName, name string, upd DeliverableUpdate) error {
	ph, ok := p.Phases[phase]
	if !ok {
		return errs.New(errs.NotFound, "project %q has no phase %q", p.ID, phase)
	}
	d, ok := ph.Deliverables[name]
	if !ok {
		return errs.New(errs.NotFound, "phase %q has no deliverable %q", phase, name)
	}

	if upd.Status != nil {
		if err := ValidateDeliverableStatus(*upd.Status); err != nil {
			return errs.Wrap(errs.Validation, err, "updating %s/%s", phase, name)
		}
		d.Status = *upd.Status
	}
	if upd.Completeness != nil {
		d.Completeness = clampCompleteness(*upd.Completeness)
	}
	if upd.Gaps != nil {
		d.Gaps = upd.Gaps
	}
	d.LastUpdated = timeNow().UTC().Format(timeLayout)

	ph.Deliverables[name] = d
	p.UpdatedAt = d.LastUpdated
	return nil
}

// ApplyGateResult records a gate review outcome against a phase and, on
// PASS, completes the phase and unlocks its successor. The transition
// is idempotent: applying the same PASS twice leaves the project
// unchanged apart from the appended audit record.
func (p *Project) ApplyGateResult(phase PhaseName, rec GateRecord) error {
	ph, ok := p.Phases[phase]
	if !ok {
		return errs.New(errs.NotFound, "project %q has no phase %q", p.ID, phase)
	}
	if PhaseIndex(phase) > PhaseIndex(p.CurrentPhase) {
		return errs.New(errs.Validation,
			"cannot review gate for locked phase %q (current phase is %q)", phase, p.CurrentPhase)
	}

	now := timeNow().UTC().Format(timeLayout)
	if p.GateReviews == nil {
		p.GateReviews = map[PhaseName][]GateRecord{}
	}
	p.GateReviews[phase] = append(p.GateReviews[phase], rec)
	p.UpdatedAt = now

	if rec.Decision != "PASS" {
		return nil
	}

	// Complete the phase and every deliverable in it.
	ph.Status = PhaseComplete
	for name, d := range ph.Deliverables {
		d.Status = DeliverableComplete
		d.LastUpdated = now
		ph.Deliverables[name] = d
	}

	// Unlock the successor and move the current-phase pointer, unless a
	// later phase is already current (re-applying an old PASS).
	next, hasNext := NextPhase(phase)
	if !hasNext {
		return nil
	}
	if PhaseIndex(p.CurrentPhase) > PhaseIndex(phase) {
		return nil
	}
	nextPh, ok := p.Phases[next]
	if !ok {
		return errs.New(errs.NotFound, "project %q has no phase %q to unlock", p.ID, next)
	}
	if nextPh.Status == PhaseLocked {
		nextPh.Status = PhaseInProgress
	}
	p.CurrentPhase = next
	return nil
}

// AddKnowledgeSource records that a knowledge file was added to the
// project. The file is not read here; extraction happens upstream.
func (p *Project) AddKnowledgeSource(file, sourceType, addedBy string) {
	now := timeNow().UTC().Format(timeLayout)
	p.KnowledgeSources = append(p.KnowledgeSources, KnowledgeSource{
		File:      file,
		Type:      sourceType,
		AddedBy:   addedBy,
		DateAdded: now,
	})
	p.UpdatedAt = now
}
