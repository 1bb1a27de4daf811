package project

import (
	"regexp"

	"roadmap/internal/errs"
)

// projectIDPattern is the allow-list for project identifiers: lowercase
// alphanumeric with interior hyphens, 1-100 characters. Everything a
// storage path sees must pass this first, so "../etc/passwd" never
// reaches the filesystem layer.
var projectIDPattern = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]{0,98}[a-z0-9])?$`)

// ValidateProjectID rejects identifiers that could escape the projects
// root or collide with reserved names.
func ValidateProjectID(id string) error {
	if !projectIDPattern.MatchString(id) {
		return errs.New(errs.Validation,
			"invalid project ID %q: must contain only lowercase letters, numbers, and hyphens", id)
	}
	return nil
}

// Role identifies a member of the project team.
type Role string

const (
	RoleProcessOwner    Role = "process_owner"
	RoleBusinessAnalyst Role = "business_analyst"
	RoleSME             Role = "sme"
	RoleDeveloper       Role = "developer"
)

var validRoles = map[Role]bool{
	RoleProcessOwner:    true,
	RoleBusinessAnalyst: true,
	RoleSME:             true,
	RoleDeveloper:       true,
}

// ValidateRole returns an error unless the role is in the fixed enum.
func ValidateRole(r Role) error {
	if !validRoles[r] {
		return errs.New(errs.Validation,
			"invalid role %q: must be one of: process_owner, business_analyst, sme, developer", r)
	}
	return nil
}

// ValidateGateCriteria checks the weight-sum invariant: the weights of
// a phase's deliverables must total exactly 100.
func ValidateGateCriteria(phase PhaseName, gc GateCriteria) error {
	total := 0
	for _, w := range gc.Weights {
		total += w
	}
	if total != 100 {
		return errs.New(errs.Validation,
			"phase %q gate weights sum to %d, must sum to 100", phase, total)
	}
	if gc.Threshold < 0 || gc.Threshold > 100 {
		return errs.New(errs.Validation,
			"phase %q gate threshold %d out of range [0,100]", phase, gc.Threshold)
	}
	return nil
}

// Validate checks the structural invariants of a loaded project record:
// every phase in the canonical order is present, gate weights sum to
// 100, every weighted deliverable exists, and exactly the current phase
// is marked in progress.
func (p *Project) Validate() error {
	if err := ValidateProjectID(p.ID); err != nil {
		return err
	}
	if err := ValidatePhase(p.CurrentPhase); err != nil {
		return errs.Wrap(errs.Validation, err, "project %q", p.ID)
	}
	for _, name := range PhaseOrder {
		ph, ok := p.Phases[name]
		if !ok {
			return errs.New(errs.Validation, "project %q is missing phase %q", p.ID, name)
		}
		if err := ValidateGateCriteria(name, ph.GateCriteria); err != nil {
			return err
		}
		for deliv := range ph.GateCriteria.Weights {
			if _, ok := ph.Deliverables[deliv]; !ok {
				return errs.New(errs.Validation,
					"phase %q weights reference unknown deliverable %q", name, deliv)
			}
		}
	}
	return nil
}

// clampCompleteness bounds a completeness value to [0,100].
func clampCompleteness(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
