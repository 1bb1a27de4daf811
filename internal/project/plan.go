package project

import "fmt"

// phaseSpec is the static definition used to build a new project's
// phase map. Weights per phase always sum to 100 (checked by a test
// and re-checked on every load via Project.Validate).
type phaseSpec struct {
	description     string
	threshold       int
	signOffRequired bool
	deliverables    []deliverableSpec
}

type deliverableSpec struct {
	name   string
	weight int
	file   string
}

// phaseDirs maps phases to their deliverable directory names.
var phaseDirs = map[PhaseName]string{
	PhaseStandardization: "1-standardization",
	PhaseOptimization:    "2-optimization",
	PhaseDigitization:    "3-digitization",
	PhaseAutomation:      "4-automation",
	PhaseAutonomization:  "5-autonomization",
}

// PhaseDir returns the deliverables subdirectory for a phase,
// e.g. "1-standardization".
func PhaseDir(name PhaseName) string {
	if d, ok := phaseDirs[name]; ok {
		return d
	}
	return string(name)
}

// defaultPlan defines the five-phase improvement lifecycle: document
// the current state, optimize it, digitize it, automate it, and finally
// let it run autonomously under human oversight.
var defaultPlan = map[PhaseName]phaseSpec{
	PhaseStandardization: {
		description: "Document the AS-IS process",
		threshold:   80,
		deliverables: []deliverableSpec{
			{name: "sipoc", weight: 20, file: "sipoc.json"},
			{name: "process_map", weight: 25, file: "process_map.json"},
			{name: "baseline_metrics", weight: 20, file: "baseline_metrics.json"},
			{name: "flowchart", weight: 15, file: "flowchart.json"},
			{name: "exception_register", weight: 20, file: "exceptions.json"},
		},
	},
	PhaseOptimization: {
		description: "Design the TO-BE process and improvements",
		threshold:   80,
		deliverables: []deliverableSpec{
			{name: "waste_analysis", weight: 35, file: "waste_analysis.json"},
			{name: "to_be_process", weight: 40, file: "to_be_process.json"},
			{name: "improvement_register", weight: 25, file: "improvement_register.json"},
		},
	},
	PhaseDigitization: {
		description:     "Ensure systems, data, and access are ready for automation",
		threshold:       80,
		signOffRequired: true,
		deliverables: []deliverableSpec{
			{name: "system_integration_map", weight: 40, file: "system_integration_map.json"},
			{name: "data_model", weight: 35, file: "data_model.json"},
			{name: "access_security_plan", weight: 25, file: "access_security_plan.json"},
		},
	},
	PhaseAutomation: {
		description:     "Build, test, and deploy the automated solution",
		threshold:       80,
		signOffRequired: true,
		deliverables: []deliverableSpec{
			{name: "automation_spec", weight: 30, file: "automation_spec.json"},
			{name: "test_plan", weight: 25, file: "test_plan.json"},
			{name: "runbook", weight: 25, file: "runbook.json"},
			{name: "deployment_checklist", weight: 20, file: "deployment_checklist.json"},
		},
	},
	PhaseAutonomization: {
		description:     "Establish rules for autonomous operation with human oversight",
		threshold:       90,
		signOffRequired: true,
		deliverables: []deliverableSpec{
			{name: "decision_rules", weight: 40, file: "decision_rules.json"},
			{name: "monitoring_dashboard_spec", weight: 30, file: "monitoring_dashboard_spec.json"},
			{name: "learning_loop_design", weight: 30, file: "learning_loop_design.json"},
		},
	},
}

// NewProject builds a fresh project record: the first phase is in
// progress, all others locked, every deliverable not started.
func NewProject(id, name, description string) *Project {
	now := timeNow().UTC().Format(timeLayout)

	phases := make(map[PhaseName]*Phase, len(PhaseOrder))
	for _, phaseName := range PhaseOrder {
		spec := defaultPlan[phaseName]

		weights := make(map[string]int, len(spec.deliverables))
		deliverables := make(map[string]Deliverable, len(spec.deliverables))
		for _, d := range spec.deliverables {
			weights[d.name] = d.weight
			deliverables[d.name] = Deliverable{
				Status:       DeliverableNotStarted,
				Completeness: 0,
				File:         fmt.Sprintf("deliverables/%s/%s", PhaseDir(phaseName), d.file),
				Gaps:         []string{},
			}
		}

		status := PhaseLocked
		if phaseName == PhaseOrder[0] {
			status = PhaseInProgress
		}

		phases[phaseName] = &Phase{
			Status:      status,
			Description: spec.description,
			GateCriteria: GateCriteria{
				Threshold:       spec.threshold,
				Weights:         weights,
				SignOffRequired: spec.signOffRequired,
			},
			Deliverables: deliverables,
		}
	}

	return &Project{
		ID:           id,
		Name:         name,
		Description:  description,
		Created:      now,
		CurrentPhase: PhaseOrder[0],
		Phases:       phases,
		Team: map[string]TeamMember{
			string(RoleProcessOwner):    {Name: "TBD"},
			string(RoleBusinessAnalyst): {Name: "TBD"},
			string(RoleSME):             {Name: "TBD"},
			string(RoleDeveloper):       {Name: "TBD"},
		},
		KnowledgeSources: []KnowledgeSource{},
		GateReviews:      map[PhaseName][]GateRecord{},
		UpdatedAt:        now,
	}
}

// DeliverableOrder returns the declaration order of a phase's
// deliverables from the static plan. Map iteration order is not stable,
// so anything that needs deterministic output (gap briefs, gate
// feedback) iterates in this order instead.
func DeliverableOrder(phase PhaseName) []string {
	spec, ok := defaultPlan[phase]
	if !ok {
		return nil
	}
	names := make([]string, len(spec.deliverables))
	for i, d := range spec.deliverables {
		names[i] = d.name
	}
	return names
}
