// Package gap scores how complete each deliverable of the current phase
// is, based purely on what the knowledge ledger already contains. It
// produces a brief: per-deliverable completeness, the fields still
// missing, and what to do about them.
package gap

import "roadmap/internal/project"

// Importance ranks how much a deliverable matters for the gate.
type Importance string

const (
	ImportanceCritical Importance = "critical"
	ImportanceHigh     Importance = "high"
	ImportanceMedium   Importance = "medium"
)

// Requirement lists the knowledge fields a deliverable needs before it
// can be generated with confidence.
type Requirement struct {
	Fields      []string
	Importance  Importance
	Description string
}

// phaseRequirements defines, per phase and deliverable, which fields the
// ledger must cover. Field names are matched against fact text, so they
// are deliberately short, lowercase keywords.
var phaseRequirements = map[project.PhaseName]map[string]Requirement{
	project.PhaseStandardization: {
		"sipoc": {
			Fields:      []string{"suppliers", "inputs", "process_owner", "outputs", "customers"},
			Importance:  ImportanceCritical,
			Description: "SIPOC table showing suppliers, inputs, process, outputs, customers",
		},
		"process_map": {
			Fields:      []string{"steps", "performers", "systems", "decisions"},
			Importance:  ImportanceCritical,
			Description: "Step-by-step process flow with who performs each step and what systems are involved",
		},
		"baseline_metrics": {
			Fields:      []string{"volume", "time", "cost", "error_rate", "sla"},
			Importance:  ImportanceCritical,
			Description: "AS-IS metrics: transaction volume, processing time, cost, error rates, SLAs",
		},
		"flowchart": {
			Fields:      []string{"diagram"},
			Importance:  ImportanceMedium,
			Description: "Visual flowchart of the process (generated from process map)",
		},
		"exception_register": {
			Fields:      []string{"exceptions", "handling", "frequency"},
			Importance:  ImportanceHigh,
			Description: "Known process exceptions and how they are handled",
		},
	},
	project.PhaseOptimization: {
		"waste_analysis": {
			Fields:      []string{"waste", "bottlenecks", "rework", "delays"},
			Importance:  ImportanceCritical,
			Description: "Identified waste, bottlenecks, and rework in the AS-IS process",
		},
		"to_be_process": {
			Fields:      []string{"to-be", "changes", "benefits"},
			Importance:  ImportanceCritical,
			Description: "TO-BE process design with the changes from AS-IS and expected benefits",
		},
		"improvement_register": {
			Fields:      []string{"improvements", "impact", "effort"},
			Importance:  ImportanceHigh,
			Description: "Prioritized improvements with impact and effort estimates",
		},
	},
	project.PhaseDigitization: {
		"system_integration_map": {
			Fields:      []string{"systems", "interfaces", "data flows"},
			Importance:  ImportanceCritical,
			Description: "Systems involved, their interfaces, and the data flowing between them",
		},
		"data_model": {
			Fields:      []string{"entities", "attributes", "validation"},
			Importance:  ImportanceCritical,
			Description: "Entities and attributes the automated process reads and writes",
		},
		"access_security_plan": {
			Fields:      []string{"access", "credentials", "approvals"},
			Importance:  ImportanceHigh,
			Description: "System access, credential handling, and approval requirements",
		},
	},
	project.PhaseAutomation: {
		"automation_spec": {
			Fields:      []string{"triggers", "actions", "error handling"},
			Importance:  ImportanceCritical,
			Description: "What triggers the automation, what it does, and how it handles errors",
		},
		"test_plan": {
			Fields:      []string{"scenarios", "test data", "acceptance"},
			Importance:  ImportanceCritical,
			Description: "Test scenarios, data, and acceptance criteria",
		},
		"runbook": {
			Fields:      []string{"procedures", "escalation", "recovery"},
			Importance:  ImportanceHigh,
			Description: "Operational procedures, escalation paths, and recovery steps",
		},
		"deployment_checklist": {
			Fields:      []string{"environments", "rollback", "sign-off"},
			Importance:  ImportanceMedium,
			Description: "Deployment steps, environments, and rollback plan",
		},
	},
	project.PhaseAutonomization: {
		"decision_rules": {
			Fields:      []string{"rules", "thresholds", "exceptions"},
			Importance:  ImportanceCritical,
			Description: "Decision rules and thresholds for autonomous operation",
		},
		"monitoring_dashboard_spec": {
			Fields:      []string{"metrics", "alerts", "owners"},
			Importance:  ImportanceCritical,
			Description: "Metrics to monitor, alert conditions, and who responds",
		},
		"learning_loop_design": {
			Fields:      []string{"feedback", "review cadence", "adjustment"},
			Importance:  ImportanceHigh,
			Description: "How outcomes feed back into rule adjustments under human review",
		},
	},
}

// Requirements returns the requirement table for one phase. Deliverables
// without an entry are skipped by the analyzer.
func Requirements(phase project.PhaseName) map[string]Requirement {
	return phaseRequirements[phase]
}
