package gate

import "roadmap/internal/project"

// rule pairs a deliverable's evaluator with the minimum score it must
// reach for an individual PASS. Weights and the phase threshold come
// from the project record, which is validated on every load.
type rule struct {
	minCompleteness float64
	evaluator       DeliverableEvaluator
}

// phaseRules defines how each deliverable is judged, per phase.
var phaseRules = map[project.PhaseName]map[string]rule{
	project.PhaseStandardization: {
		"sipoc": {80, FieldPresence{
			Fields: []string{"suppliers", "inputs", "process", "outputs", "customers"},
		}},
		"process_map": {70, StepList{
			Key: "steps", Attrs: []string{"performer", "system"}, MinItems: 3,
		}},
		"baseline_metrics": {60, MetricsBundle{
			Categories: []string{"volume", "time", "cost"},
		}},
		"flowchart": {80, MermaidDiagram{}},
		"exception_register": {70, HandledItemList{
			Key: "exceptions", Attrs: []string{"handling", "resolution"},
		}},
	},
	project.PhaseOptimization: {
		"waste_analysis": {70, FieldPresence{
			Fields: []string{"wastes", "bottlenecks", "quick_wins"},
		}},
		"to_be_process": {70, StepList{
			Key: "steps", Attrs: []string{"performer", "system"}, MinItems: 3,
		}},
		"improvement_register": {70, HandledItemList{
			Key: "improvements", Attrs: []string{"impact", "effort"},
		}},
	},
	project.PhaseDigitization: {
		"system_integration_map": {80, FieldPresence{
			Fields: []string{"systems", "interfaces", "data_flows"},
		}},
		"data_model": {70, FieldPresence{
			Fields: []string{"entities", "relationships", "validation_rules"},
		}},
		"access_security_plan": {70, FieldPresence{
			Fields: []string{"access_requirements", "credential_handling", "approvals"},
		}},
	},
	project.PhaseAutomation: {
		"automation_spec": {80, FieldPresence{
			Fields: []string{"triggers", "actions", "error_handling"},
		}},
		"test_plan": {70, HandledItemList{
			Key: "scenarios", Attrs: []string{"expected_result", "acceptance"},
		}},
		"runbook": {70, FieldPresence{
			Fields: []string{"procedures", "escalation", "recovery"},
		}},
		"deployment_checklist": {60, HandledItemList{
			Key: "items", Attrs: []string{"owner", "status"},
		}},
	},
	project.PhaseAutonomization: {
		"decision_rules": {80, HandledItemList{
			Key: "rules", Attrs: []string{"condition", "action"},
		}},
		"monitoring_dashboard_spec": {80, FieldPresence{
			Fields: []string{"metrics", "alerts", "owners"},
		}},
		"learning_loop_design": {70, FieldPresence{
			Fields: []string{"feedback_sources", "review_cadence", "adjustment_process"},
		}},
	},
}

// ruleFor returns the evaluation rule for a deliverable. Unknown names
// fall back to a zero-scoring rule so a corrupt plan can't sneak a
// deliverable past the gate unevaluated.
func ruleFor(phase project.PhaseName, deliverable string) rule {
	if rules, ok := phaseRules[phase]; ok {
		if r, ok := rules[deliverable]; ok {
			return r
		}
	}
	return rule{minCompleteness: 100, evaluator: unknownEvaluator{name: deliverable}}
}

type unknownEvaluator struct {
	name string
}

func (e unknownEvaluator) Evaluate(map[string]any) (float64, []string) {
	return 0, []string{"Unknown deliverable type: " + e.name}
}
