package workflow

import "quadvoice/internal/store"

// Stage node labels as they appear in workflow events.
const (
	NodeIntent = "Intent Analysis"
	NodeAngle  = "Angle Planning"
	NodeDraft  = "Drafting"
	NodeRefine = "Refinement"
)

// Inputs is the immutable snapshot a pipeline run works from. The engine never
// reads shared state after Run or Stream begins.
type Inputs struct {
	Theme          string
	IdentityChunks []string
	StyleRules     map[store.Platform]map[string]string
}

// State accumulates stage results across one pipeline run.
type State struct {
	Theme           string
	IdentityChunks  []string
	IdentitySummary string
	Angles          map[store.Platform]string
	Outputs         map[store.Platform]string
	StyleRules      map[store.Platform]map[string]string
	Events          []store.WorkflowEvent
}

func newState(inputs Inputs) *State {
	return &State{
		Theme:          inputs.Theme,
		IdentityChunks: inputs.IdentityChunks,
		Angles:         make(map[store.Platform]string),
		Outputs:        make(map[store.Platform]string),
		StyleRules:     inputs.StyleRules,
	}
}

func (s *State) appendEvent(node, message string, status store.ProjectStatus) {
	s.Events = append(s.Events, store.WorkflowEvent{
		Node:    node,
		Message: message,
		Status:  status,
	})
}

// result snapshots the state as a project result. The project ID is filled in
// by the caller that owns the stored record.
func (s *State) result(status store.ProjectStatus) *store.ProjectResult {
	outputs := make(map[store.Platform]string, len(s.Outputs))
	for platform, body := range s.Outputs {
		outputs[platform] = body
	}
	events := make([]store.WorkflowEvent, len(s.Events))
	copy(events, s.Events)
	return &store.ProjectResult{
		Theme:   s.Theme,
		Status:  status,
		Outputs: outputs,
		Events:  events,
	}
}
