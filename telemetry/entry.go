package telemetry

import "time"

// Entry is one structured JSONL line written by the Controller, with the
// exact field set spec.md §4.11 names.
type Entry struct {
	Timestamp string                 `json:"timestamp"`
	Level     string                 `json:"level"`
	Module    string                 `json:"module"`
	Event     string                 `json:"event"`
	Message   string                 `json:"message"`
	RunID     string                 `json:"run_id"`
	UserID    string                 `json:"user_id,omitempty"`
	Component string                 `json:"component,omitempty"`
	GraphNode string                 `json:"graph_node,omitempty"`
	StepType  string                 `json:"step_type,omitempty"`
	StepID    string                 `json:"step_id,omitempty"`
	StepTitle string                 `json:"step_title,omitempty"`
	Data      map[string]interface{} `json:"data,omitempty"`
}

func stamp(e Entry) Entry {
	if e.Timestamp == "" {
		e.Timestamp = time.Now().UTC().Format(time.RFC3339Nano)
	}
	if e.Level == "" {
		e.Level = "info"
	}
	return e
}
