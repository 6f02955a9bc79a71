package reconcile

import (
	"datadiff/core/record"
)

// ActionType names the change that brings the target in line with the
// source.
type ActionType string

const (
	// ActionInsert adds a row that only the source holds.
	ActionInsert ActionType = "insert"
	// ActionUpdate rewrites the value fields of a row held by both sides.
	ActionUpdate ActionType = "update"
	// ActionDelete removes a row that only the target holds.
	ActionDelete ActionType = "delete"
)

// Action is one planned change.
type Action struct {
	Type ActionType `json:"type"`

	// Key holds the key fields of the row.
	Key record.Data `json:"key"`

	// Text is the human readable row description, e.g.
	// "Changed id: 1 => name: "Paul" -> "Peter"".
	Text string `json:"text"`

	// Diff is the formatted field diff over the value fields. Empty for
	// inserts and deletes.
	Diff string `json:"diff,omitempty"`

	// Changes maps each differing field to its source and target values.
	// Only set for updates.
	Changes map[string]map[string]any `json:"changes,omitempty"`

	// Data is the full row: the source row for inserts and updates, the
	// target row for deletes.
	Data record.Data `json:"data"`
}

// PlanSummary provides aggregate counts for a plan.
type PlanSummary struct {
	// SourceRows and TargetRows count the rows held by each store.
	SourceRows int `json:"source_rows"`
	TargetRows int `json:"target_rows"`

	New       int `json:"new"`
	Changed   int `json:"changed"`
	Missing   int `json:"missing"`
	Unchanged int `json:"unchanged"`

	InsertActions int `json:"insert_actions"`
	UpdateActions int `json:"update_actions"`
	DeleteActions int `json:"delete_actions"`
}

// HasChanges reports whether any row is new, changed or missing.
func (s PlanSummary) HasChanges() bool {
	return s.New+s.Changed+s.Missing > 0
}

// PlanOptions controls which actions a plan lists.
type PlanOptions struct {
	DoInsert bool
	DoUpdate bool
	DoDelete bool

	// Limit caps the number of listed actions per type. Zero means no cap.
	Limit int
}

// Plan is the outcome of BuildPlan.
type Plan struct {
	// Source and Target are the store labels, "A" or "B".
	Source string `json:"source"`
	Target string `json:"target"`

	KeyFields   []string `json:"key_fields"`
	ValueFields []string `json:"value_fields"`

	Summary PlanSummary `json:"summary"`
	Actions []Action    `json:"actions"`
}
