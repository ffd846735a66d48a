package store

import "time"

// RunRecord is one submitted plan and its outcome, kept locally so the
// agent can refer back to past runs without querying the catalog.
type RunRecord struct {
	ID        int       `json:"id"`
	RunUID    string    `json:"run_uid"`
	PlanName  string    `json:"plan_name"`
	Params    string    `json:"params"` // JSON-encoded kwargs
	Status    string    `json:"status"` // completed, failed, timeout
	Timestamp time.Time `json:"timestamp"`
}
