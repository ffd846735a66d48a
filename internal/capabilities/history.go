package capabilities

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// RunHistoryCapability lets the agent look up plans it submitted
// earlier in this deployment, without hitting the catalog.
type RunHistoryCapability struct {
	Store RunStore
}

func NewRunHistoryCapability(st RunStore) *RunHistoryCapability {
	return &RunHistoryCapability{Store: st}
}

func (h *RunHistoryCapability) Name() string {
	return "run_history"
}

func (h *RunHistoryCapability) Description() string {
	return "List recently submitted BL531 plans and their run_uids, newest first. Use this to find the run_uid of an earlier measurement."
}

func (h *RunHistoryCapability) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"limit": map[string]any{
				"type":        "integer",
				"description": "Maximum records to return (default 10)",
			},
		},
	}
}

func (h *RunHistoryCapability) Execute(ctx context.Context, input string) (string, error) {
	var args struct {
		Limit int `json:"limit"`
	}
	if input != "" {
		if err := json.Unmarshal([]byte(input), &args); err != nil {
			return "", fmt.Errorf("invalid input: %v", err)
		}
	}
	if args.Limit <= 0 {
		args.Limit = 10
	}

	runs, err := h.Store.ListRuns(args.Limit)
	if err != nil {
		return "", fmt.Errorf("list run history: %w", err)
	}
	if len(runs) == 0 {
		return "No plans have been submitted yet.", nil
	}

	var b strings.Builder
	for _, r := range runs {
		fmt.Fprintf(&b, "[%s] %s run_uid=%s status=%s\n",
			r.Timestamp.Format("2006-01-02 15:04:05"), r.PlanName, r.RunUID, r.Status)
	}
	return b.String(), nil
}
