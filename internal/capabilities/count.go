package capabilities

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/als-ai/bl531-agent/internal/beamline"
	"github.com/als-ai/bl531-agent/internal/governance"
	"github.com/als-ai/bl531-agent/internal/store"
)

// RunStore records plan outcomes for later reference.
type RunStore interface {
	RecordRun(runUID, planName, params, status string) error
	ListRuns(limit int) ([]store.RunRecord, error)
}

type CountCapability struct {
	Client beamline.Client
	Policy governance.PolicyEngine
	Store  RunStore
}

func NewCountCapability(client beamline.Client, policy governance.PolicyEngine, st RunStore) *CountCapability {
	return &CountCapability{Client: client, Policy: policy, Store: st}
}

func (c *CountCapability) Name() string {
	return "bl531_count"
}

func (c *CountCapability) Description() string {
	return "Execute a count plan on the BL531 beamline: read detectors n times without moving any motors. Use this for beam intensity checks, detector readings, or taking single images. Returns a run_uid for retrieving the measurement data."
}

func (c *CountCapability) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"detectors": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string", "enum": []string{"diode", "det"}},
				"description": "Detectors to read: 'diode' (photodiode) and/or 'det' (area detector)",
			},
			"num": map[string]any{
				"type":        "integer",
				"description": "Number of readings to take (default 1)",
			},
		},
		"required": []string{"detectors"},
	}
}

func (c *CountCapability) Execute(ctx context.Context, input string) (string, error) {
	var args struct {
		Detectors []string `json:"detectors"`
		Num       int      `json:"num"`
	}
	if err := json.Unmarshal([]byte(input), &args); err != nil {
		return "", fmt.Errorf("invalid input: %v", err)
	}
	if args.Num <= 0 {
		args.Num = 1
	}

	if denied := checkPolicy(ctx, c.Policy, governance.Request{Plan: "count"}); denied != "" {
		return denied, nil
	}

	result, err := c.Client.Count(ctx, args.Detectors, args.Num, nil)
	if err != nil {
		return planFailure(c.Store, "count", input, err)
	}
	recordRun(c.Store, result, input)

	return fmt.Sprintf("Count plan completed: read %v %d time(s). run_uid: %s", args.Detectors, args.Num, result.RunUID), nil
}

// checkPolicy evaluates the request and returns a denial message for
// the LLM, or "" when allowed. A nil engine allows everything.
func checkPolicy(ctx context.Context, policy governance.PolicyEngine, req governance.Request) string {
	if policy == nil {
		return ""
	}
	res, err := policy.Evaluate(ctx, req)
	if err != nil {
		return fmt.Sprintf("Policy evaluation failed: %v", err)
	}
	if res.Effect == governance.EffectDeny {
		return fmt.Sprintf("Denied by beamline policy: %s", res.Reason)
	}
	return ""
}

// planFailure maps client errors onto the tool-result channel.
// Parameter and execution failures go back to the LLM as text so it
// can correct itself; transport errors surface as real errors that
// the surrounding framework may retry.
func planFailure(st RunStore, plan, params string, err error) (string, error) {
	var ipe *beamline.InvalidParameterError
	if errors.As(err, &ipe) {
		return fmt.Sprintf("Invalid parameters: %v", err), nil
	}

	var te *beamline.TimeoutError
	if errors.As(err, &te) {
		if st != nil {
			_ = st.RecordRun("", plan, params, "timeout")
		}
		return "", err
	}

	var ee *beamline.ExecutionError
	if errors.As(err, &ee) {
		if st != nil {
			_ = st.RecordRun("", plan, params, "failed")
		}
		return fmt.Sprintf("Plan execution failed on the beamline with status %q. This is not retriable; check the queue server logs.", ee.Status), nil
	}

	return "", err
}

func recordRun(st RunStore, result *beamline.PlanResult, params string) {
	if st == nil {
		return
	}
	_ = st.RecordRun(result.RunUID, result.PlanName, params, "completed")
}
