package capabilities

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/als-ai/bl531-agent/internal/beamline"
	"github.com/als-ai/bl531-agent/internal/governance"
)

type ScanCapability struct {
	Client beamline.Client
	Policy governance.PolicyEngine
	Store  RunStore
}

func NewScanCapability(client beamline.Client, policy governance.PolicyEngine, st RunStore) *ScanCapability {
	return &ScanCapability{Client: client, Policy: policy, Store: st}
}

func (s *ScanCapability) Name() string {
	return "bl531_scan"
}

func (s *ScanCapability) Description() string {
	return "Execute a scan plan on the BL531 beamline: move a motor from start to stop in num points, reading detectors at each point. Returns a run_uid for retrieving the scan data."
}

func (s *ScanCapability) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"detectors": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string", "enum": []string{"diode", "det"}},
				"description": "Detectors to read at each point",
			},
			"motor": map[string]any{
				"type": "string",
				"enum": []string{
					"hexapod_motor_Ry", "hexapod_motor_Rz",
					"hexapod_motor_Ty", "hexapod_motor_Tz",
					"gi_angle", "mono_energy",
				},
				"description": "Motor to scan",
			},
			"start": map[string]any{
				"type":        "number",
				"description": "Starting position",
			},
			"stop": map[string]any{
				"type":        "number",
				"description": "Ending position",
			},
			"num": map[string]any{
				"type":        "integer",
				"description": "Number of measurement points",
			},
		},
		"required": []string{"detectors", "motor", "start", "stop", "num"},
	}
}

func (s *ScanCapability) Execute(ctx context.Context, input string) (string, error) {
	var args struct {
		Detectors []string `json:"detectors"`
		Motor     string   `json:"motor"`
		Start     float64  `json:"start"`
		Stop      float64  `json:"stop"`
		Num       int      `json:"num"`
	}
	if err := json.Unmarshal([]byte(input), &args); err != nil {
		return "", fmt.Errorf("invalid input: %v", err)
	}

	req := governance.Request{
		Plan:      "scan",
		Motor:     args.Motor,
		Positions: []float64{args.Start, args.Stop},
	}
	if denied := checkPolicy(ctx, s.Policy, req); denied != "" {
		return denied, nil
	}

	result, err := s.Client.Scan(ctx, args.Detectors, args.Motor, args.Start, args.Stop, args.Num, nil)
	if err != nil {
		return planFailure(s.Store, "scan", input, err)
	}
	recordRun(s.Store, result, input)

	return fmt.Sprintf("Scan completed: %s from %g to %g in %d points reading %v. run_uid: %s",
		args.Motor, args.Start, args.Stop, args.Num, args.Detectors, result.RunUID), nil
}
