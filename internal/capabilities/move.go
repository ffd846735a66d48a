package capabilities

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/als-ai/bl531-agent/internal/beamline"
	"github.com/als-ai/bl531-agent/internal/governance"
)

// MoveCapability moves a motor to an absolute position. The queue
// server has no dedicated move plan, so this runs a single-point scan
// at the target with the diode as a confirmation reading.
type MoveCapability struct {
	Client beamline.Client
	Policy governance.PolicyEngine
	Store  RunStore
}

func NewMoveCapability(client beamline.Client, policy governance.PolicyEngine, st RunStore) *MoveCapability {
	return &MoveCapability{Client: client, Policy: policy, Store: st}
}

func (m *MoveCapability) Name() string {
	return "bl531_move"
}

func (m *MoveCapability) Description() string {
	return "Move a BL531 motor to an absolute position and take a confirming diode reading. Use this to position the sample or beam before a measurement."
}

func (m *MoveCapability) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"motor": map[string]any{
				"type": "string",
				"enum": []string{
					"hexapod_motor_Ry", "hexapod_motor_Rz",
					"hexapod_motor_Ty", "hexapod_motor_Tz",
					"gi_angle", "mono_energy",
				},
				"description": "Motor to move",
			},
			"position": map[string]any{
				"type":        "number",
				"description": "Absolute target position",
			},
		},
		"required": []string{"motor", "position"},
	}
}

func (m *MoveCapability) Execute(ctx context.Context, input string) (string, error) {
	var args struct {
		Motor    string  `json:"motor"`
		Position float64 `json:"position"`
	}
	if err := json.Unmarshal([]byte(input), &args); err != nil {
		return "", fmt.Errorf("invalid input: %v", err)
	}

	req := governance.Request{
		Plan:      "scan",
		Motor:     args.Motor,
		Positions: []float64{args.Position},
	}
	if denied := checkPolicy(ctx, m.Policy, req); denied != "" {
		return denied, nil
	}

	// A 1-point scan parks the motor at the target.
	result, err := m.Client.Scan(ctx, []string{"diode"}, args.Motor, args.Position, args.Position, 1, nil)
	if err != nil {
		return planFailure(m.Store, "scan", input, err)
	}
	recordRun(m.Store, result, input)

	return fmt.Sprintf("Moved %s to %g. Confirmation reading stored under run_uid: %s",
		args.Motor, args.Position, result.RunUID), nil
}
