package capabilities

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/als-ai/bl531-agent/internal/beamline"
	"github.com/als-ai/bl531-agent/internal/governance"
)

// GisaxsAlignmentCapability runs the automatic GISAXS alignment plan,
// which finds the reference zero angle of the Ry motor. It takes
// several minutes on the real beamline.
type GisaxsAlignmentCapability struct {
	Client beamline.Client
	Policy governance.PolicyEngine
	Store  RunStore
}

func NewGisaxsAlignmentCapability(client beamline.Client, policy governance.PolicyEngine, st RunStore) *GisaxsAlignmentCapability {
	return &GisaxsAlignmentCapability{Client: client, Policy: policy, Store: st}
}

func (g *GisaxsAlignmentCapability) Name() string {
	return "bl531_gisaxs_alignment"
}

func (g *GisaxsAlignmentCapability) Description() string {
	return "Run the automatic GISAXS alignment procedure on BL531: finds the reference zero angle of the sample. Takes several minutes. Run this before grazing-incidence measurements."
}

func (g *GisaxsAlignmentCapability) Parameters() map[string]any {
	return map[string]any{
		"type":       "object",
		"properties": map[string]any{},
	}
}

func (g *GisaxsAlignmentCapability) Execute(ctx context.Context, input string) (string, error) {
	if denied := checkPolicy(ctx, g.Policy, governance.Request{Plan: "automatic_gisaxs_alignment"}); denied != "" {
		return denied, nil
	}

	result, err := g.Client.GisaxsAlignment(ctx, nil)
	if err != nil {
		return planFailure(g.Store, "automatic_gisaxs_alignment", input, err)
	}
	recordRun(g.Store, result, input)

	return fmt.Sprintf("GISAXS alignment completed. run_uid: %s", result.RunUID), nil
}

// DiodeAlignmentCapability rasters the beam position around the diode
// to center it.
type DiodeAlignmentCapability struct {
	Client beamline.Client
	Policy governance.PolicyEngine
	Store  RunStore
}

func NewDiodeAlignmentCapability(client beamline.Client, policy governance.PolicyEngine, st RunStore) *DiodeAlignmentCapability {
	return &DiodeAlignmentCapability{Client: client, Policy: policy, Store: st}
}

func (d *DiodeAlignmentCapability) Name() string {
	return "bl531_diode_alignment"
}

func (d *DiodeAlignmentCapability) Description() string {
	return "Run the automatic diode alignment on BL531: scans the beam position in X and Y to optimize alignment on the diode detector."
}

func (d *DiodeAlignmentCapability) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"x_range": map[string]any{
				"type":        "number",
				"description": "Range to scan in X (mm, default 0.5)",
			},
			"x_points": map[string]any{
				"type":        "integer",
				"description": "Number of points in the X scan (default 5)",
			},
			"y_range": map[string]any{
				"type":        "number",
				"description": "Range to scan in Y (mm, default 0.5)",
			},
			"y_points": map[string]any{
				"type":        "integer",
				"description": "Number of points in the Y scan (default 5)",
			},
		},
	}
}

func (d *DiodeAlignmentCapability) Execute(ctx context.Context, input string) (string, error) {
	var args struct {
		XRange  float64 `json:"x_range"`
		XPoints int     `json:"x_points"`
		YRange  float64 `json:"y_range"`
		YPoints int     `json:"y_points"`
	}
	if input != "" {
		if err := json.Unmarshal([]byte(input), &args); err != nil {
			return "", fmt.Errorf("invalid input: %v", err)
		}
	}
	if args.XRange == 0 {
		args.XRange = 0.5
	}
	if args.XPoints == 0 {
		args.XPoints = 5
	}
	if args.YRange == 0 {
		args.YRange = 0.5
	}
	if args.YPoints == 0 {
		args.YPoints = 5
	}

	if denied := checkPolicy(ctx, d.Policy, governance.Request{Plan: "automatic_diode_alignment"}); denied != "" {
		return denied, nil
	}

	result, err := d.Client.DiodeAlignment(ctx, args.XRange, args.XPoints, args.YRange, args.YPoints, nil)
	if err != nil {
		return planFailure(d.Store, "automatic_diode_alignment", input, err)
	}
	recordRun(d.Store, result, input)

	return fmt.Sprintf("Diode alignment completed: %gx%g mm raster in %dx%d points. run_uid: %s",
		args.XRange, args.YRange, args.XPoints, args.YPoints, result.RunUID), nil
}
