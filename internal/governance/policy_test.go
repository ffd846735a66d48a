package governance

import (
	"context"
	"testing"
)

func TestDefaultPolicyEngine_Evaluate(t *testing.T) {
	engine := NewDefaultPolicyEngine()
	ctx := context.Background()

	// Test Allow (Default)
	req1 := Request{Plan: "count"}
	res1, err := engine.Evaluate(ctx, req1)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if res1.Effect != EffectAllow {
		t.Errorf("Expected EffectAllow, got %s", res1.Effect)
	}

	// Test Deny plan
	engine.DenyPlan("automatic_gisaxs_alignment")
	res2, err := engine.Evaluate(ctx, Request{Plan: "automatic_gisaxs_alignment"})
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if res2.Effect != EffectDeny {
		t.Errorf("Expected EffectDeny, got %s", res2.Effect)
	}

	// Test Deny motor
	engine.DenyMotor("mono_energy")
	res3, _ := engine.Evaluate(ctx, Request{Plan: "scan", Motor: "mono_energy"})
	if res3.Effect != EffectDeny {
		t.Errorf("Expected EffectDeny for locked motor, got %s", res3.Effect)
	}
}

func TestDefaultPolicyEngine_MotorBounds(t *testing.T) {
	engine := NewDefaultPolicyEngine()
	engine.BoundMotor("hexapod_motor_Tz", -1.0, 1.0)
	ctx := context.Background()

	ok, _ := engine.Evaluate(ctx, Request{Plan: "scan", Motor: "hexapod_motor_Tz", Positions: []float64{-0.5, 0.5}})
	if ok.Effect != EffectAllow {
		t.Errorf("In-range scan should be allowed, got %s: %s", ok.Effect, ok.Reason)
	}

	bad, _ := engine.Evaluate(ctx, Request{Plan: "scan", Motor: "hexapod_motor_Tz", Positions: []float64{0.0, 2.5}})
	if bad.Effect != EffectDeny {
		t.Errorf("Out-of-range scan should be denied, got %s", bad.Effect)
	}

	// Unbounded motors pass through.
	free, _ := engine.Evaluate(ctx, Request{Plan: "scan", Motor: "gi_angle", Positions: []float64{99}})
	if free.Effect != EffectAllow {
		t.Errorf("Unbounded motor should be allowed, got %s", free.Effect)
	}
}
