package governance

import (
	"context"
	"fmt"
)

// Effect defines the result of a policy evaluation.
type Effect string

const (
	EffectAllow Effect = "allow"
	EffectDeny  Effect = "deny"
)

// Request contains the context of a plan submission to be evaluated.
type Request struct {
	Plan      string
	Motor     string    // empty for plans that move nothing
	Positions []float64 // requested target positions, if any
}

// Result contains the outcome of a policy evaluation.
type Result struct {
	Effect Effect
	Reason string
}

// PolicyEngine evaluates plan submissions against a set of rules
// before they reach the queue server.
type PolicyEngine interface {
	Evaluate(ctx context.Context, req Request) (Result, error)
}

// Bounds restricts a motor to a position range.
type Bounds struct {
	Min float64
	Max float64
}

// DefaultPolicyEngine is a basic implementation of PolicyEngine.
type DefaultPolicyEngine struct {
	DeniedPlans  map[string]bool
	DeniedMotors map[string]bool
	MotorBounds  map[string]Bounds
}

func NewDefaultPolicyEngine() *DefaultPolicyEngine {
	return &DefaultPolicyEngine{
		DeniedPlans:  make(map[string]bool),
		DeniedMotors: make(map[string]bool),
		MotorBounds:  make(map[string]Bounds),
	}
}

func (e *DefaultPolicyEngine) DenyPlan(name string) {
	e.DeniedPlans[name] = true
}

func (e *DefaultPolicyEngine) DenyMotor(name string) {
	e.DeniedMotors[name] = true
}

// BoundMotor restricts a motor's requested positions to [min, max].
func (e *DefaultPolicyEngine) BoundMotor(name string, min, max float64) {
	e.MotorBounds[name] = Bounds{Min: min, Max: max}
}

func (e *DefaultPolicyEngine) Evaluate(ctx context.Context, req Request) (Result, error) {
	if e.DeniedPlans[req.Plan] {
		return Result{
			Effect: EffectDeny,
			Reason: fmt.Sprintf("Plan '%s' is restricted by beamline policy", req.Plan),
		}, nil
	}

	if req.Motor != "" && e.DeniedMotors[req.Motor] {
		return Result{
			Effect: EffectDeny,
			Reason: fmt.Sprintf("Motor '%s' is locked by beamline policy", req.Motor),
		}, nil
	}

	if b, ok := e.MotorBounds[req.Motor]; ok {
		for _, pos := range req.Positions {
			if pos < b.Min || pos > b.Max {
				return Result{
					Effect: EffectDeny,
					Reason: fmt.Sprintf("Position %g for motor '%s' is outside allowed range [%g, %g]", pos, req.Motor, b.Min, b.Max),
				}, nil
			}
		}
	}

	return Result{
		Effect: EffectAllow,
		Reason: "Approved by default policy",
	}, nil
}
