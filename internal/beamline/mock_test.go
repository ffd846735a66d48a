package beamline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestMockClient_AllPlansReturnValidRunUID(t *testing.T) {
	m := NewMockClient()
	m.Delay = time.Millisecond
	ctx := context.Background()

	results := []*PlanResult{}

	res, err := m.Count(ctx, []string{"diode"}, 1, nil)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	results = append(results, res)

	res, err = m.Scan(ctx, []string{"diode", "det"}, "hexapod_motor_Ty", 0, 0.3, 5, nil)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	results = append(results, res)

	res, err = m.GisaxsAlignment(ctx, nil)
	if err != nil {
		t.Fatalf("GisaxsAlignment failed: %v", err)
	}
	results = append(results, res)

	res, err = m.DiodeAlignment(ctx, 0.5, 5, 0.5, 5, nil)
	if err != nil {
		t.Fatalf("DiodeAlignment failed: %v", err)
	}
	results = append(results, res)

	for _, r := range results {
		if _, err := uuid.Parse(r.RunUID); err != nil {
			t.Errorf("Plan %s returned non-UUID run_uid %q", r.PlanName, r.RunUID)
		}
		if r.Timestamp.IsZero() {
			t.Errorf("Plan %s has zero timestamp", r.PlanName)
		}
	}
}

func TestMockClient_ValidatesLikeRealClient(t *testing.T) {
	m := NewMockClient()
	m.Delay = time.Millisecond

	var ipe *InvalidParameterError
	if _, err := m.Count(context.Background(), []string{"nope"}, 1, nil); !errors.As(err, &ipe) {
		t.Errorf("Expected InvalidParameterError for bad detector, got %v", err)
	}
	if _, err := m.Scan(context.Background(), []string{"diode"}, "nope", 0, 1, 2, nil); !errors.As(err, &ipe) {
		t.Errorf("Expected InvalidParameterError for bad motor, got %v", err)
	}
}
