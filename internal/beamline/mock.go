package beamline

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
)

// MockClient simulates plan execution without any beamline connection.
// It validates parameters exactly like QueueClient so agents exercise
// the same failure paths offline.
type MockClient struct {
	// Delay stands in for plan execution time. Alignment plans take
	// several minutes on the real beamline; keep this short.
	Delay time.Duration
}

func NewMockClient() *MockClient {
	return &MockClient{Delay: 500 * time.Millisecond}
}

func (m *MockClient) Count(ctx context.Context, detectors []string, num int, md map[string]any) (*PlanResult, error) {
	if err := ValidateDetectors(detectors); err != nil {
		return nil, err
	}
	return m.execute(ctx, "count")
}

func (m *MockClient) Scan(ctx context.Context, detectors []string, motor string, start, stop float64, num int, md map[string]any) (*PlanResult, error) {
	if err := ValidateDetectors(detectors); err != nil {
		return nil, err
	}
	if err := ValidateMotor(motor); err != nil {
		return nil, err
	}
	return m.execute(ctx, "scan")
}

func (m *MockClient) GisaxsAlignment(ctx context.Context, md map[string]any) (*PlanResult, error) {
	return m.execute(ctx, "automatic_gisaxs_alignment")
}

func (m *MockClient) DiodeAlignment(ctx context.Context, xRange float64, xPoints int, yRange float64, yPoints int, md map[string]any) (*PlanResult, error) {
	return m.execute(ctx, "automatic_diode_alignment")
}

func (m *MockClient) execute(ctx context.Context, name string) (*PlanResult, error) {
	log.Printf("MOCK: simulating %s execution", name)

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(m.Delay):
	}

	result := &PlanResult{
		RunUID:    uuid.NewString(),
		PlanName:  name,
		Timestamp: time.Now(),
	}
	log.Printf("MOCK: %s completed with run_uid %s", name, result.RunUID)
	return result, nil
}
