package catalog

import (
	"context"
	"fmt"
	"log"
	"math/rand"
)

// MockDataClient fabricates run data without a Tiled connection.
type MockDataClient struct{}

func NewMockDataClient() *MockDataClient {
	return &MockDataClient{}
}

func (m *MockDataClient) GetRunData(ctx context.Context, runUID string) (*RunData, error) {
	rd := NewRunData(runUID)
	rd.Metadata = map[string]any{
		"plan_name": "scan",
		"sample":    "mock_sample",
	}
	rd.Detectors["diode"] = []float64{100.5, 102.3, 98.7, 101.2, 99.8}
	rd.Motors["gi_angle"] = []float64{0.1, 0.12, 0.14, 0.16, 0.18}
	rd.Motors["hexapod_motor_Tz_mm_readback"] = []float64{5.0, 5.0, 5.0, 5.0, 5.0}
	rd.AddImageRef("det_image", []int{100, 100})

	log.Printf("MOCK: generated run data for %s", runUID)
	return rd, nil
}

func (m *MockDataClient) GetImage(ctx context.Context, runUID, imageKey string) (*Frame, error) {
	// A small synthetic image keeps offline analysis workflows running.
	const size = 100
	frame := &Frame{
		Data:  make([]float64, size*size),
		Shape: []int{size, size},
	}
	for i := range frame.Data {
		frame.Data[i] = float64(rand.Intn(1000))
	}
	log.Printf("MOCK: generated %dx%d image %s for %s", size, size, imageKey, runUID)
	return frame, nil
}

func (m *MockDataClient) ListRuns(ctx context.Context, limit int) ([]string, error) {
	runs := make([]string, 0, limit)
	for i := 0; i < limit; i++ {
		runs = append(runs, fmt.Sprintf("mock-run-%04d", i))
	}
	return runs, nil
}
