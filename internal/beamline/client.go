package beamline

import (
	"context"
	"sort"
	"time"
)

// Motors available on BL531. Scan targets must come from this set.
var Motors = map[string]bool{
	"hexapod_motor_Ry": true,
	"hexapod_motor_Rz": true,
	"hexapod_motor_Ty": true,
	"hexapod_motor_Tz": true,
	"gi_angle":         true,
	"mono_energy":      true,
}

// Detectors available on BL531.
var Detectors = map[string]bool{
	"diode": true,
	"det":   true,
}

// PlanResult is the immutable outcome of one completed plan. The run
// UID is the key for retrieving recorded data from the catalog.
type PlanResult struct {
	RunUID    string    `json:"run_uid"`
	PlanName  string    `json:"plan_name"`
	Timestamp time.Time `json:"timestamp"`
}

// Client submits plans to the beamline and blocks until they reach a
// terminal status. There are two implementations: QueueClient talks to
// a real Bluesky Queue Server, MockClient simulates one offline.
type Client interface {
	// Count reads the given detectors num times without moving motors.
	Count(ctx context.Context, detectors []string, num int, md map[string]any) (*PlanResult, error)
	// Scan moves a motor from start to stop in num points, reading detectors at each.
	Scan(ctx context.Context, detectors []string, motor string, start, stop float64, num int, md map[string]any) (*PlanResult, error)
	// GisaxsAlignment runs the automatic GISAXS alignment procedure.
	GisaxsAlignment(ctx context.Context, md map[string]any) (*PlanResult, error)
	// DiodeAlignment rasters the beam position to center it on the diode.
	DiodeAlignment(ctx context.Context, xRange float64, xPoints int, yRange float64, yPoints int, md map[string]any) (*PlanResult, error)
}

// ValidateDetectors checks every requested detector against the allow-list.
func ValidateDetectors(detectors []string) error {
	for _, d := range detectors {
		if !Detectors[d] {
			return &InvalidParameterError{Kind: "detector", Name: d, Allowed: sortedKeys(Detectors)}
		}
	}
	return nil
}

// ValidateMotor checks the motor against the allow-list.
func ValidateMotor(motor string) error {
	if !Motors[motor] {
		return &InvalidParameterError{Kind: "motor", Name: motor, Allowed: sortedKeys(Motors)}
	}
	return nil
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
