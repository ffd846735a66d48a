package observability

import (
	"sync"
	"time"
)

type State string

const (
	StateIdle      State = "IDLE"
	StateThinking  State = "THINKING"
	StateExecuting State = "EXECUTING"
	StateWaiting   State = "WAITING" // blocked on the queue server history poll
)

type SystemStatus struct {
	mu            sync.RWMutex
	CurrentState  State
	ActivePlan    string
	LastHeartbeat time.Time
}

var globalStatus = &SystemStatus{
	CurrentState:  StateIdle,
	LastHeartbeat: time.Now(),
}

// SetStatus updates the global system status.
func SetStatus(state State, plan string) {
	globalStatus.mu.Lock()
	defer globalStatus.mu.Unlock()
	globalStatus.CurrentState = state
	globalStatus.ActivePlan = plan
}

// GetStatus retrieves a copy of the global system status.
func GetStatus() (State, string, time.Time) {
	globalStatus.mu.RLock()
	defer globalStatus.mu.RUnlock()
	return globalStatus.CurrentState, globalStatus.ActivePlan, globalStatus.LastHeartbeat
}

// Heartbeat updates the last heartbeat time.
func Heartbeat() {
	globalStatus.mu.Lock()
	defer globalStatus.mu.Unlock()
	globalStatus.LastHeartbeat = time.Now()
}
