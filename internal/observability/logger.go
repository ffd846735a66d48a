package observability

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"
)

// EventType defines the category of the log event.
type EventType string

const (
	EventTypePlanSubmitted EventType = "plan_submitted"
	EventTypeQueueStarted  EventType = "queue_started"
	EventTypePoll          EventType = "poll"
	EventTypePlanCompleted EventType = "plan_completed"
	EventTypePlanFailed    EventType = "plan_failed"
	EventTypeDataRetrieved EventType = "data_retrieved"
	EventTypeImageLoaded   EventType = "image_loaded"
	EventTypeToolCall      EventType = "tool_call"
	EventTypeToolResult    EventType = "tool_result"
	EventTypePolicyCheck   EventType = "policy_check"
	EventTypeHeartbeat     EventType = "heartbeat"
	EventTypeLLM           EventType = "llm"
)

// Event represents a structured log entry.
type Event struct {
	Type      EventType `json:"type"`
	Plan      string    `json:"plan,omitempty"`
	RunUID    string    `json:"run_uid,omitempty"`
	Data      any       `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

// Logger handles structured logging.
type Logger struct {
	llmLogPath string
	maxSize    int64
}

func NewLogger() *Logger {
	return &Logger{
		llmLogPath: filepath.Join("logs", "llm.jsonl"),
		maxSize:    10 * 1024 * 1024, // 10MB
	}
}

// Log emits a structured JSON event to stdout.
func (l *Logger) Log(evt Event) {
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now()
	}
	data, err := json.Marshal(evt)
	if err != nil {
		fmt.Printf("{\"error\": \"failed to marshal event: %v\"}\n", err)
		return
	}
	fmt.Println(string(data))

	if evt.Type == EventTypeLLM {
		l.writeToFile(data)
	}
}

func (l *Logger) writeToFile(data []byte) {
	if err := os.MkdirAll(filepath.Dir(l.llmLogPath), 0755); err != nil {
		log.Printf("failed to create log directory: %v", err)
		return
	}

	// Check size before writing
	info, err := os.Stat(l.llmLogPath)
	if err == nil && info.Size() > l.maxSize {
		l.rotateLogs()
	}

	f, err := os.OpenFile(l.llmLogPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		log.Printf("failed to open log file: %v", err)
		return
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		log.Printf("failed to write to log file: %v", err)
	}
}

func (l *Logger) rotateLogs() {
	// Simple rotation: keep one .old file
	oldPath := l.llmLogPath + ".old"
	_ = os.Remove(oldPath)
	_ = os.Rename(l.llmLogPath, oldPath)
}

// Helper methods for common events

func (l *Logger) LogPlanSubmitted(plan, itemUID string, kwargs any) {
	l.Log(Event{
		Type: EventTypePlanSubmitted,
		Plan: plan,
		Data: map[string]any{
			"item_uid": itemUID,
			"kwargs":   kwargs,
		},
	})
}

func (l *Logger) LogPlanCompleted(plan, runUID string, elapsed time.Duration) {
	l.Log(Event{
		Type:   EventTypePlanCompleted,
		Plan:   plan,
		RunUID: runUID,
		Data:   map[string]any{"elapsed_seconds": elapsed.Seconds()},
	})
}

func (l *Logger) LogPlanFailed(plan, itemUID, status string) {
	l.Log(Event{
		Type: EventTypePlanFailed,
		Plan: plan,
		Data: map[string]string{
			"item_uid":    itemUID,
			"exit_status": status,
		},
	})
}

func (l *Logger) LogDataRetrieved(runUID string, detectors, motors, images, other int) {
	l.Log(Event{
		Type:   EventTypeDataRetrieved,
		RunUID: runUID,
		Data: map[string]int{
			"detectors": detectors,
			"motors":    motors,
			"images":    images,
			"other":     other,
		},
	})
}

func (l *Logger) LogToolCall(tool, args string) {
	l.Log(Event{
		Type: EventTypeToolCall,
		Data: map[string]string{
			"tool": tool,
			"args": args,
		},
	})
}

func (l *Logger) LogPolicyCheck(tool, effect, reason string) {
	l.Log(Event{
		Type: EventTypePolicyCheck,
		Data: map[string]string{
			"tool":   tool,
			"effect": effect,
			"reason": reason,
		},
	})
}

func (l *Logger) LogHeartbeat() {
	l.Log(Event{
		Type: EventTypeHeartbeat,
		Data: map[string]string{"status": "alive"},
	})
}

func (l *Logger) LogLLM(prompt any, response string, toolCalls any) {
	l.Log(Event{
		Type: EventTypeLLM,
		Data: map[string]any{
			"prompt":     prompt,
			"response":   response,
			"tool_calls": toolCalls,
		},
	})
}
