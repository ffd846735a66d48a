package store

import (
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *HistoryStore {
	t.Helper()
	h, err := NewHistoryStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewHistoryStore failed: %v", err)
	}
	t.Cleanup(func() { h.DB.Close() })
	return h
}

func TestRecordAndListRuns(t *testing.T) {
	h := newTestStore(t)

	if err := h.RecordRun("run-1", "count", `{"detectors":["diode"],"num":1}`, "completed"); err != nil {
		t.Fatalf("RecordRun failed: %v", err)
	}
	if err := h.RecordRun("run-2", "scan", `{"motor":"gi_angle"}`, "failed"); err != nil {
		t.Fatalf("RecordRun failed: %v", err)
	}

	runs, err := h.ListRuns(10)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("Expected 2 runs, got %d", len(runs))
	}
	// Newest first
	if runs[0].RunUID != "run-2" || runs[0].Status != "failed" {
		t.Errorf("Unexpected first record: %+v", runs[0])
	}
	if runs[1].PlanName != "count" {
		t.Errorf("Unexpected second record: %+v", runs[1])
	}
}

func TestListRuns_Limit(t *testing.T) {
	h := newTestStore(t)
	for i := 0; i < 5; i++ {
		if err := h.RecordRun("run", "count", "{}", "completed"); err != nil {
			t.Fatal(err)
		}
	}
	runs, err := h.ListRuns(3)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 3 {
		t.Errorf("Expected 3 runs, got %d", len(runs))
	}
}

func TestMessageHistoryRoundTrip(t *testing.T) {
	h := newTestStore(t)

	if err := h.AddMessage("s1", "human", "scan gi_angle"); err != nil {
		t.Fatal(err)
	}
	if err := h.AddMessage("s1", "ai", "submitted run-abc"); err != nil {
		t.Fatal(err)
	}

	msgs, err := h.GetHistory("s1", 10)
	if err != nil {
		t.Fatalf("GetHistory failed: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("Expected 2 messages, got %d", len(msgs))
	}
}
