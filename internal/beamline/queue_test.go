package beamline

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

// queueServer is a minimal fake Bluesky Queue Server for tests.
type queueServer struct {
	mu      sync.Mutex
	itemUID string
	history historyResponse

	addCalls   int
	startCalls int
	pollCalls  int
}

func (q *queueServer) setHistory(items ...historyItem) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.history.Items = items
}

func (q *queueServer) counts() (add, start, poll int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.addCalls, q.startCalls, q.pollCalls
}

func (q *queueServer) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/queue/item/add", func(w http.ResponseWriter, r *http.Request) {
		q.mu.Lock()
		q.addCalls++
		q.mu.Unlock()
		var resp addItemResponse
		resp.Item.ItemUID = q.itemUID
		json.NewEncoder(w).Encode(resp)
	})
	mux.HandleFunc("/api/queue/start", func(w http.ResponseWriter, r *http.Request) {
		q.mu.Lock()
		q.startCalls++
		q.mu.Unlock()
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/api/history/get", func(w http.ResponseWriter, r *http.Request) {
		q.mu.Lock()
		q.pollCalls++
		resp := q.history
		q.mu.Unlock()
		json.NewEncoder(w).Encode(resp)
	})
	return mux
}

func newTestClient(t *testing.T, q *queueServer) (*QueueClient, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(q.handler())
	t.Cleanup(srv.Close)
	c := NewQueueClient(srv.URL, "test-key", 2*time.Second, 10*time.Millisecond, nil)
	return c, srv
}

func terminalEntry(itemUID, status string, runUIDs ...string) historyItem {
	var entry historyItem
	entry.ItemUID = itemUID
	entry.Result.ExitStatus = status
	entry.Result.RunUIDs = runUIDs
	return entry
}

func TestCount_InvalidDetectorFailsBeforeNetwork(t *testing.T) {
	q := &queueServer{itemUID: "item-1"}
	c, _ := newTestClient(t, q)

	_, err := c.Count(context.Background(), []string{"pilatus"}, 1, nil)

	var ipe *InvalidParameterError
	if !errors.As(err, &ipe) {
		t.Fatalf("Expected InvalidParameterError, got %v", err)
	}
	if ipe.Kind != "detector" {
		t.Errorf("Expected detector error, got %s", ipe.Kind)
	}
	if add, start, poll := q.counts(); add != 0 || start != 0 || poll != 0 {
		t.Errorf("Validation failure must not hit the network: %d/%d/%d", add, start, poll)
	}
}

func TestScan_InvalidMotorFailsBeforeNetwork(t *testing.T) {
	q := &queueServer{itemUID: "item-1"}
	c, _ := newTestClient(t, q)

	_, err := c.Scan(context.Background(), []string{"diode"}, "sample_stage_x", 0, 1, 5, nil)

	var ipe *InvalidParameterError
	if !errors.As(err, &ipe) {
		t.Fatalf("Expected InvalidParameterError, got %v", err)
	}
	if add, _, _ := q.counts(); add != 0 {
		t.Error("Validation failure must not hit the network")
	}
}

func TestCount_ReturnsFirstRunUID(t *testing.T) {
	q := &queueServer{itemUID: "item-42"}
	q.setHistory(
		terminalEntry("other-item", "completed", "zzz"),
		terminalEntry("item-42", "completed", "run-abc", "run-def"),
	)
	c, _ := newTestClient(t, q)

	res, err := c.Count(context.Background(), []string{"diode"}, 3, nil)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if res.RunUID != "run-abc" {
		t.Errorf("Expected first run_uid run-abc, got %s", res.RunUID)
	}
	if res.PlanName != "count" {
		t.Errorf("Expected plan_name count, got %s", res.PlanName)
	}
	if _, start, _ := q.counts(); start != 1 {
		t.Errorf("Queue should be started once, got %d", start)
	}
}

func TestWaitForCompletion_FailureStatuses(t *testing.T) {
	for _, status := range []string{"failed", "aborted", "unknown"} {
		q := &queueServer{itemUID: "item-9"}
		q.setHistory(terminalEntry("item-9", status))
		c, _ := newTestClient(t, q)

		_, err := c.Count(context.Background(), []string{"det"}, 1, nil)

		var ee *ExecutionError
		if !errors.As(err, &ee) {
			t.Fatalf("status %s: expected ExecutionError, got %v", status, err)
		}
		if ee.Status != status {
			t.Errorf("Expected status %s, got %s", status, ee.Status)
		}
		if _, _, poll := q.counts(); poll != 1 {
			t.Errorf("status %s: failure should stop polling, polled %d times", status, poll)
		}
	}
}

func TestWaitForCompletion_Timeout(t *testing.T) {
	// History never mentions the submitted item.
	q := &queueServer{itemUID: "item-7"}
	c, _ := newTestClient(t, q)
	c.Timeout = 50 * time.Millisecond

	_, err := c.Count(context.Background(), []string{"diode"}, 1, nil)

	var te *TimeoutError
	if !errors.As(err, &te) {
		t.Fatalf("Expected TimeoutError, got %v", err)
	}
	if _, _, poll := q.counts(); poll == 0 {
		t.Error("Expected at least one history poll before timing out")
	}
}

func TestWaitForCompletion_PollsUntilTerminal(t *testing.T) {
	q := &queueServer{itemUID: "item-3"}
	c, _ := newTestClient(t, q)

	// Populate the terminal entry only after a couple of polls.
	go func() {
		time.Sleep(50 * time.Millisecond)
		q.setHistory(terminalEntry("item-3", "completed", "run-late"))
	}()

	res, err := c.Scan(context.Background(), []string{"diode"}, "gi_angle", -0.5, 0.5, 11, nil)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if res.RunUID != "run-late" {
		t.Errorf("Expected run-late, got %s", res.RunUID)
	}
	if _, _, poll := q.counts(); poll < 2 {
		t.Errorf("Expected repeated polling, got %d polls", poll)
	}
}

func TestWaitForCompletion_ContextCancel(t *testing.T) {
	q := &queueServer{itemUID: "item-5"}
	c, _ := newTestClient(t, q)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(30 * time.Millisecond)
		cancel()
	}()

	_, err := c.GisaxsAlignment(ctx, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
}

func TestQueueClient_SendsApikeyHeader(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if r.URL.Path == "/api/queue/item/add" {
			var resp addItemResponse
			resp.Item.ItemUID = "item-h"
			json.NewEncoder(w).Encode(resp)
			return
		}
		if r.URL.Path == "/api/history/get" {
			json.NewEncoder(w).Encode(historyResponse{
				Items: []historyItem{terminalEntry("item-h", "completed", "run-h")},
			})
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewQueueClient(srv.URL, "secret", time.Second, 10*time.Millisecond, nil)
	if _, err := c.Count(context.Background(), []string{"diode"}, 1, nil); err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if gotAuth != "Apikey secret" {
		t.Errorf("Expected Apikey header, got %q", gotAuth)
	}
}
