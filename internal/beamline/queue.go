package beamline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/als-ai/bl531-agent/internal/observability"
)

// QueueClient submits plans to a Bluesky Queue Server and polls its
// history endpoint until the submitted item reaches a terminal status.
type QueueClient struct {
	BaseURL      string
	Timeout      time.Duration
	PollInterval time.Duration

	apiKey string
	http   *http.Client
	logger *observability.Logger
}

func NewQueueClient(baseURL, apiKey string, timeout, pollInterval time.Duration, logger *observability.Logger) *QueueClient {
	if timeout == 0 {
		timeout = 300 * time.Second
	}
	if pollInterval == 0 {
		pollInterval = time.Second
	}
	return &QueueClient{
		BaseURL:      baseURL,
		Timeout:      timeout,
		PollInterval: pollInterval,
		apiKey:       apiKey,
		http:         &http.Client{Timeout: 30 * time.Second},
		logger:       logger,
	}
}

// Wire types for the queue server's JSON API.

type planItem struct {
	Name     string         `json:"name"`
	Kwargs   map[string]any `json:"kwargs"`
	ItemType string         `json:"item_type"`
}

type addItemRequest struct {
	Item planItem `json:"item"`
	Pos  string   `json:"pos"`
}

type addItemResponse struct {
	Item struct {
		ItemUID string `json:"item_uid"`
	} `json:"item"`
}

type historyItem struct {
	ItemUID string `json:"item_uid"`
	Result  struct {
		ExitStatus string   `json:"exit_status"`
		RunUIDs    []string `json:"run_uids"`
	} `json:"result"`
}

type historyResponse struct {
	Items []historyItem `json:"items"`
}

// failureStatuses is the canonical set of terminal failure exit statuses.
var failureStatuses = map[string]bool{
	"failed":  true,
	"aborted": true,
	"unknown": true,
}

func (c *QueueClient) Count(ctx context.Context, detectors []string, num int, md map[string]any) (*PlanResult, error) {
	if err := ValidateDetectors(detectors); err != nil {
		return nil, err
	}
	return c.run(ctx, "count", map[string]any{
		"detectors": detectors,
		"num":       num,
		"md":        orEmpty(md),
	})
}

func (c *QueueClient) Scan(ctx context.Context, detectors []string, motor string, start, stop float64, num int, md map[string]any) (*PlanResult, error) {
	if err := ValidateDetectors(detectors); err != nil {
		return nil, err
	}
	if err := ValidateMotor(motor); err != nil {
		return nil, err
	}
	return c.run(ctx, "scan", map[string]any{
		"detectors": detectors,
		"motor":     motor,
		"start":     start,
		"stop":      stop,
		"num":       num,
		"md":        orEmpty(md),
	})
}

func (c *QueueClient) GisaxsAlignment(ctx context.Context, md map[string]any) (*PlanResult, error) {
	return c.run(ctx, "automatic_gisaxs_alignment", map[string]any{
		"md": orEmpty(md),
	})
}

func (c *QueueClient) DiodeAlignment(ctx context.Context, xRange float64, xPoints int, yRange float64, yPoints int, md map[string]any) (*PlanResult, error) {
	return c.run(ctx, "automatic_diode_alignment", map[string]any{
		"x_range":  xRange,
		"x_points": xPoints,
		"y_range":  yRange,
		"y_points": yPoints,
		"md":       orEmpty(md),
	})
}

// run submits a plan, starts the queue and blocks until the plan
// reaches a terminal status.
func (c *QueueClient) run(ctx context.Context, name string, kwargs map[string]any) (*PlanResult, error) {
	started := time.Now()

	itemUID, err := c.submit(ctx, name, kwargs)
	if err != nil {
		return nil, err
	}
	if c.logger != nil {
		c.logger.LogPlanSubmitted(name, itemUID, kwargs)
	}

	runUID, err := c.waitForCompletion(ctx, name, itemUID)
	if err != nil {
		return nil, err
	}
	if c.logger != nil {
		c.logger.LogPlanCompleted(name, runUID, time.Since(started))
	}

	return &PlanResult{
		RunUID:    runUID,
		PlanName:  name,
		Timestamp: time.Now(),
	}, nil
}

// submit posts the plan to the queue and starts it, returning the item_uid.
func (c *QueueClient) submit(ctx context.Context, name string, kwargs map[string]any) (string, error) {
	req := addItemRequest{
		Item: planItem{Name: name, Kwargs: kwargs, ItemType: "plan"},
		Pos:  "back",
	}

	var resp addItemResponse
	if err := c.post(ctx, "/api/queue/item/add", req, &resp); err != nil {
		return "", fmt.Errorf("add queue item: %w", err)
	}
	if resp.Item.ItemUID == "" {
		return "", fmt.Errorf("queue server returned no item_uid for plan %s", name)
	}

	// Starting an already-running queue is a no-op on the server side.
	if err := c.post(ctx, "/api/queue/start", nil, nil); err != nil {
		return "", fmt.Errorf("start queue: %w", err)
	}
	if c.logger != nil {
		c.logger.Log(observability.Event{Type: observability.EventTypeQueueStarted, Plan: name})
	}

	return resp.Item.ItemUID, nil
}

// waitForCompletion re-fetches the full history at a fixed interval
// until the submitted item shows a terminal exit status. No backoff,
// no jitter; cancellation comes only from ctx or the timeout.
func (c *QueueClient) waitForCompletion(ctx context.Context, name, itemUID string) (string, error) {
	deadline := time.Now().Add(c.Timeout)

	for {
		if time.Now().After(deadline) {
			return "", &TimeoutError{ItemUID: itemUID, Waited: c.Timeout}
		}

		var history historyResponse
		if err := c.get(ctx, "/api/history/get", &history); err != nil {
			return "", fmt.Errorf("fetch history: %w", err)
		}

		for _, entry := range history.Items {
			if entry.ItemUID != itemUID {
				continue
			}
			status := entry.Result.ExitStatus
			if status == "completed" && len(entry.Result.RunUIDs) > 0 {
				return entry.Result.RunUIDs[0], nil
			}
			if failureStatuses[status] {
				if c.logger != nil {
					c.logger.LogPlanFailed(name, itemUID, status)
				}
				return "", &ExecutionError{ItemUID: itemUID, Status: status}
			}
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(c.PollInterval):
		}
	}
}

func (c *QueueClient) post(ctx context.Context, path string, body, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, &buf)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *QueueClient) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *QueueClient) do(req *http.Request, out any) error {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Apikey "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%s %s: unexpected status %s", req.Method, req.URL.Path, resp.Status)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func orEmpty(md map[string]any) map[string]any {
	if md == nil {
		return map[string]any{}
	}
	return md
}
