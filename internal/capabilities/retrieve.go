package capabilities

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/als-ai/bl531-agent/internal/catalog"
)

// RetrieveDataCapability exposes the data catalog to the agent:
// categorized run summaries, on-demand image loads and run listings.
type RetrieveDataCapability struct {
	Data catalog.DataClient
}

func NewRetrieveDataCapability(data catalog.DataClient) *RetrieveDataCapability {
	return &RetrieveDataCapability{Data: data}
}

func (r *RetrieveDataCapability) Name() string {
	return "bl531_retrieve_data"
}

func (r *RetrieveDataCapability) Description() string {
	return "Retrieve measurement data for a completed BL531 run. Actions: 'run_data' returns what a run recorded (detectors, motors, images, metadata); 'image' loads one image array; 'list_runs' lists recent run_uids from the catalog."
}

func (r *RetrieveDataCapability) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"action": map[string]any{
				"type":        "string",
				"enum":        []string{"run_data", "image", "list_runs"},
				"description": "The retrieval to perform",
			},
			"run_uid": map[string]any{
				"type":        "string",
				"description": "Run identifier (required for 'run_data' and 'image')",
			},
			"image_key": map[string]any{
				"type":        "string",
				"description": "Image array to load for 'image' (default det_image)",
			},
			"limit": map[string]any{
				"type":        "integer",
				"description": "Maximum runs to return for 'list_runs' (default 10)",
			},
		},
		"required": []string{"action"},
	}
}

func (r *RetrieveDataCapability) Execute(ctx context.Context, input string) (string, error) {
	var args struct {
		Action   string `json:"action"`
		RunUID   string `json:"run_uid"`
		ImageKey string `json:"image_key"`
		Limit    int    `json:"limit"`
	}
	if err := json.Unmarshal([]byte(input), &args); err != nil {
		return "", fmt.Errorf("invalid input: %v", err)
	}

	switch args.Action {
	case "run_data":
		if args.RunUID == "" {
			return "Error: run_uid is required for run_data", nil
		}
		rd, err := r.Data.GetRunData(ctx, args.RunUID)
		if err != nil {
			return "", fmt.Errorf("retrieve run data: %w", err)
		}
		summary, err := json.MarshalIndent(rd.Summary(), "", "  ")
		if err != nil {
			return "", err
		}
		return string(summary), nil

	case "image":
		if args.RunUID == "" {
			return "Error: run_uid is required for image", nil
		}
		if args.ImageKey == "" {
			args.ImageKey = "det_image"
		}
		frame, err := r.Data.GetImage(ctx, args.RunUID, args.ImageKey)
		if err != nil {
			return "", fmt.Errorf("load image: %w", err)
		}
		// Images are too large to hand to the LLM; report stats instead.
		return fmt.Sprintf("Loaded image %s from run %s: shape %v, %d values, min %g, max %g",
			args.ImageKey, args.RunUID, frame.Shape, len(frame.Data), minOf(frame.Data), maxOf(frame.Data)), nil

	case "list_runs":
		if args.Limit <= 0 {
			args.Limit = 10
		}
		runs, err := r.Data.ListRuns(ctx, args.Limit)
		if err != nil {
			return "", fmt.Errorf("list runs: %w", err)
		}
		out, err := json.Marshal(runs)
		if err != nil {
			return "", err
		}
		return string(out), nil

	default:
		return "Invalid action. Use 'run_data', 'image' or 'list_runs'.", nil
	}
}

func minOf(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	m := data[0]
	for _, v := range data[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func maxOf(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	m := data[0]
	for _, v := range data[1:] {
		if v > m {
			m = v
		}
	}
	return m
}
