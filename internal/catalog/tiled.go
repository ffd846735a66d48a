package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/als-ai/bl531-agent/internal/observability"
)

// DataClient retrieves recorded run data from the beamline catalog.
// TiledClient talks to a real Tiled server, MockDataClient fabricates
// plausible data offline.
type DataClient interface {
	// GetRunData enumerates a run's primary stream, loading every
	// non-image array and marking images as available-but-deferred.
	GetRunData(ctx context.Context, runUID string) (*RunData, error)
	// GetImage loads one image array on demand.
	GetImage(ctx context.Context, runUID, imageKey string) (*Frame, error)
	// ListRuns returns up to limit recent run UIDs.
	ListRuns(ctx context.Context, limit int) ([]string, error)
}

// TiledClient reads runs from a Tiled data catalog over its JSON API.
type TiledClient struct {
	BaseURL string

	apiKey string
	http   *http.Client
	logger *observability.Logger
}

func NewTiledClient(baseURL, apiKey string, logger *observability.Logger) *TiledClient {
	return &TiledClient{
		BaseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 60 * time.Second},
		logger:  logger,
	}
}

// Tiled wire types (the subset of the JSON API this client uses).

type tiledEntry struct {
	ID         string `json:"id"`
	Attributes struct {
		Metadata  map[string]any `json:"metadata"`
		Structure struct {
			Shape []int `json:"shape"`
		} `json:"structure"`
	} `json:"attributes"`
}

type tiledSearchResponse struct {
	Data []tiledEntry `json:"data"`
}

type tiledMetadataResponse struct {
	Data tiledEntry `json:"data"`
}

func (c *TiledClient) GetRunData(ctx context.Context, runUID string) (*RunData, error) {
	rd := NewRunData(runUID)

	var meta tiledMetadataResponse
	if err := c.get(ctx, "/api/v1/metadata/"+runUID+"/primary", nil, &meta); err != nil {
		return nil, fmt.Errorf("fetch primary metadata for %s: %w", runUID, err)
	}
	if meta.Data.Attributes.Metadata != nil {
		rd.Metadata = meta.Data.Attributes.Metadata
	}

	var keys tiledSearchResponse
	if err := c.get(ctx, "/api/v1/search/"+runUID+"/primary", nil, &keys); err != nil {
		return nil, fmt.Errorf("enumerate primary stream of %s: %w", runUID, err)
	}

	for _, entry := range keys.Data {
		key := entry.ID
		if BucketFor(key) == BucketImage {
			rd.AddImageRef(key, entry.Attributes.Structure.Shape)
			continue
		}

		frame, err := c.readArray(ctx, runUID, key)
		if err != nil {
			// A single unreadable array does not fail the retrieval.
			log.Printf("failed to load %s from run %s: %v", key, runUID, err)
			continue
		}
		rd.Add(key, frame.Data)
	}

	if c.logger != nil {
		c.logger.LogDataRetrieved(runUID, len(rd.Detectors), len(rd.Motors), len(rd.Images), len(rd.Other))
	}
	return rd, nil
}

func (c *TiledClient) GetImage(ctx context.Context, runUID, imageKey string) (*Frame, error) {
	frame, err := c.readArray(ctx, runUID, imageKey)
	if err != nil {
		return nil, fmt.Errorf("load image %s from run %s: %w", imageKey, runUID, err)
	}
	if c.logger != nil {
		c.logger.Log(observability.Event{
			Type:   observability.EventTypeImageLoaded,
			RunUID: runUID,
			Data:   map[string]any{"key": imageKey, "shape": frame.Shape},
		})
	}
	return frame, nil
}

func (c *TiledClient) ListRuns(ctx context.Context, limit int) ([]string, error) {
	var resp tiledSearchResponse
	query := url.Values{"page[limit]": {fmt.Sprint(limit)}}
	if err := c.get(ctx, "/api/v1/search/", query, &resp); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}

	runs := make([]string, 0, len(resp.Data))
	for _, entry := range resp.Data {
		runs = append(runs, entry.ID)
	}
	if len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

// readArray fetches a full array as JSON and flattens it into a Frame.
func (c *TiledClient) readArray(ctx context.Context, runUID, key string) (*Frame, error) {
	query := url.Values{"format": {"application/json"}}
	var raw any
	if err := c.get(ctx, "/api/v1/array/full/"+runUID+"/primary/"+key, query, &raw); err != nil {
		return nil, err
	}
	return flatten(raw)
}

// flatten converts an arbitrarily nested JSON number array into a flat
// Frame, inferring the shape from nesting depth.
func flatten(raw any) (*Frame, error) {
	frame := &Frame{}

	var walk func(v any, depth int) error
	walk = func(v any, depth int) error {
		switch t := v.(type) {
		case float64:
			frame.Data = append(frame.Data, t)
			return nil
		case []any:
			if len(frame.Shape) <= depth {
				frame.Shape = append(frame.Shape, len(t))
			}
			for _, elem := range t {
				if err := walk(elem, depth+1); err != nil {
					return err
				}
			}
			return nil
		default:
			return fmt.Errorf("unexpected element %T in array payload", v)
		}
	}

	if err := walk(raw, 0); err != nil {
		return nil, err
	}
	if len(frame.Shape) == 0 {
		// Scalar payload; treat as a length-1 vector.
		frame.Shape = []int{len(frame.Data)}
	}
	return frame, nil
}

func (c *TiledClient) get(ctx context.Context, path string, query url.Values, out any) error {
	u := c.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Apikey "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("GET %s: unexpected status %s", path, resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
