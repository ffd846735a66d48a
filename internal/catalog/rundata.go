package catalog

import (
	"fmt"
	"sort"
	"strings"
)

// Bucket is the category a named array falls into.
type Bucket int

const (
	BucketImage Bucket = iota
	BucketDetector
	BucketMotor
	BucketOther
)

var detectorHints = []string{"diode", "det", "counter", "scaler"}
var motorHints = []string{"motor", "hexapod", "angle", "mono", "_readback"}

// BucketFor categorizes an array by substring matching on its key.
// First match wins: image beats detector beats motor. This is a
// heuristic over Bluesky signal naming, not a schema.
func BucketFor(key string) Bucket {
	k := strings.ToLower(key)
	if strings.Contains(k, "image") {
		return BucketImage
	}
	for _, hint := range detectorHints {
		if strings.Contains(k, hint) {
			return BucketDetector
		}
	}
	for _, hint := range motorHints {
		if strings.Contains(k, hint) {
			return BucketMotor
		}
	}
	return BucketOther
}

// ImageRef marks an image as available without holding its pixels.
// Images may be large; load them with DataClient.GetImage.
type ImageRef struct {
	Key   string `json:"key"`
	Shape []int  `json:"shape,omitempty"`
	Note  string `json:"note"`
}

// Frame is a loaded array with its shape.
type Frame struct {
	Data  []float64 `json:"data"`
	Shape []int     `json:"shape"`
}

// RunData is a categorized view of one run's recorded arrays. It is
// built fresh on every retrieval and never mutated afterwards.
type RunData struct {
	RunUID    string
	Metadata  map[string]any
	Detectors map[string][]float64
	Motors    map[string][]float64
	Images    map[string]ImageRef
	Other     map[string][]float64
}

func NewRunData(runUID string) *RunData {
	return &RunData{
		RunUID:    runUID,
		Metadata:  map[string]any{},
		Detectors: map[string][]float64{},
		Motors:    map[string][]float64{},
		Images:    map[string]ImageRef{},
		Other:     map[string][]float64{},
	}
}

const imageNote = "available (not loaded - use get_image to load)"

// Add places a loaded array into the right bucket.
func (rd *RunData) Add(key string, data []float64) {
	switch BucketFor(key) {
	case BucketImage:
		// Callers normally defer images, but honor the priority
		// order if a loaded image array shows up anyway.
		rd.Images[key] = ImageRef{Key: key, Note: imageNote}
	case BucketDetector:
		rd.Detectors[key] = data
	case BucketMotor:
		rd.Motors[key] = data
	default:
		rd.Other[key] = data
	}
}

// AddImageRef records an image as available without loading it.
func (rd *RunData) AddImageRef(key string, shape []int) {
	rd.Images[key] = ImageRef{Key: key, Shape: shape, Note: imageNote}
}

// Summary flattens the run into key lists for the agent.
func (rd *RunData) Summary() map[string]any {
	return map[string]any{
		"run_uid":             rd.RunUID,
		"metadata":            rd.Metadata,
		"available_detectors": sortedKeys(rd.Detectors),
		"available_motors":    sortedKeys(rd.Motors),
		"available_images":    sortedImageKeys(rd.Images),
		"available_other":     sortedKeys(rd.Other),
	}
}

func (rd *RunData) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "RunData(run_uid=%q)", rd.RunUID)
	if len(rd.Detectors) > 0 {
		fmt.Fprintf(&b, "\n  Detectors: %v", sortedKeys(rd.Detectors))
	}
	if len(rd.Motors) > 0 {
		fmt.Fprintf(&b, "\n  Motors: %v", sortedKeys(rd.Motors))
	}
	if len(rd.Images) > 0 {
		fmt.Fprintf(&b, "\n  Images: %v", sortedImageKeys(rd.Images))
	}
	if len(rd.Other) > 0 {
		fmt.Fprintf(&b, "\n  Other: %v", sortedKeys(rd.Other))
	}
	return b.String()
}

func sortedKeys(m map[string][]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedImageKeys(m map[string]ImageRef) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
