package catalog

import (
	"testing"
)

func TestBucketFor(t *testing.T) {
	cases := []struct {
		key  string
		want Bucket
	}{
		{"det_image", BucketImage}, // image wins over detector substring
		{"diode", BucketDetector},
		{"det", BucketDetector},
		{"i0_counter", BucketDetector},
		{"scaler_ch2", BucketDetector},
		{"hexapod_motor_Tz_mm_readback", BucketMotor},
		{"gi_angle", BucketMotor},
		{"mono_energy", BucketMotor},
		{"sample_temp", BucketOther},
		{"Beam_Image_Raw", BucketImage}, // case-insensitive
	}

	for _, c := range cases {
		if got := BucketFor(c.key); got != c.want {
			t.Errorf("BucketFor(%q) = %v, want %v", c.key, got, c.want)
		}
	}
}

func TestRunData_AddCategorizes(t *testing.T) {
	rd := NewRunData("run-1")
	rd.Add("diode", []float64{1, 2, 3})
	rd.Add("hexapod_motor_Tz_mm_readback", []float64{5, 5, 5})
	rd.Add("sample_temp", []float64{20.1})
	rd.AddImageRef("det_image", []int{100, 100})

	if _, ok := rd.Detectors["diode"]; !ok {
		t.Error("diode should land in Detectors")
	}
	if _, ok := rd.Motors["hexapod_motor_Tz_mm_readback"]; !ok {
		t.Error("hexapod readback should land in Motors")
	}
	if _, ok := rd.Other["sample_temp"]; !ok {
		t.Error("sample_temp should land in Other")
	}

	ref, ok := rd.Images["det_image"]
	if !ok {
		t.Fatal("det_image should land in Images")
	}
	if ref.Note == "" {
		t.Error("Image entry should carry an availability note, not pixels")
	}
	if len(ref.Shape) != 2 {
		t.Errorf("Expected recorded shape, got %v", ref.Shape)
	}
}

func TestRunData_Summary(t *testing.T) {
	rd := NewRunData("run-2")
	rd.Add("diode", []float64{1})
	rd.AddImageRef("det_image", nil)

	s := rd.Summary()
	if s["run_uid"] != "run-2" {
		t.Errorf("Unexpected run_uid in summary: %v", s["run_uid"])
	}
	dets := s["available_detectors"].([]string)
	if len(dets) != 1 || dets[0] != "diode" {
		t.Errorf("Unexpected detectors in summary: %v", dets)
	}
	imgs := s["available_images"].([]string)
	if len(imgs) != 1 || imgs[0] != "det_image" {
		t.Errorf("Unexpected images in summary: %v", imgs)
	}
}

func TestFlatten(t *testing.T) {
	// 2x3 nested payload as decoded from JSON.
	raw := []any{
		[]any{1.0, 2.0, 3.0},
		[]any{4.0, 5.0, 6.0},
	}
	frame, err := flatten(raw)
	if err != nil {
		t.Fatalf("flatten failed: %v", err)
	}
	if len(frame.Data) != 6 {
		t.Errorf("Expected 6 values, got %d", len(frame.Data))
	}
	if len(frame.Shape) != 2 || frame.Shape[0] != 2 || frame.Shape[1] != 3 {
		t.Errorf("Expected shape [2 3], got %v", frame.Shape)
	}
}
