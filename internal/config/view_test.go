package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}
	return path
}

func TestDefaultViewConfig(t *testing.T) {
	cfg := DefaultViewConfig()

	if cfg.AxisScale == nil || *cfg.AxisScale != 0.5 {
		t.Errorf("Expected AxisScale 0.5, got %v", cfg.AxisScale)
	}
	if cfg.ColorScale == nil || *cfg.ColorScale != "Bluered" {
		t.Errorf("Expected ColorScale Bluered, got %v", cfg.ColorScale)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}

	if cfg.GetTargetMarkerSize() != 12 {
		t.Errorf("GetTargetMarkerSize() = %d, want 12", cfg.GetTargetMarkerSize())
	}
	if cfg.GetPixelMarkerSize() != 6 {
		t.Errorf("GetPixelMarkerSize() = %d, want 6", cfg.GetPixelMarkerSize())
	}
	if cfg.GetPoseStep() != "initial" {
		t.Errorf("GetPoseStep() = %q, want initial", cfg.GetPoseStep())
	}
	if cfg.GetTickStepSeconds() != 5 {
		t.Errorf("GetTickStepSeconds() = %d, want 5", cfg.GetTickStepSeconds())
	}
}

func TestEmptyViewConfigGetters(t *testing.T) {
	cfg := EmptyViewConfig()

	if cfg.GetAxisScale() != 0.5 {
		t.Errorf("GetAxisScale() = %f, want 0.5", cfg.GetAxisScale())
	}
	if cfg.GetColorScale() != "Bluered" {
		t.Errorf("GetColorScale() = %q, want Bluered", cfg.GetColorScale())
	}
	if v, ok := cfg.GetMaxReprojectionError(); !ok || v != 1.0 {
		t.Errorf("GetMaxReprojectionError() = (%f, %v), want (1, true)", v, ok)
	}
}

func TestLoadViewConfig(t *testing.T) {
	path := writeConfig(t, "view.json", `{
  "axis_scale": 0.25,
  "pose_step": "optimized",
  "max_reprojection_error": 0
}`)

	cfg, err := LoadViewConfig(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.GetAxisScale() != 0.25 {
		t.Errorf("GetAxisScale() = %f, want 0.25", cfg.GetAxisScale())
	}
	if cfg.GetPoseStep() != "optimized" {
		t.Errorf("GetPoseStep() = %q, want optimized", cfg.GetPoseStep())
	}
	if _, ok := cfg.GetMaxReprojectionError(); ok {
		t.Error("max_reprojection_error 0 should mean derive from data")
	}
	// Omitted fields keep their defaults.
	if cfg.GetTargetMarkerSize() != 12 {
		t.Errorf("GetTargetMarkerSize() = %d, want 12", cfg.GetTargetMarkerSize())
	}
}

func TestLoadViewConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		body    string
		wantErr string
	}{
		{"wrong extension", "view.yaml", "{}", ".json extension"},
		{"bad json", "view.json", "{", "failed to parse config JSON"},
		{"negative scale", "view.json", `{"axis_scale": -1}`, "axis_scale must be positive"},
		{"zero marker", "view.json", `{"pixel_marker_size": 0}`, "pixel_marker_size must be positive"},
		{"empty colour scale", "view.json", `{"color_scale": ""}`, "color_scale must not be empty"},
		{"zero tick step", "view.json", `{"tick_step_seconds": 0}`, "tick_step_seconds must be positive"},
		{"empty pose step", "view.json", `{"pose_step": ""}`, "pose_step must not be empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.file, tt.body)
			_, err := LoadViewConfig(path)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadViewConfig_Missing(t *testing.T) {
	_, err := LoadViewConfig(filepath.Join(t.TempDir(), "absent.json"))
	if err == nil || !strings.Contains(err.Error(), "failed to stat config file") {
		t.Errorf("expected stat error, got %v", err)
	}
}

func TestLoadViewConfig_TooLarge(t *testing.T) {
	body := `{"pose_step": "` + strings.Repeat("x", 1024*1024) + `"}`
	path := writeConfig(t, "big.json", body)
	_, err := LoadViewConfig(path)
	if err == nil || !strings.Contains(err.Error(), "config file too large") {
		t.Errorf("expected size error, got %v", err)
	}
}

func TestMustLoadDefaultConfig(t *testing.T) {
	cfg := MustLoadDefaultConfig()
	if cfg.GetAxisScale() != 0.5 {
		t.Errorf("GetAxisScale() = %f, want 0.5", cfg.GetAxisScale())
	}
	if cfg.GetPoseStep() != "initial" {
		t.Errorf("GetPoseStep() = %q, want initial", cfg.GetPoseStep())
	}
}
