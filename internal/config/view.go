package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultConfigPath is the path to the canonical view defaults file.
const DefaultConfigPath = "config/view.defaults.json"

// Built-in fallbacks used by the Get* accessors when a field is omitted.
const (
	defaultAxisScale        = 0.5
	defaultTargetMarkerSize = 12
	defaultPixelMarkerSize  = 6
	defaultColorScale       = "Bluered"
	defaultMaxReprojError   = 1.0
	defaultTickStepSeconds  = 5
	defaultPoseStep         = "initial"
)

// ViewConfig holds the presentation parameters of the frame view. Every
// field is optional; omitted fields fall back to the Get* defaults so that
// partial files are safe.
type ViewConfig struct {
	// Pose gizmo
	AxisScale *float64 `json:"axis_scale,omitempty"`
	PoseStep  *string  `json:"pose_step,omitempty"` // e.g. "initial", "optimized"

	// Camera panel
	TargetMarkerSize     *int     `json:"target_marker_size,omitempty"`
	PixelMarkerSize      *int     `json:"pixel_marker_size,omitempty"`
	ColorScale           *string  `json:"color_scale,omitempty"`
	MaxReprojectionError *float64 `json:"max_reprojection_error,omitempty"` // <= 0 means derive from data

	// Timeline
	TickStepSeconds *int `json:"tick_step_seconds,omitempty"`
}

func ptrFloat64(v float64) *float64 { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }

// EmptyViewConfig returns a ViewConfig with every field unset.
func EmptyViewConfig() *ViewConfig {
	return &ViewConfig{}
}

// DefaultViewConfig returns a ViewConfig with every field set explicitly to
// its built-in default.
func DefaultViewConfig() *ViewConfig {
	return &ViewConfig{
		AxisScale:            ptrFloat64(defaultAxisScale),
		PoseStep:             ptrString(defaultPoseStep),
		TargetMarkerSize:     ptrInt(defaultTargetMarkerSize),
		PixelMarkerSize:      ptrInt(defaultPixelMarkerSize),
		ColorScale:           ptrString(defaultColorScale),
		MaxReprojectionError: ptrFloat64(defaultMaxReprojError),
		TickStepSeconds:      ptrInt(defaultTickStepSeconds),
	}
}

// LoadViewConfig loads a ViewConfig from a JSON file.
// The path must have a .json extension and the file must be under 1MB.
func LoadViewConfig(path string) (*ViewConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyViewConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads DefaultConfigPath, searching the current
// directory and its parents up to the repository root. It panics on failure
// and is intended for test setup.
func MustLoadDefaultConfig() *ViewConfig {
	candidates := []string{
		DefaultConfigPath,
		"../" + DefaultConfigPath,
		"../../" + DefaultConfigPath,    // from internal/config/
		"../../../" + DefaultConfigPath, // from cmd/tools/<tool>/
	}
	for _, path := range candidates {
		if cfg, err := LoadViewConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks the values that are set.
func (c *ViewConfig) Validate() error {
	if c.AxisScale != nil && *c.AxisScale <= 0 {
		return fmt.Errorf("axis_scale must be positive, got %f", *c.AxisScale)
	}
	if c.TargetMarkerSize != nil && *c.TargetMarkerSize <= 0 {
		return fmt.Errorf("target_marker_size must be positive, got %d", *c.TargetMarkerSize)
	}
	if c.PixelMarkerSize != nil && *c.PixelMarkerSize <= 0 {
		return fmt.Errorf("pixel_marker_size must be positive, got %d", *c.PixelMarkerSize)
	}
	if c.ColorScale != nil && *c.ColorScale == "" {
		return fmt.Errorf("color_scale must not be empty")
	}
	if c.TickStepSeconds != nil && *c.TickStepSeconds <= 0 {
		return fmt.Errorf("tick_step_seconds must be positive, got %d", *c.TickStepSeconds)
	}
	if c.PoseStep != nil && *c.PoseStep == "" {
		return fmt.Errorf("pose_step must not be empty")
	}
	return nil
}

// GetAxisScale returns the axis_scale value or the default.
func (c *ViewConfig) GetAxisScale() float64 {
	if c.AxisScale == nil {
		return defaultAxisScale
	}
	return *c.AxisScale
}

// GetPoseStep returns the pose_step value or the default.
func (c *ViewConfig) GetPoseStep() string {
	if c.PoseStep == nil || *c.PoseStep == "" {
		return defaultPoseStep
	}
	return *c.PoseStep
}

// GetTargetMarkerSize returns the target_marker_size value or the default.
func (c *ViewConfig) GetTargetMarkerSize() int {
	if c.TargetMarkerSize == nil {
		return defaultTargetMarkerSize
	}
	return *c.TargetMarkerSize
}

// GetPixelMarkerSize returns the pixel_marker_size value or the default.
func (c *ViewConfig) GetPixelMarkerSize() int {
	if c.PixelMarkerSize == nil {
		return defaultPixelMarkerSize
	}
	return *c.PixelMarkerSize
}

// GetColorScale returns the color_scale value or the default.
func (c *ViewConfig) GetColorScale() string {
	if c.ColorScale == nil || *c.ColorScale == "" {
		return defaultColorScale
	}
	return *c.ColorScale
}

// GetMaxReprojectionError returns the colour-scale ceiling or the default.
// It returns false when the field is set to a non-positive value, in which
// case the caller derives the ceiling from the data.
func (c *ViewConfig) GetMaxReprojectionError() (float64, bool) {
	if c.MaxReprojectionError == nil {
		return defaultMaxReprojError, true
	}
	if *c.MaxReprojectionError <= 0 {
		return 0, false
	}
	return *c.MaxReprojectionError, true
}

// GetTickStepSeconds returns the tick_step_seconds value or the default.
func (c *ViewConfig) GetTickStepSeconds() int {
	if c.TickStepSeconds == nil {
		return defaultTickStepSeconds
	}
	return *c.TickStepSeconds
}
