package dataset

import (
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/reprojection.view/internal/patch"
	"github.com/banshee-data/reprojection.view/internal/pose"
	"github.com/banshee-data/reprojection.view/internal/sensor"
)

// Calibration step names used by the optimizer.
const (
	StepInitial   = "initial"
	StepOptimized = "optimized"
)

// ExtractedTarget is a calibration target detected in one image. Row i of
// Pixels corresponds to row i of Points; Indices holds the grid position of
// each detected corner.
type ExtractedTarget struct {
	Pixels  []patch.Vec2
	Points  []r3.Vec
	Indices [][2]int32
}

// ImuSample is one inertial measurement.
type ImuSample struct {
	AngularVelocity    r3.Vec
	LinearAcceleration r3.Vec
}

// Frame is everything recorded for one sensor at one timestamp. Absent parts
// are nil. Poses are world-from-camera (tf_w_co), inverted from the stored
// camera-from-world convention at load time.
type Frame struct {
	Image              []byte
	Target             *ExtractedTarget
	Poses              map[string]pose.Se3
	ReprojectionErrors map[string][]patch.Vec2
	Imu                *ImuSample
}

// Pose returns the pose of the named step.
func (f Frame) Pose(step string) (pose.Se3, bool) {
	p, ok := f.Poses[step]
	return p, ok
}

// CameraStatistics counts the populated parts of one camera's frames.
type CameraStatistics struct {
	TotalFrames                 int                `json:"total_frames"`
	FramesWithImage             int                `json:"frames_with_image"`
	FramesWithTarget            int                `json:"frames_with_extracted_target"`
	FramesWithPose              map[string]int     `json:"frames_with_pose"`
	FramesWithReprojectionError map[string]int     `json:"frames_with_reprojection_error"`
	MaxReprojectionError        map[string]float64 `json:"max_reprojection_error"`
}

// ImuStatistics counts one IMU's measurements.
type ImuStatistics struct {
	TotalFrames           int `json:"total_frames"`
	FramesWithMeasurement int `json:"frames_with_imu_measurement"`
}

// Statistics summarises a loaded dataset per sensor.
type Statistics struct {
	Cameras map[string]CameraStatistics `json:"cameras"`
	Imus    map[string]ImuStatistics    `json:"imus"`
}

// Snapshot is a fully loaded calibration database.
type Snapshot struct {
	ID          uuid.UUID
	Description string
	CreatedAt   time.Time
	Statistics  Statistics
	Metadata    sensor.Metadata
	Cameras     sensor.Store[Frame]
	Imus        sensor.Store[Frame]
}

// Store returns the frame store holding sensors of the given type, or nil.
func (s *Snapshot) Store(t sensor.Type) sensor.Store[Frame] {
	switch t {
	case sensor.Camera:
		return s.Cameras
	case sensor.Imu:
		return s.Imus
	}
	return nil
}
