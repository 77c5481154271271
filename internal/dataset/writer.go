package dataset

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/reprojection.view/internal/patch"
	"github.com/banshee-data/reprojection.view/internal/pose"
	"github.com/banshee-data/reprojection.view/internal/sensor"
)

// Info identifies a dataset.
type Info struct {
	ID          uuid.UUID
	Description string
	CreatedAt   time.Time
}

// NewInfo returns an Info with a fresh random ID.
func NewInfo(description string, createdAt time.Time) Info {
	return Info{ID: uuid.New(), Description: description, CreatedAt: createdAt}
}

// SetInfo records the dataset identity, replacing any previous row.
func (db *DB) SetInfo(ctx context.Context, info Info) error {
	if _, err := db.ExecContext(ctx, `DELETE FROM dataset_info`); err != nil {
		return fmt.Errorf("failed to clear dataset info: %w", err)
	}
	_, err := db.ExecContext(ctx,
		`INSERT INTO dataset_info (dataset_id, description, created_unix_nanos) VALUES (?, ?, ?)`,
		info.ID.String(), info.Description, info.CreatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert dataset info: %w", err)
	}
	return nil
}

// AddImage stores an encoded image. Every other camera record references an
// image, so images are written first.
func (db *DB) AddImage(ctx context.Context, sensorName string, ts sensor.Timestamp, data []byte) error {
	if data == nil {
		data = []byte{}
	}
	_, err := db.ExecContext(ctx,
		`INSERT INTO images (timestamp_ns, sensor_name, data) VALUES (?, ?, ?)`,
		int64(ts), sensorName, data,
	)
	if err != nil {
		return fmt.Errorf("failed to insert image %s at %s: %w", sensorName, ts, err)
	}
	return nil
}

// AddExtractedTarget stores the target detected in the image at ts.
func (db *DB) AddExtractedTarget(ctx context.Context, sensorName string, ts sensor.Timestamp, target ExtractedTarget) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO extracted_targets (timestamp_ns, sensor_name, data) VALUES (?, ?, ?)`,
		int64(ts), sensorName, EncodeExtractedTarget(target),
	)
	if err != nil {
		return fmt.Errorf("failed to insert extracted target %s at %s: %w", sensorName, ts, err)
	}
	return nil
}

// AddPose stores a camera-from-world pose (tf_co_w) for a calibration step.
func (db *DB) AddPose(ctx context.Context, sensorName, step string, ts sensor.Timestamp, poseCoW pose.Se3) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO poses (timestamp_ns, sensor_name, step_name, rx, ry, rz, x, y, z)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		int64(ts), sensorName, step,
		poseCoW[0], poseCoW[1], poseCoW[2], poseCoW[3], poseCoW[4], poseCoW[5],
	)
	if err != nil {
		return fmt.Errorf("failed to insert %s pose %s at %s: %w", step, sensorName, ts, err)
	}
	return nil
}

// AddReprojectionError stores per-corner reprojection errors for a step. The
// matching pose must already exist.
func (db *DB) AddReprojectionError(ctx context.Context, sensorName, step string, ts sensor.Timestamp, errs []patch.Vec2) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO reprojection_errors (timestamp_ns, sensor_name, step_name, data) VALUES (?, ?, ?, ?)`,
		int64(ts), sensorName, step, EncodeArrayX2(errs),
	)
	if err != nil {
		return fmt.Errorf("failed to insert %s reprojection error %s at %s: %w", step, sensorName, ts, err)
	}
	return nil
}

// AddImu stores one IMU measurement.
func (db *DB) AddImu(ctx context.Context, sensorName string, ts sensor.Timestamp, s ImuSample) error {
	w, a := s.AngularVelocity, s.LinearAcceleration
	_, err := db.ExecContext(ctx,
		`INSERT INTO imu_data (timestamp_ns, sensor_name, omega_x, omega_y, omega_z, ax, ay, az)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		int64(ts), sensorName, w.X, w.Y, w.Z, a.X, a.Y, a.Z,
	)
	if err != nil {
		return fmt.Errorf("failed to insert imu sample %s at %s: %w", sensorName, ts, err)
	}
	return nil
}
