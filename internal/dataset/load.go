package dataset

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/reprojection.view/internal/monitoring"
	"github.com/banshee-data/reprojection.view/internal/patch"
	"github.com/banshee-data/reprojection.view/internal/pose"
	"github.com/banshee-data/reprojection.view/internal/sensor"
)

// ErrInconsistentData reports a record whose parent record is missing, such
// as a target without an image or a pose for an unknown sensor.
var ErrInconsistentData = errors.New("inconsistent calibration data")

// Load opens the database at path, reads it completely and closes it.
func Load(ctx context.Context, path string) (*Snapshot, error) {
	db, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	return db.Snapshot(ctx)
}

// Snapshot reads every table into memory. Missing tables are treated as
// empty. Records are attached in dependency order: images, extracted
// targets, poses, reprojection errors, then IMU data.
func (db *DB) Snapshot(ctx context.Context) (*Snapshot, error) {
	s := &Snapshot{
		Metadata: sensor.Metadata{},
		Cameras:  sensor.Store[Frame]{},
		Imus:     sensor.Store[Frame]{},
	}

	steps := []struct {
		table string
		load  func(context.Context, *Snapshot) error
	}{
		{"images", db.loadImages},
		{"extracted_targets", db.loadTargets},
		{"poses", db.loadPoses},
		{"reprojection_errors", db.loadReprojectionErrors},
		{"imu_data", db.loadImu},
		{"dataset_info", db.loadInfo},
	}
	for _, step := range steps {
		ok, err := db.hasTable(ctx, step.table)
		if err != nil {
			return nil, err
		}
		if !ok {
			monitoring.Logf("dataset: table %s not present, skipping", step.table)
			continue
		}
		if err := step.load(ctx, s); err != nil {
			return nil, err
		}
	}

	if err := setMetadata(s.Metadata, sensor.Camera, s.Cameras); err != nil {
		return nil, err
	}
	if err := setMetadata(s.Metadata, sensor.Imu, s.Imus); err != nil {
		return nil, err
	}
	s.Statistics = computeStatistics(s.Cameras, s.Imus)
	return s, nil
}

func setMetadata(md sensor.Metadata, t sensor.Type, store sensor.Store[Frame]) error {
	for name, sf := range store {
		ts := make([]sensor.Timestamp, 0, len(sf.Frames))
		for k := range sf.Frames {
			ts = append(ts, k)
		}
		slices.Sort(ts)
		if err := md.Set(t, name, ts); err != nil {
			return err
		}
	}
	return nil
}

func (db *DB) loadImages(ctx context.Context, s *Snapshot) error {
	rows, err := db.QueryContext(ctx,
		`SELECT timestamp_ns, sensor_name, data FROM images ORDER BY sensor_name, timestamp_ns`)
	if err != nil {
		return fmt.Errorf("failed to query images: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			ts   int64
			name string
			data []byte
		)
		if err := rows.Scan(&ts, &name, &data); err != nil {
			return fmt.Errorf("failed to scan image row: %w", err)
		}
		if data == nil {
			data = []byte{}
		}
		s.Cameras.Put(name, sensor.Timestamp(ts), Frame{Image: data})
	}
	return rows.Err()
}

func (db *DB) loadTargets(ctx context.Context, s *Snapshot) error {
	rows, err := db.QueryContext(ctx,
		`SELECT timestamp_ns, sensor_name, data FROM extracted_targets ORDER BY sensor_name, timestamp_ns`)
	if err != nil {
		return fmt.Errorf("failed to query extracted targets: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			ts   int64
			name string
			blob []byte
		)
		if err := rows.Scan(&ts, &name, &blob); err != nil {
			return fmt.Errorf("failed to scan extracted target row: %w", err)
		}
		t := sensor.Timestamp(ts)

		sf := s.Cameras[name]
		if sf == nil {
			return fmt.Errorf("extracted target for %s: sensor does not exist: %w", name, ErrInconsistentData)
		}
		f, ok := sf.Frames[t]
		if !ok || f.Image == nil {
			return fmt.Errorf("extracted target for %s at %s: no corresponding image: %w", name, t, ErrInconsistentData)
		}

		target, err := DecodeExtractedTarget(blob)
		if err != nil {
			monitoring.Logf("dataset: skipping extracted target %s at %s: %v", name, t, err)
			continue
		}
		f.Target = &target
		sf.Frames[t] = f
	}
	return rows.Err()
}

func (db *DB) loadPoses(ctx context.Context, s *Snapshot) error {
	rows, err := db.QueryContext(ctx,
		`SELECT timestamp_ns, sensor_name, step_name, rx, ry, rz, x, y, z
		 FROM poses ORDER BY sensor_name, step_name, timestamp_ns`)
	if err != nil {
		return fmt.Errorf("failed to query poses: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			ts         int64
			name, step string
			p          pose.Se3
		)
		if err := rows.Scan(&ts, &name, &step, &p[0], &p[1], &p[2], &p[3], &p[4], &p[5]); err != nil {
			return fmt.Errorf("failed to scan pose row: %w", err)
		}
		t := sensor.Timestamp(ts)

		// Interpolated poses need not coincide with an image, so only the
		// sensor itself must exist.
		sf := s.Cameras[name]
		if sf == nil {
			return fmt.Errorf("%s pose for %s: sensor does not exist: %w", step, name, ErrInconsistentData)
		}
		f := sf.Frames[t]
		if f.Poses == nil {
			f.Poses = make(map[string]pose.Se3)
		}
		f.Poses[step] = p.Invert()
		sf.Frames[t] = f
	}
	return rows.Err()
}

func (db *DB) loadReprojectionErrors(ctx context.Context, s *Snapshot) error {
	rows, err := db.QueryContext(ctx,
		`SELECT timestamp_ns, sensor_name, step_name, data
		 FROM reprojection_errors ORDER BY sensor_name, step_name, timestamp_ns`)
	if err != nil {
		return fmt.Errorf("failed to query reprojection errors: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			ts         int64
			name, step string
			blob       []byte
		)
		if err := rows.Scan(&ts, &name, &step, &blob); err != nil {
			return fmt.Errorf("failed to scan reprojection error row: %w", err)
		}
		t := sensor.Timestamp(ts)

		sf := s.Cameras[name]
		if sf == nil {
			return fmt.Errorf("%s reprojection error for %s: sensor does not exist: %w", step, name, ErrInconsistentData)
		}
		f, ok := sf.Frames[t]
		if _, hasPose := f.Poses[step]; !ok || f.Image == nil || !hasPose {
			return fmt.Errorf("%s reprojection error for %s at %s: no corresponding image and pose: %w",
				step, name, t, ErrInconsistentData)
		}

		errs, err := DecodeArrayX2(blob)
		if err != nil {
			monitoring.Logf("dataset: skipping %s reprojection error %s at %s: %v", step, name, t, err)
			continue
		}
		if f.ReprojectionErrors == nil {
			f.ReprojectionErrors = make(map[string][]patch.Vec2)
		}
		f.ReprojectionErrors[step] = errs
		sf.Frames[t] = f
	}
	return rows.Err()
}

func (db *DB) loadImu(ctx context.Context, s *Snapshot) error {
	rows, err := db.QueryContext(ctx,
		`SELECT timestamp_ns, sensor_name, omega_x, omega_y, omega_z, ax, ay, az
		 FROM imu_data ORDER BY sensor_name, timestamp_ns`)
	if err != nil {
		return fmt.Errorf("failed to query imu data: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			ts   int64
			name string
			w, a r3.Vec
		)
		if err := rows.Scan(&ts, &name, &w.X, &w.Y, &w.Z, &a.X, &a.Y, &a.Z); err != nil {
			return fmt.Errorf("failed to scan imu row: %w", err)
		}
		s.Imus.Put(name, sensor.Timestamp(ts), Frame{Imu: &ImuSample{AngularVelocity: w, LinearAcceleration: a}})
	}
	return rows.Err()
}

func (db *DB) loadInfo(ctx context.Context, s *Snapshot) error {
	var (
		id      string
		created int64
	)
	err := db.QueryRowContext(ctx,
		`SELECT dataset_id, description, created_unix_nanos FROM dataset_info LIMIT 1`,
	).Scan(&id, &s.Description, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read dataset info: %w", err)
	}

	parsed, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid dataset id %q: %w", id, err)
	}
	s.ID = parsed
	s.CreatedAt = time.Unix(0, created).UTC()
	return nil
}
