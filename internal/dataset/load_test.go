package dataset

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/reprojection.view/internal/monitoring"
	"github.com/banshee-data/reprojection.view/internal/patch"
	"github.com/banshee-data/reprojection.view/internal/pose"
	"github.com/banshee-data/reprojection.view/internal/sensor"
	"github.com/banshee-data/reprojection.view/internal/testutil"
)

const (
	ts1 sensor.Timestamp = 1_000_000_000
	ts2 sensor.Timestamp = 2_000_000_000
	ts3 sensor.Timestamp = 3_000_000_000
	// An interpolated pose between images.
	tsPoseOnly sensor.Timestamp = 2_500_000_000
	// Beyond float64's exact integer range.
	tsImu0 sensor.Timestamp = 9_007_199_254_740_993
	tsImu1 sensor.Timestamp = 9_007_199_254_740_995
)

var (
	fixtureTarget = ExtractedTarget{
		Pixels:  []patch.Vec2{{320, 240}, {330, 241}},
		Points:  []r3.Vec{{X: 0, Y: 0, Z: 0}, {X: 0.1, Y: 0, Z: 0}},
		Indices: [][2]int32{{0, 0}, {0, 1}},
	}
	fixturePoseCoW = pose.Se3{0.1, 0.2, -0.3, 1, 2, 3}
	fixtureErrors  = []patch.Vec2{{0.3, 0.4}, {0, 0.1}}
)

func muteLogs(t *testing.T) *monitoring.Recorder {
	t.Helper()
	original := monitoring.Logf
	t.Cleanup(func() { monitoring.Logf = original })
	rec := &monitoring.Recorder{}
	monitoring.SetLogger(rec.Logf)
	return rec
}

func createDB(t *testing.T) (*DB, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "calibration.db")
	db, err := Create(path)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, path
}

func writeFixture(t *testing.T, db *DB) Info {
	t.Helper()
	ctx := context.Background()

	info := NewInfo("fixture", time.Unix(1_700_000_000, 0))
	require.NoError(t, db.SetInfo(ctx, info))

	// Inserted out of order; Load must sort.
	for i, ts := range []sensor.Timestamp{ts3, ts1, ts2} {
		require.NoError(t, db.AddImage(ctx, "cam0", ts, []byte{byte(i + 1)}))
	}
	require.NoError(t, db.AddExtractedTarget(ctx, "cam0", ts1, fixtureTarget))
	require.NoError(t, db.AddPose(ctx, "cam0", StepInitial, ts1, fixturePoseCoW))
	require.NoError(t, db.AddPose(ctx, "cam0", StepOptimized, ts1, fixturePoseCoW))
	require.NoError(t, db.AddPose(ctx, "cam0", StepInitial, tsPoseOnly, fixturePoseCoW))
	require.NoError(t, db.AddReprojectionError(ctx, "cam0", StepInitial, ts1, fixtureErrors))

	for _, ts := range []sensor.Timestamp{tsImu1, tsImu0} {
		require.NoError(t, db.AddImu(ctx, "imu0", ts, ImuSample{
			AngularVelocity:    r3.Vec{X: 0.01, Y: 0.02, Z: 0.03},
			LinearAcceleration: r3.Vec{X: 0, Y: 0, Z: 9.81},
		}))
	}
	return info
}

func TestCreate_MigratesToLatest(t *testing.T) {
	muteLogs(t)
	db, path := createDB(t)

	version, dirty, err := db.MigrateVersion()
	require.NoError(t, err)
	assert.Equal(t, uint(3), version)
	assert.False(t, dirty)

	// Reopening an up-to-date database is a no-op.
	again, err := Create(path)
	require.NoError(t, err)
	require.NoError(t, again.Close())
}

func TestCreate_Pragmas(t *testing.T) {
	muteLogs(t)
	db, _ := createDB(t)

	var journalMode string
	require.NoError(t, db.QueryRow("PRAGMA journal_mode").Scan(&journalMode))
	assert.Equal(t, "wal", strings.ToLower(journalMode))

	var foreignKeys int
	require.NoError(t, db.QueryRow("PRAGMA foreign_keys").Scan(&foreignKeys))
	assert.Equal(t, 1, foreignKeys)

	var busyTimeout int
	require.NoError(t, db.QueryRow("PRAGMA busy_timeout").Scan(&busyTimeout))
	assert.Equal(t, 5000, busyTimeout)
}

func TestLoad_LeavesJournalModeUnchanged(t *testing.T) {
	muteLogs(t)
	path := filepath.Join(t.TempDir(), "plain.db")

	raw, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = raw.Exec(`CREATE TABLE images (timestamp_ns INTEGER NOT NULL, sensor_name TEXT NOT NULL, data BLOB NOT NULL)`)
	require.NoError(t, err)
	_, err = raw.Exec(`INSERT INTO images VALUES (?, ?, ?)`, int64(ts1), "cam0", []byte{9})
	require.NoError(t, err)
	require.NoError(t, raw.Close())

	snap, err := Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 1, snap.Cameras.Len("cam0"))

	raw, err = sql.Open("sqlite", path)
	require.NoError(t, err)
	defer raw.Close()
	var journalMode string
	require.NoError(t, raw.QueryRow("PRAGMA journal_mode").Scan(&journalMode))
	assert.Equal(t, "delete", strings.ToLower(journalMode))

	_, err = os.Stat(path + "-wal")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestOpen_ReadOnly(t *testing.T) {
	muteLogs(t)
	db, path := createDB(t)
	writeFixture(t, db)
	require.NoError(t, db.Close())

	ro, err := Open(path)
	require.NoError(t, err)
	defer ro.Close()

	var n int
	require.NoError(t, ro.QueryRow(`SELECT COUNT(*) FROM images`).Scan(&n))
	assert.Equal(t, 3, n)

	err = ro.AddImage(context.Background(), "cam0", ts3+1, []byte{1})
	assert.Error(t, err)
}

func TestLoad_RoundTrip(t *testing.T) {
	muteLogs(t)
	db, path := createDB(t)
	info := writeFixture(t, db)
	require.NoError(t, db.Close())

	snap, err := Load(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, info.ID, snap.ID)
	assert.Equal(t, "fixture", snap.Description)
	assert.True(t, snap.CreatedAt.Equal(info.CreatedAt))

	camTs, err := snap.Metadata.Timestamps(sensor.Camera, "cam0")
	require.NoError(t, err)
	assert.Equal(t, []sensor.Timestamp{ts1, ts2, tsPoseOnly, ts3}, camTs)

	imuTs, err := snap.Metadata.Timestamps(sensor.Imu, "imu0")
	require.NoError(t, err)
	assert.Equal(t, []sensor.Timestamp{tsImu0, tsImu1}, imuTs)

	f := snap.Cameras["cam0"].Frames[ts1]
	assert.Equal(t, []byte{2}, f.Image)
	require.NotNil(t, f.Target)
	assert.Equal(t, fixtureTarget, *f.Target)
	assert.Equal(t, fixtureErrors, f.ReprojectionErrors[StepInitial])

	// Stored camera-from-world, loaded world-from-camera.
	p, ok := f.Pose(StepInitial)
	require.True(t, ok)
	back := p.Invert()
	for i := range back {
		assert.InDelta(t, fixturePoseCoW[i], back[i], 1e-9)
	}
	testutil.AssertVecNear(t, p.Translation(), fixturePoseCoW.Invert().Translation(), 1e-12)

	interp := snap.Cameras["cam0"].Frames[tsPoseOnly]
	assert.Nil(t, interp.Image)
	_, ok = interp.Pose(StepInitial)
	assert.True(t, ok)

	sample := snap.Imus["imu0"].Frames[tsImu0].Imu
	require.NotNil(t, sample)
	assert.Equal(t, 9.81, sample.LinearAcceleration.Z)
}

func TestLoad_Statistics(t *testing.T) {
	muteLogs(t)
	db, path := createDB(t)
	writeFixture(t, db)
	require.NoError(t, db.Close())

	snap, err := Load(context.Background(), path)
	require.NoError(t, err)

	cs := snap.Statistics.Cameras["cam0"]
	assert.Equal(t, 4, cs.TotalFrames)
	assert.Equal(t, 3, cs.FramesWithImage)
	assert.Equal(t, 1, cs.FramesWithTarget)
	assert.Equal(t, 2, cs.FramesWithPose[StepInitial])
	assert.Equal(t, 1, cs.FramesWithPose[StepOptimized])
	assert.Equal(t, 1, cs.FramesWithReprojectionError[StepInitial])
	assert.InDelta(t, 0.5, cs.MaxReprojectionError[StepInitial], 1e-12)

	is := snap.Statistics.Imus["imu0"]
	assert.Equal(t, 2, is.TotalFrames)
	assert.Equal(t, 2, is.FramesWithMeasurement)
}

func TestLoad_ResolvesThroughFrameResolver(t *testing.T) {
	muteLogs(t)
	db, path := createDB(t)
	writeFixture(t, db)
	require.NoError(t, db.Close())

	snap, err := Load(context.Background(), path)
	require.NoError(t, err)

	r := sensor.NewResolver(snap.Metadata)
	idx := 0
	f, ts, err := sensor.FrameAt(r, snap.Store(sensor.Camera), sensor.Camera, "cam0", &idx)
	require.NoError(t, err)
	assert.Equal(t, ts1, ts)
	assert.NotNil(t, f.Target)

	idx = 1
	f, ts, err = sensor.FrameAt(r, snap.Store(sensor.Imu), sensor.Imu, "imu0", &idx)
	require.NoError(t, err)
	assert.Equal(t, tsImu1, ts)
	assert.NotNil(t, f.Imu)

	assert.Nil(t, snap.Store("lidar"))
}

func TestLoad_Inconsistent(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name  string
		write func(t *testing.T, db *DB)
	}{
		{"pose for unknown sensor", func(t *testing.T, db *DB) {
			require.NoError(t, db.AddPose(ctx, "ghost", StepInitial, ts1, fixturePoseCoW))
		}},
		{"target without image", func(t *testing.T, db *DB) {
			require.NoError(t, db.AddImage(ctx, "cam0", ts1, []byte{1}))
			_, err := db.Exec("PRAGMA foreign_keys=OFF")
			require.NoError(t, err)
			require.NoError(t, db.AddExtractedTarget(ctx, "cam0", ts2, fixtureTarget))
		}},
		{"reprojection error without pose", func(t *testing.T, db *DB) {
			require.NoError(t, db.AddImage(ctx, "cam0", ts1, []byte{1}))
			_, err := db.Exec("PRAGMA foreign_keys=OFF")
			require.NoError(t, err)
			require.NoError(t, db.AddReprojectionError(ctx, "cam0", StepInitial, ts1, fixtureErrors))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			muteLogs(t)
			db, path := createDB(t)
			tt.write(t, db)
			require.NoError(t, db.Close())

			_, err := Load(ctx, path)
			assert.ErrorIs(t, err, ErrInconsistentData)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "absent.db"))
	assert.ErrorIs(t, err, ErrNoDatabase)
}

func TestLoad_TablesMissing(t *testing.T) {
	rec := muteLogs(t)
	path := filepath.Join(t.TempDir(), "legacy.db")

	raw, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = raw.Exec(`CREATE TABLE images (timestamp_ns INTEGER NOT NULL, sensor_name TEXT NOT NULL, data BLOB NOT NULL)`)
	require.NoError(t, err)
	_, err = raw.Exec(`INSERT INTO images VALUES (?, ?, ?)`, int64(ts1), "cam0", []byte{9})
	require.NoError(t, err)
	require.NoError(t, raw.Close())

	snap, err := Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, uuid.Nil, snap.ID)
	assert.Equal(t, 1, snap.Cameras.Len("cam0"))
	assert.Empty(t, snap.Imus)

	joined := strings.Join(rec.Lines(), "\n")
	assert.Contains(t, joined, "table poses not present")
}

func TestLoad_MalformedBlobSkipped(t *testing.T) {
	rec := muteLogs(t)
	db, path := createDB(t)
	ctx := context.Background()

	require.NoError(t, db.AddImage(ctx, "cam0", ts1, []byte{1}))
	_, err := db.Exec(`INSERT INTO extracted_targets (timestamp_ns, sensor_name, data) VALUES (?, ?, ?)`,
		int64(ts1), "cam0", []byte{0xff})
	require.NoError(t, err)
	require.NoError(t, db.Close())

	snap, err := Load(ctx, path)
	require.NoError(t, err)
	assert.Nil(t, snap.Cameras["cam0"].Frames[ts1].Target)
	assert.Contains(t, strings.Join(rec.Lines(), "\n"), "skipping extracted target cam0")
}
