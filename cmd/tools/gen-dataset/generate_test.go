package main

import (
	"context"
	"math"
	"path/filepath"
	"testing"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/reprojection.view/internal/dataset"
	"github.com/banshee-data/reprojection.view/internal/monitoring"
	"github.com/banshee-data/reprojection.view/internal/pose"
	"github.com/banshee-data/reprojection.view/internal/sensor"
	"github.com/banshee-data/reprojection.view/internal/testutil"
	"github.com/banshee-data/reprojection.view/internal/timeutil"
)

func TestLookAt(t *testing.T) {
	positions := []r3.Vec{
		{X: 1},
		{X: 0.3, Y: -0.4, Z: 0.5},
		{Z: 1}, // looking straight down the up vector
	}
	for _, pos := range positions {
		rot := lookAt(pos)
		testutil.AssertVecNear(t, rot.Col(2), r3.Unit(r3.Scale(-1, pos)), 1e-12)

		// Orthonormal and right-handed.
		prod := rot.Transpose().Mul(rot)
		testutil.AssertMatrixNear(t, prod, pose.Identity(), 1e-12)
		testutil.AssertVecNear(t, r3.Cross(rot.Col(0), rot.Col(1)), rot.Col(2), 1e-12)
	}
}

func TestOrbitPose_LooksAtTarget(t *testing.T) {
	for i := 1; i < 50; i += 7 {
		p := orbitPose(i, 50, 2)
		if got := r3.Norm(p.Translation()); math.Abs(got-2) > 1e-12 {
			t.Errorf("frame %d: radius %f, want 2", i, got)
		}
		// The origin lies on the optical axis.
		c := p.Invert().Apply(r3.Vec{})
		testutil.AssertVecNear(t, c, r3.Vec{Z: 2}, 1e-9)
	}
}

func TestProject_CentrePixel(t *testing.T) {
	camFromWorld := orbitPose(3, 20, 1).Invert()
	target, ok := project([]r3.Vec{{}}, [][2]int32{{0, 0}}, camFromWorld)
	if !ok {
		t.Fatal("target should be in front of the camera")
	}
	if !testutil.Near(target.Pixels[0][0], centerU, 1e-9) || !testutil.Near(target.Pixels[0][1], centerV, 1e-9) {
		t.Errorf("origin projects to %v, want principal point", target.Pixels[0])
	}
}

func TestGenerate(t *testing.T) {
	original := monitoring.Logf
	defer func() { monitoring.Logf = original }()
	monitoring.SetLogger(nil)

	path := filepath.Join(t.TempDir(), "synthetic.db")
	db, err := dataset.Create(path)
	testutil.AssertNoError(t, err)

	opts := DefaultOptions()
	opts.Frames = 12
	opts.MaxError = 2
	created := time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)
	opts.Clock = timeutil.NewMockClock(created)
	sum, err := Generate(context.Background(), db, opts)
	testutil.AssertNoError(t, err)
	testutil.AssertNoError(t, db.Close())

	if sum.Images != 12 || sum.Targets != 12 || sum.ImuSamples != 24 {
		t.Errorf("summary = %+v", sum)
	}

	snap, err := dataset.Load(context.Background(), path)
	testutil.AssertNoError(t, err)
	if snap.ID != sum.Info.ID {
		t.Errorf("dataset id = %s, want %s", snap.ID, sum.Info.ID)
	}
	if !snap.CreatedAt.Equal(created) {
		t.Errorf("created at %v, want %v", snap.CreatedAt, created)
	}

	ts, err := snap.Metadata.Timestamps(sensor.Camera, "cam0")
	testutil.AssertNoError(t, err)
	if len(ts) != 12 || ts[0] != opts.Start || ts[11]-ts[10] != sensor.Timestamp(100*time.Millisecond) {
		t.Errorf("unexpected camera timestamps %v", ts)
	}

	cs := snap.Statistics.Cameras["cam0"]
	if cs.FramesWithPose[dataset.StepOptimized] != 12 {
		t.Errorf("optimized poses = %d, want 12", cs.FramesWithPose[dataset.StepOptimized])
	}
	if m := cs.MaxReprojectionError[dataset.StepInitial]; m <= 0 || m > 2 {
		t.Errorf("initial max error %f outside (0, 2]", m)
	}
	if m := cs.MaxReprojectionError[dataset.StepOptimized]; m > 0.2 {
		t.Errorf("optimized max error %f above 0.2", m)
	}

	// Loaded poses are world-from-camera: the translation is the orbit position.
	f := snap.Cameras["cam0"].Frames[ts[5]]
	p, ok := f.Pose(dataset.StepInitial)
	if !ok {
		t.Fatal("missing initial pose")
	}
	testutil.AssertVecNear(t, p.Translation(), orbitPose(5, 12, 1).Translation(), 1e-9)
}

func TestGenerate_RejectsNoFrames(t *testing.T) {
	opts := DefaultOptions()
	opts.Frames = 0
	testutil.AssertError(t, func() error { _, err := Generate(context.Background(), nil, opts); return err }())
}
