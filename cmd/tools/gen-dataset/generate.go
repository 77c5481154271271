package main

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"math/rand/v2"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/reprojection.view/internal/dataset"
	"github.com/banshee-data/reprojection.view/internal/patch"
	"github.com/banshee-data/reprojection.view/internal/pose"
	"github.com/banshee-data/reprojection.view/internal/sensor"
	"github.com/banshee-data/reprojection.view/internal/timeutil"
)

// Pinhole intrinsics of the synthetic camera.
const (
	focal   = 600.0
	centerU = 320.0
	centerV = 240.0
)

// Options controls the synthetic dataset.
type Options struct {
	Frames      int
	Camera      string
	Imu         string
	Start       sensor.Timestamp
	Period      time.Duration
	Radius      float64
	MaxError    float64 // pixel magnitude ceiling of the initial step errors
	Seed        uint64
	Description string
	Clock       timeutil.Clock // stamps the dataset creation time
}

// DefaultOptions returns a 100 frame orbit sampled at 10Hz starting beyond
// float64's exact integer range.
func DefaultOptions() Options {
	return Options{
		Frames:      100,
		Camera:      "cam0",
		Imu:         "imu0",
		Start:       1_700_000_000_000_000_000,
		Period:      100 * time.Millisecond,
		Radius:      1.0,
		MaxError:    1.0,
		Seed:        1,
		Description: "synthetic orbit",
		Clock:       timeutil.RealClock{},
	}
}

// Summary reports what Generate wrote.
type Summary struct {
	Info       dataset.Info
	Images     int
	Targets    int
	ImuSamples int
}

// Generate writes a camera orbiting a planar target at the origin. The
// camera follows a spiral over the unit sphere and always looks at the
// target. Frames whose target falls behind the camera get no extracted
// target, pose or errors.
func Generate(ctx context.Context, db *dataset.DB, opts Options) (Summary, error) {
	if opts.Frames <= 0 {
		return Summary{}, fmt.Errorf("frames must be positive, got %d", opts.Frames)
	}

	clock := opts.Clock
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	sum := Summary{Info: dataset.NewInfo(opts.Description, clock.Now())}
	if err := db.SetInfo(ctx, sum.Info); err != nil {
		return Summary{}, err
	}

	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15))
	points, indices := targetGrid(5, 4, 0.05)

	for i := 0; i < opts.Frames; i++ {
		ts := opts.Start + sensor.Timestamp(int64(i)*opts.Period.Nanoseconds())
		worldFromCam := orbitPose(i, opts.Frames, opts.Radius)
		camFromWorld := worldFromCam.Invert()

		img, err := encodeImage(i)
		if err != nil {
			return Summary{}, err
		}
		if err := db.AddImage(ctx, opts.Camera, ts, img); err != nil {
			return Summary{}, err
		}
		sum.Images++

		if target, ok := project(points, indices, camFromWorld); ok {
			if err := db.AddExtractedTarget(ctx, opts.Camera, ts, target); err != nil {
				return Summary{}, err
			}
			sum.Targets++

			steps := []struct {
				name  string
				scale float64
			}{
				{dataset.StepInitial, opts.MaxError},
				{dataset.StepOptimized, opts.MaxError / 10},
			}
			for _, s := range steps {
				if err := db.AddPose(ctx, opts.Camera, s.name, ts, camFromWorld); err != nil {
					return Summary{}, err
				}
				errs := noise(rng, len(target.Pixels), s.scale)
				if err := db.AddReprojectionError(ctx, opts.Camera, s.name, ts, errs); err != nil {
					return Summary{}, err
				}
			}
		}

		if opts.Imu != "" {
			// The IMU runs at twice the camera rate.
			for k := int64(0); k < 2; k++ {
				its := ts + sensor.Timestamp(k*opts.Period.Nanoseconds()/2)
				if err := db.AddImu(ctx, opts.Imu, its, imuSample(i, opts)); err != nil {
					return Summary{}, err
				}
				sum.ImuSamples++
			}
		}
	}
	return sum, nil
}

// orbitPose places the camera on a spiral over the sphere of the given
// radius: ten half turns of polar angle while the azimuth advances one
// radian per hundred frames.
func orbitPose(i, n int, radius float64) pose.Se3 {
	theta := 10 * float64(i) * math.Pi / float64(2*n)
	phi := float64(i) / 100

	pos := r3.Vec{
		X: radius * math.Sin(theta) * math.Cos(phi),
		Y: radius * math.Sin(theta) * math.Sin(phi),
		Z: radius * math.Cos(theta),
	}
	return pose.NewSe3(lookAt(pos).AxisAngle(), pos)
}

// lookAt returns the world-from-camera rotation of a camera at pos whose
// optical z axis points at the origin.
func lookAt(pos r3.Vec) pose.RotationMatrix {
	z := r3.Unit(r3.Scale(-1, pos))
	up := r3.Vec{Z: 1}
	x := r3.Cross(up, z)
	if r3.Norm(x) < 1e-6 {
		x = r3.Cross(r3.Vec{Y: 1}, z)
	}
	x = r3.Unit(x)
	y := r3.Cross(z, x)

	return pose.RotationMatrix{
		{x.X, y.X, z.X},
		{x.Y, y.Y, z.Y},
		{x.Z, y.Z, z.Z},
	}
}

func targetGrid(rows, cols int, spacing float64) ([]r3.Vec, [][2]int32) {
	points := make([]r3.Vec, 0, rows*cols)
	indices := make([][2]int32, 0, rows*cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			points = append(points, r3.Vec{
				X: (float64(c) - float64(cols-1)/2) * spacing,
				Y: (float64(r) - float64(rows-1)/2) * spacing,
			})
			indices = append(indices, [2]int32{int32(r), int32(c)})
		}
	}
	return points, indices
}

func project(points []r3.Vec, indices [][2]int32, camFromWorld pose.Se3) (dataset.ExtractedTarget, bool) {
	t := dataset.ExtractedTarget{
		Pixels:  make([]patch.Vec2, len(points)),
		Points:  points,
		Indices: indices,
	}
	for i, p := range points {
		c := camFromWorld.Apply(p)
		if c.Z <= 1e-6 {
			return dataset.ExtractedTarget{}, false
		}
		t.Pixels[i] = patch.Vec2{focal*c.X/c.Z + centerU, focal*c.Y/c.Z + centerV}
	}
	return t, true
}

func noise(rng *rand.Rand, n int, scale float64) []patch.Vec2 {
	out := make([]patch.Vec2, n)
	for i := range out {
		// Magnitude stays within scale.
		mag := scale * rng.Float64()
		dir := 2 * math.Pi * rng.Float64()
		out[i] = patch.Vec2{mag * math.Cos(dir), mag * math.Sin(dir)}
	}
	return out
}

func imuSample(i int, opts Options) dataset.ImuSample {
	dt := opts.Period.Seconds()
	// Finite-difference azimuth and polar rates of the orbit.
	thetaRate := 10 * math.Pi / float64(2*opts.Frames) / dt
	phiRate := 0.01 / dt
	return dataset.ImuSample{
		AngularVelocity:    r3.Vec{X: thetaRate, Z: phiRate},
		LinearAcceleration: r3.Vec{X: -opts.Radius * thetaRate * thetaRate, Z: 9.81},
	}
}

// encodeImage renders a small grey frame whose brightness encodes the index.
func encodeImage(i int) ([]byte, error) {
	img := image.NewGray(image.Rect(0, 0, 8, 8))
	for p := range img.Pix {
		img.Pix[p] = uint8(i)
	}
	img.SetGray(0, 0, color.Gray{Y: 255})

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode frame %d: %w", i, err)
	}
	return buf.Bytes(), nil
}
