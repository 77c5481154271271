package frameview

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/reprojection.view/internal/config"
	"github.com/banshee-data/reprojection.view/internal/dataset"
	"github.com/banshee-data/reprojection.view/internal/monitoring"
	"github.com/banshee-data/reprojection.view/internal/patch"
	"github.com/banshee-data/reprojection.view/internal/pose"
	"github.com/banshee-data/reprojection.view/internal/sensor"
	"github.com/banshee-data/reprojection.view/internal/timeline"
)

// Panel names, appended to the sensor name to form a figure id.
const (
	PanelTargets = "targets"
	PanelPixels  = "pixels"
	PanelPose    = "pose"
	PanelCursor  = "cursor"
)

// FigureID names the figure a patch applies to, e.g. "cam0/pose".
func FigureID(sensorName, panel string) string {
	return sensorName + "/" + panel
}

// Request selects what to draw.
type Request struct {
	Camera   string
	Imu      string
	FrameIdx *int

	// Step overrides the configured pose step when non-empty.
	Step string
	// Axes limits the gizmo to the listed axes. Nil draws all three.
	Axes []pose.AxisID
}

// Patch is an op addressed to one figure.
type Patch struct {
	Figure string   `json:"figure"`
	Op     patch.Op `json:"patch"`
}

// Warning is a panel failure the user should see.
type Warning struct {
	Figure string
	Err    error
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %v", w.Figure, w.Err)
}

// Result collects the outcome of one update.
type Result struct {
	Patches  []Patch
	Skipped  []string
	Warnings []Warning
}

// Patch returns the patch for a figure.
func (r Result) Patch(figure string) (patch.Op, bool) {
	for _, p := range r.Patches {
		if p.Figure == figure {
			return p.Op, true
		}
	}
	return patch.Op{}, false
}

// View builds panel updates using one presentation config.
type View struct {
	cfg     *config.ViewConfig
	targets *patch.Builder
	pixels  *patch.Builder
}

// New returns a View. A nil cfg uses the built-in defaults.
func New(cfg *config.ViewConfig) *View {
	if cfg == nil {
		cfg = config.EmptyViewConfig()
	}
	return &View{
		cfg:     cfg,
		targets: patch.NewBuilder(cfg.GetTargetMarkerSize(), cfg.GetColorScale()),
		pixels:  patch.NewBuilder(cfg.GetPixelMarkerSize(), cfg.GetColorScale()),
	}
}

// Update resolves req against snap and returns the patches of every panel
// that could be drawn. The only error returned is a caller bug
// (pose.ErrInvalidAxisID); data problems are reported in the Result.
func (v *View) Update(snap *dataset.Snapshot, req Request) (Result, error) {
	for _, a := range req.Axes {
		if _, err := a.Index(); err != nil {
			return Result{}, fmt.Errorf("axes %v: %w", req.Axes, err)
		}
	}

	var res Result
	if snap == nil {
		// Resolves nothing: every requested panel is skipped.
		snap = &dataset.Snapshot{}
	}
	r := sensor.NewResolver(snap.Metadata)

	if req.Camera != "" {
		if err := v.updateCamera(&res, snap, r, req); err != nil {
			return Result{}, err
		}
	}
	if req.Imu != "" {
		v.updateImu(&res, snap, r, req)
	}
	return res, nil
}

func (v *View) step(req Request) string {
	if req.Step != "" {
		return req.Step
	}
	return v.cfg.GetPoseStep()
}

func (v *View) updateCamera(res *Result, snap *dataset.Snapshot, r *sensor.Resolver, req Request) error {
	name := req.Camera
	ts, all, err := r.Timestamp(sensor.Camera, name, req.FrameIdx)
	if err != nil {
		res.fail(err, FigureID(name, PanelTargets), FigureID(name, PanelPixels),
			FigureID(name, PanelPose), FigureID(name, PanelCursor))
		return nil
	}

	res.add(FigureID(name, PanelCursor), patch.BuildCursorUpdate(timeline.Elapsed(all[0], ts), *req.FrameIdx))

	frame, err := sensor.ResolveFrame(snap.Cameras, name, ts)
	if err != nil {
		res.fail(err, FigureID(name, PanelTargets), FigureID(name, PanelPixels), FigureID(name, PanelPose))
		return nil
	}

	step := v.step(req)
	v.updateTarget(res, snap, name, step, frame)
	return v.updatePose(res, name, step, frame, req.Axes)
}

func (v *View) updateTarget(res *Result, snap *dataset.Snapshot, name, step string, frame dataset.Frame) {
	if frame.Target == nil {
		res.skip(FigureID(name, PanelTargets), FigureID(name, PanelPixels))
		return
	}

	// nil when this step has no errors for the frame, which resets the
	// marker colouring.
	errs := frame.ReprojectionErrors[step]
	maxErr := v.maxError(snap, name, step)

	xy := make([]patch.Vec2, len(frame.Target.Points))
	for i, p := range frame.Target.Points {
		xy[i] = patch.Vec2{p.X, p.Y}
	}
	res.add(FigureID(name, PanelTargets), v.targets.BuildScatterUpdate(xy, errs, maxErr))
	res.add(FigureID(name, PanelPixels), v.pixels.BuildScatterUpdate(frame.Target.Pixels, errs, maxErr))
}

// maxError returns the colour-scale ceiling: the configured value, else the
// largest error recorded for the camera and step, else nil to autoscale.
func (v *View) maxError(snap *dataset.Snapshot, name, step string) *float64 {
	if m, ok := v.cfg.GetMaxReprojectionError(); ok {
		return &m
	}
	if m, ok := snap.Statistics.Cameras[name].MaxReprojectionError[step]; ok && m > 0 {
		return &m
	}
	return nil
}

func (v *View) updatePose(res *Result, name, step string, frame dataset.Frame, axes []pose.AxisID) error {
	p, ok := frame.Pose(step)
	if !ok {
		res.skip(FigureID(name, PanelPose))
		return nil
	}

	origin := p.Translation()
	rot := pose.ToRotationMatrix(p.Rotation())
	scale := v.cfg.GetAxisScale()

	if axes == nil {
		res.add(FigureID(name, PanelPose), patch.BuildGizmoUpdate(origin, rot, scale))
		return nil
	}

	op := patch.Op{Kind: patch.KindAxis}
	for _, axis := range axes {
		a, err := axisUpdate(origin, rot, axis, scale)
		if err != nil {
			return fmt.Errorf("pose panel %s: %w", FigureID(name, PanelPose), err)
		}
		if op, err = op.Merge(a); err != nil {
			return err
		}
	}
	res.add(FigureID(name, PanelPose), op)
	return nil
}

func axisUpdate(origin r3.Vec, rot pose.RotationMatrix, axis pose.AxisID, scale float64) (patch.Op, error) {
	end, err := pose.AxisEndpoint(origin, rot, axis, scale)
	if err != nil {
		return patch.Op{}, err
	}
	return patch.BuildAxisUpdate(origin, end, axis)
}

func (v *View) updateImu(res *Result, snap *dataset.Snapshot, r *sensor.Resolver, req Request) {
	name := req.Imu
	figure := FigureID(name, PanelCursor)
	_, ts, err := sensor.FrameAt(r, snap.Imus, sensor.Imu, name, req.FrameIdx)
	if err != nil {
		res.fail(err, figure)
		return
	}
	// Resolved above, so the sequence decodes and is non-empty.
	all, err := r.Metadata().Timestamps(sensor.Imu, name)
	if err != nil {
		res.fail(err, figure)
		return
	}
	res.add(figure, patch.BuildCursorUpdate(timeline.Elapsed(all[0], ts), *req.FrameIdx))
}

func (res *Result) add(figure string, op patch.Op) {
	res.Patches = append(res.Patches, Patch{Figure: figure, Op: op})
}

func (res *Result) skip(figures ...string) {
	res.Skipped = append(res.Skipped, figures...)
}

// fail sorts a resolution failure for the given figures. The warning is
// attached to the first figure only.
func (res *Result) fail(err error, figures ...string) {
	switch {
	case sensor.IsTransient(err):
		res.skip(figures...)
	case errors.Is(err, sensor.ErrMalformedMetadata):
		monitoring.Logf("frameview: %s: %v", figures[0], err)
		res.Warnings = append(res.Warnings, Warning{Figure: figures[0], Err: err})
		res.skip(figures...)
	default:
		res.Warnings = append(res.Warnings, Warning{Figure: figures[0], Err: err})
		res.skip(figures...)
	}
}
