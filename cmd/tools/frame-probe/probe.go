package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/banshee-data/reprojection.view/internal/config"
	"github.com/banshee-data/reprojection.view/internal/dataset"
	"github.com/banshee-data/reprojection.view/internal/frameview"
	"github.com/banshee-data/reprojection.view/internal/pose"
	"github.com/banshee-data/reprojection.view/internal/sensor"
	"github.com/banshee-data/reprojection.view/internal/timeline"
)

// Options selects the frames to probe.
type Options struct {
	DB         string
	Sensor     string
	SensorType sensor.Type
	Index      int
	Count      int // consecutive indices, wrapping like slider playback
	Step       string
	Axes       string // comma separated, empty for all
}

// Output is the JSON document written per probed index.
type Output struct {
	Sensor   string            `json:"sensor"`
	Index    int               `json:"index"`
	Patches  []frameview.Patch `json:"patches"`
	Skipped  []string          `json:"skipped,omitempty"`
	Warnings []string          `json:"warnings,omitempty"`
}

// Summary is written when no sensor is selected.
type Summary struct {
	DatasetID  string               `json:"dataset_id"`
	Statistics dataset.Statistics   `json:"statistics"`
	Marks      map[string]TickMarks `json:"marks"`
	Trajectory map[string]int       `json:"trajectory_samples"`
}

// TickMarks are the slider labels of one sensor.
type TickMarks struct {
	Marks  map[int]string `json:"marks"`
	MaxIdx int            `json:"max_idx"`
}

// Probe loads the database and writes the patches for the selected frames
// to w as JSON lines. With no sensor it writes a dataset summary instead.
func Probe(ctx context.Context, opts Options, cfg *config.ViewConfig, w io.Writer) error {
	snap, err := dataset.Load(ctx, opts.DB)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)

	if opts.Sensor == "" {
		return enc.Encode(summarize(snap, cfg))
	}

	axes, err := parseAxes(opts.Axes)
	if err != nil {
		return err
	}

	ts, err := snap.Metadata.Timestamps(opts.SensorType, opts.Sensor)
	if err != nil {
		return err
	}

	view := frameview.New(cfg)
	idx := opts.Index
	count := opts.Count
	if count < 1 {
		count = 1
	}
	for i := 0; i < count; i++ {
		req := frameview.Request{FrameIdx: &idx, Step: opts.Step, Axes: axes}
		switch opts.SensorType {
		case sensor.Camera:
			req.Camera = opts.Sensor
		case sensor.Imu:
			req.Imu = opts.Sensor
		default:
			return fmt.Errorf("unsupported sensor type %q", opts.SensorType)
		}

		res, err := view.Update(snap, req)
		if err != nil {
			return err
		}
		out := Output{Sensor: opts.Sensor, Index: idx, Patches: res.Patches, Skipped: res.Skipped}
		for _, warn := range res.Warnings {
			out.Warnings = append(out.Warnings, warn.String())
		}
		if err := enc.Encode(out); err != nil {
			return err
		}
		idx = timeline.LoopingIncrement(idx, len(ts)-1)
	}
	return nil
}

func parseAxes(s string) ([]pose.AxisID, error) {
	if s == "" {
		return nil, nil
	}
	var axes []pose.AxisID
	for _, part := range strings.Split(s, ",") {
		a, err := pose.ParseAxisID(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		axes = append(axes, a)
	}
	return axes, nil
}

func summarize(snap *dataset.Snapshot, cfg *config.ViewConfig) Summary {
	sum := Summary{
		DatasetID:  snap.ID.String(),
		Statistics: snap.Statistics,
		Marks:      make(map[string]TickMarks),
		Trajectory: make(map[string]int),
	}
	for _, t := range []sensor.Type{sensor.Camera, sensor.Imu} {
		for _, name := range snap.Metadata.Sensors(t) {
			ts, err := snap.Metadata.Timestamps(t, name)
			if err != nil {
				continue
			}
			marks, maxIdx := timeline.SliderMarks(ts, cfg.GetTickStepSeconds())
			sum.Marks[name] = TickMarks{Marks: marks, MaxIdx: maxIdx}
		}
	}

	step := cfg.GetPoseStep()
	for name, sf := range snap.Cameras {
		stamps, _ := timeline.ExtractSorted(sf.Frames, func(f dataset.Frame) (pose.Se3, bool) {
			return f.Pose(step)
		})
		sum.Trajectory[name] = len(stamps)
	}
	return sum
}
