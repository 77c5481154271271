package dataset

import (
	"gonum.org/v1/gonum/floats"

	"github.com/banshee-data/reprojection.view/internal/sensor"
)

func computeStatistics(cameras, imus sensor.Store[Frame]) Statistics {
	stats := Statistics{
		Cameras: make(map[string]CameraStatistics, len(cameras)),
		Imus:    make(map[string]ImuStatistics, len(imus)),
	}

	for name, sf := range cameras {
		cs := CameraStatistics{
			FramesWithPose:              make(map[string]int),
			FramesWithReprojectionError: make(map[string]int),
			MaxReprojectionError:        make(map[string]float64),
		}
		for _, f := range sf.Frames {
			cs.TotalFrames++
			if f.Image != nil {
				cs.FramesWithImage++
			}
			if f.Target != nil {
				cs.FramesWithTarget++
			}
			for step := range f.Poses {
				cs.FramesWithPose[step]++
			}
			for step, errs := range f.ReprojectionErrors {
				cs.FramesWithReprojectionError[step]++
				if len(errs) == 0 {
					continue
				}
				norms := make([]float64, len(errs))
				for i, e := range errs {
					norms[i] = e.Norm()
				}
				if m := floats.Max(norms); m > cs.MaxReprojectionError[step] {
					cs.MaxReprojectionError[step] = m
				}
			}
		}
		stats.Cameras[name] = cs
	}

	for name, sf := range imus {
		is := ImuStatistics{}
		for _, f := range sf.Frames {
			is.TotalFrames++
			if f.Imu != nil {
				is.FramesWithMeasurement++
			}
		}
		stats.Imus[name] = is
	}
	return stats
}
