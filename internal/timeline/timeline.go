// Package timeline converts sensor timestamp sequences into the values a
// playback slider and time-series axes need.
//
// All functions expect timestamps sorted ascending, as published by the
// loader.
package timeline

import (
	"fmt"
	"sort"

	"github.com/banshee-data/reprojection.view/internal/sensor"
)

const nanosPerSecond = 1e9

// DefaultTickStep is the slider tick spacing in seconds.
const DefaultTickStep = 5

// ElapsedSeconds returns each timestamp's offset from the first one in
// seconds. The subtraction is done on the integers so large epoch values
// do not lose precision before conversion.
func ElapsedSeconds(ts []sensor.Timestamp) []float64 {
	if len(ts) == 0 {
		return []float64{}
	}
	t0 := ts[0]
	out := make([]float64, len(ts))
	for i, t := range ts {
		out[i] = Elapsed(t0, t)
	}
	return out
}

// Elapsed returns t - t0 in seconds.
func Elapsed(t0, t sensor.Timestamp) float64 {
	return float64(int64(t)-int64(t0)) / nanosPerSecond
}

// Ticks places a slider tick every step seconds. For each whole-step
// target it picks the sample closest in time (the earlier one on a tie)
// and returns its index, its elapsed time and a label such as "5s".
// A non-positive step yields no ticks.
func Ticks(ts []sensor.Timestamp, step int) (idx []int, seconds []float64, labels []string) {
	if len(ts) == 0 || step <= 0 {
		return []int{}, []float64{}, []string{}
	}

	elapsed := ElapsedSeconds(ts)
	maxTime := int(elapsed[len(elapsed)-1])

	for target := 0; target <= maxTime; target += step {
		i := closestIndex(elapsed, float64(target))
		idx = append(idx, i)
		seconds = append(seconds, elapsed[i])
		labels = append(labels, fmt.Sprintf("%ds", target))
	}
	return idx, seconds, labels
}

func closestIndex(sorted []float64, target float64) int {
	i := sort.SearchFloat64s(sorted, target)
	if i == len(sorted) {
		return len(sorted) - 1
	}
	if i > 0 && target-sorted[i-1] <= sorted[i]-target {
		return i - 1
	}
	return i
}

// SliderMarks returns the tick labels keyed by sample index and the
// largest valid index (0 for an empty sequence).
func SliderMarks(ts []sensor.Timestamp, step int) (marks map[int]string, maxIdx int) {
	idx, _, labels := Ticks(ts, step)
	marks = make(map[int]string, len(idx))
	for i, at := range idx {
		marks[at] = labels[i]
	}
	return marks, max(len(ts)-1, 0)
}

// LoopingIncrement advances a playback index, wrapping to 0 after max.
func LoopingIncrement(value, max int) int {
	if value >= max {
		return 0
	}
	return value + 1
}

// ExtractSorted walks frames in timestamp order and collects the values
// extract reports as present, with their timestamps.
func ExtractSorted[P, V any](frames map[sensor.Timestamp]P, extract func(P) (V, bool)) ([]sensor.Timestamp, []V) {
	keys := make([]sensor.Timestamp, 0, len(frames))
	for ts := range frames {
		keys = append(keys, ts)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	var (
		outTS  []sensor.Timestamp
		values []V
	)
	for _, ts := range keys {
		v, ok := extract(frames[ts])
		if !ok {
			continue
		}
		outTS = append(outTS, ts)
		values = append(values, v)
	}
	return outTS, values
}
