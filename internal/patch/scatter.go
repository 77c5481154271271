package patch

import (
	"encoding/json"
	"math"
)

// DefaultColorScale is the colour scale used for error magnitudes.
const DefaultColorScale = "Bluered"

// Vec2 is a 2D position or error vector.
type Vec2 [2]float64

// Norm returns the Euclidean length.
func (v Vec2) Norm() float64 {
	return math.Hypot(v[0], v[1])
}

// Marker is the marker styling of a scatter trace. A nil Color means no
// error data: only Size is set and the colour fields are omitted entirely.
// A non-nil Color, even an empty one, is always encoded.
type Marker struct {
	Size       int       `json:"size"`
	Color      []float64 `json:"color"`
	ColorScale string    `json:"colorscale,omitempty"`
	CMin       *float64  `json:"cmin,omitempty"`
	CMax       *float64  `json:"cmax,omitempty"`
	ShowScale  bool      `json:"showscale,omitempty"`
}

type sizeOnlyMarker struct {
	Size int `json:"size"`
}

// MarshalJSON encodes a marker without colour data as {"size":N}.
func (m Marker) MarshalJSON() ([]byte, error) {
	if m.Color == nil {
		return json.Marshal(sizeOnlyMarker{Size: m.Size})
	}
	type coloured Marker
	return json.Marshal(coloured(m))
}

// Builder builds scatter updates for one figure.
type Builder struct {
	MarkerSize int
	ColorScale string
}

// NewBuilder returns a builder using the given marker size and
// colour scale. An empty colour scale selects DefaultColorScale.
func NewBuilder(markerSize int, colorScale string) *Builder {
	if colorScale == "" {
		colorScale = DefaultColorScale
	}
	return &Builder{MarkerSize: markerSize, ColorScale: colorScale}
}

// BuildScatterUpdate sets the x/y arrays of trace 0 from points and
// restyles its markers.
//
// errs == nil means no error data is available for this frame: the marker
// resets to the plain default size. Otherwise each marker is coloured by
// the magnitude of its error vector on the range [0, maxError] and the
// colour bar is shown. A nil maxError leaves cmax for the renderer to
// autoscale. errs is not checked against len(points).
func (b *Builder) BuildScatterUpdate(points []Vec2, errs []Vec2, maxError *float64) Op {
	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i] = p[0]
		ys[i] = p[1]
	}

	op := Op{Kind: KindScatter}
	op.assign(DataPath(0, "x"), xs)
	op.assign(DataPath(0, "y"), ys)

	if errs == nil {
		op.assign(DataPath(0, "marker"), Marker{Size: b.MarkerSize})
		return op
	}

	colors := make([]float64, len(errs))
	for i, e := range errs {
		colors[i] = e.Norm()
	}

	cmin := 0.0
	m := Marker{
		Size:       b.MarkerSize,
		Color:      colors,
		ColorScale: b.ColorScale,
		CMin:       &cmin,
		ShowScale:  true,
	}
	if maxError != nil {
		cmax := *maxError
		m.CMax = &cmax
	}
	op.assign(DataPath(0, "marker"), m)
	return op
}
