package patch

import "strconv"

// Line is a shape outline.
type Line struct {
	Color string `json:"color"`
	Width int    `json:"width"`
}

// Shape is a layout shape. The cursor uses a zero-width rect spanning the
// full figure height in paper coordinates.
type Shape struct {
	Type string  `json:"type"`
	XRef string  `json:"xref"`
	YRef string  `json:"yref"`
	X0   float64 `json:"x0"`
	X1   float64 `json:"x1"`
	Y0   float64 `json:"y0"`
	Y1   float64 `json:"y1"`
	Line Line    `json:"line"`
}

// Font styles annotation text.
type Font struct {
	Color string `json:"color"`
	Size  int    `json:"size"`
}

// Annotation is a layout text label.
type Annotation struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	XRef      string  `json:"xref"`
	YRef      string  `json:"yref"`
	Text      string  `json:"text"`
	ShowArrow bool    `json:"showarrow"`
	YAnchor   string  `json:"yanchor"`
	XAnchor   string  `json:"xanchor"`
	Font      Font    `json:"font"`
	BgColor   string  `json:"bgcolor"`
}

// BuildCursorUpdate places the time cursor of a time-series figure at
// elapsedS seconds and labels it with the frame index. It replaces any
// existing layout shapes and annotations.
func BuildCursorUpdate(elapsedS float64, frameIdx int) Op {
	shape := Shape{
		Type: "rect",
		XRef: "x",
		YRef: "paper",
		X0:   elapsedS,
		X1:   elapsedS,
		Y0:   0,
		Y1:   1,
		Line: Line{Color: "black", Width: 1},
	}
	label := Annotation{
		X:       elapsedS,
		Y:       1,
		XRef:    "x",
		YRef:    "paper",
		Text:    strconv.Itoa(frameIdx),
		YAnchor: "bottom",
		XAnchor: "center",
		Font:    Font{Color: "white", Size: 12},
		BgColor: "rgba(10,10,10,0.7)",
	}

	op := Op{Kind: KindCursor}
	op.assign(LayoutPath("shapes"), []Shape{shape})
	op.assign(LayoutPath("annotations"), []Annotation{label})
	return op
}
