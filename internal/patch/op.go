package patch

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Kind tags which update an Op describes.
type Kind int

const (
	KindAxis    Kind = 1 // pose gizmo axis line(s)
	KindScatter Kind = 2 // 2D scatter points and marker styling
	KindCursor  Kind = 3 // time cursor on a time-series figure
)

func (k Kind) String() string {
	switch k {
	case KindAxis:
		return "axis"
	case KindScatter:
		return "scatter"
	case KindCursor:
		return "cursor"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Path addresses one figure field. Elements are string keys or int
// indices, e.g. {"data", 0, "x"}.
type Path []any

// DataPath addresses a field of trace i.
func DataPath(trace int, field string) Path {
	return Path{"data", trace, field}
}

// LayoutPath addresses a layout field.
func LayoutPath(field string) Path {
	return Path{"layout", field}
}

// String joins the path with dots: data.0.x.
func (p Path) String() string {
	parts := make([]string, len(p))
	for i, e := range p {
		switch v := e.(type) {
		case string:
			parts[i] = v
		case int:
			parts[i] = strconv.Itoa(v)
		default:
			parts[i] = fmt.Sprint(v)
		}
	}
	return strings.Join(parts, ".")
}

// Assignment sets Path to Value.
type Assignment struct {
	Path  Path
	Value any
}

// Op is an ordered set of assignments of one Kind.
type Op struct {
	Kind        Kind
	Assignments []Assignment
}

func (op *Op) assign(p Path, v any) {
	op.Assignments = append(op.Assignments, Assignment{Path: p, Value: v})
}

// Paths returns the dotted paths the op assigns, in order.
func (op Op) Paths() []string {
	out := make([]string, len(op.Assignments))
	for i, a := range op.Assignments {
		out[i] = a.Path.String()
	}
	return out
}

// Get returns the last value assigned to the dotted path.
func (op Op) Get(path string) (any, bool) {
	for i := len(op.Assignments) - 1; i >= 0; i-- {
		if op.Assignments[i].Path.String() == path {
			return op.Assignments[i].Value, true
		}
	}
	return nil, false
}

// Merge appends the assignments of other. Kinds must match.
func (op Op) Merge(other Op) (Op, error) {
	if op.Kind != other.Kind {
		return Op{}, fmt.Errorf("cannot merge %s op into %s op", other.Kind, op.Kind)
	}
	out := Op{Kind: op.Kind, Assignments: make([]Assignment, 0, len(op.Assignments)+len(other.Assignments))}
	out.Assignments = append(out.Assignments, op.Assignments...)
	out.Assignments = append(out.Assignments, other.Assignments...)
	return out, nil
}

const dashPatchMarker = "__dash_patch_update"

type dashOperation struct {
	Operation string         `json:"operation"`
	Location  Path           `json:"location"`
	Params    map[string]any `json:"params"`
}

type dashPatch struct {
	Marker     string          `json:"__dash_patch_update"`
	Operations []dashOperation `json:"operations"`
}

// MarshalJSON encodes the op as a Dash Patch update.
func (op Op) MarshalJSON() ([]byte, error) {
	dp := dashPatch{Marker: dashPatchMarker, Operations: make([]dashOperation, 0, len(op.Assignments))}
	for _, a := range op.Assignments {
		dp.Operations = append(dp.Operations, dashOperation{
			Operation: "Assign",
			Location:  a.Path,
			Params:    map[string]any{"value": a.Value},
		})
	}
	return json.Marshal(dp)
}
