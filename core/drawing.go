package core

// StrokeKind distinguishes ink strokes from eraser strokes. Eraser strokes
// are plain strokes rendered in the background color, not true erasure.
type StrokeKind string

const (
	StrokeInk    StrokeKind = "ink"
	StrokeEraser StrokeKind = "eraser"
)

// ShapeKind enumerates the shape families the surface can hold.
type ShapeKind string

const (
	ShapeRectangle ShapeKind = "rectangle"
	ShapeEllipse   ShapeKind = "ellipse"
	ShapeText      ShapeKind = "text"
)

type (
	// Point is a coordinate in surface-local space. Zoom/pan compensation is
	// the caller's responsibility.
	Point struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
	}

	// Style carries the default stroke/fill attributes applied to new
	// primitives and to fragment primitives that arrive without one.
	Style struct {
		StrokeColor string  `json:"strokeColor"`
		StrokeWidth float64 `json:"strokeWidth"`
		FillColor   string  `json:"fillColor"`
	}

	// Stroke is an ordered sequence of points drawn with one tool gesture.
	Stroke struct {
		ID     string     `json:"id"`
		Kind   StrokeKind `json:"kind"`
		Color  string     `json:"color"`
		Width  float64    `json:"width"`
		Points []Point    `json:"points"`
	}

	// Shape is a rectangle, ellipse, or text label. Rectangles and text use
	// X/Y as the top-left corner with Width/Height extents; ellipses use X/Y
	// as the center with Radius.
	Shape struct {
		ID          string    `json:"id"`
		Kind        ShapeKind `json:"kind"`
		X           float64   `json:"x"`
		Y           float64   `json:"y"`
		Width       float64   `json:"width,omitempty"`
		Height      float64   `json:"height,omitempty"`
		Radius      float64   `json:"radius,omitempty"`
		StrokeColor string    `json:"strokeColor"`
		StrokeWidth float64   `json:"strokeWidth"`
		FillColor   string    `json:"fillColor"`
		Text        string    `json:"text,omitempty"`
	}

	// DrawingState is the complete, serializable set of primitives on the
	// canvas at one instant. It is a plain value: snapshotting and restoring
	// always go through Clone so history entries never alias live slices.
	DrawingState struct {
		Strokes []Stroke `json:"strokes"`
		Shapes  []Shape  `json:"shapes"`
	}
)

// DefaultStyle is applied wherever a primitive arrives with no style of its
// own, e.g. fragments from the template gallery or snapshots written before
// style fields existed.
func DefaultStyle() Style {
	return Style{
		StrokeColor: "#000000",
		StrokeWidth: 1.0,
		FillColor:   "transparent",
	}
}

// Clone returns a deep, independent copy of the stroke.
func (s Stroke) Clone() Stroke {
	out := s
	out.Points = make([]Point, len(s.Points))
	copy(out.Points, s.Points)
	return out
}

// Equal reports structural equality with another stroke.
func (s Stroke) Equal(o Stroke) bool {
	if s.ID != o.ID || s.Kind != o.Kind || s.Color != o.Color || s.Width != o.Width {
		return false
	}
	if len(s.Points) != len(o.Points) {
		return false
	}
	for i := range s.Points {
		if s.Points[i] != o.Points[i] {
			return false
		}
	}
	return true
}

// Clone returns a deep, independent copy of the state. The zero value clones
// to empty (non-nil) slices so snapshots always marshal as [] rather than
// null.
func (d DrawingState) Clone() DrawingState {
	out := DrawingState{
		Strokes: make([]Stroke, len(d.Strokes)),
		Shapes:  make([]Shape, len(d.Shapes)),
	}
	for i, s := range d.Strokes {
		out.Strokes[i] = s.Clone()
	}
	copy(out.Shapes, d.Shapes)
	return out
}

// Equal reports structural equality with another state. Nil and empty slices
// compare equal; primitive order is significant because it is the z-order.
func (d DrawingState) Equal(o DrawingState) bool {
	if len(d.Strokes) != len(o.Strokes) || len(d.Shapes) != len(o.Shapes) {
		return false
	}
	for i := range d.Strokes {
		if !d.Strokes[i].Equal(o.Strokes[i]) {
			return false
		}
	}
	for i := range d.Shapes {
		if d.Shapes[i] != o.Shapes[i] {
			return false
		}
	}
	return true
}
