package editor

import (
	"math"
	"strings"
	"sync"

	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"

	"sketchcode/core"
)

// Tool identifies the active drawing tool. The surface gates each gesture on
// the tool so stray pointer events from a toolbar switch mid-drag cannot
// produce the wrong primitive.
type Tool string

const (
	ToolPen       Tool = "pen"
	ToolEraser    Tool = "eraser"
	ToolRectangle Tool = "rectangle"
	ToolEllipse   Tool = "ellipse"
	ToolText      Tool = "text"
	ToolBin       Tool = "bin"
)

// Hit-test tolerances, in surface-local units. Text labels are hit-tested
// against a fixed-size box estimated from the rune count because the surface
// does not measure rendered glyphs.
const (
	strokeHitRadius = 6.0
	textHitPerRune  = 12.0
	textHitMinWidth = 40.0
	textHitHeight   = 24.0
)

// Session is the editing context threaded into the surface and bridge:
// active tool, style defaults, and the background color eraser strokes are
// rendered in. It replaces ambient globals with explicit configuration.
type Session struct {
	Tool       Tool
	Style      core.Style
	Background string
}

// NewSession returns a session with the pen selected and default styling.
func NewSession() *Session {
	return &Session{
		Tool:       ToolPen,
		Style:      core.DefaultStyle(),
		Background: "#ffffff",
	}
}

// Surface owns the live DrawingState and applies the active tool's effect to
// it. It performs no I/O; persistence and history both work against the deep
// copies returned by Snapshot.
//
// All exported methods hold the surface mutex, so gesture input and the
// bridge's poll goroutine can share one surface without external locking.
type Surface struct {
	mu      sync.Mutex
	session *Session
	state   core.DrawingState

	// In-progress gesture primitives live at the tail of the state slices so
	// they render while dragging; these indices mark them until the gesture
	// ends.
	activeStroke int
	activeShape  int
	shapeOrigin  core.Point
}

// NewSurface creates an empty surface bound to a session.
func NewSurface(session *Session) *Surface {
	if session == nil {
		session = NewSession()
	}
	return &Surface{
		session:      session,
		activeStroke: -1,
		activeShape:  -1,
	}
}

// Session returns the editing context the surface was created with.
func (s *Surface) Session() *Session {
	return s.session
}

// BeginStroke starts a new stroke at the given point. Valid only while the
// pen or eraser tool is active; a no-op otherwise. Eraser strokes take the
// session background color so they paint over rather than remove.
func (s *Surface) BeginStroke(p core.Point) {
	if !validPoint(p) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var stroke core.Stroke
	switch s.session.Tool {
	case ToolPen:
		stroke = core.Stroke{
			Kind:  core.StrokeInk,
			Color: s.session.Style.StrokeColor,
			Width: s.session.Style.StrokeWidth,
		}
	case ToolEraser:
		stroke = core.Stroke{
			Kind:  core.StrokeEraser,
			Color: s.session.Background,
			Width: s.session.Style.StrokeWidth * 4,
		}
	default:
		return
	}
	stroke.ID = ulid.Make().String()
	stroke.Points = []core.Point{p}
	s.state.Strokes = append(s.state.Strokes, stroke)
	s.activeStroke = len(s.state.Strokes) - 1
}

// ExtendStroke appends a point to the in-progress stroke. Ignored if no
// stroke is in progress or the point is malformed.
func (s *Surface) ExtendStroke(p core.Point) {
	if !validPoint(p) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.activeStroke < 0 {
		return
	}
	stroke := &s.state.Strokes[s.activeStroke]
	stroke.Points = append(stroke.Points, p)
}

// EndStroke completes the in-progress stroke, leaving it in the state.
func (s *Surface) EndStroke() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeStroke = -1
}

// BeginShape starts an interactive rectangle or ellipse drag anchored at the
// given point. Valid only while the matching tool is active.
func (s *Surface) BeginShape(p core.Point, kind core.ShapeKind) {
	if !validPoint(p) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case kind == core.ShapeRectangle && s.session.Tool == ToolRectangle:
	case kind == core.ShapeEllipse && s.session.Tool == ToolEllipse:
	default:
		return
	}
	shape := core.Shape{
		ID:          ulid.Make().String(),
		Kind:        kind,
		X:           p.X,
		Y:           p.Y,
		StrokeColor: s.session.Style.StrokeColor,
		StrokeWidth: s.session.Style.StrokeWidth,
		FillColor:   s.session.Style.FillColor,
	}
	s.state.Shapes = append(s.state.Shapes, shape)
	s.activeShape = len(s.state.Shapes) - 1
	s.shapeOrigin = p
}

// ResizeShape updates the in-progress shape to span from its anchor to the
// given point. Rectangles keep a normalized top-left and positive extents;
// ellipses keep their anchor as the center and grow the radius.
func (s *Surface) ResizeShape(p core.Point) {
	if !validPoint(p) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.activeShape < 0 {
		return
	}
	shape := &s.state.Shapes[s.activeShape]
	switch shape.Kind {
	case core.ShapeRectangle:
		shape.X = math.Min(s.shapeOrigin.X, p.X)
		shape.Y = math.Min(s.shapeOrigin.Y, p.Y)
		shape.Width = math.Abs(p.X - s.shapeOrigin.X)
		shape.Height = math.Abs(p.Y - s.shapeOrigin.Y)
	case core.ShapeEllipse:
		shape.Radius = math.Hypot(p.X-s.shapeOrigin.X, p.Y-s.shapeOrigin.Y)
	}
}

// CommitShape finishes the in-progress shape drag. A shape with zero extent
// (a click with no drag) is discarded rather than committed. Returns whether
// a shape was kept.
func (s *Surface) CommitShape() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.activeShape < 0 {
		return false
	}
	shape := s.state.Shapes[s.activeShape]
	s.activeShape = -1

	zero := false
	switch shape.Kind {
	case core.ShapeRectangle:
		zero = shape.Width == 0 || shape.Height == 0
	case core.ShapeEllipse:
		zero = shape.Radius == 0
	}
	if zero {
		s.state.Shapes = s.state.Shapes[:len(s.state.Shapes)-1]
		return false
	}
	return true
}

// PlaceText appends a text label immediately, with no drag phase. The content
// is trimmed; an empty result makes the call a no-op.
func (s *Surface) PlaceText(p core.Point, content string) {
	if !validPoint(p) {
		return
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Shapes = append(s.state.Shapes, core.Shape{
		ID:          ulid.Make().String(),
		Kind:        core.ShapeText,
		X:           p.X,
		Y:           p.Y,
		Width:       textHitWidth(content),
		Height:      textHitHeight,
		StrokeColor: s.session.Style.StrokeColor,
		StrokeWidth: s.session.Style.StrokeWidth,
		FillColor:   s.session.Style.FillColor,
		Text:        content,
	})
}

// HitTestAndDelete removes the topmost primitive under the point, if any.
// Shapes sit above strokes and later primitives above earlier ones. At most
// one primitive is removed per call; returns whether a deletion occurred.
func (s *Surface) HitTestAndDelete(p core.Point) bool {
	if !validPoint(p) {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.state.Shapes) - 1; i >= 0; i-- {
		if shapeContains(s.state.Shapes[i], p) {
			s.state.Shapes = append(s.state.Shapes[:i], s.state.Shapes[i+1:]...)
			return true
		}
	}
	for i := len(s.state.Strokes) - 1; i >= 0; i-- {
		if strokeContains(s.state.Strokes[i], p) {
			s.state.Strokes = append(s.state.Strokes[:i], s.state.Strokes[i+1:]...)
			return true
		}
	}
	return false
}

// Snapshot returns a deep, independent copy of the current DrawingState,
// safe for the caller to retain or serialize.
func (s *Surface) Snapshot() core.DrawingState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Restore replaces the surface contents wholesale with copies from the given
// state, never retaining aliasing with the caller's slices. Restored
// primitives are normalized field by field: snapshots from persistence may
// predate schema changes, so missing styles fall back to defaults and missing
// IDs are reassigned rather than the restore failing.
func (s *Surface) Restore(state core.DrawingState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.restoreLocked(state)
}

// Replace restores the given state and returns the normalized result in one
// critical section, so a concurrent gesture cannot land between the restore
// and the snapshot the caller records.
func (s *Surface) Replace(state core.DrawingState) core.DrawingState {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.restoreLocked(state)
	return s.state.Clone()
}

func (s *Surface) restoreLocked(state core.DrawingState) {
	restored := state.Clone()
	fixed := 0
	for i := range restored.Strokes {
		fixed += normalizeStroke(&restored.Strokes[i], core.DefaultStyle(), false)
	}
	for i := range restored.Shapes {
		fixed += normalizeShape(&restored.Shapes[i], core.DefaultStyle(), false)
	}
	if fixed > 0 {
		logrus.WithField("fields_defaulted", fixed).Warn("Restored drawing had missing fields, applied defaults")
	}
	s.state = restored
	s.activeStroke = -1
	s.activeShape = -1
}

// Clear empties both primitive collections.
func (s *Surface) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = core.DrawingState{}
	s.activeStroke = -1
	s.activeShape = -1
}

// InsertFragment merges an externally supplied fragment (a template or
// gallery component) into the live state. The gallery is untrusted: every
// incoming primitive gets a fresh ID regardless of what it carried, and
// missing style fields are filled from the session defaults. Returns the
// number of primitives inserted.
func (s *Surface) InsertFragment(fragment core.DrawingState) int {
	frag := fragment.Clone()
	s.mu.Lock()
	defer s.mu.Unlock()
	inserted := 0
	for i := range frag.Strokes {
		stroke := &frag.Strokes[i]
		if len(stroke.Points) == 0 {
			continue
		}
		normalizeStroke(stroke, s.session.Style, true)
		s.state.Strokes = append(s.state.Strokes, *stroke)
		inserted++
	}
	for i := range frag.Shapes {
		shape := &frag.Shapes[i]
		normalizeShape(shape, s.session.Style, true)
		s.state.Shapes = append(s.state.Shapes, *shape)
		inserted++
	}
	return inserted
}

// normalizeStroke fills in safe defaults for missing fields from the given
// style. With freshID the existing ID is discarded unconditionally. Returns
// the number of fields corrected.
func normalizeStroke(stroke *core.Stroke, style core.Style, freshID bool) int {
	fixed := 0
	if freshID || stroke.ID == "" {
		stroke.ID = ulid.Make().String()
		fixed++
	}
	if stroke.Kind == "" {
		stroke.Kind = core.StrokeInk
		fixed++
	}
	if stroke.Color == "" {
		stroke.Color = style.StrokeColor
		fixed++
	}
	if stroke.Width <= 0 {
		stroke.Width = style.StrokeWidth
		fixed++
	}
	return fixed
}

// normalizeShape fills in safe defaults for missing fields from the given
// style. Returns the number of fields corrected.
func normalizeShape(shape *core.Shape, style core.Style, freshID bool) int {
	fixed := 0
	if freshID || shape.ID == "" {
		shape.ID = ulid.Make().String()
		fixed++
	}
	if shape.Kind == "" {
		shape.Kind = core.ShapeRectangle
		fixed++
	}
	if shape.StrokeColor == "" {
		shape.StrokeColor = style.StrokeColor
		fixed++
	}
	if shape.StrokeWidth <= 0 {
		shape.StrokeWidth = style.StrokeWidth
		fixed++
	}
	if shape.FillColor == "" {
		shape.FillColor = style.FillColor
		fixed++
	}
	if shape.Kind == core.ShapeText && shape.Width == 0 {
		shape.Width = textHitWidth(shape.Text)
		shape.Height = textHitHeight
	}
	return fixed
}

func textHitWidth(content string) float64 {
	w := textHitPerRune * float64(len([]rune(content)))
	return math.Max(w, textHitMinWidth)
}

func validPoint(p core.Point) bool {
	return !math.IsNaN(p.X) && !math.IsNaN(p.Y) && !math.IsInf(p.X, 0) && !math.IsInf(p.Y, 0)
}

func shapeContains(shape core.Shape, p core.Point) bool {
	switch shape.Kind {
	case core.ShapeRectangle:
		return p.X >= shape.X && p.X <= shape.X+shape.Width &&
			p.Y >= shape.Y && p.Y <= shape.Y+shape.Height
	case core.ShapeEllipse:
		dx, dy := p.X-shape.X, p.Y-shape.Y
		return dx*dx+dy*dy <= shape.Radius*shape.Radius
	case core.ShapeText:
		w, h := shape.Width, shape.Height
		if w == 0 {
			w = textHitWidth(shape.Text)
		}
		if h == 0 {
			h = textHitHeight
		}
		return p.X >= shape.X && p.X <= shape.X+w &&
			p.Y >= shape.Y && p.Y <= shape.Y+h
	}
	return false
}

func strokeContains(stroke core.Stroke, p core.Point) bool {
	tolerance := strokeHitRadius + stroke.Width/2
	if len(stroke.Points) == 1 {
		only := stroke.Points[0]
		return math.Hypot(p.X-only.X, p.Y-only.Y) <= tolerance
	}
	for i := 0; i+1 < len(stroke.Points); i++ {
		if segmentDistance(stroke.Points[i], stroke.Points[i+1], p) <= tolerance {
			return true
		}
	}
	return false
}

// segmentDistance returns the perpendicular distance from p to the segment
// a-b, clamped to the nearer endpoint beyond the segment's extent.
func segmentDistance(a, b, p core.Point) float64 {
	abx, aby := b.X-a.X, b.Y-a.Y
	lenSq := abx*abx + aby*aby
	if lenSq == 0 {
		return math.Hypot(p.X-a.X, p.Y-a.Y)
	}
	t := ((p.X-a.X)*abx + (p.Y-a.Y)*aby) / lenSq
	t = math.Max(0, math.Min(1, t))
	cx, cy := a.X+t*abx, a.Y+t*aby
	return math.Hypot(p.X-cx, p.Y-cy)
}
