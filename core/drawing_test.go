package core

import "testing"

func sampleState() DrawingState {
	return DrawingState{
		Strokes: []Stroke{{
			ID: "s1", Kind: StrokeInk, Color: "#000000", Width: 2,
			Points: []Point{{X: 1, Y: 2}, {X: 3, Y: 4}},
		}},
		Shapes: []Shape{{
			ID: "r1", Kind: ShapeRectangle, X: 10, Y: 10, Width: 50, Height: 20,
			StrokeColor: "#000000", StrokeWidth: 1, FillColor: "transparent",
		}},
	}
}

func TestDrawingState_CloneIsIndependent(t *testing.T) {
	original := sampleState()
	clone := original.Clone()

	clone.Strokes[0].Points[0].X = 999
	clone.Shapes[0].Width = 999

	if original.Strokes[0].Points[0].X == 999 {
		t.Error("clone shares stroke point storage with the original")
	}
	if original.Shapes[0].Width == 999 {
		t.Error("clone shares shape storage with the original")
	}
}

func TestDrawingState_CloneOfZeroValueIsEmptyNotNil(t *testing.T) {
	var zero DrawingState
	clone := zero.Clone()
	if clone.Strokes == nil || clone.Shapes == nil {
		t.Error("clone of zero value has nil slices")
	}
}

func TestDrawingState_Equal(t *testing.T) {
	a := sampleState()
	b := sampleState()
	if !a.Equal(b) {
		t.Error("identical states compare unequal")
	}

	b.Strokes[0].Points[1].Y = 5
	if a.Equal(b) {
		t.Error("states with differing points compare equal")
	}

	c := sampleState()
	c.Shapes[0].FillColor = "#ff0000"
	if a.Equal(c) {
		t.Error("states with differing shape fields compare equal")
	}
}

func TestDrawingState_EqualNilVersusEmpty(t *testing.T) {
	var nilState DrawingState
	empty := DrawingState{Strokes: []Stroke{}, Shapes: []Shape{}}
	if !nilState.Equal(empty) {
		t.Error("nil slices and empty slices compare unequal")
	}
}

func TestDrawingState_EqualOrderSignificant(t *testing.T) {
	a := DrawingState{Shapes: []Shape{{ID: "1"}, {ID: "2"}}}
	b := DrawingState{Shapes: []Shape{{ID: "2"}, {ID: "1"}}}
	if a.Equal(b) {
		t.Error("z-order differences compare equal")
	}
}
