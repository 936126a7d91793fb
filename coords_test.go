package magcad

import (
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestToCAD(t *testing.T) {
	cases := []struct {
		name string
		in   []float64
		want r3.Vec
	}{
		// the description's second axis is the core height, which is CAD Z
		{"full vector", []float64{1, 2, 3}, r3.Vec{X: 1, Y: 3, Z: 2}},
		{"planar vector", []float64{1, 2}, r3.Vec{X: 1, Y: 0, Z: 2}},
	}
	for _, c := range cases {
		got, err := ToCAD(c.in)
		if err != nil {
			t.Errorf("TestToCAD %s: %s", c.name, err.Error())
			continue
		}
		if got != c.want {
			t.Errorf("TestToCAD %s: got %v, want %v", c.name, got, c.want)
		}
	}
}

func TestToCADMalformed(t *testing.T) {
	for _, in := range [][]float64{nil, {1}, {1, 2, 3, 4}} {
		if _, err := ToCAD(in); err == nil {
			t.Errorf("TestToCADMalformed: expected an error for %v", in)
		}
	}
}

func TestCoordinateRoundTrip(t *testing.T) {
	in := []float64{0.004, -0.002, 0.001}
	vec, err := ToCAD(in)
	if err != nil {
		t.Fatalf("TestCoordinateRoundTrip: %s", err.Error())
	}
	out := ToSchema(vec)
	for i := range in {
		if out[i] != in[i] {
			t.Errorf("TestCoordinateRoundTrip: got %v, want %v", out, in)
			break
		}
	}
}
