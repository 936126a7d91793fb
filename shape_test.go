package magcad

import (
	"math"
	"strings"
	"testing"

	"github.com/soypat/sdf"
	"gonum.org/v1/gonum/spatial/r3"
)

// eDims is a small E core used across the geometry tests.
func eDims() map[string]interface{} {
	return map[string]interface{}{
		"A": 0.02, "B": 0.01, "C": 0.005,
		"D": 0.004, "E": 0.014, "F": 0.005,
	}
}

func checkInside(t *testing.T, name string, s sdf.SDF3, p r3.Vec) {
	t.Helper()
	if d := s.Evaluate(p); d >= 0 {
		t.Errorf("%s: expected %v inside the solid, sdf=%g", name, p, d)
	}
}

func checkOutside(t *testing.T, name string, s sdf.SDF3, p r3.Vec) {
	t.Helper()
	if d := s.Evaluate(p); d <= 0 {
		t.Errorf("%s: expected %v outside the solid, sdf=%g", name, p, d)
	}
}

func near(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestECorePiece(t *testing.T) {
	piece, err := SynthesizeShape(ShapeDescriptor{Family: "e", Dimensions: eDims()})
	if err != nil {
		t.Fatalf("TestECorePiece: %s", err.Error())
	}

	// the extrusion height is B, mating face on z=0 and the body below it
	if piece.Height != 0.01 {
		t.Errorf("TestECorePiece: height = %g, want 0.01", piece.Height)
	}
	bb := piece.Solid.Bounds()
	if !near(bb.Max.Z, 0, 1e-6) || !near(bb.Min.Z, -0.01, 1e-6) {
		t.Errorf("TestECorePiece: solid spans z [%g, %g], want [-0.01, 0]", bb.Min.Z, bb.Max.Z)
	}

	checkInside(t, "TestECorePiece lateral leg", piece.Solid, r3.Vec{X: 0.0085, Y: 0, Z: -0.005})
	checkInside(t, "TestECorePiece central column", piece.Solid, r3.Vec{X: 0, Y: 0, Z: -0.002})
	checkInside(t, "TestECorePiece web", piece.Solid, r3.Vec{X: 0, Y: 0, Z: -0.007})
	checkOutside(t, "TestECorePiece winding window", piece.Solid, r3.Vec{X: 0.00475, Y: 0, Z: -0.002})

	if piece.Column.Shape != COLUMN_RECTANGULAR {
		t.Errorf("TestECorePiece: column shape = %s, want %s", piece.Column.Shape, COLUMN_RECTANGULAR)
	}
}

func TestWindowReconstruction(t *testing.T) {
	piece, err := SynthesizeShape(ShapeDescriptor{Family: "e", Dimensions: eDims()})
	if err != nil {
		t.Fatalf("TestWindowReconstruction: %s", err.Error())
	}

	// the recorded window region spans the cut: depth D from the mating face
	// and width E across
	wb := piece.WindowBounds
	if !near(wb.Min.Z, -0.004, 1e-9) || !near(wb.Max.Z, 0, 1e-9) {
		t.Errorf("TestWindowReconstruction: window spans z [%g, %g], want [-0.004, 0]", wb.Min.Z, wb.Max.Z)
	}
	if !near(wb.Min.X, -0.007, 1e-9) || !near(wb.Max.X, 0.007, 1e-9) {
		t.Errorf("TestWindowReconstruction: window spans x [%g, %g], want [-0.007, 0.007]", wb.Min.X, wb.Max.X)
	}

	// the window solid is the cut minus the retained column: hollow in the
	// middle, solid between column and leg
	checkInside(t, "TestWindowReconstruction window gap", piece.Window, r3.Vec{X: 0.00475, Y: 0, Z: -0.002})
	checkOutside(t, "TestWindowReconstruction column", piece.Window, r3.Vec{X: 0, Y: 0, Z: -0.002})
	checkOutside(t, "TestWindowReconstruction beyond cut", piece.Window, r3.Vec{X: 0.009, Y: 0, Z: -0.002})
}

func TestUnknownFamily(t *testing.T) {
	_, err := SynthesizeShape(ShapeDescriptor{Family: "hexagon", Dimensions: eDims()})
	if err == nil {
		t.Fatalf("TestUnknownFamily: expected an error for family 'hexagon'")
	}
	if !strings.Contains(err.Error(), "hexagon") || !strings.Contains(err.Error(), "supported families") {
		t.Errorf("TestUnknownFamily: error should name the family and list the supported ones, got: %s", err.Error())
	}
}

func TestRequiredDimensionMissing(t *testing.T) {
	dims := eDims()
	delete(dims, "F")
	_, err := SynthesizeShape(ShapeDescriptor{Family: "e", Dimensions: dims})
	if err == nil {
		t.Fatalf("TestRequiredDimensionMissing: expected an error for the missing 'F'")
	}
	if !strings.Contains(err.Error(), "'F'") {
		t.Errorf("TestRequiredDimensionMissing: error should name the missing key, got: %s", err.Error())
	}
}

func TestELColumnShapes(t *testing.T) {
	cases := []struct {
		name string
		f2   interface{}
		want string
	}{
		{"elongated", 0.009, COLUMN_OBLONG},
		{"equal extents", 0.005, COLUMN_ROUND},
		{"missing F2", nil, COLUMN_ROUND},
	}
	for _, c := range cases {
		dims := eDims()
		if c.f2 != nil {
			dims["F2"] = c.f2
		}
		piece, err := SynthesizeShape(ShapeDescriptor{Family: "el", Dimensions: dims})
		if err != nil {
			t.Errorf("TestELColumnShapes %s: %s", c.name, err.Error())
			continue
		}
		if piece.Column.Shape != c.want {
			t.Errorf("TestELColumnShapes %s: column shape = %s, want %s", c.name, piece.Column.Shape, c.want)
		}
	}
}

func TestToroidPiece(t *testing.T) {
	piece, err := SynthesizeShape(ShapeDescriptor{Family: "t", Dimensions: map[string]interface{}{
		"A": 0.01, "B": 0.006, "C": 0.004,
	}})
	if err != nil {
		t.Fatalf("TestToroidPiece: %s", err.Error())
	}
	if piece.Height != 0.004 {
		t.Errorf("TestToroidPiece: height = %g, want 0.004", piece.Height)
	}
	// toroids are centered on the origin with an open center hole
	checkInside(t, "TestToroidPiece ring wall", piece.Solid, r3.Vec{X: 0.004, Y: 0, Z: 0})
	checkOutside(t, "TestToroidPiece center hole", piece.Solid, r3.Vec{X: 0, Y: 0, Z: 0})
	checkOutside(t, "TestToroidPiece above", piece.Solid, r3.Vec{X: 0.004, Y: 0, Z: 0.003})
}

func TestMachiningCentralCut(t *testing.T) {
	piece, err := SynthesizeShape(ShapeDescriptor{Family: "e", Dimensions: eDims()})
	if err != nil {
		t.Fatalf("TestMachiningCentralCut: %s", err.Error())
	}
	machining := Machining{Coordinates: []float64{0, -0.001}, Length: 0.001}
	tool, err := machining.Tool(piece, nil)
	if err != nil {
		t.Fatalf("TestMachiningCentralCut: %s", err.Error())
	}

	// the cut is CENTERED on the height coordinate: it spans length/2 on
	// each side of it, never [h, h+length]
	bb := tool.Bounds()
	if !near(bb.Min.Z, -0.0015, 1e-9) || !near(bb.Max.Z, -0.0005, 1e-9) {
		t.Errorf("TestMachiningCentralCut: tool spans z [%g, %g], want [-0.0015, -0.0005]", bb.Min.Z, bb.Max.Z)
	}

	gapped := Cut(piece.Solid, tool)
	checkOutside(t, "TestMachiningCentralCut gap", gapped, r3.Vec{X: 0, Y: 0, Z: -0.001})
	checkInside(t, "TestMachiningCentralCut column below gap", gapped, r3.Vec{X: 0, Y: 0, Z: -0.003})
	checkInside(t, "TestMachiningCentralCut lateral leg intact", gapped, r3.Vec{X: 0.0085, Y: 0, Z: -0.001})
}

func TestMachiningLateralCut(t *testing.T) {
	piece, err := SynthesizeShape(ShapeDescriptor{Family: "e", Dimensions: eDims()})
	if err != nil {
		t.Fatalf("TestMachiningLateralCut: %s", err.Error())
	}
	machining := Machining{Coordinates: []float64{0.007, -0.001}, Length: 0.0005}
	tool, err := machining.Tool(piece, nil)
	if err != nil {
		t.Fatalf("TestMachiningLateralCut: %s", err.Error())
	}
	// a signed first coordinate selects the lateral leg on that side only
	checkInside(t, "TestMachiningLateralCut selected leg", tool, r3.Vec{X: 0.0085, Y: 0, Z: -0.001})
	checkOutside(t, "TestMachiningLateralCut opposite leg", tool, r3.Vec{X: -0.0085, Y: 0, Z: -0.001})
	checkOutside(t, "TestMachiningLateralCut central column", tool, r3.Vec{X: 0, Y: 0, Z: -0.001})
}

func TestMachiningMalformed(t *testing.T) {
	piece, err := SynthesizeShape(ShapeDescriptor{Family: "e", Dimensions: eDims()})
	if err != nil {
		t.Fatalf("TestMachiningMalformed: %s", err.Error())
	}
	machining := Machining{Coordinates: []float64{0}, Length: 0.001}
	if _, err := machining.Tool(piece, nil); err == nil {
		t.Errorf("TestMachiningMalformed: expected an error for a 1-element coordinate vector")
	}
}
