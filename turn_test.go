package magcad

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func roundWire(diameter float64) WireDescriptor {
	return WireDescriptor{Type: WIRE_ROUND, OuterDiameter: diameter}
}

func concentricBobbin(shape string, cw, cd float64) BobbinDescriptor {
	return BobbinDescriptor{
		ColumnShape: shape,
		ColumnWidth: cw,
		ColumnDepth: cd,
		WindingWindows: []WindingWindow{
			{Height: 0.005, Width: 0.004},
		},
	}
}

func TestRoundColumnTurn(t *testing.T) {
	bobbin := concentricBobbin(COLUMN_ROUND, 0.002, 0.002)
	turn := TurnDescriptor{Name: "t1", Coordinates: []float64{0.005}}
	solid, err := SynthesizeTurn(turn, bobbin, roundWire(0.001))
	if err != nil {
		t.Fatalf("TestRoundColumnTurn: %s", err.Error())
	}

	// a round column yields a torus: major radius 0.005, minor 0.0005
	checkInside(t, "TestRoundColumnTurn +x", solid, r3.Vec{X: 0.005, Y: 0, Z: 0})
	checkInside(t, "TestRoundColumnTurn +y", solid, r3.Vec{X: 0, Y: 0.005, Z: 0})
	checkInside(t, "TestRoundColumnTurn -x", solid, r3.Vec{X: -0.005, Y: 0, Z: 0})
	checkOutside(t, "TestRoundColumnTurn center", solid, r3.Vec{X: 0, Y: 0, Z: 0})
	checkOutside(t, "TestRoundColumnTurn above wire", solid, r3.Vec{X: 0.005, Y: 0, Z: 0.001})

	bb := solid.Bounds()
	if bb.Max.Z > 0.0007 || bb.Max.Z < 0.0004 {
		t.Errorf("TestRoundColumnTurn: wire z extent %g, want about 0.0005", bb.Max.Z)
	}
}

func TestRectangularColumnTurn(t *testing.T) {
	bobbin := concentricBobbin(COLUMN_RECTANGULAR, 0.003, 0.002)
	turn := TurnDescriptor{Name: "t1", Coordinates: []float64{0.004}}
	solid, err := SynthesizeTurn(turn, bobbin, roundWire(0.001))
	if err != nil {
		t.Fatalf("TestRectangularColumnTurn: %s", err.Error())
	}

	// margin 0.001, bend max(margin, wire radius) = 0.001
	checkInside(t, "TestRectangularColumnTurn front tube", solid, r3.Vec{X: 0, Y: 0.003, Z: 0})
	checkInside(t, "TestRectangularColumnTurn back tube", solid, r3.Vec{X: 0, Y: -0.003, Z: 0})
	checkInside(t, "TestRectangularColumnTurn side tube", solid, r3.Vec{X: 0.004, Y: 0, Z: 0})
	// corner arc midpoint: pivot (0.003, 0.002) plus bend/sqrt(2) on both axes
	mid := 0.001 / math.Sqrt2
	checkInside(t, "TestRectangularColumnTurn corner", solid, r3.Vec{X: 0.003 + mid, Y: 0.002 + mid, Z: 0})
	checkOutside(t, "TestRectangularColumnTurn center", solid, r3.Vec{X: 0, Y: 0, Z: 0})
	checkOutside(t, "TestRectangularColumnTurn inside column", solid, r3.Vec{X: 0.002, Y: 0, Z: 0})
}

func TestOblongColumnTurn(t *testing.T) {
	bobbin := concentricBobbin(COLUMN_OBLONG, 0.004, 0.002)
	turn := TurnDescriptor{Name: "t1", Coordinates: []float64{0.005}}
	solid, err := SynthesizeTurn(turn, bobbin, roundWire(0.001))
	if err != nil {
		t.Fatalf("TestOblongColumnTurn: %s", err.Error())
	}

	// straight section 0.002 each side, cap sweep radius 0.003
	checkInside(t, "TestOblongColumnTurn front tube", solid, r3.Vec{X: 0, Y: 0.003, Z: 0})
	checkInside(t, "TestOblongColumnTurn right cap", solid, r3.Vec{X: 0.005, Y: 0, Z: 0})
	checkInside(t, "TestOblongColumnTurn left cap", solid, r3.Vec{X: -0.005, Y: 0, Z: 0})
	checkOutside(t, "TestOblongColumnTurn center", solid, r3.Vec{X: 0, Y: 0, Z: 0})
}

func TestOblongColumnDegeneracy(t *testing.T) {
	// equal extents: the column is effectively round and the path collapses
	// to a revolved profile instead of tubes plus caps
	bobbin := concentricBobbin(COLUMN_OBLONG, 0.002, 0.002)
	turn := TurnDescriptor{Name: "t1", Coordinates: []float64{0.003}}
	solid, err := SynthesizeTurn(turn, bobbin, roundWire(0.001))
	if err != nil {
		t.Fatalf("TestOblongColumnDegeneracy: %s", err.Error())
	}
	for _, ang := range []float64{0, 45, 90, 180, 270} {
		p := r3.Vec{X: 0.003 * math.Cos(radians(ang)), Y: 0.003 * math.Sin(radians(ang))}
		checkInside(t, "TestOblongColumnDegeneracy ring", solid, p)
	}
}

func TestToroidalTurn(t *testing.T) {
	bobbin := BobbinDescriptor{
		ColumnDepth:   0.005,
		WallThickness: 0.001,
		WindingWindows: []WindingWindow{
			{RadialHeight: 0.003, Angle: 20},
		},
	}
	// rotation 180 places the turn on the +X side
	turn := TurnDescriptor{Name: "t1", Coordinates: []float64{0.005, 0}, Rotation: 180}
	solid, err := SynthesizeTurn(turn, bobbin, roundWire(0.001))
	if err != nil {
		t.Fatalf("TestToroidalTurn: %s", err.Error())
	}

	// inner radius 0.005, outer 0.008, crossing height 0.0065
	checkInside(t, "TestToroidalTurn inner tube up", solid, r3.Vec{X: 0.005, Y: 0, Z: 0.002})
	checkInside(t, "TestToroidalTurn inner tube down", solid, r3.Vec{X: 0.005, Y: 0, Z: -0.002})
	checkInside(t, "TestToroidalTurn top bridge", solid, r3.Vec{X: 0.0065, Y: 0, Z: 0.0065})
	checkInside(t, "TestToroidalTurn bottom bridge", solid, r3.Vec{X: 0.0065, Y: 0, Z: -0.0065})
	checkInside(t, "TestToroidalTurn outer tube", solid, r3.Vec{X: 0.008, Y: 0, Z: 0.002})
	checkOutside(t, "TestToroidalTurn core axis", solid, r3.Vec{X: 0, Y: 0, Z: 0})
	checkOutside(t, "TestToroidalTurn above", solid, r3.Vec{X: 0.005, Y: 0, Z: 0.008})
}

func TestToroidalTurnRotation(t *testing.T) {
	bobbin := BobbinDescriptor{
		ColumnDepth:   0.005,
		WallThickness: 0.001,
		WindingWindows: []WindingWindow{
			{RadialHeight: 0.003, Angle: 20},
		},
	}
	// rotation 270 puts the turn a quarter around from the 180 reference
	turn := TurnDescriptor{Name: "t1", Coordinates: []float64{0.005, 0}, Rotation: 270}
	solid, err := SynthesizeTurn(turn, bobbin, roundWire(0.001))
	if err != nil {
		t.Fatalf("TestToroidalTurnRotation: %s", err.Error())
	}
	checkInside(t, "TestToroidalTurnRotation inner tube", solid, r3.Vec{X: 0, Y: 0.005, Z: 0.002})
	checkOutside(t, "TestToroidalTurnRotation reference slot", solid, r3.Vec{X: 0.005, Y: 0, Z: 0.002})
}

func TestToroidalSkew(t *testing.T) {
	inner := []float64{0.005, 0}
	outer := []float64{0.008 * math.Cos(radians(10)), 0.008 * math.Sin(radians(10))}
	half, full := ToroidalSkew(inner, outer)
	if !near(half, radians(5), 1e-12) {
		t.Errorf("TestToroidalSkew: half skew = %g, want %g", half, radians(5))
	}
	if !near(full, radians(10), 1e-12) {
		t.Errorf("TestToroidalSkew: full skew = %g, want %g", full, radians(10))
	}
}

func TestWireSection(t *testing.T) {
	cases := []struct {
		name  string
		turn  TurnDescriptor
		wire  WireDescriptor
		round bool
		w, h  float64
	}{
		{
			"round outer diameter",
			TurnDescriptor{},
			WireDescriptor{Type: WIRE_ROUND, OuterDiameter: 0.001},
			true, 0.001, 0.001,
		},
		{
			"litz falls back to conducting diameter",
			TurnDescriptor{},
			WireDescriptor{Type: WIRE_LITZ, ConductingDiameter: 0.0008},
			true, 0.0008, 0.0008,
		},
		{
			"rectangular",
			TurnDescriptor{},
			WireDescriptor{Type: WIRE_RECTANGULAR, OuterWidth: 0.002, OuterHeight: 0.0005},
			false, 0.002, 0.0005,
		},
		{
			"foil with tolerance record",
			TurnDescriptor{},
			WireDescriptor{
				Type:        WIRE_FOIL,
				OuterWidth:  map[string]interface{}{"nominal": 0.0001},
				OuterHeight: map[string]interface{}{"minimum": 0.004, "maximum": 0.006},
			},
			false, 0.0001, 0.005,
		},
		{
			"turn dimensions override the wire",
			TurnDescriptor{Dimensions: []float64{0.002, 0.001}, CrossSectionalShape: WIRE_RECTANGULAR},
			WireDescriptor{Type: WIRE_ROUND, OuterDiameter: 0.001},
			false, 0.002, 0.001,
		},
	}
	for _, c := range cases {
		round, w, h, err := wireSection(c.wire, c.turn)
		if err != nil {
			t.Errorf("TestWireSection %s: %s", c.name, err.Error())
			continue
		}
		if round != c.round || !near(w, c.w, 1e-12) || !near(h, c.h, 1e-12) {
			t.Errorf("TestWireSection %s: got (%t, %g, %g), want (%t, %g, %g)",
				c.name, round, w, h, c.round, c.w, c.h)
		}
	}
}

func TestWireSectionUnusable(t *testing.T) {
	if _, _, _, err := wireSection(WireDescriptor{Type: WIRE_ROUND}, TurnDescriptor{}); err == nil {
		t.Errorf("TestWireSectionUnusable: expected an error for a wire with no diameter")
	}
	if _, _, _, err := wireSection(WireDescriptor{Type: "braided"}, TurnDescriptor{}); err == nil {
		t.Errorf("TestWireSectionUnusable: expected an error for an unknown wire type")
	}
}
