package magcad

import (
	"fmt"
	"math"

	"github.com/soypat/sdf"
	form2 "github.com/soypat/sdf/form2/must2"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// Wire types
const (
	WIRE_ROUND       = "round"
	WIRE_RECTANGULAR = "rectangular"
	WIRE_LITZ        = "litz"
	WIRE_FOIL        = "foil"
	WIRE_PLANAR      = "planar"
)

// WireDescriptor is the wire cross-section; numeric fields may be plain
// numbers or tolerance records.
type WireDescriptor struct {
	Type               string      `json:"type"`
	OuterDiameter      interface{} `json:"outerDiameter"`
	OuterWidth         interface{} `json:"outerWidth"`
	OuterHeight        interface{} `json:"outerHeight"`
	ConductingDiameter interface{} `json:"conductingDiameter"`
	ConductingWidth    interface{} `json:"conductingWidth"`
	ConductingHeight   interface{} `json:"conductingHeight"`
}

// TurnDescriptor positions one wound turn: a radial coordinate for
// concentric turns, a Cartesian [x,y] pair for toroidal turns, plus the
// outer-wire pair for multilayer toroidal turns.
type TurnDescriptor struct {
	Name                  string      `json:"name"`
	Winding               string      `json:"winding"`
	Coordinates           []float64   `json:"coordinates"`
	AdditionalCoordinates [][]float64 `json:"additionalCoordinates"`
	Rotation              float64     `json:"rotation"`
	Dimensions            []float64   `json:"dimensions"`
	CrossSectionalShape   string      `json:"crossSectionalShape"`
}

// wireSection resolves the swept cross-section: round flag plus full width
// (radial) and height (axial). Litz behaves as round, foil and planar as
// rectangular. A turn-level dimension override wins over the wire.
func wireSection(wire WireDescriptor, turn TurnDescriptor) (round bool, w, h float64, err error) {
	if len(turn.Dimensions) == 2 {
		round = turn.CrossSectionalShape == WIRE_ROUND
		return round, turn.Dimensions[0], turn.Dimensions[1], nil
	}
	fields, err := ResolveDimensions(map[string]interface{}{
		"od": valueOrZero(wire.OuterDiameter),
		"ow": valueOrZero(wire.OuterWidth),
		"oh": valueOrZero(wire.OuterHeight),
		"cd": valueOrZero(wire.ConductingDiameter),
		"cw": valueOrZero(wire.ConductingWidth),
		"ch": valueOrZero(wire.ConductingHeight),
	})
	if err != nil {
		return false, 0, 0, err
	}
	pick := func(outer, conducting float64) float64 {
		if outer > 0 {
			return outer
		}
		return conducting
	}
	switch wire.Type {
	case WIRE_ROUND, WIRE_LITZ, "":
		dia := pick(fields["od"], fields["cd"])
		if dia <= 0 {
			return false, 0, 0, fmt.Errorf("wire '%s' has no usable diameter", wire.Type)
		}
		return true, dia, dia, nil
	case WIRE_RECTANGULAR, WIRE_FOIL, WIRE_PLANAR:
		w = pick(fields["ow"], fields["cw"])
		h = pick(fields["oh"], fields["ch"])
		if w <= 0 || h <= 0 {
			return false, 0, 0, fmt.Errorf("wire '%s' has no usable width/height", wire.Type)
		}
		return false, w, h, nil
	}
	return false, 0, 0, fmt.Errorf("unknown wire type '%s'", wire.Type)
}

func valueOrZero(v interface{}) interface{} {
	if v == nil {
		return 0.0
	}
	return v
}

// SynthesizeTurn produces the swept wire-path solid for one turn. The
// topology is selected by the bobbin: a winding window carrying an angle is
// toroidal, anything else is concentric.
func SynthesizeTurn(turn TurnDescriptor, bobbin BobbinDescriptor, wire WireDescriptor) (sdf.SDF3, error) {
	round, w, h, err := wireSection(wire, turn)
	if err != nil {
		return nil, err
	}
	if len(bobbin.WindingWindows) > 0 && bobbin.WindingWindows[0].Angle != 0 {
		return toroidalTurn(turn, bobbin, round, w, h)
	}
	return concentricTurn(turn, bobbin, round, w, h)
}

// ---------------------------------------------------------------------------
// concentric topology
// ---------------------------------------------------------------------------

// concentricTurn decomposes the path around the column into 4 straight tubes
// joined by 4 quarter corners; a round column collapses to one revolved
// profile and an oblong column to 2 tubes + 2 half corners.
func concentricTurn(turn TurnDescriptor, bobbin BobbinDescriptor, round bool, w, h float64) (sdf.SDF3, error) {
	if len(turn.Coordinates) < 1 {
		return nil, fmt.Errorf("concentric turn '%s' has no radial coordinate", turn.Name)
	}
	r := turn.Coordinates[0]
	z := 0.0
	if len(turn.Coordinates) > 1 {
		z = turn.Coordinates[1]
	}
	cw, cd := bobbin.ColumnWidth, bobbin.ColumnDepth
	wr := w / 2

	var s sdf.SDF3
	switch bobbin.ColumnShape {
	case COLUMN_RECTANGULAR, COLUMN_IRREGULAR:
		margin := r - cw
		if margin < 0 {
			margin = 0
		}
		// never bend tighter than the wire radius or the path self-intersects
		bend := math.Max(margin, wr)
		px := cw + margin - bend
		py := cd + margin - bend
		parts := []sdf.SDF3{
			Move(tubeX(2*cw, round, w, h), r3.Vec{Y: cd + margin}),
			Move(tubeX(2*cw, round, w, h), r3.Vec{Y: -(cd + margin)}),
			Move(tubeY(2*cd, round, w, h), r3.Vec{X: cw + margin}),
			Move(tubeY(2*cd, round, w, h), r3.Vec{X: -(cw + margin)}),
			corner(bend, 0, round, w, h, r3.Vec{X: px, Y: py}),
			corner(bend, 90, round, w, h, r3.Vec{X: -px, Y: py}),
			corner(bend, 180, round, w, h, r3.Vec{X: -px, Y: -py}),
			corner(bend, 270, round, w, h, r3.Vec{X: px, Y: -py}),
		}
		s = Fuse(parts)
	case COLUMN_OBLONG:
		straight := cw - cd
		if straight <= DEGEN_TOL {
			// the straight section collapsed: the column is effectively round
			s = revolvedTurn(r, round, w, h)
			break
		}
		margin := r - cw
		if margin < 0 {
			margin = 0
		}
		sweep := cd + margin
		parts := []sdf.SDF3{
			Move(tubeX(2*straight, round, w, h), r3.Vec{Y: sweep}),
			Move(tubeX(2*straight, round, w, h), r3.Vec{Y: -sweep}),
			halfCorner(sweep, -90, round, w, h, r3.Vec{X: straight}),
			halfCorner(sweep, 90, round, w, h, r3.Vec{X: -straight}),
		}
		s = Fuse(parts)
	default: // round column: one revolved profile
		s = revolvedTurn(r, round, w, h)
	}

	if turn.Rotation != 0 {
		s = sdf.Transform3D(s, sdf.RotateZ(radians(turn.Rotation)))
	}
	if z != 0 {
		s = Move(s, r3.Vec{Z: z})
	}
	return s, nil
}

// revolvedTurn is the round-column collapse: a torus for round wire, a 360
// degree swept rectangle for rectangular wire.
func revolvedTurn(r float64, round bool, w, h float64) sdf.SDF3 {
	if round {
		return Torus(r, w/2)
	}
	return RectTorus(r, w, h)
}

// tubeX is a straight wire segment of the given length running along X.
func tubeX(length float64, round bool, w, h float64) sdf.SDF3 {
	if round {
		return sdf.Transform3D(Cylinder(length, w/2), sdf.RotateY(math.Pi/2))
	}
	return Box(length, w, h)
}

// tubeY runs along Y.
func tubeY(length float64, round bool, w, h float64) sdf.SDF3 {
	if round {
		return sdf.Transform3D(Cylinder(length, w/2), sdf.RotateX(math.Pi/2))
	}
	return Box(w, length, h)
}

// sectionAt is the wire cross-section placed at the given revolve radius.
func sectionAt(radius float64, round bool, w, h float64) sdf.SDF2 {
	var section sdf.SDF2
	if round {
		section = form2.Circle(w / 2)
	} else {
		section = form2.Box(r2.Vec{X: w, Y: h}, 0)
	}
	return sdf.Transform2D(section, sdf.Translate2d(r2.Vec{X: radius}))
}

// corner is a quarter-revolution of the wire section about the vertical
// axis, starting at 'start' degrees, placed at the signed corner pivot.
func corner(bend, start float64, round bool, w, h float64, pivot r3.Vec) sdf.SDF3 {
	s := Revolve(sectionAt(bend, round, w, h), math.Pi/2)
	if start != 0 {
		s = sdf.Transform3D(s, sdf.RotateZ(radians(start)))
	}
	return Move(s, pivot)
}

// halfCorner is the 180 degree cap sweep used by oblong columns.
func halfCorner(bend, start float64, round bool, w, h float64, pivot r3.Vec) sdf.SDF3 {
	s := Revolve(sectionAt(bend, round, w, h), math.Pi)
	if start != 0 {
		s = sdf.Transform3D(s, sdf.RotateZ(radians(start)))
	}
	return Move(s, pivot)
}

// ---------------------------------------------------------------------------
// toroidal topology
// ---------------------------------------------------------------------------

// RadialAngular converts a Cartesian wire position into its radial distance
// (Euclidean norm) and angular position (atan2), in radians.
func RadialAngular(v []float64) (r, ang float64) {
	return math.Hypot(v[0], v[1]), math.Atan2(v[1], v[0])
}

// ToroidalSkew returns the angular corrections for a multilayer toroidal
// turn: the inner corner turns by HALF the inner/outer angular difference
// and the radial bridge (with everything outward of it) by the FULL
// difference, so the path stays continuous at the transition. This split is
// load-bearing; do not re-derive it.
func ToroidalSkew(inner, outer []float64) (half, full float64) {
	_, ai := RadialAngular(inner)
	_, ao := RadialAngular(outer)
	diff := ao - ai
	return diff / 2, diff
}

// toroidalTurn builds the path through the center hole and around the
// outside of the ring as two mirrored halves: inner tube, inner corner,
// radial bridge across the face, outer corner, outer tube. A single
// continuous sweep around the re-entrant corner is numerically unstable in
// most kernels, hence the mirrored construction.
func toroidalTurn(turn TurnDescriptor, bobbin BobbinDescriptor, round bool, w, h float64) (sdf.SDF3, error) {
	if len(turn.Coordinates) < 2 {
		return nil, fmt.Errorf("toroidal turn '%s' needs a Cartesian coordinate pair", turn.Name)
	}
	ww := bobbin.WindingWindows[0]
	ri, _ := RadialAngular(turn.Coordinates)

	var ro, halfSkew, fullSkew float64
	if len(turn.AdditionalCoordinates) > 0 && len(turn.AdditionalCoordinates[0]) >= 2 {
		ro, _ = RadialAngular(turn.AdditionalCoordinates[0])
		halfSkew, fullSkew = ToroidalSkew(turn.Coordinates, turn.AdditionalCoordinates[0])
	} else {
		// single layer: the outer run mirrors the window's radial extent
		ro = ri + ww.RadialHeight
	}

	wr := w / 2
	rb := wr // corner bend radius
	// vertical half extent: the bridge centerline crosses the core face
	zh := bobbin.ColumnDepth + bobbin.WallThickness + wr
	if zh <= wr {
		zh = ww.RadialHeight/2 + wr
	}
	span := ro - ri - 2*rb
	if span < DEGEN_TOL {
		span = DEGEN_TOL
	}

	rotZ := func(s sdf.SDF3, a float64) sdf.SDF3 {
		if a == 0 {
			return s
		}
		return sdf.Transform3D(s, sdf.RotateZ(a))
	}

	tube_len := zh - rb
	inner_tube := Move(verticalTube(tube_len, round, w, h), r3.Vec{X: ri, Z: tube_len / 2})
	outer_tube := Move(verticalTube(tube_len, round, w, h), r3.Vec{X: ro, Z: tube_len / 2})

	// inner corner: bends from vertical (+Z) to radial (+X); arc 90..180 in
	// the XZ plane around its pivot
	inner_corner := Revolve(sectionAt(rb, round, w, h), math.Pi/2)
	inner_corner = sdf.Transform3D(inner_corner, sdf.RotateX(math.Pi/2).Mul(sdf.RotateZ(math.Pi/2)))
	inner_corner = Move(inner_corner, r3.Vec{X: ri + rb, Z: zh - rb})

	// outer corner: radial (+X) back down to vertical; arc 0..90
	outer_corner := Revolve(sectionAt(rb, round, w, h), math.Pi/2)
	outer_corner = sdf.Transform3D(outer_corner, sdf.RotateX(math.Pi/2))
	outer_corner = Move(outer_corner, r3.Vec{X: ro - rb, Z: zh - rb})

	bridge := Move(bridgeTube(span, round, w, h), r3.Vec{X: (ri + ro) / 2, Z: zh})

	top := Fuse([]sdf.SDF3{
		inner_tube,
		rotZ(inner_corner, halfSkew),
		rotZ(bridge, fullSkew),
		rotZ(outer_corner, fullSkew),
		rotZ(outer_tube, fullSkew),
	})
	bottom := sdf.Transform3D(top, sdf.MirrorXY())
	whole := Fuse([]sdf.SDF3{top, bottom})

	// final angular slot
	return rotZ(whole, radians(turn.Rotation-180)), nil
}

// verticalTube runs along Z, centered.
func verticalTube(length float64, round bool, w, h float64) sdf.SDF3 {
	if round {
		return Cylinder(length, w/2)
	}
	return Box(w, h, length)
}

// bridgeTube is the radial segment crossing the core face: the wire's
// radial width axis has rotated to vertical by the time it crosses.
func bridgeTube(length float64, round bool, w, h float64) sdf.SDF3 {
	if round {
		return sdf.Transform3D(Cylinder(length, w/2), sdf.RotateY(math.Pi/2))
	}
	return Box(length, h, w)
}
