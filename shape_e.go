package magcad

import (
	"math"

	"github.com/soypat/sdf"
	"gonum.org/v1/gonum/spatial/r3"
)

// E-family synthesis: E, ER, ETD, EL, EQ, EC, EFD, LP and the EP/EPX pot
// variants. The body is the extruded outline with the mating face on z=0;
// the winding window is a cut from the top with the central column
// subtracted from the cut (window = cut - column, never the reverse).

// finishPiece cuts the winding window out of the body and records the uncut
// window region. 'cut' and 'column' are already placed; both may be nil for
// families without a window cut.
func finishPiece(family string, profile []Path, height float64, body, cut, column sdf.SDF3, col columnInfo) *CorePiece {
	piece := &CorePiece{
		Family:  family,
		Height:  height,
		Profile: profile,
		Column:  col,
	}
	if cut != nil {
		piece.WindowBounds = cut.Bounds()
		piece.Window = Cut(cut, column)
		piece.Solid = Cut(body, piece.Window)
	} else {
		piece.Solid = body
	}
	return piece
}

// extrudeBody extrudes the profile so the piece spans z in [-height, 0].
func extrudeBody(profile []Path, height float64) sdf.SDF3 {
	return Move(Extrude(profile, height), r3.Vec{Z: -height / 2})
}

func ePiece(family string, dims map[string]float64) (*CorePiece, error) {
	a, b, c := dims["A"], dims["B"], dims["C"]
	d, e, f := dims["D"], dims["E"], dims["F"]

	profile := []Path{RectPath(0, 0, a, c)}
	body := extrudeBody(profile, b)

	// window cut from the top, depth D
	var cut sdf.SDF3
	switch family {
	case FAMILY_ER, FAMILY_ETD:
		cut = Cylinder(d, e/2)
	default:
		cut = Box(e, c*(1+OVERLAP), d)
	}
	cut = Move(cut, r3.Vec{Z: -d / 2})

	// central column retained inside the cut
	col := columnInfo{
		LateralX:     (a + e) / 4,
		LateralWidth: (a - e) / 2,
		LateralDepth: c,
	}
	var column sdf.SDF3
	switch family {
	case FAMILY_E:
		column = Box(f, c*(1+OVERLAP), d)
		col.Shape, col.Width, col.Depth = COLUMN_RECTANGULAR, f, c
	case FAMILY_EL:
		f2 := dims["F2"]
		if math.Abs(f2-f) > DEGEN_TOL && f2-f > DEGEN_TOL {
			// stadium column: straight section of f2-f with semicircle caps
			column = Stadium(f2, f, d)
			col.Shape, col.Width, col.Depth = COLUMN_OBLONG, f2, f
		} else {
			// the straight section collapsed, a plain cylinder is the valid shape
			column = Cylinder(d, f/2)
			col.Shape, col.Width, col.Depth = COLUMN_ROUND, f, f
		}
	default: // er, etd, eq, ec, lp use a round center column
		column = Cylinder(d, f/2)
		col.Shape, col.Width, col.Depth = COLUMN_ROUND, f, f
	}
	column = Move(column, r3.Vec{Z: -d / 2})

	return finishPiece(family, profile, b, body, cut, column, col), nil
}

// epPiece handles the EP/EPX pot variants: the column is offset toward one
// side by K, and EPX elongates it with end-cap cylinders.
func epPiece(family string, dims map[string]float64) (*CorePiece, error) {
	a, b, c := dims["A"], dims["B"], dims["C"]
	d, e, f := dims["D"], dims["E"], dims["F"]

	y0 := 0.0
	if k, present := dims["K"]; present {
		y0 = c/2 - k // column center sits K away from the near face
	}

	profile := []Path{RectPath(0, 0, a, c)}
	body := extrudeBody(profile, b)

	col := columnInfo{
		Shape:        COLUMN_ROUND,
		Width:        f,
		Depth:        f,
		CenterY:      y0,
		LateralX:     (a + e) / 4,
		LateralWidth: (a - e) / 2,
		LateralDepth: c,
	}

	var cut, column sdf.SDF3
	elongation := 0.0
	if family == FAMILY_EPX {
		if f2, present := dims["F2"]; present && f2-f > DEGEN_TOL {
			elongation = f2 - f
		}
	}
	if elongation > 0 {
		caps := []sdf.SDF3{
			Box(f, elongation, d),
			Move(Cylinder(d, f/2), r3.Vec{Y: elongation / 2}),
			Move(Cylinder(d, f/2), r3.Vec{Y: -elongation / 2}),
		}
		column = Fuse(caps)
		cut = Fuse([]sdf.SDF3{
			Box(e, elongation, d),
			Move(Cylinder(d, e/2), r3.Vec{Y: elongation / 2}),
			Move(Cylinder(d, e/2), r3.Vec{Y: -elongation / 2}),
		})
		col.Shape = COLUMN_OBLONG
		col.Depth = f + elongation
	} else {
		column = Cylinder(d, f/2)
		cut = Cylinder(d, e/2)
	}
	cut = Move(cut, r3.Vec{Y: y0, Z: -d / 2})
	column = Move(column, r3.Vec{Y: y0, Z: -d / 2})

	return finishPiece(family, profile, b, body, cut, column, col), nil
}

// efdPiece builds the EFD outline: a rectangle with two trapezoidal dents on
// the open face flanking the column, plus a third smaller dent on the
// opposite face when K > 0.
func efdPiece(dims map[string]float64) (*CorePiece, error) {
	a, b, c := dims["A"], dims["B"], dims["C"]
	d, e, f := dims["D"], dims["E"], dims["F"]
	f2 := dims["F2"]
	k := dims["K"] // optional, 0 when absent

	dd := c - f2 // dent depth: the column front face is recessed by this
	if dd < 0 {
		dd = 0
	}
	slope := dd / 2

	outline := RectPath(0, 0, a, c)
	dents := []Path{
		{ // left window opening
			{-e / 2, c/2 + c*OVERLAP}, {-f / 2, c/2 + c*OVERLAP},
			{-f/2 - slope, c/2 - dd}, {-e/2 + slope, c/2 - dd},
		},
		{ // right window opening
			{f / 2, c/2 + c*OVERLAP}, {e / 2, c/2 + c*OVERLAP},
			{e/2 - slope, c/2 - dd}, {f/2 + slope, c/2 - dd},
		},
	}
	if k > 0 {
		dents = append(dents, Path{ // smaller dent on the opposite face
			{-f / 2, -c/2 - c*OVERLAP}, {f / 2, -c/2 - c*OVERLAP},
			{f/2 - k, -c/2 + k}, {-f/2 + k, -c/2 + k},
		})
	}
	profile := DiffPaths([]Path{outline}, dents)
	body := extrudeBody(profile, b)

	// the rectangular column sits flush with the back face
	colY := (f2 - c) / 2
	cut := Move(Box(e, c*(1+OVERLAP), d), r3.Vec{Z: -d / 2})
	column := Move(Box(f, f2, d), r3.Vec{Y: colY, Z: -d / 2})

	col := columnInfo{
		Shape:        COLUMN_RECTANGULAR,
		Width:        f,
		Depth:        f2,
		CenterY:      colY,
		LateralX:     (a + e) / 4,
		LateralWidth: (a - e) / 2,
		LateralDepth: c,
	}
	return finishPiece(FAMILY_EFD, profile, b, body, cut, column, col), nil
}
