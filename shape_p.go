package magcad

import (
	"math"

	"github.com/soypat/sdf"
	"gonum.org/v1/gonum/spatial/r3"
)

// P-family synthesis: the circular cross-section cores P, PQ, RM and PM.

// pPiece is the classic pot core: a cylinder with an annular winding window
// and two lateral lead-out openings of width G through the skirt; H > 0
// drills a center hole through the full height.
func pPiece(dims map[string]float64) (*CorePiece, error) {
	a, b := dims["A"], dims["B"]
	d, e, f := dims["D"], dims["E"], dims["F"]
	g := dims["G"] // optional opening width
	h := dims["H"] // optional center hole

	profile := []Path{CirclePath(0, 0, a/2, 16)}
	body := Move(Cylinder(b, a/2), r3.Vec{Z: -b / 2})

	cut := Move(Cylinder(d, e/2), r3.Vec{Z: -d / 2})
	column := Move(Cylinder(d, f/2), r3.Vec{Z: -d / 2})

	if g > 0 {
		// dual lead-out openings cut through the skirt on both sides
		inner := e / 2 * (1 - OVERLAP)
		outer := a / 2 * (1 + OVERLAP)
		for _, side := range []float64{1, -1} {
			opening := Move(Box(outer-inner, g, d), r3.Vec{X: side * (inner + outer) / 2, Z: -d / 2})
			body = Cut(body, opening)
		}
	}
	if h > 0 {
		body = Cut(body, Move(Cylinder(b*(1+OVERLAP), h/2), r3.Vec{Z: -b / 2}))
	}

	col := columnInfo{
		Shape:        COLUMN_ROUND,
		Width:        f,
		Depth:        f,
		LateralX:     (a + e) / 4,
		LateralWidth: (a - e) / 2,
		LateralDepth: a,
	}
	return finishPiece(FAMILY_P, profile, b, body, cut, column, col), nil
}

// pqPiece builds the PQ profile: NOT one closed outline but the fusion of a
// central column circle with two independently closed polygonal lobes. Each
// lobe reaches inward past the winding window so the fused footprint stays
// connected below the window cut.
func pqPiece(dims map[string]float64) (*CorePiece, error) {
	a, b, c := dims["A"], dims["B"], dims["C"]
	d, e, f := dims["D"], dims["E"], dims["F"]
	g := dims["G"] // lobe inner face width

	lobe := func(side float64) Path {
		// outer arc clipped to the core depth
		ratio := math.Min(1, (c/2)/(a/2))
		theta := math.Asin(ratio) * 180 / math.Pi
		arc := ArcPath(0, 0, a/2, -theta, theta, 8)
		xi := f / 2 * 0.9 // overlap the column circle so the three parts fuse
		path := Path{{xi, -g / 2}}
		path = append(path, arc...)
		path = append(path, Point{xi, g / 2})
		if side < 0 {
			for i := range path {
				path[i].X = -path[i].X
			}
		}
		return path
	}

	parts := []Path{
		CirclePath(0, 0, f/2, 16),
		lobe(1),
		lobe(-1),
	}
	profile := UnionPaths(parts)
	body := extrudeBody(profile, b)

	cut := Move(Cylinder(d, e/2), r3.Vec{Z: -d / 2})
	column := Move(Cylinder(d, f/2), r3.Vec{Z: -d / 2})

	col := columnInfo{
		Shape:        COLUMN_ROUND,
		Width:        f,
		Depth:        f,
		LateralX:     (a + e) / 4,
		LateralWidth: (a - e) / 2,
		LateralDepth: c,
	}
	return finishPiece(FAMILY_PQ, profile, b, body, cut, column, col), nil
}

// rmPiece derives the RM outline from the flat-intercept chain on the named
// dimensions: the A x C footprint rectangle has its four corners cut off by
// flats normal to the diagonals at perpendicular distance J/2 from the axis.
// Subtypes 1 and 2 add a lead-out notch of half width G/2 reaching down to
// the winding window (12-point outline); subtypes 3 and 4 keep the plain
// corner-cut outline (8 points).
func rmPiece(dims map[string]float64, subtype string) (*CorePiece, error) {
	a := dims["A"] / 2
	b := dims["B"]
	c := dims["C"] / 2
	d, e, f := dims["D"], dims["E"]/2, dims["F"]

	p := dims["J"] / 2       // perpendicular distance from the axis to a flat
	alpha := math.Pi / 4     // flat normal direction, along the diagonals
	z := p / math.Cos(alpha) // axis intercept of the flat line x+y = z
	if z <= math.Max(a, c) || z >= a+c {
		// the flats miss or consume the rectangle: fall back to the
		// regular-octagon proportion
		z = math.Max(a, c) + math.Min(a, c)*(math.Sqrt2-1)
	}
	tx := z - c // corner vertex offset along the x sides
	ty := z - a // corner vertex offset along the y sides

	n := dims["G"] / 2 // half width of the lead-out notch
	if n <= 0 || n >= tx {
		n = tx / 2
	}
	s := c - e // notch depth, down to the winding window radius
	notched := subtype != "3" && subtype != "4" && s > 0

	var profile Path
	if notched {
		// 12-point outline with the notch on the +Y flat
		profile = Path{
			{a, -ty}, {a, ty}, {tx, c},
			{n, c}, {n, c - s}, {-n, c - s}, {-n, c},
			{-tx, c}, {-a, ty}, {-a, -ty}, {-tx, -c}, {tx, -c},
		}
	} else {
		profile = Path{
			{a, -ty}, {a, ty}, {tx, c}, {-tx, c},
			{-a, ty}, {-a, -ty}, {-tx, -c}, {tx, -c},
		}
	}

	paths := []Path{profile}
	body := extrudeBody(paths, b)

	cut := Move(Cylinder(d, e), r3.Vec{Z: -d / 2})
	column := Move(Cylinder(d, f/2), r3.Vec{Z: -d / 2})

	col := columnInfo{
		Shape:        COLUMN_ROUND,
		Width:        f,
		Depth:        f,
		LateralX:     (a + e) / 2,
		LateralWidth: a - e,
		LateralDepth: 2 * c,
	}
	return finishPiece(FAMILY_RM, paths, b, body, cut, column, col), nil
}

// pmPiece cuts two wedge-shaped openings through the skirt, symmetric about
// the +/- height axis of the profile: pointed for subtype 1 (60 degree half
// angle), flat-topped at width F for subtype 2 (45 degrees). A positive
// wedgeAngle (degrees, from the descriptor's alpha) overrides the subtype
// default. The central column is fused back in at full height since the
// wedges graze it.
func pmPiece(dims map[string]float64, subtype string, wedgeAngle float64) (*CorePiece, error) {
	a, b := dims["A"], dims["B"]
	d, e, f := dims["D"], dims["E"], dims["F"]

	half_angle := radians(60)
	if subtype == "2" {
		half_angle = radians(45)
	}
	if wedgeAngle > 0 {
		half_angle = radians(wedgeAngle)
	}
	reach := a // wedge length, past the outer edge

	var wedge Path
	if subtype == "2" {
		// flat-topped wedge starting at width F
		y0 := (f / 2) / math.Tan(half_angle)
		wedge = Path{
			{-f / 2, y0}, {f / 2, y0},
			{reach * math.Sin(half_angle), reach * math.Cos(half_angle)},
			{-reach * math.Sin(half_angle), reach * math.Cos(half_angle)},
		}
	} else {
		wedge = Path{
			{0, 0},
			{reach * math.Sin(half_angle), reach * math.Cos(half_angle)},
			{-reach * math.Sin(half_angle), reach * math.Cos(half_angle)},
		}
	}
	mirrored := wedge.Copy()
	mirrored.RotatePath(180, Point{0, 0})

	profile := DiffPaths([]Path{CirclePath(0, 0, a/2, 16)}, []Path{wedge, mirrored})
	// the wedge cut nicks the column footprint: restore it in the outline too
	profile = UnionPaths(append(profile, CirclePath(0, 0, f/2, 16)))

	body := extrudeBody(profile, b)
	cut := Move(Cylinder(d, e/2), r3.Vec{Z: -d / 2})
	column := Move(Cylinder(d, f/2), r3.Vec{Z: -d / 2})

	col := columnInfo{
		Shape:        COLUMN_ROUND,
		Width:        f,
		Depth:        f,
		LateralX:     (a + e) / 4,
		LateralWidth: (a - e) / 2,
		LateralDepth: a,
	}
	piece := finishPiece(FAMILY_PM, profile, b, body, cut, column, col)
	// full-height central column fused back over the wedge cuts
	piece.Solid = Fuse([]sdf.SDF3{piece.Solid, Move(Cylinder(b, f/2), r3.Vec{Z: -b / 2})})
	return piece, nil
}
