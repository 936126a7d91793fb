package magcad

import (
	"fmt"

	"github.com/soypat/sdf"
	"gonum.org/v1/gonum/spatial/r3"
)

// Toroids and the open-sided C/U/UR families.

// tPiece is a plain annulus centered on the origin: the only family with no
// winding-window subtraction, since the window is the open center hole.
func tPiece(dims map[string]float64) (*CorePiece, error) {
	a, b, c := dims["A"], dims["B"], dims["C"] // outer diameter, inner diameter, height

	ring := Cut(Cylinder(c, a/2), Cylinder(c*(1+OVERLAP), b/2))
	profile := []Path{CirclePath(0, 0, a/2, 16)}

	return &CorePiece{
		Family:  FAMILY_T,
		Solid:   ring,
		Height:  c,
		Profile: profile,
		Column: columnInfo{
			Shape: COLUMN_ROUND,
			Width: a,
			Depth: a,
		},
	}, nil
}

// uPiece covers U and C cores: two legs with an open window between them and
// no central column. C adds chamfered outer corners when R is provided.
func uPiece(family string, dims map[string]float64) (*CorePiece, error) {
	a, b, c := dims["A"], dims["B"], dims["C"]
	d, e := dims["D"], dims["E"]

	outline := RectPath(0, 0, a, c)
	profile := []Path{outline}
	if r, present := dims["R"]; family == FAMILY_C && present && r > 0 {
		// chamfer the outer corners by clipping triangles off the outline
		corners := []Path{
			{{a/2 - r, c / 2}, {a / 2, c / 2}, {a / 2, c/2 - r}},
			{{-a / 2, c/2 - r}, {-a / 2, c / 2}, {-a/2 + r, c / 2}},
			{{-a/2 + r, -c / 2}, {-a / 2, -c / 2}, {-a / 2, -c/2 + r}},
			{{a / 2, -c/2 + r}, {a / 2, -c / 2}, {a/2 - r, -c / 2}},
		}
		profile = DiffPaths(profile, corners)
	}
	body := extrudeBody(profile, b)

	// open window between the legs: a cut with no retained column
	cut := Move(Box(e, c*(1+OVERLAP), d), r3.Vec{Z: -d / 2})

	col := columnInfo{
		Shape:        COLUMN_RECTANGULAR,
		Width:        e, // machining a "central" cut on a U core spans the window
		Depth:        c,
		LateralX:     (a + e) / 4,
		LateralWidth: (a - e) / 2,
		LateralDepth: c,
	}
	return finishPiece(family, profile, b, body, cut, nil, col), nil
}

// urPiece branches on the subtype: 1 and 2 carry a winding window of height
// D, 3 and 4 use the full height with no window cut at all because the
// column is solid-wound. Subtypes 2 and 4 replace one round column with a
// rectangular one.
func urPiece(dims map[string]float64, subtype string) (*CorePiece, error) {
	a, b, c := dims["A"], dims["B"], dims["C"]

	leg_r := c / 2
	leg_x := (a - c) / 2
	window_h := b
	cut_window := subtype == "1" || subtype == "2"
	if cut_window {
		d, present := dims["D"]
		if !present {
			return nil, fmt.Errorf("shape family 'ur' subtype %s requires dimension 'D'", subtype)
		}
		window_h = d
	}

	solids := make([]sdf.SDF3, 0, 3)
	if window_h < b {
		// yoke below the window
		yoke_h := b - window_h
		solids = append(solids, Move(Box(a-c, c, yoke_h), r3.Vec{Z: -window_h - yoke_h/2}))
	} else if !cut_window {
		// solid-wound variants keep the full web
		solids = append(solids, Move(Box(a-c, c, b), r3.Vec{Z: -b / 2}))
	}
	// left column is always round
	solids = append(solids, Move(Cylinder(b, leg_r), r3.Vec{X: -leg_x, Z: -b / 2}))
	// right column is round for subtypes 1/3, rectangular for 2/4
	if subtype == "2" || subtype == "4" {
		solids = append(solids, Move(Box(c, c, b), r3.Vec{X: leg_x, Z: -b / 2}))
	} else {
		solids = append(solids, Move(Cylinder(b, leg_r), r3.Vec{X: leg_x, Z: -b / 2}))
	}
	body := Fuse(solids)

	profile := []Path{
		CirclePath(-leg_x, 0, leg_r, 12),
		RectPath(0, 0, a-c, c),
	}
	if subtype == "2" || subtype == "4" {
		profile = append(profile, RectPath(leg_x, 0, c, c))
	} else {
		profile = append(profile, CirclePath(leg_x, 0, leg_r, 12))
	}
	profile = UnionPaths(profile)

	var cut sdf.SDF3
	if cut_window {
		cut = Move(Box(a-2*c, c*(1+OVERLAP), window_h), r3.Vec{Z: -window_h / 2})
	}

	col := columnInfo{
		Shape:        COLUMN_ROUND,
		Width:        a - 2*c, // central cut spans the open window
		Depth:        c,
		LateralX:     leg_x,
		LateralWidth: c,
		LateralDepth: c,
	}
	return finishPiece(FAMILY_UR, profile, b, body, cut, nil, col), nil
}
