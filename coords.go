package magcad

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// The schema orders vectors as [radial, height] or [radial, height, depth]
// while the kernel is plain Cartesian: the schema height axis maps to CAD Z
// and the schema depth axis maps to CAD Y. The permutation is applied here,
// in both directions, and nowhere else.

// ToCAD converts a schema coordinate vector into kernel coordinates.
func ToCAD(v []float64) (r3.Vec, error) {
	switch len(v) {
	case 2:
		return r3.Vec{X: v[0], Y: 0, Z: v[1]}, nil
	case 3:
		return r3.Vec{X: v[0], Y: v[2], Z: v[1]}, nil
	}
	return r3.Vec{}, fmt.Errorf("malformed coordinate vector (length %d, expected 2 or 3): %v", len(v), v)
}

// ToSchema converts kernel coordinates back into the schema's 3-vector form.
func ToSchema(v r3.Vec) []float64 {
	return []float64{v.X, v.Z, v.Y}
}
