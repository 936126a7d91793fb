package magcad

import (
	"fmt"
	"math"

	"github.com/soypat/sdf"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	PART_HALF_SET = "half set"
	PART_TOROIDAL = "toroidal"
	PART_SPACER   = "spacer"
)

// GeometricalPart is one entry of the core's geometrical description: an
// oriented half set, a toroidal ring, or a spacer shim for additive gaps.
// Parts are read once per assembly call and never mutated; each maps 1:1 to
// one solid contribution.
type GeometricalPart struct {
	Type        string          `json:"type"`
	Material    string          `json:"material"`
	Shape       ShapeDescriptor `json:"shape"`
	Coordinates []float64       `json:"coordinates"`
	Rotation    []float64       `json:"rotation"`
	Machining   []Machining     `json:"machining"`
	Dimensions  []float64       `json:"dimensions"` // spacer extents only
}

// BuildCore walks the geometrical description, synthesizes and places every
// piece, applies machinings and the residual gap, fuses pieces and spacers
// into one solid and applies the canonical millimeter scale. A missing piece
// list yields a nil result, not an error.
func BuildCore(parts []GeometricalPart) (sdf.SDF3, error) {
	core, spacers, err := buildCoreParts(parts)
	if err != nil {
		return nil, err
	}
	fused := Fuse([]sdf.SDF3{core, spacers})
	return scaleToMillimeters(fused), nil
}

// buildCoreParts synthesizes the pieces unscaled so the facade can compose
// them with the coil before the single final scale. Spacers come back as
// their own solid so callers can render them distinctly.
func buildCoreParts(parts []GeometricalPart) (core, spacers sdf.SDF3, err error) {
	if len(parts) == 0 {
		return nil, nil, nil
	}
	solids := make([]sdf.SDF3, 0, len(parts))
	deferred := make([]GeometricalPart, 0)
	for i, part := range parts {
		switch part.Type {
		case PART_SPACER:
			deferred = append(deferred, part) // spacers get their own pass
			continue
		case PART_HALF_SET, PART_TOROIDAL:
		default:
			return nil, nil, fmt.Errorf("geometricalDescription[%d]: unknown part type '%s'", i, part.Type)
		}

		piece, err := SynthesizeShape(part.Shape)
		if err != nil {
			return nil, nil, fmt.Errorf("geometricalDescription[%d]: %w", i, err)
		}
		s := piece.Solid

		// orientation: the schema's axis 1 is CAD Z and axis 2 is CAD Y;
		// the permutation applies before the rotations, which run X, Z, Y
		flipped := false
		if len(part.Rotation) == 3 {
			s = orient(s, part.Rotation)
			flipped = math.Abs(part.Rotation[0]) > math.Pi/2
		}

		// machinings in list order, centered on their height coordinate and
		// applied before the assembly translation; the tool follows the
		// piece's orientation so a flipped half set grinds its actual column
		for mi, machining := range part.Machining {
			tool, err := machining.Tool(piece, part.Rotation)
			if err != nil {
				return nil, nil, fmt.Errorf("geometricalDescription[%d].machining[%d]: %w", i, mi, err)
			}
			s = Cut(s, tool)
		}

		if len(part.Coordinates) > 0 {
			at, err := ToCAD(part.Coordinates)
			if err != nil {
				return nil, nil, fmt.Errorf("geometricalDescription[%d]: %w", i, err)
			}
			s = Move(s, at)
		}

		// the residual gap keeps the two mating faces from coinciding,
		// which some kernels treat as a degenerate zero-volume intersection
		if part.Type == PART_HALF_SET {
			offset := -RESIDUAL_GAP
			if flipped {
				offset = RESIDUAL_GAP
			}
			s = Move(s, r3.Vec{Z: offset})
		}

		solids = append(solids, s)
	}

	return Fuse(solids), buildSpacers(deferred), nil
}

// buildSpacers renders the deferred spacer shims: plain boxes at their
// assembly coordinates.
func buildSpacers(parts []GeometricalPart) sdf.SDF3 {
	solids := make([]sdf.SDF3, 0, len(parts))
	for _, part := range parts {
		if len(part.Dimensions) != 3 {
			continue // a spacer without dimensions contributes nothing
		}
		size, err := ToCAD(part.Dimensions)
		if err != nil {
			continue
		}
		s := Box(size.X, size.Y, size.Z)
		if len(part.Coordinates) > 0 {
			at, err := ToCAD(part.Coordinates)
			if err == nil {
				s = Move(s, at)
			}
		}
		solids = append(solids, s)
	}
	return Fuse(solids)
}

// orient applies a schema rotation vector to a solid: X first, then Z,
// then Y. Pieces and their machining tools go through the same composition.
func orient(s sdf.SDF3, rotation []float64) sdf.SDF3 {
	if s == nil || len(rotation) != 3 {
		return s
	}
	rx, rz, ry := rotation[0], rotation[1], rotation[2]
	return sdf.Transform3D(s, sdf.RotateY(ry).Mul(sdf.RotateZ(rz)).Mul(sdf.RotateX(rx)))
}

func scaleToMillimeters(s sdf.SDF3) sdf.SDF3 {
	if s == nil {
		return nil
	}
	return sdf.Transform3D(s, sdf.Scale3d(r3.Vec{X: SCALE, Y: SCALE, Z: SCALE}))
}
