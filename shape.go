package magcad

import (
	"fmt"
	"sort"
	"strings"

	"github.com/soypat/sdf"
	"gonum.org/v1/gonum/spatial/r3"
)

// Core shape families following the IEC outline standard.
const (
	FAMILY_C   = "c"
	FAMILY_E   = "e"
	FAMILY_EC  = "ec"
	FAMILY_EFD = "efd"
	FAMILY_EL  = "el"
	FAMILY_EP  = "ep"
	FAMILY_EPX = "epx"
	FAMILY_EQ  = "eq"
	FAMILY_ER  = "er"
	FAMILY_ETD = "etd"
	FAMILY_LP  = "lp"
	FAMILY_P   = "p"
	FAMILY_PM  = "pm"
	FAMILY_PQ  = "pq"
	FAMILY_RM  = "rm"
	FAMILY_T   = "t"
	FAMILY_U   = "u"
	FAMILY_UR  = "ur"

	COLUMN_ROUND       = "round"
	COLUMN_RECTANGULAR = "rectangular"
	COLUMN_OBLONG      = "oblong"
	COLUMN_IRREGULAR   = "irregular"

	// a stadium column whose straight section is shorter than this is a circle
	DEGEN_TOL = 1e-4
)

// ShapeDescriptor selects a shape family, a variant dimension set and the
// named dimensions that drive the synthesis.
type ShapeDescriptor struct {
	Family        string                 `json:"family"`
	FamilySubtype string                 `json:"familySubtype"`
	Name          string                 `json:"name"`
	Dimensions    map[string]interface{} `json:"dimensions"`
}

// requiredDims lists the dimension keys each family must provide. Synthesis
// fails with a descriptive error when a required key is absent; only truly
// optional keys (chamfers, offsets, secondary column extents) default.
var requiredDims = map[string][]string{
	FAMILY_C:   {"A", "B", "C", "D", "E"},
	FAMILY_E:   {"A", "B", "C", "D", "E", "F"},
	FAMILY_EC:  {"A", "B", "C", "D", "E", "F"},
	FAMILY_EFD: {"A", "B", "C", "D", "E", "F", "F2"},
	FAMILY_EL:  {"A", "B", "C", "D", "E", "F"},
	FAMILY_EP:  {"A", "B", "C", "D", "E", "F"},
	FAMILY_EPX: {"A", "B", "C", "D", "E", "F"},
	FAMILY_EQ:  {"A", "B", "C", "D", "E", "F"},
	FAMILY_ER:  {"A", "B", "C", "D", "E", "F"},
	FAMILY_ETD: {"A", "B", "C", "D", "E", "F"},
	FAMILY_LP:  {"A", "B", "C", "D", "E", "F"},
	FAMILY_P:   {"A", "B", "C", "D", "E", "F"},
	FAMILY_PM:  {"A", "B", "C", "D", "E", "F"},
	FAMILY_PQ:  {"A", "B", "C", "D", "E", "F", "G"},
	FAMILY_RM:  {"A", "B", "C", "D", "E", "F", "J"},
	FAMILY_T:   {"A", "B", "C"},
	FAMILY_U:   {"A", "B", "C", "D", "E"},
	FAMILY_UR:  {"A", "B", "C"},
}

// SupportedFamilies returns the closed family list, sorted.
func SupportedFamilies() []string {
	families := make([]string, 0, len(requiredDims))
	for f := range requiredDims {
		families = append(families, f)
	}
	sort.Strings(families)
	return families
}

// UnknownFamilyError lists the supported families in its message so a bad
// schema is immediately actionable.
func UnknownFamilyError(family string) error {
	return fmt.Errorf("unknown shape family '%s', supported families: %s",
		family, strings.Join(SupportedFamilies(), ", "))
}

// columnInfo carries what the machining step needs to know about the piece:
// the central column footprint and where the lateral legs sit.
type columnInfo struct {
	Shape        string  // round | rectangular | oblong
	Width        float64 // full extent along X (diameter for round)
	Depth        float64 // full extent along Y
	CenterY      float64 // column center offset (EP/EPX columns sit off-center)
	LateralX     float64 // |x| of the lateral leg centers
	LateralWidth float64 // full extent of one lateral leg along X
	LateralDepth float64 // full extent of one lateral leg along Y
}

// CorePiece is the synthesized result for one core piece: the finished solid
// in its canonical position (mating face on z=0, body below it; toroids are
// centered on the origin), plus everything the assembly, testing and preview
// steps need. It is a plain value threaded between the profile, extrusion and
// post-processing steps; nothing here is shared scratch state.
type CorePiece struct {
	Family  string
	Solid   sdf.SDF3
	Height  float64 // extrusion height of the piece
	Profile []Path  // top-view outline(s) of the uncut body
	Window  sdf.SDF3
	// WindowBounds is the uncut winding-window region: the window volume
	// fused with the retained column exactly fills it.
	WindowBounds r3.Box
	Column       columnInfo
}

// SynthesizeShape resolves the descriptor dimensions and dispatches to the
// family synthesis routine.
func SynthesizeShape(desc ShapeDescriptor) (*CorePiece, error) {
	dims, err := ResolveDimensions(desc.Dimensions)
	if err != nil {
		return nil, err
	}
	subtype := desc.FamilySubtype
	if subtype == "" {
		subtype = "1"
	}
	family := strings.ToLower(desc.Family)
	if err := checkDims(family, dims); err != nil {
		return nil, err
	}
	switch family {
	case FAMILY_E, FAMILY_EC, FAMILY_EL, FAMILY_EQ, FAMILY_ER, FAMILY_ETD, FAMILY_LP:
		return ePiece(family, dims)
	case FAMILY_EP, FAMILY_EPX:
		return epPiece(family, dims)
	case FAMILY_EFD:
		return efdPiece(dims)
	case FAMILY_P:
		return pPiece(dims)
	case FAMILY_PQ:
		return pqPiece(dims)
	case FAMILY_RM:
		return rmPiece(dims, subtype)
	case FAMILY_PM:
		return pmPiece(dims, subtype, angleDimension(desc.Dimensions, "alpha"))
	case FAMILY_T:
		return tPiece(dims)
	case FAMILY_C, FAMILY_U:
		return uPiece(family, dims)
	case FAMILY_UR:
		return urPiece(dims, subtype)
	}
	return nil, UnknownFamilyError(desc.Family)
}

func checkDims(family string, dims map[string]float64) error {
	keys, known := requiredDims[family]
	if !known {
		return UnknownFamilyError(family)
	}
	for _, key := range keys {
		if _, present := dims[key]; !present {
			return fmt.Errorf("shape family '%s' requires dimension '%s'", family, key)
		}
	}
	return nil
}

// Machining is a subtractive cut against a piece. Coordinates index 1 is the
// CENTER of the cut along the core height axis; the cut spans length/2 on
// each side of it. Index 0 selects the column: 0 cuts the central column,
// a signed value cuts the lateral column on that side.
type Machining struct {
	Coordinates []float64 `json:"coordinates"`
	Length      float64   `json:"length"`
}

// Tool builds the cutting solid for this machining: a box for rectangular
// columns, a cylinder for round ones, positioned at the signed side for
// lateral cuts. The column footprint is known in the piece's canonical frame,
// so the tool is placed there first and carried through the same rotation the
// piece gets; a flipped half set then grinds its actual column, not the
// mirror position. The height coordinate centers the cut in the rotated frame.
func (m Machining) Tool(piece *CorePiece, rotation []float64) (sdf.SDF3, error) {
	if len(m.Coordinates) != 2 {
		return nil, fmt.Errorf("malformed machining coordinate vector (length %d, expected 2): %v",
			len(m.Coordinates), m.Coordinates)
	}
	x := m.Coordinates[0]
	h := m.Coordinates[1] // center of the cut along the height axis
	col := piece.Column
	var tool sdf.SDF3
	var at r3.Vec
	if x == 0 {
		// central column cut; slightly oversized so no skin survives
		switch col.Shape {
		case COLUMN_ROUND:
			tool = Cylinder(m.Length, col.Width/2*(1+OVERLAP))
		case COLUMN_OBLONG:
			tool = Stadium(col.Width*(1+OVERLAP), col.Depth*(1+OVERLAP), m.Length)
		default:
			tool = Box(col.Width*(1+OVERLAP), col.Depth*(1+OVERLAP), m.Length)
		}
		at = r3.Vec{X: 0, Y: col.CenterY}
	} else {
		side := 1.0
		if x < 0 {
			side = -1.0
		}
		tool = Box(col.LateralWidth*(1+OVERLAP), col.LateralDepth*(1+OVERLAP), m.Length)
		at = r3.Vec{X: side * col.LateralX, Y: 0}
	}
	placed := orient(Move(tool, at), rotation)
	return Move(placed, r3.Vec{Z: h}), nil
}
