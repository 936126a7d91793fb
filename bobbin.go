package magcad

import (
	"github.com/soypat/sdf"
	"gonum.org/v1/gonum/spatial/r3"
)

// WindingWindow is one winding region of the bobbin. Concentric windows
// carry height/width, toroidal windows carry radialHeight/angle; a nonzero
// angle is what marks the whole bobbin as toroidal.
type WindingWindow struct {
	Height       float64   `json:"height"`
	Width        float64   `json:"width"`
	RadialHeight float64   `json:"radialHeight"`
	Angle        float64   `json:"angle"`
	Coordinates  []float64 `json:"coordinates"`
}

// BobbinDescriptor is the bobbin's processed description. ColumnWidth and
// ColumnDepth are half extents, measured from the column axis to the column
// surface the bobbin sleeve sits on.
type BobbinDescriptor struct {
	ColumnShape     string          `json:"columnShape"`
	ColumnWidth     float64         `json:"columnWidth"`
	ColumnDepth     float64         `json:"columnDepth"`
	ColumnThickness float64         `json:"columnThickness"`
	WallThickness   float64         `json:"wallThickness"`
	WindingWindows  []WindingWindow `json:"windingWindows"`
}

// SynthesizeBobbin builds the flanged sleeve around the central column:
// an outer shell matching the column shape, hollowed to the winding region
// between the two flanges, with the column bore drilled through. Bobbins
// with zero wall or tube thickness describe a bare winding area rather than
// a physical part, and toroidal windings have no bobbin at all; both return
// a nil solid with no error.
func SynthesizeBobbin(bobbin BobbinDescriptor) (sdf.SDF3, error) {
	if bobbin.ColumnThickness == 0 || bobbin.WallThickness == 0 {
		return nil, nil
	}
	if len(bobbin.WindingWindows) == 0 {
		return nil, nil
	}
	ww := bobbin.WindingWindows[0]
	if ww.Angle != 0 {
		return nil, nil
	}

	cw, cd := bobbin.ColumnWidth, bobbin.ColumnDepth
	total_h := ww.Height + 2*bobbin.WallThickness
	ow := cw + ww.Width
	od := cd + ww.Width

	shell := columnSolid(bobbin.ColumnShape, ow, od, total_h)

	// winding region between the flanges, kept clear down to the tube
	region := columnSolid(bobbin.ColumnShape, ow*(1+OVERLAP), od*(1+OVERLAP), ww.Height)
	tube := columnSolid(bobbin.ColumnShape, cw, cd, ww.Height*(1+OVERLAP))
	cavity := Cut(region, tube)

	// column bore through the full height
	bore := columnSolid(bobbin.ColumnShape, cw-bobbin.ColumnThickness, cd-bobbin.ColumnThickness, total_h*(1+OVERLAP))

	solid := Cut(Cut(shell, cavity), bore)

	// the window coordinate centers the bobbin along the column axis; the
	// radial component is the window center, not an assembly offset
	if len(ww.Coordinates) >= 2 && ww.Coordinates[1] != 0 {
		solid = Move(solid, r3.Vec{Z: ww.Coordinates[1]})
	}
	return solid, nil
}

// columnSolid is a centered solid matching the column cross-section from
// its half extents.
func columnSolid(shape string, halfW, halfD, height float64) sdf.SDF3 {
	switch shape {
	case COLUMN_RECTANGULAR, COLUMN_IRREGULAR:
		return Box(2*halfW, 2*halfD, height)
	case COLUMN_OBLONG:
		if halfW-halfD > DEGEN_TOL {
			return Stadium(2*halfW, 2*halfD, height)
		}
		return Cylinder(height, halfD)
	default:
		return Cylinder(height, halfW)
	}
}
