package magcad

import (
	"log"
	"math"

	"github.com/soypat/sdf"
	form2 "github.com/soypat/sdf/form2/must2"
	form3 "github.com/soypat/sdf/form3/must3"
	clipper "github.com/swill/go.clipper"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	// clipper works on scaled integer coordinates; profile dimensions are
	// meters, so the grid resolution here is 0.1 micrometer
	PRECISION float64 = 1e7
	CLIP_DIST         = 0.7  // In order to just clean duplicate points: .7*.7 = 0.49 < 0.5
	SCALE             = 1000 // schema dimensions are meters, kernel geometry is millimeters
	OVERLAP           = 0.001 // relative oversize so boolean cuts never leave a zero-thickness skin

	// RESIDUAL_GAP keeps the mating faces of two half sets from sharing a
	// boundary face, which some kernels treat as a degenerate intersection.
	RESIDUAL_GAP = 0.0000025
)

type Point struct { // 2D profile point, used a LOT
	X, Y float64
}

type Path []Point

// Sets the path to the absolute positioning of the Path relative to an origin Point 'r'.
func (ps Path) Rel(r Point) {
	for i := range ps {
		ps[i].X += r.X
		ps[i].Y += r.Y
	}
}

// Copies the Path
func (ps Path) Copy() Path {
	dup := Path{}
	for i := range ps {
		dup = append(dup, Point{ps[i].X, ps[i].Y})
	}
	return dup
}

// Rotates each point in the path 'r' degrees around 'a'.
func (ps Path) RotatePath(r float64, a Point) {
	for i := range ps {
		px := ps[i].X
		py := ps[i].Y
		ps[i].X = math.Cos(radians(r))*(px-a.X) - math.Sin(radians(r))*(py-a.Y) + a.X
		ps[i].Y = math.Sin(radians(r))*(px-a.X) + math.Cos(radians(r))*(py-a.Y) + a.Y
	}
}

// SplitOnAxis path to be drawn by SVGo
func (ps Path) SplitOnAxis() ([]float64, []float64) {
	xs := make([]float64, 0)
	ys := make([]float64, 0)
	for i := range ps {
		xs = append(xs, ps[i].X)
		ys = append(ys, ps[i].Y)
	}
	return xs, ys
}

func (ps Path) ToClipperPath() clipper.Path {
	p := make(clipper.Path, 0)
	for i := range ps {
		p = append(p, &clipper.IntPoint{clipper.CInt(ps[i].X * PRECISION), clipper.CInt(ps[i].Y * PRECISION)})
	}
	c := clipper.NewClipper(clipper.IoNone)
	p = c.CleanPolygon(p, CLIP_DIST) // clean duplicates
	return p
}

func FromClipperPath(cp clipper.Path) Path {
	c := clipper.NewClipper(clipper.IoNone)
	cp = c.CleanPolygon(cp, CLIP_DIST) // clean duplicates
	p := make(Path, 0)
	for i := range cp {
		p = append(p, Point{float64(cp[i].X) / PRECISION, float64(cp[i].Y) / PRECISION})
	}
	return p
}

// Vertices converts the path into kernel sketch vertices.
func (ps Path) Vertices() []r2.Vec {
	vs := make([]r2.Vec, 0, len(ps))
	for i := range ps {
		vs = append(vs, r2.Vec{X: ps[i].X, Y: ps[i].Y})
	}
	return vs
}

// UnionPaths fuses a set of closed profile paths, so multi-part profiles
// (PQ lobes, chamfer patches) never reach the kernel with crossing outlines.
func UnionPaths(paths []Path) []Path {
	if len(paths) == 0 {
		return paths
	}
	c := clipper.NewClipper(clipper.IoNone)
	c.AddPath(Path{}.ToClipperPath(), clipper.PtSubject, true)
	for _, poly := range paths {
		c.AddPath(poly.ToClipperPath(), clipper.PtClip, true)
	}
	solution, ok := c.Execute1(clipper.CtUnion, clipper.PftNonZero, clipper.PftNonZero)
	if !ok {
		log.Printf("ERROR fusing profile paths, keeping originals\npaths: %#v", paths)
		return paths
	}
	fused := make([]Path, 0)
	for _, cpath := range solution {
		fused = append(fused, FromClipperPath(cpath))
	}
	return fused
}

// DiffPaths subtracts the cut paths from the keep paths.
func DiffPaths(keep, cut []Path) []Path {
	if len(cut) == 0 {
		return keep
	}
	c := clipper.NewClipper(clipper.IoNone)
	for _, poly := range keep {
		c.AddPath(poly.ToClipperPath(), clipper.PtSubject, true)
	}
	for _, poly := range cut {
		c.AddPath(poly.ToClipperPath(), clipper.PtClip, true)
	}
	solution, ok := c.Execute1(clipper.CtDifference, clipper.PftNonZero, clipper.PftNonZero)
	if !ok {
		log.Printf("ERROR cutting profile paths, keeping originals\nkeep: %#v\ncut: %#v", keep, cut)
		return keep
	}
	remaining := make([]Path, 0)
	for _, cpath := range solution {
		remaining = append(remaining, FromClipperPath(cpath))
	}
	return remaining
}

// ArcPath approximates a circular arc from angle 'a0' to 'a1' (degrees,
// counter-clockwise) around (cx,cy) with 's' segments.
func ArcPath(cx, cy, r, a0, a1 float64, s int) Path {
	pts := make(Path, 0, s+1)
	for j := 0; j <= s; j++ {
		a := radians(a0 + (a1-a0)*float64(j)/float64(s))
		pts = append(pts, Point{cx + r*math.Cos(a), cy + r*math.Sin(a)})
	}
	return pts
}

// CirclePath approximates a full circle with 4*s segments.
func CirclePath(cx, cy, r float64, s int) Path {
	pts := ArcPath(cx, cy, r, 0, 360, 4*s)
	return pts[:len(pts)-1] // drop the duplicated closing point
}

// RectPath is a rectangle of full extents w x h centered at (cx,cy).
func RectPath(cx, cy, w, h float64) Path {
	return Path{
		{cx - w/2, cy - h/2}, {cx + w/2, cy - h/2},
		{cx + w/2, cy + h/2}, {cx - w/2, cy + h/2},
	}
}

func SurfaceArea(paths []Path) float64 {
	sa := 0.0
	for _, path := range paths {
		area := 0.0
		i := len(path) - 1
		for j := 0; j < len(path); j++ {
			area += (path[i].X + path[j].X) * (path[i].Y - path[j].Y)
			i = j // set previous to current for next pass
		}
		sa += math.Abs(area / 2)
	}
	return sa
}

// convert degrees to radians
func radians(deg float64) float64 {
	return (deg * math.Pi) / 180
}

// ---------------------------------------------------------------------------
// Kernel construction wrappers.
//
// Every primitive call is a result-with-fallback: a kernel panic is recovered,
// logged as a warning and answered with the designated fallback solid. The
// priority is to always produce some geometry, even if visually approximate.
// ---------------------------------------------------------------------------

func construct(name string, build func() sdf.SDF3, fallback func() sdf.SDF3) sdf.SDF3 {
	s := func() (s sdf.SDF3) {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("WARN kernel failed constructing %s (%v), using fallback", name, r)
				s = nil
			}
		}()
		return build()
	}()
	if s == nil && fallback != nil {
		return fallback()
	}
	return s
}

// Box is a kernel box of full extents (x,y,z) centered at the origin.
func Box(x, y, z float64) sdf.SDF3 {
	return construct("box", func() sdf.SDF3 {
		return form3.Box(r3.Vec{X: x, Y: y, Z: z}, 0)
	}, func() sdf.SDF3 {
		return form3.Box(r3.Vec{X: math.Max(x, 1e-9), Y: math.Max(y, 1e-9), Z: math.Max(z, 1e-9)}, 0)
	})
}

// Cylinder is a kernel cylinder along Z, centered at the origin.
func Cylinder(height, radius float64) sdf.SDF3 {
	return construct("cylinder", func() sdf.SDF3 {
		return form3.Cylinder(height, radius, 0)
	}, func() sdf.SDF3 {
		return Box(2*radius, 2*radius, height)
	})
}

// Extrude extrudes closed profile paths along Z to the given total height,
// centered on the XY plane. A degenerate sketch degrades to its bounding box.
func Extrude(paths []Path, height float64) sdf.SDF3 {
	parts := make([]sdf.SDF3, 0, len(paths))
	for _, path := range paths {
		p := path
		s := construct("polygon extrusion", func() sdf.SDF3 {
			return sdf.Extrude3D(form2.Polygon(p.Vertices()), height)
		}, func() sdf.SDF3 {
			xmin, xmax, ymin, ymax := pathBounds(p)
			b := Box(xmax-xmin, ymax-ymin, height)
			return Move(b, r3.Vec{X: (xmin + xmax) / 2, Y: (ymin + ymax) / 2})
		})
		parts = append(parts, s)
	}
	return Fuse(parts)
}

// Revolve sweeps a 2D profile about the Z axis by 'theta' radians starting
// from the +X half plane. A failed partial sweep degrades to a full one.
func Revolve(profile sdf.SDF2, theta float64) sdf.SDF3 {
	return construct("partial revolution", func() sdf.SDF3 {
		return sdf.Revolve3D(profile, theta)
	}, func() sdf.SDF3 {
		return sdf.Revolve3D(profile, 2*math.Pi)
	})
}

// Torus revolves a round wire section into a full torus.
func Torus(major, minor float64) sdf.SDF3 {
	section := sdf.Transform2D(form2.Circle(minor), sdf.Translate2d(r2.Vec{X: major}))
	return Revolve(section, 2*math.Pi)
}

// RectTorus revolves a rectangular wire section (w radial, h axial) into a
// full 360 degree sweep.
func RectTorus(major, w, h float64) sdf.SDF3 {
	section := sdf.Transform2D(form2.Box(r2.Vec{X: w, Y: h}, 0), sdf.Translate2d(r2.Vec{X: major}))
	return Revolve(section, 2*math.Pi)
}

// Stadium is a rectangle capped by two semicircles (full length along X,
// full width along Y), extruded to the given height. The caller is expected
// to have handled the length <= width degeneracy already.
func Stadium(length, width, height float64) sdf.SDF3 {
	return construct("stadium", func() sdf.SDF3 {
		return sdf.Extrude3D(form2.Box(r2.Vec{X: length, Y: width}, width/2), height)
	}, func() sdf.SDF3 {
		return Cylinder(height, width/2)
	})
}

// Move translates a solid.
func Move(s sdf.SDF3, v r3.Vec) sdf.SDF3 {
	return sdf.Transform3D(s, sdf.Translate3d(v))
}

// Fuse unions solids pairwise as a left fold, skipping nil contributions.
func Fuse(solids []sdf.SDF3) sdf.SDF3 {
	var result sdf.SDF3
	for _, s := range solids {
		if s == nil {
			continue
		}
		if result == nil {
			result = s
			continue
		}
		result = sdf.Union3D(result, s)
	}
	return result
}

// Cut subtracts 'tool' from 'from', tolerating nil on either side.
func Cut(from, tool sdf.SDF3) sdf.SDF3 {
	if from == nil || tool == nil {
		return from
	}
	return sdf.Difference3D(from, tool)
}

func pathBounds(ps Path) (xmin, xmax, ymin, ymax float64) {
	for i, p := range ps {
		if p.X < xmin || i == 0 {
			xmin = p.X
		}
		if p.X > xmax || i == 0 {
			xmax = p.X
		}
		if p.Y < ymin || i == 0 {
			ymin = p.Y
		}
		if p.Y > ymax || i == 0 {
			ymax = p.Y
		}
	}
	return
}
