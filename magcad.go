package magcad

import (
	"fmt"
	"log"

	"github.com/ncw/swift"
	"github.com/soypat/sdf"
)

const (
	STORE_SWIFT = "swift"
	STORE_LOCAL = "local"
)

// MAG is the synthesizer instance: it is populated straight from the input
// JSON, Build() turns the magnetic description into solids and preview
// profiles, writes the output files and hands them to the configured store.
type MAG struct {
	Hash          string
	UOM           string
	MeshCells     int                 `json:"mesh-cells"`
	Magnetic      Magnetic            `json:"magnetic"`
	Solids        map[string]sdf.SDF3 `json:"-"`
	Profiles      map[string][]Path   `json:"-"`
	SvgStyle      string
	LineColor     string  `json:"line-color"`
	LineWeight    float64 `json:"line-weight"`
	Result        Result
	Swift         *swift.Connection `json:"-"`
	SwiftBucket   string
	FileStore     string
	FileDirectory string
	FileServePath string
}

// Magnetic mirrors the input schema: a core plus a coil.
type Magnetic struct {
	Core CoreDesc `json:"core"`
	Coil CoilDesc `json:"coil"`
}

type CoreDesc struct {
	Name                   string            `json:"name"`
	FunctionalDescription  CoreFunctional    `json:"functionalDescription"`
	GeometricalDescription []GeometricalPart `json:"geometricalDescription"`
}

// CoreFunctional carries the declarative core description; the shape here
// is the fallback when no geometrical description was provided.
type CoreFunctional struct {
	Type     string          `json:"type"`
	Material interface{}     `json:"material"`
	Shape    ShapeDescriptor `json:"shape"`
}

type CoilDesc struct {
	Bobbin                BobbinWrapper       `json:"bobbin"`
	FunctionalDescription []WindingFunctional `json:"functionalDescription"`
	TurnsDescription      []TurnDescriptor    `json:"turnsDescription"`
	GroupsDescription     []GroupDescriptor   `json:"groupsDescription"`
}

type BobbinWrapper struct {
	ProcessedDescription BobbinDescriptor `json:"processedDescription"`
}

type WindingFunctional struct {
	Name string         `json:"name"`
	Wire WireDescriptor `json:"wire"`
}

// GroupDescriptor is a planar winding group: one PCB layer stack rendered
// as a board solid.
type GroupDescriptor struct {
	Name        string    `json:"name"`
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
	Dimensions  []float64 `json:"dimensions"`
}

type Result struct {
	Plates  []string                  `json:"plates"`
	Formats []string                  `json:"formats"`
	Details map[string]*ResultDetails `json:"details"`
}

type ResultDetails struct {
	Name    string   `json:"name"`
	Width   float64  `json:"width"`
	Height  float64  `json:"height"`
	Area    float64  `json:"area"`
	Exports []Export `json:"exports"`
}

type Export struct {
	Ext string `json:"ext"`
	Url string `json:"url"`
}

// UploadCtl tracks one upload job (solid name + format) through its attempts.
type UploadCtl struct {
	Name    string
	Ext     string
	Export  *Export
	DelFile string
	Error   error
	Attempt int
}

func New() *MAG {
	m := &MAG{
		Hash:       "",
		UOM:        "mm",
		MeshCells:  200,
		Solids:     make(map[string]sdf.SDF3),
		Profiles:   make(map[string][]Path),
		SvgStyle:   "fill:none",
		LineColor:  "black",
		LineWeight: 0.05,
		Result: Result{
			Plates:  []string{},
			Formats: []string{"stl", "svg"},
			Details: make(map[string]*ResultDetails),
		},
	}
	return m
}

// Build runs the synthesis pipeline: core pieces and spacers, the bobbin,
// every wound turn and any planar group boards, all composed unscaled and
// scaled to millimeters in one final step per solid.
func (m *MAG) Build() error {
	m.SvgStyle = fmt.Sprintf("%s;stroke-width:%fmm;stroke:%s", m.SvgStyle, m.LineWeight, m.LineColor)

	core, spacers, err := buildCoreParts(m.Magnetic.Core.GeometricalDescription)
	if err != nil {
		log.Printf("ERROR building core, exiting early...\n%s", err.Error())
		return err
	}
	if core == nil && m.Magnetic.Core.FunctionalDescription.Shape.Family != "" {
		// no geometrical description: render the bare functional shape
		piece, err := SynthesizeShape(m.Magnetic.Core.FunctionalDescription.Shape)
		if err != nil {
			log.Printf("ERROR building core shape, exiting early...\n%s", err.Error())
			return err
		}
		core = piece.Solid
		m.Profiles["core"] = piece.Profile
	} else if len(m.Magnetic.Core.GeometricalDescription) > 0 {
		if piece, err := SynthesizeShape(m.Magnetic.Core.GeometricalDescription[0].Shape); err == nil {
			m.Profiles["core"] = piece.Profile
		}
	}
	m.addSolid("core", core)
	m.addSolid("spacer", spacers)

	bobbin := m.Magnetic.Coil.Bobbin.ProcessedDescription
	bobbin_solid, err := SynthesizeBobbin(bobbin)
	if err != nil {
		log.Printf("ERROR building bobbin, exiting early...\n%s", err.Error())
		return err
	}
	m.addSolid("bobbin", bobbin_solid)

	turns := make([]sdf.SDF3, 0, len(m.Magnetic.Coil.TurnsDescription))
	for i, turn := range m.Magnetic.Coil.TurnsDescription {
		s, err := SynthesizeTurn(turn, bobbin, m.wireFor(turn.Winding))
		if err != nil {
			log.Printf("ERROR building turnsDescription[%d], exiting early...\n%s", i, err.Error())
			return err
		}
		turns = append(turns, s)
	}
	m.addSolid("coil", Fuse(turns))
	m.addSolid("boards", buildGroupBoards(m.Magnetic.Coil.GroupsDescription))

	m.finalizeDetails()

	if err := m.WriteOutputFiles(); err != nil {
		log.Printf("ERROR writing output files, exiting early...\n%s", err.Error())
		return err
	}
	if m.FileStore == STORE_SWIFT {
		m.StoreSwiftFiles()
	}
	if m.FileStore == STORE_LOCAL {
		m.StoreLocalFiles()
	}
	return nil
}

// addSolid registers a named output solid, scaled to millimeters. Nil solids
// (empty coils, bobbin-less windings) register nothing.
func (m *MAG) addSolid(name string, s sdf.SDF3) {
	if s == nil {
		return
	}
	m.Solids[name] = scaleToMillimeters(s)
	m.Result.Plates = append(m.Result.Plates, name)
	m.Result.Details[name] = &ResultDetails{Name: name}
}

// wireFor resolves the wire of the named winding, falling back to the first
// winding when the turn does not reference one.
func (m *MAG) wireFor(winding string) WireDescriptor {
	for _, w := range m.Magnetic.Coil.FunctionalDescription {
		if w.Name == winding {
			return w.Wire
		}
	}
	if len(m.Magnetic.Coil.FunctionalDescription) > 0 {
		return m.Magnetic.Coil.FunctionalDescription[0].Wire
	}
	return WireDescriptor{}
}

// buildGroupBoards renders planar winding groups as board slabs at their
// assembly coordinates.
func buildGroupBoards(groups []GroupDescriptor) sdf.SDF3 {
	solids := make([]sdf.SDF3, 0, len(groups))
	for _, group := range groups {
		if len(group.Dimensions) != 3 {
			continue
		}
		size, err := ToCAD(group.Dimensions)
		if err != nil {
			continue
		}
		s := Box(size.X, size.Y, size.Z)
		if len(group.Coordinates) > 0 {
			if at, err := ToCAD(group.Coordinates); err == nil {
				s = Move(s, at)
			}
		}
		solids = append(solids, s)
	}
	return Fuse(solids)
}

// finalizeDetails fills the result dimensions from the solid bounds, in
// output units.
func (m *MAG) finalizeDetails() {
	for name, s := range m.Solids {
		bb := s.Bounds()
		detail := m.Result.Details[name]
		detail.Width = bb.Max.X - bb.Min.X
		detail.Height = bb.Max.Y - bb.Min.Y
		if profile, present := m.Profiles[name]; present {
			detail.Area = SurfaceArea(profile) * SCALE * SCALE
		}
	}
}
