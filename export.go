package magcad

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	svg "github.com/ajstarks/svgo/float"
	"github.com/soypat/sdf/render"
)

// margin around the SVG preview outline, output units
const DMZ = 5.0

// WriteOutputFiles renders every output solid: an STL mesh plus a top-view
// SVG outline per solid.
func (m *MAG) WriteOutputFiles() error {
	_ = os.Mkdir(m.FileDirectory, 0755)
	cells := m.MeshCells
	if cells <= 0 {
		cells = 200
	}
	for _, name := range m.Result.Plates {
		abs_stl, err := filepath.Abs(fmt.Sprintf("%s%s_%s.stl", m.FileDirectory, m.Hash, name))
		if err != nil {
			log.Printf("ERROR Creating export path: %s, %s | %s", m.Hash, name, err.Error())
			return err
		}
		err = render.CreateSTL(abs_stl, render.NewOctreeRenderer(m.Solids[name], cells))
		if err != nil {
			log.Printf("ERROR Creating stl file: %s, %s | %s", m.Hash, name, err.Error())
			return err
		}

		if err := m.writeSvgPreview(name); err != nil {
			return err
		}
	}
	return nil
}

// writeSvgPreview draws the top-view outline of a solid: its recorded
// profile when the synthesis kept one, the bounding rectangle otherwise.
func (m *MAG) writeSvgPreview(name string) error {
	paths := m.previewPaths(name)

	xmin, xmax, ymin, ymax := pathBounds(paths[0])
	for _, path := range paths[1:] {
		x0, x1, y0, y1 := pathBounds(path)
		if x0 < xmin {
			xmin = x0
		}
		if x1 > xmax {
			xmax = x1
		}
		if y0 < ymin {
			ymin = y0
		}
		if y1 > ymax {
			ymax = y1
		}
	}
	// shift the outline into the positive quadrant with a margin
	offset := Point{DMZ - xmin, DMZ - ymin}
	width := xmax - xmin + 2*DMZ
	height := ymax - ymin + 2*DMZ

	abs_svg, err := filepath.Abs(fmt.Sprintf("%s%s_%s.svg", m.FileDirectory, m.Hash, name))
	if err != nil {
		log.Printf("ERROR Creating export path: %s, %s | %s", m.Hash, name, err.Error())
		return err
	}
	file, err := os.Create(abs_svg)
	if err != nil {
		log.Printf("ERROR Creating export file: %s, %s | %s", m.Hash, name, err.Error())
		return err
	}

	canvas := svg.New(file)
	canvas.Decimals = 3
	canvas.StartviewUnit(width, height, m.UOM, 0, 0, width, height)
	for _, path := range paths {
		if len(path) == 0 {
			continue
		}
		shifted := path.Copy()
		shifted.Rel(offset)
		xs, ys := shifted.SplitOnAxis()
		canvas.Polygon(xs, ys, m.SvgStyle)
	}
	canvas.End()
	return file.Close()
}

// previewPaths returns the output-unit outline of a solid.
func (m *MAG) previewPaths(name string) []Path {
	if profile, present := m.Profiles[name]; present && len(profile) > 0 {
		scaled := make([]Path, 0, len(profile))
		for _, path := range profile {
			p := path.Copy()
			for i := range p {
				p[i].X *= SCALE
				p[i].Y *= SCALE
			}
			scaled = append(scaled, p)
		}
		return scaled
	}
	bb := m.Solids[name].Bounds()
	return []Path{RectPath((bb.Min.X+bb.Max.X)/2, (bb.Min.Y+bb.Max.Y)/2, bb.Max.X-bb.Min.X, bb.Max.Y-bb.Min.Y)}
}

// Store the generated files in an object store. Every solid/format pair is
// one upload job; jobs run a few at a time behind a semaphore, and a failed
// job is retried before its format is dropped from the result.
func (m *MAG) StoreSwiftFiles() {
	log.Printf("started uploading %s\n", m.Hash)
	failed_exts := []string{}
	delete_files := []string{}

	concurrency := 5
	give_up_after := 3

	sem := make(chan bool, concurrency)
	buffer := make(chan UploadCtl, concurrency)
	process_file := func(control UploadCtl) {
		sem <- true              // semaphore lock
		defer func() { <-sem }() // semaphore release
		control.Attempt = control.Attempt + 1
		control.Export, control.DelFile, control.Error = m.uploadObject(control.Name, control.Ext)
		buffer <- control
	}

	// since the semaphore channel has limited size,
	// this loop must exit in order for the reads to happen
	expect_total := 0
	for _, name := range m.Result.Plates {
		for _, ext := range m.Result.Formats {
			go process_file(UploadCtl{Name: name, Ext: ext}) // queue up the files
			expect_total++
		}
	}

	// read from the channel of concurrent results; retries extend the count
	for i := 0; i < expect_total; i++ {
		result := <-buffer
		if result.Error == nil {
			details := m.Result.Details[result.Name]
			details.Exports = append(details.Exports, *result.Export)
			if result.DelFile != "" {
				delete_files = append(delete_files, result.DelFile) // clean up after upload
			}
			continue
		}
		if result.Attempt < give_up_after {
			expect_total += 1
			go process_file(result) // queue up another attempt
			continue
		}
		if !in_strings(result.Ext, failed_exts) {
			failed_exts = append(failed_exts, result.Ext)
		}
	}
	close(buffer)
	close(sem)

	log.Printf("finished uploading %s\n", m.Hash)
	// remove formats that failed
	if len(failed_exts) > 0 {
		m.dropFormats(failed_exts)
	}
	// clean up local files
	for _, f := range delete_files {
		err := os.Remove(f)
		if err != nil {
			log.Printf("ERROR: problem deleting '%s'\n%s", f, err.Error())
		}
	}
}

// uploadObject puts one exported file into the bucket and returns its export
// record plus the local path to clean up.
func (m *MAG) uploadObject(name, ext string) (*Export, string, error) {
	file_path, err := filepath.Abs(fmt.Sprintf("%s%s_%s.%s", m.FileDirectory, m.Hash, name, ext))
	if err != nil {
		log.Printf("ERROR: Unable to create filepath '%s'\n%s", file_path, err.Error())
		return nil, "", err
	}
	if _, err := os.Stat(file_path); err != nil {
		log.Printf("ERROR: File not found '%s'", file_path)
		return nil, "", err
	}

	// make sure the swift directory is in place
	obj, _, err := m.Swift.Object(m.SwiftBucket, m.Hash)
	if err != nil || obj.ContentType != "application/directory" {
		if err := m.Swift.ObjectPutString(m.SwiftBucket, m.Hash, "", "application/directory"); err != nil {
			log.Printf("ERROR: Problem creating folder '%s' (not required)\n%s", m.Hash, err.Error())
		}
	}

	obj_path := fmt.Sprintf("%s/%s_%s.%s", m.Hash, m.Hash, name, ext)
	f, err := os.Open(file_path)
	if err != nil {
		log.Printf("ERROR: Problem opening file '%s'\n%s", file_path, err.Error())
		return nil, "", err
	}
	defer f.Close()
	if _, err := m.Swift.ObjectPut(m.SwiftBucket, obj_path, f, false, "", "", nil); err != nil {
		log.Printf("ERROR: Problem uploading object '%s'\n%s", obj_path, err.Error())
		return nil, "", err
	}

	export := &Export{
		Ext: ext,
		Url: fmt.Sprintf("%s%s/%s/%s_%s.%s", m.FileServePath, m.SwiftBucket, m.Hash, m.Hash, name, ext),
	}
	return export, file_path, nil
}

// Store and serve the generated files locally.
func (m *MAG) StoreLocalFiles() {
	log.Printf("saving locally %s\n", m.Hash)
	failed_exts := []string{}
	_ = os.Mkdir(m.FileDirectory, 0755)
	for _, name := range m.Result.Plates {
		exports := []Export{}
		for _, ext := range m.Result.Formats {
			file_path, err := filepath.Abs(fmt.Sprintf("%s%s_%s.%s", m.FileDirectory, m.Hash, name, ext))
			if err != nil {
				log.Printf("ERROR: Unable to create filepath '%s'\n%s", file_path, err.Error())
				if !in_strings(ext, failed_exts) {
					failed_exts = append(failed_exts, ext)
				}
				continue
			}
			exports = append(exports, Export{
				Ext: ext,
				Url: fmt.Sprintf("%s%s_%s.%s", m.FileServePath, m.Hash, name, ext),
			})
		}
		m.Result.Details[name].Exports = exports
	}
	log.Printf("saved locally %s\n", m.Hash)
	if len(failed_exts) > 0 {
		m.dropFormats(failed_exts)
	}
}

// dropFormats removes formats that failed from the result.
func (m *MAG) dropFormats(failed []string) {
	formats := m.Result.Formats
	for i := len(m.Result.Formats) - 1; i >= 0; i-- { // loop backwards so we don't break index on change
		if in_strings(m.Result.Formats[i], failed) {
			formats = append(formats[:i], formats[i+1:]...) // remove index
		}
	}
	m.Result.Formats = formats
}

func in_strings(query string, strings []string) bool {
	for _, x := range strings {
		if x == query {
			return true
		}
	}
	return false
}
