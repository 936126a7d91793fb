package main

import (
	"encoding/json"
	"flag"
	"io/ioutil"
	"log"

	magcad "github.com/lotier/magcad"
)

var (
	outputHash = flag.String("hash", "output", "File prefix for the output")
	outputDir  = flag.String("dir", ".", "Output directory")
	configFile = flag.String("config", "config.json", "JSON configuration file with the magnetic description")
	meshCells  = flag.Int("cells", 0, "Octree cells along the longest axis of each STL mesh. If specified, it will override the configuration file")
)

func main() {
	flag.Parse()

	json_bytes, errFile := ioutil.ReadFile(*configFile)
	if errFile != nil {
		log.Fatalf("Failed to read the MAG configuration file\nError: %s", errFile.Error())
	}

	// create a new MAG instance
	mag := magcad.New()

	// populate the 'mag' instance with the JSON contents
	err := json.Unmarshal(json_bytes, mag)
	if err != nil {
		log.Fatalf("Failed to parse json data into the MAG file\nError: %s", err.Error())
	}

	if *meshCells > 0 {
		mag.MeshCells = *meshCells
	}

	mag.FileStore = magcad.STORE_LOCAL // store the files locally
	mag.FileServePath = "/"            // the url path for the 'results' (don't worry about this)

	mag.Hash = *outputHash
	mag.FileDirectory = *outputDir + "/"

	// build the solids and write the STL/SVG files now
	err = mag.Build()
	if err != nil {
		log.Fatalf("Failed to Build the MAG file\nError: %s", err.Error())
	}
}
