package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"credit-risk/internal/common"
	"credit-risk/internal/ml"
)

func main() {
	var (
		dir          = flag.String("dir", common.DefaultArtifactDir, "Artifact directory")
		modelFile    = flag.String("model", common.DefaultModelFile, "Model file name")
		featuresFile = flag.String("features", common.DefaultFeaturesFile, "Feature list file name")
		force        = flag.Bool("force", false, "Overwrite existing artifacts")
	)
	flag.Parse()

	names := ml.ArtifactNames{Model: *modelFile, Features: *featuresFile}

	fmt.Println("Writing sample credit model artifacts...")
	fmt.Printf("  Directory: %s\n", *dir)
	fmt.Printf("  Model: %s\n", names.Model)
	fmt.Printf("  Features: %s\n", names.Features)

	if !*force {
		for _, name := range []string{names.Model, names.Features} {
			if _, err := os.Stat(filepath.Join(*dir, name)); err == nil {
				log.Fatalf("%s already exists, use -force to overwrite", name)
			}
		}
	}

	if err := os.MkdirAll(*dir, 0o755); err != nil {
		log.Fatalf("Failed to create artifact directory: %v", err)
	}
	if err := ml.WriteSampleArtifacts(*dir, names); err != nil {
		log.Fatalf("Failed to write artifacts: %v", err)
	}

	// Read them back the way the server will.
	arts := ml.LoadArtifacts(*dir, names)
	if !arts.Loaded {
		log.Fatalf("Written artifacts do not load: %v", arts.Err)
	}

	fmt.Printf("\nSample artifacts written (%d features).\n", len(arts.Features))
	fmt.Println("The sample model is a three-tree toy ensemble for demos and tests,")
	fmt.Println("not a trained credit model.")
}
