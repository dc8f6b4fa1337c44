// Command fixturegen produces the deterministic WAV fixtures used by
// package-level tests and manual pipeline runs.
package main

import (
	"flag"
	"log"

	"github.com/cartomix/beatbox/internal/fixtures"
)

func main() {
	outDir := flag.String("out", "./testdata/audio", "output directory for generated audio")
	seed := flag.Int64("seed", 1337, "random seed for deterministic fixtures")
	sampleRate := flag.Int("sample-rate", 44100, "sample rate of generated fixtures")
	flag.Parse()

	cfg := fixtures.Config{
		OutputDir:  *outDir,
		SampleRate: *sampleRate,
		Seed:       *seed,
	}

	manifest, err := fixtures.Generate(cfg)
	if err != nil {
		log.Fatalf("generate fixtures: %v", err)
	}

	log.Printf("fixturegen wrote %d fixtures to %s (sample_rate=%d)", len(manifest.Fixtures), cfg.OutputDir, cfg.SampleRate)
}
