// Command midiverify checks that a .mid file produced by cmd/beatbox is a
// structurally well-formed Standard MIDI File.
package main

import (
	"log"
	"os"

	"flag"

	"github.com/cartomix/beatbox/internal/midi"
)

func main() {
	path := flag.String("file", "", "path to a .mid file")
	flag.Parse()

	if *path == "" {
		log.Fatal("file path required")
	}

	data, err := os.ReadFile(*path)
	if err != nil {
		log.Fatalf("read %s: %v", *path, err)
	}

	if err := midi.ValidateChunks(data); err != nil {
		log.Fatalf("verify failed: %v", err)
	}

	log.Printf("MIDI chunk structure OK for %s (%d bytes)", *path, len(data))
}
