// Package main converts a CSV card export into a catalog YAML file.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/gempswccg/swccg-server/internal/game/catalog"
)

func main() {
	out := flag.String("out", "data/cards/imported.yaml", "catalog file to write")
	force := flag.Bool("force", false, "overwrite an existing catalog file")
	flag.Parse()

	csvPath := "data/cards_export.csv"
	if flag.NArg() > 0 {
		csvPath = flag.Arg(0)
	}
	absPath, err := filepath.Abs(csvPath)
	if err != nil {
		log.Fatalf("Failed to get absolute path: %v", err)
	}

	fmt.Println("=== SWCCG Card Data Import ===")
	fmt.Printf("CSV file: %s\n", absPath)

	file, err := os.Open(absPath)
	if err != nil {
		log.Fatalf("Failed to open CSV file: %v", err)
	}
	defer file.Close()

	start := time.Now()
	defs, errs := catalog.ImportCSV(file)
	for _, e := range errs {
		log.Printf("Warning: %v", e)
	}
	if len(defs) == 0 {
		log.Fatal("No valid cards found")
	}
	fmt.Printf("Parsed %d valid cards (%d rejected)\n", len(defs), len(errs))

	// The written file must load next to the rest of the catalog.
	existing := catalog.New()
	dir := filepath.Dir(*out)
	if _, err := os.Stat(dir); err == nil {
		if err := existing.LoadDirectory(dir); err != nil {
			log.Fatalf("Failed to load existing catalog: %v", err)
		}
	}
	if _, err := os.Stat(*out); err == nil && !*force {
		log.Fatalf("%s already exists; pass -force to overwrite", *out)
	}
	for _, def := range defs {
		if _, dup := existing.Definition(def.ID); dup && !*force {
			log.Fatalf("Card %s is already in the catalog at %s", def.ID, dir)
		}
	}

	var buf bytes.Buffer
	if err := catalog.WriteYAML(&buf, defs); err != nil {
		log.Fatalf("Failed to encode catalog: %v", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Fatalf("Failed to create %s: %v", dir, err)
	}
	if err := os.WriteFile(*out, buf.Bytes(), 0o644); err != nil {
		log.Fatalf("Failed to write %s: %v", *out, err)
	}

	fmt.Println("\n=== Import Complete ===")
	fmt.Printf("✓ Wrote %d cards to %s\n", len(defs), *out)
	fmt.Printf("Time taken: %s\n", time.Since(start))
}
