// Command mkfs.sfs formats a fresh, empty SFS image.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/google/renameio"

	"github.com/sfsfs/sfs"
)

func main() {
	out := flag.String("o", "test.img", "path of the image file to create")
	force := flag.Bool("f", false, "overwrite an existing file at the output path")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [options]\n\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if !*force {
		if _, err := os.Stat(*out); err == nil {
			log.Fatalf("mkfs.sfs: %s already exists (use -f to overwrite)", *out)
		}
	}

	img := sfs.BlankImage()

	// renameio.WriteFile stages the new image in a sibling temp file and
	// renames it into place, so a crash mid-format never leaves a
	// half-written image at the final path.
	if err := renameio.WriteFile(*out, img, 0644); err != nil {
		log.Fatalf("mkfs.sfs: %v", err)
	}

	fmt.Printf("formatted %s: %d bytes, %d blocks\n", *out, sfs.ImageSize, sfs.SFS_BLOCKTBL_NENTRIES)
}
