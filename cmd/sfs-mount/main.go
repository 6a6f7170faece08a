// Command sfs-mount mounts an SFS image as a FUSE filesystem.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/sfsfs/sfs"
	"github.com/sfsfs/sfs/internal/fuseserver"
)

func main() {
	var (
		img        = flag.String("i", "test.img", "filename of SFS image to mount")
		background = flag.Bool("b", false, "background mode: logs the process id; the mount still runs in this process")
		verbose    = flag.Bool("v", false, "print debug information")
	)
	flag.StringVar(img, "img", "test.img", "same as -i")
	flag.BoolVar(background, "background", false, "same as -b")
	flag.BoolVar(verbose, "verbose", false, "same as -v")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [options] mountpoint\n\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}
	mountpoint := flag.Arg(0)

	engineImg, err := sfs.OpenImage(*img)
	if err != nil {
		log.Fatalf("sfs-mount: open image %s: %v", *img, err)
	}
	engine := sfs.New(engineImg)
	defer engine.Close()

	if *background {
		// A full daemonize would re-exec with the parent detached; this
		// keeps the single-binary shape simple and just logs the choice,
		// since the FUSE session below already runs until signaled.
		log.Printf("sfs-mount: running in background mode, pid %d", os.Getpid())
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigc
		cancel()
	}()

	opts := &fuseserver.Options{Verbose: *verbose}
	if err := fuseserver.Mount(ctx, engine, mountpoint, opts); err != nil {
		log.Fatalf("sfs-mount: %v", err)
	}
}
