// Command sfstool is a CLI for inspecting and editing SFS images
// without mounting them, the successor to the teacher package's sqfs
// tool extended with the mutating operations SFS supports.
package main

import (
	"fmt"
	"io/fs"
	"os"

	"github.com/sfsfs/sfs"
	"github.com/sfsfs/sfs/snapshot"
)

const usage = `sfstool - SFS image CLI tool

Usage:
  sfstool ls <image> [<path>]             List files in an SFS image
  sfstool cat <image> <file>              Display contents of a file
  sfstool info <image>                    Display information about an image
  sfstool mkdir <image> <path>            Create a directory
  sfstool touch <image> <path>            Create an empty file
  sfstool rm <image> <path>               Remove a file
  sfstool rmdir <image> <path>            Remove an empty directory
  sfstool pack <image> <archive> [codec]  Export the image tree as a tar archive
  sfstool unpack <image> <archive> [codec] Import a tar archive into the image
  sfstool help                            Show this help message
`

func main() {
	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}

	cmd := os.Args[1]
	var err error

	switch cmd {
	case "ls":
		err = requireArgs(3, func() error {
			p := "."
			if len(os.Args) > 3 {
				p = os.Args[3]
			}
			return listFiles(os.Args[2], p)
		})
	case "cat":
		err = requireArgs(4, func() error { return catFile(os.Args[2], os.Args[3]) })
	case "info":
		err = requireArgs(3, func() error { return showInfo(os.Args[2]) })
	case "mkdir":
		err = requireArgs(4, func() error { return withEngine(os.Args[2], func(e *sfs.FS) error { return e.Mkdir(os.Args[3]) }) })
	case "touch":
		err = requireArgs(4, func() error { return withEngine(os.Args[2], func(e *sfs.FS) error { return e.Create(os.Args[3]) }) })
	case "rm":
		err = requireArgs(4, func() error { return withEngine(os.Args[2], func(e *sfs.FS) error { return e.Unlink(os.Args[3]) }) })
	case "rmdir":
		err = requireArgs(4, func() error { return withEngine(os.Args[2], func(e *sfs.FS) error { return e.Rmdir(os.Args[3]) }) })
	case "pack":
		err = requireArgs(4, func() error { return packImage(os.Args[2], os.Args[3], codecArg(4)) })
	case "unpack":
		err = requireArgs(4, func() error { return unpackImage(os.Args[2], os.Args[3], codecArg(4)) })
	case "help":
		fmt.Println(usage)
		return
	default:
		fmt.Printf("Error: Unknown command '%s'\n", cmd)
		fmt.Println(usage)
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func codecArg(i int) string {
	if len(os.Args) > i {
		return os.Args[i]
	}
	return "gzip"
}

func requireArgs(n int, f func() error) error {
	if len(os.Args) < n {
		fmt.Println(usage)
		os.Exit(1)
	}
	return f()
}

func withEngine(imgPath string, f func(*sfs.FS) error) error {
	e, err := sfs.Open(imgPath)
	if err != nil {
		return fmt.Errorf("failed to open image: %w", err)
	}
	defer e.Close()
	return f(e)
}

// printFileInfo prints file information in a consistent format.
func printFileInfo(path string, info fs.FileInfo) {
	typeChar := "-"
	if info.IsDir() {
		typeChar = "d"
	}
	mode := info.Mode().String()
	permissions := mode[1:]
	size := fmt.Sprintf("%8d", info.Size())
	if info.IsDir() {
		size = "       -"
	}
	fmt.Printf("%s%s %s %s\n", typeChar, permissions, size, path)
}

func listFiles(imgPath, dirPath string) error {
	return withEngine(imgPath, func(e *sfs.FS) error {
		if dirPath != "." {
			info, err := fs.Stat(e, dirPath)
			if err != nil {
				return fmt.Errorf("path '%s' not found: %w", dirPath, err)
			}
			if !info.IsDir() {
				return fmt.Errorf("'%s' is not a directory", dirPath)
			}
		}
		entries, err := fs.ReadDir(e, dirPath)
		if err != nil {
			return fmt.Errorf("failed to read directory '%s': %w", dirPath, err)
		}
		for _, entry := range entries {
			displayPath := entry.Name()
			if dirPath != "." {
				displayPath = dirPath + "/" + entry.Name()
			}
			info, err := entry.Info()
			if err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to get info for '%s': %s\n", displayPath, err)
				continue
			}
			printFileInfo(displayPath, info)
		}
		return nil
	})
}

func catFile(imgPath, filePath string) error {
	return withEngine(imgPath, func(e *sfs.FS) error {
		data, err := fs.ReadFile(e, filePath)
		if err != nil {
			return fmt.Errorf("failed to read file '%s': %w", filePath, err)
		}
		_, err = os.Stdout.Write(data)
		return err
	})
}

func showInfo(imgPath string) error {
	return withEngine(imgPath, func(e *sfs.FS) error {
		fmt.Println("SFS Image Information")
		fmt.Println("======================")
		fmt.Printf("Block size:       %d bytes\n", sfs.SFS_BLOCK_SIZE)
		fmt.Printf("Block table size: %d entries\n", sfs.SFS_BLOCKTBL_NENTRIES)
		fmt.Printf("Image size:       %d bytes\n", sfs.ImageSize)

		var fileCount, dirCount int
		countFilesAndDirs(e, ".", &fileCount, &dirCount)

		fmt.Println("\nContent Summary")
		fmt.Println("---------------")
		fmt.Printf("Directories:      %d\n", dirCount)
		fmt.Printf("Regular files:    %d\n", fileCount)
		return nil
	})
}

func countFilesAndDirs(fsys fs.FS, dir string, fileCount, dirCount *int) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return
	}
	for _, entry := range entries {
		if entry.IsDir() {
			*dirCount++
			subdir := entry.Name()
			if dir != "." {
				subdir = dir + "/" + entry.Name()
			}
			countFilesAndDirs(fsys, subdir, fileCount, dirCount)
		} else {
			*fileCount++
		}
	}
}

func packImage(imgPath, archivePath, codec string) error {
	return withEngine(imgPath, func(e *sfs.FS) error {
		out, err := os.Create(archivePath)
		if err != nil {
			return err
		}
		defer out.Close()
		return snapshot.Pack(out, e, codec)
	})
}

func unpackImage(imgPath, archivePath, codec string) error {
	return withEngine(imgPath, func(e *sfs.FS) error {
		in, err := os.Open(archivePath)
		if err != nil {
			return err
		}
		defer in.Close()
		return snapshot.Unpack(in, e, codec)
	})
}
