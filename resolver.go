package sfs

import (
	"path"
	"strings"
)

// This file implements the path resolver (spec.md §4.4). It never
// mutates the image; every write operation in fs.go resolves first,
// then acts on the slot it found.
//
// Redesign from the reference (spec.md §9): the C implementation walks
// interior path components without checking that they are directories,
// so "touch a/b" where a is a regular file silently reads garbage as a
// directory. Here every interior component is required to carry the
// SFS_DIRECTORY bit; a regular file in interior position yields
// ErrNotFound instead.

// splitPath cleans and splits an absolute slash-separated path into its
// non-empty components. "/" yields an empty slice.
func splitPath(p string) []string {
	p = path.Clean("/" + p)
	if p == "/" {
		return nil
	}
	return strings.Split(strings.TrimPrefix(p, "/"), "/")
}

// resolve walks path from the root and returns the directory containing
// its final component, the index of that component's slot within that
// directory, and a copy of the entry itself. For the root directory
// itself (path "" or "/"), dir is the root directory and idx is -1.
func (img *Image) resolve(p string) (dir *Directory, idx int, entry Entry, err error) {
	parts := splitPath(p)
	dir, err = img.loadRootDir()
	if err != nil {
		return nil, -1, Entry{}, err
	}
	if len(parts) == 0 {
		return dir, -1, Entry{}, nil
	}
	for i, name := range parts {
		slot := dir.findNamed(name)
		if slot < 0 {
			return nil, -1, Entry{}, ErrNotFound
		}
		e := dir.entries[slot]
		last := i == len(parts)-1
		if !last {
			if !e.IsDir() {
				return nil, -1, Entry{}, ErrNotFound
			}
			dir, err = img.loadDir(e.FirstBlock)
			if err != nil {
				return nil, -1, Entry{}, err
			}
			continue
		}
		return dir, slot, e, nil
	}
	// unreachable: the loop above always returns on the last iteration.
	return nil, -1, Entry{}, ErrNotFound
}

// resolveDir is resolve specialized for a caller that requires the
// resolved entry to be a directory (or the root, which has none),
// returning the loaded Directory ready for listing or mutation.
func (img *Image) resolveDir(p string) (*Directory, error) {
	dir, idx, e, err := img.resolve(p)
	if err != nil {
		return nil, err
	}
	if idx < 0 {
		return dir, nil
	}
	if !e.IsDir() {
		return nil, ErrNotDir
	}
	return img.loadDir(e.FirstBlock)
}

// resolveParent walks all but the last component of path and returns
// the directory that should contain it, along with the final
// component's basename. It is used by create/mkdir and by rename's
// destination, which all need to establish a slot by name in a known
// parent directory.
func (img *Image) resolveParent(p string) (dir *Directory, base string, err error) {
	parts := splitPath(p)
	if len(parts) == 0 {
		return nil, "", ErrExist // the root itself can't be created
	}
	base = parts[len(parts)-1]
	parentPath := "/" + strings.Join(parts[:len(parts)-1], "/")
	dir, err = img.resolveDir(parentPath)
	if err != nil {
		return nil, "", err
	}
	return dir, base, nil
}
