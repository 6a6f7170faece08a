package sfs

import (
	"io"
	"io/fs"
	"path"
	"time"
)

// This file adapts FS to io/fs.FS, the same convenience the teacher
// package offers via Inode.OpenFile/File/FileDir/fileinfo (see file.go),
// so callers can drive sfstool's listing/export commands with the
// standard fs.ReadDir/fs.ReadFile/fs.WalkDir helpers instead of a
// bespoke traversal API.

var _ fs.FS = (*FS)(nil)

// Open implements fs.FS, opening name (relative to the image root) for
// reading. If name is a directory the returned file also implements
// fs.ReadDirFile.
func (f *FS) Open(name string) (fs.File, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}
	_, idx, e, err := f.img.resolve(name)
	if err != nil {
		if err == ErrNotFound {
			return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
		}
		return nil, err
	}
	base := path.Base(name)
	if idx < 0 {
		base = "."
	}
	if idx < 0 || e.IsDir() {
		var blk blockidx_t
		if idx >= 0 {
			blk = e.FirstBlock
		}
		return &sfsDir{fs: f, name: base, isRoot: idx < 0, first: blk}, nil
	}
	return &sfsFileHandle{fs: f, path: name, name: base, entry: e}, nil
}

// sfsFileHandle is a regular-file fs.File backed by Read.
type sfsFileHandle struct {
	fs    *FS
	path  string
	name  string
	entry Entry
	off   int64
}

var (
	_ fs.File = (*sfsFileHandle)(nil)
)

func (h *sfsFileHandle) Read(p []byte) (int, error) {
	n, err := h.fs.Read(h.path, h.off, p)
	h.off += int64(n)
	if err == nil && n == 0 && len(p) > 0 {
		return 0, io.EOF
	}
	return n, err
}

func (h *sfsFileHandle) Stat() (fs.FileInfo, error) {
	return &sfsFileInfo{name: h.name, attr: attrFromEntry(h.entry)}, nil
}

func (h *sfsFileHandle) Close() error { return nil }

// sfsDir is a directory fs.File implementing fs.ReadDirFile.
type sfsDir struct {
	fs     *FS
	name   string
	isRoot bool
	first  blockidx_t
	listed []DirEntry
	pos    int
}

var _ fs.ReadDirFile = (*sfsDir)(nil)

func (d *sfsDir) Read(p []byte) (int, error) {
	return 0, &fs.PathError{Op: "read", Path: d.name, Err: fs.ErrInvalid}
}

func (d *sfsDir) Stat() (fs.FileInfo, error) {
	if d.isRoot {
		return &sfsFileInfo{name: d.name, attr: rootAttr()}, nil
	}
	return &sfsFileInfo{name: d.name, attr: currentOwner(Attr{Mode: S_IFDIR | defaultDirPerm, Nlink: 2})}, nil
}

func (d *sfsDir) Close() error { return nil }

func (d *sfsDir) ReadDir(n int) ([]fs.DirEntry, error) {
	if d.listed == nil {
		var dir *Directory
		var err error
		if d.isRoot {
			dir, err = d.fs.img.loadRootDir()
		} else {
			dir, err = d.fs.img.loadDir(d.first)
		}
		if err != nil {
			return nil, err
		}
		for _, e := range dir.entries {
			if !e.Free() {
				d.listed = append(d.listed, DirEntry{Name: e.Name(), IsDir: e.IsDir()})
			}
		}
	}
	remaining := d.listed[d.pos:]
	if n <= 0 {
		d.pos = len(d.listed)
		return wrapDirEntries(remaining), nil
	}
	if len(remaining) == 0 {
		return nil, io.EOF
	}
	if len(remaining) > n {
		remaining = remaining[:n]
	}
	d.pos += len(remaining)
	return wrapDirEntries(remaining), nil
}

func wrapDirEntries(in []DirEntry) []fs.DirEntry {
	out := make([]fs.DirEntry, len(in))
	for i, e := range in {
		out[i] = sfsDirEntry{e}
	}
	return out
}

// sfsDirEntry adapts a DirEntry to fs.DirEntry.
type sfsDirEntry struct{ e DirEntry }

func (d sfsDirEntry) Name() string { return d.e.Name }
func (d sfsDirEntry) IsDir() bool  { return d.e.IsDir }
func (d sfsDirEntry) Type() fs.FileMode {
	if d.e.IsDir {
		return fs.ModeDir
	}
	return 0
}
func (d sfsDirEntry) Info() (fs.FileInfo, error) {
	mode := Attr{Mode: S_IFREG | defaultFilePerm, Nlink: 1}
	if d.e.IsDir {
		mode = Attr{Mode: S_IFDIR | defaultDirPerm, Nlink: 2}
	}
	return &sfsFileInfo{name: d.e.Name, attr: currentOwner(mode)}, nil
}

// sfsFileInfo adapts an Attr to fs.FileInfo. SFS stores no modification
// time, so ModTime reports the moment the underlying Attr was built,
// matching spec.md §4.5's "timestamps default to now".
type sfsFileInfo struct {
	name string
	attr Attr
}

var _ fs.FileInfo = (*sfsFileInfo)(nil)

func (fi *sfsFileInfo) Name() string       { return fi.name }
func (fi *sfsFileInfo) Size() int64        { return int64(fi.attr.Size) }
func (fi *sfsFileInfo) Mode() fs.FileMode  { return UnixToMode(fi.attr.Mode) }
func (fi *sfsFileInfo) ModTime() time.Time { return fi.attr.Mtime }
func (fi *sfsFileInfo) IsDir() bool        { return fi.attr.Mode&S_IFDIR == S_IFDIR }
func (fi *sfsFileInfo) Sys() any           { return fi.attr }
