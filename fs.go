package sfs

// This file implements the VFS operation set (spec.md §4.5): the
// operations a FUSE bridge (or any other caller) drives the engine
// through. Every operation resolves its path first via resolver.go,
// then mutates through the block allocator and directory codec; none
// of them hold locks of their own; spec.md §5 assigns that
// responsibility to whatever binds the engine to a single host.

// FS is the SFS engine: an open image plus every operation a caller
// needs to mount or otherwise drive it.
type FS struct {
	img *Image
}

// New wraps an already-open Image as an engine.
func New(img *Image) *FS {
	return &FS{img: img}
}

// Open opens the image file at path and wraps it as an engine.
func Open(path string) (*FS, error) {
	img, err := OpenImage(path)
	if err != nil {
		return nil, err
	}
	return New(img), nil
}

// Close releases the engine's backing image.
func (fs *FS) Close() error {
	return fs.img.Close()
}

// DirEntry is a single listing row returned by Readdir.
type DirEntry struct {
	Name  string
	IsDir bool
}

// Getattr returns the attribute record for path.
func (fs *FS) Getattr(p string) (Attr, error) {
	_, idx, e, err := fs.img.resolve(p)
	if err != nil {
		return Attr{}, err
	}
	if idx < 0 {
		return rootAttr(), nil
	}
	return attrFromEntry(e), nil
}

// Readdir lists the entries of the directory at path.
func (fs *FS) Readdir(p string) ([]DirEntry, error) {
	dir, err := fs.img.resolveDir(p)
	if err != nil {
		return nil, err
	}
	var out []DirEntry
	for _, e := range dir.entries {
		if e.Free() {
			continue
		}
		out = append(out, DirEntry{Name: e.Name(), IsDir: e.IsDir()})
	}
	return out, nil
}

// Read reads up to len(buf) bytes from path starting at off, returning
// the number of bytes actually read (fewer than len(buf) at EOF).
func (fs *FS) Read(p string, off int64, buf []byte) (int, error) {
	_, idx, e, err := fs.img.resolve(p)
	if err != nil {
		return 0, err
	}
	if idx < 0 || e.IsDir() {
		return 0, ErrIsDir
	}
	size := int64(e.FileSize())
	if off >= size {
		return 0, nil
	}
	if off+int64(len(buf)) > size {
		buf = buf[:size-off]
	}
	chain, err := fs.img.chainFollow(e.FirstBlock)
	if err != nil {
		return 0, err
	}
	n := 0
	for n < len(buf) {
		pos := off + int64(n)
		blockNo := int(pos / SFS_BLOCK_SIZE)
		if blockNo >= len(chain) {
			break
		}
		within := pos % SFS_BLOCK_SIZE
		want := len(buf) - n
		if int64(want) > SFS_BLOCK_SIZE-within {
			want = int(SFS_BLOCK_SIZE - within)
		}
		rn, err := fs.img.ReadAt(buf[n:n+want], dataBlockOffset(chain[blockNo])+within)
		if err != nil {
			return n, err
		}
		n += rn
	}
	return n, nil
}

// Write writes data to path starting at off, growing the file's chain
// (and explicitly zero-filling any gap between the previous end of file
// and off) as needed. This is a redesign from the reference, which
// leaves write unimplemented (spec.md §9: "grow-then-fill").
func (fs *FS) Write(p string, off int64, data []byte) (int, error) {
	dir, idx, e, err := fs.img.resolve(p)
	if err != nil {
		return 0, err
	}
	if idx < 0 || e.IsDir() {
		return 0, ErrIsDir
	}

	newSize := off + int64(len(data))
	if newSize < int64(e.FileSize()) {
		newSize = int64(e.FileSize())
	}

	chain, err := fs.img.chainFollow(e.FirstBlock)
	if err != nil {
		return 0, err
	}
	oldSize := int64(e.FileSize())
	neededBlocks := int((newSize + SFS_BLOCK_SIZE - 1) / SFS_BLOCK_SIZE)
	if neededBlocks > len(chain) {
		newBlocks, err := fs.img.findFree(neededBlocks - len(chain))
		if err != nil {
			return 0, err
		}
		head := e.FirstBlock
		if len(chain) == 0 {
			head = SFS_BLOCKIDX_END
		}
		head, err = fs.img.chainAppend(head, newBlocks)
		if err != nil {
			return 0, err
		}
		e.FirstBlock = head
		chain = append(chain, newBlocks...)
	}

	// Zero-fill the gap between the previous end of file and the start
	// of this write, so a later read never observes uninitialized block
	// contents (spec.md §9 redesign note on write).
	if off > oldSize {
		if err := fs.zeroRange(chain, oldSize, off); err != nil {
			return 0, err
		}
	}

	n := 0
	for n < len(data) {
		pos := off + int64(n)
		blockNo := int(pos / SFS_BLOCK_SIZE)
		within := pos % SFS_BLOCK_SIZE
		want := len(data) - n
		if int64(want) > SFS_BLOCK_SIZE-within {
			want = int(SFS_BLOCK_SIZE - within)
		}
		wn, err := fs.img.WriteAt(data[n:n+want], dataBlockOffset(chain[blockNo])+within)
		if err != nil {
			return n, err
		}
		n += wn
	}

	e.Size = uint32(newSize)
	if err := fs.img.storeSlot(dir, idx, e); err != nil {
		return n, err
	}
	return n, nil
}

// zeroRange writes zero bytes into chain covering the half-open byte
// range [from, to).
func (fs *FS) zeroRange(chain []blockidx_t, from, to int64) error {
	zero := make([]byte, SFS_BLOCK_SIZE)
	pos := from
	for pos < to {
		blockNo := int(pos / SFS_BLOCK_SIZE)
		within := pos % SFS_BLOCK_SIZE
		want := to - pos
		if want > SFS_BLOCK_SIZE-within {
			want = SFS_BLOCK_SIZE - within
		}
		if _, err := fs.img.WriteAt(zero[:want], dataBlockOffset(chain[blockNo])+within); err != nil {
			return err
		}
		pos += want
	}
	return nil
}

// Create makes a new, empty regular file at path.
func (fs *FS) Create(p string) error {
	dir, base, err := fs.img.resolveParent(p)
	if err != nil {
		return err
	}
	if dir.findNamed(base) >= 0 {
		return ErrExist
	}
	slot := dir.findEmpty()
	if slot < 0 {
		return ErrNoSpace
	}
	e, err := NewFileEntry(base)
	if err != nil {
		return err
	}
	return fs.img.storeSlot(dir, slot, e)
}

// Unlink removes a regular file at path.
func (fs *FS) Unlink(p string) error {
	dir, idx, e, err := fs.img.resolve(p)
	if err != nil {
		return err
	}
	if idx < 0 {
		return ErrIsDir
	}
	if e.IsDir() {
		return ErrIsDir
	}
	if err := fs.img.chainFree(e.FirstBlock); err != nil {
		return err
	}
	var free Entry
	free.clear()
	return fs.img.storeSlot(dir, idx, free)
}

// Mkdir creates a new, empty directory at path.
func (fs *FS) Mkdir(p string) error {
	dir, base, err := fs.img.resolveParent(p)
	if err != nil {
		return err
	}
	if dir.findNamed(base) >= 0 {
		return ErrExist
	}
	slot := dir.findEmpty()
	if slot < 0 {
		return ErrNoSpace
	}
	first, err := fs.img.newDirChain()
	if err != nil {
		return err
	}
	e, err := NewDirEntry(base, first)
	if err != nil {
		// release the chain we just allocated; the name itself was bad.
		_ = fs.img.chainFree(first)
		return err
	}
	return fs.img.storeSlot(dir, slot, e)
}

// Rmdir removes an empty directory at path.
func (fs *FS) Rmdir(p string) error {
	dir, idx, e, err := fs.img.resolve(p)
	if err != nil {
		return err
	}
	if idx < 0 {
		// refusing to remove "/" itself.
		return ErrNotSupported
	}
	if !e.IsDir() {
		return ErrNotDir
	}
	sub, err := fs.img.loadDir(e.FirstBlock)
	if err != nil {
		return err
	}
	for _, se := range sub.entries {
		if !se.Free() {
			return ErrNotEmpty
		}
	}
	if err := fs.img.chainFree(e.FirstBlock); err != nil {
		return err
	}
	var free Entry
	free.clear()
	return fs.img.storeSlot(dir, idx, free)
}

// Truncate resizes the regular file at path to size, zero-filling any
// newly extended region and releasing any blocks no longer needed.
func (fs *FS) Truncate(p string, size int64) error {
	dir, idx, e, err := fs.img.resolve(p)
	if err != nil {
		return err
	}
	if idx < 0 || e.IsDir() {
		return ErrIsDir
	}
	oldSize := int64(e.FileSize())
	chain, err := fs.img.chainFollow(e.FirstBlock)
	if err != nil {
		return err
	}
	neededBlocks := int((size + SFS_BLOCK_SIZE - 1) / SFS_BLOCK_SIZE)

	switch {
	case neededBlocks < len(chain):
		if err := fs.img.chainTruncateTo(chain, neededBlocks); err != nil {
			return err
		}
		if neededBlocks == 0 {
			e.FirstBlock = SFS_BLOCKIDX_END
		}
	case neededBlocks > len(chain):
		newBlocks, err := fs.img.findFree(neededBlocks - len(chain))
		if err != nil {
			return err
		}
		head := e.FirstBlock
		if len(chain) == 0 {
			head = SFS_BLOCKIDX_END
		}
		head, err = fs.img.chainAppend(head, newBlocks)
		if err != nil {
			return err
		}
		e.FirstBlock = head
		chain = append(chain, newBlocks...)
	}

	// Zero-fill any newly visible range regardless of whether the block
	// count changed: shrinking then growing back within the same block
	// must still read as zero in [oldSize, size), since the freed bytes
	// were never physically cleared (spec.md §8 P6).
	if size > oldSize {
		if err := fs.zeroRange(chain, oldSize, size); err != nil {
			return err
		}
	}

	e.Size = uint32(size)
	return fs.img.storeSlot(dir, idx, e)
}

// Rename moves the entry at oldPath to newPath, within one directory or
// between two. The parent of each path must resolve; the destination
// must not already exist, whether
// it names a file or a directory, empty or not (this engine does not
// implement the POSIX overwrite-on-rename semantics, recorded as an
// explicit decision in the design notes).
func (fs *FS) Rename(oldPath, newPath string) error {
	oldDir, oldIdx, e, err := fs.img.resolve(oldPath)
	if err != nil {
		return err
	}
	if oldIdx < 0 {
		return ErrNotSupported
	}
	newDir, base, err := fs.img.resolveParent(newPath)
	if err != nil {
		return err
	}
	if newDir.findNamed(base) >= 0 {
		return ErrExist
	}
	moved := e
	if err := moved.setName(base); err != nil {
		return err
	}
	slot := newDir.findEmpty()
	if slot < 0 {
		return ErrNoSpace
	}
	if err := fs.img.storeSlot(newDir, slot, moved); err != nil {
		return err
	}
	var free Entry
	free.clear()
	return fs.img.storeSlot(oldDir, oldIdx, free)
}
