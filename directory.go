package sfs

// This file implements the directory codec (spec.md §4.3). A directory
// is simply a flat array of Entry records; what differs between the
// root directory and every other directory is where that array lives
// on disk, not its shape.
//
// The root directory occupies its own fixed region (SFS_ROOTDIR_OFF,
// SFS_ROOTDIR_NENTRIES slots). Every other directory is a two-block
// chain in the data region (invariant I1: every directory's chain has
// exactly length 2), holding SFS_DIR_NENTRIES entries back to back
// across both blocks.

// Directory is an in-memory decode of a directory's entry slots, along
// with enough information to write a single slot back without
// re-encoding the whole thing.
type Directory struct {
	entries []Entry
	// blocks holds the chain backing this directory, or nil for the root.
	blocks []blockidx_t
}

// loadRootDir decodes the root directory region.
func (img *Image) loadRootDir() (*Directory, error) {
	buf, err := img.readRegion(int64(SFS_ROOTDIR_OFF), SFS_ROOTDIR_NENTRIES*entrySize)
	if err != nil {
		return nil, err
	}
	d := &Directory{entries: make([]Entry, SFS_ROOTDIR_NENTRIES)}
	for i := range d.entries {
		if err := d.entries[i].UnmarshalBinary(buf[i*entrySize : (i+1)*entrySize]); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// loadDir decodes the two-block directory whose chain starts at first.
func (img *Image) loadDir(first blockidx_t) (*Directory, error) {
	chain, err := img.chainFollow(first)
	if err != nil {
		return nil, err
	}
	if len(chain) != 2 {
		// invariant I1: every directory chain is exactly two blocks.
		return nil, ErrIO
	}
	buf := make([]byte, 0, 2*SFS_BLOCK_SIZE)
	for _, b := range chain {
		blk, err := img.readRegion(dataBlockOffset(b), SFS_BLOCK_SIZE)
		if err != nil {
			return nil, err
		}
		buf = append(buf, blk...)
	}
	d := &Directory{entries: make([]Entry, SFS_DIR_NENTRIES), blocks: chain}
	for i := range d.entries {
		if err := d.entries[i].UnmarshalBinary(buf[i*entrySize : (i+1)*entrySize]); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// slotOffset returns the on-disk byte offset of entry slot i in d.
func (img *Image) slotOffset(d *Directory, i int) int64 {
	if d.blocks == nil {
		return int64(SFS_ROOTDIR_OFF) + int64(i)*entrySize
	}
	const perBlock = SFS_BLOCK_SIZE / entrySize
	block := d.blocks[i/perBlock]
	within := i % perBlock
	return dataBlockOffset(block) + int64(within)*entrySize
}

// storeSlot writes entry i of d back to disk and updates the in-memory copy.
func (img *Image) storeSlot(d *Directory, i int, e Entry) error {
	buf, err := e.MarshalBinary()
	if err != nil {
		return err
	}
	if _, err := img.WriteAt(buf, img.slotOffset(d, i)); err != nil {
		return err
	}
	d.entries[i] = e
	return nil
}

// findNamed returns the index of the entry named name in d, or -1 if
// there is no such entry (invariant I5: names are unique within a
// directory).
func (d *Directory) findNamed(name string) int {
	for i := range d.entries {
		if !d.entries[i].Free() && d.entries[i].Name() == name {
			return i
		}
	}
	return -1
}

// findEmpty returns the index of the first free slot in d, or -1 if
// the directory is full.
func (d *Directory) findEmpty() int {
	for i := range d.entries {
		if d.entries[i].Free() {
			return i
		}
	}
	return -1
}

// newDirChain allocates a fresh two-block chain and zero-fills it,
// leaving every slot as a free Entry. It is used by mkdir to create
// the storage for a new subdirectory before any entry is written into it.
func (img *Image) newDirChain() (blockidx_t, error) {
	b1, b2, err := img.findFreePair()
	if err != nil {
		return 0, err
	}
	if err := img.writeBlockIdx(b1, b2); err != nil {
		return 0, err
	}
	if err := img.writeBlockIdx(b2, SFS_BLOCKIDX_END); err != nil {
		return 0, err
	}
	var free Entry
	free.clear()
	buf, err := free.MarshalBinary()
	if err != nil {
		return 0, err
	}
	full := make([]byte, 0, 2*SFS_BLOCK_SIZE)
	for i := 0; i < SFS_DIR_NENTRIES; i++ {
		full = append(full, buf...)
	}
	// Pad out any slack at the tail of the two-block region that isn't a
	// whole entry (SFS_DIR_NENTRIES*entrySize may be < 2*SFS_BLOCK_SIZE).
	for len(full) < 2*SFS_BLOCK_SIZE {
		full = append(full, 0)
	}
	if _, err := img.WriteAt(full[:SFS_BLOCK_SIZE], dataBlockOffset(b1)); err != nil {
		return 0, err
	}
	if _, err := img.WriteAt(full[SFS_BLOCK_SIZE:], dataBlockOffset(b2)); err != nil {
		return 0, err
	}
	return b1, nil
}
