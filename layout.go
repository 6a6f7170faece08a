package sfs

import (
	"encoding/binary"
	"time"
)

// On-disk layout constants. The image is a contiguous byte sequence
// partitioned into three regions in order: root directory, block table,
// data blocks. There is no reserved padding between them; each region's
// size is a whole multiple of the quantity before it, so the next region
// starts immediately where the previous one ends.
const (
	// SFS_BLOCK_SIZE is the size in bytes of a single data block.
	SFS_BLOCK_SIZE = 4096

	// entrySize is sizeof(struct sfs_entry) in the reference layout:
	// 58 bytes of filename, a uint32 size, a 16-bit first_block. The sum
	// is fixed at 64 bytes (spec: "Exact field widths are dictated by
	// the layout header; the sum is 64 bytes"), which is what pins
	// blockidx_t at 16 bits rather than 32.
	entrySize = 58 + 4 + 2 // = 64

	// SFS_ROOTDIR_NENTRIES is the fixed number of slots in the root
	// directory, which lives in its own region rather than in a
	// block-table chain.
	SFS_ROOTDIR_NENTRIES = 64

	// SFS_DIR_NENTRIES is the number of entry slots in a non-root
	// directory: two data blocks worth of entries.
	SFS_DIR_NENTRIES = 2 * SFS_BLOCK_SIZE / entrySize

	// SFS_BLOCKTBL_NENTRIES is the number of addressable data blocks,
	// and therefore also the number of block-table slots.
	SFS_BLOCKTBL_NENTRIES = 8192
)

// Region offsets, derived from the sizes above.
const (
	SFS_ROOTDIR_OFF  = 0
	sfsRootdirSize   = SFS_ROOTDIR_NENTRIES * entrySize
	SFS_BLOCKTBL_OFF = SFS_ROOTDIR_OFF + sfsRootdirSize
	sfsBlocktblSize  = SFS_BLOCKTBL_NENTRIES * 2 // sizeof(blockidx_t)
	SFS_DATA_OFF     = SFS_BLOCKTBL_OFF + sfsBlocktblSize

	// ImageSize is the total size a freshly formatted SFS image must
	// have: every region, back to back, with no trailing data blocks
	// missing.
	ImageSize = SFS_DATA_OFF + SFS_BLOCKTBL_NENTRIES*SFS_BLOCK_SIZE
)

// blockidx_t is the wire type of a block-table entry: an index into the
// data-block region, or one of the two sentinels below. It is 16 bits
// wide so that a directory entry's filename (58 bytes) + size (4 bytes)
// + first_block together sum to exactly 64 bytes (see entrySize above).
type blockidx_t uint16

const (
	// SFS_BLOCKIDX_EMPTY marks a block-table slot as free.
	SFS_BLOCKIDX_EMPTY blockidx_t = 0xFFFF

	// SFS_BLOCKIDX_END marks a slot as the last block in its chain.
	SFS_BLOCKIDX_END blockidx_t = 0xFFFE
)

// SFS_DIRECTORY is the high bit of a directory entry's size field,
// marking the entry as a directory rather than a regular file.
const SFS_DIRECTORY uint32 = 1 << 31

// maxNameLen is the largest filename that fits in the 58-byte name field,
// including the NUL terminator (spec: "maximum 58 bytes including
// terminator", so 57 usable bytes).
const maxNameLen = 58 - 1

// byteOrder is the wire byte order for every multi-byte field on disk.
// The reference implementation is a single-architecture, single-host
// design (unlike squashfs, SFS carries no superblock magic to detect
// endianness), so this is fixed rather than autodetected.
var byteOrder = binary.LittleEndian

// Entry is the fixed 64-byte directory entry record described in spec.md
// §3: a filename, a size (with the directory bit folded in), and the
// block-table index of the first data block.
type Entry struct {
	filename   [58]byte
	Size       uint32
	FirstBlock blockidx_t
}

// NewFileEntry builds an empty regular-file entry with the given name.
func NewFileEntry(name string) (Entry, error) {
	var e Entry
	if err := e.setName(name); err != nil {
		return Entry{}, err
	}
	e.Size = 0
	e.FirstBlock = SFS_BLOCKIDX_END
	return e, nil
}

// NewDirEntry builds a directory entry with the given name, pointing at
// the first block of its (already allocated) two-block chain.
func NewDirEntry(name string, first blockidx_t) (Entry, error) {
	var e Entry
	if err := e.setName(name); err != nil {
		return Entry{}, err
	}
	e.Size = SFS_DIRECTORY
	e.FirstBlock = first
	return e, nil
}

// Name returns the entry's filename, or "" if the slot is free.
func (e *Entry) Name() string {
	n := 0
	for n < len(e.filename) && e.filename[n] != 0 {
		n++
	}
	return string(e.filename[:n])
}

func (e *Entry) setName(name string) error {
	if len(name) > maxNameLen {
		return ErrNameTooLong
	}
	var buf [58]byte
	copy(buf[:], name)
	e.filename = buf
	return nil
}

// Free reports whether this slot is unused.
func (e *Entry) Free() bool {
	return e.filename[0] == 0
}

// IsDir reports whether the entry's directory bit is set.
func (e *Entry) IsDir() bool {
	return e.Size&SFS_DIRECTORY != 0
}

// FileSize returns the entry's size with the directory bit masked off,
// per spec.md §9's guidance that st_size should not leak SFS_DIRECTORY.
func (e *Entry) FileSize() uint32 {
	return e.Size &^ SFS_DIRECTORY
}

// clear resets the entry to the free-slot representation: empty name,
// zero size, SFS_BLOCKIDX_EMPTY first_block (invariant I3).
func (e *Entry) clear() {
	*e = Entry{FirstBlock: SFS_BLOCKIDX_EMPTY}
}

// MarshalBinary encodes the entry into its 64-byte wire representation.
func (e *Entry) MarshalBinary() ([]byte, error) {
	buf := make([]byte, entrySize)
	copy(buf[:58], e.filename[:])
	byteOrder.PutUint32(buf[58:62], e.Size)
	byteOrder.PutUint16(buf[62:64], uint16(e.FirstBlock))
	return buf, nil
}

// UnmarshalBinary decodes a 64-byte wire record into the entry.
func (e *Entry) UnmarshalBinary(data []byte) error {
	if len(data) < entrySize {
		return ErrIO
	}
	copy(e.filename[:], data[:58])
	e.Size = byteOrder.Uint32(data[58:62])
	e.FirstBlock = blockidx_t(byteOrder.Uint16(data[62:64]))
	return nil
}

// now is the "current time" stamped on attributes the engine can't
// otherwise derive from disk (spec.md §4.5: "timestamps default to
// now").
func now() time.Time {
	return time.Now()
}
