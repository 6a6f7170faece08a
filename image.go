package sfs

import (
	"io"
	"os"
)

// backingStore is the minimal set of operations Image needs from its
// backing file, kept as an interface (rather than a concrete *os.File
// field) so tests can substitute a mock, the same shape as the
// teacher's Superblock.fs field being an io.ReaderAt rather than a file.
type backingStore interface {
	io.ReaderAt
	io.WriterAt
	Close() error
}

// Image is the image accessor (spec.md §4.1): a thin, unbuffered,
// positional façade over the backing file. It is stateless beyond the
// open handle.
type Image struct {
	f backingStore
}

var (
	_ io.ReaderAt = (*Image)(nil)
	_ io.WriterAt = (*Image)(nil)
)

// OpenImage opens an existing SFS image file for reading and writing.
func OpenImage(path string) (*Image, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, err
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if st.Size() != ImageSize {
		f.Close()
		return nil, ErrIO
	}
	return &Image{f: f}, nil
}

// Close releases the underlying file handle.
func (img *Image) Close() error {
	return img.f.Close()
}

// ReadAt reads len(p) bytes starting at offset off, satisfying
// io.ReaderAt. A short read is reported as ErrIO, since every caller in
// this package reads fixed-size, known-in-advance structures.
func (img *Image) ReadAt(p []byte, off int64) (int, error) {
	n, err := img.f.ReadAt(p, off)
	if err != nil && err != io.EOF {
		return n, ErrIO
	}
	if n != len(p) {
		return n, ErrIO
	}
	return n, nil
}

// WriteAt writes p at offset off, satisfying io.WriterAt. Per spec.md
// §4.1, writes of at most one machine word to a single block-table slot
// are assumed atomic against a crash; larger writes are not, and no
// ordering guarantee beyond "issued in the order called" is provided.
func (img *Image) WriteAt(p []byte, off int64) (int, error) {
	n, err := img.f.WriteAt(p, off)
	if err != nil {
		return n, ErrIO
	}
	return n, nil
}

// readRegion is a convenience wrapper returning a freshly allocated
// buffer instead of requiring the caller to size one first.
func (img *Image) readRegion(off int64, size int) ([]byte, error) {
	buf := make([]byte, size)
	if _, err := img.ReadAt(buf, off); err != nil {
		return nil, err
	}
	return buf, nil
}

// readBlockIdx reads a single block-table slot.
func (img *Image) readBlockIdx(idx blockidx_t) (blockidx_t, error) {
	buf, err := img.readRegion(blockTableOffset(idx), 2)
	if err != nil {
		return 0, err
	}
	return blockidx_t(byteOrder.Uint16(buf)), nil
}

// writeBlockIdx writes a single block-table slot. This is the "≤ one
// machine word" write spec.md §4.1 calls out as crash-atomic.
func (img *Image) writeBlockIdx(idx blockidx_t, val blockidx_t) error {
	var buf [2]byte
	byteOrder.PutUint16(buf[:], uint16(val))
	_, err := img.WriteAt(buf[:], blockTableOffset(idx))
	return err
}

// blockTableOffset returns the on-disk byte offset of block-table slot idx.
func blockTableOffset(idx blockidx_t) int64 {
	return int64(SFS_BLOCKTBL_OFF) + int64(idx)*2
}

// dataBlockOffset returns the on-disk byte offset of data block idx.
func dataBlockOffset(idx blockidx_t) int64 {
	return int64(SFS_DATA_OFF) + int64(idx)*SFS_BLOCK_SIZE
}
