package sfs

import (
	"io"
	"testing"
)

// mockStore implements backingStore and can be used to simulate
// truncated or failing reads/writes, in the same style as the teacher
// package's mockReader in mock_test.go.
type mockStore struct {
	data    []byte
	failAt  int64
	failErr error
}

func (m *mockStore) ReadAt(p []byte, off int64) (int, error) {
	if m.failErr != nil && off >= m.failAt {
		return 0, m.failErr
	}
	if off >= int64(len(m.data)) {
		return 0, io.EOF
	}
	n := copy(p, m.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (m *mockStore) WriteAt(p []byte, off int64) (int, error) {
	if m.failErr != nil && off >= m.failAt {
		return 0, m.failErr
	}
	end := off + int64(len(p))
	if end > int64(len(m.data)) {
		grown := make([]byte, end)
		copy(grown, m.data)
		m.data = grown
	}
	return copy(m.data[off:], p), nil
}

func (m *mockStore) Close() error { return nil }

func TestImageReadAtShortReadIsIO(t *testing.T) {
	img := &Image{f: &mockStore{data: make([]byte, 10)}}
	buf := make([]byte, 20)
	if _, err := img.ReadAt(buf, 0); err != ErrIO {
		t.Fatalf("ReadAt short read: err = %v, want ErrIO", err)
	}
}

func TestImageReadAtPropagatesError(t *testing.T) {
	img := &Image{f: &mockStore{data: make([]byte, 100), failAt: 0, failErr: io.ErrClosedPipe}}
	buf := make([]byte, 4)
	if _, err := img.ReadAt(buf, 0); err != ErrIO {
		t.Fatalf("ReadAt failing store: err = %v, want ErrIO", err)
	}
}

func TestImageWriteAtPropagatesError(t *testing.T) {
	img := &Image{f: &mockStore{data: make([]byte, 100), failAt: 0, failErr: io.ErrClosedPipe}}
	if _, err := img.WriteAt([]byte{1, 2, 3}, 0); err != ErrIO {
		t.Fatalf("WriteAt failing store: err = %v, want ErrIO", err)
	}
}

func TestBlockTableAndDataOffsets(t *testing.T) {
	if off := blockTableOffset(0); off != int64(SFS_BLOCKTBL_OFF) {
		t.Errorf("blockTableOffset(0) = %d, want %d", off, SFS_BLOCKTBL_OFF)
	}
	if off := blockTableOffset(1); off != int64(SFS_BLOCKTBL_OFF)+2 {
		t.Errorf("blockTableOffset(1) = %d, want %d", off, int64(SFS_BLOCKTBL_OFF)+2)
	}
	if off := dataBlockOffset(0); off != int64(SFS_DATA_OFF) {
		t.Errorf("dataBlockOffset(0) = %d, want %d", off, SFS_DATA_OFF)
	}
	if off := dataBlockOffset(1); off != int64(SFS_DATA_OFF)+SFS_BLOCK_SIZE {
		t.Errorf("dataBlockOffset(1) = %d, want %d", off, int64(SFS_DATA_OFF)+SFS_BLOCK_SIZE)
	}
}
