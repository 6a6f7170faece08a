package sfs

import "testing"

func TestEntryRoundTrip(t *testing.T) {
	e, err := NewFileEntry("hello.txt")
	if err != nil {
		t.Fatalf("NewFileEntry: %v", err)
	}
	e.Size = 1234
	e.FirstBlock = 7

	buf, err := e.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary: %v", err)
	}
	if len(buf) != entrySize {
		t.Fatalf("marshaled length = %d, want %d", len(buf), entrySize)
	}

	var got Entry
	if err := got.UnmarshalBinary(buf); err != nil {
		t.Fatalf("UnmarshalBinary: %v", err)
	}
	if got.Name() != "hello.txt" {
		t.Errorf("Name() = %q, want %q", got.Name(), "hello.txt")
	}
	if got.FileSize() != 1234 {
		t.Errorf("FileSize() = %d, want 1234", got.FileSize())
	}
	if got.FirstBlock != 7 {
		t.Errorf("FirstBlock = %d, want 7", got.FirstBlock)
	}
	if got.IsDir() {
		t.Errorf("IsDir() = true, want false")
	}
}

func TestEntryNameTooLong(t *testing.T) {
	long := make([]byte, maxNameLen+1)
	for i := range long {
		long[i] = 'a'
	}
	if _, err := NewFileEntry(string(long)); err != ErrNameTooLong {
		t.Fatalf("err = %v, want ErrNameTooLong", err)
	}
}

func TestEntryDirectoryBit(t *testing.T) {
	e, err := NewDirEntry("sub", 3)
	if err != nil {
		t.Fatalf("NewDirEntry: %v", err)
	}
	if !e.IsDir() {
		t.Fatalf("IsDir() = false, want true")
	}
	if e.FileSize() != 0 {
		t.Errorf("FileSize() = %d, want 0 (directory bit must not leak into size)", e.FileSize())
	}

	buf, err := e.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary: %v", err)
	}
	var got Entry
	if err := got.UnmarshalBinary(buf); err != nil {
		t.Fatalf("UnmarshalBinary: %v", err)
	}
	if !got.IsDir() {
		t.Errorf("round-tripped entry lost its directory bit")
	}
	if got.FirstBlock != 3 {
		t.Errorf("FirstBlock = %d, want 3", got.FirstBlock)
	}
}

func TestEntryClearIsFree(t *testing.T) {
	e, _ := NewFileEntry("x")
	e.clear()
	if !e.Free() {
		t.Fatalf("cleared entry reports Free() = false")
	}
	if e.FirstBlock != SFS_BLOCKIDX_EMPTY {
		t.Errorf("cleared entry FirstBlock = %d, want SFS_BLOCKIDX_EMPTY", e.FirstBlock)
	}
}

func TestRegionLayoutHasNoGaps(t *testing.T) {
	if SFS_BLOCKTBL_OFF != SFS_ROOTDIR_OFF+SFS_ROOTDIR_NENTRIES*entrySize {
		t.Errorf("block table does not immediately follow the root directory")
	}
	if SFS_DATA_OFF != SFS_BLOCKTBL_OFF+SFS_BLOCKTBL_NENTRIES*2 {
		t.Errorf("data region does not immediately follow the block table")
	}
	if ImageSize != SFS_DATA_OFF+SFS_BLOCKTBL_NENTRIES*SFS_BLOCK_SIZE {
		t.Errorf("ImageSize does not account for every data block")
	}
}
