package sfs

import (
	"bytes"
	"os"
	"testing"
)

func newTestFS(t *testing.T) *FS {
	return New(openTempImage(t))
}

func TestMkdirAndReaddir(t *testing.T) {
	fs := newTestFS(t)

	if err := fs.Mkdir("/sub"); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}
	entries, err := fs.Readdir("/")
	if err != nil {
		t.Fatalf("Readdir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name != "sub" || !entries[0].IsDir {
		t.Fatalf("Readdir(/) = %+v, want one directory entry named sub", entries)
	}

	if err := fs.Mkdir("/sub"); err != ErrExist {
		t.Fatalf("Mkdir duplicate: err = %v, want ErrExist", err)
	}

	if err := fs.Mkdir("/sub/nested"); err != nil {
		t.Fatalf("Mkdir nested: %v", err)
	}
	entries, err = fs.Readdir("/sub")
	if err != nil {
		t.Fatalf("Readdir(/sub): %v", err)
	}
	if len(entries) != 1 || entries[0].Name != "nested" {
		t.Fatalf("Readdir(/sub) = %+v, want one entry named nested", entries)
	}
}

func TestCreateWriteReadTruncate(t *testing.T) {
	fs := newTestFS(t)

	if err := fs.Create("/file.txt"); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := fs.Create("/file.txt"); err != ErrExist {
		t.Fatalf("Create duplicate: err = %v, want ErrExist", err)
	}

	data := []byte("hello, sfs")
	n, err := fs.Write("/file.txt", 0, data)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if n != len(data) {
		t.Fatalf("Write returned %d, want %d", n, len(data))
	}

	buf := make([]byte, len(data))
	n, err = fs.Read("/file.txt", 0, buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !bytes.Equal(buf[:n], data) {
		t.Fatalf("Read = %q, want %q", buf[:n], data)
	}

	attr, err := fs.Getattr("/file.txt")
	if err != nil {
		t.Fatalf("Getattr: %v", err)
	}
	if attr.Size != uint64(len(data)) {
		t.Fatalf("Getattr size = %d, want %d", attr.Size, len(data))
	}

	if err := fs.Truncate("/file.txt", 3); err != nil {
		t.Fatalf("Truncate: %v", err)
	}
	attr, err = fs.Getattr("/file.txt")
	if err != nil {
		t.Fatalf("Getattr after truncate: %v", err)
	}
	if attr.Size != 3 {
		t.Fatalf("Getattr size after truncate = %d, want 3", attr.Size)
	}
}

func TestTruncateShrinkThenGrowWithinSameBlockIsZeroed(t *testing.T) {
	fs := newTestFS(t)
	if err := fs.Create("/f"); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := fs.Write("/f", 0, bytes.Repeat([]byte{0xAA}, SFS_BLOCK_SIZE)); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := fs.Truncate("/f", 10); err != nil {
		t.Fatalf("Truncate shrink: %v", err)
	}
	if err := fs.Truncate("/f", SFS_BLOCK_SIZE); err != nil {
		t.Fatalf("Truncate grow back: %v", err)
	}

	buf := make([]byte, SFS_BLOCK_SIZE)
	n, err := fs.Read("/f", 0, buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if n != SFS_BLOCK_SIZE {
		t.Fatalf("Read after shrink-then-grow returned %d bytes, want %d", n, SFS_BLOCK_SIZE)
	}
	want := make([]byte, SFS_BLOCK_SIZE-10)
	if !bytes.Equal(buf[10:], want) {
		t.Fatalf("Read after shrink-then-grow in [10, %d) = %x, want all zero", SFS_BLOCK_SIZE, buf[10:])
	}
}

func TestWriteGapIsZeroFilled(t *testing.T) {
	fs := newTestFS(t)
	if err := fs.Create("/sparse"); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := fs.Write("/sparse", 0, []byte("AB")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := fs.Write("/sparse", 10, []byte("Z")); err != nil {
		t.Fatalf("Write (gap): %v", err)
	}

	buf := make([]byte, 11)
	n, err := fs.Read("/sparse", 0, buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	want := []byte("AB\x00\x00\x00\x00\x00\x00\x00\x00Z")
	if !bytes.Equal(buf[:n], want) {
		t.Fatalf("Read = %q, want %q", buf[:n], want)
	}
}

func TestWriteAcrossBlockBoundary(t *testing.T) {
	fs := newTestFS(t)
	if err := fs.Create("/big"); err != nil {
		t.Fatalf("Create: %v", err)
	}
	data := make([]byte, SFS_BLOCK_SIZE+100)
	for i := range data {
		data[i] = byte(i)
	}
	if _, err := fs.Write("/big", 0, data); err != nil {
		t.Fatalf("Write: %v", err)
	}
	buf := make([]byte, len(data))
	n, err := fs.Read("/big", 0, buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !bytes.Equal(buf[:n], data) {
		t.Fatalf("round-tripped data across a block boundary does not match")
	}
}

func TestUnlinkAndRmdir(t *testing.T) {
	fs := newTestFS(t)
	if err := fs.Create("/a"); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := fs.Unlink("/a"); err != nil {
		t.Fatalf("Unlink: %v", err)
	}
	if _, err := fs.Getattr("/a"); err != ErrNotFound {
		t.Fatalf("Getattr after unlink: err = %v, want ErrNotFound", err)
	}

	if err := fs.Mkdir("/d"); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}
	if err := fs.Create("/d/inner"); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := fs.Rmdir("/d"); err != ErrNotEmpty {
		t.Fatalf("Rmdir non-empty: err = %v, want ErrNotEmpty", err)
	}
	if err := fs.Unlink("/d/inner"); err != nil {
		t.Fatalf("Unlink: %v", err)
	}
	if err := fs.Rmdir("/d"); err != nil {
		t.Fatalf("Rmdir empty: %v", err)
	}
}

func TestUnlinkRejectsDirectory(t *testing.T) {
	fs := newTestFS(t)
	if err := fs.Mkdir("/d"); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}
	if err := fs.Unlink("/d"); err != ErrIsDir {
		t.Fatalf("Unlink directory: err = %v, want ErrIsDir", err)
	}
}

func TestRename(t *testing.T) {
	fs := newTestFS(t)
	if err := fs.Create("/old"); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := fs.Write("/old", 0, []byte("payload")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := fs.Mkdir("/dir"); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}
	if err := fs.Rename("/old", "/dir/new"); err != nil {
		t.Fatalf("Rename: %v", err)
	}
	if _, err := fs.Getattr("/old"); err != ErrNotFound {
		t.Fatalf("Getattr old path after rename: err = %v, want ErrNotFound", err)
	}
	buf := make([]byte, 7)
	n, err := fs.Read("/dir/new", 0, buf)
	if err != nil {
		t.Fatalf("Read renamed file: %v", err)
	}
	if string(buf[:n]) != "payload" {
		t.Fatalf("Read renamed file = %q, want %q", buf[:n], "payload")
	}

	if err := fs.Create("/dir/new2"); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := fs.Rename("/dir/new2", "/dir/new"); err != ErrExist {
		t.Fatalf("Rename onto existing name: err = %v, want ErrExist", err)
	}
}

func TestInteriorNonDirectoryRejected(t *testing.T) {
	fs := newTestFS(t)
	if err := fs.Create("/file"); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := fs.Getattr("/file/child"); err != ErrNotFound {
		t.Fatalf("Getattr through file: err = %v, want ErrNotFound", err)
	}
	if err := fs.Create("/file/child"); err != ErrNotDir {
		t.Fatalf("Create through file: err = %v, want ErrNotDir", err)
	}
}

func TestGetattrReportsInvokingUser(t *testing.T) {
	fs := newTestFS(t)
	if err := fs.Create("/f"); err != nil {
		t.Fatalf("Create: %v", err)
	}
	attr, err := fs.Getattr("/f")
	if err != nil {
		t.Fatalf("Getattr: %v", err)
	}
	if attr.Uid != uint32(os.Getuid()) || attr.Gid != uint32(os.Getgid()) {
		t.Fatalf("Getattr uid/gid = %d/%d, want %d/%d", attr.Uid, attr.Gid, os.Getuid(), os.Getgid())
	}
	if attr.Mtime.IsZero() {
		t.Fatalf("Getattr Mtime is zero, want a current timestamp")
	}

	rootAttr, err := fs.Getattr("/")
	if err != nil {
		t.Fatalf("Getattr(/): %v", err)
	}
	if rootAttr.Uid != uint32(os.Getuid()) || rootAttr.Gid != uint32(os.Getgid()) {
		t.Fatalf("Getattr(/) uid/gid = %d/%d, want %d/%d", rootAttr.Uid, rootAttr.Gid, os.Getuid(), os.Getgid())
	}
}

func TestReadPastEOF(t *testing.T) {
	fs := newTestFS(t)
	if err := fs.Create("/f"); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := fs.Write("/f", 0, []byte("abc")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	buf := make([]byte, 10)
	n, err := fs.Read("/f", 100, buf)
	if err != nil {
		t.Fatalf("Read past EOF: %v", err)
	}
	if n != 0 {
		t.Fatalf("Read past EOF returned %d bytes, want 0", n)
	}
}
