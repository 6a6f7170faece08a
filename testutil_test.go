package sfs

import (
	"os"
	"path/filepath"
	"testing"
)

// openTempImage formats a blank image in a temporary file and opens it,
// registering cleanup to close and remove it. It is the shared fixture
// every other _test.go file in this package builds on.
func openTempImage(t *testing.T) *Image {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "test.img")
	if err := os.WriteFile(path, BlankImage(), 0644); err != nil {
		t.Fatalf("write blank image: %v", err)
	}
	img, err := OpenImage(path)
	if err != nil {
		t.Fatalf("OpenImage: %v", err)
	}
	t.Cleanup(func() { img.Close() })
	return img
}
