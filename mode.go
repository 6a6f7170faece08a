package sfs

import (
	"io/fs"
)

// SFS only ever represents two node kinds: directories and regular files
// (spec.md's Non-goals exclude symlinks, devices and sockets). The mode
// bits are still Linux-shaped so attributes reported at the VFS boundary
// line up with what a FUSE bridge or an os.FileInfo caller expects.
// Based on: https://golang.org/src/os/stat_linux.go
const (
	S_IFREG = 0x8000
	S_IFDIR = 0x4000

	S_IRUSR = 0x100
	S_IWUSR = 0x80
	S_IXUSR = 0x40
	S_IRGRP = 0x20
	S_IWGRP = 0x10
	S_IXGRP = 0x8
	S_IROTH = 0x4
	S_IWOTH = 0x2
	S_IXOTH = 0x1

	// defaultDirPerm/defaultFilePerm are the permission bits stamped on
	// every entry's reported mode; SFS has no on-disk permission field
	// (spec.md §6: "Permissions ... beyond what the host requires").
	defaultDirPerm  = 0755
	defaultFilePerm = 0644
)

// UnixToMode converts a Linux S_IF*|perm word into an fs.FileMode.
func UnixToMode(mode uint32) fs.FileMode {
	res := fs.FileMode(mode & 0777)
	if mode&S_IFDIR == S_IFDIR {
		res |= fs.ModeDir
	}
	return res
}

// ModeToUnix converts an fs.FileMode back into a Linux S_IF*|perm word.
func ModeToUnix(mode fs.FileMode) uint32 {
	res := uint32(mode.Perm())
	if mode.IsDir() {
		res |= S_IFDIR
	} else {
		res |= S_IFREG
	}
	return res
}
