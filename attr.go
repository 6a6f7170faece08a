package sfs

import (
	"os"
	"time"
)

// Attr is the stat-shaped attribute record the engine reports at the
// VFS boundary (spec.md §4.5, §6). SFS carries no owner, permission, or
// timestamp fields on disk, so everything but Mode's type bit and Size
// is synthesized: owner/group default to the invoking process's
// credentials and every timestamp defaults to now, exactly as spec.md
// §6 commits ("standard process credentials ... used only to stamp
// owner/group on returned attributes").
type Attr struct {
	Mode  uint32
	Size  uint64
	Nlink uint32
	Uid   uint32
	Gid   uint32
	Mtime time.Time
	Atime time.Time
	Ctime time.Time
}

// currentOwner stamps the invoking process's uid/gid onto a, the shared
// tail of attrFromEntry and rootAttr.
func currentOwner(a Attr) Attr {
	a.Uid = uint32(os.Getuid())
	a.Gid = uint32(os.Getgid())
	a.Mtime, a.Atime, a.Ctime = now(), now(), now()
	return a
}

// attrFromEntry builds the reported attributes for a resolved entry.
func attrFromEntry(e Entry) Attr {
	if e.IsDir() {
		return currentOwner(Attr{Mode: S_IFDIR | defaultDirPerm, Size: 0, Nlink: 2})
	}
	return currentOwner(Attr{Mode: S_IFREG | defaultFilePerm, Size: uint64(e.FileSize()), Nlink: 1})
}

// rootAttr is the attribute record for "/" itself, which has no backing
// Entry (it is the region, not a slot in its parent).
func rootAttr() Attr {
	return currentOwner(Attr{Mode: S_IFDIR | defaultDirPerm, Size: 0, Nlink: 2})
}
