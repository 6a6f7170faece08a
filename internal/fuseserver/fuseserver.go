// Package fuseserver bridges an *sfs.FS engine to the kernel via
// go-fuse's InodeEmbedder API (spec.md §6's "External Interfaces").
// It is deliberately thin: every node just carries the absolute path
// it represents and forwards to the engine, which already does all of
// the real work (resolution, allocation, codec) against the image.
package fuseserver

import (
	"context"
	"log"
	"path/filepath"
	"syscall"

	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"

	"github.com/sfsfs/sfs"
)

// Options controls how the filesystem is exposed.
type Options struct {
	// Verbose enables per-operation logging, mirroring the reference
	// mount tool's -v flag.
	Verbose bool
}

// Node is the InodeEmbedder for every file and directory in the mount.
type Node struct {
	fs.Inode

	engine *sfs.FS
	opts   *Options
	path   string
}

var (
	_ fs.NodeLookuper  = (*Node)(nil)
	_ fs.NodeGetattrer = (*Node)(nil)
	_ fs.NodeReaddirer = (*Node)(nil)
	_ fs.NodeOpener    = (*Node)(nil)
	_ fs.NodeCreater   = (*Node)(nil)
	_ fs.NodeMkdirer   = (*Node)(nil)
	_ fs.NodeUnlinker  = (*Node)(nil)
	_ fs.NodeRmdirer   = (*Node)(nil)
	_ fs.NodeRenamer   = (*Node)(nil)
	_ fs.NodeSetattrer = (*Node)(nil)
)

// Root builds the filesystem root node for the given engine.
func Root(engine *sfs.FS, opts *Options) *Node {
	if opts == nil {
		opts = &Options{}
	}
	return &Node{engine: engine, opts: opts, path: "/"}
}

func (n *Node) logf(format string, args ...any) {
	if n.opts.Verbose {
		log.Printf(format, args...)
	}
}

func (n *Node) child(name string) string {
	return filepath.Join(n.path, name)
}

func fillAttr(out *fuse.Attr, a sfs.Attr) {
	out.Mode = a.Mode
	out.Size = a.Size
	out.Nlink = a.Nlink
	out.Blksize = sfs.SFS_BLOCK_SIZE
	out.Owner = fuse.Owner{Uid: a.Uid, Gid: a.Gid}
	out.SetTimes(&a.Atime, &a.Mtime, &a.Ctime)
}

func (n *Node) newChild(ctx context.Context, path string, a sfs.Attr) *fs.Inode {
	child := &Node{engine: n.engine, opts: n.opts, path: path}
	return n.NewInode(ctx, child, fs.StableAttr{Mode: a.Mode & syscall.S_IFMT})
}

// Lookup resolves name within this directory.
func (n *Node) Lookup(ctx context.Context, name string, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	full := n.child(name)
	a, err := n.engine.Getattr(full)
	if err != nil {
		return nil, sfs.ToErrno(err)
	}
	fillAttr(&out.Attr, a)
	return n.newChild(ctx, full, a), 0
}

// Getattr reports the attributes of this node.
func (n *Node) Getattr(ctx context.Context, f fs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	a, err := n.engine.Getattr(n.path)
	if err != nil {
		return sfs.ToErrno(err)
	}
	fillAttr(&out.Attr, a)
	return 0
}

// Readdir lists this directory's children.
func (n *Node) Readdir(ctx context.Context) (fs.DirStream, syscall.Errno) {
	entries, err := n.engine.Readdir(n.path)
	if err != nil {
		return nil, sfs.ToErrno(err)
	}
	out := make([]fuse.DirEntry, len(entries))
	for i, e := range entries {
		mode := uint32(syscall.S_IFREG)
		if e.IsDir {
			mode = syscall.S_IFDIR
		}
		out[i] = fuse.DirEntry{Name: e.Name, Mode: mode}
	}
	return fs.NewListDirStream(out), 0
}

// Open readies the node for Read/Write; sfs has no file-handle state of
// its own, so no handle is returned and reads and writes go to this node.
func (n *Node) Open(ctx context.Context, flags uint32) (fs.FileHandle, uint32, syscall.Errno) {
	n.logf("open %s", n.path)
	return nil, 0, 0
}

// Read satisfies fs.NodeReader by forwarding to the engine directly,
// since Open above never allocates a separate handle.
func (n *Node) Read(ctx context.Context, f fs.FileHandle, dest []byte, off int64) (fuse.ReadResult, syscall.Errno) {
	nr, err := n.engine.Read(n.path, off, dest)
	if err != nil {
		return nil, sfs.ToErrno(err)
	}
	return fuse.ReadResultData(dest[:nr]), 0
}

// Write satisfies fs.NodeWriter by forwarding to the engine directly.
func (n *Node) Write(ctx context.Context, f fs.FileHandle, data []byte, off int64) (uint32, syscall.Errno) {
	nw, err := n.engine.Write(n.path, off, data)
	if err != nil {
		return uint32(nw), sfs.ToErrno(err)
	}
	return uint32(nw), 0
}

var (
	_ fs.NodeReader = (*Node)(nil)
	_ fs.NodeWriter = (*Node)(nil)
)

// Create makes a new regular file and returns a node for it.
func (n *Node) Create(ctx context.Context, name string, flags uint32, mode uint32, out *fuse.EntryOut) (*fs.Inode, fs.FileHandle, uint32, syscall.Errno) {
	full := n.child(name)
	if err := n.engine.Create(full); err != nil {
		return nil, nil, 0, sfs.ToErrno(err)
	}
	a, err := n.engine.Getattr(full)
	if err != nil {
		return nil, nil, 0, sfs.ToErrno(err)
	}
	fillAttr(&out.Attr, a)
	return n.newChild(ctx, full, a), nil, 0, 0
}

// Mkdir makes a new directory and returns a node for it.
func (n *Node) Mkdir(ctx context.Context, name string, mode uint32, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	full := n.child(name)
	if err := n.engine.Mkdir(full); err != nil {
		return nil, sfs.ToErrno(err)
	}
	a, err := n.engine.Getattr(full)
	if err != nil {
		return nil, sfs.ToErrno(err)
	}
	fillAttr(&out.Attr, a)
	return n.newChild(ctx, full, a), 0
}

// Unlink removes a regular file.
func (n *Node) Unlink(ctx context.Context, name string) syscall.Errno {
	return sfs.ToErrno(n.engine.Unlink(n.child(name)))
}

// Rmdir removes an empty directory.
func (n *Node) Rmdir(ctx context.Context, name string) syscall.Errno {
	return sfs.ToErrno(n.engine.Rmdir(n.child(name)))
}

// Rename moves name to newName under newParent.
func (n *Node) Rename(ctx context.Context, name string, newParent fs.InodeEmbedder, newName string, flags uint32) syscall.Errno {
	dest, ok := newParent.(*Node)
	if !ok {
		return syscall.EINVAL
	}
	return sfs.ToErrno(n.engine.Rename(n.child(name), dest.child(newName)))
}

// Setattr handles truncate (the only attribute sfs can actually apply).
func (n *Node) Setattr(ctx context.Context, f fs.FileHandle, in *fuse.SetAttrIn, out *fuse.AttrOut) syscall.Errno {
	if size, ok := in.GetSize(); ok {
		if err := n.engine.Truncate(n.path, int64(size)); err != nil {
			return sfs.ToErrno(err)
		}
	}
	a, err := n.engine.Getattr(n.path)
	if err != nil {
		return sfs.ToErrno(err)
	}
	fillAttr(&out.Attr, a)
	return 0
}

// Mount mounts the engine's image at mountpoint and serves requests
// until the filesystem is unmounted or the context is canceled.
func Mount(ctx context.Context, engine *sfs.FS, mountpoint string, opts *Options) error {
	if opts == nil {
		opts = &Options{}
	}
	root := Root(engine, opts)
	server, err := fs.Mount(mountpoint, root, &fs.Options{
		MountOptions: fuse.MountOptions{
			Debug:      opts.Verbose,
			FsName:     "sfs",
			Name:       "sfs",
			AllowOther: false,
		},
	})
	if err != nil {
		return err
	}
	go func() {
		<-ctx.Done()
		_ = server.Unmount()
	}()
	server.Wait()
	return nil
}
