// Package hostfs adapts the filesystem-operations adapter to a concrete
// host FS bridge: github.com/hanwen/go-fuse/v2's in-process, path/inode
// tree FUSE server. It is the Go-native stand-in for the original's Dokan
// bridge — no Dokan binding exists for Go, so the adapter is wired to a
// FUSE tree instead, translating adapter.Status to syscall.Errno at every
// boundary.
package hostfs

import (
	"context"
	"syscall"

	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"

	"github.com/autobrr/xvfs/internal/adapter"
	"github.com/autobrr/xvfs/internal/index"
	"github.com/autobrr/xvfs/internal/volume"
	"github.com/autobrr/xvfs/internal/xdvdfs"
)

// Node is one file or directory in the mounted tree. It holds only a
// handle into the Container's immutable index; all real state lives in
// the Container.
type Node struct {
	fs.Inode

	a *adapter.Adapter
	h index.Handle
}

var (
	_ fs.NodeLookuper  = (*Node)(nil)
	_ fs.NodeReaddirer = (*Node)(nil)
	_ fs.NodeGetattrer = (*Node)(nil)
	_ fs.NodeOpener    = (*Node)(nil)
	_ fs.NodeReader    = (*Node)(nil)
)

// NewRoot returns the embedder for the tree root, backed by vol.
func NewRoot(vol *volume.Container) fs.InodeEmbedder {
	return &Node{a: adapter.New(vol), h: index.RootHandle}
}

// statusToErrno translates the adapter's host-agnostic Status to the
// syscall.Errno values go-fuse expects.
func statusToErrno(s adapter.Status) syscall.Errno {
	switch s {
	case adapter.OK:
		return 0
	case adapter.NotFound:
		return syscall.ENOENT
	case adapter.AccessDenied:
		return syscall.EACCES
	case adapter.IsADirectory:
		return syscall.EISDIR
	case adapter.Unsupported:
		return syscall.ENOSYS
	case adapter.NameCollision:
		return syscall.EEXIST
	case adapter.IOError:
		return syscall.EIO
	default:
		return syscall.EIO
	}
}

func modeFor(isDir bool) uint32 {
	if isDir {
		return fuse.S_IFDIR | 0o555
	}
	return fuse.S_IFREG | 0o444
}

func fillAttr(info adapter.FileInformation, out *fuse.Attr) {
	out.Mode = modeFor(info.Attributes&xdvdfs.AttrDirectory != 0)
	out.Size = uint64(info.FileSize)
	out.SetTimes(&info.LastAccessTime, &info.LastWriteTime, &info.CreationTime)
	out.Ino = info.FileIndex
	out.Nlink = info.NumberOfLinks
}

// Lookup resolves name as a direct child of n via the Container's
// handle/name resolution, independent of path strings.
func (n *Node) Lookup(ctx context.Context, name string, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	child, status := n.a.ChildByName(n.h, name)
	if status != adapter.OK {
		return nil, statusToErrno(status)
	}

	info, status := n.a.InfoByHandle(child.Entry)
	if status != adapter.OK {
		return nil, statusToErrno(status)
	}

	fillAttr(info, &out.Attr)
	childNode := &Node{a: n.a, h: child.Entry}
	stable := fs.StableAttr{Mode: modeFor(child.IsDirectory), Ino: info.FileIndex}
	return n.NewInode(ctx, childNode, stable), 0
}

// Readdir lists n's children via the Container.
func (n *Node) Readdir(ctx context.Context) (fs.DirStream, syscall.Errno) {
	children, status := n.a.ListChildren(n.h)
	if status != adapter.OK {
		return nil, statusToErrno(status)
	}

	list := make([]fuse.DirEntry, 0, len(children))
	for _, c := range children {
		list = append(list, fuse.DirEntry{
			Name: c.Name,
			Mode: modeFor(c.Attributes&xdvdfs.AttrDirectory != 0),
		})
	}
	return fs.NewListDirStream(list), 0
}

// Getattr fills out with n's stat-like attributes.
func (n *Node) Getattr(ctx context.Context, f fs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	info, status := n.a.InfoByHandle(n.h)
	if status != adapter.OK {
		return statusToErrno(status)
	}
	fillAttr(info, &out.Attr)
	return 0
}

// Open performs no per-handle bookkeeping: the volume is read-only and
// entirely stateless beyond the Container, so reads are served directly
// from the node's own handle without a distinct FileHandle.
func (n *Node) Open(ctx context.Context, flags uint32) (fs.FileHandle, uint32, syscall.Errno) {
	return nil, fuse.FOPEN_KEEP_CACHE, 0
}

// Read serves file contents through the Container's clamped read
// contract.
func (n *Node) Read(ctx context.Context, f fs.FileHandle, dest []byte, off int64) (fuse.ReadResult, syscall.Errno) {
	nRead, status := n.a.ReadByHandle(n.h, off, dest)
	if status != adapter.OK {
		return nil, statusToErrno(status)
	}
	return fuse.ReadResultData(dest[:nRead]), 0
}
