// Package mount constructs host FS bridge options, runs the bridge to
// completion, and dispatches shutdown on an interrupt/terminate signal.
// It replaces the original's Singleton<App>, used only to let a console
// control handler reach the running instance, with a single process-wide
// cell holding the active bridge (set once the mount succeeds, cleared
// after the bridge's main loop returns), per the redesign note this module
// implements.
package mount

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"

	"github.com/autobrr/xvfs/internal/config"
	"github.com/autobrr/xvfs/internal/hostfs"
	"github.com/autobrr/xvfs/internal/volume"
	"github.com/autobrr/xvfs/internal/xvfserr"
)

// FailureKind classifies a bridge startup failure the way the original's
// DokanMain status switch does, for CLI diagnostics.
type FailureKind int

const (
	FailureUnknown FailureKind = iota
	FailureMountPointInvalid
	FailureBridgeUnavailable
	FailureStartup
	FailureMount
	FailureMountPointInUse
	FailureVersionMismatch
)

// Diagnostic returns the human-readable guidance for kind, mirroring the
// original's per-status wcout messages.
func Diagnostic(kind FailureKind, mountPath string) string {
	switch kind {
	case FailureMountPointInvalid:
		return "the mount path is not usable; try a different, unused path"
	case FailureBridgeUnavailable:
		return "could not start the FUSE bridge; check that fusermount (or an equivalent) is installed"
	case FailureStartup:
		return "the FUSE bridge failed to start up; try again or check system logs"
	case FailureMount:
		return fmt.Sprintf("failed to mount at %s; try using a different mount path", mountPath)
	case FailureMountPointInUse:
		return fmt.Sprintf("%s is already in use as a mount point", mountPath)
	case FailureVersionMismatch:
		return "the installed FUSE version is not compatible with this build"
	default:
		return "an unknown error occurred starting the mount; please report this with reproduction steps"
	}
}

// classify maps a raw error from fs.Mount to a FailureKind. Unlike Dokan,
// go-fuse surfaces plain Go errors rather than fixed status codes, so this
// is a best-effort translation based on the underlying syscall errno.
func classify(err error) FailureKind {
	switch {
	case err == nil:
		return FailureUnknown
	case os.IsNotExist(err):
		return FailureMountPointInvalid
	case os.IsPermission(err):
		return FailureStartup
	}

	switch {
	case isErrno(err, syscall.EBUSY):
		return FailureMountPointInUse
	case isErrno(err, syscall.ENODEV), isErrno(err, syscall.ENOENT):
		return FailureBridgeUnavailable
	}

	return FailureUnknown
}

func isErrno(err error, target syscall.Errno) bool {
	var errno syscall.Errno
	for u := err; u != nil; {
		if e, ok := u.(syscall.Errno); ok {
			errno = e
			break
		}
		unwrapper, ok := u.(interface{ Unwrap() error })
		if !ok {
			break
		}
		u = unwrapper.Unwrap()
	}
	return errno == target
}

// bridgeCell is the process-wide slot the signal handler reads to find the
// running bridge. It is populated only between Run's Mount call and its
// return.
var bridgeCell struct {
	mu     sync.Mutex
	server *fuse.Server
}

func setBridge(s *fuse.Server) {
	bridgeCell.mu.Lock()
	bridgeCell.server = s
	bridgeCell.mu.Unlock()
}

func clearBridge() {
	bridgeCell.mu.Lock()
	bridgeCell.server = nil
	bridgeCell.mu.Unlock()
}

func requestUnmount() {
	bridgeCell.mu.Lock()
	s := bridgeCell.server
	bridgeCell.mu.Unlock()
	if s != nil {
		_ = s.Unmount()
	}
}

// Run builds bridge options from opts, mounts vol at opts.MountPath, and
// blocks until the bridge's main loop returns (normal unmount or a
// delivered shutdown signal). It returns a *xvfserr.Error with
// xvfserr.KindBridge on startup failure.
func Run(vol *volume.Container, opts config.Options) error {
	mountOpts := &fs.Options{
		MountOptions: fuse.MountOptions{
			FsName:         "xvfs",
			Name:           "xvfs",
			AllowOther:     false,
			Debug:          opts.Debug,
			DisableXAttrs:  true,
			SingleThreaded: false,
			Options:        []string{"ro"},
		},
	}

	root := hostfs.NewRoot(vol)
	server, err := fs.Mount(opts.MountPath, root, mountOpts)
	if err != nil {
		kind := classify(err)
		slog.Error("xvfs: failed to mount", "path", opts.MountPath, "error", err)
		return xvfserr.New(xvfserr.KindBridge, fmt.Errorf("%s: %w", Diagnostic(kind, opts.MountPath), err))
	}

	setBridge(server)
	defer clearBridge()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	go func() {
		if _, ok := <-sigCh; ok {
			slog.Info("xvfs: shutdown requested, unmounting")
			requestUnmount()
		}
	}()
	defer signal.Stop(sigCh)

	server.Wait()
	return nil
}
