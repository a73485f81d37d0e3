package sandbox

import (
	"fmt"
	"os"
	"path/filepath"
	"syscall"
)

// essentialDirs mirrors the fallback symlink set from the original sandbox
// when a read-only bind mount is unavailable to an unprivileged process.
var essentialDirs = []string{"/bin", "/usr", "/lib", "/lib64", "/etc", "/opt", "/sbin"}

// writableStubs get empty, writable directories in the symlink fallback so
// that common tools which insist on writing scratch files (editors,
// package managers probing /tmp) don't immediately fail; none of this is a
// security boundary (§4.2 "does not promise escape-proof isolation").
var writableStubs = []string{"/tmp", "/var", "/home"}

// IsolationMode reports which filesystem isolation strategy is active.
type IsolationMode int

const (
	IsolationNone IsolationMode = iota
	IsolationBindMountReadOnly
	IsolationSymlinkFallback
)

// Root sets up the sandbox's private filesystem root and returns the path
// to chroot into along with the mode that was achieved (§4.2).
type Root struct {
	Path string
	Mode IsolationMode
}

// Setup attempts a read-only bind mount of "/" onto a private root first;
// if that fails (typically for lack of CAP_SYS_ADMIN), it falls back to a
// directory of symlinks to the essential directories plus writable stubs.
// The spec requires only that the root end up read-only or chrooted, not
// that the fallback resist a determined local user (Design Notes, Open
// Questions: "does not provide read-only semantics").
func Setup(sandboxRoot string) (*Root, error) {
	if err := os.MkdirAll(sandboxRoot, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir sandbox root %q: %w", sandboxRoot, err)
	}

	if err := syscall.Mount("/", sandboxRoot, "", syscall.MS_BIND|syscall.MS_RDONLY, ""); err == nil {
		return &Root{Path: sandboxRoot, Mode: IsolationBindMountReadOnly}, nil
	}

	if err := buildSymlinkFallback(sandboxRoot); err != nil {
		return nil, fmt.Errorf("symlink fallback: %w", err)
	}
	return &Root{Path: sandboxRoot, Mode: IsolationSymlinkFallback}, nil
}

func buildSymlinkFallback(root string) error {
	for _, dir := range essentialDirs {
		target := filepath.Join(root, dir)
		if _, err := os.Lstat(target); err == nil {
			continue
		}
		if err := os.Symlink(dir, target); err != nil {
			return fmt.Errorf("symlink %q: %w", dir, err)
		}
	}
	for _, dir := range writableStubs {
		if err := os.MkdirAll(filepath.Join(root, dir), 0o755); err != nil {
			return fmt.Errorf("mkdir stub %q: %w", dir, err)
		}
	}
	return nil
}

// Enter chroots the calling process into r, preserving the caller's working
// directory (§4.2). Must be called before spawning the sandbox's long-lived
// shell, and only works with sufficient privilege; callers should treat
// failure as non-fatal and continue unconfined, matching the original's
// best-effort posture.
func (r *Root) Enter(preserveCwd string) error {
	if err := syscall.Chroot(r.Path); err != nil {
		return fmt.Errorf("chroot %q: %w", r.Path, err)
	}
	if preserveCwd != "" {
		if err := os.Chdir(preserveCwd); err != nil {
			return fmt.Errorf("chdir %q after chroot: %w", preserveCwd, err)
		}
	}
	return nil
}

// Teardown unmounts a bind-mounted root. Symlink fallbacks need no
// unmounting.
func (r *Root) Teardown() {
	if r.Mode == IsolationBindMountReadOnly {
		_ = syscall.Unmount(r.Path, 0)
	}
}
