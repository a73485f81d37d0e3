package ipc

import (
	"fmt"
	"net"
	"os"
)

// Listen binds a Unix domain socket at path, removing any stale socket file
// left behind by a previous, uncleanly terminated process first (I1's
// cleanup-at-startup half).
func Listen(path string) (*net.UnixListener, error) {
	if err := removeStale(path); err != nil {
		return nil, err
	}
	addr, err := net.ResolveUnixAddr("unix", path)
	if err != nil {
		return nil, fmt.Errorf("resolve unix addr %q: %w", path, err)
	}
	ln, err := net.ListenUnix("unix", addr)
	if err != nil {
		return nil, fmt.Errorf("listen unix %q: %w", path, err)
	}
	return ln, nil
}

// removeStale unlinks a leftover socket file, if any. A socket path that
// exists but isn't a socket is left alone and surfaces as a listen error.
func removeStale(path string) error {
	info, err := os.Lstat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("stat %q: %w", path, err)
	}
	if info.Mode()&os.ModeSocket == 0 {
		return fmt.Errorf("refusing to remove non-socket file %q", path)
	}
	return os.Remove(path)
}

// Cleanup unlinks the socket path. Safe to call even if the file is already
// gone; used at shutdown (I1, §4.4). The startup unlink of a stale socket is
// done by Listen itself.
func Cleanup(path string) {
	_ = os.Remove(path)
}

// Dial connects to a Unix domain socket endpoint. Clients are expected to be
// short-lived (§5, "Shared-resource policy").
func Dial(path string) (*net.UnixConn, error) {
	addr, err := net.ResolveUnixAddr("unix", path)
	if err != nil {
		return nil, fmt.Errorf("resolve unix addr %q: %w", path, err)
	}
	conn, err := net.DialUnix("unix", nil, addr)
	if err != nil {
		return nil, fmt.Errorf("dial unix %q: %w", path, err)
	}
	return conn, nil
}
