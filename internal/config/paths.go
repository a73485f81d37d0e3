package config

import "path/filepath"

// Paths collects the rendezvous points every awesh process needs to agree on
// (§3, §6): four Unix sockets rooted under the invoking user's home
// directory, and one shared-memory file at a fixed path under /tmp.
type Paths struct {
	PublicSocket   string // P's public endpoint, impersonating F to outside callers
	BackendSocket  string // P -> B
	SandboxSocket  string // F -> S
	FrontendSocket string // P -> F, out of band
	VerdictMmap    string
}

// Resolve builds the canonical Paths for home.
func Resolve(home string) Paths {
	return Paths{
		PublicSocket:   filepath.Join(home, ".awesh.sock"),
		BackendSocket:  filepath.Join(home, ".awesh_backend.sock"),
		SandboxSocket:  filepath.Join(home, ".awesh_sandbox.sock"),
		FrontendSocket: filepath.Join(home, ".awesh_frontend.sock"),
		VerdictMmap:    "/tmp/awesh_sandbox_output.mmap",
	}
}
