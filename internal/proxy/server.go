// Package proxy implements the transparent security proxy that sits between
// the frontend and the backend, inspecting outbound traffic for dangerous
// or sensitive shell patterns before it ever reaches the backend (§3, §4.3).
package proxy

import (
	"log/slog"
	"net"

	"github.com/joebertj/awesh/internal/ipc"
)

// Server accepts connections on the public endpoint impersonating the
// frontend, lazily dials the real backend for each one, and relays between
// them through a Relay (§3).
type Server struct {
	listener      *net.UnixListener
	backendSocket string
	matcher       *Matcher
	log           *slog.Logger
}

// NewServer wires listener, the backend dial target, and the pattern
// matcher together.
func NewServer(listener *net.UnixListener, backendSocket string, matcher *Matcher, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{listener: listener, backendSocket: backendSocket, matcher: matcher, log: log}
}

// Serve accepts frontend connections until the listener is closed.
func (s *Server) Serve() error {
	for {
		conn, err := s.listener.AcceptUnix()
		if err != nil {
			return err
		}
		go s.handle(conn)
	}
}

func (s *Server) handle(frontend *net.UnixConn) {
	defer frontend.Close()

	backend, err := ipc.Dial(s.backendSocket)
	if err != nil {
		s.log.Error("proxy: backend unreachable", "err", err)
		return
	}
	defer backend.Close()

	relay := NewRelay(s.matcher, s.log)
	relay.Run(frontend, backend)
}
