package sandbox

import (
	"bufio"
	"log/slog"
	"net"

	"github.com/joebertj/awesh/internal/ipc"
)

// Server accepts candidate commands on the sandbox's Unix socket, classifies
// each with a single long-lived Validator, and hands the verdict to the
// frontend through the shared mmap region, acking on the socket itself
// (§3, §5: request/ack is the happens-before edge for the shared region).
type Server struct {
	listener  *net.UnixListener
	validator *Validator
	region    *ipc.Region
	log       *slog.Logger
}

// NewServer wires listener, validator and region together.
func NewServer(listener *net.UnixListener, validator *Validator, region *ipc.Region, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{listener: listener, validator: validator, region: region, log: log}
}

// Serve accepts connections until the listener is closed. The sandbox
// socket serves one request per connection; clients are expected to dial,
// send one line, read one ack, and close (§5 "Shared-resource policy").
func (s *Server) Serve() error {
	for {
		conn, err := s.listener.AcceptUnix()
		if err != nil {
			return err
		}
		s.handle(conn)
	}
}

func (s *Server) handle(conn *net.UnixConn) {
	defer conn.Close()

	reader := bufio.NewReader(conn)
	line, err := reader.ReadString('\n')
	if err != nil {
		s.log.Warn("sandbox: read candidate failed", "err", err)
		return
	}
	candidate := trimNewline(line)

	outcome := s.validator.Classify(candidate)

	rec := ipc.Record{
		ExitCode: outcome.Verdict.ExitCode(outcome.ExitCode),
		Stdout:   []byte(outcome.Stdout),
		Stderr:   []byte(outcome.Stderr),
	}

	s.log.Debug("sandbox: classified candidate",
		"session", s.validator.session.SessionID(),
		"verdict", outcome.Verdict)

	if err := s.region.Write(rec); err != nil {
		s.log.Error("sandbox: write verdict region failed", "err", err)
		_, _ = conn.Write([]byte(ipc.ReplyError + "\n"))
		return
	}

	if _, err := conn.Write([]byte(ipc.ReplyOK + "\n")); err != nil {
		s.log.Warn("sandbox: ack write failed", "err", err)
	}
}

func trimNewline(s string) string {
	n := len(s)
	for n > 0 && (s[n-1] == '\n' || s[n-1] == '\r') {
		n--
	}
	return s[:n]
}
