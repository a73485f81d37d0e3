package proxy

import (
	"bufio"
	"io"
	"log/slog"

	"github.com/joebertj/awesh/internal/ipc"
)

// Relay ferries line-oriented traffic between one frontend connection and
// one backend connection, inspecting every frontend-to-backend line against
// the compiled pattern tiers before forwarding it (§4.3). Backend-to-frontend
// traffic is never inspected or altered: the proxy impersonates the
// frontend to the backend, and the backend to the frontend, but only
// filters in one direction (§3).
type Relay struct {
	matcher *Matcher
	log     *slog.Logger
}

// NewRelay builds a Relay around matcher.
func NewRelay(matcher *Matcher, log *slog.Logger) *Relay {
	if log == nil {
		log = slog.Default()
	}
	return &Relay{matcher: matcher, log: log}
}

// Run pipes frontend <-> backend until either side closes or errors. When
// one direction finishes, both sides are closed (if they implement
// io.Closer) so the other direction ends too; Run returns once both have
// finished. frontend and backend need only support concurrent, independent
// read and write (a net.Conn qualifies).
func (r *Relay) Run(frontend, backend io.ReadWriter) {
	done := make(chan struct{}, 2)

	go func() {
		r.forwardFiltered(frontend, frontend, backend)
		done <- struct{}{}
	}()
	go func() {
		forwardUnchanged(backend, frontend)
		done <- struct{}{}
	}()

	<-done
	for _, side := range []io.ReadWriter{frontend, backend} {
		if c, ok := side.(io.Closer); ok {
			_ = c.Close()
		}
	}
	<-done
}

// forwardFiltered reads lines sent by the frontend and writes them on to
// the backend unless a pattern tier blocks them. A blocked line is never
// forwarded; instead the fixed refusal is written back to the frontend
// itself (I3: the refusal only ever reaches the frontend side).
func (r *Relay) forwardFiltered(frontend io.Reader, frontendReply, backend io.Writer) {
	scanner := bufio.NewScanner(frontend)
	scanner.Buffer(make([]byte, 64*1024), 1<<20)
	for scanner.Scan() {
		line := scanner.Text()

		if ipc.IsSystemPrefixed(line) {
			if _, err := io.WriteString(backend, line+"\n"); err != nil {
				return
			}
			continue
		}

		tier := r.matcher.Classify(line)
		if tier != TierNone {
			r.log.Warn("proxy: blocked payload", "tier", tier.String())
			if _, err := io.WriteString(frontendReply, ipc.SecurityBlockedNotice+"\n"); err != nil {
				return
			}
			continue
		}

		if _, err := io.WriteString(backend, line+"\n"); err != nil {
			return
		}
	}
}

// forwardUnchanged copies src to dst byte-for-byte with no inspection.
func forwardUnchanged(src io.Reader, dst io.Writer) {
	_, _ = io.Copy(dst, src)
}
