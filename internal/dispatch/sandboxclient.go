package dispatch

import (
	"bufio"
	"fmt"

	"github.com/joebertj/awesh/internal/ipc"
)

// SocketSandbox implements Sandbox over the sandbox's Unix socket and the
// shared verdict region it writes into before acking (§3, §5).
type SocketSandbox struct {
	socketPath string
	region     *ipc.Region
}

// NewSocketSandbox targets socketPath and reads verdicts out of region,
// which the caller must already have opened with ipc.OpenRegion; the
// frontend only ever reads from it (§3, "single reader").
func NewSocketSandbox(socketPath string, region *ipc.Region) *SocketSandbox {
	return &SocketSandbox{socketPath: socketPath, region: region}
}

// Validate sends line to the sandbox, waits for its ack, and decodes the
// verdict record the sandbox wrote into the shared region before acking.
func (s *SocketSandbox) Validate(line string) (ipc.Verdict, int, error) {
	conn, err := ipc.Dial(s.socketPath)
	if err != nil {
		return ipc.VerdictUnknown, 0, fmt.Errorf("dial sandbox: %w", err)
	}
	defer conn.Close()

	if _, err := fmt.Fprintf(conn, "%s\n", line); err != nil {
		return ipc.VerdictUnknown, 0, fmt.Errorf("send candidate: %w", err)
	}

	ack, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		return ipc.VerdictUnknown, 0, fmt.Errorf("read ack: %w", err)
	}
	if trimTrailingNewline(ack) != ipc.ReplyOK {
		return ipc.VerdictUnknown, 0, fmt.Errorf("sandbox reported error validating %q", line)
	}

	rec, err := s.region.Read()
	if err != nil {
		return ipc.VerdictUnknown, 0, fmt.Errorf("decode verdict: %w", err)
	}

	return ipc.VerdictFromExitCode(rec.ExitCode), rec.ExitCode, nil
}
