package dispatch

import (
	"bufio"
	"fmt"

	"github.com/joebertj/awesh/internal/ipc"
)

// SocketBackend implements Backend over the proxy's public Unix socket,
// which impersonates the frontend to the real backend (§3, §6).
type SocketBackend struct {
	socketPath string
}

// NewSocketBackend targets the proxy's public endpoint at socketPath.
func NewSocketBackend(socketPath string) *SocketBackend {
	return &SocketBackend{socketPath: socketPath}
}

// Send dials the proxy, writes line, and returns whatever single-line reply
// comes back. A line that already starts with a settings prefix (VERBOSE:,
// AI_PROVIDER:, MODEL:) is written as is; any other line is written as a
// QUERY:.
func (b *SocketBackend) Send(line string) (string, error) {
	conn, err := ipc.Dial(b.socketPath)
	if err != nil {
		return "", fmt.Errorf("dial backend: %w", err)
	}
	defer conn.Close()

	msg := ipc.PrefixQuery + line
	for _, p := range []string{ipc.PrefixVerbose, ipc.PrefixAIProvider, ipc.PrefixModel} {
		if len(line) >= len(p) && line[:len(p)] == p {
			msg = line
			break
		}
	}
	if _, err := fmt.Fprintf(conn, "%s\n", msg); err != nil {
		return "", fmt.Errorf("send query: %w", err)
	}

	reply, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read reply: %w", err)
	}
	return trimTrailingNewline(reply), nil
}

func trimTrailingNewline(s string) string {
	n := len(s)
	for n > 0 && (s[n-1] == '\n' || s[n-1] == '\r') {
		n--
	}
	return s[:n]
}
