package sandbox

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/creack/pty"
	"github.com/google/uuid"

	"github.com/joebertj/awesh/internal/ipc"
)

const (
	// maxPollAttempts bounds how long a single validation request may poll
	// the PTY master before the candidate is presumed non-returning (§4.2,
	// "Attempt budget" glossary entry). 50 polls * 100ms matches the
	// original sandbox's five-second window; consecutiveEmptyCap empty polls
	// in a row (one second) end the polling earlier.
	pollInterval        = 100 * time.Millisecond
	maxPollAttempts     = 50
	consecutiveEmptyCap = 10

	defaultPromptSentinel = "PROMPT_SENTINEL$ "
	sentinelProbeTag      = "PS1_PROMPT:"
)

var shellErrorSubstrings = []string{
	"command not found",
	"No such file or directory",
	"Permission denied",
	"bash:",
	"sh:",
	"error:",
	"Error:",
}

// csiPattern strips terminal control-sequence-introducer escapes (CSI) from
// raw PTY output, e.g. cursor moves and color codes (§4.2 rule 6).
var csiPattern = regexp.MustCompile("\x1b\\[[0-9;?]*[a-zA-Z]")

// Session is a long-lived shell held open on a PTY master, amortizing
// fork/exec cost across many validation requests (§4.2 rule 1). It is
// guarded by the sandbox server's own single-threadedness (§5), not by an
// internal mutex: concurrent client connections are accepted sequentially.
type Session struct {
	ID       uuid.UUID
	cmd      *exec.Cmd
	ptmx     *os.File
	sentinel string
}

// Start launches shellPath as the sandbox's long-lived shell and returns a
// Session attached to its PTY master. Each session gets a fresh ID so log
// lines survive a sandbox restart (§4.4) without being attributed to the
// prior, now-dead shell.
func Start(shellPath string, dir string) (*Session, error) {
	cmd := exec.Command(shellPath)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), "PS1="+defaultPromptSentinel)

	ptmx, err := pty.Start(cmd)
	if err != nil {
		return nil, fmt.Errorf("start sandbox shell %q: %w", shellPath, err)
	}

	s := &Session{ID: uuid.New(), cmd: cmd, ptmx: ptmx, sentinel: defaultPromptSentinel}
	s.discoverSentinel()
	return s, nil
}

// discoverSentinel probes the session's live prompt by echoing a tagged
// sentinel and capturing what comes back (§4.2 rule 2). On any failure the
// default sentinel set at Start is kept (I4: never empty). The tag is split
// across two quoted words in the probe command, so the terminal's echo of
// the command itself never contains the tag; only the shell's output does.
func (s *Session) discoverSentinel() {
	probe := "echo \"" + sentinelProbeTag[:4] + "\"\"" + sentinelProbeTag[4:] + "$PS1\"\n"
	if _, err := s.ptmx.Write([]byte(probe)); err != nil {
		return
	}

	deadline := time.Now().Add(2 * time.Second)
	var buf bytes.Buffer
	tmp := make([]byte, 4096)
	for time.Now().Before(deadline) {
		_ = s.ptmx.SetReadDeadline(time.Now().Add(pollInterval))
		n, err := s.ptmx.Read(tmp)
		if n > 0 {
			buf.Write(tmp[:n])
			if idx := bytes.Index(buf.Bytes(), []byte(sentinelProbeTag)); idx >= 0 {
				rest := buf.Bytes()[idx+len(sentinelProbeTag):]
				if end := bytes.IndexByte(rest, '\n'); end >= 0 {
					candidate := strings.TrimSpace(string(rest[:end]))
					if candidate != "" {
						s.sentinel = candidate
					}
					return
				}
			}
		}
		if err != nil && !os.IsTimeout(err) {
			return
		}
	}
}

// drain performs a short non-blocking read burst to discard stale residue
// left on the master before submitting a new request (§4.2 rule 3).
func (s *Session) drain() {
	tmp := make([]byte, 4096)
	for i := 0; i < 3; i++ {
		_ = s.ptmx.SetReadDeadline(time.Now().Add(20 * time.Millisecond))
		if _, err := s.ptmx.Read(tmp); err != nil {
			return
		}
	}
}

// Close terminates the underlying shell and its PTY master.
func (s *Session) Close() error {
	if s.cmd.Process != nil {
		_ = s.cmd.Process.Kill()
	}
	err := s.ptmx.Close()
	_ = s.cmd.Wait()
	return err
}

// Outcome is the result of validating a single candidate command.
type Outcome struct {
	Verdict  ipc.Verdict
	ExitCode int
	Stdout   string
	Stderr   string
}

// Validate runs cmdLine to completion inside the sandbox shell (or gives up
// at the attempt budget) and classifies the result per §4.2 rule 7.
func (s *Session) Validate(cmdLine string) Outcome {
	s.drain()

	wrapped := fmt.Sprintf("bash -c '%s'; echo \"EXIT_CODE:$?\"\n", escapeSingleQuotes(cmdLine))
	if _, err := s.ptmx.Write([]byte(wrapped)); err != nil {
		return Outcome{Verdict: ipc.VerdictOtherFailure, Stderr: err.Error()}
	}

	raw, sentinelSeen := s.collect()
	cleaned := stripAndFilter(raw, cmdLine, s.sentinel)

	if !sentinelSeen {
		s.interrupt()
		return Outcome{Verdict: ipc.VerdictInteractive}
	}

	if hasShellError(cleaned) {
		if wordCount(cmdLine) >= 3 {
			return Outcome{Verdict: ipc.VerdictInvalidAIHelp, Stdout: cleaned}
		}
		return Outcome{Verdict: ipc.VerdictInvalidUserError, Stdout: cleaned}
	}

	if code, ok := extractExitCode(cleaned); ok {
		// Either a clean or a nonzero exit still confirms the candidate is
		// shaped like shell; the frontend already knows whether its direct
		// run failed (§4.2 rule 7c).
		return Outcome{Verdict: ipc.VerdictValid, ExitCode: code, Stdout: stripExitCodeLine(cleaned)}
	}

	return Outcome{Verdict: ipc.VerdictOtherFailure, Stdout: cleaned}
}

// collect accumulates PTY output until the prompt sentinel reappears or the
// attempt budget is exhausted (§4.2 rule 5).
func (s *Session) collect() (output string, sentinelSeen bool) {
	var buf bytes.Buffer
	consecutiveEmpty := 0

	for attempt := 0; attempt < maxPollAttempts; attempt++ {
		_ = s.ptmx.SetReadDeadline(time.Now().Add(pollInterval))
		tmp := make([]byte, 4096)
		n, err := s.ptmx.Read(tmp)
		if n > 0 {
			buf.Write(tmp[:n])
			consecutiveEmpty = 0
			if bytes.Contains(buf.Bytes(), []byte(s.sentinel)) {
				sentinelSeen = true
				// Keep polling briefly for trailing error output, matching
				// the original's "don't break immediately" behaviour.
				continue
			}
		} else {
			consecutiveEmpty++
			if consecutiveEmpty >= consecutiveEmptyCap {
				break
			}
		}
		if err != nil && !os.IsTimeout(err) {
			break
		}
		if sentinelSeen && (n == 0 || err != nil) {
			break
		}
	}
	return buf.String(), sentinelSeen
}

// interrupt sends Ctrl-C to recover a session stuck in an interactive
// program and drains whatever that produces (§4.2 rule 7a).
func (s *Session) interrupt() {
	_, _ = s.ptmx.Write([]byte{0x03})
	time.Sleep(100 * time.Millisecond)
	tmp := make([]byte, 1024)
	_ = s.ptmx.SetReadDeadline(time.Now().Add(50 * time.Millisecond))
	_, _ = s.ptmx.Read(tmp)
}

// stripAndFilter removes CSI escapes and drops lines that are just the
// echoed command, the sentinel, or a bare prompt glyph (§4.2 rule 6).
func stripAndFilter(raw, cmdLine, sentinel string) string {
	clean := csiPattern.ReplaceAllString(raw, "")
	lines := strings.Split(clean, "\n")
	var kept []string
	for _, line := range lines {
		trimmed := strings.TrimRight(line, "\r")
		t := strings.TrimSpace(trimmed)
		switch {
		case t == "":
			continue
		case t == strings.TrimSpace(cmdLine):
			continue
		case strings.Contains(t, sentinel):
			continue
		case strings.HasSuffix(t, "$") || strings.HasSuffix(t, "#") || strings.HasSuffix(t, ">"):
			continue
		default:
			kept = append(kept, trimmed)
		}
	}
	return strings.Join(kept, "\n")
}

func hasShellError(text string) bool {
	for _, sub := range shellErrorSubstrings {
		if strings.Contains(text, sub) {
			return true
		}
	}
	return false
}

var exitCodeMarker = regexp.MustCompile(`EXIT_CODE:(-?\d+)`)

func extractExitCode(text string) (int, bool) {
	m := exitCodeMarker.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

func stripExitCodeLine(text string) string {
	lines := strings.Split(text, "\n")
	var kept []string
	for _, line := range lines {
		if exitCodeMarker.MatchString(line) {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

func wordCount(line string) int {
	return len(strings.Fields(line))
}

func escapeSingleQuotes(s string) string {
	return strings.ReplaceAll(s, "'", `'"'"'`)
}
