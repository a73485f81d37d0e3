package sandbox

import (
	"bufio"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/joebertj/awesh/internal/ipc"
)

type fakeSession struct {
	outcome Outcome
	id      uuid.UUID
}

func (f *fakeSession) Validate(string) Outcome { return f.outcome }
func (f *fakeSession) SessionID() uuid.UUID    { return f.id }

func TestServerWritesVerdictAndAcks(t *testing.T) {
	dir := t.TempDir()
	region, err := ipc.CreateRegion(dir + "/verdict.mmap")
	if err != nil {
		t.Fatalf("CreateRegion: %v", err)
	}
	defer region.Close()

	validator := &Validator{session: &fakeSession{outcome: Outcome{
		Verdict:  ipc.VerdictValid,
		ExitCode: 0,
		Stdout:   "hello\n",
	}}}

	listener, err := ipc.Listen(dir + "/sandbox.sock")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer listener.Close()

	srv := NewServer(listener, validator, region, nil)
	go srv.Serve()

	conn, err := ipc.Dial(dir + "/sandbox.sock")
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()

	if _, err := conn.Write([]byte("echo hello\n")); err != nil {
		t.Fatalf("write candidate: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	ack, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		t.Fatalf("read ack: %v", err)
	}
	if ack != ipc.ReplyOK+"\n" {
		t.Fatalf("ack = %q, want OK", ack)
	}

	rec, err := region.Read()
	if err != nil {
		t.Fatalf("Read region: %v", err)
	}
	if rec.ExitCode != 0 {
		t.Fatalf("ExitCode = %d, want 0", rec.ExitCode)
	}
	if string(rec.Stdout) != "hello\n" {
		t.Fatalf("Stdout = %q, want %q", rec.Stdout, "hello\n")
	}
}
