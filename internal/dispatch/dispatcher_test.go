package dispatch

import (
	"errors"
	"testing"

	"github.com/joebertj/awesh/internal/ipc"
)

type fakeBackend struct {
	reply string
	err   error
	sent  []string
}

func (f *fakeBackend) Send(line string) (string, error) {
	f.sent = append(f.sent, line)
	return f.reply, f.err
}

type fakeSandbox struct {
	verdict ipc.Verdict
	exit    int
	err     error
}

func (f *fakeSandbox) Validate(line string) (ipc.Verdict, int, error) {
	return f.verdict, f.exit, f.err
}

type fakeBuiltins struct {
	called BuiltinCommand
	out    Outcome
}

func (f *fakeBuiltins) Handle(cmd BuiltinCommand) Outcome {
	f.called = cmd
	return f.out
}

func newTestDispatcher(backend Backend, sandbox Sandbox, builtins BuiltinHandler, backendReady, sandboxReady bool, directExit int, ptyErr error) *Dispatcher {
	return &Dispatcher{
		Backend:      backend,
		Sandbox:      sandbox,
		Builtins:     builtins,
		BackendReady: func() bool { return backendReady },
		SandboxReady: func() bool { return sandboxReady },
		RunDirect:    func(string) int { return directExit },
		RunPTY:       func(string) error { return ptyErr },
	}
}

func TestDispatchBuiltinTakesPrecedence(t *testing.T) {
	fb := &fakeBuiltins{out: Outcome{Message: "ok"}}
	d := newTestDispatcher(nil, nil, fb, true, true, 0, nil)

	out := d.Dispatch("aweh")
	if !out.Handled {
		t.Fatal("expected Handled")
	}
	if fb.called.Name != "aweh" {
		t.Fatalf("builtin not invoked with parsed name: %+v", fb.called)
	}
}

func TestDispatchAIRouteSendsToBackend(t *testing.T) {
	fbk := &fakeBackend{reply: "here is an explanation"}
	d := newTestDispatcher(fbk, nil, &fakeBuiltins{}, true, true, 0, nil)

	out := d.Dispatch("explain how channels work")
	if out.Message != "here is an explanation" {
		t.Fatalf("out = %+v", out)
	}
	if len(fbk.sent) != 1 || fbk.sent[0] != "explain how channels work" {
		t.Fatalf("unexpected sent: %v", fbk.sent)
	}
}

func TestDispatchAIRouteBackendUnavailable(t *testing.T) {
	d := newTestDispatcher(nil, nil, &fakeBuiltins{}, false, true, 0, nil)

	out := d.Dispatch("explain how channels work")
	if !out.IsError || out.Message != "backend unavailable" {
		t.Fatalf("out = %+v", out)
	}
}

func TestDispatchDirectSuccessEndsCleanly(t *testing.T) {
	d := newTestDispatcher(nil, nil, &fakeBuiltins{}, true, true, 0, nil)

	out := d.Dispatch("ls -la")
	if out.IsError || out.Message != "" {
		t.Fatalf("out = %+v", out)
	}
}

func TestDispatchAskSandboxValidPrintsExitCode(t *testing.T) {
	sb := &fakeSandbox{verdict: ipc.VerdictValid, exit: 3}
	d := newTestDispatcher(nil, sb, &fakeBuiltins{}, true, true, 3, nil)

	out := d.Dispatch("somecmd --flag")
	if !out.IsError || out.Message != "exit 3" {
		t.Fatalf("out = %+v", out)
	}
}

func TestDispatchAskSandboxInteractiveRunsPTY(t *testing.T) {
	sb := &fakeSandbox{verdict: ipc.VerdictInteractive}
	d := newTestDispatcher(nil, sb, &fakeBuiltins{}, true, true, 1, nil)

	out := d.Dispatch("vim file.txt")
	if out.IsError {
		t.Fatalf("out = %+v", out)
	}
}

func TestDispatchAskSandboxAIHelpSendsToBackend(t *testing.T) {
	sb := &fakeSandbox{verdict: ipc.VerdictInvalidAIHelp}
	fbk := &fakeBackend{reply: "try this instead"}
	d := newTestDispatcher(fbk, sb, &fakeBuiltins{}, true, true, 127, nil)

	out := d.Dispatch("pls list files")
	if out.Message != "try this instead" {
		t.Fatalf("out = %+v", out)
	}
}

func TestDispatchAskSandboxUserErrorPrintsNotFound(t *testing.T) {
	sb := &fakeSandbox{verdict: ipc.VerdictInvalidUserError}
	d := newTestDispatcher(nil, sb, &fakeBuiltins{}, true, true, 127, nil)

	out := d.Dispatch("lsx")
	if !out.IsError || out.Message != "not found" {
		t.Fatalf("out = %+v", out)
	}
}

func TestDispatchDegradesWhenNeitherReady(t *testing.T) {
	d := newTestDispatcher(nil, nil, &fakeBuiltins{}, false, false, 9, nil)

	out := d.Dispatch("some_weird_command")
	if !out.IsError || out.Message != "exit 9" {
		t.Fatalf("out = %+v", out)
	}
}

func TestDispatchSandboxErrorFallsBackToExitCode(t *testing.T) {
	sb := &fakeSandbox{err: errors.New("sandbox unreachable")}
	d := newTestDispatcher(nil, sb, &fakeBuiltins{}, true, true, 2, nil)

	out := d.Dispatch("somecmd")
	if !out.IsError || out.Message != "exit 2" {
		t.Fatalf("out = %+v", out)
	}
}
