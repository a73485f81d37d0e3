package dispatch

import (
	"errors"
	"fmt"
	"net"

	"github.com/joebertj/awesh/internal/ipc"
)

// Outcome is what the dispatcher decided to do with a line, for the caller
// (the frontend's prompt loop) to render.
type Outcome struct {
	Handled bool   // builtin handled entirely inside the dispatcher
	Message string // user-visible text to print, if any
	IsError bool
	Exit    bool // the prompt loop should terminate after this outcome
}

// Backend abstracts sending a line to B and waiting for its reply, so the
// dispatcher can be tested without a real backend socket.
type Backend interface {
	Send(line string) (reply string, err error)
}

// Sandbox abstracts asking S to classify a failed direct run.
type Sandbox interface {
	Validate(line string) (ipc.Verdict, int, error)
}

// Dispatcher implements dispatch(L) from §4.1: translate each user input
// into exactly one action, coordinating the sandbox and the backend through
// their abstractions and falling back to direct execution when neither is
// ready.
type Dispatcher struct {
	Backend      Backend
	Sandbox      Sandbox
	BackendReady func() bool
	SandboxReady func() bool
	RunDirect    func(line string) int
	RunPTY       func(line string) error
	Builtins     BuiltinHandler
}

// BuiltinHandler executes a recognized control command and returns its
// user-visible result.
type BuiltinHandler interface {
	Handle(cmd BuiltinCommand) Outcome
}

// New builds a Dispatcher with the real RunDirect/RunPTY implementations;
// Backend, Sandbox and the readiness probes are still the caller's to wire.
func New(backend Backend, sandbox Sandbox, builtins BuiltinHandler, backendReady, sandboxReady func() bool) *Dispatcher {
	return &Dispatcher{
		Backend:      backend,
		Sandbox:      sandbox,
		BackendReady: backendReady,
		SandboxReady: sandboxReady,
		RunDirect:    RunDirect,
		RunPTY:       RunPTY,
		Builtins:     builtins,
	}
}

// Dispatch runs the state machine in §4.1 for a single line of input.
func (d *Dispatcher) Dispatch(line string) Outcome {
	if cmd, ok := ClassifyBuiltin(line); ok {
		out := d.Builtins.Handle(cmd)
		out.Handled = true
		return out
	}

	sandboxReady := d.SandboxReady()
	backendReady := d.BackendReady()

	if LooksLikeAI(line) {
		if !backendReady {
			return Outcome{Message: "backend unavailable", IsError: true}
		}
		return d.sendToBackend(line)
	}

	if !sandboxReady && !backendReady {
		code := d.RunDirect(line)
		if code != 0 {
			return Outcome{Message: fmt.Sprintf("exit %d", code), IsError: true}
		}
		return Outcome{}
	}

	exitCode := d.RunDirect(line)
	if exitCode == 0 {
		return Outcome{}
	}

	if !sandboxReady {
		return Outcome{Message: fmt.Sprintf("exit %d", exitCode), IsError: true}
	}

	verdict, realExit, err := d.Sandbox.Validate(line)
	if err != nil {
		return Outcome{Message: fmt.Sprintf("exit %d", exitCode), IsError: true}
	}

	switch verdict {
	case ipc.VerdictValid:
		return Outcome{Message: fmt.Sprintf("exit %d", realExit), IsError: true}
	case ipc.VerdictInteractive:
		if err := d.RunPTY(line); err != nil {
			return Outcome{Message: err.Error(), IsError: true}
		}
		return Outcome{}
	case ipc.VerdictInvalidAIHelp, ipc.VerdictOtherFailure:
		if !backendReady {
			return Outcome{Message: "backend unavailable", IsError: true}
		}
		return d.sendToBackend(line)
	case ipc.VerdictInvalidUserError:
		return Outcome{Message: "not found", IsError: true}
	default:
		return Outcome{Message: fmt.Sprintf("exit %d", exitCode), IsError: true}
	}
}

func (d *Dispatcher) sendToBackend(line string) Outcome {
	reply, err := d.Backend.Send(line)
	if err != nil {
		if isBackendUnreachable(err) {
			return Outcome{Message: "backend unavailable", IsError: true}
		}
		return Outcome{Message: err.Error(), IsError: true}
	}
	return Outcome{Message: reply}
}

func isBackendUnreachable(err error) bool {
	var opErr *net.OpError
	return errors.As(err, &opErr)
}
