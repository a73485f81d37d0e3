package dispatch

import (
	"fmt"
	"strings"

	"github.com/joebertj/awesh/internal/ipc"
)

const helpText = `awesh built-ins:
  aweh              show this help
  awes              show status
  awev [0|1|2|on|off]  set verbosity
  awea [openai|openrouter]  set AI provider
  awem <model>      set model
  exit, quit        leave awesh`

// StatusFunc reports a human-readable status line for awes (§4.1, §6
// "status dump"), typically naming which of S/P/B are currently ready.
type StatusFunc func() string

// Builtins implements BuiltinHandler for the awe* control vocabulary. Any
// setting with a forwarding-capable backend (verbosity, provider, model) is
// pushed to B with its wire prefix; unreachable backends degrade to a local
// acknowledgement only (§6, §7 "Transient IPC").
type Builtins struct {
	Backend Backend
	Status  StatusFunc
}

// NewBuiltins wires a Builtins handler to backend and a status probe.
func NewBuiltins(backend Backend, status StatusFunc) *Builtins {
	return &Builtins{Backend: backend, Status: status}
}

// Handle dispatches cmd to the matching built-in operation.
func (b *Builtins) Handle(cmd BuiltinCommand) Outcome {
	switch cmd.Name {
	case "aweh":
		return Outcome{Message: helpText}
	case "awes":
		return Outcome{Message: b.Status()}
	case "awev":
		return b.setVerbosity(cmd.Args)
	case "awea":
		return b.setProvider(cmd.Args)
	case "awem":
		return b.setModel(cmd.Args)
	case "exit", "quit":
		return Outcome{Exit: true}
	default:
		return Outcome{Message: fmt.Sprintf("unknown built-in %q", cmd.Name), IsError: true}
	}
}

func (b *Builtins) setVerbosity(args []string) Outcome {
	if len(args) == 0 {
		return Outcome{Message: "usage: awev [0|1|2|on|off]", IsError: true}
	}
	level, err := normalizeVerbosity(args[0])
	if err != nil {
		return Outcome{Message: err.Error(), IsError: true}
	}
	b.forward(ipc.PrefixVerbose + level)
	return Outcome{Message: "verbosity set to " + level}
}

func normalizeVerbosity(arg string) (string, error) {
	switch strings.ToLower(arg) {
	case "0", "off":
		return "0", nil
	case "1", "on":
		return "1", nil
	case "2":
		return "2", nil
	default:
		return "", fmt.Errorf("invalid verbosity %q (want 0|1|2|on|off)", arg)
	}
}

func (b *Builtins) setProvider(args []string) Outcome {
	if len(args) == 0 {
		return Outcome{Message: "usage: awea [openai|openrouter]", IsError: true}
	}
	provider := strings.ToLower(args[0])
	if provider != "openai" && provider != "openrouter" {
		return Outcome{Message: fmt.Sprintf("unknown provider %q", provider), IsError: true}
	}
	b.forward(ipc.PrefixAIProvider + provider)
	return Outcome{Message: "provider set to " + provider}
}

func (b *Builtins) setModel(args []string) Outcome {
	if len(args) == 0 {
		return Outcome{Message: "usage: awem <model>", IsError: true}
	}
	model := args[0]
	b.forward(ipc.PrefixModel + model)
	return Outcome{Message: "model set to " + model}
}

// forward best-effort notifies the backend of a setting change. A failure
// is swallowed here: the user still gets the acknowledgement, but nothing
// is stored on the frontend side, so the backend keeps its previous value;
// backend unavailability surfaces on the next AI dispatch (§7 "Transient
// IPC").
func (b *Builtins) forward(line string) {
	if b.Backend == nil {
		return
	}
	_, _ = b.Backend.Send(line)
}
