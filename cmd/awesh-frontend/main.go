// Command awesh-frontend is the interactive shell loop: it classifies and
// dispatches every line of input, supervising the sandbox, the security
// proxy, and the backend as its three children (§2, §3, §4.1).
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joebertj/awesh/internal/config"
	"github.com/joebertj/awesh/internal/dispatch"
	"github.com/joebertj/awesh/internal/ipc"
	"github.com/joebertj/awesh/internal/supervisor"
)

func main() {
	sandboxBin := flag.String("sandbox-bin", "awesh-sandbox", "path to the sandbox binary")
	proxyBin := flag.String("proxy-bin", "awesh-proxy", "path to the proxy binary")
	backendBin := flag.String("backend-bin", "awesh-backend", "path to the backend binary")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	home := os.Getenv("HOME")
	if home == "" {
		logger.Error("HOME is not set")
		os.Exit(1)
	}
	paths := config.Resolve(home)

	if settings, err := config.LoadRC(config.RCPath(home)); err != nil {
		logger.Warn("load rc file failed", "error", err)
	} else if err := settings.ExportToEnviron(); err != nil {
		logger.Warn("export rc settings failed", "error", err)
	}

	sup := supervisor.New(nil)
	startChild(sup, logger, supervisor.KindSandbox, *sandboxBin)
	startChild(sup, logger, supervisor.KindProxy, *proxyBin)
	startChild(sup, logger, supervisor.KindBackend, *backendBin)
	defer sup.Shutdown(2 * time.Second)

	waitForSocket(paths.SandboxSocket, 2*time.Second)
	waitForSocket(paths.PublicSocket, 2*time.Second)

	region, err := openVerdictRegionWithRetry(paths.VerdictMmap, 2*time.Second)
	if err != nil {
		logger.Warn("open verdict region failed, sandbox verdicts unavailable", "error", err)
	} else {
		defer region.Close()
	}

	backend := dispatch.NewSocketBackend(paths.PublicSocket)
	var sandboxClient dispatch.Sandbox
	if region != nil {
		sandboxClient = dispatch.NewSocketSandbox(paths.SandboxSocket, region)
	}

	statusFn := func() string {
		return fmt.Sprintf("sandbox=%s proxy=%s backend=%s",
			childState(sup, supervisor.KindSandbox),
			childState(sup, supervisor.KindProxy),
			childState(sup, supervisor.KindBackend))
	}
	builtins := dispatch.NewBuiltins(backend, statusFn)

	d := dispatch.New(backend, sandboxClient, builtins,
		func() bool { return sup.IsReady(supervisor.KindProxy) },
		func() bool { return sandboxClient != nil && sup.IsReady(supervisor.KindSandbox) },
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT)
	go func() {
		for range sigCh {
			// Ctrl-C at the prompt interrupts only the line being typed;
			// children never receive it (Setpgid isolates them, §4.4).
		}
	}()

	runPromptLoop(os.Stdin, os.Stdout, d, sup, logger)
}

func startChild(sup *supervisor.Supervisor, logger *slog.Logger, kind supervisor.Kind, bin string) {
	path := resolveBin(bin)
	if err := sup.Start(kind, supervisor.Config{Path: path}); err != nil {
		logger.Warn("start child failed", "kind", kind.String(), "error", err)
	}
}

// resolveBin looks the binary up next to this executable first, falling
// back to PATH, so a cloned-and-built tree runs without installation.
func resolveBin(name string) string {
	if self, err := os.Executable(); err == nil {
		candidate := filepath.Join(filepath.Dir(self), name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	if full, err := exec.LookPath(name); err == nil {
		return full
	}
	return name
}

func childState(sup *supervisor.Supervisor, kind supervisor.Kind) string {
	rec, ok := sup.Get(kind)
	if !ok {
		return "absent"
	}
	return rec.State().String()
}

func waitForSocket(path string, budget time.Duration) {
	deadline := time.Now().Add(budget)
	for time.Now().Before(deadline) {
		if _, err := os.Stat(path); err == nil {
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
}

func openVerdictRegionWithRetry(path string, budget time.Duration) (*ipc.Region, error) {
	deadline := time.Now().Add(budget)
	var lastErr error
	for time.Now().Before(deadline) {
		region, err := ipc.OpenRegion(path)
		if err == nil {
			return region, nil
		}
		lastErr = err
		time.Sleep(50 * time.Millisecond)
	}
	return nil, lastErr
}

func runPromptLoop(in *os.File, out *os.File, d *dispatch.Dispatcher, sup *supervisor.Supervisor, logger *slog.Logger) {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "awesh> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		sup.Tick()

		for _, kind := range sup.RestartDue() {
			if err := sup.Restart(kind); err != nil {
				logger.Warn("restart failed", "kind", kind.String(), "error", err)
			}
		}

		if line == "" {
			continue
		}

		out2 := d.Dispatch(line)
		if out2.Message != "" {
			fmt.Fprintln(out, out2.Message)
		}
		if out2.Exit {
			return
		}
	}
}
