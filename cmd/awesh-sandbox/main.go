// Command awesh-sandbox runs the command validator: a long-lived shell on a
// PTY that the frontend consults before routing a failed direct run anywhere
// else (§4.2). It prepares the private filesystem root with sandbox.Setup
// and logs the mode achieved, but does not chroot into it (Root.Enter is not
// called): the shell starts in the host's "/" and candidate commands run
// against the host filesystem.
package main

import (
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joebertj/awesh/internal/config"
	"github.com/joebertj/awesh/internal/ipc"
	"github.com/joebertj/awesh/internal/sandbox"
)

func main() {
	sandboxRoot := flag.String("root", "/tmp/awesh-sandbox-root", "private filesystem root for isolation")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	home := os.Getenv("HOME")
	if home == "" {
		logger.Error("HOME is not set")
		os.Exit(1)
	}
	paths := config.Resolve(home)

	root, err := sandbox.Setup(*sandboxRoot)
	if err != nil {
		logger.Warn("isolation setup failed, continuing unconfined", "error", err)
	} else {
		logger.Info("filesystem isolation ready", "mode", root.Mode, "root", root.Path)
	}

	session, err := sandbox.Start("/bin/bash", "/")
	if err != nil {
		logger.Error("start sandbox shell", "error", err)
		os.Exit(1)
	}
	defer session.Close()

	region, err := ipc.CreateRegion(paths.VerdictMmap)
	if err != nil {
		logger.Error("create verdict region", "error", err)
		os.Exit(1)
	}
	defer region.Close()

	listener, err := ipc.Listen(paths.SandboxSocket)
	if err != nil {
		logger.Error("listen sandbox socket", "error", err)
		os.Exit(1)
	}
	defer ipc.Cleanup(paths.SandboxSocket)

	srv := sandbox.NewServer(listener, sandbox.NewValidator(session), region, logger)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("sandbox shutting down")
		listener.Close()
		if root != nil {
			root.Teardown()
		}
		ipc.CleanupFile(paths.VerdictMmap)
		os.Exit(0)
	}()

	logger.Info("sandbox ready", "socket", paths.SandboxSocket)
	if err := srv.Serve(); err != nil {
		logger.Error("serve", "error", err)
		os.Exit(1)
	}
}
