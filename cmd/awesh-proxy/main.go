// Command awesh-proxy transparently inspects traffic flowing from the
// frontend to the backend, blocking dangerous or sensitive shell patterns
// before they reach the backend (§3, §4.3).
package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joebertj/awesh/internal/config"
	"github.com/joebertj/awesh/internal/ipc"
	"github.com/joebertj/awesh/internal/proxy"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	home := os.Getenv("HOME")
	if home == "" {
		logger.Error("HOME is not set")
		os.Exit(1)
	}
	paths := config.Resolve(home)

	matcher, err := proxy.NewMatcher()
	if err != nil {
		logger.Error("compile pattern tiers", "error", err)
		os.Exit(1)
	}

	listener, err := ipc.Listen(paths.PublicSocket)
	if err != nil {
		logger.Error("listen public socket", "error", err)
		os.Exit(1)
	}
	defer ipc.Cleanup(paths.PublicSocket)

	srv := proxy.NewServer(listener, paths.BackendSocket, matcher, logger)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("proxy shutting down")
		listener.Close()
		os.Exit(0)
	}()

	logger.Info("proxy ready", "public", paths.PublicSocket, "backend", paths.BackendSocket)
	if err := srv.Serve(); err != nil {
		logger.Error("serve", "error", err)
		os.Exit(1)
	}
}
