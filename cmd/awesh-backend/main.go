// Command awesh-backend is a minimal reference backend: it speaks the wire
// protocol in full (QUERY/CWD/STATUS/BASH_FAILED/VERBOSE/AI_PROVIDER/MODEL)
// without calling out to any real model, so the rest of the system can be
// exercised end to end (§6). A production backend is an external
// collaborator; this one exists to give the frontend and proxy something
// real to talk to.
package main

import (
	"bufio"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joebertj/awesh/internal/config"
	"github.com/joebertj/awesh/internal/ipc"
)

type state struct {
	verbose  string
	provider string
	model    string
	cwd      string
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	home := os.Getenv("HOME")
	if home == "" {
		logger.Error("HOME is not set")
		os.Exit(1)
	}
	paths := config.Resolve(home)

	listener, err := ipc.Listen(paths.BackendSocket)
	if err != nil {
		logger.Error("listen backend socket", "error", err)
		os.Exit(1)
	}
	defer ipc.Cleanup(paths.BackendSocket)

	// VERBOSE arrives the same way every other .aweshrc key does (exported
	// into the environ by the frontend before this process is spawned, §6),
	// so the initial value is whatever a later VERBOSE:<n> message would set.
	st := &state{provider: "openai", model: "gpt-5", verbose: os.Getenv("VERBOSE")}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("backend shutting down")
		listener.Close()
		os.Exit(0)
	}()

	logger.Info("backend ready", "socket", paths.BackendSocket)
	for {
		conn, err := listener.AcceptUnix()
		if err != nil {
			logger.Error("accept", "error", err)
			return
		}
		go handle(conn, st, logger)
	}
}

func handle(conn *net.UnixConn, st *state, logger *slog.Logger) {
	defer conn.Close()
	reader := bufio.NewReader(conn)

	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			return
		}
		line = strings.TrimRight(line, "\r\n")
		reply := respond(line, st)
		if _, err := fmt.Fprintf(conn, "%s\n", reply); err != nil {
			logger.Warn("write reply failed", "error", err)
			return
		}
	}
}

func respond(line string, st *state) string {
	switch {
	case strings.HasPrefix(line, ipc.PrefixQuery):
		return "AI_LOADING " + strings.TrimPrefix(line, ipc.PrefixQuery)
	case strings.HasPrefix(line, ipc.PrefixCWD):
		st.cwd = strings.TrimPrefix(line, ipc.PrefixCWD)
		return ipc.PrefixStatusUpd + "cwd noted"
	case line == ipc.PrefixStatus:
		return fmt.Sprintf("provider=%s model=%s verbose=%s cwd=%s", st.provider, st.model, st.verbose, st.cwd)
	case strings.HasPrefix(line, ipc.PrefixBashFailed):
		return ipc.PrefixStatusUpd + "noted failed command"
	case strings.HasPrefix(line, ipc.PrefixVerbose):
		st.verbose = strings.TrimPrefix(line, ipc.PrefixVerbose)
		return ipc.PrefixVerboseUpd + st.verbose
	case strings.HasPrefix(line, ipc.PrefixAIProvider):
		st.provider = strings.TrimPrefix(line, ipc.PrefixAIProvider)
		return ipc.PrefixStatusUpd + "provider set"
	case strings.HasPrefix(line, ipc.PrefixModel):
		st.model = strings.TrimPrefix(line, ipc.PrefixModel)
		return ipc.PrefixStatusUpd + "model set"
	default:
		return ipc.PrefixAIReady
	}
}
