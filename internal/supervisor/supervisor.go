// Package supervisor keeps exactly one instance of each managed child
// (sandbox, proxy, backend) alive on behalf of the frontend, and routes
// their liveness and restart policy (§4.4).
package supervisor

import (
	"fmt"
	"sync"
	"syscall"
	"time"
)

// Config describes how to spawn each child kind.
type Config struct {
	Path string
	Args []string
}

// Supervisor owns the process records for sandbox, proxy and backend. There
// is no pool: one slot per Kind (§3 "The Frontend holds exactly one of
// each").
type Supervisor struct {
	spawn Spawner

	mu      sync.Mutex
	records map[Kind]*Record
	configs map[Kind]Config

	promptCount int
	tickEvery   int
}

// New creates a Supervisor. spawn is injectable for tests; pass nil in
// production to use DefaultSpawner.
func New(spawn Spawner) *Supervisor {
	if spawn == nil {
		spawn = DefaultSpawner
	}
	return &Supervisor{
		spawn:     spawn,
		records:   make(map[Kind]*Record),
		configs:   make(map[Kind]Config),
		tickEvery: 10,
	}
}

// Start spawns kind with the given configuration and installs its record.
// A spawn failure leaves no record installed; the caller (the dispatcher's
// degradation rules, §4.1) must cope with the kind staying unavailable.
func (s *Supervisor) Start(kind Kind, cfg Config) error {
	cmd, err := s.spawn(cfg.Path, cfg.Args...)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrSpawnFailed, kind, err)
	}

	rec := &Record{
		Kind:        kind,
		Path:        cfg.Path,
		Args:        cfg.Args,
		PID:         cmd.Process.Pid,
		Live:        true,
		LastStarted: time.Now(),
		cmd:         cmd,
	}

	s.mu.Lock()
	s.configs[kind] = cfg
	s.records[kind] = rec
	s.mu.Unlock()

	// Reap the child asynchronously so it never becomes a zombie; this also
	// lets the next liveness Tick observe it as dead promptly.
	go func() {
		_ = cmd.Wait()
		s.mu.Lock()
		if r, ok := s.records[kind]; ok && r == rec {
			r.Live = false
		}
		s.mu.Unlock()
	}()

	return nil
}

// Get returns a snapshot of kind's record, or ok=false if never started.
func (s *Supervisor) Get(kind Kind) (Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.records[kind]
	if !ok {
		return Record{}, false
	}
	return *r, true
}

// IsReady reports whether kind currently has a live process (used by the
// dispatcher's degradation tie-breaks, §4.1).
func (s *Supervisor) IsReady(kind Kind) bool {
	rec, ok := s.Get(kind)
	return ok && rec.Live
}

// Tick advances the prompt counter and, every tickEvery prompts, checks
// every record's liveness, marking dead records restart-pending (§4.4, §5
// "supervisor liveness check every 10 prompts").
func (s *Supervisor) Tick() {
	s.mu.Lock()
	s.promptCount++
	due := s.promptCount%s.tickEvery == 0
	var toCheck []*Record
	if due {
		for _, r := range s.records {
			toCheck = append(toCheck, r)
		}
	}
	s.mu.Unlock()

	if !due {
		return
	}
	for _, r := range toCheck {
		if !isProcessAlive(r.PID) {
			s.mu.Lock()
			r.Live = false
			r.RestartPending = true
			s.mu.Unlock()
		}
	}
}

// RestartDue returns the kinds currently marked restart-pending.
func (s *Supervisor) RestartDue() []Kind {
	s.mu.Lock()
	defer s.mu.Unlock()
	var due []Kind
	for k, r := range s.records {
		if r.RestartPending {
			due = append(due, k)
		}
	}
	return due
}

// Restart attempts to respawn kind using its last configuration. On
// failure the previous, dead record stays in the slot and is marked
// restart-pending again, so IsReady keeps reporting false and the caller's
// dispatcher degradation applies (§4.4).
func (s *Supervisor) Restart(kind Kind) error {
	s.mu.Lock()
	cfg, ok := s.configs[kind]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}

	s.mu.Lock()
	if r, ok := s.records[kind]; ok {
		r.LastRestartTime = time.Now()
	}
	s.mu.Unlock()

	if err := s.Start(kind, cfg); err != nil {
		s.mu.Lock()
		if r, ok := s.records[kind]; ok {
			r.RestartPending = true
		}
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	if r, ok := s.records[kind]; ok {
		r.RestartPending = false
	}
	s.mu.Unlock()
	return nil
}

// Shutdown sends SIGTERM to every managed child, waits grace, then SIGKILL
// as needed (§4.4).
func (s *Supervisor) Shutdown(grace time.Duration) {
	s.mu.Lock()
	recs := make([]*Record, 0, len(s.records))
	for _, r := range s.records {
		recs = append(recs, r)
	}
	s.mu.Unlock()

	for _, r := range recs {
		if !r.Live {
			continue
		}
		_ = killGroup(r.PID, syscall.SIGTERM)
	}

	time.Sleep(grace)

	s.mu.Lock()
	for _, r := range recs {
		if r.Live && isProcessAlive(r.PID) {
			_ = killGroup(r.PID, syscall.SIGKILL)
		}
	}
	s.mu.Unlock()
}

// isProcessAlive reports whether pid still exists, per kernel signal 0
// semantics (ESRCH means gone).
func isProcessAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	return syscall.Kill(pid, 0) == nil
}
