package supervisor

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/synrais/PadMap-GO/pkg/history"
)

// Default pacing. The poll interval bounds reaction latency to
// connect/disconnect; the term wait bounds how long a stopping engine
// may linger before it is killed.
const (
	DefaultPollInterval = 2 * time.Second
	DefaultTermWait     = 3 * time.Second
)

// Journal receives lifecycle events. *history.Journal satisfies it; a
// nil Journal disables journaling.
type Journal interface {
	Append(event, detail string) error
}

// Options tune the supervisor loop.
type Options struct {
	PollInterval time.Duration
	TermWait     time.Duration
	AutoRestart  bool
	// Wake, when non-nil, lets hotplug events trigger a poll cycle
	// ahead of the next tick.
	Wake <-chan struct{}
}

// Supervisor keeps the mapping engine running exactly while a
// controller is attached. Two states: idle (no engine) and active
// (engine recorded and alive); everything else is a transition.
type Supervisor struct {
	probe   PresenceProbe
	proc    ProcessController
	record  *Record
	journal Journal
	log     *log.Logger
	opts    Options

	wasPresent bool
}

func New(probe PresenceProbe, proc ProcessController, record *Record, journal Journal, logger *log.Logger, opts Options) *Supervisor {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.TermWait <= 0 {
		opts.TermWait = DefaultTermWait
	}
	return &Supervisor{
		probe:   probe,
		proc:    proc,
		record:  record,
		journal: journal,
		log:     logger,
		opts:    opts,
	}
}

// Run drives the state machine until the context is cancelled. Any
// engine still running at cancellation is stopped, bounded by the term
// wait, before Run returns.
func (s *Supervisor) Run(ctx context.Context) error {
	s.log.Printf("supervisor started, polling every %v", s.opts.PollInterval)

	ticker := time.NewTicker(s.opts.PollInterval)
	defer ticker.Stop()

	wake := s.opts.Wake
	for {
		if stop := s.cycle(); stop {
			return nil
		}

		select {
		case <-ctx.Done():
			s.shutdown()
			s.log.Printf("supervisor stopped")
			return nil
		case <-ticker.C:
		case _, ok := <-wake:
			if !ok {
				wake = nil // watcher gone, fall back to the ticker
			}
		}
	}
}

// liveEngine validates the persisted record against the real process
// table. A record pointing at a dead or recycled PID is stale and gets
// cleared, so a restarted supervisor never trusts leftovers.
func (s *Supervisor) liveEngine() (int, bool) {
	pid, ok := s.record.Load()
	if !ok {
		return 0, false
	}
	if !s.proc.Alive(pid) {
		s.log.Printf("clearing stale record for pid %d", pid)
		if err := s.record.Remove(); err != nil {
			s.log.Printf("failed to remove stale record: %v", err)
		}
		return 0, false
	}
	return pid, true
}

// cycle evaluates the state machine once. It reports true when the
// supervisor should exit (auto_restart off with nothing to do).
func (s *Supervisor) cycle() bool {
	pid, running := s.liveEngine()

	present, err := s.probe.Present()
	if err != nil {
		// Fail toward idle: a broken probe must never spawn engines.
		s.log.Printf("presence probe failed: %v", err)
		present = false
	}

	if present != s.wasPresent {
		s.wasPresent = present
		if present {
			s.log.Printf("controller connected")
			s.journalEvent(history.EventConnected, "")
		} else {
			s.log.Printf("controller disconnected")
			s.journalEvent(history.EventDisconnected, "")
		}
	}

	switch {
	case present && !running:
		pid, err := s.proc.Spawn()
		if err != nil {
			s.log.Printf("engine start failed: %v", err)
			return false
		}
		if err := s.record.Store(pid); err != nil {
			s.log.Printf("failed to persist engine pid %d: %v", pid, err)
		}
		s.log.Printf("engine started (pid %d)", pid)
		s.journalEvent(history.EventEngineStarted, fmt.Sprintf("pid %d", pid))

	case !present && running:
		s.stopEngine(pid)

	case !present && !running:
		if !s.opts.AutoRestart {
			s.log.Printf("no controller and auto_restart is off, exiting")
			return true
		}
	}
	return false
}

// stopEngine asks the engine to exit and escalates to a kill when it
// does not go quietly within the term wait.
func (s *Supervisor) stopEngine(pid int) {
	s.log.Printf("stopping engine (pid %d)", pid)
	if err := s.proc.Terminate(pid); err != nil {
		s.log.Printf("terminate failed for pid %d: %v", pid, err)
	}

	poll := s.opts.TermWait / 10
	if poll < time.Millisecond {
		poll = time.Millisecond
	}
	deadline := time.Now().Add(s.opts.TermWait)
	for s.proc.Alive(pid) && time.Now().Before(deadline) {
		time.Sleep(poll)
	}

	if s.proc.Alive(pid) {
		s.log.Printf("engine pid %d ignored terminate, killing", pid)
		if err := s.proc.Kill(pid); err != nil {
			s.log.Printf("kill failed for pid %d: %v", pid, err)
		}
	}

	if err := s.record.Remove(); err != nil {
		s.log.Printf("failed to remove record: %v", err)
	}
	s.log.Printf("engine stopped (pid %d)", pid)
	s.journalEvent(history.EventEngineStopped, fmt.Sprintf("pid %d", pid))
}

// shutdown drives active to idle before the supervisor itself exits.
func (s *Supervisor) shutdown() {
	if pid, running := s.liveEngine(); running {
		s.stopEngine(pid)
	}
}

func (s *Supervisor) journalEvent(event, detail string) {
	if s.journal == nil {
		return
	}
	if err := s.journal.Append(event, detail); err != nil {
		s.log.Printf("journal write failed: %v", err)
	}
}
