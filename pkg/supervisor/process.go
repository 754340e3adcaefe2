package supervisor

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"

	"golang.org/x/sys/unix"
)

// ProcessController spawns, checks and stops the engine process. The
// exec implementation below is the real one; tests inject fakes.
type ProcessController interface {
	Spawn() (int, error)
	Alive(pid int) bool
	Terminate(pid int) error
	Kill(pid int) error
}

// ExecController runs the engine by re-executing the padmap binary in
// engine mode, detached in its own session.
type ExecController struct {
	Binary string
	Args   []string
}

// NewExecController resolves the current executable as the engine
// binary. A missing or unresolvable binary surfaces at spawn time.
func NewExecController(args ...string) (*ExecController, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("cannot resolve engine binary: %w", err)
	}
	if _, err := os.Stat(exe); err != nil {
		return nil, fmt.Errorf("engine binary missing: %w", err)
	}
	return &ExecController{Binary: exe, Args: args}, nil
}

func (c *ExecController) Spawn() (int, error) {
	cmd := exec.Command(c.Binary, c.Args...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("failed to spawn engine: %w", err)
	}
	pid := cmd.Process.Pid

	// Reap the child when it exits; otherwise a finished engine stays
	// a zombie and kill(pid, 0) keeps reporting it alive.
	go func() { _ = cmd.Wait() }()

	return pid, nil
}

// Alive reports whether pid is an engine process we spawned. A pid can
// be recycled onto an unrelated process between polls, so signal 0
// alone is not enough; the command line has to match too.
func (c *ExecController) Alive(pid int) bool {
	err := unix.Kill(pid, 0)
	if err != nil && err != unix.EPERM {
		return false
	}
	return c.isEngine(pid)
}

// isEngine compares /proc/<pid>/cmdline against the spawn command. An
// exited zombie has an empty cmdline and correctly reads as not ours.
func (c *ExecController) isEngine(pid int) bool {
	raw, err := os.ReadFile(fmt.Sprintf("/proc/%d/cmdline", pid))
	if err != nil {
		return false
	}
	fields := bytes.Split(bytes.TrimRight(raw, "\x00"), []byte{0})
	if len(fields) < 1+len(c.Args) || len(fields[0]) == 0 {
		return false
	}
	if filepath.Base(string(fields[0])) != filepath.Base(c.Binary) {
		return false
	}
	for i, arg := range c.Args {
		if string(fields[1+i]) != arg {
			return false
		}
	}
	return true
}

func (c *ExecController) Terminate(pid int) error {
	return unix.Kill(pid, unix.SIGTERM)
}

func (c *ExecController) Kill(pid int) error {
	return unix.Kill(pid, unix.SIGKILL)
}
