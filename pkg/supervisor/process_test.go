package supervisor

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAliveMatchesOwnProcess(t *testing.T) {
	c := &ExecController{Binary: os.Args[0], Args: os.Args[1:]}
	assert.True(t, c.Alive(os.Getpid()))
}

func TestAliveRejectsRecycledPid(t *testing.T) {
	// A live pid belonging to a different command must not count as a
	// running engine.
	c := &ExecController{Binary: os.Args[0], Args: []string{"-map"}}
	assert.False(t, c.Alive(os.Getpid()))

	c = &ExecController{Binary: "/usr/bin/padmap", Args: nil}
	assert.False(t, c.Alive(os.Getpid()))
}

func TestAliveRejectsDeadPid(t *testing.T) {
	c := &ExecController{Binary: os.Args[0]}
	// Beyond the default pid_max, never a real process.
	assert.False(t, c.Alive(1<<22+5))
}
