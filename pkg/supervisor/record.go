package supervisor

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Record is the persisted identity of the managed engine process: one
// PID in a plain text file. Only the supervisor touches it.
type Record struct {
	Path string
}

// Store writes the PID, creating the data directory when missing.
func (r *Record) Store(pid int) error {
	if err := os.MkdirAll(filepath.Dir(r.Path), 0755); err != nil {
		return err
	}
	return os.WriteFile(r.Path, []byte(strconv.Itoa(pid)), 0644)
}

// Load returns the recorded PID. A missing or unreadable file and a
// non-numeric payload all report no record; a stale file from a crashed
// supervisor must never block a fresh start.
func (r *Record) Load() (int, bool) {
	b, err := os.ReadFile(r.Path)
	if err != nil {
		return 0, false
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(b)))
	if err != nil || pid <= 0 {
		return 0, false
	}
	return pid, true
}

// Remove deletes the record. Removing an absent record is not an
// error.
func (r *Record) Remove() error {
	err := os.Remove(r.Path)
	if err != nil && os.IsNotExist(err) {
		return nil
	}
	return err
}
