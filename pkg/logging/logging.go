package logging

import (
	"io"
	"log"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Shared log file settings for both the supervisor and the engine.
// Both processes append to the same rotated file.
const (
	maxSizeMB  = 5
	maxBackups = 2
)

// New returns a logger that writes timestamped lines to the shared
// padmap log and mirrors them to stderr. tag identifies the component,
// e.g. "[SUP]" or "[MAP]".
func New(tag, path string) *log.Logger {
	rotated := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
	}
	return log.New(io.MultiWriter(os.Stderr, rotated), tag+" ", log.LstdFlags)
}
