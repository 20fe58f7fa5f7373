// Package logging builds the structured logger shared by the engine and the
// command line.
package logging

import (
	"io"

	"github.com/charmbracelet/log"
)

const Prefix = "pppm"

// New returns a logger writing to w at the named level (debug, info, warn,
// error, fatal).
func New(w io.Writer, level string) (*log.Logger, error) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	return log.NewWithOptions(w, log.Options{
		Level:           lvl,
		Prefix:          Prefix,
		ReportTimestamp: true,
	}), nil
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.FatalLevel})
}
