// Package logging builds the logr.Logger used across dkimctl.
package logging

import (
	"fmt"
	"io"
	"time"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
)

// Options configures New.
type Options struct {
	// Verbosity enables V(n) logs up to this level.
	Verbosity int
	// JSON switches the output from key=value text to JSON lines.
	JSON bool
	// Timestamps prefixes every line with the wall-clock time.
	Timestamps bool
}

// New returns a logger writing one line per entry to w.
func New(w io.Writer, opts Options) logr.Logger {
	fopts := funcr.Options{
		Verbosity:       opts.Verbosity,
		LogTimestamp:    opts.Timestamps,
		TimestampFormat: time.RFC3339,
	}

	if opts.JSON {
		return funcr.NewJSON(func(obj string) {
			_, _ = fmt.Fprintln(w, obj)
		}, fopts)
	}

	return funcr.New(func(prefix, args string) {
		if prefix != "" {
			_, _ = fmt.Fprintf(w, "%s: %s\n", prefix, args)
			return
		}
		_, _ = fmt.Fprintln(w, args)
	}, fopts)
}
