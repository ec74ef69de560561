// Package host abstracts the target machine that a run converges.
//
// Every effect a phase performs (reading and writing files, creating
// directories, changing ownership, running commands) goes through the
// [Host] interface. [Local] acts on the machine dkimctl runs on, [Remote]
// acts over SSH, and [Memory] is an in-process fake used by tests.
package host

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"
)

// FileInfo describes a path on the host.
type FileInfo struct {
	IsDir bool
	Mode  fs.FileMode
	Owner string
	Group string
}

// Host performs effects on the target machine.
//
// ReadFile and Stat return an error satisfying errors.Is(err, fs.ErrNotExist)
// when the path is absent. Run returns *ExitError when the command ran and
// exited non-zero.
type Host interface {
	// Name identifies the host in logs.
	Name() string

	ReadFile(ctx context.Context, path string) ([]byte, error)
	WriteFile(ctx context.Context, path string, data []byte, mode fs.FileMode) error
	Stat(ctx context.Context, path string) (*FileInfo, error)
	MkdirAll(ctx context.Context, path string, mode fs.FileMode) error
	Chown(ctx context.Context, path, owner, group string) error
	Chmod(ctx context.Context, path string, mode fs.FileMode) error

	// Run executes name with args and returns its standard output.
	Run(ctx context.Context, name string, args ...string) (string, error)

	Close() error
}

// ExitError reports a command that exited with a non-zero status.
type ExitError struct {
	Command string
	Code    int
	Stderr  string
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("%s exited with status %d", e.Command, e.Code)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += ": " + s
	}
	return msg
}

// ExitCode returns the exit status carried by err, or -1 when err is not
// an *ExitError.
func ExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return -1
}

// Exists reports whether path exists on h.
func Exists(ctx context.Context, h Host, path string) (bool, error) {
	_, err := h.Stat(ctx, path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

func notExist(path string) error {
	return &fs.PathError{Op: "stat", Path: path, Err: fs.ErrNotExist}
}
