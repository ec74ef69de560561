package host

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"
)

// CommandFunc handles a command run on a Memory host.
type CommandFunc func(m *Memory, args []string) (string, error)

type memEntry struct {
	data  []byte
	dir   bool
	mode  fs.FileMode
	owner string
	group string
}

// Memory is an in-process Host. Commands must be registered with Handle;
// unregistered commands fail with exit status 127.
type Memory struct {
	name string

	mu       sync.Mutex
	entries  map[string]*memEntry
	handlers map[string]CommandFunc
	failures map[string]error

	// Commands records every command line run, in order.
	Commands [][]string
	// Writes records every path written with WriteFile, in order.
	Writes []string
}

// NewMemory returns an empty Memory host holding only the root directory.
func NewMemory() *Memory {
	return &Memory{
		name: "memory",
		entries: map[string]*memEntry{
			"/": {dir: true, mode: 0o755, owner: "root", group: "root"},
		},
		handlers: make(map[string]CommandFunc),
		failures: make(map[string]error),
	}
}

// Handle registers fn for command name.
func (m *Memory) Handle(name string, fn CommandFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[name] = fn
}

// FailOn makes operation op ("read", "write", "stat", "mkdir", "chown", "chmod")
// on path return err.
func (m *Memory) FailOn(op, p string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[op+":"+path.Clean(p)] = err
}

// PutFile seeds a file, creating parent directories.
func (m *Memory) PutFile(p string, data []byte, mode fs.FileMode, owner, group string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_ = m.mkdirAllLocked(path.Dir(p), 0o755)
	m.entries[path.Clean(p)] = &memEntry{data: append([]byte(nil), data...), mode: mode, owner: owner, group: group}
}

// File returns the content of p and whether it exists as a regular file.
func (m *Memory) File(p string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[path.Clean(p)]
	if !ok || e.dir {
		return nil, false
	}
	return append([]byte(nil), e.data...), true
}

// Paths lists every path held, sorted.
func (m *Memory) Paths() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	paths := make([]string, 0, len(m.entries))
	for p := range m.entries {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Ran reports whether a command named name was run.
func (m *Memory) Ran(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.Commands {
		if len(c) > 0 && c[0] == name {
			return true
		}
	}
	return false
}

// Name implements Host.
func (m *Memory) Name() string {
	return m.name
}

// ReadFile implements Host.
func (m *Memory) ReadFile(_ context.Context, p string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure("read", p); err != nil {
		return nil, err
	}

	e, ok := m.entries[path.Clean(p)]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: p, Err: fs.ErrNotExist}
	}
	if e.dir {
		return nil, fmt.Errorf("read %s: is a directory", p)
	}
	return append([]byte(nil), e.data...), nil
}

// WriteFile implements Host.
func (m *Memory) WriteFile(_ context.Context, p string, data []byte, mode fs.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure("write", p); err != nil {
		return err
	}

	p = path.Clean(p)
	parent, ok := m.entries[path.Dir(p)]
	if !ok || !parent.dir {
		return &fs.PathError{Op: "open", Path: p, Err: fs.ErrNotExist}
	}

	e, ok := m.entries[p]
	if ok && e.dir {
		return fmt.Errorf("write %s: is a directory", p)
	}
	if !ok {
		e = &memEntry{owner: "root", group: "root"}
		m.entries[p] = e
	}
	e.data = append([]byte(nil), data...)
	e.mode = mode.Perm()
	m.Writes = append(m.Writes, p)
	return nil
}

// Stat implements Host.
func (m *Memory) Stat(_ context.Context, p string) (*FileInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure("stat", p); err != nil {
		return nil, err
	}

	e, ok := m.entries[path.Clean(p)]
	if !ok {
		return nil, notExist(p)
	}
	return &FileInfo{IsDir: e.dir, Mode: e.mode, Owner: e.owner, Group: e.group}, nil
}

// MkdirAll implements Host.
func (m *Memory) MkdirAll(_ context.Context, p string, mode fs.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure("mkdir", p); err != nil {
		return err
	}
	return m.mkdirAllLocked(p, mode)
}

func (m *Memory) mkdirAllLocked(p string, mode fs.FileMode) error {
	p = path.Clean(p)
	if p == "." {
		return nil
	}
	if e, ok := m.entries[p]; ok {
		if !e.dir {
			return fmt.Errorf("mkdir %s: not a directory", p)
		}
		return nil
	}
	if err := m.mkdirAllLocked(path.Dir(p), mode); err != nil {
		return err
	}
	m.entries[p] = &memEntry{dir: true, mode: mode.Perm(), owner: "root", group: "root"}
	return nil
}

// Chown implements Host.
func (m *Memory) Chown(_ context.Context, p, owner, group string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure("chown", p); err != nil {
		return err
	}

	e, ok := m.entries[path.Clean(p)]
	if !ok {
		return &fs.PathError{Op: "chown", Path: p, Err: fs.ErrNotExist}
	}
	e.owner, e.group = owner, group
	return nil
}

// Chmod implements Host.
func (m *Memory) Chmod(_ context.Context, p string, mode fs.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure("chmod", p); err != nil {
		return err
	}

	e, ok := m.entries[path.Clean(p)]
	if !ok {
		return &fs.PathError{Op: "chmod", Path: p, Err: fs.ErrNotExist}
	}
	e.mode = mode.Perm()
	return nil
}

// Run implements Host.
func (m *Memory) Run(_ context.Context, name string, args ...string) (string, error) {
	m.mu.Lock()
	m.Commands = append(m.Commands, append([]string{name}, args...))
	fn, ok := m.handlers[name]
	m.mu.Unlock()

	if !ok {
		return "", &ExitError{
			Command: strings.Join(append([]string{name}, args...), " "),
			Code:    127,
			Stderr:  name + ": command not found",
		}
	}
	return fn(m, args)
}

// Close implements Host.
func (m *Memory) Close() error {
	return nil
}

func (m *Memory) failure(op, p string) error {
	return m.failures[op+":"+path.Clean(p)]
}
