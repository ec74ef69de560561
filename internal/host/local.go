package host

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"os/user"
	"path/filepath"
	"strconv"
	"strings"
)

// Local acts on the machine dkimctl runs on.
type Local struct{}

// NewLocal returns a host for the local machine.
func NewLocal() *Local {
	return &Local{}
}

// Name implements Host.
func (l *Local) Name() string {
	return "localhost"
}

// ReadFile implements Host.
func (l *Local) ReadFile(_ context.Context, path string) ([]byte, error) {
	// #nosec G304
	return os.ReadFile(path)
}

// WriteFile implements Host. The file is replaced atomically.
func (l *Local) WriteFile(_ context.Context, path string, data []byte, mode fs.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", path, err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, mode); err != nil {
		return fmt.Errorf("failed to chmod %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

// Stat implements Host.
func (l *Local) Stat(_ context.Context, path string) (*FileInfo, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	owner, group := fileOwner(fi)
	return &FileInfo{
		IsDir: fi.IsDir(),
		Mode:  fi.Mode().Perm(),
		Owner: owner,
		Group: group,
	}, nil
}

// MkdirAll implements Host.
func (l *Local) MkdirAll(_ context.Context, path string, mode fs.FileMode) error {
	return os.MkdirAll(path, mode)
}

// Chown implements Host.
func (l *Local) Chown(_ context.Context, path, owner, group string) error {
	u, err := user.Lookup(owner)
	if err != nil {
		return fmt.Errorf("failed to look up user %s: %w", owner, err)
	}
	g, err := user.LookupGroup(group)
	if err != nil {
		return fmt.Errorf("failed to look up group %s: %w", group, err)
	}

	uid, err := strconv.Atoi(u.Uid)
	if err != nil {
		return fmt.Errorf("unexpected uid %q for %s", u.Uid, owner)
	}
	gid, err := strconv.Atoi(g.Gid)
	if err != nil {
		return fmt.Errorf("unexpected gid %q for %s", g.Gid, group)
	}

	return os.Chown(path, uid, gid)
}

// Chmod implements Host.
func (l *Local) Chmod(_ context.Context, path string, mode fs.FileMode) error {
	return os.Chmod(path, mode.Perm())
}

// Run implements Host.
func (l *Local) Run(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return stdout.String(), nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && ctx.Err() == nil {
		return stdout.String(), &ExitError{
			Command: strings.Join(append([]string{name}, args...), " "),
			Code:    exitErr.ExitCode(),
			Stderr:  stderr.String(),
		}
	}
	return stdout.String(), fmt.Errorf("failed to run %s: %w", name, err)
}

// Close implements Host.
func (l *Local) Close() error {
	return nil
}
