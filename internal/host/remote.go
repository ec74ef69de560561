package host

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strconv"
	"strings"

	"github.com/imamik/dkimctl/internal/platform/ssh"
)

// missingExit is the status the remote probes use for an absent path.
const missingExit = 44

// Executor runs shell command lines on a remote machine.
// Implemented by *ssh.Client.
type Executor interface {
	Execute(ctx context.Context, command string) (string, error)
	ExecuteWithInput(ctx context.Context, command string, input io.Reader) (string, error)
	Close() error
}

// Remote acts on a machine reached over SSH.
type Remote struct {
	name string
	exec Executor
	sudo bool
}

// NewRemote returns a host that runs every effect through exec.
// With sudo set, command lines are wrapped in "sudo -n sh -c".
func NewRemote(name string, exec Executor, sudo bool) *Remote {
	return &Remote{name: name, exec: exec, sudo: sudo}
}

// Name implements Host.
func (r *Remote) Name() string {
	return r.name
}

// ReadFile implements Host.
func (r *Remote) ReadFile(ctx context.Context, path string) ([]byte, error) {
	p := ssh.Quote(path)
	out, err := r.shell(ctx, fmt.Sprintf("if [ ! -e %s ]; then exit %d; fi; cat -- %s", p, missingExit, p), nil)
	if err != nil {
		if ExitCode(err) == missingExit {
			return nil, &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
		}
		return nil, fmt.Errorf("failed to read %s on %s: %w", path, r.name, err)
	}
	return []byte(out), nil
}

// WriteFile implements Host. The file is replaced atomically.
func (r *Remote) WriteFile(ctx context.Context, path string, data []byte, mode fs.FileMode) error {
	p := ssh.Quote(path)
	cmd := fmt.Sprintf(`tmp=$(mktemp %s) && cat > "$tmp" && chmod %o "$tmp" && mv -f "$tmp" %s`,
		ssh.Quote(path+".XXXXXX"), mode.Perm(), p)

	if _, err := r.shell(ctx, cmd, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write %s on %s: %w", path, r.name, err)
	}
	return nil
}

// Stat implements Host.
func (r *Remote) Stat(ctx context.Context, path string) (*FileInfo, error) {
	p := ssh.Quote(path)
	out, err := r.shell(ctx, fmt.Sprintf("if [ ! -e %s ]; then exit %d; fi; stat -L -c '%%F|%%a|%%U|%%G' -- %s", p, missingExit, p), nil)
	if err != nil {
		if ExitCode(err) == missingExit {
			return nil, notExist(path)
		}
		return nil, fmt.Errorf("failed to stat %s on %s: %w", path, r.name, err)
	}
	return parseStat(path, out)
}

// parseStat decodes "type|octal mode|owner|group".
func parseStat(path, out string) (*FileInfo, error) {
	parts := strings.Split(strings.TrimSpace(out), "|")
	if len(parts) != 4 {
		return nil, fmt.Errorf("unexpected stat output for %s: %q", path, out)
	}

	mode, err := strconv.ParseUint(parts[1], 8, 32)
	if err != nil {
		return nil, fmt.Errorf("unexpected mode for %s: %q", path, parts[1])
	}

	return &FileInfo{
		IsDir: parts[0] == "directory",
		Mode:  fs.FileMode(mode).Perm(),
		Owner: parts[2],
		Group: parts[3],
	}, nil
}

// MkdirAll implements Host.
func (r *Remote) MkdirAll(ctx context.Context, path string, mode fs.FileMode) error {
	if _, err := r.shell(ctx, fmt.Sprintf("mkdir -p -m %o -- %s", mode.Perm(), ssh.Quote(path)), nil); err != nil {
		return fmt.Errorf("failed to create directory %s on %s: %w", path, r.name, err)
	}
	return nil
}

// Chown implements Host.
func (r *Remote) Chown(ctx context.Context, path, owner, group string) error {
	if _, err := r.shell(ctx, "chown -- "+ssh.QuoteArgs([]string{owner + ":" + group, path}), nil); err != nil {
		return fmt.Errorf("failed to chown %s on %s: %w", path, r.name, err)
	}
	return nil
}

// Chmod implements Host.
func (r *Remote) Chmod(ctx context.Context, path string, mode fs.FileMode) error {
	if _, err := r.shell(ctx, fmt.Sprintf("chmod %o -- %s", mode.Perm(), ssh.Quote(path)), nil); err != nil {
		return fmt.Errorf("failed to chmod %s on %s: %w", path, r.name, err)
	}
	return nil
}

// Run implements Host.
func (r *Remote) Run(ctx context.Context, name string, args ...string) (string, error) {
	return r.shell(ctx, ssh.QuoteArgs(append([]string{name}, args...)), nil)
}

// Close implements Host.
func (r *Remote) Close() error {
	return r.exec.Close()
}

func (r *Remote) shell(ctx context.Context, command string, input io.Reader) (string, error) {
	if r.sudo {
		command = "sudo -n sh -c " + ssh.Quote(command)
	}

	var (
		out string
		err error
	)
	if input != nil {
		out, err = r.exec.ExecuteWithInput(ctx, command, input)
	} else {
		out, err = r.exec.Execute(ctx, command)
	}
	if err == nil {
		return out, nil
	}

	var sshErr *ssh.ExitError
	if errors.As(err, &sshErr) {
		return out, &ExitError{Command: command, Code: sshErr.Status, Stderr: sshErr.Stderr}
	}
	return out, err
}
