package host

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/dkimctl/internal/platform/ssh"
)

// fakeExecutor records command lines and answers from a scripted function.
type fakeExecutor struct {
	commands []string
	inputs   []string
	respond  func(command string) (string, error)
	closed   bool
}

func (f *fakeExecutor) Execute(ctx context.Context, command string) (string, error) {
	return f.ExecuteWithInput(ctx, command, nil)
}

func (f *fakeExecutor) ExecuteWithInput(_ context.Context, command string, input io.Reader) (string, error) {
	f.commands = append(f.commands, command)
	if input != nil {
		data, _ := io.ReadAll(input)
		f.inputs = append(f.inputs, string(data))
	}
	if f.respond == nil {
		return "", nil
	}
	return f.respond(command)
}

func (f *fakeExecutor) Close() error {
	f.closed = true
	return nil
}

func TestRemote_ReadFile(t *testing.T) {
	t.Parallel()
	exec := &fakeExecutor{respond: func(string) (string, error) { return "Mode sv\n", nil }}
	h := NewRemote("mx1", exec, false)

	data, err := h.ReadFile(context.Background(), "/etc/opendkim.conf")
	require.NoError(t, err)
	assert.Equal(t, "Mode sv\n", string(data))
	require.Len(t, exec.commands, 1)
	assert.Contains(t, exec.commands[0], "cat -- /etc/opendkim.conf")
}

func TestRemote_ReadFileMissing(t *testing.T) {
	t.Parallel()
	exec := &fakeExecutor{respond: func(c string) (string, error) {
		return "", &ssh.ExitError{Host: "mx1", Command: c, Status: missingExit}
	}}
	h := NewRemote("mx1", exec, false)

	_, err := h.ReadFile(context.Background(), "/etc/opendkim.conf")
	assert.True(t, errors.Is(err, fs.ErrNotExist))

	_, err = h.Stat(context.Background(), "/etc/opendkim.conf")
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestRemote_Stat(t *testing.T) {
	t.Parallel()
	exec := &fakeExecutor{respond: func(string) (string, error) { return "regular file|600|opendkim|opendkim\n", nil }}
	h := NewRemote("mx1", exec, false)

	info, err := h.Stat(context.Background(), "/etc/opendkim/keys/mail.private")
	require.NoError(t, err)
	assert.Equal(t, &FileInfo{IsDir: false, Mode: 0o600, Owner: "opendkim", Group: "opendkim"}, info)
}

func TestParseStat(t *testing.T) {
	t.Parallel()
	info, err := parseStat("/etc/opendkim", "directory|755|root|root")
	require.NoError(t, err)
	assert.True(t, info.IsDir)
	assert.Equal(t, fs.FileMode(0o755), info.Mode)

	_, err = parseStat("/x", "garbage")
	assert.Error(t, err)
	_, err = parseStat("/x", "directory|rwx|root|root")
	assert.Error(t, err)
}

func TestRemote_WriteFileSendsContentOnStdin(t *testing.T) {
	t.Parallel()
	exec := &fakeExecutor{}
	h := NewRemote("mx1", exec, false)

	require.NoError(t, h.WriteFile(context.Background(), "/etc/opendkim/KeyTable", []byte("line\n"), 0o644))

	require.Len(t, exec.commands, 1)
	assert.Contains(t, exec.commands[0], "chmod 644")
	assert.Contains(t, exec.commands[0], "mv -f \"$tmp\" /etc/opendkim/KeyTable")
	assert.Equal(t, []string{"line\n"}, exec.inputs)
}

func TestRemote_Run(t *testing.T) {
	t.Parallel()
	exec := &fakeExecutor{respond: func(c string) (string, error) {
		return "", &ssh.ExitError{Host: "mx1", Command: c, Status: 3, Stderr: "inactive"}
	}}
	h := NewRemote("mx1", exec, false)

	_, err := h.Run(context.Background(), "systemctl", "is-active", "--quiet", "opendkim")
	require.Error(t, err)
	assert.Equal(t, 3, ExitCode(err))
	assert.Equal(t, "systemctl is-active --quiet opendkim", exec.commands[0])
}

func TestRemote_Sudo(t *testing.T) {
	t.Parallel()
	exec := &fakeExecutor{}
	h := NewRemote("mx1", exec, true)

	require.NoError(t, h.MkdirAll(context.Background(), "/etc/opendkim/keys", 0o755))
	require.NoError(t, h.Chown(context.Background(), "/etc/opendkim/keys/mail.private", "opendkim", "opendkim"))
	require.NoError(t, h.Chmod(context.Background(), "/etc/opendkim/TrustedHosts", 0o644))

	for _, c := range exec.commands {
		assert.True(t, strings.HasPrefix(c, "sudo -n sh -c '"), c)
	}
	assert.Contains(t, exec.commands[0], "mkdir -p -m 755 -- /etc/opendkim/keys")
	assert.Contains(t, exec.commands[1], "chown -- opendkim:opendkim /etc/opendkim/keys/mail.private")
	assert.Contains(t, exec.commands[2], "chmod 644 -- /etc/opendkim/TrustedHosts")

	require.NoError(t, h.Close())
	assert.True(t, exec.closed)
}

func TestRemote_TransportError(t *testing.T) {
	t.Parallel()
	exec := &fakeExecutor{respond: func(string) (string, error) { return "", errors.New("connection reset") }}
	h := NewRemote("mx1", exec, false)

	err := h.MkdirAll(context.Background(), "/etc/opendkim", 0o755)
	require.Error(t, err)
	assert.Equal(t, -1, ExitCode(err))
	assert.Contains(t, err.Error(), "connection reset")
}
