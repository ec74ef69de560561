package host

import (
	"context"
	"errors"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_WriteRequiresParent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m := NewMemory()

	err := m.WriteFile(ctx, "/etc/opendkim/TrustedHosts", []byte("127.0.0.1\n"), 0o644)
	assert.True(t, errors.Is(err, fs.ErrNotExist))

	require.NoError(t, m.MkdirAll(ctx, "/etc/opendkim", 0o755))
	require.NoError(t, m.WriteFile(ctx, "/etc/opendkim/TrustedHosts", []byte("127.0.0.1\n"), 0o644))

	data, ok := m.File("/etc/opendkim/TrustedHosts")
	require.True(t, ok)
	assert.Equal(t, "127.0.0.1\n", string(data))
	assert.Equal(t, []string{"/etc/opendkim/TrustedHosts"}, m.Writes)
	assert.Equal(t, []string{"/", "/etc", "/etc/opendkim", "/etc/opendkim/TrustedHosts"}, m.Paths())
}

func TestMemory_StatAndChown(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m := NewMemory()
	m.PutFile("/etc/opendkim/keys/mail.private", []byte("key"), 0o600, "root", "root")

	require.NoError(t, m.Chown(ctx, "/etc/opendkim/keys/mail.private", "opendkim", "opendkim"))

	info, err := m.Stat(ctx, "/etc/opendkim/keys/mail.private")
	require.NoError(t, err)
	assert.Equal(t, "opendkim", info.Owner)
	assert.Equal(t, "opendkim", info.Group)

	err = m.Chown(ctx, "/missing", "a", "b")
	assert.True(t, errors.Is(err, fs.ErrNotExist))

	require.NoError(t, m.Chmod(ctx, "/etc/opendkim/keys/mail.private", 0o640))
	info, err = m.Stat(ctx, "/etc/opendkim/keys/mail.private")
	require.NoError(t, err)
	assert.Equal(t, fs.FileMode(0o640), info.Mode)

	err = m.Chmod(ctx, "/missing", 0o644)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestMemory_MkdirOverFile(t *testing.T) {
	t.Parallel()
	m := NewMemory()
	m.PutFile("/etc/opendkim", nil, 0o644, "root", "root")

	err := m.MkdirAll(context.Background(), "/etc/opendkim/keys", 0o755)
	assert.ErrorContains(t, err, "not a directory")
}

func TestMemory_Run(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m := NewMemory()
	m.Handle("echo", func(_ *Memory, args []string) (string, error) {
		return args[0] + "\n", nil
	})

	out, err := m.Run(ctx, "echo", "hi")
	require.NoError(t, err)
	assert.Equal(t, "hi\n", out)

	_, err = m.Run(ctx, "missing-tool")
	assert.Equal(t, 127, ExitCode(err))

	assert.True(t, m.Ran("echo"))
	assert.True(t, m.Ran("missing-tool"))
	assert.False(t, m.Ran("systemctl"))
	assert.Equal(t, [][]string{{"echo", "hi"}, {"missing-tool"}}, m.Commands)
}

func TestMemory_FailOn(t *testing.T) {
	t.Parallel()
	m := NewMemory()
	boom := errors.New("permission denied")
	m.FailOn("mkdir", "/etc/opendkim", boom)

	err := m.MkdirAll(context.Background(), "/etc/opendkim/", 0o755)
	assert.ErrorIs(t, err, boom)
}

func TestExitError(t *testing.T) {
	t.Parallel()
	err := &ExitError{Command: "apt-get install -y opendkim", Code: 100, Stderr: "E: Unable to locate package\n"}
	assert.Equal(t, "apt-get install -y opendkim exited with status 100: E: Unable to locate package", err.Error())
	assert.Equal(t, 100, ExitCode(err))
	assert.Equal(t, -1, ExitCode(errors.New("other")))
	assert.Equal(t, -1, ExitCode(nil))
}
