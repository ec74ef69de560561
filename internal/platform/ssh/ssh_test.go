package ssh

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/dkimctl/internal/dkimkey"
)

// generateTestKey generates a private key for client construction tests.
func generateTestKey(t *testing.T) []byte {
	t.Helper()
	kp, err := dkimkey.Generate("test", "example.com", 1024)
	if err != nil {
		t.Fatalf("failed to generate test key: %v", err)
	}
	return kp.PrivateKey
}

func TestNewClient_AppliesDefaults(t *testing.T) {
	t.Parallel()
	client, err := NewClient(&Config{
		Host:       "192.0.2.10",
		User:       "root",
		PrivateKey: generateTestKey(t),
	})
	require.NoError(t, err)

	assert.Equal(t, defaultPort, client.config.Port)
	assert.Equal(t, defaultDialTimeout, client.config.DialTimeout)
	assert.Equal(t, defaultMaxRetries, client.config.MaxRetries)
	assert.Equal(t, defaultRetryDelay, client.config.RetryDelay)
	assert.NotNil(t, client.config.HostKeyCallback)
	assert.NotNil(t, client.signer)
	assert.Equal(t, "192.0.2.10:22", client.Address())
}

func TestNewClient_ConfigNotMutated(t *testing.T) {
	t.Parallel()
	cfg := &Config{
		Host:       "192.0.2.10",
		User:       "root",
		PrivateKey: generateTestKey(t),
	}

	_, err := NewClient(cfg)
	require.NoError(t, err)

	assert.Zero(t, cfg.Port)
	assert.Zero(t, cfg.MaxRetries)
	assert.Nil(t, cfg.HostKeyCallback)
}

func TestNewClient_Validation(t *testing.T) {
	t.Parallel()
	key := generateTestKey(t)

	tests := []struct {
		name    string
		cfg     *Config
		wantErr string
	}{
		{"nil config", nil, "config cannot be nil"},
		{"empty host", &Config{User: "root", PrivateKey: key}, "config host cannot be empty"},
		{"empty user", &Config{Host: "h", PrivateKey: key}, "config user cannot be empty"},
		{"empty key", &Config{Host: "h", User: "root"}, "config private key cannot be empty"},
		{"invalid key", &Config{Host: "h", User: "root", PrivateKey: []byte("invalid key")}, "failed to parse private key"},
		{
			"missing known hosts",
			&Config{Host: "h", User: "root", PrivateKey: key, KnownHostsFile: "/nonexistent/known_hosts"},
			"failed to load known hosts",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewClient(tt.cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNewClient_KnownHostsFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "known_hosts")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	client, err := NewClient(&Config{Host: "h", User: "root", PrivateKey: generateTestKey(t), KnownHostsFile: path})
	require.NoError(t, err)
	assert.NotNil(t, client.config.HostKeyCallback)
}

func TestExecute_ContextCancellation(t *testing.T) {
	t.Parallel()
	client, err := NewClient(&Config{
		Host:       "192.0.2.10",
		User:       "root",
		PrivateKey: generateTestKey(t),
		MaxRetries: 3,
		RetryDelay: 100 * time.Millisecond,
		// Unroutable TEST-NET address: fail fast instead of waiting on the dial.
		DialTimeout: 50 * time.Millisecond,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = client.Execute(ctx, "true")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled), "got %v", err)
}

func TestClose_WithoutConnection(t *testing.T) {
	t.Parallel()
	client, err := NewClient(&Config{Host: "h", User: "root", PrivateKey: generateTestKey(t)})
	require.NoError(t, err)
	assert.NoError(t, client.Close())
}

func TestExitError(t *testing.T) {
	t.Parallel()
	err := &ExitError{Host: "mx1", Command: "false", Status: 1, Stderr: "boom\n"}
	assert.Equal(t, "command failed on mx1 with exit status 1: false: boom", err.Error())

	err.Stderr = ""
	assert.Equal(t, "command failed on mx1 with exit status 1: false", err.Error())
}

func TestQuote(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   string
		want string
	}{
		{"", "''"},
		{"/etc/opendkim/keys", "/etc/opendkim/keys"},
		{"mail.private", "mail.private"},
		{"opendkim:opendkim", "opendkim:opendkim"},
		{"has space", "'has space'"},
		{"it's", `'it'\''s'`},
		{"$(reboot)", "'$(reboot)'"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Quote(tt.in), "Quote(%q)", tt.in)
	}

	assert.Equal(t, "opendkim-genkey -s mail -d 'a b'", QuoteArgs([]string{"opendkim-genkey", "-s", "mail", "-d", "a b"}))
}
