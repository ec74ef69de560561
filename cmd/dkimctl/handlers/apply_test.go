package handlers

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/imamik/dkimctl/internal/config"
	"github.com/imamik/dkimctl/internal/host"
	"github.com/imamik/dkimctl/internal/logging"
	"github.com/imamik/dkimctl/internal/opendkim"
	dkimtest "github.com/imamik/dkimctl/internal/testing"
)

func TestApply_FreshHost(t *testing.T) {
	out, _ := saveAndRestoreFactories(t)
	f := dkimtest.NewHostFixture("Debian")
	useConfig(dkimtest.NewConfigBuilder().Build())
	useHost(f.Host)

	require.NoError(t, Apply(context.Background(), ApplyOptions{}))

	assert.Equal(t, 1, f.Restarts)
	assert.Len(t, f.GenkeyCalls, 1)
	assert.Contains(t, out.String(), "dkimctl recap: memory")
	assert.Contains(t, out.String(), "failed=0")
	assert.NotContains(t, out.String(), "changed=0")
}

func TestApply_CheckMode(t *testing.T) {
	out, _ := saveAndRestoreFactories(t)
	f := dkimtest.NewHostFixture("Debian")
	useConfig(dkimtest.NewConfigBuilder().Build())
	useHost(f.Host)

	require.NoError(t, Apply(context.Background(), ApplyOptions{Check: true}))

	assert.Empty(t, f.Host.Writes)
	assert.Zero(t, f.Restarts)
	assert.Contains(t, out.String(), "(check mode)")
}

func TestApply_FailureStillPrintsRecap(t *testing.T) {
	out, _ := saveAndRestoreFactories(t)
	f := dkimtest.NewHostFixture("Debian")
	f.GenkeyExit = 1
	useConfig(dkimtest.NewConfigBuilder().Build())
	useHost(f.Host)

	err := Apply(context.Background(), ApplyOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "apply failed on memory")
	assert.Contains(t, err.Error(), "keys phase failed")
	assert.Contains(t, out.String(), "failed=1")
}

func TestApply_HostError(t *testing.T) {
	saveAndRestoreFactories(t)
	useConfig(dkimtest.NewConfigBuilder().Build())
	newHost = func(*config.Config) (host.Host, error) { return nil, errors.New("dial tcp: connection refused") }

	err := Apply(context.Background(), ApplyOptions{})
	assert.ErrorContains(t, err, "connection refused")
}

func TestApply_MetricsFile(t *testing.T) {
	saveAndRestoreFactories(t)
	f := dkimtest.NewHostFixture("Debian")
	useConfig(dkimtest.NewConfigBuilder().Build())
	useHost(f.Host)
	path := filepath.Join(t.TempDir(), "dkimctl.prom")

	require.NoError(t, Apply(context.Background(), ApplyOptions{MetricsFile: path}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `dkimctl_run_success{host="memory"} 1`)
	assert.Contains(t, string(data), `dkimctl_run_key_generated{host="memory"} 1`)
}

func TestApply_MetricsFromConfig(t *testing.T) {
	_, errOut := saveAndRestoreFactories(t)
	f := dkimtest.NewHostFixture("Debian")
	cfg := dkimtest.NewConfigBuilder().Build()
	cfg.Metrics.Textfile = filepath.Join(t.TempDir(), "missing", "dkimctl.prom")
	useConfig(cfg)
	useHost(f.Host)

	// An unwritable metrics file is logged, not fatal.
	require.NoError(t, Apply(context.Background(), ApplyOptions{}))
	assert.Contains(t, errOut.String(), "Metrics not written")
}

func TestApply_Integrations(t *testing.T) {
	saveAndRestoreFactories(t)
	f := dkimtest.NewHostFixture("Debian")
	useConfig(dkimtest.NewConfigBuilder().
		WithCloudflare("token", "").
		WithS3Backup("keys", "eu-central-1").
		Build())
	useHost(f.Host)

	dns := &dkimtest.MockDNS{}
	dns.On("LookupTXT", mock.Anything, "example.com", "mail._domainkey.example.com").Return("", false, nil)
	dns.On("UpsertTXT", mock.Anything, "example.com", "mail._domainkey.example.com", mock.Anything).Return(nil)
	newDNSPublisher = func(*config.Config) opendkim.DNSPublisher { return dns }

	store := &dkimtest.MockObjectStore{}
	store.On("Get", mock.Anything, mock.Anything).Return(nil, false, nil)
	store.On("Put", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	newObjectStore = func(context.Context, *config.Config) (opendkim.ObjectStore, error) { return store, nil }

	require.NoError(t, Apply(context.Background(), ApplyOptions{Log: logging.Options{Verbosity: 1}}))

	dns.AssertExpectations(t)
	store.AssertNumberOfCalls(t, "Put", 2)
}

func TestApply_ObjectStoreError(t *testing.T) {
	saveAndRestoreFactories(t)
	f := dkimtest.NewHostFixture("Debian")
	useConfig(dkimtest.NewConfigBuilder().WithS3Backup("keys", "eu-central-1").Build())
	useHost(f.Host)
	newObjectStore = func(context.Context, *config.Config) (opendkim.ObjectStore, error) {
		return nil, errors.New("backup bucket keys does not exist")
	}

	err := Apply(context.Background(), ApplyOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open backup store")
	assert.Empty(t, f.Host.Commands, "nothing runs when an integration cannot be opened")
}
