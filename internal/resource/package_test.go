package resource

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dkimtest "github.com/imamik/dkimctl/internal/testing"
)

func TestPackage_Apt(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := dkimtest.NewHostFixture("Ubuntu")
	f.Packages["opendkim"] = true
	p := &Package{Names: []string{"opendkim", "opendkim-tools"}, Manager: Apt{}}

	status, ev, err := Converge(ctx, f.Host, p, false)
	require.NoError(t, err)
	assert.Equal(t, StatusChanged, status)
	assert.Equal(t, "missing opendkim-tools", ev.Message)
	assert.Equal(t, [][]string{{"apt-get", "opendkim-tools"}}, f.Installs)
	assert.True(t, f.Host.Ran("env"))

	status, _, err = Converge(ctx, f.Host, p, false)
	require.NoError(t, err)
	assert.Equal(t, StatusOK, status)
}

func TestPackage_Yum(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := dkimtest.NewHostFixture("CentOS")

	status, _, err := Converge(ctx, f.Host, &Package{Names: []string{"epel-release"}, Manager: Yum{}}, false)
	require.NoError(t, err)
	assert.Equal(t, StatusChanged, status)
	assert.Equal(t, [][]string{{"yum", "epel-release"}}, f.Installs)
	assert.True(t, f.Packages["epel-release"])
}

func TestPackage_CheckMode(t *testing.T) {
	t.Parallel()
	f := dkimtest.NewHostFixture("CentOS")

	status, _, err := Converge(context.Background(), f.Host, &Package{Names: []string{"opendkim"}, Manager: Yum{}}, true)
	require.NoError(t, err)
	assert.Equal(t, StatusChanged, status)
	assert.Empty(t, f.Installs)
	assert.False(t, f.Host.Ran("yum"))
}
