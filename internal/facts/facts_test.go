package facts

import (
	"context"
	"errors"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/dkimctl/internal/host"
)

const ubuntuRelease = `PRETTY_NAME="Ubuntu 22.04.4 LTS"
NAME="Ubuntu"
VERSION_ID="22.04"
ID=ubuntu
ID_LIKE=debian
`

const centosRelease = `NAME="CentOS Linux"
VERSION="7 (Core)"
ID="centos"
ID_LIKE="rhel fedora"
VERSION_ID="7"
`

func TestFromOSRelease(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		data   string
		expect Facts
	}{
		{
			name:   "ubuntu",
			data:   ubuntuRelease,
			expect: Facts{Distribution: "Ubuntu", Family: FamilyDebian, Version: "22.04", ID: "ubuntu"},
		},
		{
			name:   "centos",
			data:   centosRelease,
			expect: Facts{Distribution: "CentOS", Family: FamilyRedHat, Version: "7", ID: "centos"},
		},
		{
			name:   "derivative via ID_LIKE",
			data:   "NAME=\"Linux Mint\"\nID=linuxmint\nID_LIKE=\"ubuntu debian\"\nVERSION_ID=21\n",
			expect: Facts{Distribution: "Linux Mint", Family: FamilyDebian, Version: "21", ID: "linuxmint"},
		},
		{
			name:   "unsupported",
			data:   "NAME=\"Alpine Linux\"\nID=alpine\nVERSION_ID=3.19.1\n",
			expect: Facts{Distribution: "Alpine Linux", Family: FamilyUnknown, Version: "3.19.1", ID: "alpine"},
		},
		{
			name:   "comments and blanks",
			data:   "# generated\n\nID=rocky\n",
			expect: Facts{Distribution: "Rocky", Family: FamilyRedHat, ID: "rocky"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := FromOSRelease(ParseOSRelease([]byte(tt.data)))
			assert.Equal(t, tt.expect, *got)
		})
	}
}

func TestFromDistribution(t *testing.T) {
	t.Parallel()
	assert.Equal(t, FamilyRedHat, FromDistribution("CentOS").Family)
	assert.Equal(t, "CentOS", FromDistribution("centos").Distribution)
	assert.Equal(t, FamilyDebian, FromDistribution("Ubuntu").Family)
	assert.Equal(t, FamilyRedHat, FromDistribution("Red Hat").Family)

	f := FromDistribution("Gentoo")
	assert.Equal(t, FamilyUnknown, f.Family)
	assert.Equal(t, "Gentoo", f.Distribution)
	assert.False(t, f.Supported())
}

func TestGather(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("reads os-release", func(t *testing.T) {
		t.Parallel()
		h := host.NewMemory()
		h.PutFile(OSReleasePath, []byte(centosRelease), 0o644, "root", "root")

		f, err := Gather(ctx, h, "")
		require.NoError(t, err)
		assert.Equal(t, "CentOS", f.Distribution)
		assert.True(t, f.Supported())
	})

	t.Run("override skips detection", func(t *testing.T) {
		t.Parallel()
		h := host.NewMemory()

		f, err := Gather(ctx, h, "Ubuntu")
		require.NoError(t, err)
		assert.Equal(t, FamilyDebian, f.Family)
		assert.Empty(t, f.Version)
	})

	t.Run("override keeps version of same family", func(t *testing.T) {
		t.Parallel()
		h := host.NewMemory()
		h.PutFile(OSReleasePath, []byte("NAME=\"Rocky Linux\"\nID=\"rocky\"\nVERSION_ID=\"9.3\"\n"), 0o644, "root", "root")

		f, err := Gather(ctx, h, "CentOS")
		require.NoError(t, err)
		assert.Equal(t, "CentOS", f.Distribution)
		assert.Equal(t, "9.3", f.Version)
	})

	t.Run("override drops version of other family", func(t *testing.T) {
		t.Parallel()
		h := host.NewMemory()
		h.PutFile(OSReleasePath, []byte(centosRelease), 0o644, "root", "root")

		f, err := Gather(ctx, h, "Ubuntu")
		require.NoError(t, err)
		assert.Equal(t, "Ubuntu", f.Distribution)
		assert.Empty(t, f.Version)
	})

	t.Run("missing os-release", func(t *testing.T) {
		t.Parallel()
		h := host.NewMemory()

		_, err := Gather(ctx, h, "")
		require.Error(t, err)
		assert.True(t, errors.Is(err, fs.ErrNotExist))
	})
}
