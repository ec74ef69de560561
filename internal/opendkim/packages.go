package opendkim

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/imamik/dkimctl/internal/facts"
	"github.com/imamik/dkimctl/internal/provisioning"
	"github.com/imamik/dkimctl/internal/resource"
)

// Procedure is the package setup for one distribution family.
type Procedure struct {
	Family   facts.Family
	Packages []*resource.Package
}

// Dispatch selects the package setup procedure for f.
func Dispatch(f *facts.Facts) (*Procedure, error) {
	switch f.Family {
	case facts.FamilyDebian:
		return &Procedure{
			Family: f.Family,
			Packages: []*resource.Package{
				{Names: []string{"opendkim", "opendkim-tools"}, Manager: resource.Apt{}},
			},
		}, nil
	case facts.FamilyRedHat:
		return &Procedure{
			Family: f.Family,
			Packages: []*resource.Package{
				{Names: []string{"epel-release"}, Manager: resource.Yum{}},
				{Names: elPackages(f), Manager: resource.Yum{}},
			},
		}, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedDistribution, f.Distribution)
}

// elPackages lists the OpenDKIM packages for an EL release. EPEL split
// opendkim-genkey into opendkim-tools starting with EL 8, so only a known
// release below 8 gets the single package.
func elPackages(f *facts.Facts) []string {
	if f.ID == "fedora" {
		return []string{"opendkim", "opendkim-tools"}
	}
	major, err := strconv.Atoi(strings.SplitN(f.Version, ".", 2)[0])
	if err == nil && major < 8 {
		return []string{"opendkim"}
	}
	return []string{"opendkim", "opendkim-tools"}
}

// PackagesPhase installs the OpenDKIM packages.
type PackagesPhase struct{}

// Name implements provisioning.Phase.
func (p *PackagesPhase) Name() string { return "packages" }

// Provision implements provisioning.Phase.
func (p *PackagesPhase) Provision(ctx *provisioning.Context) error {
	proc, err := Dispatch(ctx.Facts)
	if err != nil {
		provisioning.LogPhaseSkipped(ctx.Observer, p.Name(), err.Error())
		return nil
	}

	for _, pkg := range proc.Packages {
		if _, err := ctx.Ensure(p.Name(), pkg); err != nil {
			return err
		}
	}
	return nil
}
