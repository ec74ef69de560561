package resource

import (
	"context"
	"fmt"
	"strings"

	"github.com/imamik/dkimctl/internal/host"
)

// PackageManager installs distribution packages.
type PackageManager interface {
	Name() string
	// Installed reports whether pkg is installed. It must not change the host.
	Installed(ctx context.Context, h host.Host, pkg string) (bool, error)
	Install(ctx context.Context, h host.Host, pkgs ...string) error
}

// Apt manages packages on Debian-family hosts.
type Apt struct{}

// Name implements PackageManager.
func (Apt) Name() string { return "apt" }

// Installed implements PackageManager.
func (Apt) Installed(ctx context.Context, h host.Host, pkg string) (bool, error) {
	out, err := h.Run(ctx, "dpkg-query", "-W", "-f=${Status}", pkg)
	if err != nil {
		if host.ExitCode(err) == 1 {
			return false, nil
		}
		return false, fmt.Errorf("dpkg-query %s: %w", pkg, err)
	}
	return strings.Contains(out, "install ok installed"), nil
}

// Install implements PackageManager.
func (Apt) Install(ctx context.Context, h host.Host, pkgs ...string) error {
	if _, err := h.Run(ctx, "apt-get", "update", "-q"); err != nil {
		return fmt.Errorf("apt-get update: %w", err)
	}
	args := append([]string{"DEBIAN_FRONTEND=noninteractive", "apt-get", "install", "-y", "-q"}, pkgs...)
	if _, err := h.Run(ctx, "env", args...); err != nil {
		return fmt.Errorf("apt-get install %s: %w", strings.Join(pkgs, " "), err)
	}
	return nil
}

// Yum manages packages on EL-family hosts.
type Yum struct{}

// Name implements PackageManager.
func (Yum) Name() string { return "yum" }

// Installed implements PackageManager.
func (Yum) Installed(ctx context.Context, h host.Host, pkg string) (bool, error) {
	_, err := h.Run(ctx, "rpm", "-q", pkg)
	if err == nil {
		return true, nil
	}
	if host.ExitCode(err) > 0 && host.ExitCode(err) != 127 {
		return false, nil
	}
	return false, fmt.Errorf("rpm -q %s: %w", pkg, err)
}

// Install implements PackageManager.
func (Yum) Install(ctx context.Context, h host.Host, pkgs ...string) error {
	args := append([]string{"install", "-y"}, pkgs...)
	if _, err := h.Run(ctx, "yum", args...); err != nil {
		return fmt.Errorf("yum install %s: %w", strings.Join(pkgs, " "), err)
	}
	return nil
}

// Package asserts that a set of packages is installed.
type Package struct {
	Names   []string
	Manager PackageManager

	missing []string
}

// Kind implements Resource.
func (p *Package) Kind() string { return "package" }

// ID implements Resource.
func (p *Package) ID() string { return strings.Join(p.Names, ",") }

// Check implements Resource.
func (p *Package) Check(ctx context.Context, h host.Host) (Evaluation, error) {
	p.missing = p.missing[:0]
	for _, name := range p.Names {
		ok, err := p.Manager.Installed(ctx, h, name)
		if err != nil {
			return Evaluation{}, err
		}
		if !ok {
			p.missing = append(p.missing, name)
		}
	}
	if len(p.missing) == 0 {
		return Evaluation{Message: "installed"}, nil
	}
	return Evaluation{NeedsApply: true, Message: "missing " + strings.Join(p.missing, ", ")}, nil
}

// Apply implements Resource.
func (p *Package) Apply(ctx context.Context, h host.Host) error {
	return p.Manager.Install(ctx, h, p.missing...)
}
