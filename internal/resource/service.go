package resource

import (
	"context"
	"fmt"

	"github.com/imamik/dkimctl/internal/host"
)

const systemctl = "systemctl"

// Service asserts the state of a systemd unit.
type Service struct {
	Name    string
	Running bool
	Enabled bool

	active  bool
	enabled bool
}

// Kind implements Resource.
func (s *Service) Kind() string { return "service" }

// ID implements Resource.
func (s *Service) ID() string { return s.Name }

// Check implements Resource.
func (s *Service) Check(ctx context.Context, h host.Host) (Evaluation, error) {
	var err error
	if s.active, err = probe(ctx, h, "is-active", s.Name); err != nil {
		return Evaluation{}, err
	}
	if s.enabled, err = probe(ctx, h, "is-enabled", s.Name); err != nil {
		return Evaluation{}, err
	}

	msg := fmt.Sprintf("active=%t enabled=%t", s.active, s.enabled)
	needs := (s.Running && !s.active) || (s.Enabled && !s.enabled)
	return Evaluation{NeedsApply: needs, Message: msg}, nil
}

// Apply implements Resource.
func (s *Service) Apply(ctx context.Context, h host.Host) error {
	if s.Running && !s.active {
		if _, err := h.Run(ctx, systemctl, "start", s.Name); err != nil {
			return fmt.Errorf("failed to start %s: %w", s.Name, err)
		}
	}
	if s.Enabled && !s.enabled {
		if _, err := h.Run(ctx, systemctl, "enable", s.Name); err != nil {
			return fmt.Errorf("failed to enable %s: %w", s.Name, err)
		}
	}
	return nil
}

// Restart restarts a systemd unit.
func Restart(ctx context.Context, h host.Host, name string) error {
	if _, err := h.Run(ctx, systemctl, "restart", name); err != nil {
		return fmt.Errorf("failed to restart %s: %w", name, err)
	}
	return nil
}

// probe runs a read-only systemctl query. A non-zero exit status means
// false; failing to run systemctl at all is an error.
func probe(ctx context.Context, h host.Host, verb, name string) (bool, error) {
	_, err := h.Run(ctx, systemctl, verb, "--quiet", name)
	if err == nil {
		return true, nil
	}
	if code := host.ExitCode(err); code > 0 && code != 127 {
		return false, nil
	}
	return false, fmt.Errorf("systemctl %s %s: %w", verb, name, err)
}
