package resource

import (
	"context"
	"fmt"
	"strings"

	"github.com/imamik/dkimctl/internal/host"
)

// Command runs an external program unless Creates already exists.
type Command struct {
	Argv []string
	// Creates is the guard path. When it exists the command is skipped;
	// after a successful run it must exist.
	Creates string
	// Run replaces the external program when set. It is used for work done
	// in-process that is still guarded by Creates.
	Run func(ctx context.Context, h host.Host) error
	// Name overrides the resource ID.
	Name string
}

// Kind implements Resource.
func (c *Command) Kind() string { return "command" }

// ID implements Resource.
func (c *Command) ID() string {
	if c.Name != "" {
		return c.Name
	}
	return strings.Join(c.Argv, " ")
}

// Check implements Resource.
func (c *Command) Check(ctx context.Context, h host.Host) (Evaluation, error) {
	if c.Creates == "" {
		return Evaluation{NeedsApply: true}, nil
	}
	exists, err := host.Exists(ctx, h, c.Creates)
	if err != nil {
		return Evaluation{}, err
	}
	if exists {
		return Evaluation{Skip: true, Message: c.Creates + " exists"}, nil
	}
	return Evaluation{NeedsApply: true, Message: c.Creates + " absent"}, nil
}

// Apply implements Resource.
func (c *Command) Apply(ctx context.Context, h host.Host) error {
	if c.Run != nil {
		if err := c.Run(ctx, h); err != nil {
			return err
		}
	} else {
		if len(c.Argv) == 0 {
			return fmt.Errorf("command %q has no arguments", c.Name)
		}
		if _, err := h.Run(ctx, c.Argv[0], c.Argv[1:]...); err != nil {
			return fmt.Errorf("%s failed: %w", c.Argv[0], err)
		}
	}

	if c.Creates == "" {
		return nil
	}
	exists, err := host.Exists(ctx, h, c.Creates)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %s", ErrNotCreated, c.Creates)
	}
	return nil
}
