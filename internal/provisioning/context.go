package provisioning

import (
	"context"
	"time"

	"github.com/imamik/dkimctl/internal/config"
	"github.com/imamik/dkimctl/internal/facts"
	"github.com/imamik/dkimctl/internal/host"
	"github.com/imamik/dkimctl/internal/resource"
)

// State holds values produced by one phase for later phases.
type State struct {
	// KeyGenerated is set when the signing key was created during this run.
	KeyGenerated bool
	// Fingerprint is the SHA256 fingerprint of a natively generated key.
	Fingerprint string
}

// Context wraps all dependencies and state needed for a provisioning phase.
type Context struct {
	context.Context
	Config   *config.Config
	Host     host.Host
	Facts    *facts.Facts
	State    *State
	Observer Observer
	Handlers *Handlers
	Results  *Results

	// Check evaluates every resource without changing the host.
	Check bool
}

// NewContext creates a new provisioning context.
func NewContext(ctx context.Context, cfg *config.Config, h host.Host, observer Observer) *Context {
	return &Context{
		Context:  ctx,
		Config:   cfg,
		Host:     h,
		State:    &State{},
		Observer: observer,
		Handlers: NewHandlers(),
		Results:  NewResults(),
	}
}

// Ensure converges r on the host, records the result under phase and
// notifies the named handlers when r changed. Quiet drift does not notify.
func (c *Context) Ensure(phase string, r resource.Resource, notify ...string) (resource.Status, error) {
	start := time.Now()
	status, ev, err := resource.Converge(c, c.Host, r, c.Check)

	c.Results.Add(Result{
		Phase:    phase,
		Kind:     r.Kind(),
		Resource: r.ID(),
		Status:   status,
		Message:  ev.Message,
		Duration: time.Since(start),
		Err:      err,
	})
	LogResource(c.Observer, phase, r.Kind(), r.ID(), status, ev.Message, err)

	if err != nil {
		return status, err
	}
	if status == resource.StatusChanged && !ev.Quiet {
		for _, name := range notify {
			c.Handlers.Notify(name)
		}
	}
	return status, nil
}
