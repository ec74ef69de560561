// Package resource implements idempotent assertions about a host.
//
// Each [Resource] is evaluated with Check, which compares the actual state
// of the host with the desired state, and changed with Apply only when
// Check reports drift. [Converge] runs that cycle and returns the outcome as
// a [Status]. Check never mutates the host; in check mode Converge stops
// after it.
package resource

import (
	"context"
	"errors"

	"github.com/imamik/dkimctl/internal/host"
)

// Status is the outcome of converging one resource.
type Status string

const (
	// StatusOK means the host already matched the desired state.
	StatusOK Status = "ok"
	// StatusChanged means the resource was (or in check mode would be) changed.
	StatusChanged Status = "changed"
	// StatusSkipped means a guard condition made the resource a no-op.
	StatusSkipped Status = "skipped"
	// StatusFailed means Check or Apply returned an error.
	StatusFailed Status = "failed"
)

// ErrNotCreated is returned when a command succeeded but did not produce
// the path it was expected to create.
var ErrNotCreated = errors.New("command did not create expected path")

// Evaluation is the result of comparing actual and desired state.
type Evaluation struct {
	// NeedsApply is set when the host drifted from the desired state.
	NeedsApply bool
	// Skip is set when a guard made the resource a no-op.
	Skip bool
	// Quiet marks drift that must not notify handlers, such as a
	// permission change on a file whose content already matches.
	Quiet bool
	// Message describes what was found.
	Message string
}

// Resource is one idempotent assertion.
type Resource interface {
	// Kind names the resource type, such as "file" or "service".
	Kind() string
	// ID identifies the resource within its kind, usually a path or a name.
	ID() string
	// Check inspects the host without changing it.
	Check(ctx context.Context, h host.Host) (Evaluation, error)
	// Apply converges the host. It is only called after Check reported NeedsApply.
	Apply(ctx context.Context, h host.Host) error
}

// Converge checks r and applies it when needed. With check set, drift is
// reported as StatusChanged without calling Apply.
func Converge(ctx context.Context, h host.Host, r Resource, check bool) (Status, Evaluation, error) {
	ev, err := r.Check(ctx, h)
	if err != nil {
		return StatusFailed, ev, err
	}

	switch {
	case ev.Skip:
		return StatusSkipped, ev, nil
	case !ev.NeedsApply:
		return StatusOK, ev, nil
	case check:
		return StatusChanged, ev, nil
	}

	if err := ctx.Err(); err != nil {
		return StatusFailed, ev, err
	}
	if err := r.Apply(ctx, h); err != nil {
		return StatusFailed, ev, err
	}
	return StatusChanged, ev, nil
}
