package provisioning

import (
	"fmt"
	"time"

	"github.com/imamik/dkimctl/internal/resource"
)

// HandlerPhase is the phase name results of flushed handlers are recorded under.
const HandlerPhase = "handlers"

// HandlerFunc performs a deferred action.
type HandlerFunc func(ctx *Context) error

// Handlers accumulates notifications during a run. It starts clean; any
// Notify makes it dirty. Flush runs each notified handler once, in
// registration order, and only the first Flush of a run does anything.
type Handlers struct {
	order   []string
	funcs   map[string]HandlerFunc
	pending map[string]bool
	flushed bool
}

// NewHandlers creates an empty, clean handler set.
func NewHandlers() *Handlers {
	return &Handlers{
		funcs:   make(map[string]HandlerFunc),
		pending: make(map[string]bool),
	}
}

// Register adds a handler. Registering a name twice replaces the function
// but keeps its original position.
func (h *Handlers) Register(name string, fn HandlerFunc) {
	if _, ok := h.funcs[name]; !ok {
		h.order = append(h.order, name)
	}
	h.funcs[name] = fn
}

// Notify marks a handler to run at flush time.
func (h *Handlers) Notify(name string) {
	h.pending[name] = true
}

// Dirty reports whether any handler is pending.
func (h *Handlers) Dirty() bool {
	return len(h.pending) > 0
}

// Pending lists the notified handlers in registration order.
func (h *Handlers) Pending() []string {
	var names []string
	for _, name := range h.order {
		if h.pending[name] {
			names = append(names, name)
		}
	}
	return names
}

// Flush runs the pending handlers. In check mode they are recorded as
// changed without running.
func (h *Handlers) Flush(ctx *Context) error {
	if h.flushed {
		return nil
	}
	h.flushed = true

	for name := range h.pending {
		if _, ok := h.funcs[name]; !ok {
			return fmt.Errorf("notified handler %q is not registered", name)
		}
	}

	names := h.Pending()
	clear(h.pending)

	for _, name := range names {
		start := time.Now()
		var err error
		if !ctx.Check {
			err = h.funcs[name](ctx)
		}

		status, msg := resource.StatusChanged, "notified"
		if err != nil {
			status = resource.StatusFailed
		}
		ctx.Results.Add(Result{
			Phase:    HandlerPhase,
			Kind:     "handler",
			Resource: name,
			Status:   status,
			Message:  msg,
			Duration: time.Since(start),
			Err:      err,
		})
		LogResource(ctx.Observer, HandlerPhase, "handler", name, status, msg, err)

		if err != nil {
			return fmt.Errorf("handler %q failed: %w", name, err)
		}
	}
	return nil
}
