package uow

import (
	"context"
	"sync"

	domainbooking "bookingengine/internal/domain/booking"
	domainresource "bookingengine/internal/domain/resource"
)

// UnitOfWork coordinates repositories inside a transaction boundary.
type UnitOfWork interface {
	Resources() domainresource.Repository
	Bookings() domainbooking.Repository

	// AfterCommit queues fn to run once Commit has succeeded. Rolled back
	// units drop their queued callbacks.
	AfterCommit(fn func(ctx context.Context))

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// UoWFactory starts unit of work instances.
type UoWFactory interface {
	Begin(ctx context.Context, opts TxOptions) (UnitOfWork, error)
}

// TxOptions configure transaction boundaries.
type TxOptions struct {
	ReadOnly bool
}

// Hooks is embedded by store units to implement AfterCommit.
type Hooks struct {
	mu      sync.Mutex
	pending []func(ctx context.Context)
}

func (h *Hooks) AfterCommit(fn func(ctx context.Context)) {
	if fn == nil {
		return
	}
	h.mu.Lock()
	h.pending = append(h.pending, fn)
	h.mu.Unlock()
}

// RunCommitted runs and clears the queued callbacks.
func (h *Hooks) RunCommitted(ctx context.Context) {
	for _, fn := range h.take() {
		fn(ctx)
	}
}

// Discard drops the queued callbacks.
func (h *Hooks) Discard() {
	h.take()
}

func (h *Hooks) take() []func(ctx context.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := h.pending
	h.pending = nil
	return out
}
