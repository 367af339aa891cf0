package memory

import (
	"context"
	"errors"
	"sync"

	"bookingengine/internal/app/uow"
	domainbooking "bookingengine/internal/domain/booking"
	domainresource "bookingengine/internal/domain/resource"
)

// Factory wires in-memory repositories into a unit-of-work boundary.
type Factory struct {
	ResourcesRepo *ResourceRepository
	BookingsRepo  *BookingRepository
}

// ErrFactoryMisconfigured indicates missing repositories.
var ErrFactoryMisconfigured = errors.New("memory: unit of work factory misconfigured")

// Begin starts a journaled unit. Writes apply immediately and are undone on
// rollback; other units can observe them in between.
func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.ResourcesRepo == nil || f.BookingsRepo == nil {
		return nil, ErrFactoryMisconfigured
	}
	u := &Unit{resources: f.ResourcesRepo}
	u.bookings = &journaledBookings{BookingRepository: f.BookingsRepo, unit: u}
	return u, nil
}

// Unit is a uow.UnitOfWork backed by in-memory stores.
type Unit struct {
	uow.Hooks

	resources *ResourceRepository
	bookings  *journaledBookings

	mu   sync.Mutex
	undo []func()
}

func (u *Unit) Resources() domainresource.Repository {
	return u.resources
}

func (u *Unit) Bookings() domainbooking.Repository {
	return u.bookings
}

func (u *Unit) Commit(ctx context.Context) error {
	u.mu.Lock()
	u.undo = nil
	u.mu.Unlock()
	u.RunCommitted(ctx)
	return nil
}

func (u *Unit) Rollback(ctx context.Context) error {
	u.mu.Lock()
	undo := u.undo
	u.undo = nil
	u.mu.Unlock()
	for i := len(undo) - 1; i >= 0; i-- {
		undo[i]()
	}
	u.Discard()
	return nil
}

func (u *Unit) journal(fn func()) {
	u.mu.Lock()
	u.undo = append(u.undo, fn)
	u.mu.Unlock()
}

type journaledBookings struct {
	*BookingRepository
	unit *Unit
}

func (j *journaledBookings) Save(ctx context.Context, b *domainbooking.Booking) error {
	prev, _ := j.snapshot(b.ID)
	if err := j.BookingRepository.Save(ctx, b); err != nil {
		return err
	}
	j.unit.journal(func() { j.restore(b.ID, prev) })
	return nil
}

func (j *journaledBookings) ReserveSlot(ctx context.Context, key domainbooking.SlotKey, maxBookings int) error {
	if err := j.BookingRepository.ReserveSlot(ctx, key, maxBookings); err != nil {
		return err
	}
	j.unit.journal(func() { _ = j.BookingRepository.ReleaseSlot(context.Background(), key) })
	return nil
}

func (j *journaledBookings) ReleaseSlot(ctx context.Context, key domainbooking.SlotKey) error {
	held, _ := j.CountForSlot(ctx, key)
	if err := j.BookingRepository.ReleaseSlot(ctx, key); err != nil {
		return err
	}
	if held > 0 {
		j.unit.journal(func() { j.unreserve(key) })
	}
	return nil
}

var _ uow.UoWFactory = Factory{}
