// Package mocks holds testify mocks and fakes for the application ports.
package mocks

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"bookingengine/internal/app/outbox"
	"bookingengine/internal/app/uow"
	domainbooking "bookingengine/internal/domain/booking"
	domainresource "bookingengine/internal/domain/resource"
)

type ResourceRepository struct {
	mock.Mock
}

func (m *ResourceRepository) ByID(ctx context.Context, id domainresource.ID) (*domainresource.Resource, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domainresource.Resource), args.Error(1)
}

func (m *ResourceRepository) Save(ctx context.Context, r *domainresource.Resource) error {
	return m.Called(ctx, r).Error(0)
}

func (m *ResourceRepository) List(ctx context.Context) ([]*domainresource.Resource, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domainresource.Resource), args.Error(1)
}

type BookingRepository struct {
	mock.Mock
}

func (m *BookingRepository) ByID(ctx context.Context, id domainbooking.ID) (*domainbooking.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domainbooking.Booking), args.Error(1)
}

func (m *BookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	return m.Called(ctx, b).Error(0)
}

func (m *BookingRepository) CountForSlot(ctx context.Context, key domainbooking.SlotKey) (int, error) {
	args := m.Called(ctx, key)
	return args.Int(0), args.Error(1)
}

func (m *BookingRepository) ReserveSlot(ctx context.Context, key domainbooking.SlotKey, maxBookings int) error {
	return m.Called(ctx, key, maxBookings).Error(0)
}

func (m *BookingRepository) ReleaseSlot(ctx context.Context, key domainbooking.SlotKey) error {
	return m.Called(ctx, key).Error(0)
}

type Notifier struct {
	mock.Mock
}

func (m *Notifier) Notify(ctx context.Context, channel, event string, payload any) error {
	return m.Called(ctx, channel, event, payload).Error(0)
}

// Unit is a unit of work over the mocked repositories.
type Unit struct {
	uow.Hooks
	ResourcesRepo *ResourceRepository
	BookingsRepo  *BookingRepository
	Committed     bool
	RolledBack    bool
}

func (u *Unit) Resources() domainresource.Repository { return u.ResourcesRepo }
func (u *Unit) Bookings() domainbooking.Repository   { return u.BookingsRepo }

func (u *Unit) Commit(ctx context.Context) error {
	u.Committed = true
	u.RunCommitted(ctx)
	return nil
}

func (u *Unit) Rollback(context.Context) error {
	u.RolledBack = true
	u.Discard()
	return nil
}

// Factory hands out the same Unit on every Begin.
type Factory struct {
	Unit   *Unit
	Begins int
}

func NewFactory() *Factory {
	return &Factory{Unit: &Unit{ResourcesRepo: &ResourceRepository{}, BookingsRepo: &BookingRepository{}}}
}

func (f *Factory) Begin(context.Context, uow.TxOptions) (uow.UnitOfWork, error) {
	f.Begins++
	return f.Unit, nil
}

// Outbox captures records in memory.
type Outbox struct {
	mu      sync.Mutex
	Records []outbox.EventRecord
	Flushes int
}

func (o *Outbox) Add(_ context.Context, rec outbox.EventRecord) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.Records = append(o.Records, rec)
	return nil
}

func (o *Outbox) Flush(context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.Flushes++
	return nil
}

func (o *Outbox) Names() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]string, 0, len(o.Records))
	for _, r := range o.Records {
		out = append(out, r.Name)
	}
	return out
}

var (
	_ domainresource.Repository = (*ResourceRepository)(nil)
	_ domainbooking.Repository  = (*BookingRepository)(nil)
	_ uow.UoWFactory            = (*Factory)(nil)
	_ outbox.Outbox             = (*Outbox)(nil)
)
