package memory

import (
	"context"
	"sort"
	"sync"

	domainbooking "bookingengine/internal/domain/booking"
	domainresource "bookingengine/internal/domain/resource"
)

// ResourceRepository is an in-memory resource catalogue. It hands out copies
// so callers never share rule values.
type ResourceRepository struct {
	mu    sync.RWMutex
	items map[domainresource.ID]domainresource.Resource
}

func NewResourceRepository(seed ...*domainresource.Resource) *ResourceRepository {
	r := &ResourceRepository{items: make(map[domainresource.ID]domainresource.Resource)}
	for _, res := range seed {
		r.items[res.ID] = *res
	}
	return r
}

func (r *ResourceRepository) ByID(ctx context.Context, id domainresource.ID) (*domainresource.Resource, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res, ok := r.items[id]
	if !ok {
		return nil, domainresource.ErrNotFound
	}
	return &res, nil
}

func (r *ResourceRepository) Save(ctx context.Context, res *domainresource.Resource) error {
	if err := res.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[res.ID] = *res
	return nil
}

func (r *ResourceRepository) List(ctx context.Context) ([]*domainresource.Resource, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domainresource.Resource, 0, len(r.items))
	for _, res := range r.items {
		out = append(out, &res)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// BookingRepository stores bookings and per-slot capacity counters in memory.
type BookingRepository struct {
	mu    sync.RWMutex
	items map[domainbooking.ID]*domainbooking.Booking
	slots map[domainbooking.SlotKey]int
}

func NewBookingRepository() *BookingRepository {
	return &BookingRepository{
		items: make(map[domainbooking.ID]*domainbooking.Booking),
		slots: make(map[domainbooking.SlotKey]int),
	}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.ID) (*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.items[id]
	if !ok {
		return nil, domainbooking.ErrNotFound
	}
	return clone(b), nil
}

// Save stores the booking state. Versions guard against lost updates.
func (r *BookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if current, ok := r.items[b.ID]; ok {
		if b.Version == 0 {
			return domainbooking.ErrDuplicate
		}
		if current.Version != b.Version {
			return domainbooking.ErrConcurrentModified
		}
	}
	b.Version++
	r.items[b.ID] = clone(b)
	return nil
}

func (r *BookingRepository) CountForSlot(ctx context.Context, key domainbooking.SlotKey) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.slots[key], nil
}

func (r *BookingRepository) ReserveSlot(ctx context.Context, key domainbooking.SlotKey, maxBookings int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.slots[key] >= maxBookings {
		return domainbooking.ErrCapacityExhausted
	}
	r.slots[key]++
	return nil
}

func (r *BookingRepository) ReleaseSlot(ctx context.Context, key domainbooking.SlotKey) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.slots[key] <= 1 {
		delete(r.slots, key)
		return nil
	}
	r.slots[key]--
	return nil
}

func (r *BookingRepository) snapshot(id domainbooking.ID) (*domainbooking.Booking, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.items[id]
	if !ok {
		return nil, false
	}
	return clone(b), true
}

func (r *BookingRepository) restore(id domainbooking.ID, prev *domainbooking.Booking) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if prev == nil {
		delete(r.items, id)
		return
	}
	r.items[id] = prev
}

// unreserve puts back a released unit without checking capacity.
func (r *BookingRepository) unreserve(key domainbooking.SlotKey) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.slots[key]++
}

func clone(b *domainbooking.Booking) *domainbooking.Booking {
	cp := *b
	cp.Price = b.Price.Copy()
	cp.ClearEvents()
	return &cp
}

var (
	_ domainresource.Repository = (*ResourceRepository)(nil)
	_ domainbooking.Repository  = (*BookingRepository)(nil)
)
