package resource

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"bookingengine/internal/domain/availability"
	"bookingengine/internal/domain/cancellation"
	"bookingengine/internal/domain/pricing"
)

var (
	ErrNotFound        = errors.New("resource: not found")
	ErrIDRequired      = errors.New("resource: id is required")
	ErrOwnerRequired   = errors.New("resource: owner id is required")
	ErrUnknownType     = errors.New("resource: unknown resource type")
	ErrInvalidCapacity = errors.New("resource: max bookings per slot must be at least 1")
)

type ID string

type Type string

const (
	TypeProperty Type = "property"
	TypeService  Type = "service"
	TypeLeisure  Type = "leisure"
)

func ParseType(raw string) (Type, error) {
	switch t := Type(strings.ToLower(strings.TrimSpace(raw))); t {
	case TypeProperty, TypeService, TypeLeisure:
		return t, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownType, raw)
	}
}

// Resource is the bookable listing together with the rules the engine
// evaluates for it. Rules are value objects and are never mutated by a booking.
type Resource struct {
	ID           ID
	Type         Type
	OwnerID      string
	Title        string
	Availability availability.Config
	Pricing      pricing.Rule
	Policy       cancellation.Policy
	MaxBookings  int
	SlotLength   time.Duration
}

func (r *Resource) Validate() error {
	if strings.TrimSpace(string(r.ID)) == "" {
		return ErrIDRequired
	}
	if strings.TrimSpace(r.OwnerID) == "" {
		return ErrOwnerRequired
	}
	if _, err := ParseType(string(r.Type)); err != nil {
		return err
	}
	if r.MaxBookings < 1 {
		return ErrInvalidCapacity
	}
	if err := r.Availability.Validate(); err != nil {
		return err
	}
	if err := r.Pricing.Validate(); err != nil {
		return err
	}
	if !r.Pricing.BasePrice.IsPositive() {
		return pricing.ErrInvalidBasePrice
	}
	return r.Policy.Validate()
}

type Repository interface {
	ByID(ctx context.Context, id ID) (*Resource, error)
	Save(ctx context.Context, resource *Resource) error
	List(ctx context.Context) ([]*Resource, error)
}
