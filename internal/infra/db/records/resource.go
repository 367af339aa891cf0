package records

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	domainavailability "bookingengine/internal/domain/availability"
	domainpricing "bookingengine/internal/domain/pricing"
	domainresource "bookingengine/internal/domain/resource"
	"bookingengine/internal/domain/shared/daterange"
)

type Window struct {
	Start string `bson:"start" json:"start"`
	End   string `bson:"end" json:"end"`
}

type Availability struct {
	Kind       string            `bson:"kind" json:"kind"`
	Weekly     map[string]Window `bson:"weekly,omitempty" json:"weekly,omitempty"`
	RangeStart string            `bson:"range_start,omitempty" json:"range_start,omitempty"`
	RangeEnd   string            `bson:"range_end,omitempty" json:"range_end,omitempty"`
	Custom     map[string]Window `bson:"custom,omitempty" json:"custom,omitempty"`
}

type Pricing struct {
	Mode               string `bson:"mode" json:"mode"`
	BasePrice          Money  `bson:"base_price" json:"base_price"`
	MinParticipants    int    `bson:"min_participants" json:"min_participants"`
	MaxParticipants    int    `bson:"max_participants" json:"max_participants"`
	DiscountThreshold  int    `bson:"discount_threshold,omitempty" json:"discount_threshold,omitempty"`
	DiscountPercentage string `bson:"discount_percentage,omitempty" json:"discount_percentage,omitempty"`
}

type Resource struct {
	ID           string       `bson:"_id" json:"id"`
	Type         string       `bson:"type" json:"type"`
	OwnerID      string       `bson:"owner_id" json:"owner_id"`
	Title        string       `bson:"title" json:"title"`
	Availability Availability `bson:"availability" json:"availability"`
	Pricing      Pricing      `bson:"pricing" json:"pricing"`
	Policy       Policy       `bson:"policy" json:"policy"`
	MaxBookings  int          `bson:"max_bookings" json:"max_bookings"`
	SlotMinutes  int          `bson:"slot_minutes" json:"slot_minutes"`
}

func FromResource(r *domainresource.Resource) Resource {
	return Resource{
		ID:           string(r.ID),
		Type:         string(r.Type),
		OwnerID:      r.OwnerID,
		Title:        r.Title,
		Availability: FromAvailability(r.Availability),
		Pricing:      FromPricing(r.Pricing),
		Policy:       FromPolicy(r.Policy),
		MaxBookings:  r.MaxBookings,
		SlotMinutes:  int(r.SlotLength / time.Minute),
	}
}

func (r Resource) ToDomain() (*domainresource.Resource, error) {
	avail, err := r.Availability.ToDomain()
	if err != nil {
		return nil, fmt.Errorf("resource %s availability: %w", r.ID, err)
	}
	rule, err := r.Pricing.ToDomain()
	if err != nil {
		return nil, fmt.Errorf("resource %s pricing: %w", r.ID, err)
	}
	policy, err := r.Policy.ToDomain()
	if err != nil {
		return nil, fmt.Errorf("resource %s policy: %w", r.ID, err)
	}
	return &domainresource.Resource{
		ID:           domainresource.ID(r.ID),
		Type:         domainresource.Type(r.Type),
		OwnerID:      r.OwnerID,
		Title:        r.Title,
		Availability: avail,
		Pricing:      rule,
		Policy:       policy,
		MaxBookings:  r.MaxBookings,
		SlotLength:   time.Duration(r.SlotMinutes) * time.Minute,
	}, nil
}

func window(d domainavailability.DaySchedule) Window {
	return Window{Start: d.Start.String(), End: d.End.String()}
}

func (w Window) toDomain() (domainavailability.DaySchedule, error) {
	start, err := domainavailability.ParseTimeOfDay(w.Start)
	if err != nil {
		return domainavailability.DaySchedule{}, err
	}
	end, err := domainavailability.ParseTimeOfDay(w.End)
	if err != nil {
		return domainavailability.DaySchedule{}, err
	}
	return domainavailability.DaySchedule{Start: start, End: end}, nil
}

func FromAvailability(c domainavailability.Config) Availability {
	out := Availability{Kind: string(c.Kind)}
	switch c.Kind {
	case domainavailability.KindWeeklySchedule:
		out.Weekly = make(map[string]Window, len(c.Weekly))
		days := make([]time.Weekday, 0, len(c.Weekly))
		for d := range c.Weekly {
			days = append(days, d)
		}
		sort.Slice(days, func(i, j int) bool { return days[i] < days[j] })
		for _, d := range days {
			out.Weekly[d.String()] = window(c.Weekly[d])
		}
	case domainavailability.KindDateRange:
		out.RangeStart = daterange.FormatDay(c.Range.Start)
		out.RangeEnd = daterange.FormatDay(c.Range.End)
	case domainavailability.KindCustom:
		out.Custom = make(map[string]Window, len(c.Custom))
		for date, w := range c.Custom {
			out.Custom[date] = window(w)
		}
	}
	return out
}

func (a Availability) ToDomain() (domainavailability.Config, error) {
	kind, err := domainavailability.ParseKind(a.Kind)
	if err != nil {
		return domainavailability.Config{}, err
	}
	switch kind {
	case domainavailability.KindWeeklySchedule:
		days := make(map[time.Weekday]domainavailability.DaySchedule, len(a.Weekly))
		for name, w := range a.Weekly {
			day, err := domainavailability.ParseWeekday(name)
			if err != nil {
				return domainavailability.Config{}, err
			}
			if days[day], err = w.toDomain(); err != nil {
				return domainavailability.Config{}, err
			}
		}
		return domainavailability.Weekly(days), nil
	case domainavailability.KindDateRange:
		dr, err := daterange.Parse(a.RangeStart, a.RangeEnd)
		if err != nil {
			return domainavailability.Config{}, err
		}
		return domainavailability.Between(dr), nil
	case domainavailability.KindCustom:
		days := make(map[string]domainavailability.DaySchedule, len(a.Custom))
		for date, w := range a.Custom {
			if days[date], err = w.toDomain(); err != nil {
				return domainavailability.Config{}, err
			}
		}
		return domainavailability.CustomDates(days), nil
	default:
		return domainavailability.Always(), nil
	}
}

func FromPricing(r domainpricing.Rule) Pricing {
	out := Pricing{
		Mode:            string(r.Mode),
		BasePrice:       FromMoney(r.BasePrice),
		MinParticipants: r.MinParticipants,
		MaxParticipants: r.MaxParticipants,
	}
	if gd := r.GroupDiscount; gd != nil {
		out.DiscountThreshold = gd.ThresholdParticipants
		out.DiscountPercentage = gd.Percentage.String()
	}
	return out
}

func (p Pricing) ToDomain() (domainpricing.Rule, error) {
	mode, err := domainpricing.ParseMode(p.Mode)
	if err != nil {
		return domainpricing.Rule{}, err
	}
	base, err := p.BasePrice.ToDomain()
	if err != nil {
		return domainpricing.Rule{}, err
	}
	rule := domainpricing.Rule{
		Mode:            mode,
		BasePrice:       base,
		MinParticipants: p.MinParticipants,
		MaxParticipants: p.MaxParticipants,
	}
	if p.DiscountPercentage != "" {
		pct, err := decimal.NewFromString(p.DiscountPercentage)
		if err != nil {
			return domainpricing.Rule{}, err
		}
		rule.GroupDiscount = &domainpricing.GroupDiscount{ThresholdParticipants: p.DiscountThreshold, Percentage: pct}
	}
	return rule, nil
}

