package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	domainavailability "bookingengine/internal/domain/availability"
	"bookingengine/internal/domain/cancellation"
	domainpricing "bookingengine/internal/domain/pricing"
	domainresource "bookingengine/internal/domain/resource"
	"bookingengine/internal/domain/shared/daterange"
	"bookingengine/internal/domain/shared/money"
)

type resourcesFile struct {
	Resources []resourceSpec `yaml:"resources"`
}

type resourceSpec struct {
	ID           string           `yaml:"id"`
	Type         string           `yaml:"type"`
	OwnerID      string           `yaml:"owner_id"`
	Title        string           `yaml:"title"`
	MaxBookings  int              `yaml:"max_bookings"`
	SlotMinutes  int              `yaml:"slot_minutes"`
	Availability availabilitySpec `yaml:"availability"`
	Pricing      pricingSpec      `yaml:"pricing"`
	Cancellation cancellationSpec `yaml:"cancellation"`
}

type windowSpec struct {
	Start string `yaml:"start"`
	End   string `yaml:"end"`
}

type availabilitySpec struct {
	Kind   string                `yaml:"kind"`
	Weekly map[string]windowSpec `yaml:"weekly"`
	Range  windowSpec            `yaml:"range"`
	Custom map[string]windowSpec `yaml:"custom"`
}

type pricingSpec struct {
	Mode            string        `yaml:"mode"`
	BasePrice       string        `yaml:"base_price"`
	Currency        string        `yaml:"currency"`
	MinParticipants int           `yaml:"min_participants"`
	MaxParticipants int           `yaml:"max_participants"`
	GroupDiscount   *discountSpec `yaml:"group_discount"`
}

type discountSpec struct {
	Threshold  int    `yaml:"threshold"`
	Percentage string `yaml:"percentage"`
}

type cancellationSpec struct {
	Policy           string  `yaml:"policy"`
	RefundPercentage string  `yaml:"refund_percentage"`
	CutoffHours      float64 `yaml:"cutoff_hours"`
}

// LoadResources reads resource fixtures from a YAML file.
func LoadResources(path string) ([]*domainresource.Resource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read resources: %w", err)
	}
	return ParseResources(data)
}

// ParseResources decodes and validates resource fixtures. Ids must be unique.
func ParseResources(data []byte) ([]*domainresource.Resource, error) {
	var file resourcesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse resources: %w", err)
	}
	seen := make(map[string]struct{}, len(file.Resources))
	out := make([]*domainresource.Resource, 0, len(file.Resources))
	for i, entry := range file.Resources {
		res, err := entry.toResource()
		if err != nil {
			return nil, fmt.Errorf("resource #%d (%s): %w", i+1, entry.ID, err)
		}
		if _, dup := seen[entry.ID]; dup {
			return nil, fmt.Errorf("resource #%d: duplicate id %q", i+1, entry.ID)
		}
		seen[entry.ID] = struct{}{}
		out = append(out, res)
	}
	return out, nil
}

func (s resourceSpec) toResource() (*domainresource.Resource, error) {
	typ, err := domainresource.ParseType(s.Type)
	if err != nil {
		return nil, err
	}
	avail, err := s.Availability.toConfig()
	if err != nil {
		return nil, err
	}
	rule, err := s.Pricing.toRule()
	if err != nil {
		return nil, err
	}
	policy, err := s.Cancellation.toPolicy()
	if err != nil {
		return nil, err
	}
	res := &domainresource.Resource{
		ID:           domainresource.ID(strings.TrimSpace(s.ID)),
		Type:         typ,
		OwnerID:      strings.TrimSpace(s.OwnerID),
		Title:        s.Title,
		Availability: avail,
		Pricing:      rule,
		Policy:       policy,
		MaxBookings:  s.MaxBookings,
		SlotLength:   time.Duration(s.SlotMinutes) * time.Minute,
	}
	if err := res.Validate(); err != nil {
		return nil, err
	}
	return res, nil
}

func (w windowSpec) toSchedule() (domainavailability.DaySchedule, error) {
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

func (a availabilitySpec) toConfig() (domainavailability.Config, error) {
	kind, err := domainavailability.ParseKind(a.Kind)
	if err != nil {
		return domainavailability.Config{}, err
	}
	switch kind {
	case domainavailability.KindAlways:
		return domainavailability.Always(), nil
	case domainavailability.KindDateRange:
		dr, err := daterange.Parse(a.Range.Start, a.Range.End)
		if err != nil {
			return domainavailability.Config{}, err
		}
		return domainavailability.Between(dr), nil
	case domainavailability.KindWeeklySchedule:
		days := make(map[time.Weekday]domainavailability.DaySchedule, len(a.Weekly))
		for name, w := range a.Weekly {
			day, err := domainavailability.ParseWeekday(name)
			if err != nil {
				return domainavailability.Config{}, err
			}
			sched, err := w.toSchedule()
			if err != nil {
				return domainavailability.Config{}, err
			}
			days[day] = sched
		}
		return domainavailability.Weekly(days), nil
	default:
		days := make(map[string]domainavailability.DaySchedule, len(a.Custom))
		for date, w := range a.Custom {
			sched, err := w.toSchedule()
			if err != nil {
				return domainavailability.Config{}, err
			}
			days[date] = sched
		}
		return domainavailability.CustomDates(days), nil
	}
}

func (p pricingSpec) toRule() (domainpricing.Rule, error) {
	mode, err := domainpricing.ParseMode(p.Mode)
	if err != nil {
		return domainpricing.Rule{}, err
	}
	base, err := money.Parse(p.BasePrice, p.Currency)
	if err != nil {
		return domainpricing.Rule{}, fmt.Errorf("base price: %w", err)
	}
	rule := domainpricing.Rule{
		Mode:            mode,
		BasePrice:       base,
		MinParticipants: p.MinParticipants,
		MaxParticipants: p.MaxParticipants,
	}
	if gd := p.GroupDiscount; gd != nil {
		pct, err := decimal.NewFromString(strings.TrimSpace(gd.Percentage))
		if err != nil {
			return domainpricing.Rule{}, fmt.Errorf("group discount percentage: %w", err)
		}
		rule.GroupDiscount = &domainpricing.GroupDiscount{ThresholdParticipants: gd.Threshold, Percentage: pct}
	}
	return rule, nil
}

func (c cancellationSpec) toPolicy() (cancellation.Policy, error) {
	name := strings.ToLower(strings.TrimSpace(c.Policy))
	switch name {
	case "":
		return cancellation.Flexible, nil
	case cancellation.NameCustom:
		pct, err := decimal.NewFromString(strings.TrimSpace(c.RefundPercentage))
		if err != nil {
			return cancellation.Policy{}, fmt.Errorf("refund percentage: %w", err)
		}
		return cancellation.NewCustom(pct, c.CutoffHours)
	default:
		return cancellation.Lookup(name)
	}
}
