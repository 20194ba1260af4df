package types

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Frequency selects how a recipient wants notifications delivered.
type Frequency string

const (
	FrequencyInstant Frequency = "instant"
	FrequencyBatched Frequency = "batched"
)

// DefaultMaxDistanceKm is used when a recipient has no distance cap set.
const DefaultMaxDistanceKm = 10.0

// QuietHours is a recipient-local clock window during which instant
// notifications are suppressed. The window may wrap midnight (Start > End).
type QuietHours struct {
	Start string `json:"start,omitempty" validate:"omitempty,len=5"`
	End   string `json:"end,omitempty" validate:"omitempty,len=5"`
}

// Enabled reports whether a window is configured at all.
func (q QuietHours) Enabled() bool {
	return q.Start != "" && q.End != ""
}

// Contains reports whether now's clock time falls inside the window.
// Wrap rule: if Start > End, "in window" means now >= Start || now < End;
// otherwise Start <= now < End. A malformed window never matches.
func (q QuietHours) Contains(now time.Time) bool {
	if !q.Enabled() {
		return false
	}
	start, err := minuteOfDay(q.Start)
	if err != nil {
		return false
	}
	end, err := minuteOfDay(q.End)
	if err != nil {
		return false
	}

	minute := now.Hour()*60 + now.Minute()
	if start > end {
		return minute >= start || minute < end
	}
	return minute >= start && minute < end
}

// minuteOfDay parses "HH:MM" into minutes since midnight.
func minuteOfDay(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid clock time %q: %w", s, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// NotificationPreference is one recipient's delivery settings.
type NotificationPreference struct {
	AlertsEnabled bool       `json:"alerts_enabled"`
	EmailEnabled  bool       `json:"email_enabled"`
	MaxDistanceKm float64    `json:"max_distance_km" validate:"gte=0"`
	MinPayment    *float64   `json:"min_payment,omitempty" validate:"omitempty,gte=0"`
	Categories    []string   `json:"categories,omitempty"`
	QuietHours    QuietHours `json:"quiet_hours"`
	Frequency     Frequency  `json:"frequency,omitempty" validate:"omitempty,oneof=instant batched"`
}

// DefaultPreference returns the settings applied to recipients who never
// customized anything: alerts and email on, 10 km cap, instant delivery.
func DefaultPreference() NotificationPreference {
	return NotificationPreference{
		AlertsEnabled: true,
		EmailEnabled:  true,
		MaxDistanceKm: DefaultMaxDistanceKm,
		Frequency:     FrequencyInstant,
	}
}

// ParsePreference parses the preference JSON blob stored by the CRUD layer,
// filling defaults for unset fields and validating the result. An empty blob
// yields the default preference.
func ParsePreference(raw []byte) (NotificationPreference, error) {
	pref := DefaultPreference()
	if len(raw) == 0 {
		return pref, nil
	}
	if err := json.Unmarshal(raw, &pref); err != nil {
		return NotificationPreference{}, fmt.Errorf("failed to parse notification preference: %w", err)
	}
	if pref.MaxDistanceKm == 0 {
		pref.MaxDistanceKm = DefaultMaxDistanceKm
	}
	if pref.Frequency == "" {
		pref.Frequency = FrequencyInstant
	}
	if err := pref.Validate(); err != nil {
		return NotificationPreference{}, err
	}
	return pref, nil
}

// Validate validates the preference using the validator.
func (p *NotificationPreference) Validate() error {
	validate := validator.New()
	return validate.Struct(p)
}

// AllowsCategory reports whether the category passes the allow-list.
// An empty list allows every category.
func (p NotificationPreference) AllowsCategory(category string) bool {
	if len(p.Categories) == 0 {
		return true
	}
	for _, allowed := range p.Categories {
		if allowed == category {
			return true
		}
	}
	return false
}

// MeetsPayment reports whether the payment passes the minimum threshold.
// A nil threshold accepts any payment.
func (p NotificationPreference) MeetsPayment(amount float64) bool {
	return p.MinPayment == nil || amount >= *p.MinPayment
}
