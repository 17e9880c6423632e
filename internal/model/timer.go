package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	TargetAll      = "all"
	TargetSpecific = "specific"
)

const DefaultBannerText = "Hurry! Offer ending soon!"

// Status is the display status of a Timer at a given instant.
type Status string

const (
	StatusInactive  Status = "inactive"
	StatusScheduled Status = "scheduled"
	StatusActive    Status = "active"
	StatusExpired   Status = "expired"
)

type Timer struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Shop            string             `bson:"shop" json:"shop"`
	Title           string             `bson:"title" json:"title"`
	Description     string             `bson:"description" json:"description"`
	StartDate       time.Time          `bson:"startDate" json:"startDate"`
	EndDate         time.Time          `bson:"endDate" json:"endDate"`
	IsActive        bool               `bson:"isActive" json:"isActive"`
	DisplayOptions  DisplayOptions     `bson:"displayOptions" json:"displayOptions"`
	UrgencySettings UrgencySettings    `bson:"urgencySettings" json:"urgencySettings"`
	TargetProducts  string             `bson:"targetProducts" json:"targetProducts"`
	ProductIDs      []string           `bson:"productIds" json:"productIds"`
	Views           int                `bson:"views" json:"views"`
	Clicks          int                `bson:"clicks" json:"clicks"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type DisplayOptions struct {
	Position        string `bson:"position" json:"position" validate:"omitempty,oneof=top bottom above-price below-title"`
	BackgroundColor string `bson:"backgroundColor" json:"backgroundColor" validate:"omitempty,hexcolor"`
	TextColor       string `bson:"textColor" json:"textColor" validate:"omitempty,hexcolor"`
	FontSize        string `bson:"fontSize" json:"fontSize" validate:"omitempty,oneof=small medium large"`
	ShowDays        bool   `bson:"showDays" json:"showDays"`
	ShowHours       bool   `bson:"showHours" json:"showHours"`
	ShowMinutes     bool   `bson:"showMinutes" json:"showMinutes"`
	ShowSeconds     bool   `bson:"showSeconds" json:"showSeconds"`
}

type UrgencySettings struct {
	Enabled     bool   `bson:"enabled" json:"enabled"`
	Threshold   int    `bson:"threshold" json:"threshold" validate:"min=1,max=60"`
	PulseEffect bool   `bson:"pulseEffect" json:"pulseEffect"`
	ShowBanner  bool   `bson:"showBanner" json:"showBanner"`
	BannerText  string `bson:"bannerText" json:"bannerText"`
}

func DefaultDisplayOptions() DisplayOptions {
	return DisplayOptions{
		Position:        "above-price",
		BackgroundColor: "#FF0000",
		TextColor:       "#FFFFFF",
		FontSize:        "medium",
		ShowDays:        true,
		ShowHours:       true,
		ShowMinutes:     true,
		ShowSeconds:     true,
	}
}

func DefaultUrgencySettings() UrgencySettings {
	return UrgencySettings{
		Enabled:     true,
		Threshold:   5,
		PulseEffect: true,
		ShowBanner:  true,
		BannerText:  DefaultBannerText,
	}
}

// ApplyDefaults fills enum, color and threshold fields that were left empty,
// mirroring the schema defaults the admin UI relies on.
func (d *DisplayOptions) ApplyDefaults() {
	defaults := DefaultDisplayOptions()
	if d.Position == "" {
		d.Position = defaults.Position
	}
	if d.BackgroundColor == "" {
		d.BackgroundColor = defaults.BackgroundColor
	}
	if d.TextColor == "" {
		d.TextColor = defaults.TextColor
	}
	if d.FontSize == "" {
		d.FontSize = defaults.FontSize
	}
}

func (u *UrgencySettings) ApplyDefaults() {
	defaults := DefaultUrgencySettings()
	if u.Threshold == 0 {
		u.Threshold = defaults.Threshold
	}
	if u.BannerText == "" {
		u.BannerText = defaults.BannerText
	}
}

// Status derives the display status of the timer at now. The active window
// [StartDate, EndDate] is inclusive on both ends, and a disabled timer is
// Inactive no matter where now falls.
func (t Timer) Status(now time.Time) Status {
	if !t.IsActive {
		return StatusInactive
	}
	if now.Before(t.StartDate) {
		return StatusScheduled
	}
	if !now.After(t.EndDate) {
		return StatusActive
	}
	return StatusExpired
}

// IsRunning reports whether the timer should currently be shown on a
// storefront, ignoring product targeting.
func (t Timer) IsRunning(now time.Time) bool {
	return t.Status(now) == StatusActive
}

// IsUrgent reports whether the timer is inside its urgency window at now.
// An expired timer is never urgent, even with urgency enabled.
func (t Timer) IsUrgent(now time.Time) bool {
	if !t.UrgencySettings.Enabled {
		return false
	}
	timeLeft := t.EndDate.Sub(now)
	threshold := time.Duration(t.UrgencySettings.Threshold) * time.Minute
	return timeLeft > 0 && timeLeft <= threshold
}

// EligibleFor reports whether the timer targets productID. Without a product
// context only storewide timers qualify; a specific-product timer is never
// surfaced outside a product page.
func (t Timer) EligibleFor(productID string) bool {
	if productID == "" {
		return t.TargetProducts == TargetAll
	}
	if t.TargetProducts == TargetAll {
		return true
	}
	if t.TargetProducts != TargetSpecific {
		return false
	}
	for _, id := range t.ProductIDs {
		if id == productID {
			return true
		}
	}
	return false
}

// SelectActive picks the single timer to display for productID at now:
// running, matching the product targeting, most recently created. Returns
// nil when no candidate qualifies.
func SelectActive(timers []Timer, productID string, now time.Time) *Timer {
	var selected *Timer
	for i := range timers {
		t := &timers[i]
		if t.Status(now) != StatusActive || !t.EligibleFor(productID) {
			continue
		}
		if selected == nil || t.CreatedAt.After(selected.CreatedAt) {
			selected = t
		}
	}
	return selected
}
