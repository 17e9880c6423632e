package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runningTimer(now time.Time) Timer {
	return Timer{
		Title:           "Flash sale",
		Description:     "Ends soon",
		StartDate:       now.Add(-1 * time.Hour),
		EndDate:         now.Add(1 * time.Hour),
		IsActive:        true,
		DisplayOptions:  DefaultDisplayOptions(),
		UrgencySettings: DefaultUrgencySettings(),
		TargetProducts:  TargetAll,
		CreatedAt:       now.Add(-2 * time.Hour),
	}
}

func TestTimerStatus(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	tm := runningTimer(now)

	assert.Equal(t, StatusActive, tm.Status(now))
	assert.True(t, tm.IsRunning(now))

	// Window boundaries are inclusive on the active side.
	assert.Equal(t, StatusActive, tm.Status(tm.StartDate))
	assert.Equal(t, StatusActive, tm.Status(tm.EndDate))
	assert.Equal(t, StatusScheduled, tm.Status(tm.StartDate.Add(-time.Millisecond)))
	assert.Equal(t, StatusExpired, tm.Status(tm.EndDate.Add(time.Millisecond)))
}

func TestTimerStatusInactiveWinsOverWindow(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	tm := runningTimer(now)
	tm.IsActive = false

	for _, instant := range []time.Time{
		tm.StartDate.Add(-time.Hour),
		tm.StartDate,
		now,
		tm.EndDate,
		tm.EndDate.Add(time.Hour),
	} {
		assert.Equal(t, StatusInactive, tm.Status(instant), "at %s", instant)
		assert.False(t, tm.IsRunning(instant))
	}
}

func TestTimerStatusPartitionsTimeline(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	tm := runningTimer(now)

	// Walk across the whole window in coarse steps and check every instant
	// lands in exactly one status, in order.
	var seen []Status
	for instant := tm.StartDate.Add(-time.Minute); !instant.After(tm.EndDate.Add(time.Minute)); instant = instant.Add(30 * time.Second) {
		st := tm.Status(instant)
		if len(seen) == 0 || seen[len(seen)-1] != st {
			seen = append(seen, st)
		}
	}
	assert.Equal(t, []Status{StatusScheduled, StatusActive, StatusExpired}, seen)
}

func TestTimerIsUrgent(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	tm := runningTimer(now)
	tm.EndDate = now.Add(4 * time.Minute)
	tm.UrgencySettings.Threshold = 5
	assert.True(t, tm.IsUrgent(now))

	tm.UrgencySettings.Threshold = 3
	assert.False(t, tm.IsUrgent(now))

	// Exactly at the threshold counts as urgent.
	tm.UrgencySettings.Threshold = 4
	assert.True(t, tm.IsUrgent(now))
}

func TestTimerIsUrgentDisabled(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	tm := runningTimer(now)
	tm.EndDate = now.Add(time.Minute)
	tm.UrgencySettings.Enabled = false

	assert.False(t, tm.IsUrgent(now))
}

func TestTimerIsUrgentNeverAfterExpiry(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	tm := runningTimer(now)
	tm.EndDate = now.Add(-time.Second)

	assert.False(t, tm.IsUrgent(now))
	// Zero time left is not urgent either.
	tm.EndDate = now
	assert.False(t, tm.IsUrgent(now))
}

func TestTimerEligibleFor(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	all := runningTimer(now)
	assert.True(t, all.EligibleFor(""))
	assert.True(t, all.EligibleFor("p1"))

	specific := runningTimer(now)
	specific.TargetProducts = TargetSpecific
	specific.ProductIDs = []string{"p1", "p2"}
	assert.True(t, specific.EligibleFor("p1"))
	assert.False(t, specific.EligibleFor("p3"))
	// A specific-product timer is never surfaced without a product context.
	assert.False(t, specific.EligibleFor(""))
}

func TestSelectActivePicksLatestCreated(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	a := runningTimer(now)
	a.Title = "A"
	a.StartDate = now.Add(-1 * time.Hour)
	a.EndDate = now.Add(1 * time.Hour)
	a.CreatedAt = now.Add(-48 * time.Hour)

	b := runningTimer(now)
	b.Title = "B"
	b.StartDate = now.Add(-2 * time.Hour)
	b.EndDate = now.Add(2 * time.Hour)
	b.CreatedAt = now.Add(-24 * time.Hour)

	selected := SelectActive([]Timer{a, b}, "", now)
	require.NotNil(t, selected)
	assert.Equal(t, "B", selected.Title)

	// Order of the slice must not matter.
	selected = SelectActive([]Timer{b, a}, "", now)
	require.NotNil(t, selected)
	assert.Equal(t, "B", selected.Title)
}

func TestSelectActiveFiltersCandidates(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	disabled := runningTimer(now)
	disabled.IsActive = false

	scheduled := runningTimer(now)
	scheduled.StartDate = now.Add(time.Hour)
	scheduled.EndDate = now.Add(2 * time.Hour)

	expired := runningTimer(now)
	expired.StartDate = now.Add(-2 * time.Hour)
	expired.EndDate = now.Add(-time.Hour)

	assert.Nil(t, SelectActive([]Timer{disabled, scheduled, expired}, "", now))
	assert.Nil(t, SelectActive(nil, "", now))
}

func TestSelectActiveNeverReturnsSpecificWithoutProduct(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	specific := runningTimer(now)
	specific.TargetProducts = TargetSpecific
	specific.ProductIDs = []string{"p1"}

	assert.Nil(t, SelectActive([]Timer{specific}, "", now))

	selected := SelectActive([]Timer{specific}, "p1", now)
	require.NotNil(t, selected)
	assert.Equal(t, TargetSpecific, selected.TargetProducts)
}

func TestSelectActiveProductTargeting(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	storewide := runningTimer(now)
	storewide.Title = "storewide"
	storewide.CreatedAt = now.Add(-48 * time.Hour)

	targeted := runningTimer(now)
	targeted.Title = "targeted"
	targeted.TargetProducts = TargetSpecific
	targeted.ProductIDs = []string{"p1"}
	targeted.CreatedAt = now.Add(-24 * time.Hour)

	// On the targeted product the newer specific timer wins; elsewhere only
	// the storewide one qualifies.
	selected := SelectActive([]Timer{storewide, targeted}, "p1", now)
	require.NotNil(t, selected)
	assert.Equal(t, "targeted", selected.Title)

	selected = SelectActive([]Timer{storewide, targeted}, "p9", now)
	require.NotNil(t, selected)
	assert.Equal(t, "storewide", selected.Title)
}

func TestApplyDefaults(t *testing.T) {
	var d DisplayOptions
	d.ApplyDefaults()
	assert.Equal(t, "above-price", d.Position)
	assert.Equal(t, "#FF0000", d.BackgroundColor)
	assert.Equal(t, "#FFFFFF", d.TextColor)
	assert.Equal(t, "medium", d.FontSize)

	d = DisplayOptions{Position: "top", FontSize: "large"}
	d.ApplyDefaults()
	assert.Equal(t, "top", d.Position)
	assert.Equal(t, "large", d.FontSize)

	var u UrgencySettings
	u.ApplyDefaults()
	assert.Equal(t, 5, u.Threshold)
	assert.Equal(t, DefaultBannerText, u.BannerText)

	u = UrgencySettings{Threshold: 10, BannerText: "Go go go"}
	u.ApplyDefaults()
	assert.Equal(t, 10, u.Threshold)
	assert.Equal(t, "Go go go", u.BannerText)
}
