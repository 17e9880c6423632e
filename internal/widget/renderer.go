// Package widget holds the storefront countdown runtime: the per-tick frame
// computation and the ticking renderer that drives it. The time math lives in
// the model package so the widget can never drift from what the admin and the
// public API report.
package widget

import (
	"context"
	"sync"
	"time"

	"countdowntimer/internal/model"
)

// Unit is one visible block of the countdown clock.
type Unit struct {
	Label string
	Value int
}

// Frame is the full rendering state of the countdown at one instant.
type Frame struct {
	TimeLeft model.TimeLeft
	Units    []Unit
	Urgent   bool
	Pulse    bool
	Banner   string
	Expired  bool
}

// Render computes the frame for t at now. Units honor the timer's display
// flags; the days block is also suppressed while its value is zero.
func Render(t model.Timer, now time.Time) Frame {
	tl, ok := t.TimeRemaining(now)
	if !ok {
		return Frame{Expired: true}
	}

	f := Frame{
		TimeLeft: tl,
		Urgent:   t.IsUrgent(now),
	}
	if f.Urgent {
		f.Pulse = t.UrgencySettings.PulseEffect
		if t.UrgencySettings.ShowBanner {
			f.Banner = t.UrgencySettings.BannerText
		}
	}

	d := t.DisplayOptions
	if d.ShowDays && tl.Days > 0 {
		f.Units = append(f.Units, Unit{Label: "Days", Value: tl.Days})
	}
	if d.ShowHours {
		f.Units = append(f.Units, Unit{Label: "Hours", Value: tl.Hours})
	}
	if d.ShowMinutes {
		f.Units = append(f.Units, Unit{Label: "Minutes", Value: tl.Minutes})
	}
	if d.ShowSeconds {
		f.Units = append(f.Units, Unit{Label: "Seconds", Value: tl.Seconds})
	}
	return f
}

// Renderer re-renders a single timer on a fixed cadence. Each tick is an
// independent recomputation against the timer's end date, not a decrement,
// so missed or delayed ticks self-correct on the next frame.
type Renderer struct {
	Timer model.Timer

	// Interval defaults to one second, Now to time.Now. Both exist so tests
	// can drive the clock deterministically.
	Interval time.Duration
	Now      func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

func NewRenderer(t model.Timer) *Renderer {
	return &Renderer{
		Timer: t,
		stop:  make(chan struct{}),
	}
}

// Run emits a frame immediately and then once per interval, until the timer
// expires, ctx ends, or Stop is called. The final frame before returning on
// expiry has Expired set. The ticker never outlives the call.
func (r *Renderer) Run(ctx context.Context, emit func(Frame)) {
	interval := r.Interval
	if interval <= 0 {
		interval = time.Second
	}
	now := r.Now
	if now == nil {
		now = time.Now
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		f := Render(r.Timer, now())
		emit(f)
		if f.Expired {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-r.stop:
			return
		case <-ticker.C:
		}
	}
}

// Stop ends a running Run. Safe to call more than once and from a different
// goroutine than the one running the renderer.
func (r *Renderer) Stop() {
	r.stopOnce.Do(func() {
		close(r.stop)
	})
}
