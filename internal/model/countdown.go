package model

import "time"

// TimeLeft is the whole-unit breakdown of the remaining time until a timer's
// end date, truncated at each unit boundary.
type TimeLeft struct {
	Days    int `json:"days"`
	Hours   int `json:"hours"`
	Minutes int `json:"minutes"`
	Seconds int `json:"seconds"`
}

// TimeRemaining decomposes EndDate-now into days, hours, minutes and seconds.
// Returns false when the timer has expired (EndDate-now <= 0); the breakdown
// is meaningless in that case. Each call recomputes from the fixed EndDate,
// so callers ticking on an interval self-correct for drift and missed ticks.
func (t Timer) TimeRemaining(now time.Time) (TimeLeft, bool) {
	diff := t.EndDate.Sub(now)
	if diff <= 0 {
		return TimeLeft{}, false
	}
	secs := int(diff / time.Second)
	return TimeLeft{
		Days:    secs / (24 * 60 * 60),
		Hours:   secs / (60 * 60) % 24,
		Minutes: secs / 60 % 60,
		Seconds: secs % 60,
	}, true
}
