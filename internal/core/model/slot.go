package model

import (
	"fmt"
	"time"
)

// NumSlots is the fixed number of independent timer slots.
const NumSlots = 8

// MaxTotalSeconds caps a single countdown at 35 days.
const MaxTotalSeconds = 35 * 86400

// DefaultLoopCount plays the alarm once.
const DefaultLoopCount = 1

// Duration is a user-entered countdown length split into calendar fields.
type Duration struct {
	Days    int
	Hours   int
	Minutes int
	Seconds int
}

// DurationFromSeconds redistributes a second count into calendar fields.
func DurationFromSeconds(total int) Duration {
	if total < 0 {
		total = 0
	}
	if total > MaxTotalSeconds {
		total = MaxTotalSeconds
	}
	days := total / 86400
	total %= 86400
	hours := total / 3600
	total %= 3600
	return Duration{
		Days:    days,
		Hours:   hours,
		Minutes: total / 60,
		Seconds: total % 60,
	}
}

// TotalSeconds sums the fields, flooring at zero and clamping at the 35 day cap.
func (d Duration) TotalSeconds() int {
	total := d.Days*86400 + d.Hours*3600 + d.Minutes*60 + d.Seconds
	if total < 0 {
		return 0
	}
	if total > MaxTotalSeconds {
		return MaxTotalSeconds
	}
	return total
}

// Normalize redistributes overflowing fields and applies the cap, so
// 90 seconds becomes 1 minute 30 seconds.
func (d Duration) Normalize() Duration {
	return DurationFromSeconds(d.TotalSeconds())
}

// Slot is the full state record for one of the eight timers.
//
// While the slot is running and not paused, EndTime is authoritative for the
// remaining time. While it is paused, Remaining is authoritative and EndTime
// is stale. Paused implies Running.
type Slot struct {
	Duration Duration
	Title    string
	Sound1   string
	Sound2   string
	Loop     int // alarm repetitions, 0 = infinite
	Notes    []Note

	Running   bool
	Paused    bool
	EndTime   time.Time
	PauseTime time.Time
	Remaining int // seconds, authoritative only while paused
}

// DefaultSlot returns the idle state a slot has before any user input.
func DefaultSlot(index int) Slot {
	return Slot{
		Title: fmt.Sprintf("Timer %d", index+1),
		Loop:  DefaultLoopCount,
	}
}

// RemainingAt reports the time left on the slot's countdown at the given
// instant, never negative. Idle slots have no remaining time.
func (s Slot) RemainingAt(now time.Time) time.Duration {
	switch {
	case !s.Running:
		return 0
	case s.Paused:
		return time.Duration(s.Remaining) * time.Second
	case s.EndTime.IsZero():
		return 0
	default:
		remaining := s.EndTime.Sub(now)
		if remaining < 0 {
			return 0
		}
		return remaining
	}
}

// Expired reports whether a running, unpaused slot's end time has passed.
func (s Slot) Expired(now time.Time) bool {
	return s.Running && !s.Paused && !s.EndTime.IsZero() && !s.EndTime.After(now)
}

// ClearRun resets all live countdown state, leaving the configured duration,
// sounds, loop count, title and notes untouched.
func (s *Slot) ClearRun() {
	s.Running = false
	s.Paused = false
	s.EndTime = time.Time{}
	s.PauseTime = time.Time{}
	s.Remaining = 0
}
