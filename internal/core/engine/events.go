package engine

import "time"

// EventType defines the type of engine event.
type EventType string

const (
	// EventRemaining reports the active slot's remaining time each tick.
	EventRemaining EventType = "remaining"
	// EventFinished reports a slot reaching zero, exactly once per run.
	EventFinished EventType = "finished"
	// EventPauseFlash drives the cosmetic flash while the active slot is paused.
	EventPauseFlash EventType = "pause_flash"
	// EventSaveError reports a non-fatal persistence failure.
	EventSaveError EventType = "save_error"
	// EventAlarmError reports a non-fatal alarm playback failure.
	EventAlarmError EventType = "alarm_error"
)

// Event is one engine update for observers.
type Event struct {
	Type      EventType
	Slot      int
	Title     string
	Remaining time.Duration
	Accent    bool // pause flash accent phase, one tick in four
	Message   string
	At        time.Time
}
