package engine

import "errors"

// Engine errors.
var (
	ErrInvalidDuration  = errors.New("duration must be greater than zero")
	ErrSaveInProgress   = errors.New("state write in progress")
	ErrTimerRunning     = errors.New("timer already running")
	ErrTimerNotRunning  = errors.New("timer not running")
	ErrTimerNotPaused   = errors.New("timer not paused")
	ErrSlotIndex        = errors.New("slot index out of range")
	ErrNoteNotFound     = errors.New("note not found")
	ErrInvalidLoopCount = errors.New("loop count cannot be negative")
)
