// Package storage persists timer state: the live-state autosave file, preset
// snapshots, and application settings.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/ini.v1"

	"octotimer/internal/core/model"
)

// TimeLayout formats the absolute instants stored in state files: local time
// at one second resolution.
const TimeLayout = "2006-01-02 15:04:05"

// StateFile is the live-state autosave record covering all eight slots. Every
// save is a full rewrite of the file.
type StateFile struct {
	path        string
	defaultLoop int
}

// NewStateFile creates a state file handle at path.
func NewStateFile(path string) *StateFile {
	return &StateFile{path: path, defaultLoop: model.DefaultLoopCount}
}

// SetDefaultLoop changes the loop count given to slots whose record carries
// none, typically the user's configured default. Negative values are ignored.
func (f *StateFile) SetDefaultLoop(loop int) {
	if loop >= 0 {
		f.defaultLoop = loop
	}
}

// Path returns the file location.
func (f *StateFile) Path() string {
	return f.path
}

// Save writes one section per slot. For a running slot the absolute end time
// and the remaining seconds are included; for a paused slot the frozen
// remaining value is authoritative and the pause instant is recorded too.
func (f *StateFile) Save(slots [model.NumSlots]model.Slot, now time.Time) error {
	cfg := ini.Empty()

	for i, slot := range slots {
		section, err := cfg.NewSection(fmt.Sprintf("TIMER %d", i))
		if err != nil {
			return fmt.Errorf("create state section: %w", err)
		}

		section.Key("days").SetValue(strconv.Itoa(slot.Duration.Days))
		section.Key("hours").SetValue(strconv.Itoa(slot.Duration.Hours))
		section.Key("minutes").SetValue(strconv.Itoa(slot.Duration.Minutes))
		section.Key("seconds").SetValue(strconv.Itoa(slot.Duration.Seconds))
		section.Key("title").SetValue(slot.Title)
		section.Key("sound1").SetValue(slot.Sound1)
		section.Key("sound2").SetValue(slot.Sound2)
		section.Key("loop").SetValue(strconv.Itoa(slot.Loop))

		notes := slot.Notes
		if notes == nil {
			notes = []model.Note{}
		}
		encoded, err := json.Marshal(notes)
		if err != nil {
			return fmt.Errorf("encode slot %d notes: %w", i, err)
		}
		section.Key("notes").SetValue(string(encoded))

		section.Key("running").SetValue(yesNo(slot.Running))
		section.Key("paused").SetValue(yesNo(slot.Paused))

		if slot.Running {
			if !slot.EndTime.IsZero() {
				section.Key("end_time").SetValue(slot.EndTime.Format(TimeLayout))
			}
			if slot.Paused && !slot.PauseTime.IsZero() {
				section.Key("pause_time").SetValue(slot.PauseTime.Format(TimeLayout))
			}
			section.Key("remaining_seconds").SetValue(strconv.Itoa(liveRemaining(slot, now)))
		}
	}

	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}
	if err := cfg.SaveTo(f.path); err != nil {
		return fmt.Errorf("write state file: %w", err)
	}
	return nil
}

// Load reads all eight slots back. A missing file yields default idle slots.
// A slot whose section is absent, or whose timestamp fields fail to parse,
// falls back to the default idle state rather than aborting the whole load.
func (f *StateFile) Load() ([model.NumSlots]model.Slot, error) {
	var slots [model.NumSlots]model.Slot
	for i := range slots {
		slots[i] = f.idleSlot(i)
	}

	cfg, err := loadINI(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return slots, nil
		}
		return slots, fmt.Errorf("read state file: %w", err)
	}

	for i := range slots {
		section, err := cfg.GetSection(fmt.Sprintf("TIMER %d", i))
		if err != nil {
			continue
		}
		if slot, ok := f.parseSlot(section, i); ok {
			slots[i] = slot
		}
	}
	return slots, nil
}

// idleSlot is the default slot seeded with the configured loop count.
func (f *StateFile) idleSlot(index int) model.Slot {
	slot := model.DefaultSlot(index)
	slot.Loop = f.defaultLoop
	return slot
}

// parseSlot decodes one section. ok is false when the record is malformed in
// a way the caller must replace with the default idle slot.
func (f *StateFile) parseSlot(section *ini.Section, index int) (model.Slot, bool) {
	slot := f.idleSlot(index)

	slot.Duration = model.Duration{
		Days:    section.Key("days").MustInt(0),
		Hours:   section.Key("hours").MustInt(0),
		Minutes: section.Key("minutes").MustInt(0),
		Seconds: section.Key("seconds").MustInt(0),
	}
	slot.Title = section.Key("title").MustString(slot.Title)
	slot.Sound1 = section.Key("sound1").MustString("")
	slot.Sound2 = section.Key("sound2").MustString("")
	slot.Loop = section.Key("loop").MustInt(f.defaultLoop)
	slot.Notes = parseNotes(section.Key("notes").MustString("[]"))

	slot.Running = section.Key("running").MustString("no") == "yes"
	slot.Paused = section.Key("paused").MustString("no") == "yes"
	if !slot.Running {
		// Paused implies running; a paused-but-idle record is meaningless.
		slot.Paused = false
		return slot, true
	}

	endValue := section.Key("end_time").MustString("")
	if endValue == "" {
		return f.idleSlot(index), false
	}
	end, err := time.ParseInLocation(TimeLayout, endValue, time.Local)
	if err != nil {
		return f.idleSlot(index), false
	}
	slot.EndTime = end

	if pauseValue := section.Key("pause_time").MustString(""); pauseValue != "" {
		pause, err := time.ParseInLocation(TimeLayout, pauseValue, time.Local)
		if err != nil {
			return f.idleSlot(index), false
		}
		slot.PauseTime = pause
	}

	slot.Remaining = section.Key("remaining_seconds").MustInt(0)
	return slot, true
}

// parseNotes tolerates malformed note payloads by dropping them.
func parseNotes(encoded string) []model.Note {
	var notes []model.Note
	if err := json.Unmarshal([]byte(encoded), &notes); err != nil {
		return nil
	}
	return notes
}

func liveRemaining(slot model.Slot, now time.Time) int {
	if slot.Paused {
		return slot.Remaining
	}
	if slot.EndTime.IsZero() {
		return 0
	}
	remaining := int(slot.EndTime.Sub(now) / time.Second)
	if remaining < 0 {
		return 0
	}
	return remaining
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}

func loadINI(path string) (*ini.File, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	return ini.Load(path)
}
