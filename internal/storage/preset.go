package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/ini.v1"

	"octotimer/internal/core/model"
)

// Presets are named configuration snapshots of all eight slots: durations,
// titles, sounds, loop counts and notes. They deliberately carry no live
// countdown state, so a preset section has no running/paused/end_time keys
// and an imported preset always comes back idle.

// SavePreset exports the slot configurations to path.
func SavePreset(path string, slots [model.NumSlots]model.Slot) error {
	cfg := ini.Empty()

	for i, slot := range slots {
		section, err := cfg.NewSection(fmt.Sprintf("TIMER_%d", i))
		if err != nil {
			return fmt.Errorf("create preset section: %w", err)
		}

		section.Key("title").SetValue(slot.Title)
		section.Key("days").SetValue(strconv.Itoa(slot.Duration.Days))
		section.Key("hours").SetValue(strconv.Itoa(slot.Duration.Hours))
		section.Key("minutes").SetValue(strconv.Itoa(slot.Duration.Minutes))
		section.Key("seconds").SetValue(strconv.Itoa(slot.Duration.Seconds))
		section.Key("sound_path1").SetValue(slot.Sound1)
		section.Key("sound_path2").SetValue(slot.Sound2)
		section.Key("loop_count").SetValue(strconv.Itoa(slot.Loop))

		notes := slot.Notes
		if notes == nil {
			notes = []model.Note{}
		}
		encoded, err := json.Marshal(notes)
		if err != nil {
			return fmt.Errorf("encode preset %d notes: %w", i, err)
		}
		section.Key("notes").SetValue(string(encoded))
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create preset directory: %w", err)
	}
	if err := cfg.SaveTo(path); err != nil {
		return fmt.Errorf("write preset file: %w", err)
	}
	return nil
}

// LoadPreset reads slot configurations over base. Slots whose section is
// absent keep their base value; every loaded slot is idle.
func LoadPreset(path string, base [model.NumSlots]model.Slot) ([model.NumSlots]model.Slot, error) {
	slots := base

	cfg, err := loadINI(path)
	if err != nil {
		return slots, fmt.Errorf("read preset file: %w", err)
	}

	for i := range slots {
		section, err := cfg.GetSection(fmt.Sprintf("TIMER_%d", i))
		if err != nil {
			continue
		}

		slot := model.DefaultSlot(i)
		slot.Title = section.Key("title").MustString(slot.Title)
		slot.Duration = model.Duration{
			Days:    section.Key("days").MustInt(0),
			Hours:   section.Key("hours").MustInt(0),
			Minutes: section.Key("minutes").MustInt(0),
			Seconds: section.Key("seconds").MustInt(0),
		}
		slot.Sound1 = section.Key("sound_path1").MustString("")
		slot.Sound2 = section.Key("sound_path2").MustString("")
		slot.Loop = section.Key("loop_count").MustInt(model.DefaultLoopCount)
		slot.Notes = parseNotes(section.Key("notes").MustString("[]"))
		slots[i] = slot
	}
	return slots, nil
}

// DeletePreset removes a preset file.
func DeletePreset(path string) error {
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("delete preset file: %w", err)
	}
	return nil
}
