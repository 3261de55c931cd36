package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"octotimer/internal/core/model"
)

func tempStateFile(t *testing.T) *StateFile {
	t.Helper()
	return NewStateFile(filepath.Join(t.TempDir(), "CurrentTimer.ini"))
}

func defaultSlots() [model.NumSlots]model.Slot {
	var slots [model.NumSlots]model.Slot
	for i := range slots {
		slots[i] = model.DefaultSlot(i)
	}
	return slots
}

func TestStateFile_LoadMissingFileYieldsDefaults(t *testing.T) {
	file := NewStateFile(filepath.Join(t.TempDir(), "nope", "CurrentTimer.ini"))

	slots, err := file.Load()
	require.NoError(t, err)
	for i, slot := range slots {
		assert.Equal(t, model.DefaultSlot(i), slot)
	}
}

func TestStateFile_RoundTripConfiguration(t *testing.T) {
	file := tempStateFile(t)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.Local)

	slots := defaultSlots()
	slots[0].Title = "Pasta"
	slots[0].Duration = model.Duration{Minutes: 8, Seconds: 30}
	slots[0].Sound1 = "/sounds/bell.ogg"
	slots[0].Sound2 = "/sounds/chime.wav"
	slots[0].Loop = 3
	slots[0].Notes = []model.Note{
		{ID: "20250601120000000000", Title: "Salt the water", Tags: []model.StyleTag{}, Completion: model.Checkbox{Checked: true}},
		{ID: "20250601120000000001", Title: "Stir", Tags: []model.StyleTag{}, Completion: model.BoundedCounter{Current: 1, Min: 0, Max: 4}},
	}

	require.NoError(t, file.Save(slots, now))

	loaded, err := file.Load()
	require.NoError(t, err)

	got := loaded[0]
	assert.Equal(t, "Pasta", got.Title)
	assert.Equal(t, model.Duration{Minutes: 8, Seconds: 30}, got.Duration)
	assert.Equal(t, "/sounds/bell.ogg", got.Sound1)
	assert.Equal(t, "/sounds/chime.wav", got.Sound2)
	assert.Equal(t, 3, got.Loop)
	require.Len(t, got.Notes, 2)
	assert.Equal(t, slots[0].Notes[0], got.Notes[0])
	assert.Equal(t, slots[0].Notes[1], got.Notes[1])
	assert.False(t, got.Running)

	// Untouched slots come back as their defaults.
	assert.Equal(t, model.DefaultSlot(7), loaded[7])
}

func TestStateFile_RoundTripRunningSlot(t *testing.T) {
	file := tempStateFile(t)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.Local)

	slots := defaultSlots()
	slots[2].Duration = model.Duration{Minutes: 5}
	slots[2].Running = true
	slots[2].EndTime = now.Add(4 * time.Minute)

	require.NoError(t, file.Save(slots, now))

	loaded, err := file.Load()
	require.NoError(t, err)

	got := loaded[2]
	assert.True(t, got.Running)
	assert.False(t, got.Paused)
	assert.True(t, got.EndTime.Equal(now.Add(4*time.Minute)))
	assert.Equal(t, 240, got.Remaining)
}

func TestStateFile_RoundTripPausedSlot(t *testing.T) {
	file := tempStateFile(t)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.Local)

	slots := defaultSlots()
	slots[1].Duration = model.Duration{Minutes: 10}
	slots[1].Running = true
	slots[1].Paused = true
	slots[1].EndTime = now.Add(7 * time.Minute)
	slots[1].PauseTime = now.Add(-time.Minute)
	slots[1].Remaining = 451

	require.NoError(t, file.Save(slots, now))

	loaded, err := file.Load()
	require.NoError(t, err)

	got := loaded[1]
	assert.True(t, got.Running)
	assert.True(t, got.Paused)
	assert.True(t, got.PauseTime.Equal(now.Add(-time.Minute)))
	// The frozen value is authoritative while paused, not a recomputation.
	assert.Equal(t, 451, got.Remaining)
}

func TestStateFile_MalformedRunningRecordFallsBackToDefault(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "CurrentTimer.ini")

	content := `[TIMER 0]
title = Broken clock
running = yes
paused = no
end_time = not-a-timestamp

[TIMER 1]
title = Survivor
days = 0
minutes = 2
running = no
paused = no
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	loaded, err := NewStateFile(path).Load()
	require.NoError(t, err)

	// A bad record only costs its own slot.
	assert.Equal(t, model.DefaultSlot(0), loaded[0])
	assert.Equal(t, "Survivor", loaded[1].Title)
	assert.Equal(t, model.Duration{Minutes: 2}, loaded[1].Duration)
}

func TestStateFile_RunningWithoutEndTimeFallsBackToDefault(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "CurrentTimer.ini")

	content := `[TIMER 3]
title = Ghost
running = yes
paused = no
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	loaded, err := NewStateFile(path).Load()
	require.NoError(t, err)
	assert.Equal(t, model.DefaultSlot(3), loaded[3])
}

func TestStateFile_PausedWithoutRunningIsNormalized(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "CurrentTimer.ini")

	content := `[TIMER 4]
title = Inconsistent
running = no
paused = yes
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	loaded, err := NewStateFile(path).Load()
	require.NoError(t, err)
	assert.False(t, loaded[4].Running)
	assert.False(t, loaded[4].Paused)
	assert.Equal(t, "Inconsistent", loaded[4].Title)
}

func TestStateFile_MalformedNotesAreDropped(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "CurrentTimer.ini")

	content := `[TIMER 0]
title = Noted
notes = not json at all
running = no
paused = no
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	loaded, err := NewStateFile(path).Load()
	require.NoError(t, err)
	assert.Empty(t, loaded[0].Notes)
	assert.Equal(t, "Noted", loaded[0].Title)
}

func TestStateFile_DefaultLoopSeedsSlots(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "CurrentTimer.ini")

	content := `[TIMER 0]
title = No loop key
running = no
paused = no

[TIMER 1]
title = Explicit loop
loop = 5
running = no
paused = no
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	file := NewStateFile(path)
	file.SetDefaultLoop(3)

	loaded, err := file.Load()
	require.NoError(t, err)
	assert.Equal(t, 3, loaded[0].Loop)
	assert.Equal(t, 5, loaded[1].Loop)
	// Slots without a section get the configured default too.
	assert.Equal(t, 3, loaded[7].Loop)

	// A missing file seeds every slot.
	fresh := NewStateFile(filepath.Join(dir, "absent.ini"))
	fresh.SetDefaultLoop(0)
	loaded, err = fresh.Load()
	require.NoError(t, err)
	assert.Zero(t, loaded[0].Loop)
}

func TestStateFile_SaveCreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deep", "nested", "CurrentTimer.ini")
	file := NewStateFile(path)

	require.NoError(t, file.Save(defaultSlots(), time.Now()))
	_, err := os.Stat(path)
	assert.NoError(t, err)
}
