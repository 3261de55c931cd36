package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDuration_TotalSeconds(t *testing.T) {
	tests := []struct {
		name     string
		duration Duration
		want     int
	}{
		{
			name:     "simple sum",
			duration: Duration{Days: 1, Hours: 2, Minutes: 3, Seconds: 4},
			want:     86400 + 2*3600 + 3*60 + 4,
		},
		{
			name:     "zero",
			duration: Duration{},
			want:     0,
		},
		{
			name:     "negative floors at zero",
			duration: Duration{Seconds: -5},
			want:     0,
		},
		{
			name:     "exactly at the 35 day cap",
			duration: Duration{Days: 35},
			want:     MaxTotalSeconds,
		},
		{
			name:     "over the cap clamps to 3024000",
			duration: Duration{Days: 36, Hours: 12},
			want:     MaxTotalSeconds,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.duration.TotalSeconds())
		})
	}
}

func TestDuration_Normalize(t *testing.T) {
	assert.Equal(t, Duration{Minutes: 1, Seconds: 30}, Duration{Seconds: 90}.Normalize())
	assert.Equal(t, Duration{Days: 1, Hours: 1}, Duration{Hours: 25}.Normalize())
	assert.Equal(t, Duration{Days: 35}, Duration{Days: 40}.Normalize())
}

func TestDurationFromSeconds(t *testing.T) {
	duration := DurationFromSeconds(86400 + 3600 + 60 + 1)
	assert.Equal(t, Duration{Days: 1, Hours: 1, Minutes: 1, Seconds: 1}, duration)

	assert.Equal(t, Duration{}, DurationFromSeconds(-10))
	assert.Equal(t, Duration{Days: 35}, DurationFromSeconds(MaxTotalSeconds+500))
}

func TestSlot_RemainingAt(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.Local)

	t.Run("idle has none", func(t *testing.T) {
		slot := DefaultSlot(0)
		assert.Zero(t, slot.RemainingAt(now))
	})

	t.Run("paused uses frozen seconds", func(t *testing.T) {
		slot := Slot{Running: true, Paused: true, Remaining: 42, EndTime: now.Add(-time.Hour)}
		assert.Equal(t, 42*time.Second, slot.RemainingAt(now))
	})

	t.Run("running uses end time", func(t *testing.T) {
		slot := Slot{Running: true, EndTime: now.Add(90 * time.Second)}
		assert.Equal(t, 90*time.Second, slot.RemainingAt(now))
	})

	t.Run("past end time floors at zero", func(t *testing.T) {
		slot := Slot{Running: true, EndTime: now.Add(-time.Second)}
		assert.Zero(t, slot.RemainingAt(now))
	})
}

func TestSlot_Expired(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.Local)

	tests := []struct {
		name string
		slot Slot
		want bool
	}{
		{name: "running past end", slot: Slot{Running: true, EndTime: now.Add(-time.Second)}, want: true},
		{name: "running at exact end", slot: Slot{Running: true, EndTime: now}, want: true},
		{name: "running with time left", slot: Slot{Running: true, EndTime: now.Add(time.Second)}, want: false},
		{name: "paused never expires", slot: Slot{Running: true, Paused: true, EndTime: now.Add(-time.Hour)}, want: false},
		{name: "idle never expires", slot: Slot{}, want: false},
		{name: "running without end time", slot: Slot{Running: true}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.slot.Expired(now))
		})
	}
}

func TestSlot_ClearRun(t *testing.T) {
	note, _ := NewNote("keep me", "", PlainText{})
	slot := Slot{
		Duration:  Duration{Minutes: 5},
		Title:     "Tea",
		Sound1:    "a.ogg",
		Sound2:    "b.mp3",
		Loop:      3,
		Notes:     []Note{note},
		Running:   true,
		Paused:    true,
		EndTime:   time.Now(),
		PauseTime: time.Now(),
		Remaining: 120,
	}

	slot.ClearRun()

	assert.False(t, slot.Running)
	assert.False(t, slot.Paused)
	assert.True(t, slot.EndTime.IsZero())
	assert.True(t, slot.PauseTime.IsZero())
	assert.Zero(t, slot.Remaining)

	assert.Equal(t, Duration{Minutes: 5}, slot.Duration)
	assert.Equal(t, "Tea", slot.Title)
	assert.Equal(t, "a.ogg", slot.Sound1)
	assert.Equal(t, 3, slot.Loop)
	assert.Len(t, slot.Notes, 1)
}

func TestDefaultSlot(t *testing.T) {
	slot := DefaultSlot(4)
	assert.Equal(t, "Timer 5", slot.Title)
	assert.Equal(t, DefaultLoopCount, slot.Loop)
	assert.False(t, slot.Running)
}
