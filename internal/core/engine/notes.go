package engine

import "octotimer/internal/core/model"

// Note and configuration operations act on the active slot and persist on
// every successful state change.

// AddNote appends a note to the active slot.
func (e *Engine) AddNote(note model.Note) error {
	if err := note.Validate(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	slot := &e.slots[e.active]
	slot.Notes = append(slot.Notes, note)
	e.persistLocked(e.options.Clock())
	return nil
}

// UpdateNote replaces the active slot's note with the same ID. No note is
// mutated when validation fails.
func (e *Engine) UpdateNote(note model.Note) error {
	if err := note.Validate(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	slot := &e.slots[e.active]
	for i := range slot.Notes {
		if slot.Notes[i].ID == note.ID {
			slot.Notes[i] = note
			e.persistLocked(e.options.Clock())
			return nil
		}
	}
	return ErrNoteNotFound
}

// DeleteNote removes the note at index from the active slot.
func (e *Engine) DeleteNote(index int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	slot := &e.slots[e.active]
	if index < 0 || index >= len(slot.Notes) {
		return ErrNoteNotFound
	}
	slot.Notes = append(slot.Notes[:index], slot.Notes[index+1:]...)
	e.persistLocked(e.options.Clock())
	return nil
}

// MoveNote swaps the note at index with its neighbor. Moving past either end
// of the list is a no-op.
func (e *Engine) MoveNote(index int, up bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	slot := &e.slots[e.active]
	if index < 0 || index >= len(slot.Notes) {
		return ErrNoteNotFound
	}

	target := index + 1
	if up {
		target = index - 1
	}
	if target < 0 || target >= len(slot.Notes) {
		return nil
	}
	slot.Notes[index], slot.Notes[target] = slot.Notes[target], slot.Notes[index]
	e.persistLocked(e.options.Clock())
	return nil
}

// MarkNote advances the completion of the note at index: checks a checkbox,
// increments a counter. Plain text notes are unaffected.
func (e *Engine) MarkNote(index int) error {
	return e.markNote(index, true)
}

// UnmarkNote reverses MarkNote.
func (e *Engine) UnmarkNote(index int) error {
	return e.markNote(index, false)
}

func (e *Engine) markNote(index int, mark bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	slot := &e.slots[e.active]
	if index < 0 || index >= len(slot.Notes) {
		return ErrNoteNotFound
	}
	if mark {
		slot.Notes[index].Mark()
	} else {
		slot.Notes[index].Unmark()
	}
	e.persistLocked(e.options.Clock())
	return nil
}

// SetTitle renames the active slot.
func (e *Engine) SetTitle(title string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.slots[e.active].Title = title
	e.persistLocked(e.options.Clock())
}

// SetDuration changes the active slot's configured duration, normalized and
// capped. Rejected while the slot is counting down unpaused.
func (e *Engine) SetDuration(duration model.Duration) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	slot := &e.slots[e.active]
	if slot.Running && !slot.Paused {
		return ErrTimerRunning
	}
	slot.Duration = duration.Normalize()
	e.persistLocked(e.options.Clock())
	return nil
}

// SetSounds changes the active slot's alarm sounds. An empty secondary falls
// back to the primary.
func (e *Engine) SetSounds(primary, secondary string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	slot := &e.slots[e.active]
	slot.Sound1 = primary
	if secondary == "" {
		secondary = primary
	}
	slot.Sound2 = secondary
	e.persistLocked(e.options.Clock())
}

// SetLoop changes how many times the active slot's alarm repeats, 0 meaning
// until stopped.
func (e *Engine) SetLoop(loop int) error {
	if loop < 0 {
		return ErrInvalidLoopCount
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.slots[e.active].Loop = loop
	e.persistLocked(e.options.Clock())
	return nil
}
