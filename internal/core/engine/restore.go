package engine

import (
	"time"

	"octotimer/internal/core/model"
)

// Reconcile adjusts a slot loaded from disk against the current wall clock.
// A slot persisted as running whose end time has already passed expired while
// the process was not alive: it comes back idle, and the second return value
// reports that its expiry must not be notified again. A paused slot keeps its
// frozen remaining time regardless of its stale end time.
func Reconcile(slot model.Slot, now time.Time) (model.Slot, bool) {
	if slot.Expired(now) {
		slot.ClearRun()
		return slot, true
	}
	return slot, false
}

// Restore replaces the slot array with persisted state, reconciling each slot
// against the wall clock. Call before Run so the sweep's first pass never
// sees a stale expired record.
func (e *Engine) Restore(slots [model.NumSlots]model.Slot) {
	now := e.options.Clock()
	e.mu.Lock()
	defer e.mu.Unlock()

	for i := range slots {
		slot, fired := Reconcile(slots[i], now)
		e.slots[i] = slot
		e.fired[i] = fired
	}
}

// ApplyPreset replaces the slot array with an imported configuration
// snapshot. Presets carry no live countdown state, so every slot comes back
// idle and eligible to fire.
func (e *Engine) ApplyPreset(slots [model.NumSlots]model.Slot) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i := range slots {
		slots[i].ClearRun()
		e.slots[i] = slots[i]
		e.fired[i] = false
	}
	e.persistLocked(e.options.Clock())
}
