// Package engine holds the eight timer slots and runs the countdown logic:
// the slot state machine, the periodic tick scheduler, and the restore
// reconciliation applied after a restart.
package engine

import (
	"sync"
	"time"

	"octotimer/internal/core/model"
)

// Persister writes the full eight-slot state to durable storage. A failed
// write is non-fatal: in-memory state stays correct and the next successful
// write reflects current truth.
type Persister interface {
	Save(slots [model.NumSlots]model.Slot, now time.Time) error
}

// Player is the opaque alarm playback collaborator.
type Player interface {
	Play(primary, secondary string, loop int) error
	Stop()
	Playing() bool
}

// Config contains runtime options for the Engine.
type Config struct {
	ActiveTick time.Duration // active slot recomputation period
	SweepTick  time.Duration // background expiry sweep period
	Clock      func() time.Time
}

// Engine owns the slot array. The array is the single source of truth: every
// operation mutates it directly, so there is no live working copy that could
// go stale before a persistence write or a slot switch.
type Engine struct {
	mu        sync.Mutex
	slots     [model.NumSlots]model.Slot
	active    int
	fired     [model.NumSlots]bool
	saving    bool
	saveDone  *sync.Cond
	flashTick int

	persister Persister
	player    Player
	options   Config
	events    []chan Event
	stopCh    chan struct{}
	running   bool
}

// New creates an engine with default idle slots.
func New(persister Persister, player Player, options Config) *Engine {
	if options.ActiveTick <= 0 {
		options.ActiveTick = 500 * time.Millisecond
	}
	if options.SweepTick <= 0 {
		options.SweepTick = time.Second
	}
	if options.Clock == nil {
		options.Clock = time.Now
	}

	eng := &Engine{
		persister: persister,
		player:    player,
		options:   options,
		stopCh:    make(chan struct{}),
	}
	eng.saveDone = sync.NewCond(&eng.mu)
	for i := range eng.slots {
		eng.slots[i] = model.DefaultSlot(i)
	}
	return eng
}

// Subscribe registers a new observer channel.
func (e *Engine) Subscribe(buffer int) <-chan Event {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Event, buffer)
	e.mu.Lock()
	e.events = append(e.events, ch)
	e.mu.Unlock()
	return ch
}

// Run launches the tick loop. Restore must have been applied first so the
// sweep never observes a stale expired record from a previous process.
func (e *Engine) Run() {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return
	}
	e.running = true
	e.mu.Unlock()

	go e.run()
}

// Close terminates the tick loop and closes observer channels.
func (e *Engine) Close() {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return
	}
	close(e.stopCh)
	e.running = false
	events := e.events
	e.events = nil
	e.mu.Unlock()

	for _, ch := range events {
		close(ch)
	}
}

// run drives both periodic activities from one goroutine, so the active tick
// and the background sweep can never touch the same slot concurrently.
func (e *Engine) run() {
	active := time.NewTicker(e.options.ActiveTick)
	defer active.Stop()
	sweep := time.NewTicker(e.options.SweepTick)
	defer sweep.Stop()

	for {
		select {
		case <-e.stopCh:
			return
		case <-active.C:
			e.tickActive(e.options.Clock())
		case <-sweep.C:
			e.sweep(e.options.Clock())
		}
	}
}

// ActiveIndex returns the index of the currently active slot.
func (e *Engine) ActiveIndex() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active
}

// ActiveSlot returns a copy of the currently active slot.
func (e *Engine) ActiveSlot() model.Slot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.slots[e.active]
}

// Slot returns a copy of the slot at index.
func (e *Engine) Slot(index int) (model.Slot, error) {
	if index < 0 || index >= model.NumSlots {
		return model.Slot{}, ErrSlotIndex
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.slots[index], nil
}

// Slots returns a copy of the full slot array.
func (e *Engine) Slots() [model.NumSlots]model.Slot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.slots
}

// SwitchActive rebinds the active index. The freshly activated slot becomes
// eligible to notify again if it expires while active.
func (e *Engine) SwitchActive(index int) error {
	if index < 0 || index >= model.NumSlots {
		return ErrSlotIndex
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.active = index
	e.fired[index] = false
	e.flashTick = 0
	return nil
}

// Start begins the active slot's countdown from its configured duration,
// clamped at the 35 day cap. A zero duration is rejected with no state change.
func (e *Engine) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.saving {
		return ErrSaveInProgress
	}

	slot := &e.slots[e.active]
	if slot.Running {
		return ErrTimerRunning
	}
	total := slot.Duration.TotalSeconds()
	if total <= 0 {
		return ErrInvalidDuration
	}

	now := e.options.Clock()
	slot.Duration = model.DurationFromSeconds(total)
	slot.Running = true
	slot.Paused = false
	slot.EndTime = now.Add(time.Duration(total) * time.Second)
	slot.PauseTime = time.Time{}
	slot.Remaining = total
	e.fired[e.active] = false

	e.persistLocked(now)
	return nil
}

// Stop cancels the active slot's countdown and clears all live state.
func (e *Engine) Stop() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.saving {
		return ErrSaveInProgress
	}

	slot := &e.slots[e.active]
	if !slot.Running {
		return ErrTimerNotRunning
	}
	slot.ClearRun()
	e.fired[e.active] = false

	e.persistLocked(e.options.Clock())
	return nil
}

// Pause freezes the active slot's countdown. The frozen remaining time
// becomes authoritative until resume. Pausing an already paused slot is a
// no-op.
func (e *Engine) Pause() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.saving {
		return ErrSaveInProgress
	}

	slot := &e.slots[e.active]
	if !slot.Running {
		return ErrTimerNotRunning
	}
	if slot.Paused {
		return nil
	}

	now := e.options.Clock()
	remaining := slot.EndTime.Sub(now)
	if remaining < 0 {
		remaining = 0
	}
	slot.Paused = true
	slot.PauseTime = now
	slot.Remaining = int(remaining / time.Second)
	e.flashTick = 0

	e.persistLocked(now)
	return nil
}

// Resume continues a paused countdown. Without an update the pause interval
// is added back onto the end time, preserving the remaining time exactly.
// With an update the frozen remaining time is discarded and the countdown
// restarts from the given duration.
func (e *Engine) Resume(update bool, duration model.Duration) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.saving {
		return ErrSaveInProgress
	}

	slot := &e.slots[e.active]
	if !slot.Running {
		return ErrTimerNotRunning
	}
	if !slot.Paused {
		return ErrTimerNotPaused
	}

	now := e.options.Clock()
	if update {
		total := duration.TotalSeconds()
		if total <= 0 {
			return ErrInvalidDuration
		}
		slot.Duration = model.DurationFromSeconds(total)
		slot.EndTime = now.Add(time.Duration(total) * time.Second)
		slot.Remaining = total
	} else {
		slot.EndTime = slot.EndTime.Add(now.Sub(slot.PauseTime))
	}
	slot.Paused = false
	slot.PauseTime = time.Time{}

	e.persistLocked(now)
	return nil
}

// tickActive recomputes the active slot's remaining time. A paused slot only
// gets a cosmetic flash event; an expired slot takes the expire transition.
func (e *Engine) tickActive(now time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()

	slot := &e.slots[e.active]
	if !slot.Running {
		return
	}

	if slot.Paused {
		// One accent tick in four: a two second cycle at the 500ms period.
		e.emitLocked(Event{
			Type:      EventPauseFlash,
			Slot:      e.active,
			Title:     slot.Title,
			Remaining: time.Duration(slot.Remaining) * time.Second,
			Accent:    e.flashTick%4 == 0,
			At:        now,
		})
		e.flashTick++
		return
	}

	remaining := slot.EndTime.Sub(now)
	if remaining <= 0 {
		e.expireLocked(e.active, now)
		return
	}

	slot.Remaining = int(remaining / time.Second)
	e.emitLocked(Event{
		Type:      EventRemaining,
		Slot:      e.active,
		Title:     slot.Title,
		Remaining: remaining,
		At:        now,
	})
}

// sweep fires expiry for every slot except the active one, which the active
// tick owns. A slot fires at most once until it is restarted or reactivated.
func (e *Engine) sweep(now time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()

	expired := false
	for i := range e.slots {
		if i == e.active {
			continue
		}
		if !e.slots[i].Expired(now) || e.fired[i] {
			continue
		}
		e.fired[i] = true
		e.expireSlotLocked(i, now)
		expired = true
	}
	if expired {
		e.persistLocked(now)
	}
}

// expireLocked handles the active slot reaching zero.
func (e *Engine) expireLocked(index int, now time.Time) {
	e.expireSlotLocked(index, now)
	e.persistLocked(now)
}

func (e *Engine) expireSlotLocked(index int, now time.Time) {
	slot := &e.slots[index]
	title := slot.Title
	primary, secondary, loop := slot.Sound1, slot.Sound2, slot.Loop
	slot.ClearRun()

	e.playAlarmLocked(index, primary, secondary, loop, now)
	e.emitLocked(Event{
		Type:  EventFinished,
		Slot:  index,
		Title: title,
		At:    now,
	})
}

func (e *Engine) playAlarmLocked(index int, primary, secondary string, loop int, now time.Time) {
	if e.player == nil {
		return
	}
	if err := e.player.Play(primary, secondary, loop); err != nil {
		e.emitLocked(Event{
			Type:    EventAlarmError,
			Slot:    index,
			Message: err.Error(),
			At:      now,
		})
	}
}

// StopAlarm silences any playing alarm.
func (e *Engine) StopAlarm() {
	if e.player != nil {
		e.player.Stop()
	}
}

// persistLocked writes the full slot array. The engine lock is released for
// the duration of the disk write; the saving flag keeps user-initiated
// start/pause/resume out until the write finishes. At most one write is ever
// in flight: a later writer waits for the current one, then snapshots the
// slot array again so the file always ends up holding current truth.
func (e *Engine) persistLocked(now time.Time) {
	if e.persister == nil {
		return
	}
	for e.saving {
		e.saveDone.Wait()
	}
	snapshot := e.slots
	e.saving = true
	e.mu.Unlock()
	err := e.persister.Save(snapshot, now)
	e.mu.Lock()
	e.saving = false
	e.saveDone.Broadcast()
	if err != nil {
		e.emitLocked(Event{
			Type:    EventSaveError,
			Slot:    e.active,
			Message: err.Error(),
			At:      now,
		})
	}
}

// emitLocked fans an event out to observers without blocking on a full channel.
func (e *Engine) emitLocked(event Event) {
	events := append([]chan Event(nil), e.events...)
	for _, ch := range events {
		select {
		case ch <- event:
		default:
		}
	}
}
