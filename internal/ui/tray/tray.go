// Package tray manages the system tray menu.
package tray

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
)

// Callbacks defines tray action handlers.
type Callbacks struct {
	OnShowWindow  func()
	OnTogglePause func()
	OnStopAlarm   func()
	OnQuit        func()
}

// Manager handles system tray state.
type Manager struct {
	app         desktop.App
	statusItem  *fyne.MenuItem
	showItem    *fyne.MenuItem
	pauseItem   *fyne.MenuItem
	stopAlarm   *fyne.MenuItem
	callbacks   Callbacks
	paused      bool
	statusLabel string
}

// New creates a tray manager with the provided callbacks.
func New(app desktop.App, callbacks Callbacks) *Manager {
	manager := &Manager{
		app:       app,
		callbacks: callbacks,
	}

	manager.statusItem = fyne.NewMenuItem("Status: idle", nil)
	manager.statusItem.Disabled = true

	manager.showItem = fyne.NewMenuItem("Show timers", func() {
		if manager.callbacks.OnShowWindow != nil {
			manager.callbacks.OnShowWindow()
		}
	})

	manager.pauseItem = fyne.NewMenuItem("Pause timer", func() {
		if manager.callbacks.OnTogglePause != nil {
			manager.callbacks.OnTogglePause()
		}
	})

	manager.stopAlarm = fyne.NewMenuItem("Stop alarm", func() {
		if manager.callbacks.OnStopAlarm != nil {
			manager.callbacks.OnStopAlarm()
		}
	})
	manager.stopAlarm.Disabled = true

	app.SetSystemTrayMenu(manager.buildMenu())
	return manager
}

// SetStatus updates the status label shown at the top of the menu.
func (manager *Manager) SetStatus(status string) {
	manager.statusLabel = status
	manager.refresh()
}

// SetPaused updates the pause menu entry.
func (manager *Manager) SetPaused(paused bool) {
	manager.paused = paused
	if paused {
		manager.pauseItem.Label = "Resume timer"
	} else {
		manager.pauseItem.Label = "Pause timer"
	}
	manager.refresh()
}

// SetAlarmActive enables the stop-alarm entry while an alarm sounds.
func (manager *Manager) SetAlarmActive(active bool) {
	manager.stopAlarm.Disabled = !active
	manager.refresh()
}

func (manager *Manager) buildMenu() *fyne.Menu {
	quit := fyne.NewMenuItem("Quit", func() {
		if manager.callbacks.OnQuit != nil {
			manager.callbacks.OnQuit()
		}
	})
	return fyne.NewMenu("OctoTimer",
		manager.statusItem,
		manager.showItem,
		manager.pauseItem,
		manager.stopAlarm,
		quit,
	)
}

func (manager *Manager) refresh() {
	status := manager.statusLabel
	if status == "" {
		status = "idle"
	}
	if manager.paused {
		status = fmt.Sprintf("%s (paused)", status)
	}
	manager.statusItem.Label = fmt.Sprintf("Status: %s", status)
	if manager.app != nil {
		manager.app.SetSystemTrayMenu(manager.buildMenu())
	}
}
