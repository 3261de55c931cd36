package main

import (
	"fmt"
	"log"
	"strconv"
	"time"

	"octotimer/internal/audio"
	"octotimer/internal/core/engine"
	"octotimer/internal/core/model"
	"octotimer/internal/platform"
	"octotimer/internal/storage"
	"octotimer/internal/ui/tray"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
)

const appName = "OctoTimer"

func main() {
	settings, err := storage.LoadSettings(appName)
	if err != nil {
		log.Printf("load settings: %v", err)
	}

	guard, err := platform.AcquireSingleInstance(appName, settings.StateFilePath)
	if err != nil {
		if detail, probeErr := platform.RunningInstanceDetail(appName); probeErr == nil {
			log.Printf("single instance: %v (state file %s)", err, detail)
		} else {
			log.Printf("single instance: %v", err)
		}
		return
	}
	defer func() {
		_ = guard.Release()
	}()

	stateFile := storage.NewStateFile(settings.StateFilePath)
	stateFile.SetDefaultLoop(settings.DefaultLoop)
	slots, err := stateFile.Load()
	if err != nil {
		log.Printf("restore timers: %v", err)
	}

	player := audio.NewBeepPlayer(settings.DefaultSound1, settings.DefaultSound2)
	eng := engine.New(stateFile, player, engine.Config{})
	eng.Restore(slots)

	fyneApp := app.NewWithID("io.octotimer.app")
	desktopApp, ok := fyneApp.(desktop.App)
	if !ok {
		log.Printf("system tray unsupported on this platform")
		return
	}

	window := fyneApp.NewWindow(appName)
	ui := buildMainWindow(window, eng, settings)
	window.SetCloseIntercept(func() {
		window.Hide()
	})
	desktopApp.SetSystemTrayWindow(window)

	var trayManager *tray.Manager
	trayManager = tray.New(desktopApp, tray.Callbacks{
		OnShowWindow: func() {
			window.Show()
		},
		OnTogglePause: func() {
			slot := eng.ActiveSlot()
			if !slot.Running {
				return
			}
			if slot.Paused {
				if err := eng.Resume(false, model.Duration{}); err != nil {
					log.Printf("resume: %v", err)
					return
				}
				trayManager.SetPaused(false)
			} else {
				if err := eng.Pause(); err != nil {
					log.Printf("pause: %v", err)
					return
				}
				trayManager.SetPaused(true)
			}
			fyne.Do(ui.refresh)
		},
		OnStopAlarm: func() {
			eng.StopAlarm()
			trayManager.SetAlarmActive(false)
		},
		OnQuit: func() {
			eng.Close()
			fyneApp.Quit()
		},
	})

	events := eng.Subscribe(8)
	go func() {
		for event := range events {
			handleEvent(event, fyneApp, ui, trayManager)
		}
	}()

	eng.Run()
	window.Show()
	fyneApp.Run()
}

func handleEvent(event engine.Event, fyneApp fyne.App, ui *mainWindow, trayManager *tray.Manager) {
	switch event.Type {
	case engine.EventRemaining:
		remaining := formatRemaining(event.Remaining)
		fyne.Do(func() {
			ui.remaining.SetText(remaining)
		})
		trayManager.SetStatus(fmt.Sprintf("%s %s", event.Title, remaining))
	case engine.EventPauseFlash:
		remaining := formatRemaining(event.Remaining)
		fyne.Do(func() {
			ui.remaining.SetText(remaining)
		})
	case engine.EventFinished:
		fyneApp.SendNotification(fyne.NewNotification(
			"Timer Finished!",
			fmt.Sprintf("Timer %d %q has finished!", event.Slot+1, event.Title),
		))
		trayManager.SetAlarmActive(true)
		trayManager.SetStatus(fmt.Sprintf("%s finished", event.Title))
		fyne.Do(ui.refresh)
	case engine.EventSaveError:
		log.Printf("save state: %s", event.Message)
	case engine.EventAlarmError:
		log.Printf("play alarm: %s", event.Message)
	}
}

// mainWindow is the minimal live view over the engine: slot switcher,
// duration fields, and start/pause controls.
type mainWindow struct {
	eng       *engine.Engine
	settings  storage.Settings
	slotLabel *widget.Label
	title     *widget.Entry
	remaining *widget.Label
	days      *widget.Entry
	hours     *widget.Entry
	minutes   *widget.Entry
	seconds   *widget.Entry
	update    *widget.Check
	startBtn  *widget.Button
	pauseBtn  *widget.Button
}

func buildMainWindow(window fyne.Window, eng *engine.Engine, settings storage.Settings) *mainWindow {
	ui := &mainWindow{
		eng:       eng,
		settings:  settings,
		slotLabel: widget.NewLabel("Timer 1"),
		title:     widget.NewEntry(),
		remaining: widget.NewLabel("00:00:00"),
		days:      widget.NewEntry(),
		hours:     widget.NewEntry(),
		minutes:   widget.NewEntry(),
		seconds:   widget.NewEntry(),
	}
	ui.update = widget.NewCheck("Update timer on resume", nil)

	ui.title.OnChanged = func(text string) {
		eng.SetTitle(text)
	}

	prev := widget.NewButton("<", func() {
		ui.switchBy(-1)
	})
	next := widget.NewButton(">", func() {
		ui.switchBy(1)
	})

	ui.startBtn = widget.NewButton("Start", func() {
		slot := eng.ActiveSlot()
		if slot.Running {
			if err := eng.Stop(); err != nil {
				log.Printf("stop: %v", err)
			}
		} else {
			if err := eng.SetDuration(ui.enteredDuration()); err != nil {
				log.Printf("set duration: %v", err)
			}
			if err := eng.Start(); err != nil {
				log.Printf("start: %v", err)
			}
		}
		ui.refresh()
	})

	ui.pauseBtn = widget.NewButton("Pause", func() {
		slot := eng.ActiveSlot()
		switch {
		case !slot.Running:
		case slot.Paused:
			var err error
			if ui.update.Checked {
				err = eng.Resume(true, ui.enteredDuration())
			} else {
				err = eng.Resume(false, model.Duration{})
			}
			if err != nil {
				log.Printf("resume: %v", err)
			}
			ui.update.SetChecked(false)
		default:
			if err := eng.Pause(); err != nil {
				log.Printf("pause: %v", err)
			}
		}
		ui.refresh()
	})

	exportBtn := widget.NewButton("Export preset", func() {
		dialog.ShowFileSave(func(writer fyne.URIWriteCloser, err error) {
			if err != nil || writer == nil {
				return
			}
			path := writer.URI().Path()
			_ = writer.Close()
			if err := storage.SavePreset(path, eng.Slots()); err != nil {
				log.Printf("export preset: %v", err)
				return
			}
			ui.rememberPreset(path)
		}, window)
	})
	importBtn := widget.NewButton("Import preset", func() {
		dialog.ShowFileOpen(func(reader fyne.URIReadCloser, err error) {
			if err != nil || reader == nil {
				return
			}
			path := reader.URI().Path()
			_ = reader.Close()
			slots, err := storage.LoadPreset(path, eng.Slots())
			if err != nil {
				log.Printf("import preset: %v", err)
				return
			}
			eng.ApplyPreset(slots)
			ui.rememberPreset(path)
			ui.refresh()
		}, window)
	})

	deleteBtn := widget.NewButton("Delete preset", func() {
		path := ui.settings.LastPresetPath
		if path == "" {
			return
		}
		dialog.ShowConfirm("Delete preset", fmt.Sprintf("Delete %s?", path), func(confirmed bool) {
			if !confirmed {
				return
			}
			if err := storage.DeletePreset(path); err != nil {
				log.Printf("delete preset: %v", err)
				return
			}
			ui.rememberPreset("")
		}, window)
	})

	durations := container.NewGridWithColumns(4, ui.days, ui.hours, ui.minutes, ui.seconds)
	window.SetContent(container.NewVBox(
		container.NewHBox(prev, ui.slotLabel, next),
		ui.title,
		ui.remaining,
		durations,
		ui.update,
		container.NewHBox(ui.startBtn, ui.pauseBtn),
		container.NewHBox(exportBtn, importBtn, deleteBtn),
	))

	ui.refresh()
	return ui
}

func (ui *mainWindow) rememberPreset(path string) {
	ui.settings.LastPresetPath = path
	if err := storage.SaveSettings(appName, ui.settings); err != nil {
		log.Printf("save settings: %v", err)
	}
}

func (ui *mainWindow) switchBy(step int) {
	index := (ui.eng.ActiveIndex() + step + model.NumSlots) % model.NumSlots
	if err := ui.eng.SwitchActive(index); err != nil {
		log.Printf("switch timer: %v", err)
		return
	}
	ui.refresh()
}

func (ui *mainWindow) refresh() {
	slot := ui.eng.ActiveSlot()
	ui.slotLabel.SetText(fmt.Sprintf("Timer %d", ui.eng.ActiveIndex()+1))
	ui.title.SetText(slot.Title)
	ui.days.SetText(strconv.Itoa(slot.Duration.Days))
	ui.hours.SetText(strconv.Itoa(slot.Duration.Hours))
	ui.minutes.SetText(strconv.Itoa(slot.Duration.Minutes))
	ui.seconds.SetText(strconv.Itoa(slot.Duration.Seconds))

	if slot.Running {
		ui.startBtn.SetText("Stop")
	} else {
		ui.startBtn.SetText("Start")
		ui.remaining.SetText("00:00:00")
	}
	if slot.Paused {
		ui.pauseBtn.SetText("Resume")
	} else {
		ui.pauseBtn.SetText("Pause")
	}
}

func (ui *mainWindow) enteredDuration() model.Duration {
	return model.Duration{
		Days:    parseField(ui.days.Text),
		Hours:   parseField(ui.hours.Text),
		Minutes: parseField(ui.minutes.Text),
		Seconds: parseField(ui.seconds.Text),
	}
}

func parseField(text string) int {
	value, err := strconv.Atoi(text)
	if err != nil || value < 0 {
		return 0
	}
	return value
}

// formatRemaining renders a countdown as HH:MM:SS, with a day prefix once the
// remaining time exceeds a day.
func formatRemaining(remaining time.Duration) string {
	total := int(remaining.Seconds())
	if total < 0 {
		total = 0
	}
	days := total / 86400
	total %= 86400
	hours := total / 3600
	total %= 3600
	minutes := total / 60
	seconds := total % 60
	if days > 0 {
		return fmt.Sprintf("%dd %02d:%02d:%02d", days, hours, minutes, seconds)
	}
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
}
