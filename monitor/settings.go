package main

import (
	"fmt"
	"strconv"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"github.com/itohio/gohe/pkg/analog"
	"github.com/itohio/gohe/pkg/calib"
	"github.com/itohio/gohe/pkg/link"
	"github.com/itohio/gohe/pkg/matrix"
)

// showSettingsDialog displays a settings dialog with tabs for the editable
// configuration. Changes take effect on the next connect.
func showSettingsDialog(state *appState) {
	tabs := container.NewAppTabs(
		createSerialTab(state),
		createCurvesTab(state),
		createKeysTab(state),
		createRestTab(state),
		createMockTab(state),
	)

	content := container.NewBorder(nil, nil, nil, nil, tabs)
	content.Resize(fyne.NewSize(600, 500))

	d := dialog.NewCustom("Settings", "Close", content, state.window)
	d.Resize(fyne.NewSize(600, 500))
	d.Show()
}

// save validates and writes the configuration.
func save(state *appState) {
	if err := state.cfg.Validate(); err != nil {
		dialog.ShowError(err, state.window)
		return
	}
	if err := state.cfg.Save(state.cfgPath); err != nil {
		dialog.ShowError(fmt.Errorf("failed to save config: %w", err), state.window)
	}
}

func parseUint8(s string, dst *uint8) {
	if v, err := strconv.ParseUint(s, 10, 8); err == nil {
		*dst = uint8(v)
	}
}

func parseUint16(s string, dst *uint16) {
	if v, err := strconv.ParseUint(s, 10, 16); err == nil {
		*dst = uint16(v)
	}
}

func parseFloat32(s string, dst *float32) {
	if v, err := strconv.ParseFloat(s, 32); err == nil {
		*dst = float32(v)
	}
}

func parseDuration(s string, dst *time.Duration) {
	if v, err := time.ParseDuration(s); err == nil {
		*dst = v
	}
}

// createSerialTab creates the Serial configuration tab.
func createSerialTab(state *appState) *container.TabItem {
	portOptions := []string{}
	if ports, err := link.Ports(); err == nil {
		for _, port := range ports {
			portOptions = append(portOptions, port.Name)
		}
	}

	// Add current port if not in list
	currentPort := state.cfg.Serial.Port
	found := false
	for _, opt := range portOptions {
		if opt == currentPort {
			found = true
			break
		}
	}
	if !found && currentPort != "" {
		portOptions = append(portOptions, currentPort)
	}

	portSelect := widget.NewSelect(portOptions, nil)
	if currentPort != "" {
		portSelect.SetSelected(currentPort)
	}

	baudEntry := widget.NewEntry()
	baudEntry.SetText(strconv.Itoa(state.cfg.Serial.BaudRate))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Serial Port", Widget: portSelect},
			{Text: "Baud Rate", Widget: baudEntry},
		},
		OnSubmit: func() {
			if portSelect.Selected != "" {
				state.cfg.Serial.Port = portSelect.Selected
			}
			if baud, err := strconv.Atoi(baudEntry.Text); err == nil && baud > 0 {
				state.cfg.Serial.BaudRate = baud
			}
			save(state)
		},
	}

	return container.NewTabItem("Serial", form)
}

// curveItems creates form items editing a curve in place on submit.
func curveItems(prefix string, c *calib.Curve) ([]*widget.FormItem, func()) {
	fields := []struct {
		label string
		value *float32
	}{
		{"A", &c.A}, {"B", &c.B}, {"C", &c.C}, {"D", &c.D},
	}

	var items []*widget.FormItem
	var entries []*widget.Entry
	for _, f := range fields {
		e := widget.NewEntry()
		e.SetText(strconv.FormatFloat(float64(*f.value), 'g', -1, 32))
		entries = append(entries, e)
		items = append(items, &widget.FormItem{Text: prefix + " " + f.label, Widget: e})
	}
	maxEntry := widget.NewEntry()
	maxEntry.SetText(strconv.Itoa(int(c.MaxOutput)))
	items = append(items, &widget.FormItem{Text: prefix + " max output", Widget: maxEntry})

	return items, func() {
		for i, f := range fields {
			parseFloat32(entries[i].Text, f.value)
		}
		parseUint8(maxEntry.Text, &c.MaxOutput)
	}
}

// createCurvesTab creates the calibration curves tab.
func createCurvesTab(state *appState) *container.TabItem {
	displacement, applyDisplacement := curveItems("Displacement", &state.cfg.Calibration.Displacement)
	joystick, applyJoystick := curveItems("Joystick", &state.cfg.Calibration.Joystick)

	form := &widget.Form{
		Items: append(displacement, joystick...),
		OnSubmit: func() {
			applyDisplacement()
			applyJoystick()
			save(state)
		},
	}

	return container.NewTabItem("Curves", container.NewVScroll(form))
}

// createKeysTab creates the default key actuation tab.
func createKeysTab(state *appState) *container.TabItem {
	def := &state.cfg.Defaults

	kinds := []string{}
	for k := analog.Threshold; k <= analog.DKS; k++ {
		kinds = append(kinds, k.String())
	}
	modeSelect := widget.NewSelect(kinds, nil)
	modeSelect.SetSelected(def.Mode)

	actuationEntry := widget.NewEntry()
	actuationEntry.SetText(strconv.Itoa(int(def.Actuation)))
	releaseEntry := widget.NewEntry()
	releaseEntry.SetText(strconv.Itoa(int(def.Release)))
	pressEntry := widget.NewEntry()
	pressEntry.SetText(strconv.Itoa(int(def.PressSensitivity)))
	releaseSensEntry := widget.NewEntry()
	releaseSensEntry.SetText(strconv.Itoa(int(def.ReleaseSensitivity)))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Mode", Widget: modeSelect},
			{Text: "Actuation", Widget: actuationEntry},
			{Text: "Release", Widget: releaseEntry},
			{Text: "Press Sensitivity", Widget: pressEntry},
			{Text: "Release Sensitivity", Widget: releaseSensEntry},
		},
		OnSubmit: func() {
			if modeSelect.Selected != "" {
				def.Mode = modeSelect.Selected
			}
			parseUint8(actuationEntry.Text, &def.Actuation)
			parseUint8(releaseEntry.Text, &def.Release)
			parseUint8(pressEntry.Text, &def.PressSensitivity)
			parseUint8(releaseSensEntry.Text, &def.ReleaseSensitivity)
			save(state)
		},
	}

	return container.NewTabItem("Keys", form)
}

// createRestTab creates the rest recapture tab.
func createRestTab(state *appState) *container.TabItem {
	policySelect := widget.NewSelect([]string{matrix.RestIdle.String(), matrix.RestWindow.String()}, nil)
	policySelect.SetSelected(state.cfg.Rest.Policy)

	periodEntry := widget.NewEntry()
	periodEntry.SetText(state.cfg.Rest.Period.String())

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Policy", Widget: policySelect},
			{Text: "Period", Widget: periodEntry},
		},
		OnSubmit: func() {
			if policySelect.Selected != "" {
				state.cfg.Rest.Policy = policySelect.Selected
			}
			parseDuration(periodEntry.Text, &state.cfg.Rest.Period)
			save(state)
		},
	}

	return container.NewTabItem("Rest", form)
}

// createMockTab creates the simulated board tab.
func createMockTab(state *appState) *container.TabItem {
	mock := &state.cfg.Mock

	restEntry := widget.NewEntry()
	restEntry.SetText(strconv.Itoa(int(mock.Rest)))
	swingEntry := widget.NewEntry()
	swingEntry.SetText(strconv.Itoa(int(mock.Swing)))
	northCheck := widget.NewCheck("", nil)
	northCheck.SetChecked(mock.North)
	intervalEntry := widget.NewEntry()
	intervalEntry.SetText(mock.ScanInterval.String())

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Rest offset", Widget: restEntry},
			{Text: "Full travel swing", Widget: swingEntry},
			{Text: "North pole magnets", Widget: northCheck},
			{Text: "Scan interval", Widget: intervalEntry},
		},
		OnSubmit: func() {
			parseUint16(restEntry.Text, &mock.Rest)
			parseUint16(swingEntry.Text, &mock.Swing)
			mock.North = northCheck.Checked
			parseDuration(intervalEntry.Text, &mock.ScanInterval)
			save(state)
		},
	}

	return container.NewTabItem("Mock", form)
}
