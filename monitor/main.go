package main

import (
	"flag"
	"log"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/itohio/gohe/pkg/config"
	"github.com/itohio/gohe/pkg/view"
)

func main() {
	var (
		portFlag   = flag.String("p", "", "Serial port override (e.g., COM3 or /dev/ttyACM0)")
		configFlag = flag.String("config", "config.yaml", "Configuration file path")
		mockFlag   = flag.Bool("mock", false, "Simulate the board instead of reading the serial port")
	)
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Override serial port if provided via command line
	if *portFlag != "" {
		cfg.Serial.Port = *portFlag
	}

	application := app.NewWithID("com.itohio.gohe")

	window := application.NewWindow("Hall Effect Matrix Monitor")
	window.Resize(fyne.NewSize(900, 600))
	window.CenterOnScreen()

	state := &appState{
		cfg:     cfg,
		cfgPath: *configFlag,
		window:  window,
		useMock: *mockFlag,
	}
	state.grid = newGrid(cfg)
	state.grid.OnTapped = state.handleTap

	state.toolbar = createToolbar(state)
	window.SetContent(containerFor(state))
	window.SetOnClosed(func() {
		state.session.close()
	})
	window.ShowAndRun()
}

// appState holds the application state.
type appState struct {
	cfg     *config.Config
	cfgPath string
	window  fyne.Window
	useMock bool

	toolbar    fyne.CanvasObject
	grid       *view.KeyGrid
	connectBtn *widget.Button
	releaseBtn *widget.Button
	status     *widget.Label

	session *session // nil if not connected
}

func newGrid(cfg *config.Config) *view.KeyGrid {
	return view.NewKeyGrid(cfg.Board.Rows, cfg.Board.Cols, cfg.Layout().Mask, cfg.Calibration.Displacement.MaxOutput)
}

// containerFor lays out the toolbar above the key grid.
func containerFor(state *appState) fyne.CanvasObject {
	return container.NewBorder(state.toolbar, nil, nil, nil, state.grid)
}

// createToolbar creates the toolbar with Connect, Settings and Release buttons.
func createToolbar(state *appState) fyne.CanvasObject {
	state.connectBtn = widget.NewButtonWithIcon("", theme.LoginIcon(), func() {
		handleConnect(state)
	})

	settingsBtn := widget.NewButtonWithIcon("", theme.SettingsIcon(), func() {
		showSettingsDialog(state)
	})

	// Releases every simulated key
	state.releaseBtn = widget.NewButtonWithIcon("", theme.ContentClearIcon(), func() {
		state.session.releaseAll()
	})
	state.releaseBtn.Disable()

	state.status = widget.NewLabel("Disconnected")

	return container.NewBorder(
		nil,
		nil,
		container.NewHBox(state.connectBtn, settingsBtn, state.releaseBtn),
		nil,
		state.status,
	)
}
