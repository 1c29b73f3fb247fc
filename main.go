package main

import (
	"embed"
	"log/slog"

	"github.com/wailsapp/wails/v3/pkg/application"
	"github.com/wailsapp/wails/v3/pkg/events"

	"go.aimuz.me/overvoice/internal/app"
)

//go:embed all:frontend/dist
var assets embed.FS

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	slog.Info("starting app", "version", version, "commit", commit, "date", date)
	appService := app.New(version)

	wailsApp := application.New(application.Options{
		Name:        "Overvoice",
		Description: "Voice channel overlay for Discord",
		Services: []application.Service{
			application.NewService(appService),
		},
		Assets: application.AssetOptions{
			Handler: application.BundledAssetFileServer(assets),
		},
		Mac: application.MacOptions{
			// Don't quit when all windows are closed (we have a system tray)
			ApplicationShouldTerminateAfterLastWindowClosed: false,
		},
	})

	// Create overlay window
	overlayWindow := wailsApp.Window.NewWithOptions(application.WebviewWindowOptions{
		Title:       "Overvoice",
		Width:       280,
		Height:      480,
		URL:         "/",
		Frameless:   true,
		AlwaysOnTop: true,
		Mac: application.MacWindow{
			TitleBar:                application.MacTitleBarHiddenInsetUnified,
			InvisibleTitleBarHeight: 0,
		},
	})

	// Intercept window close: hide instead of destroy so tray can reopen
	overlayWindow.RegisterHook(events.Common.WindowClosing, func(e *application.WindowEvent) {
		e.Cancel() // Prevent actual close
		overlayWindow.Hide()
	})

	// Initialize service with app and window references
	appService.Init(wailsApp, overlayWindow)

	// Setup system tray
	systemTray := wailsApp.SystemTray.New()
	systemTray.SetLabel("OV")

	// Create tray menu
	trayMenu := wailsApp.NewMenu()
	trayMenu.Add("Toggle Overlay").
		SetAccelerator("CmdOrCtrl+Shift+O").
		OnClick(func(ctx *application.Context) {
			appService.ToggleOverlay()
		})
	trayMenu.Add("Show Overlay").OnClick(func(ctx *application.Context) {
		appService.ShowOverlay()
	})

	trayMenu.AddSeparator()
	trayMenu.Add("Quit").
		SetAccelerator("CmdOrCtrl+Q").
		OnClick(func(ctx *application.Context) {
			appService.Shutdown()
			wailsApp.Quit()
		})

	systemTray.SetMenu(trayMenu)

	// Run application
	if err := wailsApp.Run(); err != nil {
		slog.Error("run app", "error", err)
	}
}
