//go:build uifrontend

// coredeck-ui is the system tray app for coredeck.
//
// It shows a tray icon normalized from ~/.coredeck/tray.png (or a built-in
// glyph), lists saved icons in the tray menu and lets the user switch the
// tray icon to any of them. The daemon is started on launch if needed.
package main

import (
	"log"

	"github.com/wailsapp/wails/v3/pkg/application"

	"github.com/coredeck/coredeck/internal/config"
)

func main() {
	cfg := config.DefaultConfig()
	platform, err := config.DetectPlatform()
	if err != nil {
		log.Fatal(err)
	}

	// Start coredeckd if not running.
	ensureDaemon(cfg)

	app := application.New(application.Options{
		Name: "coredeck",
	})

	setupSystemTray(app, cfg, platform)

	if err := app.Run(); err != nil {
		log.Fatal(err)
	}
}
