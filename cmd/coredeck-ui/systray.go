//go:build uifrontend

package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/wailsapp/wails/v3/pkg/application"

	"github.com/coredeck/coredeck/internal/client"
	"github.com/coredeck/coredeck/internal/config"
	"github.com/coredeck/coredeck/internal/tray"
)

// trayApp holds the tray and the state its menu is built from.
type trayApp struct {
	app      *application.App
	tray     *application.SystemTray
	cfg      *config.Config
	platform *config.Platform
	client   *client.Client

	mu      sync.Mutex
	current string // name of the saved icon shown in the tray, "" for default
}

func (t *trayApp) setCurrent(name string) {
	t.mu.Lock()
	t.current = name
	t.mu.Unlock()
}

func (t *trayApp) currentName() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}

// setupSystemTray configures the tray icon and menu.
//
// Behavior:
//   - Menu lists saved icons; picking one makes it the tray icon
//   - "Default Icon" restores tray.png or the built-in glyph
//   - Menu is refreshed every 10s from coredeckd
func setupSystemTray(app *application.App, cfg *config.Config, platform *config.Platform) {
	t := &trayApp{
		app:      app,
		tray:     app.SystemTray.New(),
		cfg:      cfg,
		platform: platform,
		client:   client.New(cfg.SocketPath),
	}

	t.setIcon(t.defaultIcon())
	t.tray.SetTooltip("coredeck")
	t.tray.SetMenu(t.buildMenu(nil))

	go t.poll()
}

// defaultIcon returns tray.png normalized for the platform, falling back to
// the built-in glyph.
func (t *trayApp) defaultIcon() []byte {
	if data, err := os.ReadFile(t.cfg.TrayIconPath); err == nil {
		out, err := tray.Render(data, t.platform)
		if err == nil {
			return out
		}
		log.Printf("coredeck-ui: %s: %v", t.cfg.TrayIconPath, err)
	}
	glyph, err := tray.Glyph(t.platform)
	if err != nil {
		log.Printf("coredeck-ui: glyph: %v", err)
	}
	return glyph
}

func (t *trayApp) setIcon(data []byte) {
	if len(data) == 0 {
		return
	}
	if t.platform.TemplateIcon {
		// macOS tints template icons for dark/light mode automatically.
		t.tray.SetTemplateIcon(data)
		return
	}
	t.tray.SetIcon(data)
}

// useIcon fetches a saved icon and shows it in the tray.
func (t *trayApp) useIcon(ic client.Icon) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	data, _, err := t.client.IconImage(ctx, ic.ID, "png")
	if err != nil {
		log.Printf("coredeck-ui: fetch icon %s: %v", ic.Name, err)
		return
	}
	out, err := tray.Render(data, t.platform)
	if err != nil {
		log.Printf("coredeck-ui: render icon %s: %v", ic.Name, err)
		return
	}
	t.setIcon(out)
	t.setCurrent(ic.Name)
	t.refresh()
}

// buildMenu creates a tray menu with the saved icon list.
func (t *trayApp) buildMenu(icons []client.Icon) *application.Menu {
	menu := application.NewMenu()
	current := t.currentName()

	if len(icons) == 0 {
		menu.Add("No saved icons").SetEnabled(false)
	} else {
		for _, ic := range icons {
			label := fmt.Sprintf("%s %s", marker(ic.Name == current), ic.Name)
			menu.Add(label).OnClick(func(ctx *application.Context) {
				go t.useIcon(ic)
			})
		}
	}

	menu.AddSeparator()

	menu.Add(marker(current == "") + " Default Icon").OnClick(func(ctx *application.Context) {
		t.setIcon(t.defaultIcon())
		t.setCurrent("")
		go t.refresh()
	})

	menu.AddSeparator()

	menu.Add("Quit coredeck").OnClick(func(ctx *application.Context) {
		t.app.Quit()
	})

	return menu
}

// marker returns a filled or hollow dot for the selected menu entry.
func marker(selected bool) string {
	if selected {
		return "\u25CF" // ●
	}
	return "\u25CB" // ○
}

// poll periodically fetches saved icons and rebuilds the tray menu.
func (t *trayApp) poll() {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	// Initial update after a short delay (let the app settle).
	time.Sleep(2 * time.Second)
	t.refresh()

	for range ticker.C {
		t.refresh()
	}
}

func (t *trayApp) refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	icons, err := t.client.ListIcons(ctx)
	if err != nil {
		return // daemon might be restarting
	}
	t.tray.SetMenu(t.buildMenu(icons))
}
