//go:build uifrontend

package main

import (
	"log"
	"path/filepath"
	"time"

	"github.com/coredeck/coredeck/internal/config"
	"github.com/coredeck/coredeck/internal/daemon"
)

// ensureDaemon starts coredeckd if it's not already running. Failures are
// logged; the tray still works with the built-in icon.
func ensureDaemon(cfg *config.Config) {
	if daemon.IsRunning(cfg.PIDPath) {
		return
	}
	bin := daemon.FindBinary()
	if bin == "" {
		log.Printf("coredeck-ui: %s not found, icon menu disabled", daemon.BinaryName)
		return
	}
	pid, err := daemon.Start(bin, filepath.Join(cfg.DataDir, "coredeckd.log"), cfg.PIDPath, 5*time.Second)
	if err != nil {
		log.Printf("coredeck-ui: %v", err)
		return
	}
	log.Printf("coredeck-ui: started coredeckd (pid %d)", pid)
}
