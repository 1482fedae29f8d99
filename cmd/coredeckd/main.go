// coredeckd is the coredeck daemon: the local service that normalizes and
// stores tray and menu icons for the desktop control panel.
//
// It listens on a unix socket and serves the icon API used by the CLI and
// the tray app.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coredeck/coredeck/internal/api"
	"github.com/coredeck/coredeck/internal/blob"
	"github.com/coredeck/coredeck/internal/config"
	"github.com/coredeck/coredeck/internal/registry"
	"github.com/coredeck/coredeck/internal/version"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg := config.DefaultConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}
	if err := cfg.EnsureDirs(); err != nil {
		log.Fatalf("create directories: %v", err)
	}

	platform, err := config.DetectPlatform()
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("coredeckd %s starting on %s/%s (tray format: %s)", version.Version(), platform.OS, platform.Arch, platform.TrayFormat)

	// Open registry database
	reg, err := registry.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("open registry: %v", err)
	}
	defer reg.Close()
	log.Printf("registry: %s", cfg.DBPath)

	blobs := blob.NewFileStore(cfg.BlobsDir)

	// Remove blobs left by uploads that never reached the registry.
	swept, err := blobs.Sweep(func(key string) (bool, error) {
		refs, err := reg.CountBlobRefs(key)
		return refs > 0, err
	})
	if err != nil {
		log.Printf("blob sweep: %v", err)
	} else if swept > 0 {
		log.Printf("blob sweep: removed %d orphaned blobs", swept)
	}

	// Start API server
	server, err := api.NewServer(cfg, reg, blobs)
	if err != nil {
		log.Fatalf("init API server: %v", err)
	}
	if err := server.Start(); err != nil {
		log.Fatalf("start API server: %v", err)
	}

	// Write PID file
	os.WriteFile(cfg.PIDPath, []byte(fmt.Sprintf("%d", os.Getpid())), 0600)
	defer os.Remove(cfg.PIDPath)

	log.Printf("coredeckd ready (pid %d, socket %s, icons %dpx/%dpx border, filter %s)",
		os.Getpid(), cfg.SocketPath, cfg.FinalSize, cfg.Border, cfg.Filter)

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	sig := <-sigCh
	log.Printf("received %v, shutting down", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Stop(ctx); err != nil {
		log.Printf("server shutdown: %v", err)
	}

	// Clean up socket
	os.Remove(cfg.SocketPath)

	log.Println("coredeckd stopped")
}
