//go:build integration

package integration

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/coredeck/coredeck/internal/codec"
)

func TestStatus(t *testing.T) {
	if !daemonRunning() {
		t.Fatal("coredeckd not running")
	}
	out := coredeckRun(t, "status")
	if !strings.Contains(out, "running") {
		t.Errorf("status output: %s", out)
	}
}

func TestNormalizeLocal(t *testing.T) {
	dir := t.TempDir()
	in := writeImage(t, dir, "logo.png", 80, 40, 10)
	out := filepath.Join(dir, "logo.ico")

	coredeckRun(t, "normalize", in, out)

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if mt := codec.Sniff(data); mt != "image/x-icon" {
		t.Errorf("output media type = %q", mt)
	}
}

func TestIconLifecycle(t *testing.T) {
	dir := t.TempDir()
	name := fmt.Sprintf("it-%d", time.Now().UnixNano())
	in := writeImage(t, dir, "wide.png", 100, 50, 0)

	coredeckRun(t, "icons", "add", name, in)
	t.Cleanup(func() { coredeck("icons", "rm", name) })

	if out := coredeckRun(t, "icons", "list"); !strings.Contains(out, name) {
		t.Errorf("icon %s missing from list:\n%s", name, out)
	}
	if out := coredeckRun(t, "icons", "show", name); !strings.Contains(out, "(0,0)-(99,49)") {
		t.Errorf("show output lacks content box:\n%s", out)
	}

	exported := filepath.Join(dir, "export.png")
	coredeckRun(t, "icons", "export", name, exported)
	data, err := os.ReadFile(exported)
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 256 || cfg.Height != 256 {
		t.Errorf("exported %dx%d, want 256x256", cfg.Width, cfg.Height)
	}

	// Same name twice is a conflict.
	if out, err := coredeck("icons", "add", name, in); err == nil {
		t.Errorf("duplicate add succeeded: %s", out)
	}

	coredeckRun(t, "icons", "rm", name)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := daemonClient().GetIcon(ctx, name); err == nil {
		t.Error("icon still present after rm")
	}
}
