//go:build integration

package integration

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/coredeck/coredeck/internal/client"
	"github.com/coredeck/coredeck/internal/config"
	"github.com/coredeck/coredeck/internal/daemon"
)

var binDir string

func TestMain(m *testing.M) {
	// Find binaries relative to the repo root
	root := repoRoot()
	binDir = filepath.Join(root, "bin")

	for _, name := range []string{"coredeck", "coredeckd"} {
		if _, err := os.Stat(filepath.Join(binDir, name)); err != nil {
			fmt.Fprintf(os.Stderr, "%s not found in %s, run 'go build -o bin/ ./cmd/...' first\n", name, binDir)
			os.Exit(1)
		}
	}

	// Ensure daemon is stopped before we start
	coredeck("down")

	if out, err := coredeck("up"); err != nil {
		fmt.Fprintf(os.Stderr, "coredeck up: %v\n%s\n", err, out)
		os.Exit(1)
	}

	code := m.Run()

	coredeck("down")
	os.Exit(code)
}

func repoRoot() string {
	// Walk up from the test file to find go.mod
	dir, _ := os.Getwd()
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "."
		}
		dir = parent
	}
}

func coredeck(args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	cmd := exec.CommandContext(ctx, filepath.Join(binDir, "coredeck"), args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	out := stdout.String() + stderr.String()
	return strings.TrimSpace(out), err
}

func coredeckRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := coredeck(args...)
	if err != nil {
		t.Fatalf("coredeck %v failed: %v\noutput: %s", args, err, out)
	}
	return out
}

func daemonRunning() bool {
	return daemon.IsRunning(config.DefaultConfig().PIDPath)
}

func daemonClient() *client.Client {
	return client.New(config.DefaultConfig().SocketPath)
}

// writeImage writes a w×h opaque blue PNG with a transparent margin.
func writeImage(t *testing.T, dir, name string, w, h, margin int) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w+2*margin, h+2*margin))
	for y := margin; y < margin+h; y++ {
		for x := margin; x < margin+w; x++ {
			i := img.PixOffset(x, y)
			img.Pix[i+2], img.Pix[i+3] = 255, 255
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}
