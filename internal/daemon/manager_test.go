package daemon

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestIsRunning(t *testing.T) {
	dir := t.TempDir()
	pidPath := filepath.Join(dir, "coredeckd.pid")

	if IsRunning(pidPath) {
		t.Error("missing pid file reported running")
	}

	os.WriteFile(pidPath, []byte("not-a-pid"), 0600)
	if IsRunning(pidPath) {
		t.Error("garbage pid file reported running")
	}

	os.WriteFile(pidPath, []byte(fmt.Sprintf("%d\n", os.Getpid())), 0600)
	if !IsRunning(pidPath) {
		t.Error("own pid reported not running")
	}
}

func TestReadPID(t *testing.T) {
	pidPath := filepath.Join(t.TempDir(), "pid")
	os.WriteFile(pidPath, []byte(" 4242 \n"), 0600)

	pid, err := ReadPID(pidPath)
	if err != nil {
		t.Fatal(err)
	}
	if pid != 4242 {
		t.Errorf("pid = %d, want 4242", pid)
	}
}

func TestStopNotRunning(t *testing.T) {
	_, err := Stop(filepath.Join(t.TempDir(), "none.pid"), time.Second)
	if !errors.Is(err, ErrNotRunning) {
		t.Errorf("err = %v, want ErrNotRunning", err)
	}
}

func TestStartMissingBinary(t *testing.T) {
	dir := t.TempDir()
	_, err := Start(filepath.Join(dir, "no-such-binary"), filepath.Join(dir, "log", "d.log"), filepath.Join(dir, "d.pid"), time.Second)
	if err == nil {
		t.Fatal("expected error starting a missing binary")
	}
}
