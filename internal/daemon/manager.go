// Package daemon starts, finds and stops the coredeckd background process.
// The CLI ("coredeck up/down") and the tray app share it.
//
// Liveness is tracked through the PID file coredeckd writes on startup:
// a process is running when the file names a PID that accepts signal 0.
package daemon

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"
)

// BinaryName is the daemon executable name.
const BinaryName = "coredeckd"

// ErrNotRunning is returned by Stop when no daemon is running.
var ErrNotRunning = errors.New("coredeckd is not running")

// ReadPID returns the PID recorded in pidPath.
func ReadPID(pidPath string) (int, error) {
	data, err := os.ReadFile(pidPath)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("invalid pid file %s: %w", pidPath, err)
	}
	return pid, nil
}

// IsRunning reports whether the process named by pidPath is alive.
func IsRunning(pidPath string) bool {
	pid, err := ReadPID(pidPath)
	if err != nil || pid <= 0 {
		return false
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = proc.Signal(syscall.Signal(0))
	// EPERM: alive but owned by another user
	return err == nil || errors.Is(err, syscall.EPERM)
}

// FindBinary locates coredeckd. Search order:
//  1. Next to this executable (installed layout and dev builds)
//  2. $PATH
func FindBinary() string {
	if exe, err := os.Executable(); err == nil {
		candidate := filepath.Join(filepath.Dir(exe), BinaryName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	if p, err := exec.LookPath(BinaryName); err == nil {
		return p
	}
	return ""
}

// Start launches bin detached from the caller, appending its output to
// logPath, and waits up to timeout for the PID file to appear.
func Start(bin, logPath, pidPath string, timeout time.Duration) (int, error) {
	if err := os.MkdirAll(filepath.Dir(logPath), 0700); err != nil {
		return 0, fmt.Errorf("create log directory: %w", err)
	}
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return 0, fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()

	cmd := exec.Command(bin)
	cmd.Stdout = logFile
	cmd.Stderr = logFile
	// Own process group so the daemon outlives the CLI or tray app.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("start %s: %w", bin, err)
	}

	exited := make(chan struct{})
	go func() {
		cmd.Wait()
		close(exited)
	}()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if IsRunning(pidPath) {
			return cmd.Process.Pid, nil
		}
		select {
		case <-exited:
			return 0, fmt.Errorf("%s exited immediately, check %s", BinaryName, logPath)
		case <-time.After(100 * time.Millisecond):
		}
	}
	return 0, fmt.Errorf("%s did not start within %s", BinaryName, timeout)
}

// Stop sends SIGTERM to the daemon and waits up to timeout for it to exit.
func Stop(pidPath string, timeout time.Duration) (int, error) {
	if !IsRunning(pidPath) {
		return 0, ErrNotRunning
	}
	pid, err := ReadPID(pidPath)
	if err != nil {
		return 0, err
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return 0, ErrNotRunning
	}
	if err := proc.Signal(syscall.SIGTERM); err != nil {
		return pid, fmt.Errorf("send SIGTERM: %w", err)
	}

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if !IsRunning(pidPath) {
			return pid, nil
		}
		time.Sleep(100 * time.Millisecond)
	}
	return pid, fmt.Errorf("%s did not stop within %s", BinaryName, timeout)
}
