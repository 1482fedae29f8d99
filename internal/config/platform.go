package config

import (
	"fmt"
	"runtime"
)

// Platform describes the detected host platform.
type Platform struct {
	OS   string // "darwin", "linux" or "windows"
	Arch string // "arm64" or "amd64"

	// TrayFormat is the encoding the system tray expects ("png" or "ico").
	TrayFormat string

	// TemplateIcon is set where the tray tints a monochrome icon itself (macOS).
	TemplateIcon bool
}

// DetectPlatform detects the host platform and its tray icon conventions.
func DetectPlatform() (*Platform, error) {
	p := &Platform{
		OS:   runtime.GOOS,
		Arch: runtime.GOARCH,
	}

	switch p.OS {
	case "darwin":
		p.TrayFormat = "png"
		p.TemplateIcon = true
	case "linux":
		p.TrayFormat = "png"
	case "windows":
		p.TrayFormat = "ico"
	default:
		return nil, fmt.Errorf("unsupported platform: %s/%s. coredeck requires macOS, Linux or Windows", p.OS, p.Arch)
	}

	return p, nil
}
