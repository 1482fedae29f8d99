package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/coredeck/coredeck/internal/icon"
)

// Config holds coredeck runtime configuration.
type Config struct {
	// DataDir is the base directory for coredeck runtime data.
	DataDir string

	// SocketPath is the unix socket path for the coredeckd API.
	SocketPath string

	// PIDPath is where coredeckd records its process ID.
	PIDPath string

	// DBPath is the path to the SQLite icon registry.
	DBPath string

	// BlobsDir holds source and normalized icon images.
	BlobsDir string

	// FinalSize is the width and height of normalized icons.
	FinalSize int

	// Border is the transparent padding around the icon content.
	Border int

	// AlphaThreshold is the alpha a pixel must exceed to count as content.
	AlphaThreshold uint8

	// Filter selects the resampling filter: catmullrom, bilinear, approx or lanczos.
	Filter string

	// MaxDimension and MaxPixels bound accepted source images.
	MaxDimension int
	MaxPixels    int

	// MaxUploadBytes caps API request bodies.
	MaxUploadBytes int64

	// Workers bounds batch normalization parallelism. Zero means one per CPU.
	Workers int

	// TrayIconPath is the user-supplied tray icon. Empty uses the built-in glyph.
	TrayIconPath string
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()
	baseDir := filepath.Join(homeDir, ".coredeck")

	return &Config{
		DataDir:        filepath.Join(baseDir, "data"),
		SocketPath:     filepath.Join(baseDir, "coredeckd.sock"),
		PIDPath:        filepath.Join(baseDir, "data", "coredeckd.pid"),
		DBPath:         filepath.Join(baseDir, "data", "coredeck.db"),
		BlobsDir:       filepath.Join(baseDir, "data", "blobs"),
		FinalSize:      icon.DefaultFinalSize,
		Border:         icon.DefaultBorder,
		AlphaThreshold: icon.DefaultAlphaThreshold,
		Filter:         icon.FilterCatmullRom,
		MaxDimension:   icon.DefaultMaxDimension,
		MaxPixels:      icon.DefaultMaxPixels,
		MaxUploadBytes: 16 << 20,
		Workers:        runtime.NumCPU(),
		TrayIconPath:   filepath.Join(baseDir, "tray.png"),
	}
}

// EnsureDirs creates all required directories.
func (c *Config) EnsureDirs() error {
	dirs := []string{
		c.DataDir,
		c.BlobsDir,
		filepath.Dir(c.SocketPath),
		filepath.Dir(c.DBPath),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0700); err != nil {
			return err
		}
	}
	return nil
}

// IconConfig projects the icon settings into an icon.Config.
func (c *Config) IconConfig() icon.Config {
	return icon.Config{
		FinalSize:      c.FinalSize,
		Border:         c.Border,
		AlphaThreshold: c.AlphaThreshold,
		MaxDimension:   c.MaxDimension,
		MaxPixels:      c.MaxPixels,
	}
}

// Validate checks the icon settings.
func (c *Config) Validate() error {
	if err := c.IconConfig().Validate(); err != nil {
		return err
	}
	if _, err := icon.ScalerByName(c.Filter); err != nil {
		return err
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("max upload bytes must be positive, got %d", c.MaxUploadBytes)
	}
	return nil
}

// Normalizer builds the normalizer described by the config.
func (c *Config) Normalizer() (*icon.Normalizer, error) {
	scaler, err := icon.ScalerByName(c.Filter)
	if err != nil {
		return nil, err
	}
	return icon.New(c.IconConfig(), scaler)
}
