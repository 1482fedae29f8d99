package blob

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestPutGetRoundtrip(t *testing.T) {
	store := NewFileStore(t.TempDir())

	data := []byte("hello world png")
	key, err := store.Put(data, "image/png")
	if err != nil {
		t.Fatalf("Put: %v", err)
	}

	if !strings.HasSuffix(key, ".png") {
		t.Errorf("expected .png suffix, got %q", key)
	}

	got, err := store.Get(key)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != string(data) {
		t.Errorf("roundtrip mismatch: got %q, want %q", got, data)
	}
}

func TestContentAddressedDedup(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(dir)

	data := []byte("dedup test data")
	key1, err := store.Put(data, "image/x-icon")
	if err != nil {
		t.Fatalf("Put 1: %v", err)
	}
	key2, err := store.Put(data, "image/x-icon")
	if err != nil {
		t.Fatalf("Put 2: %v", err)
	}
	if key1 != key2 {
		t.Errorf("dedup failed: key1=%s key2=%s", key1, key2)
	}

	entries, _ := os.ReadDir(dir)
	count := 0
	for _, e := range entries {
		if !strings.HasPrefix(e.Name(), ".tmp-") {
			count++
		}
	}
	if count != 1 {
		t.Errorf("expected 1 blob file, got %d", count)
	}
}

func TestKeyValidationPathTraversal(t *testing.T) {
	store := NewFileStore(t.TempDir())

	badKeys := []string{
		"../../etc/passwd",
		"../foo.png",
		"abc.png",                        // too short
		"zzzzzzzzzzzzzzzz.png",           // not 64 hex chars
		strings.Repeat("a", 64) + ".exe", // bad extension
		"",
	}
	for _, key := range badKeys {
		if _, err := store.Get(key); err == nil {
			t.Errorf("Get(%q): expected error", key)
		}
		if err := store.Delete(key); err == nil {
			t.Errorf("Delete(%q): expected error", key)
		}
	}
}

func TestOversizedRejection(t *testing.T) {
	store := NewFileStore(t.TempDir())

	data := make([]byte, MaxImageBytes+1)
	_, err := store.Put(data, "image/png")
	if err == nil {
		t.Fatal("expected error for oversized image")
	}
	if !strings.Contains(err.Error(), "too large") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestMissingBlob(t *testing.T) {
	store := NewFileStore(t.TempDir())

	key := strings.Repeat("a", 64) + ".png"
	if _, err := store.Get(key); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if err := store.Delete(key); err != nil {
		t.Errorf("Delete missing: %v", err)
	}
}

func TestDelete(t *testing.T) {
	store := NewFileStore(t.TempDir())

	key, err := store.Put([]byte("gone soon"), "image/png")
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Delete(key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Get(key); !errors.Is(err, ErrNotFound) {
		t.Errorf("after delete: err = %v, want ErrNotFound", err)
	}
}

func TestExtMapping(t *testing.T) {
	tests := []struct {
		mediaType string
		ext       string
	}{
		{"image/png", ".png"},
		{"image/jpeg", ".jpg"},
		{"image/gif", ".gif"},
		{"image/webp", ".webp"},
		{"image/bmp", ".bmp"},
		{"image/x-icon", ".ico"},
		{"image/vnd.microsoft.icon", ".ico"},
		{"image/tiff", ""},
		{"text/plain", ""},
	}
	for _, tt := range tests {
		got := ExtForMediaType(tt.mediaType)
		if got != tt.ext {
			t.Errorf("ExtForMediaType(%q) = %q, want %q", tt.mediaType, got, tt.ext)
		}
	}
}

func TestUnsupportedMediaType(t *testing.T) {
	store := NewFileStore(t.TempDir())

	if _, err := store.Put([]byte("data"), "image/tiff"); err == nil {
		t.Fatal("expected error for unsupported media type")
	}
}

func TestPutKeyFormat(t *testing.T) {
	store := NewFileStore(t.TempDir())

	data := []byte("test key format")
	key, err := store.Put(data, "image/png")
	if err != nil {
		t.Fatalf("Put: %v", err)
	}

	hash := sha256.Sum256(data)
	expected := hex.EncodeToString(hash[:]) + ".png"
	if key != expected {
		t.Errorf("key = %q, want %q", key, expected)
	}
	if !validBlobKey.MatchString(key) {
		t.Errorf("key %q does not match validBlobKey regex", key)
	}
}

func TestSweepRemovesUnreferenced(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(dir)

	keep, err := store.Put([]byte("kept icon"), "image/png")
	if err != nil {
		t.Fatal(err)
	}
	drop, err := store.Put([]byte("orphaned icon"), "image/png")
	if err != nil {
		t.Fatal(err)
	}
	os.WriteFile(filepath.Join(dir, "README"), []byte("not a blob"), 0600)

	removed, err := store.Sweep(func(key string) (bool, error) { return key == keep, nil })
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	if _, err := store.Get(keep); err != nil {
		t.Errorf("kept blob: %v", err)
	}
	if _, err := store.Get(drop); !errors.Is(err, ErrNotFound) {
		t.Errorf("orphan still present: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "README")); err != nil {
		t.Error("sweep removed a non-blob file")
	}

	keys, err := store.Keys()
	if err != nil {
		t.Fatal(err)
	}
	if len(keys) != 1 || keys[0] != keep {
		t.Errorf("keys = %v, want [%s]", keys, keep)
	}
}

func TestSweepMissingDir(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "absent"))
	n, err := store.Sweep(func(string) (bool, error) { return false, nil })
	if err != nil || n != 0 {
		t.Errorf("Sweep on missing dir = %d, %v", n, err)
	}
}
