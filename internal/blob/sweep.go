package blob

import (
	"os"
	"strings"
	"time"
)

// Keys returns the keys of all stored blobs.
func (s *FileStore) Keys() ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var keys []string
	for _, e := range entries {
		if e.Type().IsRegular() && validBlobKey.MatchString(e.Name()) {
			keys = append(keys, e.Name())
		}
	}
	return keys, nil
}

// Sweep removes blobs that inUse reports as unreferenced, plus temp files
// older than a minute left behind by an interrupted Put. It returns the
// number of blobs removed.
func (s *FileStore) Sweep(inUse func(key string) (bool, error)) (int, error) {
	entries, err := os.ReadDir(s.root)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, ".tmp-") {
			if info, err := e.Info(); err == nil && time.Since(info.ModTime()) > time.Minute {
				os.Remove(s.path(name))
			}
			continue
		}
		if !validBlobKey.MatchString(name) {
			continue
		}
		used, err := inUse(name)
		if err != nil {
			return removed, err
		}
		if used {
			continue
		}
		if err := s.Delete(name); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}
