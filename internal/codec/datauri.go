package codec

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrBadDataURI reports a malformed data: URI.
var ErrBadDataURI = errors.New("malformed data URI")

// IsDataURI reports whether s looks like a data: URI.
func IsDataURI(s string) bool {
	return len(s) >= 5 && strings.EqualFold(s[:5], "data:")
}

// ParseDataURI splits a data: URI into its media type and payload.
// Both base64 and percent-encoded payloads are accepted. A missing media
// type is reported as the empty string; callers sniff the payload instead.
func ParseDataURI(s string) (string, []byte, error) {
	if !IsDataURI(s) {
		return "", nil, fmt.Errorf("%w: missing data: prefix", ErrBadDataURI)
	}
	meta, payload, ok := strings.Cut(s[5:], ",")
	if !ok {
		return "", nil, fmt.Errorf("%w: missing comma", ErrBadDataURI)
	}

	isBase64 := false
	params := strings.Split(meta, ";")
	mediaType := strings.ToLower(strings.TrimSpace(params[0]))
	for _, p := range params[1:] {
		if strings.EqualFold(strings.TrimSpace(p), "base64") {
			isBase64 = true
		}
	}

	if isBase64 {
		data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(payload))
		if err != nil {
			// Some producers strip padding.
			data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(strings.TrimSpace(payload), "="))
			if err != nil {
				return "", nil, fmt.Errorf("%w: %v", ErrBadDataURI, err)
			}
		}
		return mediaType, data, nil
	}

	data, err := url.PathUnescape(payload)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrBadDataURI, err)
	}
	return mediaType, []byte(data), nil
}

// DataURI encodes data as a base64 data: URI.
func DataURI(mediaType string, data []byte) string {
	return "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// DecodeString accepts either a data: URI or bare standard base64 and
// returns the raw bytes. isURI tells the caller which form was supplied so
// the response can use the same representation.
func DecodeString(s string) (data []byte, isURI bool, err error) {
	s = strings.TrimSpace(s)
	if IsDataURI(s) {
		_, data, err = ParseDataURI(s)
		return data, true, err
	}
	data, err = base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, false, fmt.Errorf("decode base64 image: %w", err)
	}
	return data, false, nil
}
