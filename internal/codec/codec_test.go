package codec

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"strings"
	"testing"

	"github.com/coredeck/coredeck/internal/icon"
)

func testImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 7), G: uint8(y * 11), B: 90, A: uint8(128 + x)})
		}
	}
	return img
}

func TestPNGRoundtrip(t *testing.T) {
	src := testImage(20, 12)
	data, mt, err := Encode(src, FormatPNG)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if mt != "image/png" {
		t.Errorf("media type = %q", mt)
	}
	if got := Sniff(data); got != "image/png" {
		t.Errorf("Sniff = %q", got)
	}

	out, format, err := Decode(data, icon.DefaultConfig())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if format != "png" {
		t.Errorf("format = %q", format)
	}
	if !bytes.Equal(out.Pix, src.Pix) {
		t.Error("decoded pixels differ")
	}
}

func TestICORoundtrip(t *testing.T) {
	src := testImage(32, 32)
	data, mt, err := Encode(src, FormatICO)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if mt != "image/x-icon" {
		t.Errorf("media type = %q", mt)
	}

	out, format, err := Decode(data, icon.DefaultConfig())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if format != "ico" {
		t.Errorf("format = %q", format)
	}
	if out.Bounds().Dx() != 32 || out.Bounds().Dy() != 32 {
		t.Errorf("bounds = %v", out.Bounds())
	}
}

func TestDecodeJPEGConvertsToNRGBA(t *testing.T) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, testImage(16, 16), nil); err != nil {
		t.Fatal(err)
	}
	out, format, err := Decode(buf.Bytes(), icon.DefaultConfig())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if format != "jpeg" {
		t.Errorf("format = %q", format)
	}
	if out.NRGBAAt(3, 3).A != 255 {
		t.Error("jpeg pixel not opaque")
	}
}

func TestDecodeRejectsOversizedHeader(t *testing.T) {
	data, _, err := Encode(testImage(100, 10), FormatPNG)
	if err != nil {
		t.Fatal(err)
	}
	cfg := icon.DefaultConfig()
	cfg.MaxDimension = 50
	if _, _, err := Decode(data, cfg); !errors.Is(err, icon.ErrInputTooLarge) {
		t.Errorf("err = %v, want ErrInputTooLarge", err)
	}
}

func TestDecodeRejectsHugePayload(t *testing.T) {
	data := make([]byte, MaxEncodedBytes+1)
	if _, _, err := Decode(data, icon.DefaultConfig()); !errors.Is(err, icon.ErrInputTooLarge) {
		t.Errorf("err = %v, want ErrInputTooLarge", err)
	}
}

func TestDecodeUnsupported(t *testing.T) {
	for _, data := range [][]byte{[]byte("just some text"), {}, []byte("%PDF-1.7\n")} {
		if _, _, err := Decode(data, icon.DefaultConfig()); !errors.Is(err, ErrUnsupported) {
			t.Errorf("Decode(%q): err = %v, want ErrUnsupported", data, err)
		}
	}
	if _, _, err := Encode(testImage(2, 2), "tiff"); !errors.Is(err, ErrUnsupported) {
		t.Errorf("Encode tiff: err = %v, want ErrUnsupported", err)
	}
}

func TestDecodeCorruptPNG(t *testing.T) {
	data, _, _ := Encode(testImage(8, 8), FormatPNG)
	data = data[:len(data)/2]
	if _, _, err := Decode(data, icon.DefaultConfig()); err == nil {
		t.Error("expected error for truncated png")
	}
}

func TestDataURI(t *testing.T) {
	payload := []byte{0x89, 'P', 'N', 'G', 0, 1, 2}
	uri := DataURI("image/png", payload)
	if !strings.HasPrefix(uri, "data:image/png;base64,") {
		t.Fatalf("uri = %q", uri)
	}

	mt, data, err := ParseDataURI(uri)
	if err != nil {
		t.Fatalf("ParseDataURI: %v", err)
	}
	if mt != "image/png" || !bytes.Equal(data, payload) {
		t.Errorf("got %q %v", mt, data)
	}

	tests := []struct {
		in   string
		mt   string
		data string
	}{
		{"data:,hello%20world", "", "hello world"},
		{"DATA:image/svg+xml;charset=utf-8,%3Csvg%3E", "image/svg+xml", "<svg>"},
		{"data:image/gif;base64,R0lG", "image/gif", "GIF"},
		{"data:image/gif;base64,R0lGOA", "image/gif", "GIF8"},
	}
	for _, tt := range tests {
		mt, data, err := ParseDataURI(tt.in)
		if err != nil {
			t.Errorf("ParseDataURI(%q): %v", tt.in, err)
			continue
		}
		if mt != tt.mt || string(data) != tt.data {
			t.Errorf("ParseDataURI(%q) = %q %q, want %q %q", tt.in, mt, data, tt.mt, tt.data)
		}
	}

	for _, bad := range []string{"image/png;base64,AAAA", "data:image/png;base64", "data:image/png;base64,!!!!"} {
		if _, _, err := ParseDataURI(bad); !errors.Is(err, ErrBadDataURI) {
			t.Errorf("ParseDataURI(%q): err = %v, want ErrBadDataURI", bad, err)
		}
	}
}

func TestDecodeString(t *testing.T) {
	data, isURI, err := DecodeString(" data:image/png;base64,AQID ")
	if err != nil || !isURI || !bytes.Equal(data, []byte{1, 2, 3}) {
		t.Errorf("data URI: %v %v %v", data, isURI, err)
	}
	data, isURI, err = DecodeString("AQID")
	if err != nil || isURI || !bytes.Equal(data, []byte{1, 2, 3}) {
		t.Errorf("bare base64: %v %v %v", data, isURI, err)
	}
	if _, _, err := DecodeString("not base64!"); err == nil {
		t.Error("expected error")
	}
}
