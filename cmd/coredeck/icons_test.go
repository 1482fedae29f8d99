package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/coredeck/coredeck/internal/client"
	"github.com/coredeck/coredeck/internal/icon"
)

type fakeLister struct {
	icons []client.Icon
	err   error
}

func (f fakeLister) ListIcons(context.Context) ([]client.Icon, error) {
	return f.icons, f.err
}

func TestListIcons(t *testing.T) {
	icons := []client.Icon{
		{
			ID:           "icon-1",
			Name:         "proxy-on",
			SourceType:   "image/png",
			SourceWidth:  100,
			SourceHeight: 50,
			FinalSize:    256,
			Box:          &icon.BoundingBox{Right: 99, Bottom: 49},
			CreatedAt:    time.Now().Add(-time.Hour),
		},
		{
			ID:           "icon-2",
			Name:         "blank",
			SourceType:   "image/png",
			SourceWidth:  8,
			SourceHeight: 8,
			FinalSize:    256,
			CreatedAt:    time.Now(),
		},
	}

	var out bytes.Buffer
	if err := listIcons(context.Background(), &out, fakeLister{icons: icons}); err != nil {
		t.Fatalf("listIcons: %v", err)
	}
	got := out.String()
	for _, want := range []string{"proxy-on", "icon-1", "100x50 image/png", "(0,0)-(99,49)", "1 hour ago", "blank", "passthrough"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
	if strings.Index(got, "proxy-on") > strings.Index(got, "blank") {
		t.Errorf("rows out of order:\n%s", got)
	}
}

func TestListIconsEmpty(t *testing.T) {
	var out bytes.Buffer
	if err := listIcons(context.Background(), &out, fakeLister{}); err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out.String()) != "No icons" {
		t.Errorf("output = %q", out.String())
	}
}

func TestListIconsError(t *testing.T) {
	want := errors.New("daemon gone")
	err := listIcons(context.Background(), &bytes.Buffer{}, fakeLister{err: want})
	if !errors.Is(err, want) {
		t.Errorf("err = %v, want %v", err, want)
	}
}
