package registry

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/coredeck/coredeck/internal/icon"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleIcon(id, name string) *Icon {
	return &Icon{
		ID:           id,
		Name:         name,
		SourceKey:    strings.Repeat("a", 64) + ".png",
		SourceType:   "image/png",
		SourceWidth:  100,
		SourceHeight: 50,
		IconKey:      strings.Repeat("b", 64) + ".png",
		Box:          &icon.BoundingBox{Left: 0, Top: 0, Right: 99, Bottom: 49},
		FinalSize:    256,
		Border:       24,
		Filter:       "catmullrom",
		CreatedAt:    time.Now().Truncate(time.Second),
	}
}

func TestSaveAndGetIcon(t *testing.T) {
	db := testDB(t)

	want := sampleIcon("icon-1", "proxy-on")
	if err := db.SaveIcon(want); err != nil {
		t.Fatalf("save icon: %v", err)
	}

	got, err := db.GetIcon("icon-1")
	if err != nil {
		t.Fatalf("get icon: %v", err)
	}
	if got == nil {
		t.Fatal("expected icon, got nil")
	}
	if got.Name != "proxy-on" || got.SourceWidth != 100 || got.SourceHeight != 50 {
		t.Errorf("got %+v", got)
	}
	if got.Box == nil || *got.Box != *want.Box {
		t.Errorf("box = %v, want %v", got.Box, want.Box)
	}
	if !got.CreatedAt.Equal(want.CreatedAt) {
		t.Errorf("created_at = %v, want %v", got.CreatedAt, want.CreatedAt)
	}
}

func TestPassthroughIconHasNoBox(t *testing.T) {
	db := testDB(t)

	ic := sampleIcon("icon-2", "blank")
	ic.Box = nil
	if err := db.SaveIcon(ic); err != nil {
		t.Fatal(err)
	}
	got, err := db.GetIconByName("blank")
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got.Box != nil {
		t.Errorf("got %+v, want icon without box", got)
	}
}

func TestGetMissingIcon(t *testing.T) {
	db := testDB(t)

	got, err := db.GetIcon("nope")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil, got %+v", got)
	}
}

func TestResolveIcon(t *testing.T) {
	db := testDB(t)
	db.SaveIcon(sampleIcon("icon-3", "proxy-off"))

	for _, key := range []string{"icon-3", "proxy-off"} {
		got, err := db.ResolveIcon(key)
		if err != nil {
			t.Fatal(err)
		}
		if got == nil || got.ID != "icon-3" {
			t.Errorf("ResolveIcon(%q) = %+v", key, got)
		}
	}
}

func TestSaveIconNameTaken(t *testing.T) {
	db := testDB(t)

	if err := db.SaveIcon(sampleIcon("icon-a", "tray")); err != nil {
		t.Fatal(err)
	}
	if err := db.SaveIcon(sampleIcon("icon-b", "tray")); !errors.Is(err, ErrNameTaken) {
		t.Errorf("err = %v, want ErrNameTaken", err)
	}

	// Updating the same icon under its own name is fine.
	ic := sampleIcon("icon-a", "tray")
	ic.Border = 8
	if err := db.SaveIcon(ic); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ := db.GetIcon("icon-a")
	if got.Border != 8 {
		t.Errorf("border = %d, want 8", got.Border)
	}
}

func TestListAndDeleteIcons(t *testing.T) {
	db := testDB(t)

	for i, name := range []string{"a", "b", "c"} {
		ic := sampleIcon(NewIconID(), name)
		ic.CreatedAt = ic.CreatedAt.Add(time.Duration(i) * time.Second)
		if err := db.SaveIcon(ic); err != nil {
			t.Fatal(err)
		}
	}

	icons, err := db.ListIcons()
	if err != nil {
		t.Fatal(err)
	}
	if len(icons) != 3 {
		t.Fatalf("got %d icons, want 3", len(icons))
	}
	if icons[0].Name != "c" {
		t.Errorf("first = %q, want newest (c)", icons[0].Name)
	}

	refs, err := db.CountBlobRefs(icons[0].SourceKey)
	if err != nil {
		t.Fatal(err)
	}
	if refs != 3 {
		t.Errorf("refs = %d, want 3", refs)
	}

	if err := db.DeleteIcon(icons[0].ID); err != nil {
		t.Fatal(err)
	}
	icons, _ = db.ListIcons()
	if len(icons) != 2 {
		t.Errorf("after delete: %d icons, want 2", len(icons))
	}
}

func TestNewIconID(t *testing.T) {
	a, b := NewIconID(), NewIconID()
	if a == b {
		t.Error("ids collide")
	}
	if !strings.HasPrefix(a, "icon-") {
		t.Errorf("id = %q", a)
	}
}
