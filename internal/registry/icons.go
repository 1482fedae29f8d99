package registry

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/coredeck/coredeck/internal/icon"
)

// ErrNameTaken is returned by SaveIcon when another icon already uses the name.
var ErrNameTaken = errors.New("icon name already in use")

// Icon is a saved, normalized icon. Box is nil when the source had no
// visible pixel and was stored unchanged.
type Icon struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	SourceKey    string            `json:"source_key"`
	SourceType   string            `json:"source_type"`
	SourceWidth  int               `json:"source_width"`
	SourceHeight int               `json:"source_height"`
	IconKey      string            `json:"icon_key"`
	Box          *icon.BoundingBox `json:"box,omitempty"`
	FinalSize    int               `json:"final_size"`
	Border       int               `json:"border"`
	Filter       string            `json:"filter,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
}

// NewIconID returns a fresh icon ID.
func NewIconID() string {
	return "icon-" + uuid.NewString()
}

const iconColumns = `id, name, source_key, source_type, source_width, source_height,
	icon_key, box, final_size, border, filter, created_at`

// SaveIcon inserts or replaces an icon.
func (d *DB) SaveIcon(ic *Icon) error {
	var box sql.NullString
	if ic.Box != nil {
		data, _ := json.Marshal(ic.Box)
		box = sql.NullString{String: string(data), Valid: true}
	}

	if existing, err := d.GetIconByName(ic.Name); err != nil {
		return err
	} else if existing != nil && existing.ID != ic.ID {
		return fmt.Errorf("%w: %s", ErrNameTaken, ic.Name)
	}

	_, err := d.db.Exec(`
		INSERT INTO icons (`+iconColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			source_key = excluded.source_key,
			source_type = excluded.source_type,
			source_width = excluded.source_width,
			source_height = excluded.source_height,
			icon_key = excluded.icon_key,
			box = excluded.box,
			final_size = excluded.final_size,
			border = excluded.border,
			filter = excluded.filter
	`, ic.ID, ic.Name, ic.SourceKey, ic.SourceType, ic.SourceWidth, ic.SourceHeight,
		ic.IconKey, box, ic.FinalSize, ic.Border, ic.Filter, ic.CreatedAt.Format(time.RFC3339))
	return err
}

// GetIcon retrieves an icon by ID. Returns nil, nil when absent.
func (d *DB) GetIcon(id string) (*Icon, error) {
	row := d.db.QueryRow(`SELECT `+iconColumns+` FROM icons WHERE id = ?`, id)
	return scanIcon(row)
}

// GetIconByName retrieves an icon by name. Returns nil, nil when absent.
func (d *DB) GetIconByName(name string) (*Icon, error) {
	row := d.db.QueryRow(`SELECT `+iconColumns+` FROM icons WHERE name = ?`, name)
	return scanIcon(row)
}

// ResolveIcon looks an icon up by ID, then by name.
func (d *DB) ResolveIcon(idOrName string) (*Icon, error) {
	ic, err := d.GetIcon(idOrName)
	if err != nil || ic != nil {
		return ic, err
	}
	return d.GetIconByName(idOrName)
}

// ListIcons returns all icons, newest first.
func (d *DB) ListIcons() ([]*Icon, error) {
	rows, err := d.db.Query(`SELECT ` + iconColumns + ` FROM icons ORDER BY created_at DESC, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var icons []*Icon
	for rows.Next() {
		ic, err := scanIcon(rows)
		if err != nil {
			return nil, err
		}
		icons = append(icons, ic)
	}
	return icons, rows.Err()
}

// DeleteIcon removes an icon by ID.
func (d *DB) DeleteIcon(id string) error {
	_, err := d.db.Exec(`DELETE FROM icons WHERE id = ?`, id)
	return err
}

// CountBlobRefs reports how many icons reference key as source or output.
// Blobs are content-addressed, so one key can back several icons.
func (d *DB) CountBlobRefs(key string) (int, error) {
	var n int
	err := d.db.QueryRow(`SELECT COUNT(*) FROM icons WHERE source_key = ? OR icon_key = ?`, key, key).Scan(&n)
	return n, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanIcon(s scanner) (*Icon, error) {
	var ic Icon
	var box sql.NullString
	var createdStr string

	err := s.Scan(&ic.ID, &ic.Name, &ic.SourceKey, &ic.SourceType, &ic.SourceWidth, &ic.SourceHeight,
		&ic.IconKey, &box, &ic.FinalSize, &ic.Border, &ic.Filter, &createdStr)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if box.Valid {
		var b icon.BoundingBox
		if err := json.Unmarshal([]byte(box.String), &b); err == nil {
			ic.Box = &b
		}
	}
	ic.CreatedAt, _ = time.Parse(time.RFC3339, createdStr)
	return &ic, nil
}
