package client

import (
	"time"

	"github.com/coredeck/coredeck/internal/icon"
)

// Status is the coredeckd status response.
type Status struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	Platform  string `json:"platform"`
	FinalSize int    `json:"final_size"`
	Border    int    `json:"border"`
	Filter    string `json:"filter"`
}

// NormalizeOptions overrides the daemon's icon settings for one call.
// Nil pointers and empty strings keep the daemon defaults.
type NormalizeOptions struct {
	FinalSize *int   `json:"final_size,omitempty"`
	Border    *int   `json:"border,omitempty"`
	Filter    string `json:"filter,omitempty"`
	Format    string `json:"format,omitempty"`
}

// NormalizeRequest is the request body for POST /v1/normalize.
type NormalizeRequest struct {
	// Image is a data: URI or bare base64.
	Image string `json:"image"`
	NormalizeOptions
}

// NormalizeResponse is the response from POST /v1/normalize.
type NormalizeResponse struct {
	Image        string            `json:"image"`
	MediaType    string            `json:"media_type"`
	Width        int               `json:"width"`
	Height       int               `json:"height"`
	SourceWidth  int               `json:"source_width"`
	SourceHeight int               `json:"source_height"`
	Box          *icon.BoundingBox `json:"box,omitempty"`
	Placement    *icon.Placement   `json:"placement,omitempty"`
	Passthrough  bool              `json:"passthrough"`
}

// CreateIconRequest is the request body for POST /v1/icons.
type CreateIconRequest struct {
	Name  string `json:"name"`
	Image string `json:"image"`
	NormalizeOptions
}

// Icon is a saved icon.
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

// APIError is returned when the API returns an error response.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}
