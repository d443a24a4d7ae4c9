package models

import "time"

// Display is one physical kiosk. All displays share the catalog; each runs
// its own playback loop.
type Display struct {
	ID        int       `json:"display_id"`
	Name      string    `json:"display_name"`
	Location  string    `json:"location"`
	Enabled   bool      `json:"enabled"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
