package models

import "time"

// PlaylistVersion is the document schema version, not a generation counter.
// Kiosks detect change by comparing item-id sequences.
const PlaylistVersion = 1

type RepeatMode string

const (
	RepeatOnce      RepeatMode = "once"
	RepeatInterval  RepeatMode = "interval"
	RepeatUnlimited RepeatMode = "unlimited"
)

// Playlist is the wire document the kiosk consumes.
type Playlist struct {
	Version     int            `json:"version"`
	GeneratedAt time.Time      `json:"generated_at"`
	Timezone    string         `json:"timezone"`
	Canvas      Canvas         `json:"canvas"`
	Items       []PlaylistItem `json:"items"`
}

type Canvas struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type Overlay struct {
	BorderID string `json:"border_id"`
	Z        int    `json:"z"`
}

type Window struct {
	StartAt *string `json:"start_at"`
	EndAt   *string `json:"end_at"`
}

type Repeat struct {
	Mode            RepeatMode `json:"mode"`
	N               *int       `json:"n"`
	IntervalMinutes *int       `json:"interval_minutes"`
}

type Caps struct {
	MaxPlaysPerDay int `json:"max_plays_per_day"`
	CurrentPlays   int `json:"current_plays"`
}

// PlaylistItem is the read-only projection of a queued ContentItem.
type PlaylistItem struct {
	ID              string    `json:"id"`
	Type            MediaType `json:"type"`
	Src             string    `json:"src"`
	DurationSec     int       `json:"duration_sec"`
	FitMode         string    `json:"fit_mode"`
	Overlay         *Overlay  `json:"overlay"`
	Priority        Priority  `json:"priority"`
	Window          Window    `json:"window"`
	Repeat          Repeat    `json:"repeat"`
	Caps            Caps      `json:"caps"`
	DeleteAfterPlay bool      `json:"delete_after_play"`
	PricingOptionID *string   `json:"pricing_option_id"`
	FileName        string    `json:"file_name"`
	UserEmail       string    `json:"user_email"`
}
