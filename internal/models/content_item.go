package models

import "time"

type MediaType string

const (
	MediaTypePhoto MediaType = "photo"
	MediaTypeVideo MediaType = "video"
)

type ModerationStatus string

const (
	ModerationPending  ModerationStatus = "pending"
	ModerationApproved ModerationStatus = "approved"
	ModerationRejected ModerationStatus = "rejected"
)

type DisplayStatus string

const (
	DisplayStatusPending   DisplayStatus = "pending"
	DisplayStatusQueued    DisplayStatus = "queued"
	DisplayStatusActive    DisplayStatus = "active"
	DisplayStatusPlaying   DisplayStatus = "playing"
	DisplayStatusCompleted DisplayStatus = "completed"
	DisplayStatusRejected  DisplayStatus = "rejected"
)

type SlotType string

const (
	SlotImmediate SlotType = "immediate"
	SlotScheduled SlotType = "scheduled"
)

// Priority is the closed set of ordering classes. Paid orders outrank
// admin content, which outranks house content.
type Priority string

const (
	PriorityPaid  Priority = "paid"
	PriorityAdmin Priority = "admin"
	PriorityHouse Priority = "house"
)

// Rank returns the sort rank for a priority class, lower plays first.
func (p Priority) Rank() int {
	switch p {
	case PriorityPaid:
		return 1
	case PriorityAdmin:
		return 2
	default:
		return 3
	}
}

// ContentItem is one displayable order: a photo or video somebody submitted,
// plus everything scheduling needs to know about it.
type ContentItem struct {
	ID        string    `json:"id"`
	FileURL   string    `json:"file_url"`
	FileName  string    `json:"file_name"`
	UserEmail string    `json:"user_email"`
	MediaType MediaType `json:"media_type"`

	DurationSeconds int    `json:"duration_seconds"`
	FitMode         string `json:"fit_mode"`
	BorderID        string `json:"border_id"`
	BorderZ         int    `json:"border_z"`

	PricingOptionID *string `json:"pricing_option_id"`
	IsAdminContent  bool    `json:"is_admin_content"`

	ModerationStatus ModerationStatus `json:"moderation_status"`
	DisplayStatus    DisplayStatus    `json:"display_status"`

	ScheduledStart *time.Time `json:"scheduled_start"`
	ScheduledEnd   *time.Time `json:"scheduled_end"`
	SlotType       SlotType   `json:"slot_type"`

	TimerLoopEnabled      bool `json:"timer_loop_enabled"`
	TimerLoopMinutes      int  `json:"timer_loop_minutes"`
	RepeatIntervalMinutes int  `json:"repeat_interval_minutes"`
	RepeatFrequencyPerDay int  `json:"repeat_frequency_per_day"`

	MaxPlays              int        `json:"max_plays"`
	PlayCount             int        `json:"play_count"`
	PlayedAt              *time.Time `json:"played_at"`
	HasBeenPlayed         bool       `json:"has_been_played"`
	AutoDeleteAfterEnd    bool       `json:"auto_delete_after_end"`
	AutoCompleteAfterPlay bool       `json:"auto_complete_after_play"`

	ActivatedAt        *time.Time `json:"activated_at"`
	DisplayCompletedAt *time.Time `json:"display_completed_at"`
	CompletedBySystem  bool       `json:"completed_by_system"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Priority classifies the item. A pricing option makes an order paid even
// when it was entered by an admin; the admin flag only matters for items
// nobody paid for.
func (c *ContentItem) Priority() Priority {
	switch {
	case c.PricingOptionID != nil && *c.PricingOptionID != "":
		return PriorityPaid
	case c.IsAdminContent:
		return PriorityAdmin
	default:
		return PriorityHouse
	}
}
