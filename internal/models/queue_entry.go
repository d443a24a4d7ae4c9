package models

import "time"

// QueueEntry pins a ContentItem into the display queue. Position ties are
// broken by insertion order, which the catalog preserves on read.
type QueueEntry struct {
	ID            string    `json:"id"`
	ContentID     string    `json:"content_id"`
	QueuePosition int       `json:"queue_position"`
	Active        bool      `json:"active"`
	CreatedAt     time.Time `json:"created_at"`

	// Item is populated on joined reads, never persisted from here.
	Item *ContentItem `json:"item,omitempty"`
}
