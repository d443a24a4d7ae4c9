package models

import "time"

// PlayRecord is one append-only history row. Daily caps are derived per
// file path (duplicate orders of the same asset share a cap) and interval
// throttling per order id with a file-path fallback.
type PlayRecord struct {
	ID       string    `json:"id"`
	OrderID  string    `json:"order_id"`
	FilePath string    `json:"file_path"`
	PlayedAt time.Time `json:"played_at"`
}
