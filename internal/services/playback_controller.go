package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/MarcoCortez091118/ShowYoManny-sub000/internal/database"
	"github.com/MarcoCortez091118/ShowYoManny-sub000/internal/models"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type ControllerState string

const (
	StateIdle          ControllerState = "idle"
	StatePlaying       ControllerState = "playing"
	StateTransitioning ControllerState = "transitioning"
)

// PlaybackController is the per-display playback state machine. One
// cooperative loop serializes the two event sources (the 1 Hz countdown and
// the playlist refresh merge point) through a single state-update path; API
// status reads are the only cross-goroutine access and go through the mutex.
type PlaybackController struct {
	displayID    int
	catalog      Catalog
	generator    *PlaylistGenerator
	logger       *logrus.Logger
	loc          *time.Location
	pollInterval time.Duration

	mu        sync.Mutex
	state     ControllerState
	items     []models.PlaylistItem
	index     int
	currentID string
	remaining int
}

// PlaybackSnapshot is the status view the API serves for a display.
type PlaybackSnapshot struct {
	DisplayID        int             `json:"display_id"`
	State            ControllerState `json:"state"`
	CurrentItemID    string          `json:"current_item_id,omitempty"`
	Position         int             `json:"position"`
	RemainingSeconds int             `json:"remaining_seconds"`
	ItemCount        int             `json:"item_count"`
}

func NewPlaybackController(displayID int, catalog Catalog, generator *PlaylistGenerator,
	logger *logrus.Logger, loc *time.Location, pollInterval time.Duration) *PlaybackController {

	return &PlaybackController{
		displayID:    displayID,
		catalog:      catalog,
		generator:    generator,
		logger:       logger,
		loc:          loc,
		pollInterval: pollInterval,
		state:        StateIdle,
	}
}

// Run drives the controller until ctx is canceled. Push refreshes and the
// fallback poll both land in Apply, so a missed push self-heals within one
// poll interval.
func (c *PlaybackController) Run(ctx context.Context, refresh <-chan *models.Playlist) {
	c.pollRefresh(ctx)

	tick := time.NewTicker(time.Second)
	defer tick.Stop()
	poll := time.NewTicker(c.pollInterval)
	defer poll.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case playlist, ok := <-refresh:
			if !ok {
				refresh = nil
				continue
			}
			c.Apply(playlist)
		case <-poll.C:
			c.pollRefresh(ctx)
		case <-tick.C:
			c.Tick(ctx, time.Now())
		}
	}
}

func (c *PlaybackController) pollRefresh(ctx context.Context) {
	playlist, err := c.generator.Generate(ctx, time.Now(), c.loc)
	if err != nil {
		// Keep playing the last-known-good list.
		c.logger.WithError(err).WithField("display_id", c.displayID).
			Warn("Playlist refresh failed")
		return
	}
	c.Apply(playlist)
}

// Apply is the single merge point for refreshed playlists. An identical
// item-id sequence is a no-op: it must never interrupt an in-flight
// countdown.
func (c *PlaybackController) Apply(playlist *models.Playlist) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.applyLocked(playlist.Items)
}

func (c *PlaybackController) applyLocked(items []models.PlaylistItem) {
	if sameSequence(c.items, items) {
		return
	}

	c.items = items
	if len(items) == 0 {
		c.state = StateIdle
		c.index = 0
		c.currentID = ""
		c.remaining = 0
		return
	}

	if c.index >= len(items) {
		c.index = 0
	}

	if c.state == StateIdle {
		c.startLocked(c.index)
		return
	}

	// The slot we were playing may hold a different item now; only then
	// does its countdown restart.
	if items[c.index].ID != c.currentID {
		c.startLocked(c.index)
	}
}

func (c *PlaybackController) startLocked(index int) {
	c.index = index
	c.currentID = c.items[index].ID
	c.remaining = c.items[index].DurationSec
	c.state = StatePlaying
}

// Tick advances the per-second countdown. The transitioning state absorbs
// exactly one tick for the fade without touching the next item's duration.
func (c *PlaybackController) Tick(ctx context.Context, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case StateIdle:
		if len(c.items) > 0 {
			c.startLocked(0)
		}
	case StateTransitioning:
		c.state = StatePlaying
	case StatePlaying:
		c.remaining--
		if c.remaining <= 0 {
			c.completeLocked(ctx, now)
		}
	}
}

// completeLocked handles the natural end of an item's duration: bookkeeping,
// conditional deletion of single-play paid content, and advancement. A
// failed write is logged and playback still advances; a frozen display is
// worse than a missed counter update.
func (c *PlaybackController) completeLocked(ctx context.Context, now time.Time) {
	item := c.items[c.index]

	if item.DeleteAfterPlay {
		fresh, err := c.catalog.GetContentItem(ctx, item.ID)
		switch {
		case errors.Is(err, database.ErrNotFound):
			// Another display already retired it.
			c.refreshLocked(ctx, now)
			return
		case err != nil:
			c.logger.WithError(err).WithField("content_id", item.ID).
				Warn("Failed to fetch item at completion")
		case DeletionEligible(fresh):
			if fresh.HasBeenPlayed {
				// Completion was already handled once; never delete twice.
				c.refreshLocked(ctx, now)
				return
			}
			c.deleteAfterPlayLocked(ctx, now, item)
			return
		}
	}

	c.appendPlayRecord(ctx, now, item)
	c.advanceLocked()
}

func (c *PlaybackController) deleteAfterPlayLocked(ctx context.Context, now time.Time, item models.PlaylistItem) {
	if err := c.catalog.MarkPlayed(ctx, item.ID, now); err != nil {
		c.logger.WithError(err).WithField("content_id", item.ID).
			Warn("Play bookkeeping failed, advancing anyway")
		c.advanceLocked()
		return
	}

	c.appendPlayRecord(ctx, now, item)

	if err := c.catalog.DeleteQueueEntry(ctx, item.ID); err != nil {
		c.logger.WithError(err).WithField("content_id", item.ID).
			Warn("Failed to dequeue played item")
	}
	if err := c.catalog.DeleteContentItem(ctx, item.ID); err != nil {
		c.logger.WithError(err).WithField("content_id", item.ID).
			Warn("Failed to delete played item")
	} else {
		c.logger.WithFields(logrus.Fields{
			"display_id": c.displayID,
			"content_id": item.ID,
		}).Info("Deleted single-play item after playback")
	}

	c.refreshLocked(ctx, now)
}

func (c *PlaybackController) appendPlayRecord(ctx context.Context, now time.Time, item models.PlaylistItem) {
	rec := &models.PlayRecord{
		ID:       uuid.NewString(),
		OrderID:  item.ID,
		FilePath: item.Src,
		PlayedAt: now,
	}
	if err := c.catalog.AppendPlayRecord(ctx, rec); err != nil {
		c.logger.WithError(err).WithField("content_id", item.ID).
			Warn("Failed to append play record")
	}
}

func (c *PlaybackController) advanceLocked() {
	if len(c.items) == 0 {
		c.state = StateIdle
		return
	}
	next := (c.index + 1) % len(c.items)
	c.index = next
	c.currentID = c.items[next].ID
	c.remaining = c.items[next].DurationSec
	c.state = StateTransitioning
}

// refreshLocked re-fetches the playlist after a deletion so the index clamps
// into the shorter list. If generation fails, the played item is dropped
// locally so it cannot replay before the next successful refresh.
func (c *PlaybackController) refreshLocked(ctx context.Context, now time.Time) {
	playlist, err := c.generator.Generate(ctx, now, c.loc)
	if err != nil {
		c.logger.WithError(err).WithField("display_id", c.displayID).
			Warn("Post-deletion refresh failed, trimming locally")
		trimmed := make([]models.PlaylistItem, 0, len(c.items))
		trimmed = append(trimmed, c.items[:c.index]...)
		trimmed = append(trimmed, c.items[c.index+1:]...)
		c.applyForceLocked(trimmed)
		return
	}
	c.applyForceLocked(playlist.Items)
}

// applyForceLocked adopts a new list even when the current slot's countdown
// would otherwise survive; used after the current item finished.
func (c *PlaybackController) applyForceLocked(items []models.PlaylistItem) {
	c.items = items
	if len(items) == 0 {
		c.state = StateIdle
		c.index = 0
		c.currentID = ""
		c.remaining = 0
		return
	}
	if c.index >= len(items) {
		c.index = 0
	}
	c.currentID = items[c.index].ID
	c.remaining = items[c.index].DurationSec
	c.state = StateTransitioning
}

func (c *PlaybackController) Status() PlaybackSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	return PlaybackSnapshot{
		DisplayID:        c.displayID,
		State:            c.state,
		CurrentItemID:    c.currentID,
		Position:         c.index,
		RemainingSeconds: c.remaining,
		ItemCount:        len(c.items),
	}
}

func sameSequence(a []models.PlaylistItem, b []models.PlaylistItem) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID {
			return false
		}
	}
	return true
}
