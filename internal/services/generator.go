package services

import (
	"context"
	"fmt"
	"time"

	"github.com/MarcoCortez091118/ShowYoManny-sub000/internal/models"
	"github.com/sirupsen/logrus"
)

// PlaylistGenerator turns the queued catalog into the ordered document a
// kiosk consumes. Generation is pure given catalog state: two passes with no
// intervening writes produce identically ordered item lists.
type PlaylistGenerator struct {
	catalog Catalog
	sweeper *ExpirationSweeper
	logger  *logrus.Logger
	canvas  models.Canvas
}

func NewPlaylistGenerator(catalog Catalog, sweeper *ExpirationSweeper, logger *logrus.Logger, canvas models.Canvas) *PlaylistGenerator {
	return &PlaylistGenerator{
		catalog: catalog,
		sweeper: sweeper,
		logger:  logger,
		canvas:  canvas,
	}
}

// Generate runs the sweep, filters the queue, orders by priority, and emits
// the playlist document. Per-item problems drop the item; only a failed
// catalog read is fatal.
func (g *PlaylistGenerator) Generate(ctx context.Context, now time.Time, loc *time.Location) (*models.Playlist, error) {
	g.sweeper.Sweep(ctx, now)

	entries, err := g.catalog.ListQueuedContent(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load queue: %w", err)
	}

	midnight := Midnight(now, loc)

	var kept []*models.QueueEntry
	plays := make(map[string]int)
	for _, entry := range entries {
		item := entry.Item
		if item == nil || !Eligible(item) {
			continue
		}
		if !WithinWindow(item, now) {
			continue
		}
		if Throttled(item, now, g.lastPlayedAt(ctx, item)) {
			continue
		}

		playsToday, err := g.catalog.CountPlaysSince(ctx, item.FileURL, midnight)
		if err != nil {
			g.logger.WithError(err).WithField("content_id", item.ID).
				Warn("Failed to count plays, skipping cap check")
			playsToday = 0
		}
		if CapExceeded(item, playsToday) {
			continue
		}

		plays[item.ID] = playsToday
		kept = append(kept, entry)
	}

	SortByPriority(kept)

	items := make([]models.PlaylistItem, 0, len(kept))
	for _, entry := range kept {
		items = append(items, project(entry.Item, plays[entry.Item.ID]))
	}

	return &models.Playlist{
		Version:     models.PlaylistVersion,
		GeneratedAt: now,
		Timezone:    loc.String(),
		Canvas:      g.canvas,
		Items:       items,
	}, nil
}

// lastPlayedAt resolves the most recent play for throttling: the item's own
// played_at, then history by order id, then history by file path (duplicate
// orders of the same asset), then the activation time when a timer loop is
// configured. History lookup failures log and count as never played.
func (g *PlaylistGenerator) lastPlayedAt(ctx context.Context, item *models.ContentItem) *time.Time {
	if item.PlayedAt != nil {
		return item.PlayedAt
	}

	last, err := g.catalog.LastPlayForOrder(ctx, item.ID)
	if err != nil {
		g.logger.WithError(err).WithField("content_id", item.ID).
			Warn("Failed to look up last play by order")
	} else if last != nil {
		return last
	}

	last, err = g.catalog.LastPlayForFile(ctx, item.FileURL)
	if err != nil {
		g.logger.WithError(err).WithField("content_id", item.ID).
			Warn("Failed to look up last play by file")
	} else if last != nil {
		return last
	}

	if item.TimerLoopEnabled {
		return item.ActivatedAt
	}
	return nil
}

func project(item *models.ContentItem, playsToday int) models.PlaylistItem {
	var overlay *models.Overlay
	if item.BorderID != "" {
		overlay = &models.Overlay{BorderID: item.BorderID, Z: item.BorderZ}
	}

	var startAt, endAt *string
	if item.ScheduledStart != nil {
		s := item.ScheduledStart.Format(time.RFC3339)
		startAt = &s
	}
	if item.ScheduledEnd != nil {
		s := item.ScheduledEnd.Format(time.RFC3339)
		endAt = &s
	}

	fitMode := item.FitMode
	if fitMode == "" {
		fitMode = "fit"
	}

	return models.PlaylistItem{
		ID:              item.ID,
		Type:            item.MediaType,
		Src:             item.FileURL,
		DurationSec:     item.DurationSeconds,
		FitMode:         fitMode,
		Overlay:         overlay,
		Priority:        item.Priority(),
		Window:          models.Window{StartAt: startAt, EndAt: endAt},
		Repeat:          RepeatDescriptor(item),
		Caps:            models.Caps{MaxPlaysPerDay: item.RepeatFrequencyPerDay, CurrentPlays: playsToday},
		DeleteAfterPlay: DeleteAfterPlay(item),
		PricingOptionID: item.PricingOptionID,
		FileName:        item.FileName,
		UserEmail:       item.UserEmail,
	}
}
