package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// ExpirationSweeper retires content whose display window has already closed.
// Each retirement is an idempotent update/delete by id, so overlapping sweeps
// from concurrent generation passes are harmless.
type ExpirationSweeper struct {
	catalog Catalog
	logger  *logrus.Logger

	// stuckGrace enables the reconciliation pass for items left
	// half-deleted by a crashed completion write. Zero disables it.
	stuckGrace time.Duration
}

func NewExpirationSweeper(catalog Catalog, logger *logrus.Logger, stuckGrace time.Duration) *ExpirationSweeper {
	return &ExpirationSweeper{
		catalog:    catalog,
		logger:     logger,
		stuckGrace: stuckGrace,
	}
}

// Sweep retires every auto_delete_after_end item whose scheduled_end has
// passed. A failure on one item is logged and skipped; the sweep never
// aborts the generation pass that invoked it.
func (s *ExpirationSweeper) Sweep(ctx context.Context, now time.Time) {
	expired, err := s.catalog.ListExpiredContent(ctx, now)
	if err != nil {
		s.logger.WithError(err).Error("Expiration sweep: failed to list expired content")
		return
	}

	for _, item := range expired {
		if err := s.catalog.MarkCompletedBySystem(ctx, item.ID, now); err != nil {
			s.logger.WithError(err).WithField("content_id", item.ID).
				Warn("Expiration sweep: failed to mark content completed")
			continue
		}
		if err := s.catalog.DeleteQueueEntry(ctx, item.ID); err != nil {
			s.logger.WithError(err).WithField("content_id", item.ID).
				Warn("Expiration sweep: failed to delete queue entry")
			continue
		}
		s.logger.WithFields(logrus.Fields{
			"content_id":    item.ID,
			"scheduled_end": item.ScheduledEnd,
		}).Info("Retired content past its display window")
	}

	if s.stuckGrace > 0 {
		s.sweepStuck(ctx, now)
	}
}

// sweepStuck force-retires items whose completion write set has_been_played
// but crashed before the delete. Only paid single-play items can reach this
// state; past the grace period they are removed outright.
func (s *ExpirationSweeper) sweepStuck(ctx context.Context, now time.Time) {
	cutoff := now.Add(-s.stuckGrace)
	stuck, err := s.catalog.ListStuckPlayed(ctx, cutoff)
	if err != nil {
		s.logger.WithError(err).Error("Expiration sweep: failed to list stuck items")
		return
	}

	for _, item := range stuck {
		if !DeleteAfterPlay(item) {
			continue
		}
		if err := s.catalog.DeleteQueueEntry(ctx, item.ID); err != nil {
			s.logger.WithError(err).WithField("content_id", item.ID).
				Warn("Expiration sweep: failed to dequeue stuck item")
			continue
		}
		if err := s.catalog.DeleteContentItem(ctx, item.ID); err != nil {
			s.logger.WithError(err).WithField("content_id", item.ID).
				Warn("Expiration sweep: failed to delete stuck item")
			continue
		}
		s.logger.WithFields(logrus.Fields{
			"content_id": item.ID,
			"played_at":  item.PlayedAt,
		}).Info("Force-retired stuck played item")
	}
}
