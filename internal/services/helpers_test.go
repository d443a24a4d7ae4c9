package services

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/MarcoCortez091118/ShowYoManny-sub000/internal/database"
	"github.com/MarcoCortez091118/ShowYoManny-sub000/internal/models"
	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// fakeCatalog is an in-memory Catalog with the same read/update/delete
// semantics as the MySQL repository, plus per-method error injection.
type fakeCatalog struct {
	mu      sync.Mutex
	items   map[string]*models.ContentItem
	queue   []*models.QueueEntry
	records []*models.PlayRecord

	failMarkCompleted map[string]bool
	failMarkPlayed    bool
	failAppendRecord  bool
	failListQueue     bool
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		items:             make(map[string]*models.ContentItem),
		failMarkCompleted: make(map[string]bool),
	}
}

func (f *fakeCatalog) add(item *models.ContentItem, position int) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.items[item.ID] = item
	f.queue = append(f.queue, &models.QueueEntry{
		ID:            "q-" + item.ID,
		ContentID:     item.ID,
		QueuePosition: position,
		Active:        true,
		CreatedAt:     time.Now(),
	})
}

func (f *fakeCatalog) has(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.items[id]
	return ok
}

func (f *fakeCatalog) GetContentItem(ctx context.Context, id string) (*models.ContentItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	item, ok := f.items[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	copied := *item
	return &copied, nil
}

func (f *fakeCatalog) ListQueuedContent(ctx context.Context) ([]*models.QueueEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failListQueue {
		return nil, fmt.Errorf("queue read failed")
	}

	entries := make([]*models.QueueEntry, 0, len(f.queue))
	for _, q := range f.queue {
		item, ok := f.items[q.ContentID]
		if !ok {
			continue
		}
		entry := *q
		copied := *item
		entry.Item = &copied
		entries = append(entries, &entry)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].QueuePosition < entries[j].QueuePosition
	})
	return entries, nil
}

func (f *fakeCatalog) ListExpiredContent(ctx context.Context, now time.Time) ([]*models.ContentItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var expired []*models.ContentItem
	for _, item := range f.items {
		if item.AutoDeleteAfterEnd &&
			item.ScheduledEnd != nil && item.ScheduledEnd.Before(now) &&
			item.DisplayStatus != models.DisplayStatusCompleted {
			copied := *item
			expired = append(expired, &copied)
		}
	}
	sort.Slice(expired, func(i, j int) bool { return expired[i].ID < expired[j].ID })
	return expired, nil
}

func (f *fakeCatalog) ListStuckPlayed(ctx context.Context, cutoff time.Time) ([]*models.ContentItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var stuck []*models.ContentItem
	for _, item := range f.items {
		if item.HasBeenPlayed && item.PlayedAt != nil && item.PlayedAt.Before(cutoff) {
			copied := *item
			stuck = append(stuck, &copied)
		}
	}
	return stuck, nil
}

func (f *fakeCatalog) MarkCompletedBySystem(ctx context.Context, contentID string, now time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failMarkCompleted[contentID] {
		return fmt.Errorf("update failed for %s", contentID)
	}
	if item, ok := f.items[contentID]; ok {
		item.DisplayStatus = models.DisplayStatusCompleted
		item.DisplayCompletedAt = &now
		item.CompletedBySystem = true
	}
	return nil
}

func (f *fakeCatalog) MarkPlayed(ctx context.Context, contentID string, now time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failMarkPlayed {
		return fmt.Errorf("update failed for %s", contentID)
	}
	if item, ok := f.items[contentID]; ok {
		item.HasBeenPlayed = true
		item.PlayedAt = &now
		item.PlayCount++
	}
	return nil
}

func (f *fakeCatalog) DeleteContentItem(ctx context.Context, contentID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.items, contentID)
	// Queue rows cascade with the content row.
	f.removeQueueEntryLocked(contentID)
	return nil
}

func (f *fakeCatalog) DeleteQueueEntry(ctx context.Context, contentID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.removeQueueEntryLocked(contentID)
	return nil
}

func (f *fakeCatalog) removeQueueEntryLocked(contentID string) {
	kept := f.queue[:0]
	for _, q := range f.queue {
		if q.ContentID != contentID {
			kept = append(kept, q)
		}
	}
	f.queue = kept
}

func (f *fakeCatalog) AppendPlayRecord(ctx context.Context, rec *models.PlayRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failAppendRecord {
		return fmt.Errorf("insert failed")
	}
	copied := *rec
	f.records = append(f.records, &copied)
	return nil
}

func (f *fakeCatalog) CountPlaysSince(ctx context.Context, filePath string, since time.Time) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	count := 0
	for _, rec := range f.records {
		if rec.FilePath == filePath && !rec.PlayedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func (f *fakeCatalog) LastPlayForOrder(ctx context.Context, orderID string) (*time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var last *time.Time
	for _, rec := range f.records {
		if rec.OrderID == orderID && (last == nil || rec.PlayedAt.After(*last)) {
			t := rec.PlayedAt
			last = &t
		}
	}
	return last, nil
}

func (f *fakeCatalog) LastPlayForFile(ctx context.Context, filePath string) (*time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var last *time.Time
	for _, rec := range f.records {
		if rec.FilePath == filePath && (last == nil || rec.PlayedAt.After(*last)) {
			t := rec.PlayedAt
			last = &t
		}
	}
	return last, nil
}

// Item builders.

func approvedItem(id, fileURL string) *models.ContentItem {
	return &models.ContentItem{
		ID:               id,
		FileURL:          fileURL,
		FileName:         fileURL,
		MediaType:        models.MediaTypePhoto,
		DurationSeconds:  5,
		FitMode:          "fit",
		ModerationStatus: models.ModerationApproved,
		DisplayStatus:    models.DisplayStatusQueued,
		SlotType:         models.SlotScheduled,
	}
}

func paidItem(id, fileURL string) *models.ContentItem {
	item := approvedItem(id, fileURL)
	pricing := "single-play"
	item.PricingOptionID = &pricing
	item.SlotType = models.SlotImmediate
	item.MaxPlays = 1
	return item
}

func adminItem(id, fileURL string) *models.ContentItem {
	item := approvedItem(id, fileURL)
	item.IsAdminContent = true
	return item
}

func newTestGenerator(catalog *fakeCatalog) *PlaylistGenerator {
	logger := testLogger()
	sweeper := NewExpirationSweeper(catalog, logger, 0)
	return NewPlaylistGenerator(catalog, sweeper, logger, models.Canvas{Width: 1080, Height: 1920})
}

func playlistIDs(p *models.Playlist) []string {
	ids := make([]string, 0, len(p.Items))
	for _, item := range p.Items {
		ids = append(ids, item.ID)
	}
	return ids
}
