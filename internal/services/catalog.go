package services

import (
	"context"
	"time"

	"github.com/MarcoCortez091118/ShowYoManny-sub000/internal/models"
)

// Catalog is the persistence surface scheduling and playback consume.
// *database.Repository implements it; tests substitute an in-memory store.
type Catalog interface {
	GetContentItem(ctx context.Context, id string) (*models.ContentItem, error)
	ListQueuedContent(ctx context.Context) ([]*models.QueueEntry, error)
	ListExpiredContent(ctx context.Context, now time.Time) ([]*models.ContentItem, error)
	ListStuckPlayed(ctx context.Context, cutoff time.Time) ([]*models.ContentItem, error)

	MarkCompletedBySystem(ctx context.Context, contentID string, now time.Time) error
	MarkPlayed(ctx context.Context, contentID string, now time.Time) error
	DeleteContentItem(ctx context.Context, contentID string) error
	DeleteQueueEntry(ctx context.Context, contentID string) error

	AppendPlayRecord(ctx context.Context, rec *models.PlayRecord) error
	CountPlaysSince(ctx context.Context, filePath string, since time.Time) (int, error)
	LastPlayForOrder(ctx context.Context, orderID string) (*time.Time, error)
	LastPlayForFile(ctx context.Context, filePath string) (*time.Time, error)
}
