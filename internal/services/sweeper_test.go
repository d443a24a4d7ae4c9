package services

import (
	"context"
	"testing"
	"time"

	"github.com/MarcoCortez091118/ShowYoManny-sub000/internal/models"
)

func expiredItem(id string, end time.Time) *models.ContentItem {
	item := approvedItem(id, id+".jpg")
	item.ScheduledEnd = &end
	item.AutoDeleteAfterEnd = true
	return item
}

func TestSweepRetiresExpired(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	catalog := newFakeCatalog()
	catalog.add(expiredItem("old", now.Add(-time.Hour)), 1)
	catalog.add(expiredItem("current", now.Add(time.Hour)), 2)

	keeper := approvedItem("keeper", "k.jpg")
	end := now.Add(-time.Hour)
	keeper.ScheduledEnd = &end // window closed but auto-delete not set
	catalog.add(keeper, 3)

	sweeper := NewExpirationSweeper(catalog, testLogger(), 0)
	sweeper.Sweep(context.Background(), now)

	old, err := catalog.GetContentItem(context.Background(), "old")
	if err != nil {
		t.Fatal(err)
	}
	if old.DisplayStatus != models.DisplayStatusCompleted || !old.CompletedBySystem || old.DisplayCompletedAt == nil {
		t.Error("expired item must be marked completed by the system")
	}

	current, _ := catalog.GetContentItem(context.Background(), "current")
	if current.DisplayStatus == models.DisplayStatusCompleted {
		t.Error("item inside its window must not be retired")
	}
	kept, _ := catalog.GetContentItem(context.Background(), "keeper")
	if kept.DisplayStatus == models.DisplayStatusCompleted {
		t.Error("item without auto_delete_after_end must not be retired")
	}

	entries, _ := catalog.ListQueuedContent(context.Background())
	if len(entries) != 2 {
		t.Errorf("queue should hold 2 entries after sweep, got %d", len(entries))
	}

	// A second sweep is a no-op.
	sweeper.Sweep(context.Background(), now)
	entries, _ = catalog.ListQueuedContent(context.Background())
	if len(entries) != 2 {
		t.Errorf("repeated sweep changed the queue: %d entries", len(entries))
	}
}

func TestSweepSkipsFailedItems(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	catalog := newFakeCatalog()
	catalog.add(expiredItem("bad", now.Add(-time.Hour)), 1)
	catalog.add(expiredItem("good", now.Add(-time.Hour)), 2)
	catalog.failMarkCompleted["bad"] = true

	sweeper := NewExpirationSweeper(catalog, testLogger(), 0)
	sweeper.Sweep(context.Background(), now)

	good, _ := catalog.GetContentItem(context.Background(), "good")
	if good.DisplayStatus != models.DisplayStatusCompleted {
		t.Error("a failure on one item must not stop the sweep")
	}
	bad, _ := catalog.GetContentItem(context.Background(), "bad")
	if bad.DisplayStatus == models.DisplayStatusCompleted {
		t.Error("failed item should remain unretired for the next pass")
	}
}

func TestSweepForceRetiresStuckItems(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	catalog := newFakeCatalog()

	stuck := paidItem("stuck", "s.mp4")
	stuck.HasBeenPlayed = true
	played := now.Add(-2 * time.Hour)
	stuck.PlayedAt = &played
	catalog.add(stuck, 1)

	fresh := paidItem("fresh", "f.mp4")
	fresh.HasBeenPlayed = true
	justPlayed := now.Add(-time.Minute)
	fresh.PlayedAt = &justPlayed
	catalog.add(fresh, 2)

	// Disabled by default.
	NewExpirationSweeper(catalog, testLogger(), 0).Sweep(context.Background(), now)
	if !catalog.has("stuck") {
		t.Fatal("grace 0 must disable the stuck-item sweep")
	}

	NewExpirationSweeper(catalog, testLogger(), time.Hour).Sweep(context.Background(), now)
	if catalog.has("stuck") {
		t.Error("item stuck past the grace period must be removed")
	}
	if !catalog.has("fresh") {
		t.Error("recently played item must survive the grace period")
	}
}
