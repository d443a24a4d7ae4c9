package services

import (
	"sort"
	"time"

	"github.com/MarcoCortez091118/ShowYoManny-sub000/internal/models"
)

// Scheduling rules. Every function takes its clock and timezone explicitly
// so the generator stays deterministic under test.

// Eligible reports whether an item may appear in a playlist at all:
// approved, in a displayable status, and backed by an actual file.
func Eligible(item *models.ContentItem) bool {
	if item.ModerationStatus != models.ModerationApproved {
		return false
	}
	switch item.DisplayStatus {
	case models.DisplayStatusQueued, models.DisplayStatusActive, models.DisplayStatusPlaying:
	default:
		return false
	}
	return item.FileURL != ""
}

// WithinWindow checks the scheduling window. Start and end are optional and
// independent: either bound alone constrains only its own side.
func WithinWindow(item *models.ContentItem, now time.Time) bool {
	if item.ScheduledStart != nil && now.Before(*item.ScheduledStart) {
		return false
	}
	if item.ScheduledEnd != nil && now.After(*item.ScheduledEnd) {
		return false
	}
	return true
}

// IntervalMinutes resolves the repeat throttle: the timer loop wins when
// enabled, otherwise the legacy repeat interval applies.
func IntervalMinutes(item *models.ContentItem) int {
	if item.TimerLoopEnabled {
		return item.TimerLoopMinutes
	}
	return item.RepeatIntervalMinutes
}

// Throttled reports whether the item played too recently to play again.
// A nil lastPlayed means the item never played and is never throttled.
func Throttled(item *models.ContentItem, now time.Time, lastPlayed *time.Time) bool {
	interval := IntervalMinutes(item)
	if interval <= 0 || lastPlayed == nil {
		return false
	}
	return now.Before(lastPlayed.Add(time.Duration(interval) * time.Minute))
}

// CapApplies reports whether the daily play cap is enforced for this item.
// House and admin content are exempt.
func CapApplies(item *models.ContentItem) bool {
	return item.Priority() == models.PriorityPaid &&
		!item.IsAdminContent &&
		item.RepeatFrequencyPerDay > 0
}

// CapExceeded compares today's play count against the configured cap.
func CapExceeded(item *models.ContentItem, playsToday int) bool {
	return CapApplies(item) && playsToday >= item.RepeatFrequencyPerDay
}

// DeleteAfterPlay marks single-play paid orders for removal once played.
func DeleteAfterPlay(item *models.ContentItem) bool {
	return item.Priority() == models.PriorityPaid && !item.IsAdminContent
}

// DeletionEligible decides whether a just-finished play retires the item:
// immediate slots and unscheduled items go after one play; scheduled items
// only once their play quota is exhausted and auto-complete is on.
func DeletionEligible(item *models.ContentItem) bool {
	if !DeleteAfterPlay(item) {
		return false
	}
	if item.SlotType == models.SlotImmediate {
		return true
	}
	if item.ScheduledStart == nil && item.ScheduledEnd == nil {
		return true
	}
	return item.AutoCompleteAfterPlay && item.MaxPlays > 0 && item.PlayCount+1 >= item.MaxPlays
}

// Midnight returns the start of the current calendar day in loc.
func Midnight(now time.Time, loc *time.Location) time.Time {
	local := now.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}

// SortByPriority orders queue entries paid, admin, house; equal ranks keep
// ascending queue position.
func SortByPriority(entries []*models.QueueEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		ri, rj := entries[i].Item.Priority().Rank(), entries[j].Item.Priority().Rank()
		if ri != rj {
			return ri < rj
		}
		return entries[i].QueuePosition < entries[j].QueuePosition
	})
}

// RepeatDescriptor summarizes the repeat policy for the wire document.
func RepeatDescriptor(item *models.ContentItem) models.Repeat {
	if interval := IntervalMinutes(item); interval > 0 {
		n := item.MaxPlays
		rep := models.Repeat{Mode: models.RepeatInterval, IntervalMinutes: &interval}
		if n > 0 {
			rep.N = &n
		}
		return rep
	}
	if item.MaxPlays > 0 {
		n := item.MaxPlays
		mode := models.RepeatUnlimited
		if n == 1 {
			mode = models.RepeatOnce
		}
		return models.Repeat{Mode: mode, N: &n}
	}
	return models.Repeat{Mode: models.RepeatUnlimited}
}
