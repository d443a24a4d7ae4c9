package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/MarcoCortez091118/ShowYoManny-sub000/internal/config"
	"github.com/MarcoCortez091118/ShowYoManny-sub000/internal/models"
	_ "github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned for key-based reads that match nothing.
var ErrNotFound = errors.New("not found")

type Repository struct {
	db *sql.DB
}

func NewRepository(cfg *config.Config) (*Repository, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

const contentColumns = `id, file_url, file_name, user_email, media_type,
	duration_seconds, fit_mode, border_id, border_z,
	pricing_option_id, is_admin_content, moderation_status, display_status,
	scheduled_start, scheduled_end, slot_type,
	timer_loop_enabled, timer_loop_minutes, repeat_interval_minutes, repeat_frequency_per_day,
	max_plays, play_count, played_at, has_been_played,
	auto_delete_after_end, auto_complete_after_play,
	activated_at, display_completed_at, completed_by_system,
	created_at, updated_at`

func scanContentItem(row interface{ Scan(...any) error }) (*models.ContentItem, error) {
	var item models.ContentItem
	var pricingOption sql.NullString
	err := row.Scan(
		&item.ID,
		&item.FileURL,
		&item.FileName,
		&item.UserEmail,
		&item.MediaType,
		&item.DurationSeconds,
		&item.FitMode,
		&item.BorderID,
		&item.BorderZ,
		&pricingOption,
		&item.IsAdminContent,
		&item.ModerationStatus,
		&item.DisplayStatus,
		&item.ScheduledStart,
		&item.ScheduledEnd,
		&item.SlotType,
		&item.TimerLoopEnabled,
		&item.TimerLoopMinutes,
		&item.RepeatIntervalMinutes,
		&item.RepeatFrequencyPerDay,
		&item.MaxPlays,
		&item.PlayCount,
		&item.PlayedAt,
		&item.HasBeenPlayed,
		&item.AutoDeleteAfterEnd,
		&item.AutoCompleteAfterPlay,
		&item.ActivatedAt,
		&item.DisplayCompletedAt,
		&item.CompletedBySystem,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if pricingOption.Valid {
		item.PricingOptionID = &pricingOption.String
	}
	return &item, nil
}

func (r *Repository) GetContentItem(ctx context.Context, id string) (*models.ContentItem, error) {
	query := `SELECT ` + contentColumns + ` FROM content_items WHERE id = ?`

	item, err := scanContentItem(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan content item: %w", err)
	}
	return item, nil
}

// ListQueuedContent returns every queue entry joined to its content item,
// ordered by queue position with insertion order breaking ties.
func (r *Repository) ListQueuedContent(ctx context.Context) ([]*models.QueueEntry, error) {
	query := `SELECT q.id, q.content_id, q.queue_position, q.active, q.created_at,
		c.id, c.file_url, c.file_name, c.user_email, c.media_type,
		c.duration_seconds, c.fit_mode, c.border_id, c.border_z,
		c.pricing_option_id, c.is_admin_content, c.moderation_status, c.display_status,
		c.scheduled_start, c.scheduled_end, c.slot_type,
		c.timer_loop_enabled, c.timer_loop_minutes, c.repeat_interval_minutes, c.repeat_frequency_per_day,
		c.max_plays, c.play_count, c.played_at, c.has_been_played,
		c.auto_delete_after_end, c.auto_complete_after_play,
		c.activated_at, c.display_completed_at, c.completed_by_system,
		c.created_at, c.updated_at
		FROM queue_entries q
		JOIN content_items c ON c.id = q.content_id
		ORDER BY q.queue_position, q.created_at, q.id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query queue: %w", err)
	}
	defer rows.Close()

	var entries []*models.QueueEntry
	for rows.Next() {
		var entry models.QueueEntry
		var item models.ContentItem
		var pricingOption sql.NullString

		err := rows.Scan(
			&entry.ID,
			&entry.ContentID,
			&entry.QueuePosition,
			&entry.Active,
			&entry.CreatedAt,
			&item.ID,
			&item.FileURL,
			&item.FileName,
			&item.UserEmail,
			&item.MediaType,
			&item.DurationSeconds,
			&item.FitMode,
			&item.BorderID,
			&item.BorderZ,
			&pricingOption,
			&item.IsAdminContent,
			&item.ModerationStatus,
			&item.DisplayStatus,
			&item.ScheduledStart,
			&item.ScheduledEnd,
			&item.SlotType,
			&item.TimerLoopEnabled,
			&item.TimerLoopMinutes,
			&item.RepeatIntervalMinutes,
			&item.RepeatFrequencyPerDay,
			&item.MaxPlays,
			&item.PlayCount,
			&item.PlayedAt,
			&item.HasBeenPlayed,
			&item.AutoDeleteAfterEnd,
			&item.AutoCompleteAfterPlay,
			&item.ActivatedAt,
			&item.DisplayCompletedAt,
			&item.CompletedBySystem,
			&item.CreatedAt,
			&item.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan queue entry: %w", err)
		}
		if pricingOption.Valid {
			item.PricingOptionID = &pricingOption.String
		}
		entry.Item = &item
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return entries, nil
}

// ListExpiredContent finds items flagged to auto-retire whose display window
// already closed and which have not yet been retired.
func (r *Repository) ListExpiredContent(ctx context.Context, now time.Time) ([]*models.ContentItem, error) {
	query := `SELECT ` + contentColumns + ` FROM content_items
		WHERE auto_delete_after_end = TRUE
		AND scheduled_end IS NOT NULL AND scheduled_end < ?
		AND display_status <> 'completed'`

	return r.listContent(ctx, query, now)
}

// ListStuckPlayed finds items left half-deleted by a crashed completion
// write: has_been_played set, played before the cutoff, still present.
func (r *Repository) ListStuckPlayed(ctx context.Context, cutoff time.Time) ([]*models.ContentItem, error) {
	query := `SELECT ` + contentColumns + ` FROM content_items
		WHERE has_been_played = TRUE
		AND played_at IS NOT NULL AND played_at < ?`

	return r.listContent(ctx, query, cutoff)
}

func (r *Repository) listContent(ctx context.Context, query string, args ...any) ([]*models.ContentItem, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query content items: %w", err)
	}
	defer rows.Close()

	var items []*models.ContentItem
	for rows.Next() {
		item, err := scanContentItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan content item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return items, nil
}

// MarkCompletedBySystem retires an item whose window closed. Safe to repeat:
// a second call updates the same row to the same terminal state.
func (r *Repository) MarkCompletedBySystem(ctx context.Context, contentID string, now time.Time) error {
	query := `UPDATE content_items
		SET display_status = 'completed', display_completed_at = ?, completed_by_system = TRUE
		WHERE id = ?`

	_, err := r.db.ExecContext(ctx, query, now, contentID)
	if err != nil {
		return fmt.Errorf("failed to mark content completed: %w", err)
	}
	return nil
}

// MarkPlayed sets the at-most-once guard and bumps the play counter in one
// statement.
func (r *Repository) MarkPlayed(ctx context.Context, contentID string, now time.Time) error {
	query := `UPDATE content_items
		SET has_been_played = TRUE, played_at = ?, play_count = play_count + 1
		WHERE id = ?`

	_, err := r.db.ExecContext(ctx, query, now, contentID)
	if err != nil {
		return fmt.Errorf("failed to mark content played: %w", err)
	}
	return nil
}

func (r *Repository) DeleteContentItem(ctx context.Context, contentID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM content_items WHERE id = ?`, contentID)
	if err != nil {
		return fmt.Errorf("failed to delete content item: %w", err)
	}
	return nil
}

func (r *Repository) DeleteQueueEntry(ctx context.Context, contentID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM queue_entries WHERE content_id = ?`, contentID)
	if err != nil {
		return fmt.Errorf("failed to delete queue entry: %w", err)
	}
	return nil
}

func (r *Repository) AppendPlayRecord(ctx context.Context, rec *models.PlayRecord) error {
	query := `INSERT INTO play_records (id, order_id, file_path, played_at) VALUES (?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query, rec.ID, rec.OrderID, rec.FilePath, rec.PlayedAt)
	if err != nil {
		return fmt.Errorf("failed to append play record: %w", err)
	}
	return nil
}

// CountPlaysSince counts plays of an asset (by file path, so duplicate
// orders of the same file share the count) since the given instant.
func (r *Repository) CountPlaysSince(ctx context.Context, filePath string, since time.Time) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM play_records WHERE file_path = ? AND played_at >= ?`
	if err := r.db.QueryRowContext(ctx, query, filePath, since).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count plays: %w", err)
	}
	return count, nil
}

func (r *Repository) LastPlayForOrder(ctx context.Context, orderID string) (*time.Time, error) {
	query := `SELECT MAX(played_at) FROM play_records WHERE order_id = ?`
	return r.lastPlay(ctx, query, orderID)
}

func (r *Repository) LastPlayForFile(ctx context.Context, filePath string) (*time.Time, error) {
	query := `SELECT MAX(played_at) FROM play_records WHERE file_path = ?`
	return r.lastPlay(ctx, query, filePath)
}

func (r *Repository) lastPlay(ctx context.Context, query string, arg string) (*time.Time, error) {
	var last sql.NullTime
	if err := r.db.QueryRowContext(ctx, query, arg).Scan(&last); err != nil {
		return nil, fmt.Errorf("failed to query last play: %w", err)
	}
	if !last.Valid {
		return nil, nil
	}
	return &last.Time, nil
}

func (r *Repository) GetDisplay(ctx context.Context, id int) (*models.Display, error) {
	query := `SELECT display_id, display_name, location, enabled, created_at, updated_at
		FROM displays WHERE display_id = ?`

	row := r.db.QueryRowContext(ctx, query, id)
	var d models.Display
	err := row.Scan(&d.ID, &d.Name, &d.Location, &d.Enabled, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan display: %w", err)
	}
	return &d, nil
}

func (r *Repository) ListDisplays(ctx context.Context) ([]*models.Display, error) {
	query := `SELECT display_id, display_name, location, enabled, created_at, updated_at
		FROM displays ORDER BY display_id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query displays: %w", err)
	}
	defer rows.Close()

	var displays []*models.Display
	for rows.Next() {
		var d models.Display
		if err := rows.Scan(&d.ID, &d.Name, &d.Location, &d.Enabled, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan display: %w", err)
		}
		displays = append(displays, &d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return displays, nil
}
