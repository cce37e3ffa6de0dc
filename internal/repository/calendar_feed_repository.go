package repository

import (
	"context"
	"fmt"

	"bandsync/internal/model"
	"bandsync/internal/repository/base"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CalendarFeedRepository struct {
	*base.Repository
}

func NewCalendarFeedRepository(pool *pgxpool.Pool) *CalendarFeedRepository {
	return &CalendarFeedRepository{Repository: base.NewRepository(pool)}
}

// Add добавляет ICS-подписку участника
func (r *CalendarFeedRepository) Add(ctx context.Context, feed *model.CalendarFeed) error {
	query := `
		INSERT INTO calendar_feeds (user_id, name, url)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	err := r.QueryRow(ctx, query, feed.UserID, feed.Name, feed.URL).
		Scan(&feed.ID, &feed.CreatedAt)
	if err != nil {
		return fmt.Errorf("add calendar feed: %w", err)
	}

	return nil
}

// ListByUser получает все подписки участника
func (r *CalendarFeedRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.CalendarFeed, error) {
	query := `
		SELECT id, user_id, name, url, created_at
		FROM calendar_feeds
		WHERE user_id = $1
		ORDER BY created_at
	`

	rows, err := r.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list calendar feeds: %w", err)
	}
	defer rows.Close()

	var feeds []model.CalendarFeed
	for rows.Next() {
		var f model.CalendarFeed
		err := rows.Scan(&f.ID, &f.UserID, &f.Name, &f.URL, &f.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan calendar feed: %w", err)
		}
		feeds = append(feeds, f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate calendar feeds: %w", err)
	}

	return feeds, nil
}

// Delete удаляет подписку участника
func (r *CalendarFeedRepository) Delete(ctx context.Context, userID, feedID uuid.UUID) error {
	query := `
		DELETE FROM calendar_feeds
		WHERE id = $1 AND user_id = $2
	`

	affected, err := r.ExecAffected(ctx, query, feedID, userID)
	if err != nil {
		return fmt.Errorf("delete calendar feed: %w", err)
	}

	if affected == 0 {
		return fmt.Errorf("calendar feed not found")
	}

	return nil
}
