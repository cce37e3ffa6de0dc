package repository

import (
	"context"
	"fmt"
	"time"

	"bandsync/internal/model"
	"bandsync/internal/repository/base"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PracticeEventRepository struct {
	*base.Repository
}

func NewPracticeEventRepository(pool *pgxpool.Pool) *PracticeEventRepository {
	return &PracticeEventRepository{Repository: base.NewRepository(pool)}
}

// Insert создаёт practice event. Нарушение уникальности по
// (group_id, start_time) возвращается как есть: сервис трактует его
// как успех (last-writer-wins).
func (r *PracticeEventRepository) Insert(ctx context.Context, e *model.PracticeEvent) error {
	query := `
		INSERT INTO practice_events (group_id, start_time, end_time, created_by)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := r.QueryRow(
		ctx, query,
		e.GroupID,
		e.StartTime,
		e.EndTime,
		e.CreatedBy,
	).Scan(&e.ID, &e.CreatedAt)

	if err != nil {
		return fmt.Errorf("insert practice event: %w", err)
	}

	return nil
}

// GetByStart получает practice event группы по старту слота
func (r *PracticeEventRepository) GetByStart(ctx context.Context, groupID uuid.UUID, start time.Time) (*model.PracticeEvent, error) {
	query := `
		SELECT id, group_id, start_time, end_time, created_by, created_at
		FROM practice_events
		WHERE group_id = $1 AND start_time = $2
	`

	var e model.PracticeEvent
	err := r.QueryRow(ctx, query, groupID, start).Scan(
		&e.ID,
		&e.GroupID,
		&e.StartTime,
		&e.EndTime,
		&e.CreatedBy,
		&e.CreatedAt,
	)

	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get practice event by start: %w", err)
	}

	return &e, nil
}

// DeleteByStart удаляет practice event группы по старту слота,
// возвращая количество удалённых строк
func (r *PracticeEventRepository) DeleteByStart(ctx context.Context, groupID uuid.UUID, start time.Time) (int64, error) {
	query := `
		DELETE FROM practice_events
		WHERE group_id = $1 AND start_time = $2
	`

	deleted, err := r.ExecAffected(ctx, query, groupID, start)
	if err != nil {
		return 0, fmt.Errorf("delete practice event: %w", err)
	}

	return deleted, nil
}

// ListByGroupRange получает practice events группы со стартом в [from, to)
func (r *PracticeEventRepository) ListByGroupRange(ctx context.Context, groupID uuid.UUID, from, to time.Time) ([]model.PracticeEvent, error) {
	query := `
		SELECT id, group_id, start_time, end_time, created_by, created_at
		FROM practice_events
		WHERE group_id = $1
		  AND start_time >= $2
		  AND start_time < $3
		ORDER BY start_time
	`

	rows, err := r.Query(ctx, query, groupID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list practice events: %w", err)
	}
	defer rows.Close()

	var events []model.PracticeEvent
	for rows.Next() {
		var e model.PracticeEvent
		err := rows.Scan(
			&e.ID,
			&e.GroupID,
			&e.StartTime,
			&e.EndTime,
			&e.CreatedBy,
			&e.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan practice event: %w", err)
		}
		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate practice events: %w", err)
	}

	return events, nil
}

// DeleteAllByGroup удаляет все practice events группы (владелец, массовая чистка)
func (r *PracticeEventRepository) DeleteAllByGroup(ctx context.Context, groupID uuid.UUID) (int64, error) {
	query := `
		DELETE FROM practice_events
		WHERE group_id = $1
	`

	deleted, err := r.ExecAffected(ctx, query, groupID)
	if err != nil {
		return 0, fmt.Errorf("delete group practice events: %w", err)
	}

	return deleted, nil
}
