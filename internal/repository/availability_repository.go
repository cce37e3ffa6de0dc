package repository

import (
	"context"
	"fmt"
	"time"

	"bandsync/internal/model"
	"bandsync/internal/repository/base"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AvailabilityRepository struct {
	*base.Repository
}

func NewAvailabilityRepository(pool *pgxpool.Pool) *AvailabilityRepository {
	return &AvailabilityRepository{Repository: base.NewRepository(pool)}
}

// Upsert атомарно устанавливает отметку участника на слот.
// Уникальный индекс по (user_id, group_id, start_time) плюс ON CONFLICT
// заменяют гонку delete-then-insert из оригинальной схемы.
func (r *AvailabilityRepository) Upsert(ctx context.Context, a *model.Availability) error {
	query := `
		INSERT INTO availabilities (user_id, group_id, start_time, end_time, priority)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, group_id, start_time) DO UPDATE
		SET end_time = EXCLUDED.end_time,
		    priority = EXCLUDED.priority
		RETURNING id, created_at
	`

	err := r.QueryRow(
		ctx, query,
		a.UserID,
		a.GroupID,
		a.StartTime,
		a.EndTime,
		a.Priority,
	).Scan(&a.ID, &a.CreatedAt)

	if err != nil {
		return fmt.Errorf("upsert availability: %w", err)
	}

	return nil
}

// UpsertBatch атомарно ставит отметки на несколько слотов одной пачкой
func (r *AvailabilityRepository) UpsertBatch(ctx context.Context, marks []*model.Availability) error {
	if len(marks) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, a := range marks {
		batch.Queue(`
			INSERT INTO availabilities (user_id, group_id, start_time, end_time, priority)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (user_id, group_id, start_time) DO UPDATE
			SET end_time = EXCLUDED.end_time,
			    priority = EXCLUDED.priority
		`, a.UserID, a.GroupID, a.StartTime, a.EndTime, a.Priority)
	}

	br := r.Pool().SendBatch(ctx, batch)
	defer br.Close()

	for range marks {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("upsert availability batch: %w", err)
		}
	}

	return nil
}

// Delete снимает отметку участника со слота
func (r *AvailabilityRepository) Delete(ctx context.Context, userID, groupID uuid.UUID, start time.Time) error {
	query := `
		DELETE FROM availabilities
		WHERE user_id = $1 AND group_id = $2 AND start_time = $3
	`

	_, err := r.ExecAffected(ctx, query, userID, groupID, start)
	if err != nil {
		return fmt.Errorf("delete availability: %w", err)
	}

	return nil
}

// DeleteRange снимает отметки участника в диапазоне [from, to)
func (r *AvailabilityRepository) DeleteRange(ctx context.Context, userID, groupID uuid.UUID, from, to time.Time) error {
	query := `
		DELETE FROM availabilities
		WHERE user_id = $1 AND group_id = $2
		  AND start_time >= $3
		  AND start_time < $4
	`

	_, err := r.ExecAffected(ctx, query, userID, groupID, from, to)
	if err != nil {
		return fmt.Errorf("delete availability range: %w", err)
	}

	return nil
}

// DeleteIn снимает отметки участника на перечисленных стартах
func (r *AvailabilityRepository) DeleteIn(ctx context.Context, userID, groupID uuid.UUID, starts []time.Time) error {
	if len(starts) == 0 {
		return nil
	}

	query := `
		DELETE FROM availabilities
		WHERE user_id = $1 AND group_id = $2 AND start_time = ANY($3)
	`

	_, err := r.ExecAffected(ctx, query, userID, groupID, starts)
	if err != nil {
		return fmt.Errorf("delete availability in: %w", err)
	}

	return nil
}

// ListByGroup получает все отметки группы
func (r *AvailabilityRepository) ListByGroup(ctx context.Context, groupID uuid.UUID) ([]model.Availability, error) {
	query := `
		SELECT id, user_id, group_id, start_time, end_time, priority, created_at
		FROM availabilities
		WHERE group_id = $1
		ORDER BY start_time
	`

	return r.list(ctx, query, groupID)
}

// ListByGroupRange получает отметки группы со стартом в [from, to)
func (r *AvailabilityRepository) ListByGroupRange(ctx context.Context, groupID uuid.UUID, from, to time.Time) ([]model.Availability, error) {
	query := `
		SELECT id, user_id, group_id, start_time, end_time, priority, created_at
		FROM availabilities
		WHERE group_id = $1
		  AND start_time >= $2
		  AND start_time < $3
		ORDER BY start_time
	`

	return r.list(ctx, query, groupID, from, to)
}

func (r *AvailabilityRepository) list(ctx context.Context, query string, args ...interface{}) ([]model.Availability, error) {
	rows, err := r.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list availabilities: %w", err)
	}
	defer rows.Close()

	var marks []model.Availability
	for rows.Next() {
		var a model.Availability
		err := rows.Scan(
			&a.ID,
			&a.UserID,
			&a.GroupID,
			&a.StartTime,
			&a.EndTime,
			&a.Priority,
			&a.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan availability: %w", err)
		}
		marks = append(marks, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate availabilities: %w", err)
	}

	return marks, nil
}
