package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bandsync/internal/model"
	"bandsync/internal/repository/base"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrStaleSyncToken возвращается, когда ответ синхронизации несёт
// токен старее уже применённого (поздно пришедший ответ обгоняется
// более свежим и не должен его затирать)
var ErrStaleSyncToken = errors.New("sync token is stale")

type BusySlotRepository struct {
	*base.Repository
}

func NewBusySlotRepository(pool *pgxpool.Pool) *BusySlotRepository {
	return &BusySlotRepository{Repository: base.NewRepository(pool)}
}

// ReplaceRange атомарно заменяет busy-слоты участника в диапазоне
// [from, to): проверка токена, удаление старых строк и вставка новых
// коммитятся вместе. Оригинальная схема делала delete и insert двумя
// независимыми вызовами с окном потери данных между ними.
func (r *BusySlotRepository) ReplaceRange(ctx context.Context, userID uuid.UUID, from, to time.Time, slots []model.BusySlot, token int64) error {
	tx, err := r.Pool().Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin replace busy slots: %w", err)
	}
	defer tx.Rollback(ctx)

	// Монотонный токен: строка не обновится, если токен не новее
	var applied int64
	err = tx.QueryRow(ctx, `
		INSERT INTO calendar_sync_state (user_id, last_token, synced_at)
		VALUES ($1, $2, now())
		ON CONFLICT (user_id) DO UPDATE
		SET last_token = EXCLUDED.last_token, synced_at = now()
		WHERE calendar_sync_state.last_token < EXCLUDED.last_token
		RETURNING last_token
	`, userID, token).Scan(&applied)
	if err != nil {
		if base.IsNotFound(err) {
			return ErrStaleSyncToken
		}
		return fmt.Errorf("advance sync token: %w", err)
	}

	_, err = tx.Exec(ctx, `
		DELETE FROM user_busy_slots
		WHERE user_id = $1
		  AND start_time >= $2
		  AND start_time < $3
	`, userID, from, to)
	if err != nil {
		return fmt.Errorf("delete busy slots: %w", err)
	}

	for _, s := range slots {
		_, err = tx.Exec(ctx, `
			INSERT INTO user_busy_slots (user_id, start_time, end_time, sync_token)
			VALUES ($1, $2, $3, $4)
		`, userID, s.StartTime, s.EndTime, token)
		if err != nil {
			return fmt.Errorf("insert busy slot: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit replace busy slots: %w", err)
	}

	return nil
}

// ListByUserIDs получает busy-слоты перечисленных участников со стартом
// в [from, to). Используется для групповой тепловой карты.
func (r *BusySlotRepository) ListByUserIDs(ctx context.Context, userIDs []uuid.UUID, from, to time.Time) ([]model.BusySlot, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}

	query := `
		SELECT id, user_id, start_time, end_time, sync_token, created_at
		FROM user_busy_slots
		WHERE user_id = ANY($1)
		  AND start_time >= $2
		  AND start_time < $3
		ORDER BY start_time
	`

	rows, err := r.Query(ctx, query, userIDs, from, to)
	if err != nil {
		return nil, fmt.Errorf("list busy slots: %w", err)
	}
	defer rows.Close()

	var slots []model.BusySlot
	for rows.Next() {
		var s model.BusySlot
		err := rows.Scan(
			&s.ID,
			&s.UserID,
			&s.StartTime,
			&s.EndTime,
			&s.SyncToken,
			&s.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan busy slot: %w", err)
		}
		slots = append(slots, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate busy slots: %w", err)
	}

	return slots, nil
}

// NextSyncToken выдаёт следующий токен синхронизации для участника
func (r *BusySlotRepository) NextSyncToken(ctx context.Context, userID uuid.UUID) (int64, error) {
	query := `
		SELECT COALESCE(last_token, 0) + 1
		FROM calendar_sync_state
		WHERE user_id = $1
	`

	var token int64
	err := r.QueryRow(ctx, query, userID).Scan(&token)
	if err != nil {
		if base.IsNotFound(err) {
			return 1, nil
		}
		return 0, fmt.Errorf("next sync token: %w", err)
	}

	return token, nil
}

// DeleteEndedBefore удаляет busy-слоты, закончившиеся до cutoff
func (r *BusySlotRepository) DeleteEndedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `
		DELETE FROM user_busy_slots
		WHERE end_time < $1
	`

	deleted, err := r.ExecAffected(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete stale busy slots: %w", err)
	}

	return deleted, nil
}
