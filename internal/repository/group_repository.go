package repository

import (
	"context"
	"fmt"

	"bandsync/internal/model"
	"bandsync/internal/repository/base"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type GroupRepository struct {
	*base.Repository
}

func NewGroupRepository(pool *pgxpool.Pool) *GroupRepository {
	return &GroupRepository{Repository: base.NewRepository(pool)}
}

const groupColumns = `id, name, invite_code, created_by, start_hour, end_hour, slot_minutes, created_at`

func scanGroup(row pgx.Row) (*model.Group, error) {
	var g model.Group
	err := row.Scan(
		&g.ID,
		&g.Name,
		&g.InviteCode,
		&g.CreatedBy,
		&g.StartHour,
		&g.EndHour,
		&g.SlotMinutes,
		&g.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// CreateWithOwner создаёт группу и membership создателя с ролью admin
// в одной транзакции. Оригинальная схема делала это двумя независимыми
// вставками без отката.
func (r *GroupRepository) CreateWithOwner(ctx context.Context, group *model.Group) error {
	tx, err := r.Pool().Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin create group: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO groups (name, invite_code, created_by, start_hour, end_hour, slot_minutes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	err = tx.QueryRow(
		ctx, query,
		group.Name,
		group.InviteCode,
		group.CreatedBy,
		group.StartHour,
		group.EndHour,
		group.SlotMinutes,
	).Scan(&group.ID, &group.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert group: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO group_members (group_id, user_id, role)
		VALUES ($1, $2, 'admin')
	`, group.ID, group.CreatedBy)
	if err != nil {
		return fmt.Errorf("insert owner membership: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit create group: %w", err)
	}

	return nil
}

// GetByID получает группу по ID
func (r *GroupRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Group, error) {
	query := `SELECT ` + groupColumns + ` FROM groups WHERE id = $1`

	group, err := scanGroup(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get group by id: %w", err)
	}

	return group, nil
}

// GetByInviteCode получает группу по инвайт-коду
func (r *GroupRepository) GetByInviteCode(ctx context.Context, code string) (*model.Group, error) {
	query := `SELECT ` + groupColumns + ` FROM groups WHERE invite_code = $1`

	group, err := scanGroup(r.QueryRow(ctx, query, code))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get group by invite code: %w", err)
	}

	return group, nil
}

// ListByUserID получает все группы, где состоит пользователь
func (r *GroupRepository) ListByUserID(ctx context.Context, userID uuid.UUID) ([]*model.Group, error) {
	query := `
		SELECT g.id, g.name, g.invite_code, g.created_by, g.start_hour, g.end_hour, g.slot_minutes, g.created_at
		FROM groups g
		JOIN group_members gm ON gm.group_id = g.id
		WHERE gm.user_id = $1
		ORDER BY g.created_at
	`

	rows, err := r.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list groups by user: %w", err)
	}
	defer rows.Close()

	var groups []*model.Group
	for rows.Next() {
		group, err := scanGroup(rows)
		if err != nil {
			return nil, fmt.Errorf("scan group: %w", err)
		}
		groups = append(groups, group)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate groups: %w", err)
	}

	return groups, nil
}

// UpdateWindow обновляет окно отображения и гранулярность слотов
func (r *GroupRepository) UpdateWindow(ctx context.Context, id uuid.UUID, startHour, endHour, slotMinutes int) error {
	query := `
		UPDATE groups
		SET start_hour = $1, end_hour = $2, slot_minutes = $3
		WHERE id = $4
	`

	affected, err := r.ExecAffected(ctx, query, startHour, endHour, slotMinutes, id)
	if err != nil {
		return fmt.Errorf("update group window: %w", err)
	}

	if affected == 0 {
		return fmt.Errorf("group not found")
	}

	return nil
}

// Delete удаляет группу (membership, отметки и practice events каскадом)
func (r *GroupRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM groups WHERE id = $1`

	affected, err := r.ExecAffected(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete group: %w", err)
	}

	if affected == 0 {
		return fmt.Errorf("group not found")
	}

	return nil
}

// CodeExists проверяет, занят ли инвайт-код
func (r *GroupRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM groups
			WHERE invite_code = $1
		)
	`

	var exists bool
	err := r.QueryRow(ctx, query, code).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check invite code exists: %w", err)
	}

	return exists, nil
}
