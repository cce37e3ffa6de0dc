package repository

import (
	"context"
	"fmt"

	"bandsync/internal/model"
	"bandsync/internal/repository/base"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type MemberRepository struct {
	*base.Repository
}

func NewMemberRepository(pool *pgxpool.Pool) *MemberRepository {
	return &MemberRepository{Repository: base.NewRepository(pool)}
}

// Add добавляет участника в группу. Нарушение уникальности
// (повторное вступление) возвращается как есть: сервис превращает
// его в "уже участник".
func (r *MemberRepository) Add(ctx context.Context, m *model.Membership) error {
	query := `
		INSERT INTO group_members (group_id, user_id, role)
		VALUES ($1, $2, $3)
		RETURNING joined_at
	`

	err := r.QueryRow(ctx, query, m.GroupID, m.UserID, m.Role).Scan(&m.JoinedAt)
	if err != nil {
		return fmt.Errorf("add member: %w", err)
	}

	return nil
}

// Get получает membership участника в группе
func (r *MemberRepository) Get(ctx context.Context, groupID, userID uuid.UUID) (*model.Membership, error) {
	query := `
		SELECT group_id, user_id, role, joined_at
		FROM group_members
		WHERE group_id = $1 AND user_id = $2
	`

	var m model.Membership
	err := r.QueryRow(ctx, query, groupID, userID).Scan(
		&m.GroupID,
		&m.UserID,
		&m.Role,
		&m.JoinedAt,
	)

	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get membership: %w", err)
	}

	return &m, nil
}

// ListByGroup получает участников группы вместе с профилями
func (r *MemberRepository) ListByGroup(ctx context.Context, groupID uuid.UUID) ([]*model.Member, error) {
	query := `
		SELECT gm.group_id, gm.user_id, gm.role, gm.joined_at,
		       u.id, u.email, u.display_name, u.avatar_url, u.created_at
		FROM group_members gm
		JOIN users u ON u.id = gm.user_id
		WHERE gm.group_id = $1
		ORDER BY gm.joined_at
	`

	rows, err := r.Query(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	var members []*model.Member
	for rows.Next() {
		var m model.Member
		err := rows.Scan(
			&m.GroupID,
			&m.UserID,
			&m.Role,
			&m.JoinedAt,
			&m.User.ID,
			&m.User.Email,
			&m.User.DisplayName,
			&m.User.AvatarURL,
			&m.User.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		members = append(members, &m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate members: %w", err)
	}

	return members, nil
}

// Remove удаляет участника из группы
func (r *MemberRepository) Remove(ctx context.Context, groupID, userID uuid.UUID) error {
	query := `
		DELETE FROM group_members
		WHERE group_id = $1 AND user_id = $2
	`

	affected, err := r.ExecAffected(ctx, query, groupID, userID)
	if err != nil {
		return fmt.Errorf("remove member: %w", err)
	}

	if affected == 0 {
		return fmt.Errorf("membership not found")
	}

	return nil
}

// CountByGroup подсчитывает участников группы
func (r *MemberRepository) CountByGroup(ctx context.Context, groupID uuid.UUID) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM group_members
		WHERE group_id = $1
	`

	var count int
	err := r.QueryRow(ctx, query, groupID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count members: %w", err)
	}

	return count, nil
}

// ListUserIDs получает идентификаторы всех участников группы
func (r *MemberRepository) ListUserIDs(ctx context.Context, groupID uuid.UUID) ([]uuid.UUID, error) {
	query := `
		SELECT user_id
		FROM group_members
		WHERE group_id = $1
	`

	rows, err := r.Query(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("list member ids: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan member id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate member ids: %w", err)
	}

	return ids, nil
}
