package repository

import (
	"context"
	"fmt"

	"bandsync/internal/model"
	"bandsync/internal/repository/base"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepository struct {
	*base.Repository
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{Repository: base.NewRepository(pool)}
}

// Upsert создаёт пользователя при первом входе через внешнего
// провайдера или обновляет профиль при повторном
func (r *UserRepository) Upsert(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (id, email, display_name, avatar_url)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET email = EXCLUDED.email,
		    avatar_url = EXCLUDED.avatar_url
		RETURNING display_name, created_at
	`

	err := r.QueryRow(
		ctx, query,
		user.ID,
		user.Email,
		user.DisplayName,
		user.AvatarURL,
	).Scan(&user.DisplayName, &user.CreatedAt)

	if err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}

	return nil
}

// GetByID получает пользователя по ID
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	query := `
		SELECT id, email, display_name, avatar_url, created_at
		FROM users
		WHERE id = $1
	`

	var user model.User
	err := r.QueryRow(ctx, query, id).Scan(
		&user.ID,
		&user.Email,
		&user.DisplayName,
		&user.AvatarURL,
		&user.CreatedAt,
	)

	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user by id: %w", err)
	}

	return &user, nil
}

// UpdateDisplayName обновляет отображаемое имя
func (r *UserRepository) UpdateDisplayName(ctx context.Context, id uuid.UUID, displayName string) error {
	query := `
		UPDATE users
		SET display_name = $1
		WHERE id = $2
	`

	affected, err := r.ExecAffected(ctx, query, displayName, id)
	if err != nil {
		return fmt.Errorf("update display name: %w", err)
	}

	if affected == 0 {
		return fmt.Errorf("user not found")
	}

	return nil
}

// Delete удаляет аккаунт. Membership, отметки и busy-слоты уходят
// каскадом; created_by в группах и practice events обнуляется.
func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `
		DELETE FROM users
		WHERE id = $1
	`

	affected, err := r.ExecAffected(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	if affected == 0 {
		return fmt.Errorf("user not found")
	}

	return nil
}
