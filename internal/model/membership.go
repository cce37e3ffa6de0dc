package model

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

type Membership struct {
	GroupID  uuid.UUID `json:"group_id"`
	UserID   uuid.UUID `json:"user_id"`
	Role     Role      `json:"role"`
	JoinedAt time.Time `json:"joined_at"`
}

// IsAdmin проверяет, имеет ли участник права администратора
func (m *Membership) IsAdmin() bool {
	return m.Role == RoleAdmin
}

// Member объединяет membership с данными пользователя (не из одной таблицы)
type Member struct {
	Membership
	User User `json:"user"`
}
