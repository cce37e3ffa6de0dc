package model

import (
	"time"

	"github.com/google/uuid"
)

// Group представляет группу с общим расписанием.
// Окно отображения [StartHour, EndHour) измеряется в часах от полуночи;
// EndHour может быть больше 24 (например 5-29 = с 05:00 до 05:00 следующего дня).
type Group struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	InviteCode  string     `json:"invite_code"`
	CreatedBy   *uuid.UUID `json:"created_by"`
	StartHour   int        `json:"start_hour"`
	EndHour     int        `json:"end_hour"`
	SlotMinutes int        `json:"slot_minutes"` // 30 или 60
	CreatedAt   time.Time  `json:"created_at"`
}

// IsOwnedBy - является ли пользователь владельцем группы. Владелец
// обнуляется при удалении его аккаунта, у такой группы владельца нет.
func (g *Group) IsOwnedBy(userID uuid.UUID) bool {
	return g.CreatedBy != nil && *g.CreatedBy == userID
}
