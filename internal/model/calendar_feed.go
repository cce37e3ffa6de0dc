package model

import (
	"time"

	"github.com/google/uuid"
)

// CalendarFeed - подписка участника на внешний ICS-календарь
type CalendarFeed struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Name      string    `json:"name"`
	URL       string    `json:"-"` // URL может содержать секрет, наружу не отдаём
	CreatedAt time.Time `json:"created_at"`
}
