package model

import (
	"time"

	"github.com/google/uuid"
)

// Availability - отметка участника "могу в это время" для одного слота.
// Priority сейчас всегда 1; модель допускает взвешенные отметки в будущем.
type Availability struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	GroupID   uuid.UUID `json:"group_id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Priority  int       `json:"priority"`
	CreatedAt time.Time `json:"created_at"`
}
