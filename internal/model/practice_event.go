package model

import (
	"time"

	"github.com/google/uuid"
)

// PracticeEvent - слот, утверждённый как "репетируем в это время".
// Уникальность по (group_id, start_time) обеспечивается БД; повторная
// вставка трактуется как успех, а не ошибка. CreatedBy обнуляется при
// удалении аккаунта подтвердившего, само событие живёт дальше.
type PracticeEvent struct {
	ID        uuid.UUID  `json:"id"`
	GroupID   uuid.UUID  `json:"group_id"`
	StartTime time.Time  `json:"start_time"`
	EndTime   time.Time  `json:"end_time"`
	CreatedBy *uuid.UUID `json:"created_by"`
	CreatedAt time.Time  `json:"created_at"`
}
