package model

import (
	"time"

	"github.com/google/uuid"
)

// BusySlot - занятый интервал из внешнего календаря участника.
// Зеркалится в БД, чтобы все группы участника видели его конфликты
// без доступа к его календарю. SyncToken монотонно растёт с каждой
// синхронизацией: ответы со старым токеном отбрасываются.
type BusySlot struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	SyncToken int64     `json:"sync_token"`
	CreatedAt time.Time `json:"created_at"`
}
