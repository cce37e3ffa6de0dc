package schedule

import (
	"time"

	"bandsync/internal/model"

	"github.com/google/uuid"
)

// Delta - предсказанное локальное изменение отметки, ещё не
// подтверждённое сервером
type Delta struct {
	Start    time.Time
	End      time.Time
	Priority int
	Remove   bool
}

// ApplyPending - чистый редьюсер (serverState, pendingDeltas) -> displayState.
// Оптимистичное отображение получается наложением дельт пользователя на
// срез серверного состояния; сверка после ответа сервера сводится к
// удалению подтверждённых дельт. Вход не мутируется.
func ApplyPending(server []model.Availability, userID uuid.UUID, pending []Delta) []model.Availability {
	out := make([]model.Availability, 0, len(server)+len(pending))
	out = append(out, server...)

	for _, delta := range pending {
		// Сначала убираем отметку этого пользователя на этом слоте
		filtered := out[:0:0]
		for _, m := range out {
			if m.UserID == userID && m.StartTime.Equal(delta.Start) {
				continue
			}
			filtered = append(filtered, m)
		}
		out = filtered

		if delta.Remove {
			continue
		}
		out = append(out, model.Availability{
			UserID:    userID,
			StartTime: delta.Start,
			EndTime:   delta.End,
			Priority:  delta.Priority,
		})
	}
	return out
}
