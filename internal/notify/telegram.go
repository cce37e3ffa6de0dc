package notify

import (
	"context"
	"fmt"
	"strings"

	"bandsync/internal/schedule"

	"github.com/go-telegram/bot"
	"go.uber.org/zap"
)

// TelegramNotifier шлёт объявления о подтверждённых репетициях в чат
// группы. Без токена превращается в no-op, сервис работает и без него.
type TelegramNotifier struct {
	bot    *bot.Bot
	chatID int64
	logger *zap.Logger
}

// NewTelegramNotifier создаёт нотификатор. Пустой токен даёт
// отключённый нотификатор, а не ошибку.
func NewTelegramNotifier(token string, chatID int64, logger *zap.Logger) (*TelegramNotifier, error) {
	if token == "" {
		logger.Info("Telegram notifications disabled, no token configured")
		return &TelegramNotifier{logger: logger}, nil
	}

	b, err := bot.New(token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}

	return &TelegramNotifier{bot: b, chatID: chatID, logger: logger}, nil
}

// AnnouncePractice публикует слитые интервалы подтверждённых репетиций
func (n *TelegramNotifier) AnnouncePractice(ctx context.Context, groupName string, runs []schedule.Interval) {
	if n.bot == nil || len(runs) == 0 {
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "🥁 Репетиция группы «%s» подтверждена:\n", groupName)
	for _, run := range runs {
		fmt.Fprintf(&sb, "• %s — %s\n",
			run.Start.Format("Mon 02.01 15:04"),
			run.End.Format("15:04"))
	}

	_, err := n.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: n.chatID,
		Text:   sb.String(),
	})
	if err != nil {
		n.logger.Warn("⚠️ Failed to send practice announcement",
			zap.String("group", groupName),
			zap.Error(err))
		return
	}

	n.logger.Info("✅ Practice announcement sent",
		zap.String("group", groupName),
		zap.Int("runs", len(runs)))
}
