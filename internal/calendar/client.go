package calendar

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"go.uber.org/zap"
)

// Feed - один ICS-источник участника
type Feed struct {
	ID   string
	Name string
	URL  string
}

// BusyEvent - занятый интервал из внешнего календаря
type BusyEvent struct {
	UID    string
	Start  time.Time
	End    time.Time
	AllDay bool
}

// Result - итог опроса календарей участника. Отсутствие подписок и
// транспортные сбои не являются ошибками: возвращается пустой (или
// частичный) результат с флагами.
type Result struct {
	Events        []BusyEvent
	HasCredential bool // есть ли у участника хоть одна подписка
	Partial       bool // часть календарей опросить не удалось
}

// Client опрашивает ICS-фиды и нормализует события в busy-интервалы
type Client struct {
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(logger *zap.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		logger: logger,
	}
}

// ListBusyEvents опрашивает все фиды независимо: упавший фид
// логируется и пропускается, удавшиеся попадают в результат.
// События обрезаются до [rangeStart, rangeEnd), дедуплицируются по UID
// и сортируются по началу.
func (c *Client) ListBusyEvents(ctx context.Context, feeds []Feed, rangeStart, rangeEnd time.Time) Result {
	result := Result{HasCredential: len(feeds) > 0}
	if len(feeds) == 0 {
		return result
	}

	seen := make(map[string]struct{})
	for _, feed := range feeds {
		events, err := c.fetchFeed(ctx, feed, rangeStart, rangeEnd)
		if err != nil {
			c.logger.Warn("Calendar feed fetch failed",
				zap.String("feed_id", feed.ID),
				zap.String("feed_name", feed.Name),
				zap.Error(err))
			result.Partial = true
			continue
		}

		for _, ev := range events {
			key := feed.ID + "/" + ev.UID
			if ev.UID != "" {
				key = ev.UID
			}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			result.Events = append(result.Events, ev)
		}
	}

	sort.Slice(result.Events, func(i, j int) bool {
		return result.Events[i].Start.Before(result.Events[j].Start)
	})

	return result
}

func (c *Client) fetchFeed(ctx context.Context, feed Feed, rangeStart, rangeEnd time.Time) ([]BusyEvent, error) {
	if feed.URL == "" {
		return nil, errors.New("feed URL is empty")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feed.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("build feed request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch feed: unexpected status %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read feed body: %w", err)
	}

	return ParseBusyEvents(body, rangeStart, rangeEnd)
}
