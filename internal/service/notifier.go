package service

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const maxRetainedNotifications = 32

// Notification is a user-facing push outcome message.
type Notification struct {
	Title   string
	Message string
	URL     string
}

// Notifier delivers push notifications to the user.
type Notifier interface {
	Notify(ctx context.Context, notification Notification) string
}

// LogNotifier emits notifications through the structured log and retains the
// click-through URL per notification id, replacing the ambient map the
// browser runtime would otherwise hold.
type LogNotifier struct {
	logger zerolog.Logger

	mu    sync.Mutex
	urls  map[string]string
	order []string
}

// NewLogNotifier constructs a log-backed notifier.
func NewLogNotifier(logger zerolog.Logger) *LogNotifier {
	return &LogNotifier{
		logger: logger.With().Str("component", "notifier").Logger(),
		urls:   map[string]string{},
	}
}

// Notify records the notification and returns its id.
func (n *LogNotifier) Notify(ctx context.Context, notification Notification) string {
	id := uuid.NewString()

	if notification.URL != "" {
		n.mu.Lock()
		n.urls[id] = notification.URL
		n.order = append(n.order, id)
		if len(n.order) > maxRetainedNotifications {
			delete(n.urls, n.order[0])
			n.order = n.order[1:]
		}
		n.mu.Unlock()
	}

	n.logger.Info().
		Str("notification_id", id).
		Str("title", notification.Title).
		Str("url", notification.URL).
		Msg(notification.Message)

	return id
}

// URL returns the click-through URL stored for a notification id.
func (n *LogNotifier) URL(id string) (string, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()

	url, ok := n.urls[id]
	return url, ok
}
