package dispatch

import (
	"sync"

	"github.com/samanthvittal/bookmark-browser/internal/domain"
	"github.com/samanthvittal/bookmark-browser/internal/logger"
)

// NotificationType tells subscribers which field of a Notification is set.
type NotificationType string

const (
	NotifyDocument NotificationType = "document"
	NotifyStatus   NotificationType = "status"
	NotifySettings NotificationType = "settings"
)

// Notification is a state update for the presentation layer.
type Notification struct {
	Type     NotificationType       `json:"type"`
	Document *domain.Document       `json:"document,omitempty"`
	Status   *Status                `json:"status,omitempty"`
	Settings *domain.PublicSettings `json:"settings,omitempty"`
}

// Hub fans notifications out to subscribers. A subscriber that falls behind
// loses notifications instead of stalling the dispatcher.
type Hub struct {
	mu     sync.Mutex
	subs   map[int]chan Notification
	nextID int
	closed bool
	buffer int
	logger logger.Logger
}

// NewHub creates a hub whose subscriber channels hold buffer notifications.
func NewHub(buffer int, log logger.Logger) *Hub {
	if buffer <= 0 {
		buffer = 64
	}
	return &Hub{
		subs:   make(map[int]chan Notification),
		buffer: buffer,
		logger: log,
	}
}

// Subscribe registers a new subscriber. cancel closes the channel. After
// Close the returned channel is already closed.
func (h *Hub) Subscribe() (<-chan Notification, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Notification, h.buffer)
	if h.closed {
		close(ch)
		return ch, func() {}
	}
	id := h.nextID
	h.nextID++
	h.subs[id] = ch

	return ch, func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if _, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(ch)
		}
	}
}

// Close ends every subscription.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for id, ch := range h.subs {
		delete(h.subs, id)
		close(ch)
	}
}

// Notify delivers n to every subscriber without blocking.
func (h *Hub) Notify(n Notification) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, ch := range h.subs {
		select {
		case ch <- n:
		default:
			h.logger.Warn("subscriber channel full, dropping notification",
				logger.Int("subscriber", id),
				logger.String("type", string(n.Type)))
		}
	}
}

// Subscribers returns the number of live subscribers.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
