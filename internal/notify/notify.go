// Package notify keeps the short-lived messages shown to an operator after
// each action.
package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type Kind string

const (
	Success Kind = "success"
	Error   Kind = "error"
)

const DefaultTTL = 4 * time.Second

type Notification struct {
	ID        string    `json:"id"`
	Kind      Kind      `json:"type"`
	Message   string    `json:"message"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Notifier is what the sale workflow reports to.
type Notifier interface {
	Notify(kind Kind, message string)
}

// Center stores notifications until they expire.
type Center struct {
	ttl time.Duration
	now func() time.Time

	mu    sync.Mutex
	items []Notification
}

func NewCenter(ttl time.Duration) *Center {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Center{ttl: ttl, now: time.Now}
}

func (c *Center) Notify(kind Kind, message string) {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = append(c.pruneLocked(now), Notification{
		ID:        uuid.NewString(),
		Kind:      kind,
		Message:   message,
		ExpiresAt: now.Add(c.ttl),
	})
}

// Active returns unexpired notifications, newest first.
func (c *Center) Active() []Notification {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = c.pruneLocked(now)

	out := make([]Notification, 0, len(c.items))
	for i := len(c.items) - 1; i >= 0; i-- {
		out = append(out, c.items[i])
	}
	return out
}

// Latest returns the newest unexpired notification.
func (c *Center) Latest() (Notification, bool) {
	active := c.Active()
	if len(active) == 0 {
		return Notification{}, false
	}
	return active[0], true
}

func (c *Center) pruneLocked(now time.Time) []Notification {
	n := 0
	for _, it := range c.items {
		if now.Before(it.ExpiresAt) {
			c.items[n] = it
			n++
		}
	}
	return c.items[:n]
}
