package usecase

import (
	"context"
	"sync"

	"medassist/internal/domain"
	"medassist/internal/ports"
)

// HistoryController is a read-only projection over the session collection,
// independent of the active workflow. Deletion removes an entry from the
// local list only after the gateway has acknowledged it.
type HistoryController struct {
	gateway ports.Gateway

	mu       sync.Mutex
	sessions []domain.Session
}

func NewHistoryController(gateway ports.Gateway) *HistoryController {
	return &HistoryController{gateway: gateway}
}

// Load fetches all sessions, newest first (server order is preserved).
func (c *HistoryController) Load(ctx context.Context) ([]domain.Session, error) {
	sessions, err := c.gateway.ListSessions(ctx)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.sessions = make([]domain.Session, len(sessions))
	copy(c.sessions, sessions)
	c.mu.Unlock()

	return sessions, nil
}

// Sessions returns a copy of the current listing.
func (c *HistoryController) Sessions() []domain.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.Session, len(c.sessions))
	copy(out, c.sessions)
	return out
}

// Delete removes a session server-side, then drops it from the listing.
// A failed delete leaves the listing untouched.
func (c *HistoryController) Delete(ctx context.Context, id int64) error {
	if err := c.gateway.DeleteSession(ctx, id); err != nil {
		return err
	}

	c.mu.Lock()
	kept := c.sessions[:0]
	for _, s := range c.sessions {
		if s.ID != id {
			kept = append(kept, s)
		}
	}
	c.sessions = kept
	c.mu.Unlock()
	return nil
}
