package console

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"MiniStoreConsole/internal/backend"
	"MiniStoreConsole/internal/session"
)

const sweepEvery = time.Minute

// Workspace is everything one signed-in operator owns on the host.
type Workspace struct {
	Session *session.Session
	Client  *backend.Client
	Sell    *SellDesk

	// Admin is nil for employees.
	Admin *AdminDesk
}

func (w *Workspace) close() {
	if w.Sell != nil {
		w.Sell.Close()
	}
}

// Registry keeps workspaces by session id.
type Registry struct {
	base    *backend.Client
	desk    DeskOptions
	log     *zap.Logger
	metrics *Metrics
	now     func() time.Time

	mu     sync.Mutex
	spaces map[string]*Workspace
}

func NewRegistry(base *backend.Client, desk DeskOptions) *Registry {
	log := desk.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{
		base:    base,
		desk:    desk,
		log:     log,
		metrics: desk.Metrics,
		now:     time.Now,
		spaces:  map[string]*Workspace{},
	}
}

// Create opens a workspace for s, assigning an id when s has none.
func (r *Registry) Create(s *session.Session) (*Workspace, error) {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}

	client, err := r.base.ForSession(s)
	if err != nil {
		return nil, err
	}

	opts := r.desk
	opts.Log = r.log.With(zap.String("session_id", s.ID), zap.String("role", string(s.Role)))

	w := &Workspace{
		Session: s,
		Client:  client,
		Sell:    NewSellDesk(client, opts),
	}
	if s.IsAdmin() {
		w.Admin = NewAdminDesk(client)
	}

	r.mu.Lock()
	if old := r.spaces[s.ID]; old != nil {
		old.close()
	}
	r.spaces[s.ID] = w
	n := len(r.spaces)
	r.mu.Unlock()

	r.metrics.setSessions(n)
	r.log.Info("workspace opened", zap.String("session_id", s.ID), zap.String("role", string(s.Role)))
	return w, nil
}

// Get returns the live workspace for id. Expired workspaces are dropped.
func (r *Registry) Get(id string) (*Workspace, bool) {
	r.mu.Lock()
	w, ok := r.spaces[id]
	r.mu.Unlock()

	if !ok {
		return nil, false
	}
	if w.Session.Expired(r.now()) {
		r.Drop(id)
		return nil, false
	}
	return w, true
}

func (r *Registry) Drop(id string) bool {
	r.mu.Lock()
	w, ok := r.spaces[id]
	delete(r.spaces, id)
	n := len(r.spaces)
	r.mu.Unlock()

	if !ok {
		return false
	}
	w.close()
	r.metrics.setSessions(n)
	r.log.Info("workspace closed", zap.String("session_id", id))
	return true
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.spaces)
}

// Sweep drops every workspace whose session expired before now.
func (r *Registry) Sweep(now time.Time) int {
	r.mu.Lock()
	var dead []*Workspace
	for id, w := range r.spaces {
		if w.Session.Expired(now) {
			dead = append(dead, w)
			delete(r.spaces, id)
		}
	}
	n := len(r.spaces)
	r.mu.Unlock()

	for _, w := range dead {
		w.close()
	}
	if len(dead) > 0 {
		r.metrics.setSessions(n)
		r.log.Info("expired workspaces swept", zap.Int("count", len(dead)))
	}
	return len(dead)
}

// Run sweeps periodically until ctx is done.
func (r *Registry) Run(ctx context.Context) {
	t := time.NewTicker(sweepEvery)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			r.Sweep(now)
		}
	}
}
