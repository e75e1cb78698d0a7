package session

import (
	"context"

	gocache "github.com/patrickmn/go-cache"

	"bot/app/config"
	"bot/app/models"
)

// Manager keeps sessions in memory. A session that stays untouched for the
// configured idle ttl is evicted, which returns the user to the idle state.
// The cache holds snapshots that are never mutated after publication; callers
// always receive a copy and publish their changes through Save.
type Manager struct {
	cache *gocache.Cache
}

func NewManager(cfg config.Session) *Manager {
	return &Manager{
		cache: gocache.New(cfg.IdleTTL, cfg.CleanupInterval),
	}
}

func (m *Manager) GetOrCreate(ctx context.Context, userID string) (*models.Session, error) {
	if cached, ok := m.cache.Get(userID); ok {
		session := cached.(*models.Session)
		m.cache.SetDefault(userID, session) // slide the idle ttl
		return session.Clone(), nil
	}

	session := models.NewSession(userID)
	m.cache.SetDefault(userID, session)
	return session.Clone(), nil
}

func (m *Manager) Save(ctx context.Context, session *models.Session) error {
	m.cache.SetDefault(session.UserID, session.Clone())
	return nil
}

func (m *Manager) Active(ctx context.Context) (int, error) {
	active := 0
	for _, item := range m.cache.Items() {
		session, ok := item.Object.(*models.Session)
		if ok && !session.Idle() {
			active++
		}
	}
	return active, nil
}
