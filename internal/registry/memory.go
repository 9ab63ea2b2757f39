package registry

import (
	"context"
	"sync"
	"time"

	"telegram-gateway-bot/internal/domain"
)

// MemoryRegistry — потокобезопасный реестр в памяти с сохранением порядка регистрации.
type MemoryRegistry struct {
	mu    sync.RWMutex
	users map[int64]domain.User
	order []int64
	now   func() time.Time
}

// NewMemoryRegistry создает пустой реестр в памяти.
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{
		users: make(map[int64]domain.User),
		now:   time.Now,
	}
}

func (r *MemoryRegistry) UpsertSeen(_ context.Context, user domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; ok {
		return nil
	}
	if user.JoinedAt.IsZero() {
		user.JoinedAt = r.now()
	}
	r.users[user.ID] = user
	r.order = append(r.order, user.ID)
	return nil
}

func (r *MemoryRegistry) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order), nil
}

// AllIDs возвращает копию, поэтому последующие регистрации не влияют на снимок.
func (r *MemoryRegistry) AllIDs(_ context.Context) ([]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]int64, len(r.order))
	copy(ids, r.order)
	return ids, nil
}

func (r *MemoryRegistry) List(_ context.Context) ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	users := make([]domain.User, 0, len(r.order))
	for _, id := range r.order {
		users = append(users, r.users[id])
	}
	return users, nil
}

func (r *MemoryRegistry) Close() error { return nil }
