package bot

import (
	"sync"

	"telegram-gateway-bot/internal/domain"
)

// SelectionStore — потокобезопасное in-memory хранилище выбранного
// администратором типа рассылки.
type SelectionStore struct {
	mu         sync.RWMutex
	selections map[int64]domain.ContentKind // map[adminID]kind
}

// NewSelectionStore создает новый экземпляр SelectionStore.
func NewSelectionStore() *SelectionStore {
	return &SelectionStore{
		selections: make(map[int64]domain.ContentKind),
	}
}

// Set сохраняет выбор администратора.
// Если выбор уже существует, он будет перезаписан.
func (s *SelectionStore) Set(adminID int64, kind domain.ContentKind) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selections[adminID] = kind
}

// Get возвращает текущий выбор без его удаления.
func (s *SelectionStore) Get(adminID int64) (domain.ContentKind, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	kind, ok := s.selections[adminID]
	return kind, ok
}

// Take атомарно извлекает и удаляет выбор.
func (s *SelectionStore) Take(adminID int64) (domain.ContentKind, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kind, ok := s.selections[adminID]
	delete(s.selections, adminID)
	return kind, ok
}
