package emotions

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore is an in-memory Store used by tests and local development.
type MemoryStore struct {
	mu   sync.RWMutex
	logs map[string]*EmotionLog
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{logs: make(map[string]*EmotionLog)}
}

func (s *MemoryStore) Create(ctx context.Context, log *EmotionLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *log
	s.logs[log.ID] = &cp
	return nil
}

func (s *MemoryStore) Find(ctx context.Context, id string) (*EmotionLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	log, ok := s.logs[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *log
	return &cp, nil
}

func (s *MemoryStore) Update(ctx context.Context, log *EmotionLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.logs[log.ID]; !ok {
		return ErrNotFound
	}
	cp := *log
	s.logs[log.ID] = &cp
	return nil
}

func (s *MemoryStore) List(ctx context.Context, filter ListFilter, offset, limit int) ([]*EmotionLog, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]*EmotionLog, 0, len(s.logs))
	for _, log := range s.logs {
		if filter.UserID != "" && log.UserID != filter.UserID {
			continue
		}
		cp := *log
		all = append(all, &cp)
	}
	// ULIDs sort by creation time; newest first matches the API contract.
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })

	total := len(all)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}
