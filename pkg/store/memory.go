package store

import (
	"sort"
	"sync"
)

// MemoryStore is a Store that keeps subscriptions in process memory only
type MemoryStore struct {
	mu    sync.RWMutex
	chats map[int64]struct{}
}

func NewMemoryStore(chatIDs ...int64) *MemoryStore {
	s := &MemoryStore{chats: make(map[int64]struct{}, len(chatIDs))}
	for _, id := range chatIDs {
		s.chats[id] = struct{}{}
	}
	return s
}

func (s *MemoryStore) Add(chatID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chats[chatID] = struct{}{}
	return nil
}

func (s *MemoryStore) Remove(chatID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.chats[chatID]; !ok {
		return false, nil
	}
	delete(s.chats, chatID)
	return true, nil
}

func (s *MemoryStore) Contains(chatID int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.chats[chatID]
	return ok
}

func (s *MemoryStore) Chats() []int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedIDs(s.chats)
}

func sortedIDs(set map[int64]struct{}) []int64 {
	out := make([]int64, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
