package store

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// persisted is the on-disk document: {"subscribed_chats": [...]}.
type persisted struct {
	SubscribedChats []int64 `json:"subscribed_chats"`
}

// FileStore keeps the subscription set in memory and rewrites a single JSON
// file after every mutation. Last writer wins; there is no cross-process locking.
type FileStore struct {
	path string

	mu    sync.Mutex
	chats map[int64]struct{}
}

// Open returns a FileStore backed by path. The store is always usable: when the
// file is missing or malformed it starts empty and the returned error wraps
// ErrNoState with the cause.
func Open(path string) (*FileStore, error) {
	s := &FileStore{path: path, chats: make(map[int64]struct{})}
	chats, err := s.Load()
	if err != nil {
		return s, err
	}
	s.chats = chats
	return s, nil
}

// Load reads the persisted set without touching the in-memory state.
func (s *FileStore) Load() (map[int64]struct{}, error) {
	out := make(map[int64]struct{})
	b, err := os.ReadFile(s.path)
	if err != nil {
		return out, fmt.Errorf("%w: read %s: %v", ErrNoState, s.path, err)
	}
	var doc persisted
	if err := json.Unmarshal(b, &doc); err != nil {
		return out, fmt.Errorf("%w: decode %s: %v", ErrNoState, s.path, err)
	}
	for _, id := range doc.SubscribedChats {
		out[id] = struct{}{}
	}
	return out, nil
}

// Save overwrites the file with the full current set.
func (s *FileStore) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked()
}

func (s *FileStore) saveLocked() error {
	b, err := json.Marshal(persisted{SubscribedChats: sortedIDs(s.chats)})
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.path, b, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	return nil
}

func (s *FileStore) Add(chatID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chats[chatID] = struct{}{}
	return s.saveLocked()
}

func (s *FileStore) Remove(chatID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.chats[chatID]; !ok {
		return false, nil
	}
	delete(s.chats, chatID)
	return true, s.saveLocked()
}

func (s *FileStore) Contains(chatID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.chats[chatID]
	return ok
}

func (s *FileStore) Chats() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedIDs(s.chats)
}
