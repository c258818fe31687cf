package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestOpen_MissingFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "persistence.json")

	s, err := Open(path)
	if !errors.Is(err, ErrNoState) {
		t.Fatalf("expected ErrNoState, got %v", err)
	}
	if s == nil {
		t.Fatal("expected usable store")
	}
	if len(s.Chats()) != 0 {
		t.Fatalf("expected empty set, got %v", s.Chats())
	}
}

func TestOpen_MalformedFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "persistence.json")
	if err := os.WriteFile(path, []byte(`{"subscribed_chats": [1,`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	s, err := Open(path)
	if !errors.Is(err, ErrNoState) {
		t.Fatalf("expected ErrNoState, got %v", err)
	}
	if len(s.Chats()) != 0 {
		t.Fatalf("expected empty set, got %v", s.Chats())
	}

	// the store stays writable after a bad load
	if err := s.Add(5); err != nil {
		t.Fatalf("Add: %v", err)
	}
	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if !reopened.Contains(5) {
		t.Fatalf("expected 5 after rewrite, got %v", reopened.Chats())
	}
}

func TestFileStore_SaveLoadRoundTrip(t *testing.T) {
	sets := map[string][]int64{
		"empty":    {},
		"single":   {42},
		"many":     {-100123, 7, 99999999999},
		"negative": {-1, -2},
	}
	for name, ids := range sets {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "persistence.json")
			s, _ := Open(path)
			for _, id := range ids {
				if err := s.Add(id); err != nil {
					t.Fatalf("Add(%d): %v", id, err)
				}
			}
			if err := s.Save(); err != nil {
				t.Fatalf("Save: %v", err)
			}

			fresh, err := Open(path)
			if err != nil {
				t.Fatalf("Open fresh: %v", err)
			}
			got := fresh.Chats()
			if len(got) != len(ids) {
				t.Fatalf("got %v want %v", got, ids)
			}
			for _, id := range ids {
				if !fresh.Contains(id) {
					t.Fatalf("missing %d in %v", id, got)
				}
			}
		})
	}
}

func TestFileStore_StartStopStartKeepsSingleEntry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "persistence.json")
	s, _ := Open(path)

	for _, chat := range []int64{1, -1001234567890} {
		if err := s.Add(chat); err != nil {
			t.Fatalf("Add: %v", err)
		}
		if removed, err := s.Remove(chat); err != nil || !removed {
			t.Fatalf("Remove: removed=%v err=%v", removed, err)
		}
		if err := s.Add(chat); err != nil {
			t.Fatalf("Add again: %v", err)
		}
		if err := s.Add(chat); err != nil {
			t.Fatalf("Add duplicate: %v", err)
		}
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(b) != `{"subscribed_chats":[-1001234567890,1]}` {
		t.Fatalf("unexpected file content: %s", b)
	}
}

func TestFileStore_RemoveUnknownDoesNotWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "persistence.json")
	s, _ := Open(path)

	removed, err := s.Remove(9)
	if err != nil || removed {
		t.Fatalf("expected no-op, removed=%v err=%v", removed, err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected no file to be written, stat err=%v", err)
	}
}

func TestFileStore_SaveFailsOnUnwritablePath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing-dir", "persistence.json")
	s, _ := Open(path)
	if err := s.Add(1); err == nil {
		t.Fatal("expected write error")
	}
	if !s.Contains(1) {
		t.Fatal("in-memory set should still hold the chat")
	}
}
