package store

import "errors"

// ErrNoState reports that persisted state could not be read and the store started empty.
var ErrNoState = errors.New("no persisted state")

// Store defines the interface for chat subscription persistence
type Store interface {
	// Add subscribes chatID and persists the set before returning.
	Add(chatID int64) error
	// Remove unsubscribes chatID. removed is false when it was not subscribed.
	Remove(chatID int64) (removed bool, err error)
	Contains(chatID int64) bool
	// Chats returns the subscribed chat ids in ascending order.
	Chats() []int64
}
