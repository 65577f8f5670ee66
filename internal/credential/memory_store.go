package credential

import (
	"context"
	"sync"
)

// MemoryStore keeps the phone number in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	phone string
}

// NewMemoryStore builds an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) PhoneNumber(_ context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return normalize(s.phone)
}

func (s *MemoryStore) SavePhoneNumber(_ context.Context, phone string) error {
	phone, err := validateWrite(phone)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.phone = phone
	return nil
}

// Clear forgets the stored number.
func (s *MemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.phone = ""
}
