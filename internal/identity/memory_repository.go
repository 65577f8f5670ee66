package identity

import (
	"context"
	"errors"
	"sync"
)

// ErrAlreadyRegistered is returned when the phone number has been seen before.
var ErrAlreadyRegistered = errors.New("phone number already registered")

// Repository records accepted registrations.
type Repository interface {
	Create(ctx context.Context, reg Registration) error
	Exists(ctx context.Context, phone string) (bool, error)
}

type memoryRepository struct {
	mu    sync.RWMutex
	items map[string]Registration
}

// NewMemoryRepository builds an in-memory registration store.
func NewMemoryRepository() Repository {
	return &memoryRepository{items: make(map[string]Registration)}
}

func (r *memoryRepository) Create(_ context.Context, reg Registration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.items[reg.PhoneNumber]; exists {
		return ErrAlreadyRegistered
	}
	r.items[reg.PhoneNumber] = reg
	return nil
}

func (r *memoryRepository) Exists(_ context.Context, phone string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.items[phone]
	return ok, nil
}
