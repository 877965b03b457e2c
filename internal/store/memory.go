package store

import (
	"context"
	"sync"

	"github.com/iurnickita/aquamanager/internal/model"
)

// memoryStore держит сериализованный документ, чтобы Load всегда возвращал независимую копию
type memoryStore struct {
	mu  sync.RWMutex
	doc []byte
}

func NewMemoryStore() Store {
	return &memoryStore{}
}

func (store *memoryStore) Load(ctx context.Context) (*model.State, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if store.doc == nil {
		return nil, ErrNotFound
	}
	return Decode(store.doc)
}

func (store *memoryStore) Save(ctx context.Context, state *model.State) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	doc, err := Encode(state)
	if err != nil {
		return err
	}
	store.doc = doc
	return nil
}

func (store *memoryStore) Close() error {
	return nil
}
