package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/iurnickita/aquamanager/internal/model"
	"github.com/iurnickita/aquamanager/internal/store/config"
)

// StorageKey - ключ документа состояния во всех хранилищах
const StorageKey = "aqua_manager_data_v3"

// Store хранит документ состояния целиком
type Store interface {
	Load(ctx context.Context) (*model.State, error)
	Save(ctx context.Context, state *model.State) error
	Close() error
}

var (
	ErrNotFound       = errors.New("state document not found")
	ErrCorrupt        = errors.New("state document is corrupt")
	ErrUnknownBackend = errors.New("unknown store backend")
)

func NewStore(cfg config.Config) (Store, error) {
	key := cfg.Key
	if key == "" {
		key = StorageKey
	}

	switch cfg.Backend {
	case config.BackendFile, "":
		return NewFileStore(cfg.Dir, key)
	case config.BackendPostgres:
		return NewPostgresStore(cfg.DBDsn, key)
	case config.BackendMemory:
		return NewMemoryStore(), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
}
