package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/iurnickita/aquamanager/internal/model"
)

// fileStore - документ в файле <dir>/<key>.json
type fileStore struct {
	mu   sync.Mutex
	path string
}

func NewFileStore(dir string, key string) (Store, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &fileStore{path: filepath.Join(dir, key+".json")}, nil
}

func (store *fileStore) Load(ctx context.Context) (*model.State, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(store.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return Decode(data)
}

func (store *fileStore) Save(ctx context.Context, state *model.State) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := Encode(state)
	if err != nil {
		return err
	}

	// запись во временный файл и замена: читатель не увидит половину документа
	tmp, err := os.CreateTemp(filepath.Dir(store.path), filepath.Base(store.path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err = tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), store.path)
}

func (store *fileStore) Close() error {
	return nil
}
