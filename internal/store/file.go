package store

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"mercado/internal/models"
)

var docJSON = jsoniter.Config{
	EscapeHTML:             false,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
}.Froze()

// FileStore keeps the products as one JSON document rewritten on every write.
type FileStore struct {
	mu   sync.RWMutex
	path string
}

var _ Store = (*FileStore)(nil)

// NewFileStore returns a store backed by the document at path. Nothing is
// touched on disk until the first write.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the document location.
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Load(_ context.Context) ([]models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.load()
}

func (s *FileStore) Save(_ context.Context, products []models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(nonNil(products))
}

func (s *FileStore) Create(_ context.Context, p models.Product) (models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	products, err := s.load()
	if err != nil {
		return models.Product{}, err
	}
	p.ID = len(products) + 1
	if hasID(products, p.ID) {
		return models.Product{}, errors.Wrapf(ErrDuplicateID, "id %d", p.ID)
	}
	if err := s.save(append(products, p)); err != nil {
		return models.Product{}, err
	}
	return p, nil
}

func (s *FileStore) Seed(_ context.Context, products []models.Product) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	info, err := os.Stat(s.path)
	switch {
	case err == nil && info.Size() > 0:
		return false, nil
	case err != nil && !os.IsNotExist(err):
		return false, errors.Wrap(err, "stat products document")
	}
	return true, s.save(nonNil(products))
}

func (s *FileStore) Close() error { return nil }

// load reads the document (caller must hold lock).
func (s *FileStore) load() ([]models.Product, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []models.Product{}, nil
		}
		return nil, errors.Wrap(err, "read products document")
	}
	if len(data) == 0 {
		return []models.Product{}, nil
	}

	var products []models.Product
	if err := docJSON.Unmarshal(data, &products); err != nil {
		zap.S().Warnw("products document is malformed, treating as empty",
			"path", s.path, "error", err)
		return []models.Product{}, nil
	}
	return nonNil(products), nil
}

// save writes a temp file next to the document and renames it into place
// (caller must hold lock).
func (s *FileStore) save(products []models.Product) error {
	data, err := docJSON.MarshalIndent(products, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode products")
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "create data directory")
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return errors.Wrap(err, "create temp document")
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return errors.Wrap(err, "write temp document")
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return errors.Wrap(err, "sync temp document")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "close temp document")
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return errors.Wrap(err, "chmod temp document")
	}
	return errors.Wrap(os.Rename(tmpName, s.path), "replace products document")
}
